package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/partforge/configurator/internal/catalog"
	"github.com/partforge/configurator/internal/models"
	"github.com/partforge/configurator/internal/repository"
)

// CartService coordinates the cart repository with the Catalog Accessor and
// Build Workspace so a handler never has to look up a component's price or
// expand a build itself (spec.md §6 "/api/cart/*").
type CartService struct {
	cartRepo  *repository.CartRepository
	buildRepo *repository.BuildRepository
	catalog   *catalog.Accessor
	workspace *WorkspaceService
}

// NewCartService builds a CartService.
func NewCartService(cartRepo *repository.CartRepository, buildRepo *repository.BuildRepository, catalogAccessor *catalog.Accessor, workspace *WorkspaceService) *CartService {
	return &CartService{
		cartRepo:  cartRepo,
		buildRepo: buildRepo,
		catalog:   catalogAccessor,
		workspace: workspace,
	}
}

// List returns every cart line for a user.
func (s *CartService) List(userID uuid.UUID) ([]models.CartItem, error) {
	return s.cartRepo.ListByUser(userID)
}

// AddComponent adds a single component to the cart, validating it exists
// before pricing the line (spec.md §6 "POST /api/cart/add").
func (s *CartService) AddComponent(userID, componentID uuid.UUID, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	component, err := s.catalog.GetComponentByID(componentID)
	if err != nil {
		return nil, err
	}
	if component == nil {
		return nil, fmt.Errorf("component not found: %w", ErrNotFound)
	}

	return s.cartRepo.UpsertComponentLine(userID, componentID, component.CategorySlug, component.RoundedPrice(), quantity)
}

// AddBuild adds a saved build to the cart as a single bundle line (spec.md §6
// "POST /api/cart/add-build/:buildId").
func (s *CartService) AddBuild(userID, buildID uuid.UUID) (*models.CartItem, error) {
	build, err := s.buildRepo.GetByID(userID, buildID)
	if err != nil {
		return nil, err
	}
	if build == nil {
		return nil, fmt.Errorf("build not found: %w", ErrNotFound)
	}

	return s.cartRepo.InsertBundleLine(userID, buildID, build.Name, build.TotalPrice, len(build.Components))
}

// AddTempBuild expands the user's current workspace and inserts one
// component cart line per populated category — per spec.md §9's Open
// Question resolution, the bundle variant is never synthesized here since it
// would lack a persisted build_id (spec.md §6 "POST
// /api/cart/addTempBuild").
func (s *CartService) AddTempBuild(userID uuid.UUID) ([]models.CartItem, error) {
	tb, err := s.workspace.Get(userID)
	if err != nil {
		return nil, err
	}

	expanded, err := s.workspace.Expand(tb.Components, false)
	if err != nil {
		return nil, err
	}

	var added []models.CartItem
	for category, component := range expanded {
		if component.IsPlaceholder() {
			continue
		}

		item, err := s.cartRepo.UpsertComponentLine(userID, *component.ID, category, component.Price.Round(2), 1)
		if err != nil {
			return nil, err
		}
		added = append(added, *item)
	}

	return added, nil
}

// DecrementOrRemove implements spec.md §6 "DELETE /api/cart/:itemId".
func (s *CartService) DecrementOrRemove(userID, itemID uuid.UUID) error {
	return s.cartRepo.DecrementOrRemove(userID, itemID)
}

// RemoveRow implements spec.md §6 "DELETE /api/cart/deleteRow/:itemId".
func (s *CartService) RemoveRow(userID, itemID uuid.UUID) error {
	return s.cartRepo.RemoveRow(userID, itemID)
}
