package services

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/partforge/configurator/internal/blob"
	"github.com/partforge/configurator/internal/catalog"
	"github.com/partforge/configurator/internal/compatibility"
	"github.com/partforge/configurator/internal/models"
	"github.com/partforge/configurator/internal/repository"
)

// ErrNotFound marks a lookup that found no owner-scoped row, letting
// handlers tell "404" apart from an infrastructure failure via errors.Is
// without the service layer importing net/http.
var ErrNotFound = errors.New("not found")

// CompatibilityError wraps a rejected C2 check so handlers can surface
// {error, reason} without the service layer knowing about HTTP (spec.md §7).
type CompatibilityError struct {
	Message string
	Reason  string
}

func (e *CompatibilityError) Error() string { return e.Message + ": " + e.Reason }

// WorkspaceService is the Build Workspace (C3).
type WorkspaceService struct {
	workspaceRepo *repository.WorkspaceRepository
	buildRepo     *repository.BuildRepository
	catalog       *catalog.Accessor
	engine        *compatibility.Engine
	images        *blob.Resolver
}

// NewWorkspaceService builds a Build Workspace service.
func NewWorkspaceService(workspaceRepo *repository.WorkspaceRepository, buildRepo *repository.BuildRepository, catalogAccessor *catalog.Accessor, engine *compatibility.Engine, images *blob.Resolver) *WorkspaceService {
	return &WorkspaceService{
		workspaceRepo: workspaceRepo,
		buildRepo:     buildRepo,
		catalog:       catalogAccessor,
		engine:        engine,
		images:        images,
	}
}

// Get returns the user's current temp build (spec.md §4.3 "get").
func (s *WorkspaceService) Get(userID uuid.UUID) (*models.TempBuild, error) {
	return s.workspaceRepo.Get(userID)
}

// Add validates and writes a candidate into the workspace (spec.md §4.3
// "add"). It rejects unknown categories and component ids, expands the
// current workspace, and runs the Compatibility Engine before writing.
func (s *WorkspaceService) Add(userID uuid.UUID, category string, componentID uuid.UUID) (*models.TempBuild, error) {
	if !models.IsValidCategorySlug(category) {
		return nil, fmt.Errorf("unknown category: %s", category)
	}

	candidateRecord, err := s.catalog.GetComponentByID(componentID)
	if err != nil {
		return nil, err
	}
	if candidateRecord == nil {
		return nil, fmt.Errorf("component not found: %w", ErrNotFound)
	}

	tb, err := s.workspaceRepo.Get(userID)
	if err != nil {
		return nil, err
	}

	rest := tb.Components.Clone()
	delete(rest, category)

	build, err := s.Expand(rest, true)
	if err != nil {
		return nil, err
	}

	candidate := componentToExpanded(candidateRecord)
	if res := s.engine.Check(build, category, candidate); !res.OK {
		return nil, &CompatibilityError{Message: "Incompatible component", Reason: res.Reason}
	}

	if tb.Components == nil {
		tb.Components = make(models.ComponentMap)
	}
	tb.Components[category] = componentID

	if err := s.workspaceRepo.Upsert(tb); err != nil {
		return nil, err
	}

	return tb, nil
}

// Remove is idempotent (spec.md §4.3 "remove").
func (s *WorkspaceService) Remove(userID uuid.UUID, category string) (*models.TempBuild, error) {
	tb, err := s.workspaceRepo.Get(userID)
	if err != nil {
		return nil, err
	}

	delete(tb.Components, category)

	if err := s.workspaceRepo.Upsert(tb); err != nil {
		return nil, err
	}

	return tb, nil
}

// Reset clears the workspace entirely.
func (s *WorkspaceService) Reset(userID uuid.UUID) error {
	return s.workspaceRepo.Clear(userID)
}

// ApplyGenerated writes an Auto-Builder result into the workspace after
// running the final compatibility check spec.md §9's Open Question
// resolution requires for both buildFromPurpose and autoComplete output ("an
// incompatible output is surfaced as an error, not silently persisted").
// The existing __source_build_id sentinel, if any, is preserved.
func (s *WorkspaceService) ApplyGenerated(userID uuid.UUID, generated models.ComponentMap, failureMessage string) (*models.TempBuild, models.Summary, error) {
	expanded, err := s.Expand(generated, false)
	if err != nil {
		return nil, models.Summary{}, err
	}

	if res := s.engine.CheckWholeBuild(expanded); !res.OK {
		return nil, models.Summary{}, &CompatibilityError{Message: failureMessage, Reason: res.Reason}
	}

	tb, err := s.workspaceRepo.Get(userID)
	if err != nil {
		return nil, models.Summary{}, err
	}
	tb.Components = generated

	if err := s.workspaceRepo.Upsert(tb); err != nil {
		return nil, models.Summary{}, err
	}

	return tb, s.Summary(expanded), nil
}

// Expand walks a category->id map and resolves each entry through the
// Catalog Accessor (spec.md §4.3 "Expansion"). In allowMissing mode a
// missing or dangling id becomes a placeholder record; in strict mode that
// key is omitted entirely.
func (s *WorkspaceService) Expand(components models.ComponentMap, allowMissing bool) (models.ExpandedBuild, error) {
	expanded := make(models.ExpandedBuild, len(components))

	for category, id := range components {
		record, err := s.catalog.GetComponentByID(id)
		if err != nil {
			return nil, err
		}

		if record == nil {
			if allowMissing {
				expanded[category] = models.MissingComponentPlaceholder(category)
			}
			continue
		}

		expanded[category] = componentToExpanded(record)
	}

	return expanded, nil
}

// Summary sums total_price and power_usage over an expanded build, leaving
// compatibility "unknown" for the caller to determine (spec.md §4.3
// "Summary").
func (s *WorkspaceService) Summary(expanded models.ExpandedBuild) models.Summary {
	total := decimal.Zero
	power := 0

	for _, component := range expanded {
		if component.IsPlaceholder() {
			continue
		}
		total = total.Add(component.Price)
		power += int(normNumber(component.Specs["tdp"]))
	}

	return models.Summary{
		TotalPrice:    total,
		PowerUsageW:   power,
		Compatibility: models.CompatibilityUnknown,
	}
}

// ListPickable returns catalog candidates of a category that are
// sellable and pass the Compatibility Engine against the user's current
// workspace (spec.md §4.3 "Listing").
func (s *WorkspaceService) ListPickable(userID uuid.UUID, category string) ([]models.ComponentWithSpecs, error) {
	if !models.IsValidCategorySlug(category) {
		return nil, fmt.Errorf("unknown category: %s", category)
	}

	tb, err := s.workspaceRepo.Get(userID)
	if err != nil {
		return nil, err
	}

	rest := tb.Components.Clone()
	delete(rest, category)

	build, err := s.Expand(rest, true)
	if err != nil {
		return nil, err
	}

	candidates, err := s.catalog.ListByCategory(category)
	if err != nil {
		return nil, err
	}

	var pickable []models.ComponentWithSpecs
	for _, candidate := range candidates {
		if !candidate.IsVisible() {
			continue
		}
		if res := s.engine.Check(build, category, componentToExpanded(&candidate)); !res.OK {
			continue
		}
		pickable = append(pickable, candidate)
	}

	return pickable, nil
}

// Save expands the workspace, determines its compatibility state, and
// writes a new saved build, then clears the workspace (spec.md §4.3
// "Saving").
func (s *WorkspaceService) Save(userID uuid.UUID, name string) (*models.SavedBuild, error) {
	tb, err := s.workspaceRepo.Get(userID)
	if err != nil {
		return nil, err
	}

	expanded, err := s.Expand(tb.Components, false)
	if err != nil {
		return nil, err
	}

	build := s.buildFromExpanded(uuid.New(), userID, name, tb.Components, expanded)

	if err := s.buildRepo.Create(build); err != nil {
		return nil, err
	}
	if err := s.workspaceRepo.Clear(userID); err != nil {
		return nil, err
	}

	s.attachImageURL(build)
	return build, nil
}

// Load copies a saved build's component map into the workspace and marks it
// as an edit session (spec.md §4.3 "Loading").
func (s *WorkspaceService) Load(userID, buildID uuid.UUID) (*models.TempBuild, error) {
	saved, err := s.buildRepo.GetByID(userID, buildID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, fmt.Errorf("build not found: %w", ErrNotFound)
	}

	tb := models.NewTempBuild(userID)
	tb.Components = saved.Components.Clone()
	tb.SourceBuildID = &buildID

	if err := s.workspaceRepo.Upsert(tb); err != nil {
		return nil, err
	}

	return tb, nil
}

// UpdateSaved commits the edit session back to the saved build (spec.md
// §4.3 "Loading and updating").
func (s *WorkspaceService) UpdateSaved(userID, buildID uuid.UUID, name *string) (*models.SavedBuild, error) {
	saved, err := s.buildRepo.GetByID(userID, buildID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, fmt.Errorf("build not found: %w", ErrNotFound)
	}

	tb, err := s.workspaceRepo.Get(userID)
	if err != nil {
		return nil, err
	}

	sentinelMatches := tb.SourceBuildID != nil && *tb.SourceBuildID == buildID
	if !sentinelMatches && !sameKeySet(tb.Components, saved.Components) {
		return nil, fmt.Errorf("workspace does not match the build being edited")
	}

	expanded, err := s.Expand(tb.Components, false)
	if err != nil {
		return nil, err
	}

	if res := s.engine.CheckWholeBuild(expanded); !res.OK {
		return nil, &CompatibilityError{Message: "Incompatible component", Reason: res.Reason}
	}

	effectiveName := saved.Name
	if name != nil && *name != "" {
		effectiveName = *name
	}

	updated := s.buildFromExpanded(saved.ID, userID, effectiveName, tb.Components, expanded)
	updated.CreatedAt = saved.CreatedAt

	if err := s.buildRepo.Update(updated); err != nil {
		return nil, err
	}
	if err := s.workspaceRepo.Clear(userID); err != nil {
		return nil, err
	}

	s.attachImageURL(updated)
	return updated, nil
}

// Duplicate deep-copies a saved build under a derived unique name (spec.md
// §4.3 "Duplication").
func (s *WorkspaceService) Duplicate(userID, buildID uuid.UUID) (*models.SavedBuild, error) {
	original, err := s.buildRepo.GetByID(userID, buildID)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, fmt.Errorf("build not found: %w", ErrNotFound)
	}

	name, err := s.nextDuplicateName(userID, original.Name)
	if err != nil {
		return nil, err
	}

	copyBuild := &models.SavedBuild{
		ID:               uuid.New(),
		UserID:           userID,
		Name:             name,
		Components:       original.Components.Clone(),
		TotalPrice:       original.TotalPrice,
		PowerUsageW:      original.PowerUsageW,
		Compatibility:    original.Compatibility,
		ImageComponentID: original.ImageComponentID,
	}

	if err := s.buildRepo.Create(copyBuild); err != nil {
		return nil, err
	}

	s.attachImageURL(copyBuild)
	return copyBuild, nil
}

// Delete soft-deletes a saved build (spec.md §4.3 "Deletion").
func (s *WorkspaceService) Delete(userID, buildID uuid.UUID) error {
	return s.buildRepo.SoftDelete(userID, buildID)
}

// ListMy returns every non-deleted saved build for a user with image URLs
// resolved.
func (s *WorkspaceService) ListMy(userID uuid.UUID) ([]models.SavedBuild, error) {
	builds, err := s.buildRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	for i := range builds {
		s.attachImageURL(&builds[i])
	}
	return builds, nil
}

// GetMy returns one saved build owned by userID, with its image URL
// resolved.
func (s *WorkspaceService) GetMy(userID, buildID uuid.UUID) (*models.SavedBuild, error) {
	build, err := s.buildRepo.GetByID(userID, buildID)
	if err != nil {
		return nil, err
	}
	if build == nil {
		return nil, nil
	}
	s.attachImageURL(build)
	return build, nil
}

// buildFromExpanded determines the compatibility state (spec.md §4.3
// "ok if compatible and all required categories present; incomplete if
// compatible but a required category is missing; invalid otherwise"),
// filters out placeholder/null ids, and picks a representative image.
func (s *WorkspaceService) buildFromExpanded(id, userID uuid.UUID, name string, raw models.ComponentMap, expanded models.ExpandedBuild) *models.SavedBuild {
	compatResult := s.engine.CheckWholeBuild(expanded)

	requiredPresent := true
	for _, required := range models.RequiredCategorySlugs {
		c, ok := expanded[required]
		if !ok || c.IsPlaceholder() {
			requiredPresent = false
			break
		}
	}

	state := models.CompatibilityInvalid
	if compatResult.OK {
		if requiredPresent {
			state = models.CompatibilityOK
		} else {
			state = models.CompatibilityIncomplete
		}
	}

	filtered := make(models.ComponentMap)
	for category, compID := range raw {
		if c, ok := expanded[category]; ok && !c.IsPlaceholder() {
			filtered[category] = compID
		}
	}

	summary := s.Summary(expanded)

	var imageComponentID *uuid.UUID
	for _, category := range models.ImagePriorityOrder {
		if c, ok := expanded[category]; ok && !c.IsPlaceholder() {
			id := *c.ID
			imageComponentID = &id
			break
		}
	}

	return &models.SavedBuild{
		ID:               id,
		UserID:           userID,
		Name:             name,
		Components:       filtered,
		TotalPrice:       summary.TotalPrice,
		PowerUsageW:      summary.PowerUsageW,
		Compatibility:    state,
		ImageComponentID: imageComponentID,
	}
}

func (s *WorkspaceService) attachImageURL(build *models.SavedBuild) {
	if build.ImageComponentID == nil {
		return
	}
	component, err := s.catalog.GetComponentByID(*build.ImageComponentID)
	if err != nil || component == nil {
		return
	}
	if url := s.images.URLFor(component.ImageBucketPath); url != "" {
		build.ImageURL = &url
	}
}

// nextDuplicateName implements spec.md §4.3's naming algorithm: a name
// already matching "<base> (N)" grows a "(k)" suffix directly; any other
// name gets " (k)" appended, incrementing k until unused.
func (s *WorkspaceService) nextDuplicateName(userID uuid.UUID, original string) (string, error) {
	suffixed := regexp.MustCompile(`^.+ \(\d+\)$`)

	var prefix string
	var appendWithSpace bool
	if suffixed.MatchString(original) {
		prefix = original
		appendWithSpace = false
	} else {
		prefix = original
		appendWithSpace = true
	}

	for k := 1; ; k++ {
		var candidate string
		if appendWithSpace {
			candidate = fmt.Sprintf("%s (%d)", prefix, k)
		} else {
			candidate = fmt.Sprintf("%s(%d)", prefix, k)
		}

		exists, err := s.buildRepo.NameExists(userID, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

func sameKeySet(a, b models.ComponentMap) bool {
	if len(a) != len(b) {
		return false
	}
	aKeys, bKeys := keysOf(a), keysOf(b)
	sort.Strings(aKeys)
	sort.Strings(bKeys)
	for i := range aKeys {
		if aKeys[i] != bKeys[i] {
			return false
		}
	}
	return true
}

func keysOf(m models.ComponentMap) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func componentToExpanded(c *models.ComponentWithSpecs) models.ExpandedComponent {
	id := c.ID
	return models.ExpandedComponent{
		ID:       &id,
		Name:     c.Name,
		Price:    c.Price,
		Category: c.CategorySlug,
		Specs:    c.Specs,
	}
}

// normNumber mirrors compatibility.normNumber's null-safe numeric
// coercion for reading specs["tdp"] out of a SpecMap.
func normNumber(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
