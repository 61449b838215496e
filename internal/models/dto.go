package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddToWorkspaceRequest is POST /api/builder/temp/add's body (spec.md §6).
type AddToWorkspaceRequest struct {
	Category    string    `json:"category" validate:"required"`
	ComponentID uuid.UUID `json:"componentId" validate:"required"`
}

// RemoveFromWorkspaceRequest is POST /api/builder/temp/remove's body.
type RemoveFromWorkspaceRequest struct {
	Category string `json:"category" validate:"required"`
}

// SaveBuildRequest is POST /api/builder/save's body; name is optional.
type SaveBuildRequest struct {
	Name string `json:"name" validate:"max=200"`
}

// UpdateBuildRequest is PUT /api/builder/update/:id's body; name is optional.
type UpdateBuildRequest struct {
	Name *string `json:"name" validate:"omitempty,max=200"`
}

// AutoBuildRequest is POST /api/builder/autobuild's body (spec.md §4.4
// "buildFromPurpose({purpose, budget?, respectCpu?})").
type AutoBuildRequest struct {
	Purpose    string           `json:"purpose" validate:"required"`
	Budget     *decimal.Decimal `json:"budget"`
	RespectCPU *uuid.UUID       `json:"respectCpu"`
}

// CartAddRequest is POST /api/cart/add's body: a single component line.
type CartAddRequest struct {
	ComponentID uuid.UUID `json:"componentId" validate:"required"`
	Category    string    `json:"category" validate:"required"`
	Quantity    int       `json:"quantity" validate:"min=1"`
}

// CheckoutRequest is POST /api/checkout's body (spec.md §6). ItemIDs is
// optional — an empty/omitted list checks out every cart line.
type CheckoutRequest struct {
	ItemIDs       []uuid.UUID `json:"item_ids"`
	PaymentMethod string      `json:"payment_method"`
	Notes         string      `json:"notes" validate:"max=2000"`
}

// CheckoutBuildRequest is POST /api/checkout/build/:buildId's body.
type CheckoutBuildRequest struct {
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes" validate:"max=2000"`
}

// UpdateOrderStatusRequest is the admin-only order status transition body
// (spec.md §4.5 "updateStatus(orderId, status)").
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
