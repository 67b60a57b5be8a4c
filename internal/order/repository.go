package order

import (
	"context"

	"github.com/sakuraessence/storefront/internal/domain"
)

// Repository handles database operations for orders.
type Repository interface {
	// Create inserts a new order as a single atomic row.
	Create(ctx context.Context, o *domain.Order) error

	// GetByID retrieves an order by ID.
	GetByID(ctx context.Context, id int64) (*domain.Order, error)

	// List retrieves orders newest first with optional status filter and
	// pagination. It returns the page and the total row count.
	List(ctx context.Context, status domain.OrderStatus, page, pageSize int) ([]domain.Order, int64, error)

	// UpdateStatusFromPending moves an order from Pending to the given status
	// with a conditional update so two racing transitions cannot both win.
	// It reports whether a pending row was actually updated.
	UpdateStatusFromPending(ctx context.Context, id int64, to domain.OrderStatus) (bool, error)

	// Delete removes an order and reports whether a row existed.
	Delete(ctx context.Context, id int64) (bool, error)
}

// Notifier sends the customer-facing status email. Implementations receive an
// immutable snapshot of the order at transition time, not a live reference.
type Notifier interface {
	SendOrderStatusEmail(to string, status domain.OrderStatus, snapshot *domain.Order) error
}
