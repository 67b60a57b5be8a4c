package order

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/sakuraessence/storefront/internal/domain"
	"github.com/sakuraessence/storefront/pkg/common"
	"go.uber.org/zap"
)

// TotalEpsilon is the currency-rounding tolerance when comparing a
// client-submitted total against the server-side recomputation.
const TotalEpsilon = 0.01

// Event topics published after committed lifecycle changes.
const (
	TopicOrderSubmitted     = "order:submitted"
	TopicOrderStatusChanged = "order:status"
)

// SubmitRequest is the checkout payload: the cart snapshot plus customer
// contact details. Total is optional; when present it must agree with the
// server-side recomputation within TotalEpsilon.
type SubmitRequest struct {
	Items         []domain.OrderItem `json:"items"`
	CustomerName  string             `json:"customerName"`
	CustomerEmail string             `json:"customerEmail"`
	CustomerPhone string             `json:"customerPhone"`
	Total         *float64           `json:"total,omitempty"`
}

// Service implements the order lifecycle: submit, admin status transition,
// delete. Persistence is the source of truth; notification is best-effort.
type Service struct {
	repo     Repository
	notifier Notifier
	bus      EventBus.Bus
}

func NewService(repo Repository, notifier Notifier, bus EventBus.Bus) *Service {
	return &Service{repo: repo, notifier: notifier, bus: bus}
}

func (s *Service) validateSubmit(req *SubmitRequest) error {
	if strings.TrimSpace(req.CustomerName) == "" {
		return errors.Wrap(ErrValidation, "customerName is required")
	}
	if strings.TrimSpace(req.CustomerEmail) == "" {
		return errors.Wrap(ErrValidation, "customerEmail is required")
	}
	if strings.TrimSpace(req.CustomerPhone) == "" {
		return errors.Wrap(ErrValidation, "customerPhone is required")
	}
	if len(req.Items) == 0 {
		return errors.Wrap(ErrValidation, "items must not be empty")
	}
	for i, it := range req.Items {
		if strings.TrimSpace(it.Name) == "" {
			return errors.Wrapf(ErrValidation, "items[%d].name is required", i)
		}
		if it.Quantity < 1 {
			return errors.Wrapf(ErrValidation, "items[%d].quantity must be >= 1", i)
		}
		if it.UnitPrice < 0 {
			return errors.Wrapf(ErrValidation, "items[%d].unitPrice must be >= 0", i)
		}
	}
	return nil
}

// Submit validates the request, recomputes the total from the item snapshot
// and persists a new order in the Pending state. No notification is sent on
// submit.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*domain.Order, error) {
	if err := s.validateSubmit(&req); err != nil {
		return nil, err
	}

	o := &domain.Order{
		ID:            common.UUIDint64(),
		Items:         append([]domain.OrderItem(nil), req.Items...),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Status:        domain.OrderStatusPending,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	// The server's own sum is authoritative, never the client's.
	o.Total = o.ItemsTotal()
	if req.Total != nil && math.Abs(*req.Total-o.Total) > TotalEpsilon {
		return nil, errors.Wrapf(ErrValidation,
			"submitted total %.2f does not match item total %.2f", *req.Total, o.Total)
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	zap.L().Info("order submitted",
		zap.Int64("order_id", o.ID),
		zap.String("customer", o.CustomerEmail),
		zap.Float64("total", o.Total))

	s.publish(TopicOrderSubmitted, o)
	return o, nil
}

// Transition moves a pending order to Confirmed or Rejected and sends the
// status email exactly once. The durable write is the serialization point:
// the conditional update only succeeds against a pending row, so a second
// transition, concurrent or late, fails with ErrTerminalState. Email failure
// is surfaced as ErrNotification but never rolls the status back.
func (s *Service) Transition(ctx context.Context, id int64, to domain.OrderStatus) (*domain.Order, error) {
	if !to.Valid() || !to.IsTerminal() {
		return nil, errors.Wrapf(ErrValidation, "invalid target status %q", to)
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status.IsTerminal() {
		return nil, errors.Wrapf(ErrTerminalState, "order %d is already %s", id, o.Status)
	}

	updated, err := s.repo.UpdateStatusFromPending(ctx, id, to)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Lost the race: a concurrent transition committed first.
		return nil, errors.Wrapf(ErrTerminalState, "order %d is no longer pending", id)
	}

	o.Status = to
	o.UpdatedAt = time.Now()

	zap.L().Info("order status changed",
		zap.Int64("order_id", o.ID),
		zap.String("status", to.String()))

	s.publish(TopicOrderStatusChanged, o)

	if s.notifier != nil {
		snapshot := *o
		snapshot.Items = append([]domain.OrderItem(nil), o.Items...)
		if nerr := s.notifier.SendOrderStatusEmail(o.CustomerEmail, to, &snapshot); nerr != nil {
			zap.L().Warn("order status email failed",
				zap.Int64("order_id", o.ID),
				zap.String("to", o.CustomerEmail),
				zap.Error(nerr))
			return o, errors.Wrap(ErrNotification, nerr.Error())
		}
	}
	return o, nil
}

// Delete removes an order irreversibly. It returns ErrNotFound when the order
// does not exist.
func (s *Service) Delete(ctx context.Context, id int64) error {
	existed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !existed {
		return errors.Wrapf(ErrNotFound, "order %d", id)
	}
	zap.L().Info("order deleted", zap.Int64("order_id", id))
	return nil
}

// Get retrieves one order by id.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves orders newest first with optional status filter.
func (s *Service) List(ctx context.Context, status domain.OrderStatus, page, pageSize int) ([]domain.Order, int64, error) {
	return s.repo.List(ctx, status, page, pageSize)
}

func (s *Service) publish(topic string, o *domain.Order) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(topic, o)
}
