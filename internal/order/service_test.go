package order

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/sakuraessence/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	m      sync.Mutex
	orders map[int64]*domain.Order
	err    error
}

func newMockRepository() *mockRepository {
	return &mockRepository{orders: make(map[int64]*domain.Order)}
}

func (m *mockRepository) Create(_ context.Context, o *domain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *mockRepository) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "order %d", id)
	}
	cp := *o
	return &cp, nil
}

func (m *mockRepository) List(_ context.Context, status domain.OrderStatus, _, _ int) ([]domain.Order, int64, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var rows []domain.Order
	for _, o := range m.orders {
		if status == "" || o.Status == status {
			rows = append(rows, *o)
		}
	}
	return rows, int64(len(rows)), nil
}

func (m *mockRepository) UpdateStatusFromPending(_ context.Context, id int64, to domain.OrderStatus) (bool, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return false, m.err
	}
	o, ok := m.orders[id]
	if !ok || o.Status != domain.OrderStatusPending {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (m *mockRepository) Delete(_ context.Context, id int64) (bool, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.orders[id]
	delete(m.orders, id)
	return ok, nil
}

type mockNotifier struct {
	m         sync.Mutex
	sent      []string
	statuses  []domain.OrderStatus
	snapshots []*domain.Order
	err       error
}

func (m *mockNotifier) SendOrderStatusEmail(to string, status domain.OrderStatus, snapshot *domain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.sent = append(m.sent, to)
	m.statuses = append(m.statuses, status)
	m.snapshots = append(m.snapshots, snapshot)
	return m.err
}

func submitFixture() SubmitRequest {
	return SubmitRequest{
		Items: []domain.OrderItem{
			{ProductID: 1, Name: "Oud Impérial", Variant: domain.VolumeVariant(50), Quantity: 2, UnitPrice: 200},
			{ProductID: 2, Name: "Coffret Rituel", Variant: domain.SizeVariant("M"), Quantity: 1, UnitPrice: 150},
		},
		CustomerName:  "Nadia",
		CustomerEmail: "n@x.com",
		CustomerPhone: "0600000000",
	}
}

func TestSubmitComputesTotalAndStartsPending(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, &mockNotifier{}, nil)

	o, err := svc.Submit(context.Background(), submitFixture())
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, o.Status)
	assert.Equal(t, 550.0, o.Total)
	assert.NotZero(t, o.ID)
	assert.Len(t, repo.orders, 1)
}

func TestSubmitValidation(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, &mockNotifier{}, nil)

	cases := []struct {
		name   string
		mutate func(*SubmitRequest)
	}{
		{"empty email", func(r *SubmitRequest) { r.CustomerEmail = "" }},
		{"blank name", func(r *SubmitRequest) { r.CustomerName = "   " }},
		{"empty phone", func(r *SubmitRequest) { r.CustomerPhone = "" }},
		{"no items", func(r *SubmitRequest) { r.Items = nil }},
		{"zero quantity", func(r *SubmitRequest) { r.Items[0].Quantity = 0 }},
		{"negative price", func(r *SubmitRequest) { r.Items[0].UnitPrice = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := submitFixture()
			tc.mutate(&req)
			_, err := svc.Submit(context.Background(), req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			// No side effects on rejection.
			assert.Empty(t, repo.orders)
		})
	}
}

func TestSubmitRejectsDivergentClientTotal(t *testing.T) {
	svc := NewService(newMockRepository(), &mockNotifier{}, nil)

	req := submitFixture()
	bad := 600.0
	req.Total = &bad
	_, err := svc.Submit(context.Background(), req)
	assert.ErrorIs(t, err, ErrValidation)

	// A total within the rounding epsilon passes.
	req = submitFixture()
	close := 550.004
	req.Total = &close
	_, err = svc.Submit(context.Background(), req)
	assert.NoError(t, err)
}

func TestTransitionSendsExactlyOneEmail(t *testing.T) {
	repo := newMockRepository()
	notifier := &mockNotifier{}
	svc := NewService(repo, notifier, nil)

	o, err := svc.Submit(context.Background(), submitFixture())
	require.NoError(t, err)

	got, err := svc.Transition(context.Background(), o.ID, domain.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, got.Status)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "n@x.com", notifier.sent[0])
	assert.Equal(t, domain.OrderStatusConfirmed, notifier.statuses[0])
}

func TestTransitionRejectsTerminalOrders(t *testing.T) {
	repo := newMockRepository()
	notifier := &mockNotifier{}
	svc := NewService(repo, notifier, nil)

	o, err := svc.Submit(context.Background(), submitFixture())
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), o.ID, domain.OrderStatusConfirmed)
	require.NoError(t, err)

	// Second transition must be rejected, and must not email again.
	_, err = svc.Transition(context.Background(), o.ID, domain.OrderStatusRejected)
	assert.ErrorIs(t, err, ErrTerminalState)
	assert.Len(t, notifier.sent, 1)
	assert.Equal(t, domain.OrderStatusConfirmed, repo.orders[o.ID].Status)
}

func TestTransitionValidatesTargetStatus(t *testing.T) {
	svc := NewService(newMockRepository(), &mockNotifier{}, nil)
	_, err := svc.Transition(context.Background(), 1, domain.OrderStatusPending)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Transition(context.Background(), 1, domain.OrderStatus("Expédiée"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTransitionNotFound(t *testing.T) {
	svc := NewService(newMockRepository(), &mockNotifier{}, nil)
	_, err := svc.Transition(context.Background(), 42, domain.OrderStatusConfirmed)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotificationFailureKeepsStatus(t *testing.T) {
	repo := newMockRepository()
	notifier := &mockNotifier{err: errors.New("smtp: connection refused")}
	svc := NewService(repo, notifier, nil)

	o, err := svc.Submit(context.Background(), submitFixture())
	require.NoError(t, err)

	got, err := svc.Transition(context.Background(), o.ID, domain.OrderStatusConfirmed)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotification)
	// The status change is the durable fact; it survives the email failure.
	assert.Equal(t, domain.OrderStatusConfirmed, got.Status)
	assert.Equal(t, domain.OrderStatusConfirmed, repo.orders[o.ID].Status)
}

func TestNotifierReceivesSnapshot(t *testing.T) {
	repo := newMockRepository()
	notifier := &mockNotifier{}
	svc := NewService(repo, notifier, nil)

	o, err := svc.Submit(context.Background(), submitFixture())
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), o.ID, domain.OrderStatusRejected)
	require.NoError(t, err)

	require.Len(t, notifier.snapshots, 1)
	snap := notifier.snapshots[0]
	assert.Equal(t, 550.0, snap.Total)
	require.Len(t, snap.Items, 2)

	// Mutating the snapshot must not reach other holders of the order.
	snap.Items[0].Quantity = 99
	assert.Equal(t, 2, repo.orders[o.ID].Items[0].Quantity)
}

func TestDelete(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, &mockNotifier{}, nil)

	o, err := svc.Submit(context.Background(), submitFixture())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), o.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), o.ID), ErrNotFound)
}
