package order

import (
	"context"
	"testing"

	"github.com/sakuraessence/storefront/internal/domain"
	"github.com/sakuraessence/storefront/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Order{}))
	return db
}

func storedOrder() *domain.Order {
	return &domain.Order{
		ID: common.UUIDint64(),
		Items: []domain.OrderItem{
			{Name: "Oud Impérial", Variant: domain.VolumeVariant(50), Quantity: 2, UnitPrice: 200},
		},
		CustomerName:  "Nadia",
		CustomerEmail: "n@x.com",
		CustomerPhone: "0600000000",
		Total:         400,
		Status:        domain.OrderStatusPending,
	}
}

func TestGormRepositoryRoundTrip(t *testing.T) {
	repo := NewGormRepository(testDB(t))
	ctx := context.Background()

	o := storedOrder()
	require.NoError(t, repo.Create(ctx, o))

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.CustomerEmail, got.CustomerEmail)
	require.Len(t, got.Items, 1)
	assert.Equal(t, domain.VolumeVariant(50), got.Items[0].Variant)
	assert.Equal(t, domain.OrderStatusPending, got.Status)
}

func TestGormRepositoryConditionalTransition(t *testing.T) {
	repo := NewGormRepository(testDB(t))
	ctx := context.Background()

	o := storedOrder()
	require.NoError(t, repo.Create(ctx, o))

	updated, err := repo.UpdateStatusFromPending(ctx, o.ID, domain.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.True(t, updated)

	// The guard is in the WHERE clause: a second writer matches zero rows.
	updated, err = repo.UpdateStatusFromPending(ctx, o.ID, domain.OrderStatusRejected)
	require.NoError(t, err)
	assert.False(t, updated)

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, got.Status)
}

func TestGormRepositoryNotFound(t *testing.T) {
	repo := NewGormRepository(testDB(t))
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 12345)
	assert.ErrorIs(t, err, ErrNotFound)

	existed, err := repo.Delete(ctx, 12345)
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestGormRepositoryListFilterAndOrder(t *testing.T) {
	repo := NewGormRepository(testDB(t))
	ctx := context.Background()

	first := storedOrder()
	require.NoError(t, repo.Create(ctx, first))
	second := storedOrder()
	second.Status = domain.OrderStatusConfirmed
	require.NoError(t, repo.Create(ctx, second))

	rows, total, err := repo.List(ctx, "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rows, 2)

	rows, total, err = repo.List(ctx, domain.OrderStatusConfirmed, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, second.ID, rows[0].ID)
}
