package stats

import (
	"context"
	"testing"
	"time"

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
	require.NoError(t, db.AutoMigrate(&domain.Order{}, &domain.Product{}))
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, status domain.OrderStatus, total float64, created time.Time, items ...domain.OrderItem) {
	t.Helper()
	require.NoError(t, db.Create(&domain.Order{
		ID:            common.UUIDint64(),
		Items:         items,
		CustomerName:  "Nadia",
		CustomerEmail: "n@x.com",
		CustomerPhone: "0600000000",
		Total:         total,
		Status:        status,
		CreatedAt:     created,
	}).Error)
}

func TestDashboardAggregates(t *testing.T) {
	db := testDB(t)
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

	seedOrder(t, db, domain.OrderStatusConfirmed, 400, now,
		domain.OrderItem{Name: "Oud Impérial", Variant: domain.VolumeVariant(50), Quantity: 2, UnitPrice: 200})
	seedOrder(t, db, domain.OrderStatusConfirmed, 150, now.AddDate(0, -1, 0),
		domain.OrderItem{Name: "Coffret Rituel", Variant: domain.SizeVariant("M"), Quantity: 1, UnitPrice: 150})
	seedOrder(t, db, domain.OrderStatusPending, 999, now)
	seedOrder(t, db, domain.OrderStatusRejected, 50, now)

	svc := NewService(db)
	svc.now = func() time.Time { return now }

	d, err := svc.Dashboard(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.EqualValues(t, 4, d.TotalOrders)
	assert.EqualValues(t, 1, d.TotalClients)
	// revenue counts confirmed orders only
	assert.Equal(t, 550.0, d.TotalRevenue)
	assert.Equal(t, 275.0, d.AverageOrder)

	require.Len(t, d.MonthlyRevenue, 2)
	assert.Equal(t, MonthlyRevenue{Month: "Fév", Amount: 150}, d.MonthlyRevenue[0])
	assert.Equal(t, MonthlyRevenue{Month: "Mar", Amount: 400}, d.MonthlyRevenue[1])

	require.Len(t, d.TopProducts, 2)
	assert.Equal(t, "Oud Impérial", d.TopProducts[0].Name)
	assert.Equal(t, 400.0, d.TopProducts[0].TotalSales)
	assert.Equal(t, 2, d.TopProducts[0].TotalQty)

	assert.Equal(t, RevenueGrowth{Current: 400, Previous: 150, GrowthRate: (400 - 150) / 150.0 * 100}, d.RevenueGrowth)

	statuses := map[string]int64{}
	for _, sc := range d.OrdersStatus {
		statuses[sc.Status] = sc.Count
	}
	assert.EqualValues(t, 2, statuses["Confirmée"])
	assert.EqualValues(t, 1, statuses["En attente"])
	assert.EqualValues(t, 1, statuses["Rejetée"])
}

func TestRevenueGrowthWithoutPreviousMonth(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	g := revenueGrowth([]domain.Order{
		{Total: 300, CreatedAt: now},
	}, now)
	assert.Equal(t, 300.0, g.Current)
	assert.Equal(t, 0.0, g.Previous)
	assert.Equal(t, 100.0, g.GrowthRate)
}

func TestTopProductsLimitAndOrder(t *testing.T) {
	orders := []domain.Order{{
		Items: []domain.OrderItem{
			{Name: "A", Quantity: 1, UnitPrice: 10},
			{Name: "B", Quantity: 1, UnitPrice: 30},
			{Name: "C", Quantity: 1, UnitPrice: 20},
		},
	}}
	top := topProducts(orders, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "B", top[0].Name)
	assert.Equal(t, "C", top[1].Name)
}

func TestParseRange(t *testing.T) {
	from, to, err := ParseRange("2025-01-01", "2025-03-31")
	require.NoError(t, err)
	assert.Equal(t, 2025, from.Year())
	assert.Equal(t, time.March, to.Month())

	_, _, err = ParseRange("not-a-date", "")
	assert.Error(t, err)

	from, to, err = ParseRange("", "")
	require.NoError(t, err)
	assert.True(t, from.IsZero())
	assert.True(t, to.IsZero())
}

func TestDashboardRangeFilter(t *testing.T) {
	db := testDB(t)
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	seedOrder(t, db, domain.OrderStatusConfirmed, 100, now)
	seedOrder(t, db, domain.OrderStatusConfirmed, 200, now.AddDate(-1, 0, 0))

	svc := NewService(db)
	svc.now = func() time.Time { return now }

	d, err := svc.Dashboard(context.Background(), now.AddDate(0, -2, 0), now.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, 100.0, d.TotalRevenue)
	assert.EqualValues(t, 1, d.TotalOrders)
}
