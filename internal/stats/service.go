// Package stats builds the admin dashboard read-model. It is a reporting
// concern separate from the order lifecycle: aggregates are recomputed per
// load from the order table, with singleflight collapsing concurrent loads.
package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/araddon/dateparse"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/sakuraessence/storefront/internal/domain"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// French month labels, january first.
var monthNames = []string{
	"Jan", "Fév", "Mar", "Avr", "Mai", "Juin",
	"Juil", "Août", "Sep", "Oct", "Nov", "Déc",
}

type MonthlyRevenue struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type TopProduct struct {
	Name       string  `json:"name"`
	TotalSales float64 `json:"totalSales"`
	TotalQty   int     `json:"totalQty"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type RevenueGrowth struct {
	Current    float64 `json:"current"`
	Previous   float64 `json:"previous"`
	GrowthRate float64 `json:"growthRate"`
}

type Dashboard struct {
	TotalOrders     int64            `json:"totalOrders"`
	TotalRevenue    float64          `json:"totalRevenue"`
	TotalProducts   int64            `json:"totalProducts"`
	TotalClients    int64            `json:"totalClients"`
	AverageOrder    float64          `json:"averageOrder"`
	MonthlyRevenue  []MonthlyRevenue `json:"monthlyRevenue"`
	TopProducts     []TopProduct     `json:"topProducts"`
	OrdersStatus    []StatusCount    `json:"ordersStatus"`
	RevenueGrowth   RevenueGrowth    `json:"revenueGrowth"`
}

type Service struct {
	db    *gorm.DB
	group singleflight.Group
	now   func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// ParseRange parses free-form from/to query values. Empty strings leave the
// corresponding bound open.
func ParseRange(fromStr, toStr string) (from, to time.Time, err error) {
	if fromStr != "" {
		from, err = dateparse.ParseAny(fromStr)
		if err != nil {
			return from, to, errors.Wrapf(err, "invalid from date %q", fromStr)
		}
	}
	if toStr != "" {
		to, err = dateparse.ParseAny(toStr)
		if err != nil {
			return from, to, errors.Wrapf(err, "invalid to date %q", toStr)
		}
	}
	return from, to, nil
}

// Dashboard computes the full dashboard for the optional date range.
// Concurrent identical loads share one computation.
func (s *Service) Dashboard(ctx context.Context, from, to time.Time) (*Dashboard, error) {
	key := fmt.Sprintf("%d-%d", from.Unix(), to.Unix())
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.compute(ctx, from, to)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dashboard), nil
}

func (s *Service) ranged(q *gorm.DB, from, to time.Time) *gorm.DB {
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("created_at <= ?", to)
	}
	return q
}

func (s *Service) compute(ctx context.Context, from, to time.Time) (*Dashboard, error) {
	d := &Dashboard{}

	if err := s.ranged(s.db.WithContext(ctx).Model(&domain.Order{}), from, to).
		Count(&d.TotalOrders).Error; err != nil {
		return nil, errors.Wrap(err, "count orders")
	}
	if err := s.db.WithContext(ctx).Model(&domain.Product{}).
		Count(&d.TotalProducts).Error; err != nil {
		return nil, errors.Wrap(err, "count products")
	}
	if err := s.ranged(s.db.WithContext(ctx).Model(&domain.Order{}), from, to).
		Distinct("customer_email").Count(&d.TotalClients).Error; err != nil {
		return nil, errors.Wrap(err, "count clients")
	}

	var statusRows []StatusCount
	if err := s.ranged(s.db.WithContext(ctx).Model(&domain.Order{}), from, to).
		Select("status, count(*) as count").Group("status").
		Scan(&statusRows).Error; err != nil {
		return nil, errors.Wrap(err, "status split")
	}
	d.OrdersStatus = statusRows

	// All revenue figures come from confirmed orders only.
	var confirmed []domain.Order
	if err := s.ranged(s.db.WithContext(ctx).
		Where("status = ?", domain.OrderStatusConfirmed), from, to).
		Find(&confirmed).Error; err != nil {
		return nil, errors.Wrap(err, "load confirmed orders")
	}

	totals := make([]float64, 0, len(confirmed))
	for _, o := range confirmed {
		totals = append(totals, o.Total)
	}
	if len(totals) > 0 {
		d.TotalRevenue, _ = stats.Sum(totals)
		d.AverageOrder, _ = stats.Mean(totals)
	}

	d.MonthlyRevenue = monthlyRevenue(confirmed)
	d.TopProducts = topProducts(confirmed, 5)
	d.RevenueGrowth = revenueGrowth(confirmed, s.now())
	return d, nil
}

func monthlyRevenue(orders []domain.Order) []MonthlyRevenue {
	buckets := make(map[time.Month][]float64)
	for _, o := range orders {
		m := o.CreatedAt.Month()
		buckets[m] = append(buckets[m], o.Total)
	}
	out := make([]MonthlyRevenue, 0, len(buckets))
	for m := time.January; m <= time.December; m++ {
		vals, ok := buckets[m]
		if !ok {
			continue
		}
		sum, _ := stats.Sum(vals)
		out = append(out, MonthlyRevenue{Month: monthNames[m-1], Amount: sum})
	}
	return out
}

func topProducts(orders []domain.Order, limit int) []TopProduct {
	agg := make(map[string]*TopProduct)
	for _, o := range orders {
		for _, it := range o.Items {
			tp, ok := agg[it.Name]
			if !ok {
				tp = &TopProduct{Name: it.Name}
				agg[it.Name] = tp
			}
			tp.TotalSales += it.Subtotal()
			tp.TotalQty += it.Quantity
		}
	}
	out := make([]TopProduct, 0, len(agg))
	for _, tp := range agg {
		out = append(out, *tp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSales != out[j].TotalSales {
			return out[i].TotalSales > out[j].TotalSales
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func revenueGrowth(orders []domain.Order, now time.Time) RevenueGrowth {
	curYear, curMonth, _ := now.Date()
	prev := now.AddDate(0, -1, -now.Day()+1)
	prevYear, prevMonth, _ := prev.Date()

	var g RevenueGrowth
	for _, o := range orders {
		y, m, _ := o.CreatedAt.Date()
		switch {
		case y == curYear && m == curMonth:
			g.Current += o.Total
		case y == prevYear && m == prevMonth:
			g.Previous += o.Total
		}
	}
	if g.Previous == 0 {
		g.GrowthRate = 100
	} else {
		g.GrowthRate = (g.Current - g.Previous) / g.Previous * 100
	}
	return g
}
