package metrics

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
)

// Gauge metric names fed by the application jobs and the order event hooks.
const (
	SystemCPUUse   = "system_cpuuse"
	SystemMemUse   = "system_memuse"
	ProcessCPUUse  = "storefront_cpuuse"
	ProcessMemUse  = "storefront_memuse"
	OrdersSubmit   = "orders_submitted"
	OrdersConfirm  = "orders_confirmed"
	OrdersReject   = "orders_rejected"
	OrdersRevenue  = "orders_revenue"
)

var (
	mu      sync.RWMutex
	storage tstorage.Storage
)

// InitMetrics opens the tstorage store under the application workdir.
func InitMetrics(workdir string) error {
	mu.Lock()
	defer mu.Unlock()
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(filepath.Join(workdir, "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithPartitionDuration(6*time.Hour),
	)
	if err != nil {
		return err
	}
	storage = s
	return nil
}

// SetGauge records a point for the named metric at the current time.
func SetGauge(name string, value int64) {
	mu.RLock()
	defer mu.RUnlock()
	if storage == nil {
		return
	}
	_ = storage.InsertRows([]tstorage.Row{
		{
			Metric:    name,
			DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: float64(value)},
		},
	})
}

// Query returns the stored points for a metric between start and end.
func Query(name string, start, end time.Time) ([]*tstorage.DataPoint, error) {
	mu.RLock()
	defer mu.RUnlock()
	if storage == nil {
		return nil, nil
	}
	return storage.Select(name, nil, start.Unix(), end.Unix())
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
