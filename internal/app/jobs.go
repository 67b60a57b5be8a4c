package app

import (
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sakuraessence/storefront/internal/domain"
	"github.com/sakuraessence/storefront/internal/order"
	"github.com/sakuraessence/storefront/pkg/metrics"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSystemMonitorTask()
		go a.SchedProcessMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		a.gormDB.
			Where("opt_time < ? ", time.Now().
				Add(-time.Hour*24*365)).Delete(domain.SysOprLog{})
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	// Keep the dashboard's order gauges fresh on lifecycle events.
	if err := a.bus.SubscribeAsync(order.TopicOrderSubmitted, func(_ *domain.Order) {
		a.refreshOrderGauges()
	}, false); err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}
	if err := a.bus.SubscribeAsync(order.TopicOrderStatusChanged, func(_ *domain.Order) {
		a.refreshOrderGauges()
	}, false); err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedSystemMonitorTask system monitor
func (a *Application) SchedSystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	_cpuuse, err := cpu.Percent(0, false)
	if err == nil && len(_cpuuse) > 0 {
		metrics.SetGauge(metrics.SystemCPUUse, int64(_cpuuse[0]*100))
	}

	_meminfo, err := mem.VirtualMemory()
	if err == nil {
		metrics.SetGauge(metrics.SystemMemUse, int64(_meminfo.Used/1024/1024))
	}
}

// SchedProcessMonitorTask app process monitor
func (a *Application) SchedProcessMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}

	cpuuse, err := p.CPUPercent()
	if err == nil {
		metrics.SetGauge(metrics.ProcessCPUUse, int64(cpuuse*100))
	}

	meminfo, err := p.MemoryInfo()
	if err == nil {
		metrics.SetGauge(metrics.ProcessMemUse, int64(meminfo.RSS/1024/1024))
	}
}

func (a *Application) refreshOrderGauges() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	var pending, confirmed, rejected int64
	a.gormDB.Model(&domain.Order{}).Where("status = ?", domain.OrderStatusPending).Count(&pending)
	a.gormDB.Model(&domain.Order{}).Where("status = ?", domain.OrderStatusConfirmed).Count(&confirmed)
	a.gormDB.Model(&domain.Order{}).Where("status = ?", domain.OrderStatusRejected).Count(&rejected)

	var revenue float64
	a.gormDB.Model(&domain.Order{}).
		Where("status = ?", domain.OrderStatusConfirmed).
		Select("COALESCE(SUM(total), 0)").Scan(&revenue)

	metrics.SetGauge(metrics.OrdersSubmit, pending)
	metrics.SetGauge(metrics.OrdersConfirm, confirmed)
	metrics.SetGauge(metrics.OrdersReject, rejected)
	metrics.SetGauge(metrics.OrdersRevenue, int64(revenue))
}
