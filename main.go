package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sakuraessence/storefront/config"
	"github.com/sakuraessence/storefront/internal/app"
	"github.com/sakuraessence/storefront/internal/domain"
	"github.com/sakuraessence/storefront/internal/mailer"
	"github.com/sakuraessence/storefront/internal/order"
	"github.com/sakuraessence/storefront/internal/stats"
	"github.com/sakuraessence/storefront/internal/webapi"
	"github.com/sakuraessence/storefront/internal/webserver"
	"go.uber.org/zap"
)

// settingsNotifier gates status emails behind the store.OrderEmailEnabled
// runtime setting so operators can mute notifications without a restart.
type settingsNotifier struct {
	app  *app.Application
	next order.Notifier
}

func (n *settingsNotifier) SendOrderStatusEmail(to string, status domain.OrderStatus, snapshot *domain.Order) error {
	if !n.app.GetSettingsBoolValue("store", "OrderEmailEnabled") {
		zap.L().Info("status email muted by settings", zap.String("to", to))
		return nil
	}
	return n.next.SendOrderStatusEmail(to, status, snapshot)
}

var (
	h        bool
	x        bool
	initdb   bool
	conffile string
	port     int
)

func init() {
	flag.BoolVar(&h, "h", false, "help usage")
	flag.BoolVar(&x, "x", false, "drop and recreate all tables, exit")
	flag.BoolVar(&initdb, "initdb", false, "reset database to factory defaults, exit")
	flag.StringVar(&conffile, "c", "sakuraessence.yml", "config file")
	flag.IntVar(&port, "p", 0, "web port override")
}

func main() {
	flag.Parse()
	if h {
		flag.Usage()
		os.Exit(0)
	}

	cfg := config.LoadConfig(conffile)
	if port > 0 {
		cfg.Web.Port = port
	}

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if x {
		application.DropAll()
		if err := application.MigrateDB(true); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(0)
	}
	if initdb {
		application.InitDb()
		os.Exit(0)
	}

	sender, err := mailer.New(application.SmtpSettings(), cfg.Store)
	if err != nil {
		zap.L().Fatal("mailer init failed", zap.Error(err))
	}
	defer sender.Close()

	orderSvc := order.NewService(
		order.NewGormRepository(application.DB()),
		&settingsNotifier{app: application, next: sender},
		application.Bus(),
	)
	statsSvc := stats.NewService(application.DB())

	webserver.Init(cfg)
	webapi.Init(application, orderSvc, statsSvc, sender)

	errc := make(chan error, 1)
	go func() {
		errc <- webserver.Instance().Start()
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errc:
		if err != nil {
			zap.L().Fatal("web server failed", zap.Error(err))
		}
	case sig := <-sigc:
		zap.L().Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := webserver.Instance().Shutdown(ctx); err != nil {
			zap.L().Error("shutdown error", zap.Error(err))
		}
	}
}
