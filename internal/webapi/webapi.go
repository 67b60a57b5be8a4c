// Package webapi holds the storefront's HTTP handlers: the public catalog,
// banner, order submission and contact endpoints, and the JWT-guarded admin
// console endpoints.
package webapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sakuraessence/storefront/config"
	"github.com/sakuraessence/storefront/internal/mailer"
	"github.com/sakuraessence/storefront/internal/order"
	"github.com/sakuraessence/storefront/internal/stats"
	"gorm.io/gorm"
)

// AppContext is the slice of the application the handlers need.
type AppContext interface {
	DB() *gorm.DB
	Config() *config.AppConfig
	GetSettingsStringValue(category, key string) string
	SetSettingsValue(category, name, value string) error
}

var (
	actx     AppContext
	orderSvc *order.Service
	statsSvc *stats.Service
	sender   *mailer.Mailer
)

// Init wires the handler collaborators and registers all routes.
func Init(a AppContext, o *order.Service, s *stats.Service, m *mailer.Mailer) {
	actx = a
	orderSvc = o
	statsSvc = s
	sender = m

	registerAuthRoutes()
	registerCatalogRoutes()
	registerBannerRoutes()
	registerOrderRoutes()
	registerCheckoutRoutes()
	registerContactRoutes()
	registerStatsRoutes()
	registerSettingsRoutes()
}

func GetDB(c echo.Context) *gorm.DB {
	_ = c
	return actx.DB()
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, data)
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"code":    code,
		"message": message,
		"detail":  detail,
	})
}

func message(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, map[string]string{"message": msg})
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":    rows,
		"total":   total,
		"page":    page,
		"perPage": pageSize,
	})
}

func parsePagination(c echo.Context) (page, pageSize int) {
	page = 1
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	pageSize = 20
	perPage := c.QueryParam("perPage")
	if perPage == "" {
		perPage = c.QueryParam("pageSize")
	}
	if ps, err := strconv.Atoi(perPage); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
