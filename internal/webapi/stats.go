package webapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sakuraessence/storefront/internal/stats"
	"github.com/sakuraessence/storefront/internal/webserver"
)

func registerStatsRoutes() {
	webserver.ApiGET("/admin/stats", adminStats)
}

// adminStats serves the console dashboard aggregates, optionally limited to a
// from/to window.
func adminStats(c echo.Context) error {
	from, to, err := stats.ParseRange(c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Période invalide", err.Error())
	}
	dashboard, err := statsSvc.Dashboard(c.Request().Context(), from, to)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "server_error", "Erreur serveur", err.Error())
	}
	return ok(c, dashboard)
}
