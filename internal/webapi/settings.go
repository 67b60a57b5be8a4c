package webapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sakuraessence/storefront/internal/domain"
	"github.com/sakuraessence/storefront/internal/webserver"
)

type settingUpdateRequest struct {
	Type  string `json:"type" form:"type"`
	Name  string `json:"name" form:"name"`
	Value string `json:"value" form:"value"`
}

func registerSettingsRoutes() {
	webserver.ApiGET("/admin/settings", adminListSettings)
	webserver.ApiPOST("/admin/settings", adminUpdateSetting)
}

func adminListSettings(c echo.Context) error {
	var rows []domain.SysConfig
	if err := GetDB(c).Order("sort").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "server_error", "Erreur serveur", err.Error())
	}
	return ok(c, rows)
}

func adminUpdateSetting(c echo.Context) error {
	var req settingUpdateRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Requête invalide", err.Error())
	}
	req.Type = strings.TrimSpace(req.Type)
	req.Name = strings.TrimSpace(req.Name)
	if req.Type == "" || req.Name == "" {
		return fail(c, http.StatusBadRequest, "bad_request", "Type et nom sont requis", nil)
	}
	if err := actx.SetSettingsValue(req.Type, req.Name, req.Value); err != nil {
		return fail(c, http.StatusInternalServerError, "server_error", "Erreur serveur", err.Error())
	}
	return message(c, "Paramètre enregistré")
}
