package webapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sakuraessence/storefront/internal/domain"
	"github.com/sakuraessence/storefront/internal/webserver"
	"github.com/sakuraessence/storefront/pkg/common"
	"go.uber.org/zap"
)

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func registerAuthRoutes() {
	webserver.PubPOST("/admin/login", adminLogin)
	webserver.ApiGET("/admin/session", adminSession)
}

func adminLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Requête invalide", err.Error())
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "bad_request", "Identifiants requis", nil)
	}

	var opr domain.SysOpr
	err := GetDB(c).Where("username = ?", req.Username).First(&opr).Error
	if err != nil {
		zap.L().Info("admin login failed", zap.String("username", req.Username), zap.String("namespace", "webapi"))
		return fail(c, http.StatusUnauthorized, "unauthorized", "Admin introuvable", nil)
	}
	if opr.Status == common.DISABLED {
		return fail(c, http.StatusUnauthorized, "unauthorized", "Compte désactivé", nil)
	}
	if !common.CheckPassword(opr.Password, req.Password) {
		GetDB(c).Create(&domain.SysOprLog{
			ID:        common.UUIDint64(),
			OprName:   opr.Username,
			OprIp:     c.RealIP(),
			OptAction: "login_denied",
			OptDesc:   "bad password",
			OptTime:   time.Now(),
		})
		return fail(c, http.StatusUnauthorized, "unauthorized", "Mot de passe incorrect", nil)
	}

	token, err := webserver.CreateToken(actx.Config().Web.Secret, opr.Username, opr.Level)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "server_error", "Erreur serveur", err.Error())
	}

	GetDB(c).Model(&domain.SysOpr{}).Where("id = ?", opr.ID).Update("last_login", time.Now())
	GetDB(c).Create(&domain.SysOprLog{
		ID:        common.UUIDint64(),
		OprName:   opr.Username,
		OprIp:     c.RealIP(),
		OptAction: "login",
		OptDesc:   "admin console login",
		OptTime:   time.Now(),
	})

	return ok(c, map[string]interface{}{
		"token":    token,
		"username": opr.Username,
		"level":    opr.Level,
	})
}

func adminSession(c echo.Context) error {
	return ok(c, map[string]interface{}{"status": "ok"})
}
