package webapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sakuraessence/storefront/internal/domain"
	"github.com/sakuraessence/storefront/internal/webserver"
	"github.com/sakuraessence/storefront/pkg/common"
	"gorm.io/gorm"
)

func registerBannerRoutes() {
	webserver.PubGET("/banners", listBanners)

	webserver.ApiGET("/admin/banners", adminListBanners)
	webserver.ApiPOST("/admin/banners", adminCreateBanner)
	webserver.ApiPUT("/admin/banners/:id/toggle", adminToggleBanner)
	webserver.ApiDELETE("/admin/banners/:id", adminDeleteBanner)
}

// listBanners returns the active carousel entries, newest first. The admin
// console passes all=true to see disabled entries as well.
func listBanners(c echo.Context) error {
	query := GetDB(c).Order("created_at desc")
	if c.QueryParam("all") != "true" {
		query = query.Where("active = ?", true)
	}
	var banners []domain.Banner
	if err := query.Find(&banners).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "server_error", "Erreur serveur", err.Error())
	}
	return ok(c, banners)
}

func adminListBanners(c echo.Context) error {
	var banners []domain.Banner
	if err := GetDB(c).Order("created_at desc").Find(&banners).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "server_error", "Erreur serveur", err.Error())
	}
	return ok(c, banners)
}

func adminCreateBanner(c echo.Context) error {
	banner := domain.Banner{
		ID:       common.UUIDint64(),
		Title:    strings.TrimSpace(c.FormValue("title")),
		Subtitle: c.FormValue("subtitle"),
		Link:     strings.TrimSpace(c.FormValue("link")),
		Active:   true,
	}
	if banner.Title == "" {
		return fail(c, http.StatusBadRequest, "bad_request", "Le titre est requis", nil)
	}
	images, err := saveUploadedImages(c, "image")
	if err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Image invalide", err.Error())
	}
	if len(images) == 0 {
		return fail(c, http.StatusBadRequest, "bad_request", "L'image est requise", nil)
	}
	banner.Image = images[0]
	if err := GetDB(c).Create(&banner).Error; err != nil {
		removeUploads(images)
		return fail(c, http.StatusInternalServerError, "server_error", "Erreur serveur", err.Error())
	}
	return created(c, &banner)
}

func adminToggleBanner(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Identifiant invalide", c.Param("id"))
	}
	var banner domain.Banner
	err = GetDB(c).First(&banner, id).Error
	if err == gorm.ErrRecordNotFound {
		return fail(c, http.StatusNotFound, "not_found", "Bannière introuvable", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "server_error", "Erreur serveur", err.Error())
	}
	if err := GetDB(c).Model(&banner).Update("active", !banner.Active).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "server_error", "Erreur serveur", err.Error())
	}
	banner.Active = !banner.Active
	return ok(c, &banner)
}

func adminDeleteBanner(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Identifiant invalide", c.Param("id"))
	}
	var banner domain.Banner
	err = GetDB(c).First(&banner, id).Error
	if err == gorm.ErrRecordNotFound {
		return fail(c, http.StatusNotFound, "not_found", "Bannière introuvable", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "server_error", "Erreur serveur", err.Error())
	}
	if err := GetDB(c).Delete(&domain.Banner{}, id).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "server_error", "Erreur serveur", err.Error())
	}
	if banner.Image != "" {
		removeUploads([]string{banner.Image})
	}
	return message(c, "Bannière supprimée")
}
