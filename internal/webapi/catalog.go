package webapi

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/sakuraessence/storefront/internal/domain"
	"github.com/sakuraessence/storefront/internal/webserver"
	"github.com/sakuraessence/storefront/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerCatalogRoutes() {
	webserver.PubGET("/catalog/:collection", listCatalog)
	webserver.PubGET("/catalog/:collection/:id", getCatalogItem)

	webserver.ApiGET("/admin/catalog/:collection", adminListCatalog)
	webserver.ApiPOST("/admin/catalog/:collection", adminCreateCatalogItem)
	webserver.ApiPUT("/admin/catalog/:collection/:id", adminUpdateCatalogItem)
	webserver.ApiDELETE("/admin/catalog/:collection/:id", adminDeleteCatalogItem)
	webserver.ApiGET("/admin/products/export", adminExportProducts)
}

func collectionParam(c echo.Context) (string, bool) {
	name := c.Param("collection")
	return name, domain.ValidCollection(name)
}

func unknownCollection(c echo.Context) error {
	return fail(c, http.StatusNotFound, "not_found", "Collection inconnue", c.Param("collection"))
}

func listCatalog(c echo.Context) error {
	collection, valid := collectionParam(c)
	if !valid {
		return unknownCollection(c)
	}
	var items []domain.Product
	if err := GetDB(c).
		Where("collection = ?", collection).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "server_error", "Erreur serveur", err.Error())
	}
	return ok(c, items)
}

func getCatalogItem(c echo.Context) error {
	collection, valid := collectionParam(c)
	if !valid {
		return unknownCollection(c)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Identifiant invalide", c.Param("id"))
	}
	var item domain.Product
	err = GetDB(c).Where("collection = ? and id = ?", collection, id).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return fail(c, http.StatusNotFound, "not_found", "Produit introuvable", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "server_error", "Erreur serveur", err.Error())
	}
	return ok(c, &item)
}

func adminListCatalog(c echo.Context) error {
	collection, valid := collectionParam(c)
	if !valid {
		return unknownCollection(c)
	}
	page, pageSize := parsePagination(c)
	query := GetDB(c).Model(&domain.Product{}).Where("collection = ?", collection)
	if keyword := strings.TrimSpace(c.QueryParam("q")); keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("name like ? or brand like ? or type like ?", like, like, like)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "server_error", "Erreur serveur", err.Error())
	}
	var items []domain.Product
	if err := query.Order("created_at desc").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&items).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "server_error", "Erreur serveur", err.Error())
	}
	return paged(c, items, total, page, pageSize)
}

// bindProductForm reads the multipart form fields shared by create and update.
// The prices field carries the tier list as a JSON document, the way the admin
// console submits it alongside the image files.
func bindProductForm(c echo.Context, item *domain.Product) error {
	item.Name = strings.TrimSpace(c.FormValue("name"))
	item.Description = c.FormValue("description")
	item.Type = strings.TrimSpace(c.FormValue("type"))
	item.Notes = c.FormValue("notes")
	item.Brand = strings.TrimSpace(c.FormValue("brand"))
	if raw := c.FormValue("prices"); raw != "" {
		var tiers []domain.PriceTier
		if err := jsoniter.UnmarshalFromString(raw, &tiers); err != nil {
			return err
		}
		item.Prices = tiers
	}
	return nil
}

func adminCreateCatalogItem(c echo.Context) error {
	collection, valid := collectionParam(c)
	if !valid {
		return unknownCollection(c)
	}
	item := domain.Product{ID: common.UUIDint64(), Collection: collection}
	if err := bindProductForm(c, &item); err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Formulaire invalide", err.Error())
	}
	if item.Name == "" {
		return fail(c, http.StatusBadRequest, "bad_request", "Le nom du produit est requis", nil)
	}
	if len(item.Prices) == 0 {
		return fail(c, http.StatusBadRequest, "bad_request", "Au moins un tarif est requis", nil)
	}
	images, err := saveUploadedImages(c, "images")
	if err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Image invalide", err.Error())
	}
	item.Images = images
	if err := GetDB(c).Create(&item).Error; err != nil {
		removeUploads(images)
		return fail(c, http.StatusInternalServerError, "server_error", "Erreur serveur", err.Error())
	}
	zap.L().Info("catalog item created",
		zap.String("collection", collection),
		zap.Int64("id", item.ID),
		zap.String("namespace", "webapi"))
	return created(c, &item)
}

func adminUpdateCatalogItem(c echo.Context) error {
	collection, valid := collectionParam(c)
	if !valid {
		return unknownCollection(c)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Identifiant invalide", c.Param("id"))
	}
	var item domain.Product
	err = GetDB(c).Where("collection = ? and id = ?", collection, id).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return fail(c, http.StatusNotFound, "not_found", "Produit introuvable", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "server_error", "Erreur serveur", err.Error())
	}
	if err := bindProductForm(c, &item); err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Formulaire invalide", err.Error())
	}
	if item.Name == "" {
		return fail(c, http.StatusBadRequest, "bad_request", "Le nom du produit est requis", nil)
	}
	newImages, err := saveUploadedImages(c, "images")
	if err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Image invalide", err.Error())
	}
	if len(newImages) > 0 {
		old := item.Images
		item.Images = newImages
		defer removeUploads(old)
	}
	if err := GetDB(c).Save(&item).Error; err != nil {
		removeUploads(newImages)
		return fail(c, http.StatusInternalServerError, "server_error", "Erreur serveur", err.Error())
	}
	return ok(c, &item)
}

func adminDeleteCatalogItem(c echo.Context) error {
	collection, valid := collectionParam(c)
	if !valid {
		return unknownCollection(c)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Identifiant invalide", c.Param("id"))
	}
	var item domain.Product
	err = GetDB(c).Where("collection = ? and id = ?", collection, id).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return fail(c, http.StatusNotFound, "not_found", "Produit introuvable", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "server_error", "Erreur serveur", err.Error())
	}
	if err := GetDB(c).Delete(&domain.Product{}, id).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "server_error", "Erreur serveur", err.Error())
	}
	removeUploads(item.Images)
	return message(c, "Produit supprimé")
}

// removeUploads deletes image files previously stored under the upload dir.
// Paths outside it are ignored.
func removeUploads(images []string) {
	dir := actx.Config().GetUploadDir()
	for _, img := range images {
		name := filepath.Base(img)
		if name == "." || name == "/" || name == "" {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
			zap.L().Warn("remove upload failed", zap.String("image", img), zap.Error(err))
		}
	}
}

type productExportRow struct {
	ID         int64   `csv:"id"`
	Collection string  `csv:"collection"`
	Name       string  `csv:"name"`
	Brand      string  `csv:"brand"`
	Type       string  `csv:"type"`
	Variant    string  `csv:"variant"`
	Price      float64 `csv:"price"`
}

func adminExportProducts(c echo.Context) error {
	var items []domain.Product
	if err := GetDB(c).Order("collection, created_at desc").Find(&items).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "server_error", "Erreur serveur", err.Error())
	}
	rows := make([]productExportRow, 0, len(items))
	for _, item := range items {
		for _, tier := range item.Prices {
			rows = append(rows, productExportRow{
				ID:         item.ID,
				Collection: item.Collection,
				Name:       item.Name,
				Brand:      item.Brand,
				Type:       item.Type,
				Variant:    tier.Variant.String(),
				Price:      tier.Amount,
			})
		}
	}
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	return gocsv.Marshal(&rows, c.Response())
}
