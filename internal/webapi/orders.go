package webapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/sakuraessence/storefront/internal/domain"
	"github.com/sakuraessence/storefront/internal/order"
	"github.com/sakuraessence/storefront/internal/webserver"
	"github.com/360EntSecGroup-Skylar/excelize"
	"go.uber.org/zap"
)

func registerOrderRoutes() {
	webserver.PubPOST("/orders", submitOrder)

	webserver.ApiGET("/orders", adminListOrders)
	webserver.ApiGET("/orders/:id", adminGetOrder)
	webserver.ApiPUT("/orders/:id/status", adminUpdateOrderStatus)
	webserver.ApiDELETE("/orders/:id", adminDeleteOrder)
	webserver.ApiGET("/admin/orders/export", adminExportOrders)
}

// submitOrder is the public checkout endpoint: it accepts the cart snapshot
// plus contact details and creates a pending order.
func submitOrder(c echo.Context) error {
	var req order.SubmitRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Requête invalide", err.Error())
	}
	o, err := orderSvc.Submit(c.Request().Context(), req)
	switch {
	case err == nil:
		return created(c, o)
	case errors.Is(err, order.ErrValidation):
		return fail(c, http.StatusBadRequest, "bad_request", err.Error(), nil)
	default:
		zap.L().Error("order submit failed", zap.Error(err), zap.String("namespace", "webapi"))
		return fail(c, http.StatusInternalServerError, "server_error",
			"La commande n'a pas pu être enregistrée, veuillez réessayer", nil)
	}
}

func adminListOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)
	status := domain.OrderStatus(c.QueryParam("status"))
	if status != "" && !status.Valid() {
		return fail(c, http.StatusBadRequest, "bad_request", "Statut inconnu", status)
	}
	rows, total, err := orderSvc.List(c.Request().Context(), status, page, pageSize)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "server_error", "Erreur serveur", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func adminGetOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Identifiant invalide", c.Param("id"))
	}
	o, err := orderSvc.Get(c.Request().Context(), id)
	switch {
	case err == nil:
		return ok(c, o)
	case errors.Is(err, order.ErrNotFound):
		return fail(c, http.StatusNotFound, "not_found", "Commande introuvable", nil)
	default:
		return fail(c, http.StatusInternalServerError, "server_error", "Erreur serveur", err.Error())
	}
}

type statusUpdateRequest struct {
	Status domain.OrderStatus `json:"status"`
}

// adminUpdateOrderStatus confirms or rejects a pending order. A notification
// failure after the committed status change still acknowledges success to the
// console; the durable status is the fact that matters.
func adminUpdateOrderStatus(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Identifiant invalide", c.Param("id"))
	}
	var req statusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Requête invalide", err.Error())
	}
	_, err = orderSvc.Transition(c.Request().Context(), id, req.Status)
	switch {
	case err == nil:
		return message(c, fmt.Sprintf("Statut mis à jour: %s", req.Status))
	case errors.Is(err, order.ErrNotification):
		return message(c, fmt.Sprintf("Statut mis à jour: %s", req.Status))
	case errors.Is(err, order.ErrValidation):
		return fail(c, http.StatusBadRequest, "bad_request", err.Error(), nil)
	case errors.Is(err, order.ErrNotFound):
		return fail(c, http.StatusNotFound, "not_found", "Commande introuvable", nil)
	case errors.Is(err, order.ErrTerminalState):
		return fail(c, http.StatusConflict, "conflict", "La commande est déjà traitée", err.Error())
	default:
		return fail(c, http.StatusInternalServerError, "server_error", "Erreur serveur", err.Error())
	}
}

func adminDeleteOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Identifiant invalide", c.Param("id"))
	}
	err = orderSvc.Delete(c.Request().Context(), id)
	switch {
	case err == nil:
		return message(c, "Commande supprimée")
	case errors.Is(err, order.ErrNotFound):
		return fail(c, http.StatusNotFound, "not_found", "Commande introuvable", nil)
	default:
		return fail(c, http.StatusInternalServerError, "server_error", "Erreur serveur", err.Error())
	}
}

// adminExportOrders streams the full order book as an xlsx workbook.
func adminExportOrders(c echo.Context) error {
	var rows []domain.Order
	if err := GetDB(c).Order("created_at desc").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "server_error", "Erreur serveur", err.Error())
	}

	sheet := "Commandes"
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheet)
	headers := []string{"ID", "Client", "Email", "Téléphone", "Articles", "Total", "Statut", "Date"}
	for i, h := range headers {
		f.SetCellValue(sheet, fmt.Sprintf("%c1", 'A'+i), h)
	}
	for i, o := range rows {
		line := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", line), fmt.Sprintf("%d", o.ID))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", line), o.CustomerName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", line), o.CustomerEmail)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", line), o.CustomerPhone)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", line), describeItems(o.Items))
		f.SetCellValue(sheet, fmt.Sprintf("F%d", line), o.Total)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", line), o.Status.String())
		f.SetCellValue(sheet, fmt.Sprintf("H%d", line), o.CreatedAt.Format("2006-01-02 15:04"))
	}

	c.Response().Header().Set(echo.HeaderContentType,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.xlsx"`)
	c.Response().WriteHeader(http.StatusOK)
	return f.Write(c.Response())
}

func describeItems(items []domain.OrderItem) string {
	out := ""
	for i, it := range items {
		if i > 0 {
			out += "; "
		}
		out += fmt.Sprintf("%dx %s (%s)", it.Quantity, it.Name, it.Variant.String())
	}
	return out
}
