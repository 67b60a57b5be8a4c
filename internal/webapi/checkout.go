package webapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sakuraessence/storefront/internal/cart"
	"github.com/sakuraessence/storefront/internal/webserver"
	"github.com/sakuraessence/storefront/internal/whatsapp"
)

type whatsappCheckoutRequest struct {
	Items         []cart.LineItem `json:"items"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	CustomerPhone string          `json:"customerPhone"`
}

func registerCheckoutRoutes() {
	webserver.PubPOST("/checkout/whatsapp", whatsappCheckout)
}

// whatsappCheckout composes the prefilled wa.me link for the shopper's cart so
// the storefront can open a WhatsApp conversation with the shop number.
func whatsappCheckout(c echo.Context) error {
	var req whatsappCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Requête invalide", err.Error())
	}
	if len(req.Items) == 0 {
		return fail(c, http.StatusBadRequest, "bad_request", "Le panier est vide", nil)
	}

	store := actx.Config().Store
	number := store.WhatsAppNumber
	if v := actx.GetSettingsStringValue("store", "WhatsAppNumber"); v != "" {
		number = v
	}
	msg := whatsapp.CartMessage(store.Name, store.Currency, req.Items,
		req.CustomerName, req.CustomerPhone, req.CustomerEmail)
	return ok(c, map[string]string{
		"url": whatsapp.URL(number, msg),
	})
}
