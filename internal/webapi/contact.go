package webapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sakuraessence/storefront/internal/webserver"
)

type contactRequest struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
}

func registerContactRoutes() {
	webserver.PubPOST("/contact", submitContact)
}

// submitContact relays the contact form to the shop inbox and queues an
// acknowledgement back to the sender.
func submitContact(c echo.Context) error {
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Requête invalide", err.Error())
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || strings.TrimSpace(req.Message) == "" {
		return fail(c, http.StatusBadRequest, "bad_request",
			"Nom, email et message sont requis", nil)
	}
	if !strings.Contains(req.Email, "@") {
		return fail(c, http.StatusBadRequest, "bad_request", "Email invalide", nil)
	}
	if err := sender.SendContactMessage(req.Name, req.Email, req.Subject, req.Message); err != nil {
		return fail(c, http.StatusInternalServerError, "server_error",
			"Le message n'a pas pu être envoyé", nil)
	}
	return message(c, "Message envoyé, nous vous répondrons rapidement")
}
