package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ccotek/cocoti-pool-flow/internal/checkout"
)

// CheckoutHandler receives provider callback events and feeds the bridge
type CheckoutHandler struct {
	bridge *checkout.Bridge
}

// NewCheckoutHandler creates the checkout handler
func NewCheckoutHandler(bridge *checkout.Bridge) *CheckoutHandler {
	return &CheckoutHandler{bridge: bridge}
}

// Callback resolves a checkout session from a provider event
func (h *CheckoutHandler) Callback(c *gin.Context) {
	var req CheckoutCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	err := h.bridge.Resolve(checkout.Event{
		Ref:     req.InvoiceToken,
		Kind:    req.Event,
		Message: req.Message,
	})
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "event accepted", nil)
}
