// README: Card payment handlers: hold at creation, capture on delivery.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lani/internal/http/middleware"
	"lani/internal/modules/order"
	"lani/internal/payments"
	"lani/internal/types"
)

type PaymentHandler struct {
	stripe   *payments.Stripe
	orders   *order.Service
	previews FilePreviewer
}

func NewPaymentHandler(stripe *payments.Stripe, orders *order.Service, previews FilePreviewer) *PaymentHandler {
	return &PaymentHandler{stripe: stripe, orders: orders, previews: previews}
}

// Hold authorizes the fare on the sender's card. Only the order's customer
// can start a card payment, and only for sender-settled fares.
func (h *PaymentHandler) Hold(c *gin.Context) {
	if !h.stripe.Enabled() {
		writeError(c, http.StatusServiceUnavailable, "card payments are not configured")
		return
	}
	o, err := h.orders.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeOrderError(c, err)
		return
	}
	if string(o.CustomerID) != middleware.UID(c) {
		writeError(c, http.StatusForbidden, "not your order")
		return
	}
	if o.PaymentBy != order.PaySender {
		writeError(c, http.StatusConflict, "pay-on-delivery orders are settled in cash")
		return
	}
	intentID, err := h.stripe.Hold(o.Fare, o.TrackingID)
	if err != nil {
		writeError(c, http.StatusBadGateway, "payment hold failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"intentId": intentID})
}

type captureReq struct {
	IntentID string `json:"intentId"`
}

// Capture settles a held payment and marks the order paid.
func (h *PaymentHandler) Capture(c *gin.Context) {
	var req captureReq
	if err := c.ShouldBindJSON(&req); err != nil || req.IntentID == "" {
		writeError(c, http.StatusBadRequest, "missing intentId")
		return
	}
	if err := h.stripe.Capture(req.IntentID); err != nil {
		writeError(c, http.StatusBadGateway, "payment capture failed")
		return
	}
	o, err := h.orders.UpdatePaymentStatus(c.Request.Context(), order.PaymentCommand{
		OrderID: types.ID(c.Param("id")),
		Settled: true,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderView(o, h.previews))
}

// Release voids a hold for an order that was cancelled before delivery.
func (h *PaymentHandler) Release(c *gin.Context) {
	var req captureReq
	if err := c.ShouldBindJSON(&req); err != nil || req.IntentID == "" {
		writeError(c, http.StatusBadRequest, "missing intentId")
		return
	}
	if err := h.stripe.Release(req.IntentID); err != nil {
		writeError(c, http.StatusBadGateway, "payment release failed")
		return
	}
	c.Status(http.StatusNoContent)
}
