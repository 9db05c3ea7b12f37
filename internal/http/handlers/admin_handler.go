// README: Admin handlers: full order list and dashboard stats.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lani/internal/modules/order"
)

type AdminHandler struct {
	orders   *order.Service
	previews FilePreviewer
}

func NewAdminHandler(orders *order.Service, previews FilePreviewer) *AdminHandler {
	return &AdminHandler{orders: orders, previews: previews}
}

func (h *AdminHandler) ListOrders(c *gin.Context) {
	all, err := h.orders.ListAll(c.Request.Context())
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": toOrderViews(all, h.previews)})
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.orders.AggregateStats(c.Request.Context())
	if err != nil {
		writeOrderError(c, err)
		return
	}
	byStatus := make(map[string]int, len(stats.ByStatus))
	for s, n := range stats.ByStatus {
		byStatus[string(s)] = n
	}
	c.JSON(http.StatusOK, gin.H{
		"total":    stats.Total,
		"byStatus": byStatus,
		"revenue":  stats.Revenue,
	})
}
