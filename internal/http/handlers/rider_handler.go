// README: Rider-facing handlers: candidate pool and load status.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lani/internal/http/middleware"
	"lani/internal/modules/matching"
	"lani/internal/modules/user"
	"lani/internal/types"
)

type RiderHandler struct {
	matching *matching.Service
	users    *user.Service
	previews FilePreviewer
}

func NewRiderHandler(m *matching.Service, users *user.Service, previews FilePreviewer) *RiderHandler {
	return &RiderHandler{matching: m, users: users, previews: previews}
}

// Candidates lists the pending orders in the rider's own city.
func (h *RiderHandler) Candidates(c *gin.Context) {
	rider, err := h.users.Get(c.Request.Context(), types.ID(middleware.UID(c)))
	if err != nil {
		writeUserError(c, err)
		return
	}
	if rider.Role != user.RoleRider {
		writeError(c, http.StatusForbidden, "only riders have a candidate pool")
		return
	}
	pool, err := h.matching.Candidates(c.Request.Context(), rider.City)
	if err != nil {
		writeMatchingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": toOrderViews(pool, h.previews)})
}

func (h *RiderHandler) Load(c *gin.Context) {
	load, err := h.matching.Load(c.Request.Context(), types.ID(middleware.UID(c)))
	if err != nil {
		writeMatchingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": load.Active, "busy": load.Busy})
}
