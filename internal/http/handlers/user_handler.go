// README: User profile handlers: registration, profile, rider city and pings.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lani/internal/http/middleware"
	"lani/internal/modules/user"
	"lani/internal/types"
)

type UserHandler struct {
	users *user.Service
}

func NewUserHandler(svc *user.Service) *UserHandler {
	return &UserHandler{users: svc}
}

type userView struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Email string       `json:"email"`
	Phone string       `json:"phone"`
	Role  string       `json:"role"`
	City  string       `json:"city,omitempty"`
	Pos   *types.Point `json:"position,omitempty"`
}

func toUserView(u *user.User) userView {
	return userView{
		ID:    string(u.ID),
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
		Role:  string(u.Role),
		City:  u.City,
		Pos:   u.Position,
	}
}

type registerReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	u, err := h.users.Register(c.Request.Context(), user.RegisterCommand{
		UID:   types.ID(middleware.UID(c)),
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Role:  user.Role(req.Role),
	})
	if err != nil {
		writeUserError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserView(u))
}

func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), types.ID(middleware.UID(c)))
	if err != nil {
		writeUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserView(u))
}

type updateProfileReq struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	u, err := h.users.UpdateProfile(c.Request.Context(), types.ID(middleware.UID(c)), req.Name, req.Phone)
	if err != nil {
		writeUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserView(u))
}

type setCityReq struct {
	City string `json:"city"`
}

func (h *UserHandler) SetCity(c *gin.Context) {
	var req setCityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	u, err := h.users.SetCity(c.Request.Context(), types.ID(middleware.UID(c)), req.City)
	if err != nil {
		writeUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserView(u))
}

type locationPingReq struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (h *UserHandler) PingLocation(c *gin.Context) {
	var req locationPingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.users.RecordRiderLocation(c.Request.Context(), types.ID(middleware.UID(c)), types.Point{Lat: req.Lat, Lng: req.Lng})
	if err != nil {
		writeUserError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
