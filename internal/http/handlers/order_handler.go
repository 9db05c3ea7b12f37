// README: Dispatch order handlers: create, track, lifecycle transitions.
package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"lani/internal/http/middleware"
	"lani/internal/modules/order"
	"lani/internal/modules/user"
	"lani/internal/types"
)

// maxPhotoBytes caps package photo uploads at 8 MiB.
const maxPhotoBytes = 8 << 20

// FilePreviewer turns a stored file reference into a client-fetchable URL.
type FilePreviewer interface {
	PreviewURL(ref string) string
}

type OrderHandler struct {
	orders   *order.Service
	users    *user.Service
	previews FilePreviewer
}

func NewOrderHandler(orders *order.Service, users *user.Service, previews FilePreviewer) *OrderHandler {
	return &OrderHandler{orders: orders, users: users, previews: previews}
}

type locationView struct {
	Address  string      `json:"address"`
	Landmark string      `json:"landmark,omitempty"`
	Position types.Point `json:"position"`
}

type contactView struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type orderView struct {
	ID              string       `json:"id"`
	TrackingID      string       `json:"trackingId"`
	CustomerID      string       `json:"customerId"`
	RiderID         string       `json:"riderId,omitempty"`
	City            string       `json:"city"`
	Fare            float64      `json:"fare"`
	Pickup          locationView `json:"pickup"`
	Delivery        locationView `json:"delivery"`
	PackageName     string       `json:"packageName"`
	PackageTexture  string       `json:"packageTexture,omitempty"`
	PackagePhoto    string       `json:"packagePhoto"`
	PackagePhotoURL string       `json:"packagePhotoUrl,omitempty"`
	Receiver        contactView  `json:"receiver"`
	Sender          contactView  `json:"sender"`
	Rider           *contactView `json:"rider,omitempty"`
	Mode            string       `json:"mode"`
	ScheduledAt     *time.Time   `json:"scheduledAt,omitempty"`
	Notes           string       `json:"notes,omitempty"`
	PaymentBy       string       `json:"paymentBy"`
	PaymentSettled  bool         `json:"paymentSettled"`
	Status          string       `json:"status"`
	CreatedAt       time.Time    `json:"createdAt"`
}

func toOrderView(o *order.Order, previews FilePreviewer) orderView {
	v := orderView{
		ID:             string(o.ID),
		TrackingID:     o.TrackingID,
		CustomerID:     string(o.CustomerID),
		City:           o.City,
		Fare:           o.Fare,
		Pickup:         locationView{Address: o.Pickup.Address, Landmark: o.Pickup.Landmark, Position: o.Pickup.Position},
		Delivery:       locationView{Address: o.Delivery.Address, Landmark: o.Delivery.Landmark, Position: o.Delivery.Position},
		PackageName:    o.Package.Name,
		PackageTexture: o.Package.Texture,
		PackagePhoto:   o.Package.PhotoRef,
		Receiver:       contactView{Name: o.Receiver.Name, Phone: o.Receiver.Phone},
		Sender:         contactView{Name: o.Sender.Name, Phone: o.Sender.Phone},
		Mode:           string(o.Mode),
		ScheduledAt:    o.ScheduledAt,
		Notes:          o.Notes,
		PaymentBy:      string(o.PaymentBy),
		PaymentSettled: o.PaymentSettled,
		Status:         string(o.Status),
		CreatedAt:      o.CreatedAt,
	}
	if previews != nil {
		v.PackagePhotoURL = previews.PreviewURL(o.Package.PhotoRef)
	}
	if o.RiderID != nil {
		v.RiderID = string(*o.RiderID)
		v.Rider = &contactView{Name: o.Rider.Name, Phone: o.Rider.Phone}
	}
	return v
}

func toOrderViews(orders []*order.Order, previews FilePreviewer) []orderView {
	out := make([]orderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderView(o, previews))
	}
	return out
}

// Create accepts multipart form data: the package photo file plus the order
// fields. The caller must be a registered customer or rider; the sender
// contact snapshot is taken from their profile.
func (h *OrderHandler) Create(c *gin.Context) {
	caller, err := h.users.Get(c.Request.Context(), types.ID(middleware.UID(c)))
	if err != nil {
		writeUserError(c, err)
		return
	}
	if caller.Role != user.RoleCustomer {
		writeError(c, http.StatusForbidden, "only customers place orders")
		return
	}

	photo, err := readPhoto(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	cmd := order.CreateCommand{
		CustomerID:  caller.ID,
		Sender:      order.Contact{Name: caller.Name, Phone: caller.Phone},
		SenderEmail: caller.Email,
		City:        c.PostForm("city"),
		Pickup: order.Location{
			Address:  c.PostForm("pickupAddress"),
			Landmark: c.PostForm("pickupLandmark"),
			Position: formPoint(c, "pickupLat", "pickupLng"),
		},
		Delivery: order.Location{
			Address:  c.PostForm("deliveryAddress"),
			Landmark: c.PostForm("deliveryLandmark"),
			Position: formPoint(c, "deliveryLat", "deliveryLng"),
		},
		Package: order.PackageInput{
			Name:        c.PostForm("packageName"),
			Texture:     c.PostForm("packageTexture"),
			Photo:       photo.data,
			ContentType: photo.contentType,
		},
		Receiver:  order.Contact{Name: c.PostForm("receiverName"), Phone: c.PostForm("receiverPhone")},
		Mode:      order.PickupMode(c.DefaultPostForm("mode", string(order.PickupImmediate))),
		Notes:     c.PostForm("notes"),
		PaymentBy: order.PaymentBy(c.DefaultPostForm("paymentBy", string(order.PaySender))),
	}
	if raw := c.PostForm("scheduledAt"); raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "scheduledAt must be RFC 3339")
			return
		}
		cmd.ScheduledAt = &at
	}

	o, err := h.orders.Create(c.Request.Context(), cmd)
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderView(o, h.previews))
}

type photoUpload struct {
	data        []byte
	contentType string
}

func readPhoto(c *gin.Context) (photoUpload, error) {
	header, err := c.FormFile("photo")
	if err != nil {
		return photoUpload{}, order.ErrPhotoRequired
	}
	if header.Size > maxPhotoBytes {
		return photoUpload{}, order.ErrBadRequest
	}
	f, err := header.Open()
	if err != nil {
		return photoUpload{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes))
	if err != nil {
		return photoUpload{}, err
	}
	return photoUpload{data: data, contentType: header.Header.Get("Content-Type")}, nil
}

// formPoint parses a coordinate pair; missing or malformed values leave the
// zero sentinel, which pricing treats as an unresolved address.
func formPoint(c *gin.Context, latKey, lngKey string) types.Point {
	lat, errLat := strconv.ParseFloat(c.PostForm(latKey), 64)
	lng, errLng := strconv.ParseFloat(c.PostForm(lngKey), 64)
	if errLat != nil || errLng != nil {
		return types.Point{}
	}
	return types.Point{Lat: lat, Lng: lng}
}

func (h *OrderHandler) ListMine(c *gin.Context) {
	orders, err := h.orders.ListByActor(c.Request.Context(), types.ID(middleware.UID(c)))
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": toOrderViews(orders, h.previews)})
}

func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderView(o, h.previews))
}

// Track is the public tracking endpoint keyed by the human-facing code.
func (h *OrderHandler) Track(c *gin.Context) {
	o, err := h.orders.GetByTracking(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderView(o, h.previews))
}

func (h *OrderHandler) Accept(c *gin.Context) {
	rider, err := h.users.Get(c.Request.Context(), types.ID(middleware.UID(c)))
	if err != nil {
		writeUserError(c, err)
		return
	}
	if rider.Role != user.RoleRider {
		writeError(c, http.StatusForbidden, "only riders accept orders")
		return
	}
	o, err := h.orders.Accept(c.Request.Context(), order.AcceptCommand{
		OrderID:  types.ID(c.Param("id")),
		RiderID:  rider.ID,
		Rider:    order.Contact{Name: rider.Name, Phone: rider.Phone},
		Position: rider.Position,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderView(o, h.previews))
}

type completeReq struct {
	HandedToRecipient  bool `json:"handedToRecipient"`
	ConditionConfirmed bool `json:"conditionConfirmed"`
	LocationConfirmed  bool `json:"locationConfirmed"`
	PaymentCollected   bool `json:"paymentCollected"`
}

func (h *OrderHandler) Complete(c *gin.Context) {
	var req completeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	o, err := h.orders.Complete(c.Request.Context(), order.CompleteCommand{
		OrderID: types.ID(c.Param("id")),
		RiderID: types.ID(middleware.UID(c)),
		Checklist: order.Checklist{
			HandedToRecipient:  req.HandedToRecipient,
			ConditionConfirmed: req.ConditionConfirmed,
			LocationConfirmed:  req.LocationConfirmed,
			PaymentCollected:   req.PaymentCollected,
		},
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderView(o, h.previews))
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	o, err := h.orders.Cancel(c.Request.Context(), order.CancelCommand{
		OrderID:    types.ID(c.Param("id")),
		CustomerID: types.ID(middleware.UID(c)),
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderView(o, h.previews))
}

type paymentReq struct {
	Settled bool `json:"settled"`
}

func (h *OrderHandler) UpdatePayment(c *gin.Context) {
	var req paymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	o, err := h.orders.UpdatePaymentStatus(c.Request.Context(), order.PaymentCommand{
		OrderID: types.ID(c.Param("id")),
		Settled: req.Settled,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderView(o, h.previews))
}
