package rental

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"booklib/model"
	rs "booklib/service/rental"
)

type Controller struct {
	Svc rs.Service
	V   *validator.Validate
	Log *slog.Logger
}

func isStaff(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == model.RoleLibrarian || role == model.RoleAdmin
}

// POST /v1/rentals
func (h *Controller) Request(c echo.Context) error {
	var req CreateRentalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	uid, _ := c.Get("user_id").(int64)

	rent, err := h.Svc.Request(c.Request().Context(), uid, req.BookID)
	if err != nil {
		return h.mapErr(c, "rental request", err)
	}
	return c.JSON(http.StatusCreated, rent)
}

// POST /v1/rentals/:id/approve  (staff)
func (h *Controller) Approve(c echo.Context) error {
	if !isStaff(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	rent, err := h.Svc.Approve(c.Request().Context(), id)
	if err != nil {
		return h.mapErr(c, "rental approve", err)
	}
	return c.JSON(http.StatusOK, rent)
}

// POST /v1/rentals/:id/reject  (staff)
func (h *Controller) Reject(c echo.Context) error {
	if !isStaff(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	rent, err := h.Svc.Reject(c.Request().Context(), id)
	if err != nil {
		return h.mapErr(c, "rental reject", err)
	}
	return c.JSON(http.StatusOK, rent)
}

// POST /v1/rentals/:id/return  (owner)
func (h *Controller) RequestReturn(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	rent, err := h.Svc.RequestReturn(c.Request().Context(), uid, id)
	if err != nil {
		return h.mapErr(c, "return request", err)
	}
	return c.JSON(http.StatusOK, rent)
}

// POST /v1/rentals/:id/confirm-return  (staff)
func (h *Controller) ConfirmReturn(c echo.Context) error {
	if !isStaff(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	rent, err := h.Svc.ConfirmReturn(c.Request().Context(), id)
	if err != nil {
		return h.mapErr(c, "return confirm", err)
	}
	return c.JSON(http.StatusOK, rent)
}

// GET /v1/rentals/requests  (staff)
func (h *Controller) ListRequests(c echo.Context) error {
	if !isStaff(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	rows, err := h.Svc.ListRequests(c.Request().Context())
	if err != nil {
		h.Log.Error("rental requests", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/rentals/my
func (h *Controller) MyHistory(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.MyHistory(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("rental history", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

func (h *Controller) mapErr(c echo.Context, op string, err error) error {
	switch rs.Code(err) {
	case rs.ErrBookNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	case rs.ErrRentalNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "rental not found"})
	case rs.ErrUserNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	case rs.ErrNotRentable:
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "digital books cannot be rented"})
	case rs.ErrUserBanned:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "account suspended"})
	case rs.ErrOutOfStock:
		return c.JSON(http.StatusConflict, echo.Map{"message": "book out of stock"})
	case rs.ErrAlreadyRenting:
		return c.JSON(http.StatusConflict, echo.Map{"message": "you already hold an active rental"})
	case rs.ErrInvalidState:
		return c.JSON(http.StatusConflict, echo.Map{"message": "invalid state for this operation"})
	case rs.ErrNotOwner:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
