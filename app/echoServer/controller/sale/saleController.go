package sale

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	salesvc "booklib/service/sale"
)

type Controller struct {
	Svc salesvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/purchases
// @Summary Buy a digital copy
// @Success 201 {object} model.Sale
// @Failure 400,402,404,409,422,500
func (h *Controller) Purchase(c echo.Context) error {
	var req PurchaseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}
	userID := c.Get("user_id").(int64)

	s, err := h.Svc.Purchase(c.Request().Context(), userID, req.BookID)
	if err != nil {
		switch {
		case errors.Is(err, salesvc.ErrBookNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case errors.Is(err, salesvc.ErrNotPurchasable):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "physical books cannot be purchased digitally"})
		case errors.Is(err, salesvc.ErrInvalidPrice):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "book has no valid price"})
		case errors.Is(err, salesvc.ErrInsufficientFunds):
			return c.JSON(http.StatusPaymentRequired, echo.Map{"message": "insufficient wallet balance"})
		case errors.Is(err, salesvc.ErrAlreadyPurchased):
			return c.JSON(http.StatusConflict, echo.Map{"message": "already purchased"})
		default:
			h.Log.Error("purchase", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, s)
}

// GET /v1/purchases/my
func (h *Controller) MyPurchases(c echo.Context) error {
	userID := c.Get("user_id").(int64)
	rows, err := h.Svc.MyPurchases(c.Request().Context(), userID)
	if err != nil {
		h.Log.Error("purchases", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
