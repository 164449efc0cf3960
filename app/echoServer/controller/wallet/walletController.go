package wallet

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	walletsvc "booklib/service/wallet"
)

type Controller struct {
	Svc walletsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/wallet/deposits
// @Summary Credit the caller's wallet
// @Success 201 {object} map[string]any
// @Failure 400,401,500
func (h *Controller) Deposit(c echo.Context) error {
	var req DepositReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  map[string]string{"amount": "required, gt 0"},
		})
	}
	userID := c.Get("user_id").(int64)

	bal, err := h.Svc.Deposit(c.Request().Context(), userID, req.Amount)
	if err != nil {
		if errors.Is(err, walletsvc.ErrInvalidAmount) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "amount must be greater than zero"})
		}
		h.Log.Error("deposit", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"balance": bal})
}

// GET /v1/wallet/balance
func (h *Controller) Balance(c echo.Context) error {
	userID := c.Get("user_id").(int64)
	bal, err := h.Svc.Balance(c.Request().Context(), userID)
	if err != nil {
		h.Log.Error("balance", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"balance": bal})
}

// GET /v1/wallet/ledger
func (h *Controller) Ledger(c echo.Context) error {
	userID := c.Get("user_id").(int64)
	rows, err := h.Svc.Ledger(c.Request().Context(), userID)
	if err != nil {
		h.Log.Error("ledger", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
