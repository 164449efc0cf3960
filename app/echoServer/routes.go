package echoServer

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"booklib/app/echoServer/controller/auth"
	"booklib/app/echoServer/controller/book"
	"booklib/app/echoServer/controller/notification"
	"booklib/app/echoServer/controller/rental"
	"booklib/app/echoServer/controller/sale"
	"booklib/app/echoServer/controller/wallet"
	"booklib/app/echoServer/jwtx"
)

type C struct {
	Auth         *auth.Controller
	Book         *book.Controller
	Rental       *rental.Controller
	Wallet       *wallet.Controller
	Sale         *sale.Controller
	Notification *notification.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	// Auth
	authed := e.Group("/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),
	}))
	// identity extraction: user_id + role into context keys
	authed.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			uid, err := jwtx.UserIDFromContext(ctx)
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			role, err := jwtx.RoleFromContext(ctx)
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			ctx.Set("user_id", uid)
			ctx.Set("role", role)
			return next(ctx)
		}
	})

	// Books
	authed.GET("/books", c.Book.List)
	authed.GET("/books/:id", c.Book.Detail)
	// Staff endpoints
	authed.POST("/books", c.Book.Create)
	authed.POST("/books/:id/copies", c.Book.AddCopies)

	// Accounts (admin)
	authed.POST("/users/:id/ban", c.Auth.Ban)

	// Rentals
	authed.POST("/rentals", c.Rental.Request)
	authed.GET("/rentals/my", c.Rental.MyHistory)
	authed.GET("/rentals/requests", c.Rental.ListRequests)
	authed.POST("/rentals/:id/approve", c.Rental.Approve)
	authed.POST("/rentals/:id/reject", c.Rental.Reject)
	authed.POST("/rentals/:id/return", c.Rental.RequestReturn)
	authed.POST("/rentals/:id/confirm-return", c.Rental.ConfirmReturn)

	// Wallet
	authed.POST("/wallet/deposits", c.Wallet.Deposit)
	authed.GET("/wallet/balance", c.Wallet.Balance)
	authed.GET("/wallet/ledger", c.Wallet.Ledger)

	// Digital purchases
	authed.POST("/purchases", c.Sale.Purchase)
	authed.GET("/purchases/my", c.Sale.MyPurchases)

	// Notifications
	authed.GET("/notifications", c.Notification.ListMine)
	authed.POST("/notifications/:id/read", c.Notification.MarkRead)
}
