// Package main library API.
//
// @title           Library Backend API
// @version         1.0
// @description     Library backend: catalog, rentals, wallet ledger, digital purchases.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"booklib/app/echoServer"
	authctrl "booklib/app/echoServer/controller/auth"
	bookctrl "booklib/app/echoServer/controller/book"
	notifctrl "booklib/app/echoServer/controller/notification"
	rentalctrl "booklib/app/echoServer/controller/rental"
	salectrl "booklib/app/echoServer/controller/sale"
	walletctrl "booklib/app/echoServer/controller/wallet"
	"booklib/app/echoServer/validation"
	"booklib/config"
	bookrepo "booklib/repository/book"
	notifrepo "booklib/repository/notification"
	rentalrepo "booklib/repository/rental"
	salerepo "booklib/repository/sale"
	userrepo "booklib/repository/user"
	walletrepo "booklib/repository/wallet"
	authsvc "booklib/service/auth"
	booksvc "booklib/service/book"
	notifsvc "booklib/service/notification"
	rentalsvc "booklib/service/rental"
	salesvc "booklib/service/sale"
	walletsvc "booklib/service/wallet"
	"booklib/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB via pgx
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	begin := database.NewBeginner(db)

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	rr := rentalrepo.New(db)
	wr := walletrepo.New(db)
	sr := salerepo.New(db)
	nr := notifrepo.New(db)

	// services
	ns := notifsvc.New(nr, log)
	as := authsvc.New(ur, cfg.JWTSecret)
	bs := booksvc.New(br)
	ws := walletsvc.New(begin, wr)
	rs := rentalsvc.New(begin, rr, br, ur, wr, ns, log)
	ss := salesvc.New(begin, sr, br, wr, ns)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	rentalC := &rentalctrl.Controller{Svc: rs, V: v, Log: log}
	walletC := &walletctrl.Controller{Svc: ws, V: v, Log: log}
	saleC := &salectrl.Controller{Svc: ss, V: v, Log: log}
	notifC := &notifctrl.Controller{Svc: ns, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:         authC,
		Book:         bookC,
		Rental:       rentalC,
		Wallet:       walletC,
		Sale:         saleC,
		Notification: notifC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	slog.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
