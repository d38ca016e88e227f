package main

import (
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"languagevio/config"
	"languagevio/database"
	"languagevio/middleware"
	"languagevio/routers"
	"languagevio/utils"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	db, err := database.ConnectDb(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	app := routers.NewApp(routers.Deps{
		DB:             db,
		Tokens:         middleware.NewTokenService(cfg.TokenSecret, cfg.TokenTTL),
		Gateway:        utils.NewStripeGateway(cfg.StripeApiURL, cfg.StripeSecretKey),
		Mailer:         utils.NewMailer(cfg.SendgridApiKey, cfg.EmailSender, logger),
		Logger:         logger,
		EnrollmentMode: cfg.EnrollmentMode,
		Currency:       cfg.PaymentCurrency,
		CorsOrigins:    cfg.CorsOrigins,
		RequestTimeout: cfg.RequestTimeout,
		AccessLog:      true,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit
		logger.Info("shutting down", "signal", sig.String())
		if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}()

	logger.Info("server is running", "port", cfg.Port, "db", cfg.DBDriver, "enrollment", cfg.EnrollmentMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error("listen", "err", err)
	}

	if !utils.WaitForEmails(cfg.ShutdownTimeout) {
		logger.Warn("shutdown timeout reached with emails still in flight")
	}
}
