package routers

import (
	"context"
	"log/slog"
	"time"

	authController "languagevio/controllers/auth"
	classController "languagevio/controllers/class"
	paymentController "languagevio/controllers/payment"
	userController "languagevio/controllers/userControllers"
	"languagevio/database"
	"languagevio/middleware"
	"languagevio/routers/authRoutes"
	"languagevio/routers/classRoutes"
	"languagevio/routers/paymentRoutes"
	"languagevio/routers/userRoutes"
	"languagevio/services/enrollment"
	"languagevio/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Deps is everything the HTTP layer needs. Built once in main and shared by all handlers.
type Deps struct {
	DB             *database.DbInstance
	Tokens         *middleware.TokenService
	Gateway        utils.PaymentGateway
	Mailer         utils.Mailer
	Logger         *slog.Logger
	EnrollmentMode string
	Currency       string
	CorsOrigins    string
	RequestTimeout time.Duration
	AccessLog      bool
}

// NewApp wires middleware, controllers and routes into a fiber app.
func NewApp(d Deps) *fiber.App {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.CorsOrigins == "" {
		d.CorsOrigins = "*"
	}
	db := d.DB.Db

	app := fiber.New(fiber.Config{
		AppName:      "languagevio",
		ErrorHandler: middleware.ErrorHandler(d.Logger),
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.CorsOrigins,
		AllowMethods: "GET,POST,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization,Idempotency-Key",
	}))
	if d.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
		}))
	}
	app.Use(middleware.RequestTimeout(d.RequestTimeout))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("My Languagevio is running")
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := d.DB.Ping(ctx); err != nil {
			d.Logger.Error("health check failed", "err", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	guard := middleware.NewGuard(d.Tokens, db, d.Logger)
	workflow := enrollment.NewWorkflow(db, d.EnrollmentMode, d.Mailer, d.Logger)

	authRoutes.SetupAuthRoutes(app, authController.NewHandler(d.Tokens, d.Logger))
	userRoutes.SetupUserRoutes(app, guard, userController.NewHandler(db, d.Logger))
	classRoutes.SetupClassRoutes(app, guard, classController.NewHandler(db, d.Mailer, d.Logger))
	paymentRoutes.SetupPaymentRoutes(app, guard,
		paymentController.NewHandler(db, d.Gateway, workflow, d.Currency, d.Logger))

	return app
}
