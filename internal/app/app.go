// Package app assembles storage, sessions, services and the Fiber router.
package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"medreminder/internal/config"
	"medreminder/internal/database"
	"medreminder/internal/handlers"
	"medreminder/internal/middleware"
	"medreminder/internal/repositories"
	"medreminder/internal/response"
	"medreminder/internal/services"
	"medreminder/internal/session"
	"medreminder/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
	"gorm.io/gorm"
)

// App owns every long-lived resource of a running server.
type App struct {
	Fiber    *fiber.App
	Sessions *session.Registry
	MQ       *rabbitmq.Client // nil when events are disabled

	cfg     config.Config
	log     *logrus.Logger
	now     func() time.Time
	db      *gorm.DB
	limiter *middleware.RateLimiter
	janitor *cron.Cron
}

// Option customizes an App.
type Option func(*App)

// WithClock overrides the clock used for session expiry, rate limiting and
// "today".
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// New builds the application from cfg. Call Shutdown to release resources.
func New(cfg config.Config, log *logrus.Logger, opts ...Option) (*App, error) {
	a := &App{cfg: cfg, log: log, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}

	userRepo, reminderRepo, err := a.openStorage()
	if err != nil {
		return nil, err
	}

	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			a.closeStorage()
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		a.MQ = mq
		log.Info("RabbitMQ client connected, reminder events enabled")
	}

	a.Sessions = session.NewRegistry(session.Config{TTL: cfg.SessionTTL, MaxSessions: cfg.SessionMax},
		session.WithClock(a.now))
	a.limiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
		RPS:        cfg.AuthRateLimit,
		Burst:      cfg.AuthRateBurst,
		IdleTTL:    cfg.AuthRateIdle,
		MaxClients: cfg.AuthRateMax,
	}, middleware.WithRateLimitClock(a.now))
	if err := a.startJanitor(); err != nil {
		a.release()
		return nil, err
	}

	authService := services.NewAuthService(userRepo, services.NewBcryptHasher(cfg.BcryptCost), log)
	reminderOpts := []services.ReminderOption{services.WithClock(a.now)}
	if a.MQ != nil {
		reminderOpts = append(reminderOpts, services.WithPublisher(a.MQ))
	}
	reminderService := services.NewReminderService(reminderRepo, log, reminderOpts...)

	authHandler := handlers.NewAuthHandler(authService, a.Sessions, log)
	reminderHandler := handlers.NewReminderHandler(reminderService, log)

	a.Fiber = fiber.New(fiber.Config{
		AppName:               "medreminder",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(log),
	})

	a.Fiber.Use(recover.New())
	a.Fiber.Use(fiberlogger.New(fiberlogger.Config{Output: log.Writer()}))
	a.Fiber.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))
	// Answer any OPTIONS request the CORS middleware did not treat as a preflight.
	a.Fiber.Options("/*", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	a.Fiber.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	api := a.Fiber.Group("/api")
	routes := handlers.Routes(authHandler, reminderHandler, a.limiter.Handler())
	handlers.Mount(api, routes, middleware.SessionRequired(a.Sessions))

	return a, nil
}

func (a *App) openStorage() (repositories.UserRepository, repositories.ReminderRepository, error) {
	if a.cfg.DBDriver == config.DriverMemory {
		a.log.Warn("Using in-memory storage, data is lost on restart")
		return repositories.NewMemoryUserRepository(), repositories.NewMemoryReminderRepository(), nil
	}

	db, err := database.Open(a.cfg.DBDriver, a.cfg.DatabaseDSN, a.log)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, nil, err
	}
	a.db = db
	return repositories.NewGORMUserRepository(db), repositories.NewGORMReminderRepository(db), nil
}

// startJanitor sweeps expired sessions and idle rate-limit clients on the
// SESSION_SWEEP schedule. No scheduler runs when there is nothing to sweep.
func (a *App) startJanitor() error {
	schedule := a.cfg.SessionSweep
	if schedule == "" {
		return nil
	}
	c := cron.New()
	if a.cfg.SessionTTL > 0 {
		if err := session.ScheduleSweep(c, a.Sessions, schedule, a.log); err != nil {
			return err
		}
	}
	if a.cfg.AuthRateLimit > 0 && a.cfg.AuthRateIdle > 0 {
		_, err := c.AddFunc(schedule, func() {
			if removed := a.limiter.Sweep(); removed > 0 {
				a.log.WithField("removed", removed).Debug("Swept idle rate limit clients")
			}
		})
		if err != nil {
			return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
		}
	}
	if len(c.Entries()) == 0 {
		return nil
	}
	c.Start()
	a.janitor = c
	return nil
}

// Listen serves HTTP on cfg.AppPort until Shutdown.
func (a *App) Listen() error {
	a.log.WithField("addr", a.cfg.AppPort).Info("Starting server")
	return a.Fiber.Listen(a.cfg.AppPort)
}

// Shutdown stops the HTTP server and releases every resource.
func (a *App) Shutdown() error {
	err := a.Fiber.Shutdown()
	a.release()
	return err
}

func (a *App) release() {
	if a.janitor != nil {
		<-a.janitor.Stop().Done()
	}
	if a.MQ != nil {
		if err := a.MQ.Close(); err != nil {
			a.log.WithError(err).Warn("Error closing RabbitMQ client")
		}
	}
	a.closeStorage()
}

func (a *App) closeStorage() {
	if a.db == nil {
		return
	}
	if err := database.Close(a.db); err != nil {
		a.log.WithError(err).Warn("Error closing database")
	}
	a.db = nil
}

// errorHandler renders errors that escaped the handlers, including panics
// caught by recover, as the JSON error envelope.
func errorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
			message = fe.Message
		} else {
			log.WithError(err).WithField("path", c.Path()).Error("Unhandled request error")
		}
		return response.Error(c, status, message)
	}
}

// ConsumeEvents logs every reminder event delivered to the reminder queue.
// It is a no-op when RabbitMQ is not configured.
func (a *App) ConsumeEvents() error {
	if a.MQ == nil {
		a.log.Warn("RABBITMQ_URL is not set, event consumer not started")
		return nil
	}
	return a.MQ.ConsumeReminderEvents(a.handleEvent, func(tag uint64, err error) {
		a.log.WithError(err).WithField("delivery_tag", tag).Warn("Reminder event not processed")
	})
}

func (a *App) handleEvent(msg amqp.Delivery) error {
	var event services.ReminderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return rabbitmq.Permanent(fmt.Errorf("decode reminder event: %w", err))
	}
	a.log.WithFields(logrus.Fields{
		"event":       event.Type,
		"reminder_id": event.ReminderID,
		"user_id":     event.UserID,
		"status":      event.Status,
	}).Info("Received reminder event")
	return nil
}
