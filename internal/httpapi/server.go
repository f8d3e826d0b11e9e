// Package httpapi exposes the round orchestrator over JSON HTTP.
package httpapi

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/Cheese-RPS-bot/internal/service/round"
	"github.com/park285/Cheese-RPS-bot/pkg/rpsdto"
)

const (
	defaultBodyLimit = 10 * 1024
	serviceName      = "rps-opponent"
)

// Player plays one stateless round from a raw request.
type Player interface {
	PlayRequest(ctx context.Context, req rpsdto.PlayRequest) (*round.Result, error)
}

type Options struct {
	BodyLimit    int
	AllowOrigins string
	StaticDir    string
	AIProvider   string
	Model        string
	Now          func() time.Time
}

type Handler struct {
	player Player
	opts   Options
	logger *zap.Logger
}

// New builds the fiber app with routes and middleware attached.
func New(player Player, opts Options, logger *zap.Logger) *fiber.App {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = defaultBodyLimit
	}
	if strings.TrimSpace(opts.AllowOrigins) == "" {
		opts.AllowOrigins = "*"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.AIProvider == "" {
		opts.AIProvider = "none"
	}

	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		BodyLimit:             opts.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
	})
	app.Use(requestLogger(logger))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: opts.AllowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	h := &Handler{player: player, opts: opts, logger: logger}
	app.Get("/health", h.Health)
	app.Post("/api/play", h.Play)

	if dir := strings.TrimSpace(opts.StaticDir); dir != "" {
		app.Static("/", dir)
	}
	return app
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(rpsdto.HealthResponse{
		Status:     "ok",
		Service:    serviceName,
		AIProvider: h.opts.AIProvider,
		Model:      h.opts.Model,
		Timestamp:  h.opts.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) Play(c *fiber.Ctx) error {
	var req rpsdto.PlayRequest
	if err := c.App().Config().JSONDecoder(c.Body(), &req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid JSON body")
	}

	result, err := h.player.PlayRequest(c.UserContext(), req)
	if err != nil {
		var ve *round.ValidationError
		if errors.As(err, &ve) {
			h.logger.Info("round_validation_failed",
				zap.String("reason", ve.Reason),
				zap.String("request_id", requestID(c)),
			)
			return c.Status(fiber.StatusBadRequest).JSON(ve.Body())
		}
		return err
	}
	return c.JSON(result.Response())
}

func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(rpsdto.DomainError{Code: codeFor(fe.Code), Message: fe.Message})
		}
		logger.Error("http_unhandled_error",
			zap.String("path", c.Path()),
			zap.String("request_id", requestID(c)),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(rpsdto.InternalError)
	}
}

func codeFor(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "bad_request"
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusMethodNotAllowed:
		return "method_not_allowed"
	case fiber.StatusRequestEntityTooLarge:
		return "payload_too_large"
	}
	if status >= 500 {
		return "internal"
	}
	return "error"
}

const requestIDKey = "request_id"

func requestID(c *fiber.Ctx) string {
	if v, ok := c.Locals(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// requestLogger tags each request with an id and logs one http_request line.
func requestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(requestIDKey, id)
		c.Set(fiber.HeaderXRequestID, id)

		start := time.Now()
		err := c.Next()
		if err != nil {
			// run the ErrorHandler first so the logged status is final
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		logger.Info("http_request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", id),
		)
		return nil
	}
}
