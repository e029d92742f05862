package http

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/user-orders-service/internal/api/dto"
	"github.com/spec-kit/user-orders-service/internal/observability"
	apperrors "github.com/spec-kit/user-orders-service/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
// The request logger must wrap the error middleware: its post-call code reads the
// response status, which the error middleware only writes in its deferred block.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(requestIDMiddleware())
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
}

func requestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID := c.Get(fiber.HeaderXRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Locals(observability.RequestIDKey, reqID)
		c.Set(fiber.HeaderXRequestID, reqID)
		return c.Next()
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorHandlingMiddleware converts every error (and panic) escaping a handler
// into the response envelope. Internal causes are logged, never serialized.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				// Router-level errors (unmatched path, bad method) keep their
				// status instead of collapsing to 500.
				var fiberErr *fiber.Error
				if errors.As(err, &fiberErr) && fiberErr.Code < fiber.StatusInternalServerError {
					c.Status(fiberErr.Code)
					_ = c.JSON(dto.NewFailure(fiberErr.Message, dto.ErrorBody{
						Code:        "REQUEST_FAILED",
						Description: fiberErr.Message,
					}))
					err = nil
					return
				}

				domainErr := apperrors.ToDomainError(err)
				status := domainErr.Kind.HTTPStatus()
				if metrics != nil {
					metrics.RecordError(c.Path(), c.Method(), domainErr.Kind.Code())
				}
				if status >= 500 {
					logger.Error("request failed", zap.Error(domainErr))
				}
				c.Status(status)
				_ = c.JSON(dto.NewFailure(domainErr.Message, dto.ErrorBody{
					Code:        domainErr.Kind.Code(),
					Description: domainErr.Message,
					Details:     domainErr.Details,
				}))
				err = nil
			}
		}()
		return c.Next()
	}
}
