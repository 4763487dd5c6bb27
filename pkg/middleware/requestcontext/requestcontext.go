package requestcontext

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/drop-offerer/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

// Option extracts a value from the request into ctx.
// A returned *fiber.Error is sent to the client as is, anything else is an internal error.
type Option func(ctx context.Context, c *fiber.Ctx) (context.Context, error)

func New(opts ...Option) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var err error
		ctx := c.UserContext()
		for i, opt := range opts {
			ctx, err = opt(ctx, c)
			if err != nil {
				var fErr *fiber.Error
				if errors.As(err, &fErr) {
					return fErr
				}

				logger.ErrorContext(ctx, "failed to extract request context",
					err,
					slog.String("event", "requestcontext/error"),
					slog.String("module", "requestcontext"),
					slog.Int("optionIndex", i),
				)
				return errors.Wrap(err, "request context")
			}
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}
