package requestcontext

import (
	"context"

	"github.com/gaze-network/drop-offerer/pkg/logger"
	"github.com/gaze-network/drop-offerer/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	fiberutils "github.com/gofiber/fiber/v2/utils"
)

type requestIdKey struct{}

// GetRequestId get requestId from context. If not found, return empty string
func GetRequestId(ctx context.Context) string {
	if id, ok := ctx.Value(requestIdKey{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestId reuses the id set by the requestid middleware, or the request header, or generates one.
func WithRequestId() Option {
	return func(ctx context.Context, c *fiber.Ctx) (context.Context, error) {
		requestId, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string)
		if !ok || requestId == "" {
			requestId = c.Get(requestid.ConfigDefault.Header, fiberutils.UUID())
			c.Set(requestid.ConfigDefault.Header, requestId)
			c.Locals(requestid.ConfigDefault.ContextKey, requestId)
		}

		ctx = context.WithValue(ctx, requestIdKey{}, requestId)
		ctx = logger.WithContext(ctx, slogx.String("requestId", requestId))
		return ctx, nil
	}
}
