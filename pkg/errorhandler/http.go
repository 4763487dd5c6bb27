package errorhandler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/drop-offerer/common/errs"
	"github.com/gaze-network/drop-offerer/pkg/logger"
	"github.com/gaze-network/drop-offerer/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
)

// statusOf maps error kinds carried by public errors to HTTP status codes.
var statusOf = map[errs.ErrorKind]int{
	errs.NotFound:     http.StatusNotFound,
	errs.Unauthorized: http.StatusUnauthorized,
	errs.Conflict:     http.StatusConflict,
}

type errorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func NewHTTPErrorHandler() func(ctx *fiber.Ctx, err error) error {
	return func(ctx *fiber.Ctx, err error) error {
		if e := new(errs.PublicError); errors.As(err, &e) {
			status := http.StatusBadRequest
			for kind, code := range statusOf {
				if errors.Is(err, kind) {
					status = code
					break
				}
			}
			return errors.WithStack(ctx.Status(status).JSON(errorResponse{
				Error:   e.Message(),
				Code:    e.Code(),
				Details: e.Details(),
			}))
		}
		if e := new(fiber.Error); errors.As(err, &e) {
			return errors.WithStack(ctx.Status(e.Code).JSON(errorResponse{Error: e.Message}))
		}

		logger.ErrorContext(ctx.UserContext(), "Something went wrong, unhandled api error", err,
			slogx.String("event", "api_unhandled_error"),
		)

		return errors.WithStack(ctx.Status(http.StatusInternalServerError).JSON(errorResponse{
			Error: "Internal Server Error",
		}))
	}
}
