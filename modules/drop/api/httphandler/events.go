package httphandler

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/drop-offerer/common/errs"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

const (
	defaultEventsLimit = 100
	maxEventsLimit     = 1000
)

type getEventsRequest struct {
	FromSeq uint64 `query:"fromSeq"`
	Limit   int    `query:"limit"`
}

func (r *getEventsRequest) Validate() error {
	var errList []error
	if r.Limit < 0 || r.Limit > maxEventsLimit {
		errList = append(errList, errors.Errorf("limit must be between 1 and %d", maxEventsLimit))
	}
	if r.Limit == 0 {
		r.Limit = defaultEventsLimit
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type eventResult struct {
	Seq       uint64          `json:"seq"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

type getEventsResult struct {
	Events  []eventResult `json:"events"`
	NextSeq uint64        `json:"nextSeq"`
}

type getEventsResponse = HttpResponse[getEventsResult]

func (h *HttpHandler) GetEvents(ctx *fiber.Ctx) (err error) {
	var req getEventsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errs.WithPublicMessage(err, "invalid query")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	events, err := h.engine.Store().GetEvents(ctx.UserContext(), req.FromSeq, req.Limit)
	if err != nil {
		return errors.Wrap(err, "error during GetEvents")
	}

	result := getEventsResult{
		Events: lo.Map(events, func(e entity.Event, _ int) eventResult {
			return eventResult{
				Seq:       e.Seq,
				Kind:      string(e.Kind),
				Payload:   e.Payload,
				CreatedAt: e.CreatedAt,
			}
		}),
		NextSeq: req.FromSeq,
	}
	if len(events) > 0 {
		result.NextSeq = events[len(events)-1].Seq + 1
	}
	return errors.WithStack(ctx.JSON(getEventsResponse{Result: &result}))
}
