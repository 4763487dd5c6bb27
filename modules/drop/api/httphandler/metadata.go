package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type schemaResult struct {
	ID       uint64        `json:"id"`
	Metadata hexutil.Bytes `json:"metadata"`
}

type substandardResult struct {
	ID   uint8  `json:"id"`
	Name string `json:"name"`
}

type getMetadataResult struct {
	Name                  string              `json:"name"`
	Schemas               []schemaResult      `json:"schemas"`
	SupportedSubstandards []substandardResult `json:"supportedSubstandards"`
}

type getMetadataResponse = HttpResponse[getMetadataResult]

func (h *HttpHandler) GetMetadata(ctx *fiber.Ctx) (err error) {
	metadata := h.engine.Metadata()
	result := getMetadataResult{
		Name: metadata.Name,
		Schemas: lo.Map(metadata.Schemas, func(s entity.Schema, _ int) schemaResult {
			return schemaResult{ID: s.ID, Metadata: s.Metadata}
		}),
		SupportedSubstandards: lo.Map(metadata.SupportedSubstandards, func(s entity.Substandard, _ int) substandardResult {
			return substandardResult{ID: uint8(s), Name: s.String()}
		}),
	}
	return errors.WithStack(ctx.JSON(getMetadataResponse{Result: &result}))
}
