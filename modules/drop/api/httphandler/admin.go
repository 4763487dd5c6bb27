package httphandler

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/common/errs"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

// Admin request bodies also carry the expiresAt field checked by authenticate.

type transferOwnershipRequest struct {
	NewOwner string `json:"newOwner"`
}

type updatePublicDropRequest struct {
	PublicDrop publicDropDTO `json:"publicDrop"`
}

type updateAllowListRequest struct {
	MerkleRoot string `json:"merkleRoot"`
}

type updateCreatorPayoutsRequest struct {
	Payouts []creatorPayoutDTO `json:"payouts"`
}

type updateAllowedRequest struct {
	Address string `json:"address"`
	Allowed bool   `json:"allowed"`
}

type updateSignerRequest struct {
	Signer string                        `json:"signer"`
	Params signedMintValidationParamsDTO `json:"params"`
}

type updateTokenGatedDropRequest struct {
	AllowedNftToken string                 `json:"allowedNftToken"`
	Stage           tokenGatedDropStageDTO `json:"stage"`
}

type updateResult struct {
	Caller string `json:"caller"`
}

type updateResponse = HttpResponse[updateResult]

// adminUpdate parses the body into T, converts it with parse and applies it as the authenticated signer.
func adminUpdate[T any](ctx *fiber.Ctx, parse func(req T, errList *[]error) func(caller common.Address) error) error {
	var req T
	if err := ctx.BodyParser(&req); err != nil {
		return errs.WithPublicMessage(err, "invalid request body")
	}
	var errList []error
	apply := parse(req, &errList)
	if err := errs.WithPublicMessage(errors.Join(errList...), "validation error"); err != nil {
		return errors.WithStack(err)
	}

	caller, ok := signerOf(ctx)
	if !ok {
		return errs.WithPublicMessage(errs.Unauthorized, "missing "+SignatureHeader+" header")
	}
	if err := apply(caller); err != nil {
		return publicError(err)
	}
	return errors.WithStack(ctx.JSON(updateResponse{Result: &updateResult{Caller: caller.Hex()}}))
}

func (h *HttpHandler) TransferOwnership(ctx *fiber.Ctx) error {
	return adminUpdate(ctx, func(req transferOwnershipRequest, errList *[]error) func(common.Address) error {
		newOwner := parseAddress("newOwner", req.NewOwner, errList)
		return func(caller common.Address) error {
			return h.engine.TransferOwnership(ctx.UserContext(), caller, newOwner)
		}
	})
}

func (h *HttpHandler) UpdatePublicDrop(ctx *fiber.Ctx) error {
	return adminUpdate(ctx, func(req updatePublicDropRequest, errList *[]error) func(common.Address) error {
		publicDrop := req.PublicDrop.entity(errList)
		return func(caller common.Address) error {
			return h.engine.UpdatePublicDrop(ctx.UserContext(), caller, publicDrop)
		}
	})
}

func (h *HttpHandler) UpdateAllowList(ctx *fiber.Ctx) error {
	return adminUpdate(ctx, func(req updateAllowListRequest, errList *[]error) func(common.Address) error {
		root, err := parseHash(req.MerkleRoot)
		if err != nil {
			*errList = append(*errList, errors.Errorf("merkleRoot '%s' is not a valid 32-byte hex string", req.MerkleRoot))
		}
		return func(caller common.Address) error {
			return h.engine.UpdateAllowList(ctx.UserContext(), caller, root)
		}
	})
}

func (h *HttpHandler) UpdateCreatorPayouts(ctx *fiber.Ctx) error {
	return adminUpdate(ctx, func(req updateCreatorPayoutsRequest, errList *[]error) func(common.Address) error {
		payouts := lo.Map(req.Payouts, func(p creatorPayoutDTO, i int) entity.CreatorPayout {
			return entity.CreatorPayout{
				PayoutAddress: parseAddress(fmt.Sprintf("payouts[%d].payoutAddress", i), p.PayoutAddress, errList),
				BasisPoints:   p.BasisPoints,
			}
		})
		return func(caller common.Address) error {
			return h.engine.UpdateCreatorPayouts(ctx.UserContext(), caller, payouts)
		}
	})
}

func (h *HttpHandler) UpdateAllowedFeeRecipient(ctx *fiber.Ctx) error {
	return adminUpdate(ctx, func(req updateAllowedRequest, errList *[]error) func(common.Address) error {
		feeRecipient := parseAddress("address", req.Address, errList)
		return func(caller common.Address) error {
			return h.engine.UpdateAllowedFeeRecipient(ctx.UserContext(), caller, feeRecipient, req.Allowed)
		}
	})
}

func (h *HttpHandler) UpdatePayer(ctx *fiber.Ctx) error {
	return adminUpdate(ctx, func(req updateAllowedRequest, errList *[]error) func(common.Address) error {
		payer := parseAddress("address", req.Address, errList)
		return func(caller common.Address) error {
			return h.engine.UpdatePayer(ctx.UserContext(), caller, payer, req.Allowed)
		}
	})
}

func (h *HttpHandler) UpdateSigner(ctx *fiber.Ctx) error {
	return adminUpdate(ctx, func(req updateSignerRequest, errList *[]error) func(common.Address) error {
		signer := parseAddress("signer", req.Signer, errList)
		params := req.Params.entity(errList)
		return func(caller common.Address) error {
			return h.engine.UpdateSignedMintValidationParams(ctx.UserContext(), caller, signer, params)
		}
	})
}

func (h *HttpHandler) RemoveSigner(ctx *fiber.Ctx) error {
	return adminUpdate(ctx, func(req updateSignerRequest, errList *[]error) func(common.Address) error {
		signer := parseAddress("signer", req.Signer, errList)
		return func(caller common.Address) error {
			return h.engine.RemoveSigner(ctx.UserContext(), caller, signer)
		}
	})
}

func (h *HttpHandler) UpdateTokenGatedDrop(ctx *fiber.Ctx) error {
	return adminUpdate(ctx, func(req updateTokenGatedDropRequest, errList *[]error) func(common.Address) error {
		token := parseAddress("allowedNftToken", req.AllowedNftToken, errList)
		stage := req.Stage.entity(errList)
		return func(caller common.Address) error {
			return h.engine.UpdateTokenGatedDrop(ctx.UserContext(), caller, token, stage)
		}
	})
}

func (h *HttpHandler) RemoveTokenGatedDrop(ctx *fiber.Ctx) error {
	return adminUpdate(ctx, func(req updateTokenGatedDropRequest, errList *[]error) func(common.Address) error {
		token := parseAddress("allowedNftToken", req.AllowedNftToken, errList)
		return func(caller common.Address) error {
			return h.engine.RemoveTokenGatedDrop(ctx.UserContext(), caller, token)
		}
	})
}
