package httphandler

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/modules/drop/datagateway"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type signerResult struct {
	Signer string                        `json:"signer"`
	Params signedMintValidationParamsDTO `json:"params"`
}

type tokenGatedDropResult struct {
	AllowedNftToken string                 `json:"allowedNftToken"`
	Stage           tokenGatedDropStageDTO `json:"stage"`
}

type getConfigResult struct {
	Owner                string                 `json:"owner"`
	PublicDrop           publicDropDTO          `json:"publicDrop"`
	AllowListMerkleRoot  string                 `json:"allowListMerkleRoot"`
	CreatorPayouts       []creatorPayoutDTO     `json:"creatorPayouts"`
	AllowedFeeRecipients []string               `json:"allowedFeeRecipients"`
	AllowedPayers        []string               `json:"allowedPayers"`
	Signers              []signerResult         `json:"signers"`
	TokenGatedDrops      []tokenGatedDropResult `json:"tokenGatedDrops"`
}

type getConfigResponse = HttpResponse[getConfigResult]

func hexes(addresses []common.Address) []string {
	return lo.Map(addresses, func(a common.Address, _ int) string { return a.Hex() })
}

func readConfig(ctx context.Context, store datagateway.DropReaderDataGateway) (result getConfigResult, err error) {
	owner, err := store.GetOwner(ctx)
	if err != nil {
		return result, errors.Wrap(err, "error during GetOwner")
	}
	publicDrop, err := store.GetPublicDrop(ctx)
	if err != nil {
		return result, errors.Wrap(err, "error during GetPublicDrop")
	}
	root, err := store.GetAllowListMerkleRoot(ctx)
	if err != nil {
		return result, errors.Wrap(err, "error during GetAllowListMerkleRoot")
	}
	payouts, err := store.GetCreatorPayouts(ctx)
	if err != nil {
		return result, errors.Wrap(err, "error during GetCreatorPayouts")
	}
	feeRecipients, err := store.GetAllowedFeeRecipients(ctx)
	if err != nil {
		return result, errors.Wrap(err, "error during GetAllowedFeeRecipients")
	}
	payers, err := store.GetAllowedPayers(ctx)
	if err != nil {
		return result, errors.Wrap(err, "error during GetAllowedPayers")
	}
	signers, err := store.GetSigners(ctx)
	if err != nil {
		return result, errors.Wrap(err, "error during GetSigners")
	}
	tokens, err := store.GetTokenGatedAllowedTokens(ctx)
	if err != nil {
		return result, errors.Wrap(err, "error during GetTokenGatedAllowedTokens")
	}

	result = getConfigResult{
		Owner:               owner.Hex(),
		PublicDrop:          toPublicDropDTO(publicDrop),
		AllowListMerkleRoot: root.Hex(),
		CreatorPayouts: lo.Map(payouts, func(p entity.CreatorPayout, _ int) creatorPayoutDTO {
			return creatorPayoutDTO{PayoutAddress: p.PayoutAddress.Hex(), BasisPoints: p.BasisPoints}
		}),
		AllowedFeeRecipients: hexes(feeRecipients),
		AllowedPayers:        hexes(payers),
		Signers:              make([]signerResult, 0, len(signers)),
		TokenGatedDrops:      make([]tokenGatedDropResult, 0, len(tokens)),
	}
	for _, signer := range signers {
		params, err := store.GetSignedMintValidationParams(ctx, signer)
		if err != nil {
			return result, errors.Wrapf(err, "error during GetSignedMintValidationParams of %s", signer.Hex())
		}
		result.Signers = append(result.Signers, signerResult{Signer: signer.Hex(), Params: toSignedMintValidationParamsDTO(params)})
	}
	for _, token := range tokens {
		stage, err := store.GetTokenGatedDropStage(ctx, token)
		if err != nil {
			return result, errors.Wrapf(err, "error during GetTokenGatedDropStage of %s", token.Hex())
		}
		result.TokenGatedDrops = append(result.TokenGatedDrops, tokenGatedDropResult{AllowedNftToken: token.Hex(), Stage: toTokenGatedDropStageDTO(stage)})
	}
	return result, nil
}

func (h *HttpHandler) GetConfig(ctx *fiber.Ctx) (err error) {
	result, err := readConfig(ctx.UserContext(), h.engine.Store())
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(ctx.JSON(getConfigResponse{Result: &result}))
}
