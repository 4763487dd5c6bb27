package drop

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/drop-offerer/modules/drop/datagateway"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/extradata"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/validator"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/validator/allowlist"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/validator/gated"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/validator/signed"
	"github.com/holiman/uint256"
)

// authorizePublic applies the public drop terms. The public payload is ignored.
func (e *Engine) authorizePublic(ctx context.Context, store datagateway.DropReaderDataGateway, plan *mintPlan) error {
	publicDrop, err := store.GetPublicDrop(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get public drop")
	}
	mintPrice := new(uint256.Int)
	if publicDrop.MintPrice != nil {
		mintPrice.Set(publicDrop.MintPrice)
	}
	plan.terms = entity.MintParams{
		MintPrice:                mintPrice,
		PaymentToken:             publicDrop.PaymentToken,
		MaxTotalMintableByWallet: uint256.NewInt(publicDrop.MaxTotalMintableByWallet),
		StartTime:                uint256.NewInt(publicDrop.StartTime),
		EndTime:                  uint256.NewInt(publicDrop.EndTime),
		DropStageIndex:           new(uint256.Int),
		MaxTokenSupplyForStage:   validator.UnlimitedMaxTokenSupplyForStage,
		FeeBps:                   uint256.NewInt(uint64(publicDrop.FeeBps)),
		RestrictFeeRecipients:    publicDrop.RestrictFeeRecipients,
	}
	return nil
}

func (e *Engine) authorizeAllowList(ctx context.Context, store datagateway.DropReaderDataGateway, plan *mintPlan) error {
	params, proof, err := extradata.DecodeAllowList(plan.request.Payload)
	if err != nil {
		return err
	}
	root, err := store.GetAllowListMerkleRoot(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get allow-list merkle root")
	}

	v := allowlist.New()
	if !v.VerifyProof(root, plan.minter, params, proof) {
		return v.Reason
	}
	plan.terms = params
	return nil
}

func (e *Engine) authorizeSigned(ctx context.Context, store datagateway.DropReaderDataGateway, plan *mintPlan) error {
	params, salt, signature, err := extradata.DecodeSigned(plan.request.Payload)
	if err != nil {
		return err
	}
	chainID, err := e.chain.ChainID(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get chain id")
	}
	digest := signed.Digest(e.separators.Separator(chainID), plan.minter, plan.request.FeeRecipient, params, salt)

	v := signed.New()
	if _, err := v.DigestUnused(ctx, store, digest); err != nil {
		return errors.WithStack(err)
	}
	signer, _ := v.RecoverSigner(digest, signature)
	_, bounds, err := v.SignerAllowed(ctx, store, signer)
	if err != nil {
		return errors.WithStack(err)
	}
	v.WithinBounds(params, bounds)
	if !v.Valid {
		return v.Reason
	}

	plan.terms = params
	plan.digest = &digest
	return nil
}

func (e *Engine) authorizeTokenGated(ctx context.Context, store datagateway.DropReaderDataGateway, plan *mintPlan) error {
	params, err := extradata.DecodeTokenGated(plan.request.Payload)
	if err != nil {
		return err
	}

	v := gated.New()
	_, stage, err := v.StageActive(ctx, store, params.AllowedNftToken)
	if err != nil {
		return errors.WithStack(err)
	}
	v.ArrayLengthsMatch(params)
	if _, err := v.Redeem(ctx, store, e.gating, plan.minter, stage, params); err != nil {
		return errors.WithStack(err)
	}
	v.QuantityMatches(plan.request.Quantity)
	if !v.Valid {
		return v.Reason
	}

	mintPrice := new(uint256.Int)
	if stage.MintPrice != nil {
		mintPrice.Set(stage.MintPrice)
	}
	plan.terms = entity.MintParams{
		MintPrice:                mintPrice,
		PaymentToken:             stage.PaymentToken,
		MaxTotalMintableByWallet: uint256.NewInt(stage.MaxTotalMintableByWallet),
		StartTime:                uint256.NewInt(stage.StartTime),
		EndTime:                  uint256.NewInt(stage.EndTime),
		DropStageIndex:           uint256.NewInt(stage.DropStageIndex),
		MaxTokenSupplyForStage:   uint256.NewInt(stage.MaxTokenSupplyForStage),
		FeeBps:                   uint256.NewInt(uint64(stage.FeeBps)),
		RestrictFeeRecipients:    stage.RestrictFeeRecipients,
	}
	plan.redemptions = v.Redemptions
	return nil
}
