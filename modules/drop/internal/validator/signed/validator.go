package signed

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/common/errs"
	"github.com/gaze-network/drop-offerer/modules/drop/datagateway"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/validator"
	"github.com/gaze-network/drop-offerer/pkg/crypto"
	"github.com/holiman/uint256"
)

type SignedMintValidator struct {
	validator.Validator
}

func New() *SignedMintValidator {
	v := validator.New()
	return &SignedMintValidator{
		Validator: *v,
	}
}

// DigestUnused fails with SignatureAlreadyUsed if digest was consumed before.
func (v *SignedMintValidator) DigestUnused(ctx context.Context, store datagateway.DropReaderDataGateway, digest common.Hash) (bool, error) {
	if !v.Valid {
		return false, nil
	}
	used, err := store.IsDigestUsed(ctx, digest)
	if err != nil {
		return false, errors.Wrap(err, "failed to check used digest")
	}
	if used {
		return v.Fail(entity.SignatureAlreadyUsed(digest)), nil
	}
	return true, nil
}

// RecoverSigner returns the signer of digest. Malformed signatures fail with
// InvalidSignature for the zero address.
func (v *SignedMintValidator) RecoverSigner(digest common.Hash, signature []byte) (common.Address, bool) {
	if !v.Valid {
		return common.Address{}, false
	}
	signer, err := crypto.RecoverHash(digest, signature)
	if err != nil {
		return common.Address{}, v.Fail(entity.InvalidSignature(common.Address{}))
	}
	return signer, true
}

// SignerAllowed loads the bounds of a registered signer.
func (v *SignedMintValidator) SignerAllowed(ctx context.Context, store datagateway.DropReaderDataGateway, signer common.Address) (bool, entity.SignedMintValidationParams, error) {
	if !v.Valid {
		return false, entity.SignedMintValidationParams{}, nil
	}
	params, err := store.GetSignedMintValidationParams(ctx, signer)
	if errors.Is(err, errs.NotFound) {
		return v.Fail(entity.InvalidSignature(signer)), entity.SignedMintValidationParams{}, nil
	}
	if err != nil {
		return false, entity.SignedMintValidationParams{}, errors.Wrap(err, "failed to get signed mint validation params")
	}
	return true, params, nil
}

// WithinBounds checks the signed mint params against the signer's bounds.
func (v *SignedMintValidator) WithinBounds(params entity.MintParams, bounds entity.SignedMintValidationParams) bool {
	if !v.Valid {
		return false
	}

	minMintPrice, ok := bounds.MinMintPrice(params.PaymentToken)
	if !ok {
		return v.Fail(entity.PaymentTokenPriceNotSet(params.PaymentToken))
	}
	if params.MintPrice.Lt(minMintPrice) {
		return v.Fail(entity.InvalidSignedMintPrice(params.PaymentToken, params.MintPrice, minMintPrice))
	}
	if params.MaxTotalMintableByWallet.Gt(uint256.NewInt(bounds.MaxMaxTotalMintableByWallet)) {
		return v.Fail(entity.InvalidSignedMaxTotalMintableByWallet(params.MaxTotalMintableByWallet, bounds.MaxMaxTotalMintableByWallet))
	}
	if params.StartTime.Lt(uint256.NewInt(bounds.MinStartTime)) {
		return v.Fail(entity.InvalidSignedStartTime(params.StartTime, bounds.MinStartTime))
	}
	if params.EndTime.Gt(uint256.NewInt(bounds.MaxEndTime)) {
		return v.Fail(entity.InvalidSignedEndTime(params.EndTime, bounds.MaxEndTime))
	}
	if params.MaxTokenSupplyForStage.Gt(uint256.NewInt(bounds.MaxMaxTokenSupplyForStage)) {
		return v.Fail(entity.InvalidSignedMaxTokenSupplyForStage(params.MaxTokenSupplyForStage, bounds.MaxMaxTokenSupplyForStage))
	}
	if params.FeeBps.Gt(uint256.NewInt(uint64(bounds.MaxFeeBps))) {
		return v.Fail(entity.InvalidSignedFeeBps(params.FeeBps, bounds.MaxFeeBps, false))
	}
	if params.FeeBps.Lt(uint256.NewInt(uint64(bounds.MinFeeBps))) {
		return v.Fail(entity.InvalidSignedFeeBps(params.FeeBps, bounds.MinFeeBps, true))
	}
	if !params.RestrictFeeRecipients {
		return v.Fail(entity.SignedMintsMustRestrictFeeRecipients())
	}
	return true
}
