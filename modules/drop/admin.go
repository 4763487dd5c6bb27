package drop

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/common/errs"
	"github.com/gaze-network/drop-offerer/modules/drop/datagateway"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/gaze-network/drop-offerer/pkg/logger"
	"github.com/gaze-network/drop-offerer/pkg/logger/slogx"
	"github.com/holiman/uint256"
	"github.com/samber/lo"
)

const (
	listFeeRecipients = "allowedFeeRecipients"
	listPayers        = "allowedPayers"
	listSigners       = "signers"
	listGatedTokens   = "tokenGatedAllowedTokens"
	listPaymentTokens = "minMintPrices"
)

type (
	publicDropUpdated struct {
		MintPrice                string         `json:"mintPrice"`
		PaymentToken             common.Address `json:"paymentToken"`
		StartTime                uint64         `json:"startTime"`
		EndTime                  uint64         `json:"endTime"`
		MaxTotalMintableByWallet uint64         `json:"maxTotalMintableByWallet"`
		FeeBps                   uint16         `json:"feeBps"`
		RestrictFeeRecipients    bool           `json:"restrictFeeRecipients"`
	}
	allowListUpdated struct {
		PreviousMerkleRoot common.Hash `json:"previousMerkleRoot"`
		NewMerkleRoot      common.Hash `json:"newMerkleRoot"`
	}
	creatorPayout struct {
		PayoutAddress common.Address `json:"payoutAddress"`
		BasisPoints   uint16         `json:"basisPoints"`
	}
	creatorPayoutsUpdated struct {
		Payouts []creatorPayout `json:"payouts"`
	}
	addressUpdated struct {
		Address common.Address `json:"address"`
		Allowed bool           `json:"allowed"`
	}
	signerUpdated struct {
		Signer     common.Address `json:"signer"`
		Registered bool           `json:"registered"`
	}
	tokenGatedDropStageUpdated struct {
		AllowedNftToken common.Address `json:"allowedNftToken"`
		Active          bool           `json:"active"`
	}
	ownershipTransferred struct {
		PreviousOwner common.Address `json:"previousOwner"`
		NewOwner      common.Address `json:"newOwner"`
	}
)

// update runs fn in a transaction on behalf of caller and records event with it.
func (e *Engine) update(ctx context.Context, caller common.Address, kind entity.EventKind, fn func(ctx context.Context, tx datagateway.DropDataGatewayWithTx) (any, error)) error {
	ctx, leave, err := e.enter(ctx)
	if err != nil {
		return err
	}
	defer leave()

	tx, err := e.store.BeginDropTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil {
			logger.WarnContext(ctx, "failed to rollback transaction", slogx.Error(err))
		}
	}()

	owner, err := tx.GetOwner(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get owner")
	}
	if !(entity.Capability{Owner: owner, Self: e.self}).Allows(caller) {
		return entity.OnlyOwner(caller)
	}

	event, err := fn(ctx, tx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to marshal event")
	}
	if _, err := tx.CreateEvent(ctx, kind, payload); err != nil {
		return errors.Wrap(err, "failed to create event")
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	logger.InfoContext(ctx, "drop configuration updated", slogx.String("event", string(kind)), slogx.Address("caller", caller))
	return nil
}

// InitOwner sets the owner if none is configured yet.
func (e *Engine) InitOwner(ctx context.Context, owner common.Address) error {
	if owner == (common.Address{}) {
		return entity.NewOwnerIsZeroAddress()
	}
	current, err := e.store.GetOwner(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get owner")
	}
	if current != (common.Address{}) {
		return nil
	}
	return e.update(ctx, e.self, entity.EventKindOwnershipTransferred, func(ctx context.Context, tx datagateway.DropDataGatewayWithTx) (any, error) {
		if err := tx.SetOwner(ctx, owner); err != nil {
			return nil, errors.Wrap(err, "failed to set owner")
		}
		return ownershipTransferred{NewOwner: owner}, nil
	})
}

func (e *Engine) TransferOwnership(ctx context.Context, caller, newOwner common.Address) error {
	if newOwner == (common.Address{}) {
		return entity.NewOwnerIsZeroAddress()
	}
	return e.update(ctx, caller, entity.EventKindOwnershipTransferred, func(ctx context.Context, tx datagateway.DropDataGatewayWithTx) (any, error) {
		previous, err := tx.GetOwner(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get owner")
		}
		if err := tx.SetOwner(ctx, newOwner); err != nil {
			return nil, errors.Wrap(err, "failed to set owner")
		}
		return ownershipTransferred{PreviousOwner: previous, NewOwner: newOwner}, nil
	})
}

func (e *Engine) UpdatePublicDrop(ctx context.Context, caller common.Address, publicDrop entity.PublicDrop) error {
	if publicDrop.FeeBps > entity.BasisPointsDenominator {
		return entity.InvalidFeeBps(uint64(publicDrop.FeeBps))
	}
	if publicDrop.MintPrice == nil {
		publicDrop.MintPrice = new(uint256.Int)
	}
	return e.update(ctx, caller, entity.EventKindPublicDropUpdated, func(ctx context.Context, tx datagateway.DropDataGatewayWithTx) (any, error) {
		if err := tx.SetPublicDrop(ctx, publicDrop); err != nil {
			return nil, errors.Wrap(err, "failed to set public drop")
		}
		return publicDropUpdated{
			MintPrice:                publicDrop.MintPrice.Dec(),
			PaymentToken:             publicDrop.PaymentToken,
			StartTime:                publicDrop.StartTime,
			EndTime:                  publicDrop.EndTime,
			MaxTotalMintableByWallet: publicDrop.MaxTotalMintableByWallet,
			FeeBps:                   publicDrop.FeeBps,
			RestrictFeeRecipients:    publicDrop.RestrictFeeRecipients,
		}, nil
	})
}

func (e *Engine) UpdateAllowList(ctx context.Context, caller common.Address, merkleRoot common.Hash) error {
	return e.update(ctx, caller, entity.EventKindAllowListUpdated, func(ctx context.Context, tx datagateway.DropDataGatewayWithTx) (any, error) {
		previous, err := tx.GetAllowListMerkleRoot(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get allow-list merkle root")
		}
		if err := tx.SetAllowListMerkleRoot(ctx, merkleRoot); err != nil {
			return nil, errors.Wrap(err, "failed to set allow-list merkle root")
		}
		return allowListUpdated{PreviousMerkleRoot: previous, NewMerkleRoot: merkleRoot}, nil
	})
}

// UpdateCreatorPayouts replaces the whole payout list. The basis points must sum to exactly 10,000.
func (e *Engine) UpdateCreatorPayouts(ctx context.Context, caller common.Address, payouts []entity.CreatorPayout) error {
	if err := validateCreatorPayouts(payouts); err != nil {
		return err
	}
	return e.update(ctx, caller, entity.EventKindCreatorPayoutsUpdated, func(ctx context.Context, tx datagateway.DropDataGatewayWithTx) (any, error) {
		if err := tx.SetCreatorPayouts(ctx, payouts); err != nil {
			return nil, errors.Wrap(err, "failed to set creator payouts")
		}
		return creatorPayoutsUpdated{
			Payouts: lo.Map(payouts, func(p entity.CreatorPayout, _ int) creatorPayout {
				return creatorPayout{PayoutAddress: p.PayoutAddress, BasisPoints: p.BasisPoints}
			}),
		}, nil
	})
}

func validateCreatorPayouts(payouts []entity.CreatorPayout) error {
	if len(payouts) == 0 {
		return entity.CreatorPayoutsNotSet()
	}
	var total uint64
	for i, payout := range payouts {
		if payout.PayoutAddress == (common.Address{}) {
			return entity.CreatorPayoutAddressZero(i)
		}
		if payout.BasisPoints == 0 {
			return entity.CreatorPayoutBasisPointsZero(i)
		}
		total += uint64(payout.BasisPoints)
	}
	if total != entity.BasisPointsDenominator {
		return entity.InvalidTotalBasisPoints(total)
	}
	return nil
}

func (e *Engine) UpdateAllowedFeeRecipient(ctx context.Context, caller, feeRecipient common.Address, allowed bool) error {
	if feeRecipient == (common.Address{}) {
		return entity.FeeRecipientCannotBeZeroAddress()
	}
	return e.update(ctx, caller, entity.EventKindAllowedFeeRecipientUpdated, func(ctx context.Context, tx datagateway.DropDataGatewayWithTx) (any, error) {
		var err error
		if allowed {
			err = tx.AddAllowedFeeRecipient(ctx, feeRecipient)
		} else {
			err = tx.RemoveAllowedFeeRecipient(ctx, feeRecipient)
		}
		if err := setMembershipError(err, listFeeRecipients, feeRecipient); err != nil {
			return nil, err
		}
		return addressUpdated{Address: feeRecipient, Allowed: allowed}, nil
	})
}

func (e *Engine) UpdatePayer(ctx context.Context, caller, payer common.Address, allowed bool) error {
	if payer == (common.Address{}) {
		return entity.PayerCannotBeZeroAddress()
	}
	return e.update(ctx, caller, entity.EventKindPayerUpdated, func(ctx context.Context, tx datagateway.DropDataGatewayWithTx) (any, error) {
		var err error
		if allowed {
			err = tx.AddAllowedPayer(ctx, payer)
		} else {
			err = tx.RemoveAllowedPayer(ctx, payer)
		}
		if err := setMembershipError(err, listPayers, payer); err != nil {
			return nil, err
		}
		return addressUpdated{Address: payer, Allowed: allowed}, nil
	})
}

// UpdateSignedMintValidationParams registers signer, or replaces its bounds if already registered.
func (e *Engine) UpdateSignedMintValidationParams(ctx context.Context, caller, signer common.Address, params entity.SignedMintValidationParams) error {
	if signer == (common.Address{}) {
		return entity.SignerCannotBeZeroAddress()
	}
	if params.MaxMaxTotalMintableByWallet == 0 {
		return entity.SignerMaxTotalMintableByWalletZero(signer)
	}
	if params.MinFeeBps > params.MaxFeeBps || params.MaxFeeBps > entity.BasisPointsDenominator {
		return entity.InvalidFeeBpsRange(params.MinFeeBps, params.MaxFeeBps)
	}
	prices, err := normalizePaymentTokenPrices(params.MinMintPrices)
	if err != nil {
		return err
	}
	params.MinMintPrices = prices
	return e.update(ctx, caller, entity.EventKindSignedMintValidationParams, func(ctx context.Context, tx datagateway.DropDataGatewayWithTx) (any, error) {
		if err := tx.SetSignedMintValidationParams(ctx, signer, params); err != nil {
			return nil, errors.Wrap(err, "failed to set signed mint validation params")
		}
		return signerUpdated{Signer: signer, Registered: true}, nil
	})
}

// normalizePaymentTokenPrices copies prices, with a missing minimum read as zero.
// Each payment token may appear once.
func normalizePaymentTokenPrices(prices []entity.PaymentTokenPrice) ([]entity.PaymentTokenPrice, error) {
	seen := make(map[common.Address]struct{}, len(prices))
	normalized := make([]entity.PaymentTokenPrice, 0, len(prices))
	for _, price := range prices {
		if _, ok := seen[price.PaymentToken]; ok {
			return nil, entity.DuplicateEntry(listPaymentTokens, price.PaymentToken)
		}
		seen[price.PaymentToken] = struct{}{}
		minMintPrice := new(uint256.Int)
		if price.MinMintPrice != nil {
			minMintPrice.Set(price.MinMintPrice)
		}
		normalized = append(normalized, entity.PaymentTokenPrice{PaymentToken: price.PaymentToken, MinMintPrice: minMintPrice})
	}
	return normalized, nil
}

func (e *Engine) RemoveSigner(ctx context.Context, caller, signer common.Address) error {
	return e.update(ctx, caller, entity.EventKindSignedMintValidationParams, func(ctx context.Context, tx datagateway.DropDataGatewayWithTx) (any, error) {
		if err := setMembershipError(tx.RemoveSigner(ctx, signer), listSigners, signer); err != nil {
			return nil, err
		}
		return signerUpdated{Signer: signer, Registered: false}, nil
	})
}

// UpdateTokenGatedDrop configures, or replaces, the stage for holders of allowedNftToken.
func (e *Engine) UpdateTokenGatedDrop(ctx context.Context, caller, allowedNftToken common.Address, stage entity.TokenGatedDropStage) error {
	if allowedNftToken == (common.Address{}) {
		return entity.TokenGatedDropAllowedNftTokenCannotBeZero()
	}
	if allowedNftToken == e.self {
		return entity.TokenGatedDropAllowedNftTokenCannotBeDropItself(allowedNftToken)
	}
	if stage.MaxMintablePerRedeemedToken == 0 {
		return entity.TokenGatedDropStageMaxMintableZero(allowedNftToken)
	}
	if stage.FeeBps > entity.BasisPointsDenominator {
		return entity.InvalidFeeBps(uint64(stage.FeeBps))
	}
	if stage.MintPrice == nil {
		stage.MintPrice = new(uint256.Int)
	}
	return e.update(ctx, caller, entity.EventKindTokenGatedDropStageUpdated, func(ctx context.Context, tx datagateway.DropDataGatewayWithTx) (any, error) {
		if err := tx.SetTokenGatedDropStage(ctx, allowedNftToken, stage); err != nil {
			return nil, errors.Wrap(err, "failed to set token gated drop stage")
		}
		return tokenGatedDropStageUpdated{AllowedNftToken: allowedNftToken, Active: true}, nil
	})
}

func (e *Engine) RemoveTokenGatedDrop(ctx context.Context, caller, allowedNftToken common.Address) error {
	return e.update(ctx, caller, entity.EventKindTokenGatedDropStageUpdated, func(ctx context.Context, tx datagateway.DropDataGatewayWithTx) (any, error) {
		if err := setMembershipError(tx.RemoveTokenGatedDropStage(ctx, allowedNftToken), listGatedTokens, allowedNftToken); err != nil {
			return nil, err
		}
		return tokenGatedDropStageUpdated{AllowedNftToken: allowedNftToken, Active: false}, nil
	})
}

// setMembershipError maps set membership errors of the store to domain errors.
func setMembershipError(err error, list string, entry common.Address) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errs.Conflict):
		return entity.DuplicateEntry(list, entry)
	case errors.Is(err, errs.NotFound):
		return entity.NotPresent(list, entry)
	}
	return errors.Wrapf(err, "failed to update %s", list)
}
