package gated

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/common/errs"
	"github.com/gaze-network/drop-offerer/modules/drop/datagateway"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/validator"
	"github.com/holiman/uint256"
)

type TokenGatedValidator struct {
	validator.Validator

	// Redemptions holds the new cumulative counter of every redeemed token id, in request order.
	// They are written by the commit path only.
	Redemptions []entity.Redemption
	// Total is the sum of the redeemed amounts.
	Total *uint256.Int
}

func New() *TokenGatedValidator {
	v := validator.New()
	return &TokenGatedValidator{
		Validator: *v,
		Total:     new(uint256.Int),
	}
}

// StageActive loads the drop stage configured for the gating token.
func (v *TokenGatedValidator) StageActive(ctx context.Context, store datagateway.DropReaderDataGateway, allowedNftToken common.Address) (bool, entity.TokenGatedDropStage, error) {
	if !v.Valid {
		return false, entity.TokenGatedDropStage{}, nil
	}
	stage, err := store.GetTokenGatedDropStage(ctx, allowedNftToken)
	if errors.Is(err, errs.NotFound) {
		return v.Fail(entity.TokenGatedDropStageNotActive(allowedNftToken)), entity.TokenGatedDropStage{}, nil
	}
	if err != nil {
		return false, entity.TokenGatedDropStage{}, errors.Wrap(err, "failed to get token gated drop stage")
	}
	return true, stage, nil
}

func (v *TokenGatedValidator) ArrayLengthsMatch(params entity.TokenGatedMintParams) bool {
	if !v.Valid {
		return false
	}
	if len(params.AllowedNftTokenIDs) != len(params.Amounts) {
		return v.Fail(entity.TokenGatedMismatchedArrayLengths(len(params.AllowedNftTokenIDs), len(params.Amounts)))
	}
	return true
}

// Redeem checks ownership of every gating token id and stages its new redemption counter.
// A token id listed more than once accumulates across its entries.
func (v *TokenGatedValidator) Redeem(ctx context.Context, store datagateway.DropReaderDataGateway, ledger datagateway.GatingLedger, minter common.Address, stage entity.TokenGatedDropStage, params entity.TokenGatedMintParams) (bool, error) {
	if !v.Valid {
		return false, nil
	}
	token := params.AllowedNftToken
	maxMintable := uint256.NewInt(stage.MaxMintablePerRedeemedToken)
	staged := make(map[uint256.Int]int, len(params.AllowedNftTokenIDs))

	for i, tokenID := range params.AllowedNftTokenIDs {
		amount := params.Amounts[i]

		owner, err := ledger.OwnerOf(ctx, token, tokenID)
		if err != nil && !errors.Is(err, errs.NotFound) {
			return false, errors.Wrapf(err, "failed to get owner of token %s", tokenID.Dec())
		}
		if owner != minter {
			return v.Fail(entity.TokenGatedNotTokenOwner(token, tokenID, owner)), nil
		}

		var redeemed *uint256.Int
		idx, seen := staged[*tokenID]
		if seen {
			redeemed = uint256.NewInt(v.Redemptions[idx].Redeemed)
		} else {
			stored, err := store.GetTokenGatedRedeemed(ctx, token, tokenID)
			if err != nil {
				return false, errors.Wrap(err, "failed to get redeemed count")
			}
			redeemed = uint256.NewInt(stored)
		}

		cumulative, overflow := new(uint256.Int).AddOverflow(redeemed, amount)
		if overflow || cumulative.Gt(maxMintable) {
			return v.Fail(entity.TokenGatedTokenIdMintExceedsQuantityRemaining(token, tokenID, stage.MaxMintablePerRedeemedToken, cumulative)), nil
		}
		v.Total.Add(v.Total, amount)

		redemption := entity.Redemption{
			Token:    token,
			TokenID:  new(uint256.Int).Set(tokenID),
			Redeemed: cumulative.Uint64(),
		}
		if seen {
			v.Redemptions[idx] = redemption
			continue
		}
		staged[*tokenID] = len(v.Redemptions)
		v.Redemptions = append(v.Redemptions, redemption)
	}
	return true, nil
}

// QuantityMatches requires the redeemed total to equal the quantity being minted.
func (v *TokenGatedValidator) QuantityMatches(quantity *uint256.Int) bool {
	if !v.Valid {
		return false
	}
	if !v.Total.Eq(quantity) {
		return v.Fail(entity.QuantityMismatch(quantity, v.Total))
	}
	return true
}
