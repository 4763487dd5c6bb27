package validator

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/modules/drop/datagateway"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/holiman/uint256"
)

// UnlimitedMaxTokenSupplyForStage is the stage cap used by stages without their own supply limit.
var UnlimitedMaxTokenSupplyForStage = new(uint256.Int).SetAllOne()

// Validator runs eligibility checks in sequence. Once a check fails, Valid is
// false, Reason holds the domain failure and every later check is skipped.
// Returned errors are infrastructure failures only.
type Validator struct {
	Valid  bool
	Reason error
}

func New() *Validator {
	return &Validator{
		Valid: true,
	}
}

// Fail marks the validator invalid with reason.
func (v *Validator) Fail(reason error) bool {
	v.Valid = false
	v.Reason = reason
	return false
}

// Dependencies are the stores and collaborators the checks read from.
type Dependencies struct {
	Store      datagateway.DropReaderDataGateway
	Ledger     datagateway.TokenLedger
	Delegation datagateway.DelegationRegistry
	Clock      func() time.Time
}

// CheckActive requires start <= now <= end.
func (v *Validator) CheckActive(now time.Time, start, end *uint256.Int) bool {
	if !v.Valid {
		return false
	}
	ts := uint64(now.Unix())
	current := uint256.NewInt(ts)
	if current.Lt(start) || current.Gt(end) {
		return v.Fail(entity.NotActive(ts, saturatingUint64(start), saturatingUint64(end)))
	}
	return true
}

// CheckPayer requires payer to be the minter, an allowed payer, or a delegate-for-all of the minter.
func (v *Validator) CheckPayer(ctx context.Context, deps Dependencies, payer, minter common.Address) (bool, error) {
	if !v.Valid {
		return false, nil
	}
	if payer == minter {
		return true, nil
	}
	allowed, err := deps.Store.IsAllowedPayer(ctx, payer)
	if err != nil {
		return false, errors.Wrap(err, "failed to check allowed payer")
	}
	if allowed {
		return true, nil
	}
	delegated, err := deps.Delegation.IsDelegatedForAll(ctx, payer, minter)
	if err != nil {
		return false, errors.Wrap(err, "failed to check delegation")
	}
	if !delegated {
		return v.Fail(entity.PayerNotAllowed(payer)), nil
	}
	return true, nil
}

// CheckFeeRecipient rejects the zero address and, when restricted, fee recipients not in the allow-list.
func (v *Validator) CheckFeeRecipient(ctx context.Context, deps Dependencies, feeRecipient common.Address, restricted bool) (bool, error) {
	if !v.Valid {
		return false, nil
	}
	if feeRecipient == (common.Address{}) {
		return v.Fail(entity.FeeRecipientCannotBeZeroAddress()), nil
	}
	if !restricted {
		return true, nil
	}
	allowed, err := deps.Store.IsAllowedFeeRecipient(ctx, feeRecipient)
	if err != nil {
		return false, errors.Wrap(err, "failed to check allowed fee recipient")
	}
	if !allowed {
		return v.Fail(entity.FeeRecipientNotAllowed(feeRecipient)), nil
	}
	return true, nil
}

// CheckQuantity checks quantity against the wallet cap, the max supply and the stage cap, in that order.
func (v *Validator) CheckQuantity(ctx context.Context, deps Dependencies, minter common.Address, quantity, maxTotalMintableByWallet, maxTokenSupplyForStage *uint256.Int) (bool, error) {
	if !v.Valid {
		return false, nil
	}
	if quantity == nil || quantity.IsZero() {
		return v.Fail(entity.MintQuantityCannotBeZero()), nil
	}

	stats, err := deps.Ledger.MintStats(ctx, minter)
	if err != nil {
		return false, errors.Wrap(err, "failed to get mint stats")
	}

	walletTotal, overflow := new(uint256.Int).AddOverflow(uint256.NewInt(stats.MintedByWallet), quantity)
	if overflow || walletTotal.Gt(maxTotalMintableByWallet) {
		return v.Fail(entity.MintQuantityExceedsMaxMintedPerWallet(walletTotal, maxTotalMintableByWallet)), nil
	}

	supplyTotal, overflow := new(uint256.Int).AddOverflow(uint256.NewInt(stats.TotalSupply), quantity)
	if overflow || supplyTotal.Gt(uint256.NewInt(stats.MaxSupply)) {
		return v.Fail(entity.MintQuantityExceedsMaxSupply(supplyTotal, uint256.NewInt(stats.MaxSupply))), nil
	}
	if supplyTotal.Gt(maxTokenSupplyForStage) {
		return v.Fail(entity.MintQuantityExceedsMaxTokenSupplyForStage(supplyTotal, maxTokenSupplyForStage)), nil
	}
	return true, nil
}

func saturatingUint64(v *uint256.Int) uint64 {
	if v == nil {
		return 0
	}
	if !v.IsUint64() {
		return ^uint64(0)
	}
	return v.Uint64()
}
