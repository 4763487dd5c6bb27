package payment

import (
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/common/errs"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/holiman/uint256"
)

var denominator = uint256.NewInt(entity.BasisPointsDenominator)

type Params struct {
	Quantity     *uint256.Int
	MintPrice    *uint256.Int
	PaymentToken common.Address
	FeeRecipient common.Address
	FeeBps       *uint256.Int
	Payouts      []entity.CreatorPayout
}

// Obligations splits quantity * mintPrice between the fee recipient and the creator payouts.
// The fee item is omitted when the fee rounds to zero, payout items never are. Rounding dust is not reallocated.
func Obligations(p Params) ([]entity.ReceivedItem, error) {
	if p.MintPrice == nil || p.MintPrice.IsZero() {
		return []entity.ReceivedItem{}, nil
	}
	if p.FeeBps.Gt(denominator) {
		return nil, entity.InvalidFeeBps(saturatingUint64(p.FeeBps))
	}
	if len(p.Payouts) == 0 {
		return nil, entity.CreatorPayoutsNotSet()
	}

	total, overflow := new(uint256.Int).MulOverflow(p.Quantity, p.MintPrice)
	if overflow {
		return nil, errors.Wrapf(errs.OverflowUint256, "total price of %s units at %s", p.Quantity.Dec(), p.MintPrice.Dec())
	}
	fee, _ := new(uint256.Int).MulDivOverflow(total, p.FeeBps, denominator)
	remainder := new(uint256.Int).Sub(total, fee)

	itemType := entity.ItemTypeNative
	if p.PaymentToken != (common.Address{}) {
		itemType = entity.ItemTypeERC20
	}
	item := func(amount *uint256.Int, recipient common.Address) entity.ReceivedItem {
		return entity.ReceivedItem{
			ItemType:   itemType,
			Token:      p.PaymentToken,
			Identifier: new(uint256.Int),
			Amount:     amount,
			Recipient:  recipient,
		}
	}

	items := make([]entity.ReceivedItem, 0, len(p.Payouts)+1)
	if !fee.IsZero() {
		items = append(items, item(fee, p.FeeRecipient))
	}
	for i, payout := range p.Payouts {
		if payout.PayoutAddress == (common.Address{}) {
			return nil, entity.CreatorPayoutAddressZero(i)
		}
		amount, _ := new(uint256.Int).MulDivOverflow(remainder, uint256.NewInt(uint64(payout.BasisPoints)), denominator)
		items = append(items, item(amount, payout.PayoutAddress))
	}
	return items, nil
}

// Sum returns the total amount of items.
func Sum(items []entity.ReceivedItem) *uint256.Int {
	sum := new(uint256.Int)
	for _, item := range items {
		sum.Add(sum, item.Amount)
	}
	return sum
}

func saturatingUint64(v *uint256.Int) uint64 {
	if !v.IsUint64() {
		return ^uint64(0)
	}
	return v.Uint64()
}
