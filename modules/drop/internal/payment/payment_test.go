package payment

import (
	"math/rand"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/common/errs"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	feeTo   = common.HexToAddress("0x000000000000000000000000000000000000fee1")
	creator = common.HexToAddress("0x000000000000000000000000000000000000c001")
	other   = common.HexToAddress("0x000000000000000000000000000000000000c002")
	usdc    = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	ether   = uint256.MustFromDecimal("1000000000000000000")
)

func TestWorkedExample(t *testing.T) {
	items, err := Obligations(Params{
		Quantity:     uint256.NewInt(3),
		MintPrice:    ether,
		FeeRecipient: feeTo,
		FeeBps:       uint256.NewInt(500),
		Payouts:      []entity.CreatorPayout{{PayoutAddress: creator, BasisPoints: 10_000}},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, feeTo, items[0].Recipient)
	assert.Equal(t, uint256.MustFromDecimal("150000000000000000"), items[0].Amount)
	assert.Equal(t, entity.ItemTypeNative, items[0].ItemType)
	assert.Equal(t, creator, items[1].Recipient)
	assert.Equal(t, uint256.MustFromDecimal("2850000000000000000"), items[1].Amount)
	assert.Equal(t, uint256.MustFromDecimal("3000000000000000000"), Sum(items))
}

func TestObligations(t *testing.T) {
	split := []entity.CreatorPayout{{PayoutAddress: creator, BasisPoints: 9_999}, {PayoutAddress: other, BasisPoints: 1}}

	testcases := []struct {
		name     string
		params   Params
		expected []entity.ReceivedItem
		err      error
	}{
		{
			name:     "free_mint",
			params:   Params{Quantity: uint256.NewInt(5), MintPrice: new(uint256.Int), FeeBps: uint256.NewInt(20_000)},
			expected: []entity.ReceivedItem{},
		},
		{
			name:   "fee_bps_too_high",
			params: Params{Quantity: uint256.NewInt(1), MintPrice: uint256.NewInt(1), FeeBps: uint256.NewInt(10_001), Payouts: split},
			err:    entity.ErrInvalidFeeBps,
		},
		{
			name:   "no_payouts",
			params: Params{Quantity: uint256.NewInt(1), MintPrice: uint256.NewInt(1), FeeBps: uint256.NewInt(0)},
			err:    entity.ErrCreatorPayoutsNotSet,
		},
		{
			name: "zero_payout_address",
			params: Params{Quantity: uint256.NewInt(1), MintPrice: uint256.NewInt(1), FeeBps: uint256.NewInt(0),
				Payouts: []entity.CreatorPayout{{PayoutAddress: creator, BasisPoints: 5_000}, {BasisPoints: 5_000}}},
			err: entity.ErrCreatorPayoutAddressZero,
		},
		{
			name:   "total_overflow",
			params: Params{Quantity: uint256.NewInt(2), MintPrice: new(uint256.Int).SetAllOne(), FeeBps: uint256.NewInt(0), Payouts: split},
			err:    errs.OverflowUint256,
		},
		{
			name:   "fee_rounds_to_zero_and_zero_payout_kept",
			params: Params{Quantity: uint256.NewInt(1), MintPrice: uint256.NewInt(100), PaymentToken: usdc, FeeRecipient: feeTo, FeeBps: uint256.NewInt(99), Payouts: split},
			expected: []entity.ReceivedItem{
				{ItemType: entity.ItemTypeERC20, Token: usdc, Identifier: new(uint256.Int), Amount: uint256.NewInt(99), Recipient: creator},
				{ItemType: entity.ItemTypeERC20, Token: usdc, Identifier: new(uint256.Int), Amount: uint256.NewInt(0), Recipient: other},
			},
		},
		{
			name:   "full_fee",
			params: Params{Quantity: uint256.NewInt(2), MintPrice: uint256.NewInt(7), FeeRecipient: feeTo, FeeBps: uint256.NewInt(10_000), Payouts: split},
			expected: []entity.ReceivedItem{
				{ItemType: entity.ItemTypeNative, Identifier: new(uint256.Int), Amount: uint256.NewInt(14), Recipient: feeTo},
				{ItemType: entity.ItemTypeNative, Identifier: new(uint256.Int), Amount: uint256.NewInt(0), Recipient: creator},
				{ItemType: entity.ItemTypeNative, Identifier: new(uint256.Int), Amount: uint256.NewInt(0), Recipient: other},
			},
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			items, err := Obligations(tc.params)
			if tc.err != nil {
				assert.True(t, errors.Is(err, tc.err), "expected %v, got %v", tc.err, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, items)
		})
	}
}

func TestDustBound(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		n := rng.Intn(5) + 1
		payouts := make([]entity.CreatorPayout, n)
		remaining := 10_000
		for j := 0; j < n; j++ {
			bps := remaining
			if j < n-1 {
				bps = rng.Intn(remaining-(n-1-j)) + 1
			}
			remaining -= bps
			payouts[j] = entity.CreatorPayout{PayoutAddress: common.BigToAddress(common.Big1), BasisPoints: uint16(bps)}
		}
		p := Params{
			Quantity:     uint256.NewInt(uint64(rng.Intn(20) + 1)),
			MintPrice:    uint256.NewInt(uint64(rng.Int63n(1e18) + 1)),
			FeeRecipient: feeTo,
			FeeBps:       uint256.NewInt(uint64(rng.Intn(10_001))),
			Payouts:      payouts,
		}
		items, err := Obligations(p)
		require.NoError(t, err)

		total := new(uint256.Int).Mul(p.Quantity, p.MintPrice)
		sum := Sum(items)
		require.False(t, sum.Gt(total), "obligations exceed total")
		dust := new(uint256.Int).Sub(total, sum)
		assert.False(t, dust.Gt(uint256.NewInt(uint64(n))), "dust %s above %d", dust.Dec(), n)
	}
}
