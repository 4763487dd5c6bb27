package drop

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/gaze-network/drop-offerer/pkg/crypto"
	"github.com/holiman/uint256"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnlyOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	for _, caller := range []common.Address{stranger, {}} {
		err := f.engine.UpdateAllowList(ctx, caller, common.HexToHash("0x01"))
		assertKind(t, entity.ErrOnlyOwner, err)
	}
	require.NoError(t, f.engine.UpdateAllowList(ctx, self, common.HexToHash("0x01")))
	require.NoError(t, f.engine.UpdateAllowList(ctx, owner, common.HexToHash("0x02")))
}

func TestTransferOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	assertKind(t, entity.ErrNewOwnerIsZeroAddress, f.engine.TransferOwnership(ctx, owner, common.Address{}))
	require.NoError(t, f.engine.TransferOwnership(ctx, owner, stranger))

	assertKind(t, entity.ErrOnlyOwner, f.engine.UpdatePayer(ctx, owner, minter, true))
	require.NoError(t, f.engine.UpdatePayer(ctx, stranger, minter, true))

	// already initialized
	require.NoError(t, f.engine.InitOwner(ctx, owner))
	current, err := f.repo.GetOwner(ctx)
	require.NoError(t, err)
	assert.Equal(t, stranger, current)
}

func TestUpdateCreatorPayouts(t *testing.T) {
	ctx := context.Background()
	other := common.HexToAddress("0x000000000000000000000000000000000000c002")

	testcases := []struct {
		name     string
		payouts  []entity.CreatorPayout
		expected error
	}{
		{"empty", nil, entity.ErrCreatorPayoutsNotSet},
		{"zero_address", []entity.CreatorPayout{{BasisPoints: 10_000}}, entity.ErrCreatorPayoutAddressZero},
		{"zero_bps", []entity.CreatorPayout{{PayoutAddress: creator, BasisPoints: 10_000}, {PayoutAddress: other}}, entity.ErrCreatorPayoutBasisPointsZero},
		{"under", []entity.CreatorPayout{{PayoutAddress: creator, BasisPoints: 9_999}}, entity.ErrInvalidTotalBasisPoints},
		{"over", []entity.CreatorPayout{{PayoutAddress: creator, BasisPoints: 9_999}, {PayoutAddress: other, BasisPoints: 2}}, entity.ErrInvalidTotalBasisPoints},
		{"split", []entity.CreatorPayout{{PayoutAddress: creator, BasisPoints: 7_000}, {PayoutAddress: other, BasisPoints: 3_000}}, nil},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, false)
			err := f.engine.UpdateCreatorPayouts(ctx, owner, tc.payouts)

			payouts, getErr := f.repo.GetCreatorPayouts(ctx)
			require.NoError(t, getErr)
			if tc.expected != nil {
				assertKind(t, tc.expected, err)
				// previous list is kept
				assert.Equal(t, []entity.CreatorPayout{{PayoutAddress: creator, BasisPoints: 10_000}}, payouts)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.payouts, payouts)
		})
	}
}

func TestUpdateAllowedSets(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	assertKind(t, entity.ErrFeeRecipientCannotBeZeroAddress, f.engine.UpdateAllowedFeeRecipient(ctx, owner, common.Address{}, true))
	assertKind(t, entity.ErrDuplicateEntry, f.engine.UpdateAllowedFeeRecipient(ctx, owner, feeTo, true))
	assertKind(t, entity.ErrNotPresent, f.engine.UpdateAllowedFeeRecipient(ctx, owner, stranger, false))
	require.NoError(t, f.engine.UpdateAllowedFeeRecipient(ctx, owner, feeTo, false))

	assertKind(t, entity.ErrPayerCannotBeZeroAddress, f.engine.UpdatePayer(ctx, owner, common.Address{}, true))
	require.NoError(t, f.engine.UpdatePayer(ctx, owner, stranger, true))
	assertKind(t, entity.ErrDuplicateEntry, f.engine.UpdatePayer(ctx, owner, stranger, true))
	require.NoError(t, f.engine.UpdatePayer(ctx, owner, stranger, false))
	assertKind(t, entity.ErrNotPresent, f.engine.UpdatePayer(ctx, owner, stranger, false))

	recipients, err := f.repo.GetAllowedFeeRecipients(ctx)
	require.NoError(t, err)
	assert.Empty(t, recipients)
	payers, err := f.repo.GetAllowedPayers(ctx)
	require.NoError(t, err)
	assert.Empty(t, payers)
}

func TestUpdateSigners(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	signer := common.HexToAddress("0x0000000000000000000000000000000000005197")
	valid := entity.SignedMintValidationParams{
		MinMintPrices:               []entity.PaymentTokenPrice{{MinMintPrice: uint256.NewInt(1)}},
		MaxMaxTotalMintableByWallet: 3,
		MaxEndTime:                  2_000_000_000,
		MaxMaxTokenSupplyForStage:   100,
		MinFeeBps:                   100,
		MaxFeeBps:                   500,
	}

	testcases := []struct {
		name     string
		signer   common.Address
		mutate   func(p *entity.SignedMintValidationParams)
		expected error
	}{
		{"zero_signer", common.Address{}, nil, entity.ErrSignerCannotBeZeroAddress},
		{"zero_wallet_cap", signer, func(p *entity.SignedMintValidationParams) { p.MaxMaxTotalMintableByWallet = 0 }, entity.ErrSignerMaxTotalMintableByWalletZero},
		{"min_above_max_fee", signer, func(p *entity.SignedMintValidationParams) { p.MinFeeBps = 600 }, entity.ErrInvalidFeeBps},
		{"max_fee_above_denominator", signer, func(p *entity.SignedMintValidationParams) { p.MaxFeeBps = 10_001 }, entity.ErrInvalidFeeBps},
		{"duplicate_payment_token", signer, func(p *entity.SignedMintValidationParams) {
			p.MinMintPrices = []entity.PaymentTokenPrice{{MinMintPrice: uint256.NewInt(1)}, {MinMintPrice: uint256.NewInt(2)}}
		}, entity.ErrDuplicateEntry},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			params := valid
			if tc.mutate != nil {
				tc.mutate(&params)
			}
			assertKind(t, tc.expected, f.engine.UpdateSignedMintValidationParams(ctx, owner, tc.signer, params))
		})
	}

	require.NoError(t, f.engine.UpdateSignedMintValidationParams(ctx, owner, signer, valid))
	signers, err := f.repo.GetSigners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{signer}, signers)

	require.NoError(t, f.engine.RemoveSigner(ctx, owner, signer))
	assertKind(t, entity.ErrNotPresent, f.engine.RemoveSigner(ctx, owner, signer))
}

func TestSignerWithoutMinMintPrice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	signer, err := crypto.GenerateKey()
	require.NoError(t, err)
	require.NoError(t, f.engine.UpdateSignedMintValidationParams(ctx, owner, signer.Address(), entity.SignedMintValidationParams{
		MinMintPrices:               []entity.PaymentTokenPrice{{}},
		MaxMaxTotalMintableByWallet: 10,
		MaxEndTime:                  uint64(now.Unix()) + 1_000,
		MaxMaxTokenSupplyForStage:   1_000,
		MaxFeeBps:                   1_000,
	}))

	stored, err := f.repo.GetSignedMintValidationParams(ctx, signer.Address())
	require.NoError(t, err)
	minMintPrice, ok := stored.MinMintPrice(common.Address{})
	require.True(t, ok)
	assert.True(t, minMintPrice.IsZero())

	signedMint, err := SignMint(signer, f.domain(), SignMintRequest{Minter: minter, FeeRecipient: feeTo, MintParams: mintParamsJSON("100")})
	require.NoError(t, err)
	order, err := f.engine.GenerateOrder(ctx, settlement, mintOf(1, signedMint.Context))
	require.NoError(t, err)
	assert.Len(t, order.Offer, 1)
}

func TestUpdateTokenGatedDrop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	stage := entity.TokenGatedDropStage{MaxMintablePerRedeemedToken: 1, MaxTotalMintableByWallet: 1, EndTime: 1}

	assertKind(t, entity.ErrTokenGatedDropAllowedNftTokenCannotBeZero, f.engine.UpdateTokenGatedDrop(ctx, owner, common.Address{}, stage))
	assertKind(t, entity.ErrTokenGatedDropAllowedNftTokenCannotBeDropItself, f.engine.UpdateTokenGatedDrop(ctx, owner, self, stage))
	assertKind(t, entity.ErrTokenGatedDropStageMaxMintableZero, f.engine.UpdateTokenGatedDrop(ctx, owner, gateToken, entity.TokenGatedDropStage{}))
	assertKind(t, entity.ErrInvalidFeeBps, f.engine.UpdateTokenGatedDrop(ctx, owner, gateToken, entity.TokenGatedDropStage{MaxMintablePerRedeemedToken: 1, FeeBps: 10_001}))

	require.NoError(t, f.engine.UpdateTokenGatedDrop(ctx, owner, gateToken, stage))
	got, err := f.repo.GetTokenGatedDropStage(ctx, gateToken)
	require.NoError(t, err)
	assert.Equal(t, new(uint256.Int), got.MintPrice)

	require.NoError(t, f.engine.RemoveTokenGatedDrop(ctx, owner, gateToken))
	assertKind(t, entity.ErrNotPresent, f.engine.RemoveTokenGatedDrop(ctx, owner, gateToken))
}

func TestUpdatesRecordEvents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	assertKind(t, entity.ErrInvalidFeeBps, f.engine.UpdatePublicDrop(ctx, owner, entity.PublicDrop{FeeBps: 10_001}))
	require.NoError(t, f.engine.UpdatePublicDrop(ctx, owner, publicDrop()))

	events, err := f.repo.GetEvents(ctx, 1, 100)
	require.NoError(t, err)
	kinds := lo.Map(events, func(e entity.Event, _ int) entity.EventKind { return e.Kind })
	assert.Equal(t, []entity.EventKind{
		entity.EventKindOwnershipTransferred,
		entity.EventKindCreatorPayoutsUpdated,
		entity.EventKindAllowedFeeRecipientUpdated,
		entity.EventKindPublicDropUpdated,
	}, kinds)
	assert.JSONEq(t, `{
		"mintPrice": "1000000000000000000",
		"paymentToken": "0x0000000000000000000000000000000000000000",
		"startTime": 1699999900,
		"endTime": 1700000100,
		"maxTotalMintableByWallet": 5,
		"feeBps": 500,
		"restrictFeeRecipients": true
	}`, string(events[3].Payload))
	for i, event := range events {
		assert.Equal(t, uint64(i+1), event.Seq)
		assert.True(t, now.Equal(event.CreatedAt))
	}
}
