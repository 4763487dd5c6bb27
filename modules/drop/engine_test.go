package drop

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/common/errs"
	"github.com/gaze-network/drop-offerer/modules/drop/datagateway"
	"github.com/gaze-network/drop-offerer/modules/drop/datagateway/mocks"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/extradata"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/payment"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/validator/allowlist"
	"github.com/gaze-network/drop-offerer/modules/drop/repository/memory"
	"github.com/gaze-network/drop-offerer/pkg/crypto"
	"github.com/gaze-network/drop-offerer/pkg/eip712"
	"github.com/holiman/uint256"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	self       = common.HexToAddress("0x00000000000000000000000000000000000d0d0d")
	settlement = common.HexToAddress("0x0000000000000000000000000000000000005e77")
	owner      = common.HexToAddress("0x0000000000000000000000000000000000000e0e")
	creator    = common.HexToAddress("0x000000000000000000000000000000000000c001")
	feeTo      = common.HexToAddress("0x000000000000000000000000000000000000fee1")
	minter     = common.HexToAddress("0x0000000000000000000000000000000000001111")
	stranger   = common.HexToAddress("0x0000000000000000000000000000000000002222")
	gateToken  = common.HexToAddress("0x000000000000000000000000000000000000a7e0")

	now   = time.Unix(1_700_000_000, 0)
	ether = uint256.MustFromDecimal("1000000000000000000")
)

type fixture struct {
	engine     *Engine
	repo       *memory.Repository
	ledger     *memory.TokenLedger
	gating     *memory.GatingLedger
	delegation *memory.DelegationRegistry
}

type fixtureOption func(*Dependencies)

func withLedger(ledger datagateway.TokenLedger) fixtureOption {
	return func(d *Dependencies) { d.Ledger = ledger }
}

func withStore(store *commitFailingStore) fixtureOption {
	return func(d *Dependencies) {
		store.Repository = d.Store.(*memory.Repository)
		d.Store = store
	}
}

func withDelegation(registry datagateway.DelegationRegistry) fixtureOption {
	return func(d *Dependencies) { d.Delegation = registry }
}

func newFixture(t *testing.T, enableGated bool, opts ...fixtureOption) *fixture {
	t.Helper()
	ctx := context.Background()
	clock := func() time.Time { return now }

	repo := memory.NewRepository(memory.WithClock(clock))
	f := &fixture{
		repo:       repo,
		ledger:     memory.NewTokenLedger(repo, 1_000),
		gating:     memory.NewGatingLedger(),
		delegation: memory.NewDelegationRegistry(),
	}
	deps := Dependencies{
		Store:      f.repo,
		Ledger:     f.ledger,
		Gating:     f.gating,
		Delegation: f.delegation,
		Chain:      memory.StaticChain(1),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	f.engine = NewEngine(Params{
		Name:                    "Drop",
		DomainVersion:           "1.0",
		Self:                    self,
		Settlement:              settlement,
		EnableGatedSubstandards: enableGated,
		Clock:                   clock,
	}, deps)

	require.NoError(t, f.engine.InitOwner(ctx, owner))
	require.NoError(t, f.engine.UpdateCreatorPayouts(ctx, owner, []entity.CreatorPayout{{PayoutAddress: creator, BasisPoints: 10_000}}))
	require.NoError(t, f.engine.UpdateAllowedFeeRecipient(ctx, owner, feeTo, true))
	return f
}

func (f *fixture) domain() eip712.Domain {
	return eip712.Domain{Name: "Drop", Version: "1.0", ChainID: 1, VerifyingContract: self}
}

func mintOf(quantity uint64, data []byte) OrderRequest {
	return OrderRequest{
		Fulfiller: minter,
		MinimumReceived: []entity.SpentItem{{
			ItemType:   entity.ItemTypeERC1155,
			Token:      self,
			Identifier: new(uint256.Int),
			Amount:     uint256.NewInt(quantity),
		}},
		Context: data,
	}
}

func publicDrop() entity.PublicDrop {
	return entity.PublicDrop{
		MintPrice:                ether,
		StartTime:                uint64(now.Unix()) - 100,
		EndTime:                  uint64(now.Unix()) + 100,
		MaxTotalMintableByWallet: 5,
		FeeBps:                   500,
		RestrictFeeRecipients:    true,
	}
}

func mintParams(feeBps uint64) entity.MintParams {
	return entity.MintParams{
		MintPrice:                uint256.NewInt(1_000),
		MaxTotalMintableByWallet: uint256.NewInt(5),
		StartTime:                uint256.NewInt(uint64(now.Unix()) - 100),
		EndTime:                  uint256.NewInt(uint64(now.Unix()) + 100),
		DropStageIndex:           uint256.NewInt(1),
		MaxTokenSupplyForStage:   uint256.NewInt(500),
		FeeBps:                   uint256.NewInt(feeBps),
		RestrictFeeRecipients:    true,
	}
}

func mintParamsJSON(feeBps string) MintParamsJSON {
	return MintParamsJSON{
		MintPrice:                "1000",
		MaxTotalMintableByWallet: "5",
		StartTime:                uint256.NewInt(uint64(now.Unix()) - 100).Dec(),
		EndTime:                  uint256.NewInt(uint64(now.Unix()) + 100).Dec(),
		DropStageIndex:           "1",
		MaxTokenSupplyForStage:   "500",
		FeeBps:                   feeBps,
		RestrictFeeRecipients:    true,
	}
}

func assertKind(t *testing.T, expected error, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, expected), "expected %v, got %v", expected, err)
}

func TestPublicDropWorkedExample(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	require.NoError(t, f.engine.UpdatePublicDrop(ctx, owner, publicDrop()))

	order, err := f.engine.GenerateOrder(ctx, settlement, mintOf(3, extradata.EncodePublic(feeTo, minter)))
	require.NoError(t, err)

	require.Len(t, order.Offer, 1)
	assert.Equal(t, self, order.Offer[0].Token)
	assert.Equal(t, uint256.NewInt(3), order.Offer[0].Amount)

	require.Len(t, order.Consideration, 2)
	assert.Equal(t, feeTo, order.Consideration[0].Recipient)
	assert.Equal(t, uint256.MustFromDecimal("150000000000000000"), order.Consideration[0].Amount)
	assert.Equal(t, creator, order.Consideration[1].Recipient)
	assert.Equal(t, uint256.MustFromDecimal("2850000000000000000"), order.Consideration[1].Amount)

	stats, err := f.ledger.MintStats(ctx, minter)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), stats.MintedByWallet)

	_, err = f.engine.GenerateOrder(ctx, settlement, mintOf(3, extradata.EncodePublic(feeTo, minter)))
	assertKind(t, entity.ErrMintQuantityExceedsMaxMintedPerWallet, err)

	events, err := f.repo.GetEvents(ctx, 1, 100)
	require.NoError(t, err)
	mints := lo.Filter(events, func(e entity.Event, _ int) bool { return e.Kind == entity.EventKindMint })
	require.Len(t, mints, 1)
	assert.JSONEq(t, `{
		"minter": "0x0000000000000000000000000000000000001111",
		"feeRecipient": "0x000000000000000000000000000000000000fee1",
		"payer": "0x0000000000000000000000000000000000001111",
		"quantity": "3",
		"unitMintPrice": "1000000000000000000",
		"paymentToken": "0x0000000000000000000000000000000000000000",
		"feeBps": 500,
		"dropStageIndex": 0,
		"substandard": "public"
	}`, string(mints[0].Payload))
}

func TestPreviewMatchesGenerate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	require.NoError(t, f.engine.UpdatePublicDrop(ctx, owner, publicDrop()))
	req := mintOf(2, extradata.EncodePublic(feeTo, minter))

	preview, err := f.engine.PreviewOrder(ctx, stranger, req)
	require.NoError(t, err)
	again, err := f.engine.PreviewOrder(ctx, stranger, req)
	require.NoError(t, err)
	assert.Equal(t, preview, again)

	stats, err := f.ledger.MintStats(ctx, minter)
	require.NoError(t, err)
	assert.Zero(t, stats.MintedByWallet)

	order, err := f.engine.GenerateOrder(ctx, settlement, req)
	require.NoError(t, err)
	assert.Equal(t, preview, order)
}

func TestGenerateOrderRequiresSettlementCaller(t *testing.T) {
	f := newFixture(t, false)
	_, err := f.engine.GenerateOrder(context.Background(), stranger, mintOf(1, extradata.EncodePublic(feeTo, minter)))
	assertKind(t, entity.ErrInvalidCaller, err)
}

func TestOrderRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	require.NoError(t, f.engine.UpdatePublicDrop(ctx, owner, publicDrop()))

	closed := publicDrop()
	closed.EndTime = uint64(now.Unix()) - 1

	testcases := []struct {
		name     string
		req      OrderRequest
		expected error
	}{
		{
			name:     "unsupported_version",
			req:      mintOf(1, append([]byte{1}, extradata.EncodePublic(feeTo, minter)[1:]...)),
			expected: entity.ErrUnsupportedVersion,
		},
		{
			name: "missing_self_item",
			req: func() OrderRequest {
				r := mintOf(1, extradata.EncodePublic(feeTo, minter))
				r.MinimumReceived[0].Token = stranger
				return r
			}(),
			expected: entity.ErrMissingSelfItem,
		},
		{
			name:     "signed_disabled",
			req:      mintOf(1, extradata.Encode(extradata.Header{Substandard: entity.SubstandardSigned, FeeRecipient: feeTo, Minter: minter}, make([]byte, 400))),
			expected: entity.ErrSubstandardNotSupported,
		},
		{
			name:     "token_gated_disabled",
			req:      mintOf(1, extradata.Encode(extradata.Header{Substandard: entity.SubstandardTokenGated, FeeRecipient: feeTo, Minter: minter}, make([]byte, 96))),
			expected: entity.ErrSubstandardNotSupported,
		},
		{
			name: "payer_not_allowed",
			req: func() OrderRequest {
				r := mintOf(1, extradata.EncodePublic(feeTo, minter))
				r.Fulfiller = stranger
				return r
			}(),
			expected: entity.ErrPayerNotAllowed,
		},
		{
			name:     "fee_recipient_not_allowed",
			req:      mintOf(1, extradata.EncodePublic(stranger, minter)),
			expected: entity.ErrFeeRecipientNotAllowed,
		},
		{
			name:     "zero_quantity",
			req:      mintOf(0, extradata.EncodePublic(feeTo, minter)),
			expected: entity.ErrMissingSelfItem,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.engine.PreviewOrder(ctx, settlement, tc.req)
			assertKind(t, tc.expected, err)
		})
	}

	t.Run("not_active", func(t *testing.T) {
		require.NoError(t, f.engine.UpdatePublicDrop(ctx, owner, closed))
		_, err := f.engine.PreviewOrder(ctx, settlement, mintOf(1, extradata.EncodePublic(feeTo, minter)))
		assertKind(t, entity.ErrNotActive, err)
	})
}

func TestDelegatedPayerAndDefaultMinter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	require.NoError(t, f.engine.UpdatePublicDrop(ctx, owner, publicDrop()))

	f.delegation.DelegateForAll(stranger, minter, true)
	req := mintOf(1, extradata.EncodePublic(feeTo, minter))
	req.Fulfiller = stranger
	_, err := f.engine.GenerateOrder(ctx, settlement, req)
	require.NoError(t, err)

	// zero minter mints to the fulfiller
	req = mintOf(1, extradata.EncodePublic(feeTo, common.Address{}))
	req.Fulfiller = stranger
	_, err = f.engine.GenerateOrder(ctx, settlement, req)
	require.NoError(t, err)

	for addr, expected := range map[common.Address]uint64{minter: 1, stranger: 1} {
		stats, err := f.ledger.MintStats(ctx, addr)
		require.NoError(t, err)
		assert.Equal(t, expected, stats.MintedByWallet, addr.Hex())
	}
}

func TestAllowListTwoLeafExample(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	other := common.HexToAddress("0x0000000000000000000000000000000000003333")

	tree, err := allowlist.BuildTree([]allowlist.Entry{
		{Minter: minter, MintParams: mintParams(500)},
		{Minter: other, MintParams: mintParams(250)},
	})
	require.NoError(t, err)
	require.NoError(t, f.engine.UpdateAllowList(ctx, owner, tree.Root()))
	proof0, err := tree.Proof(0)
	require.NoError(t, err)

	order, err := f.engine.GenerateOrder(ctx, settlement, mintOf(2, extradata.EncodeAllowList(feeTo, minter, mintParams(500), proof0)))
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(2_000), payment.Sum(order.Consideration))

	req := mintOf(1, extradata.EncodeAllowList(feeTo, other, mintParams(250), proof0))
	req.Fulfiller = other
	_, err = f.engine.PreviewOrder(ctx, settlement, req)
	assertKind(t, entity.ErrInvalidProof, err)
}

func TestSignedMint(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	signer, err := crypto.GenerateKey()
	require.NoError(t, err)
	require.NoError(t, f.engine.UpdateSignedMintValidationParams(ctx, owner, signer.Address(), entity.SignedMintValidationParams{
		MinMintPrices:               []entity.PaymentTokenPrice{{MinMintPrice: uint256.NewInt(1_000)}},
		MaxMaxTotalMintableByWallet: 10,
		MinStartTime:                0,
		MaxEndTime:                  uint64(now.Unix()) + 1_000,
		MaxMaxTokenSupplyForStage:   1_000,
		MinFeeBps:                   100,
		MaxFeeBps:                   1_000,
	}))

	sign := func(feeBps string, salt common.Hash) []byte {
		signedMint, err := SignMint(signer, f.domain(), SignMintRequest{
			Minter:       minter,
			FeeRecipient: feeTo,
			MintParams:   mintParamsJSON(feeBps),
			Salt:         salt,
		})
		require.NoError(t, err)
		return signedMint.Context
	}

	_, err = f.engine.GenerateOrder(ctx, settlement, mintOf(1, sign("50", common.HexToHash("0x01"))))
	assertKind(t, entity.ErrInvalidSignedFeeBps, err)

	first := sign("100", common.HexToHash("0x01"))
	_, err = f.engine.GenerateOrder(ctx, settlement, mintOf(1, first))
	require.NoError(t, err)

	_, err = f.engine.GenerateOrder(ctx, settlement, mintOf(1, first))
	assertKind(t, entity.ErrSignatureAlreadyUsed, err)

	_, err = f.engine.GenerateOrder(ctx, settlement, mintOf(1, sign("100", common.HexToHash("0x02"))))
	require.NoError(t, err)

	impostor, err := crypto.GenerateKey()
	require.NoError(t, err)
	forged, err := SignMint(impostor, f.domain(), SignMintRequest{Minter: minter, FeeRecipient: feeTo, MintParams: mintParamsJSON("100")})
	require.NoError(t, err)
	_, err = f.engine.PreviewOrder(ctx, settlement, mintOf(1, forged.Context))
	assertKind(t, entity.ErrInvalidSignature, err)
}

func TestFailedMintRollsBack(t *testing.T) {
	ctx := context.Background()
	ledger := mocks.NewTokenLedger(t)
	ledger.EXPECT().MintStats(mock.Anything, minter).Return(entity.MintStats{MaxSupply: 100}, nil)
	ledger.EXPECT().Mint(mock.Anything, minter, uint64(1)).Return(errors.New("ledger unavailable")).Once()

	f := newFixture(t, true, withLedger(ledger))
	signer, err := crypto.GenerateKey()
	require.NoError(t, err)
	require.NoError(t, f.engine.UpdateSignedMintValidationParams(ctx, owner, signer.Address(), entity.SignedMintValidationParams{
		MinMintPrices:               []entity.PaymentTokenPrice{{MinMintPrice: uint256.NewInt(1)}},
		MaxMaxTotalMintableByWallet: 10,
		MaxEndTime:                  uint64(now.Unix()) + 1_000,
		MaxMaxTokenSupplyForStage:   1_000,
		MaxFeeBps:                   1_000,
	}))
	signedMint, err := SignMint(signer, f.domain(), SignMintRequest{Minter: minter, FeeRecipient: feeTo, MintParams: mintParamsJSON("100")})
	require.NoError(t, err)

	before, err := f.repo.GetEvents(ctx, 1, 100)
	require.NoError(t, err)

	_, err = f.engine.GenerateOrder(ctx, settlement, mintOf(1, signedMint.Context))
	require.Error(t, err)

	used, err := f.repo.IsDigestUsed(ctx, signedMint.Digest)
	require.NoError(t, err)
	assert.False(t, used)
	after, err := f.repo.GetEvents(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

// commitFailingStore hands out transactions whose Commit fails while failures > 0.
type commitFailingStore struct {
	*memory.Repository
	failures int
}

func (s *commitFailingStore) BeginDropTx(ctx context.Context) (datagateway.DropDataGatewayWithTx, error) {
	tx, err := s.Repository.BeginDropTx(ctx)
	if err != nil || s.failures == 0 {
		return tx, err
	}
	s.failures--
	return &commitFailingTx{Repository: tx.(*memory.Repository)}, nil
}

type commitFailingTx struct {
	*memory.Repository
}

func (tx *commitFailingTx) Commit(ctx context.Context) error {
	if err := tx.Repository.Rollback(ctx); err != nil {
		return err
	}
	return errors.New("serialization failure")
}

func TestCommitFailureMintsNothing(t *testing.T) {
	ctx := context.Background()
	store := &commitFailingStore{}
	f := newFixture(t, true, withStore(store))
	signer, err := crypto.GenerateKey()
	require.NoError(t, err)
	require.NoError(t, f.engine.UpdateSignedMintValidationParams(ctx, owner, signer.Address(), entity.SignedMintValidationParams{
		MinMintPrices:               []entity.PaymentTokenPrice{{MinMintPrice: uint256.NewInt(1)}},
		MaxMaxTotalMintableByWallet: 10,
		MaxEndTime:                  uint64(now.Unix()) + 1_000,
		MaxMaxTokenSupplyForStage:   1_000,
		MaxFeeBps:                   1_000,
	}))
	signedMint, err := SignMint(signer, f.domain(), SignMintRequest{Minter: minter, FeeRecipient: feeTo, MintParams: mintParamsJSON("100")})
	require.NoError(t, err)
	store.failures = 1

	_, err = f.engine.GenerateOrder(ctx, settlement, mintOf(2, signedMint.Context))
	require.ErrorContains(t, err, "serialization failure")

	stats, err := f.ledger.MintStats(ctx, minter)
	require.NoError(t, err)
	assert.Equal(t, entity.MintStats{MintedByWallet: 0, TotalSupply: 0, MaxSupply: 1_000}, stats)
	used, err := f.repo.IsDigestUsed(ctx, signedMint.Digest)
	require.NoError(t, err)
	assert.False(t, used)

	_, err = f.engine.GenerateOrder(ctx, settlement, mintOf(2, signedMint.Context))
	require.NoError(t, err)
	_, err = f.engine.GenerateOrder(ctx, settlement, mintOf(2, signedMint.Context))
	assertKind(t, entity.ErrSignatureAlreadyUsed, err)

	stats, err = f.ledger.MintStats(ctx, minter)
	require.NoError(t, err)
	assert.Equal(t, entity.MintStats{MintedByWallet: 2, TotalSupply: 2, MaxSupply: 1_000}, stats)
}

func TestTokenGatedMint(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	require.NoError(t, f.engine.UpdateTokenGatedDrop(ctx, owner, gateToken, entity.TokenGatedDropStage{
		MintPrice:                   uint256.NewInt(10),
		MaxMintablePerRedeemedToken: 2,
		MaxTotalMintableByWallet:    10,
		StartTime:                   uint64(now.Unix()) - 100,
		EndTime:                     uint64(now.Unix()) + 100,
		DropStageIndex:              3,
		MaxTokenSupplyForStage:      100,
		FeeBps:                      1_000,
	}))
	f.gating.SetOwner(gateToken, uint256.NewInt(1), minter)
	f.gating.SetOwner(gateToken, uint256.NewInt(2), minter)
	f.gating.SetOwner(gateToken, uint256.NewInt(3), stranger)

	gatedContext := func(pairs ...uint64) []byte {
		params := entity.TokenGatedMintParams{AllowedNftToken: gateToken}
		for i := 0; i+1 < len(pairs); i += 2 {
			params.AllowedNftTokenIDs = append(params.AllowedNftTokenIDs, uint256.NewInt(pairs[i]))
			params.Amounts = append(params.Amounts, uint256.NewInt(pairs[i+1]))
		}
		data, err := extradata.EncodeTokenGated(feeTo, minter, params)
		require.NoError(t, err)
		return data
	}

	order, err := f.engine.GenerateOrder(ctx, settlement, mintOf(3, gatedContext(1, 2, 2, 1)))
	require.NoError(t, err)
	require.Len(t, order.Consideration, 2)
	assert.Equal(t, uint256.NewInt(3), order.Consideration[0].Amount)
	assert.Equal(t, uint256.NewInt(27), order.Consideration[1].Amount)

	for id, expected := range map[uint64]uint64{1: 2, 2: 1} {
		redeemed, err := f.repo.GetTokenGatedRedeemed(ctx, gateToken, uint256.NewInt(id))
		require.NoError(t, err)
		assert.Equal(t, expected, redeemed)
	}

	_, err = f.engine.PreviewOrder(ctx, settlement, mintOf(1, gatedContext(1, 1)))
	assertKind(t, entity.ErrTokenGatedTokenIdMintExceedsQuantityRemain, err)
	_, err = f.engine.PreviewOrder(ctx, settlement, mintOf(1, gatedContext(3, 1)))
	assertKind(t, entity.ErrTokenGatedNotTokenOwner, err)
	_, err = f.engine.PreviewOrder(ctx, settlement, mintOf(2, gatedContext(2, 1)))
	assertKind(t, entity.ErrQuantityMismatch, err)

	require.NoError(t, f.engine.RemoveTokenGatedDrop(ctx, owner, gateToken))
	_, err = f.engine.PreviewOrder(ctx, settlement, mintOf(1, gatedContext(2, 1)))
	assertKind(t, entity.ErrTokenGatedDropStageNotActive, err)
}

// reentrantRegistry calls back into the engine while it evaluates.
type reentrantRegistry struct {
	engine *Engine
	err    error
}

func (r *reentrantRegistry) IsDelegatedForAll(ctx context.Context, delegate, vault common.Address) (bool, error) {
	_, r.err = r.engine.PreviewOrder(ctx, settlement, mintOf(1, extradata.EncodePublic(feeTo, minter)))
	return false, nil
}

func TestReentrantCall(t *testing.T) {
	ctx := context.Background()
	registry := &reentrantRegistry{}
	f := newFixture(t, false, withDelegation(registry))
	registry.engine = f.engine
	require.NoError(t, f.engine.UpdatePublicDrop(ctx, owner, publicDrop()))

	req := mintOf(1, extradata.EncodePublic(feeTo, minter))
	req.Fulfiller = stranger
	_, err := f.engine.PreviewOrder(ctx, settlement, req)
	assertKind(t, entity.ErrPayerNotAllowed, err)
	assertKind(t, entity.ErrReentrantCall, registry.err)
}

func TestMetadata(t *testing.T) {
	f := newFixture(t, false)
	metadata := f.engine.Metadata()
	assert.Equal(t, "Drop", metadata.Name)
	require.Len(t, metadata.Schemas, 1)
	assert.Equal(t, uint64(SchemaID), metadata.Schemas[0].ID)
	assert.Equal(t, []entity.Substandard{entity.SubstandardPublic, entity.SubstandardAllowList}, metadata.SupportedSubstandards)
	assert.Equal(t, extradata.EncodeSubstandards(metadata.SupportedSubstandards), metadata.Schemas[0].Metadata)

	gated := newFixture(t, true)
	assert.Len(t, gated.engine.Metadata().SupportedSubstandards, 4)
}

func TestConsumeRequestSignature(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	body := []byte(`{"expiresAt":1700000060}`)

	require.NoError(t, f.engine.ConsumeRequestSignature(ctx, owner, body))
	assertKind(t, errs.Conflict, f.engine.ConsumeRequestSignature(ctx, owner, body))
	require.NoError(t, f.engine.ConsumeRequestSignature(ctx, stranger, body))
}
