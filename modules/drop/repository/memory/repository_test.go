package memory

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/common/errs"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	addrA = common.HexToAddress("0x000000000000000000000000000000000000000a")
	addrB = common.HexToAddress("0x000000000000000000000000000000000000000b")
	addrC = common.HexToAddress("0x000000000000000000000000000000000000000c")
)

func TestTransaction(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	t.Run("commit", func(t *testing.T) {
		qtx, err := repo.BeginDropTx(ctx)
		require.NoError(t, err)
		defer func() { require.NoError(t, qtx.Rollback(ctx)) }()

		require.NoError(t, qtx.SetAllowListMerkleRoot(ctx, common.HexToHash("0x01")))
		root, err := repo.GetAllowListMerkleRoot(ctx)
		require.NoError(t, err)
		assert.Equal(t, common.Hash{}, root, "uncommitted write must not be visible")

		require.NoError(t, qtx.Commit(ctx))
		root, err = repo.GetAllowListMerkleRoot(ctx)
		require.NoError(t, err)
		assert.Equal(t, common.HexToHash("0x01"), root)
	})

	t.Run("rollback", func(t *testing.T) {
		qtx, err := repo.BeginDropTx(ctx)
		require.NoError(t, err)
		require.NoError(t, qtx.AddAllowedPayer(ctx, addrA))
		require.NoError(t, qtx.Rollback(ctx))

		allowed, err := repo.IsAllowedPayer(ctx, addrA)
		require.NoError(t, err)
		assert.False(t, allowed)

		assert.ErrorIs(t, qtx.AddAllowedPayer(ctx, addrA), ErrTxClosed)
	})

	t.Run("nested", func(t *testing.T) {
		qtx, err := repo.BeginDropTx(ctx)
		require.NoError(t, err)
		defer func() { require.NoError(t, qtx.Rollback(ctx)) }()
		_, err = qtx.BeginDropTx(ctx)
		assert.ErrorIs(t, err, ErrTxAlreadyExists)
	})

	t.Run("writes_serialize", func(t *testing.T) {
		qtx, err := repo.BeginDropTx(ctx)
		require.NoError(t, err)

		done := make(chan struct{})
		go func() {
			defer close(done)
			assert.NoError(t, repo.SetOwner(ctx, addrB))
		}()

		require.NoError(t, qtx.SetOwner(ctx, addrA))
		select {
		case <-done:
			t.Fatal("write outside transaction must wait for the open transaction")
		case <-time.After(20 * time.Millisecond):
		}
		require.NoError(t, qtx.Commit(ctx))
		<-done

		owner, err := repo.GetOwner(ctx)
		require.NoError(t, err)
		assert.Equal(t, addrB, owner)
	})
}

func TestEnumeratedSets(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	for _, addr := range []common.Address{addrA, addrB, addrC} {
		require.NoError(t, repo.AddAllowedFeeRecipient(ctx, addr))
	}
	err := repo.AddAllowedFeeRecipient(ctx, addrA)
	assert.True(t, errors.Is(err, errs.Conflict))

	require.NoError(t, repo.RemoveAllowedFeeRecipient(ctx, addrA))
	recipients, err := repo.GetAllowedFeeRecipients(ctx)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{addrC, addrB}, recipients, "removal swaps the last entry into place")

	err = repo.RemoveAllowedFeeRecipient(ctx, addrA)
	assert.True(t, errors.Is(err, errs.NotFound))
}

func TestSignersAndStages(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	_, err := repo.GetSignedMintValidationParams(ctx, addrA)
	assert.True(t, errors.Is(err, errs.NotFound))

	params := entity.SignedMintValidationParams{MaxMaxTotalMintableByWallet: 10, MaxFeeBps: 1000}
	require.NoError(t, repo.SetSignedMintValidationParams(ctx, addrA, params))
	require.NoError(t, repo.SetSignedMintValidationParams(ctx, addrA, params))
	signers, err := repo.GetSigners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{addrA}, signers, "updating a signer must not duplicate it")

	require.NoError(t, repo.RemoveSigner(ctx, addrA))
	_, err = repo.GetSignedMintValidationParams(ctx, addrA)
	assert.True(t, errors.Is(err, errs.NotFound))
	assert.True(t, errors.Is(repo.RemoveSigner(ctx, addrA), errs.NotFound))

	stage := entity.TokenGatedDropStage{MaxMintablePerRedeemedToken: 2}
	require.NoError(t, repo.SetTokenGatedDropStage(ctx, addrB, stage))
	got, err := repo.GetTokenGatedDropStage(ctx, addrB)
	require.NoError(t, err)
	assert.Equal(t, stage, got)
	require.NoError(t, repo.RemoveTokenGatedDropStage(ctx, addrB))
	tokens, err := repo.GetTokenGatedAllowedTokens(ctx)
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestCounters(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	digest := common.HexToHash("0xd1")
	require.NoError(t, repo.AddUsedDigest(ctx, digest))
	assert.True(t, errors.Is(repo.AddUsedDigest(ctx, digest), errs.Conflict))
	used, err := repo.IsDigestUsed(ctx, digest)
	require.NoError(t, err)
	assert.True(t, used)

	tokenID := uint256.NewInt(7)
	require.NoError(t, repo.SetTokenGatedRedeemed(ctx, entity.Redemption{Token: addrA, TokenID: tokenID, Redeemed: 2}))
	redeemed, err := repo.GetTokenGatedRedeemed(ctx, addrA, uint256.NewInt(7))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), redeemed)
	err = repo.SetTokenGatedRedeemed(ctx, entity.Redemption{Token: addrA, TokenID: tokenID, Redeemed: 1})
	assert.True(t, errors.Is(err, errs.InvalidArgument))
}

func TestEvents(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := NewRepository(WithClock(func() time.Time { return now }))

	for i := 0; i < 5; i++ {
		event, err := repo.CreateEvent(ctx, entity.EventKindPayerUpdated, []byte(`{}`))
		require.NoError(t, err)
		assert.Equal(t, uint64(i+1), event.Seq)
		assert.Equal(t, now, event.CreatedAt)
	}

	events, err := repo.GetEvents(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint64(2), events[0].Seq)
	assert.Equal(t, uint64(3), events[1].Seq)

	events, err = repo.GetEvents(ctx, 4, 0)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	events, err = repo.GetEvents(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestTokenLedger(t *testing.T) {
	ctx := context.Background()
	ledger := NewTokenLedger(NewRepository(), 5)

	require.NoError(t, ledger.Mint(ctx, addrA, 3))
	stats, err := ledger.MintStats(ctx, addrA)
	require.NoError(t, err)
	assert.Equal(t, entity.MintStats{MintedByWallet: 3, TotalSupply: 3, MaxSupply: 5}, stats)

	err = ledger.Mint(ctx, addrB, 3)
	assert.True(t, errors.Is(err, errs.Conflict))

	stats, err = ledger.MintStats(ctx, addrB)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), stats.MintedByWallet)
	assert.Equal(t, uint64(3), stats.TotalSupply)
}

func TestTokenLedgerWithTx(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	ledger := NewTokenLedger(repo, 10)

	mintInTx := func(commit bool) {
		tx, err := repo.BeginDropTx(ctx)
		require.NoError(t, err)
		defer func() { require.NoError(t, tx.Rollback(ctx)) }()

		bound, err := ledger.WithTx(tx)
		require.NoError(t, err)
		require.NoError(t, bound.Mint(ctx, addrA, 4))
		stats, err := bound.MintStats(ctx, addrA)
		require.NoError(t, err)
		assert.Equal(t, uint64(4), stats.MintedByWallet)
		if commit {
			require.NoError(t, tx.Commit(ctx))
		}
	}

	mintInTx(false)
	stats, err := ledger.MintStats(ctx, addrA)
	require.NoError(t, err)
	assert.Equal(t, entity.MintStats{MaxSupply: 10}, stats)

	mintInTx(true)
	stats, err = ledger.MintStats(ctx, addrA)
	require.NoError(t, err)
	assert.Equal(t, entity.MintStats{MintedByWallet: 4, TotalSupply: 4, MaxSupply: 10}, stats)

	_, err = ledger.WithTx(NewRepository())
	assert.True(t, errors.Is(err, errs.InvalidArgument))
}
