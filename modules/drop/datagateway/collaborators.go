package datagateway

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/holiman/uint256"
)

// TokenLedger owns unit creation and supply accounting of the drop token.
type TokenLedger interface {
	MintStats(ctx context.Context, minter common.Address) (entity.MintStats, error)
	Mint(ctx context.Context, minter common.Address, quantity uint64) error
}

// TxTokenLedger is a TokenLedger that can join an open drop transaction.
// Mints through the bound ledger commit and roll back with tx.
type TxTokenLedger interface {
	TokenLedger
	WithTx(tx DropDataGatewayWithTx) (TokenLedger, error)
}

// GatingLedger answers ownership of units of other (gating) collections.
type GatingLedger interface {
	OwnerOf(ctx context.Context, token common.Address, tokenID *uint256.Int) (common.Address, error)
}

type DelegationRegistry interface {
	// IsDelegatedForAll reports whether vault delegated all its rights to delegate.
	IsDelegatedForAll(ctx context.Context, delegate, vault common.Address) (bool, error)
}

// ChainReader reports the identity of the execution environment.
type ChainReader interface {
	ChainID(ctx context.Context) (uint64, error)
}
