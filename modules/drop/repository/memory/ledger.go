package memory

import (
	"context"
	"math"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/common/errs"
	"github.com/gaze-network/drop-offerer/modules/drop/datagateway"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/holiman/uint256"
)

var (
	_ datagateway.TxTokenLedger      = (*TokenLedger)(nil)
	_ datagateway.GatingLedger       = (*GatingLedger)(nil)
	_ datagateway.DelegationRegistry = (*DelegationRegistry)(nil)
	_ datagateway.ChainReader        = StaticChain(0)
)

// TokenLedger keeps supply and per-wallet mint counts in the repository
// state, so a ledger bound to a transaction stages mints in its snapshot.
type TokenLedger struct {
	repo      *Repository
	maxSupply uint64
}

func NewTokenLedger(repo *Repository, maxSupply uint64) *TokenLedger {
	return &TokenLedger{
		repo:      repo,
		maxSupply: maxSupply,
	}
}

// snapshotHolder is implemented by *Repository and by types embedding it.
type snapshotHolder interface {
	memoryRepository() *Repository
}

func (r *Repository) memoryRepository() *Repository {
	return r
}

func (l *TokenLedger) WithTx(tx datagateway.DropDataGatewayWithTx) (datagateway.TokenLedger, error) {
	holder, ok := tx.(snapshotHolder)
	if !ok {
		return nil, errors.Wrapf(errs.Unsupported, "%T is not a memory transaction", tx)
	}
	repo := holder.memoryRepository()
	if repo.tx == nil || repo.store != l.repo.store {
		return nil, errors.Wrap(errs.InvalidArgument, "transaction is not open on the ledger store")
	}
	return &TokenLedger{
		repo:      repo,
		maxSupply: l.maxSupply,
	}, nil
}

func (l *TokenLedger) MintStats(ctx context.Context, minter common.Address) (stats entity.MintStats, err error) {
	err = l.repo.view(func(s *state) error {
		stats = entity.MintStats{
			MintedByWallet: s.minted[minter],
			TotalSupply:    s.totalSupply,
			MaxSupply:      l.maxSupply,
		}
		return nil
	})
	return stats, err
}

func (l *TokenLedger) Mint(ctx context.Context, minter common.Address, quantity uint64) error {
	return l.repo.update(func(s *state) error {
		if quantity > math.MaxUint64-s.totalSupply {
			return errors.Wrap(errs.OverflowUint64, "total supply")
		}
		if s.totalSupply+quantity > l.maxSupply {
			return errors.Wrapf(errs.Conflict, "minting %d exceeds max supply %d (total supply %d)", quantity, l.maxSupply, s.totalSupply)
		}
		s.totalSupply += quantity
		s.minted[minter] += quantity
		return nil
	})
}

type gatingKey struct {
	token   common.Address
	tokenID [32]byte
}

// GatingLedger is an in-memory ownership table of gating collections.
type GatingLedger struct {
	mu     sync.RWMutex
	owners map[gatingKey]common.Address
}

func NewGatingLedger() *GatingLedger {
	return &GatingLedger{owners: make(map[gatingKey]common.Address)}
}

// SetOwner records owner as the holder of tokenID in token.
func (g *GatingLedger) SetOwner(token common.Address, tokenID *uint256.Int, owner common.Address) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.owners[gatingKey{token: token, tokenID: tokenID.Bytes32()}] = owner
}

func (g *GatingLedger) OwnerOf(ctx context.Context, token common.Address, tokenID *uint256.Int) (common.Address, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	owner, ok := g.owners[gatingKey{token: token, tokenID: tokenID.Bytes32()}]
	if !ok {
		return common.Address{}, errors.Wrapf(errs.NotFound, "token %s #%s", token.Hex(), tokenID.Dec())
	}
	return owner, nil
}

// DelegationRegistry is an in-memory delegate-for-all registry.
type DelegationRegistry struct {
	mu        sync.RWMutex
	delegates map[[2]common.Address]struct{}
}

func NewDelegationRegistry() *DelegationRegistry {
	return &DelegationRegistry{delegates: make(map[[2]common.Address]struct{})}
}

// DelegateForAll records that vault delegated all rights to delegate.
func (d *DelegationRegistry) DelegateForAll(delegate, vault common.Address, value bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := [2]common.Address{delegate, vault}
	if value {
		d.delegates[key] = struct{}{}
		return
	}
	delete(d.delegates, key)
}

func (d *DelegationRegistry) IsDelegatedForAll(ctx context.Context, delegate, vault common.Address) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.delegates[[2]common.Address{delegate, vault}]
	return ok, nil
}

// StaticChain reports a fixed chain id.
type StaticChain uint64

func (c StaticChain) ChainID(ctx context.Context) (uint64, error) {
	return uint64(c), nil
}
