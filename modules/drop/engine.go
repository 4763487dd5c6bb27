package drop

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/gaze-network/drop-offerer/common/errs"
	"github.com/gaze-network/drop-offerer/modules/drop/datagateway"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/extradata"
	"github.com/gaze-network/drop-offerer/pkg/eip712"
)

const (
	// SchemaID identifies the settlement schema served by Metadata.
	SchemaID = 12
	Version  = "v0.1.0"
)

// Engine authorizes mint requests and computes their payment obligations.
// Evaluations are serialized.
type Engine struct {
	mu sync.Mutex

	store      datagateway.DropDataGateway
	ledger     datagateway.TokenLedger
	gating     datagateway.GatingLedger
	delegation datagateway.DelegationRegistry
	chain      datagateway.ChainReader
	separators *eip712.SeparatorCache

	name                    string
	self                    common.Address
	settlement              common.Address
	enableGatedSubstandards bool
	clock                   func() time.Time
}

type Params struct {
	// Name is returned by Metadata and used as the EIP-712 domain name.
	Name string
	// DomainVersion is the EIP-712 domain version.
	DomainVersion string
	Self          common.Address
	Settlement    common.Address
	// EnableGatedSubstandards enables the token-gated and signed substandards.
	EnableGatedSubstandards bool
	Clock                   func() time.Time
}

type Dependencies struct {
	Store      datagateway.DropDataGateway
	Ledger     datagateway.TokenLedger
	Gating     datagateway.GatingLedger
	Delegation datagateway.DelegationRegistry
	Chain      datagateway.ChainReader
}

func NewEngine(params Params, deps Dependencies) *Engine {
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Engine{
		store:      deps.Store,
		ledger:     deps.Ledger,
		gating:     deps.Gating,
		delegation: deps.Delegation,
		chain:      deps.Chain,
		separators: eip712.NewSeparatorCache(eip712.Domain{
			Name:              params.Name,
			Version:           params.DomainVersion,
			VerifyingContract: params.Self,
		}),
		name:                    params.Name,
		self:                    params.Self,
		settlement:              params.Settlement,
		enableGatedSubstandards: params.EnableGatedSubstandards,
		clock:                   clock,
	}
}

type guardKey struct{}

// enter acquires the evaluation lock. A call made from inside an evaluation
// carries the marker in its context and fails instead of deadlocking.
func (e *Engine) enter(ctx context.Context) (context.Context, func(), error) {
	if owner, ok := ctx.Value(guardKey{}).(*Engine); ok && owner == e {
		return ctx, func() {}, entity.ReentrantCall()
	}
	e.mu.Lock()
	return context.WithValue(ctx, guardKey{}, e), e.mu.Unlock, nil
}

// SupportedSubstandards returns the substandards this engine accepts, in ascending order.
func (e *Engine) SupportedSubstandards() []entity.Substandard {
	if e.enableGatedSubstandards {
		return []entity.Substandard{
			entity.SubstandardPublic,
			entity.SubstandardAllowList,
			entity.SubstandardTokenGated,
			entity.SubstandardSigned,
		}
	}
	return []entity.Substandard{entity.SubstandardPublic, entity.SubstandardAllowList}
}

func (e *Engine) substandardEnabled(s entity.Substandard) bool {
	switch s {
	case entity.SubstandardPublic, entity.SubstandardAllowList:
		return true
	case entity.SubstandardTokenGated, entity.SubstandardSigned:
		return e.enableGatedSubstandards
	}
	return false
}

type (
	Schema   = entity.Schema
	Metadata = entity.Metadata
)

func (e *Engine) Metadata() Metadata {
	substandards := e.SupportedSubstandards()
	return Metadata{
		Name: e.name,
		Schemas: []Schema{{
			ID:       SchemaID,
			Metadata: extradata.EncodeSubstandards(substandards),
		}},
		SupportedSubstandards: substandards,
	}
}

// Self returns the address of the drop.
func (e *Engine) Self() common.Address {
	return e.self
}

var requestDigestPrefix = []byte("drop-offerer/signed-request")

// ConsumeRequestSignature marks the body signed by signer as used. A body
// already consumed by the same signer fails with errs.Conflict.
func (e *Engine) ConsumeRequestSignature(ctx context.Context, signer common.Address, body []byte) error {
	digest := gethcrypto.Keccak256Hash(requestDigestPrefix, signer.Bytes(), body)
	if err := e.store.AddUsedDigest(ctx, digest); err != nil {
		if errors.Is(err, errs.Conflict) {
			return errors.Wrapf(errs.Conflict, "request %s already used", digest.Hex())
		}
		return errors.Wrap(err, "failed to consume request signature")
	}
	return nil
}

// Store returns the configuration store, for read-only access.
func (e *Engine) Store() datagateway.DropReaderDataGateway {
	return e.store
}
