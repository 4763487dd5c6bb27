package memory

import (
	"maps"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/gaze-network/drop-offerer/pkg/enumerable"
)

type redemptionKey struct {
	token   common.Address
	tokenID [32]byte
}

// state is a full snapshot of the drop configuration and counters.
type state struct {
	owner          common.Address
	publicDrop     entity.PublicDrop
	allowListRoot  common.Hash
	creatorPayouts []entity.CreatorPayout

	feeRecipients *enumerable.Set[common.Address]
	payers        *enumerable.Set[common.Address]

	signers      *enumerable.Set[common.Address]
	signerParams map[common.Address]entity.SignedMintValidationParams

	gatedTokens *enumerable.Set[common.Address]
	gatedStages map[common.Address]entity.TokenGatedDropStage
	redeemed    map[redemptionKey]uint64

	usedDigests map[common.Hash]struct{}
	events      []entity.Event

	totalSupply uint64
	minted      map[common.Address]uint64
}

func newState() *state {
	return &state{
		feeRecipients: enumerable.NewSet[common.Address](),
		payers:        enumerable.NewSet[common.Address](),
		signers:       enumerable.NewSet[common.Address](),
		signerParams:  make(map[common.Address]entity.SignedMintValidationParams),
		gatedTokens:   enumerable.NewSet[common.Address](),
		gatedStages:   make(map[common.Address]entity.TokenGatedDropStage),
		redeemed:      make(map[redemptionKey]uint64),
		usedDigests:   make(map[common.Hash]struct{}),
		minted:        make(map[common.Address]uint64),
	}
}

func (s *state) clone() *state {
	return &state{
		owner:          s.owner,
		publicDrop:     s.publicDrop,
		allowListRoot:  s.allowListRoot,
		creatorPayouts: slices.Clone(s.creatorPayouts),
		feeRecipients:  s.feeRecipients.Clone(),
		payers:         s.payers.Clone(),
		signers:        s.signers.Clone(),
		signerParams:   maps.Clone(s.signerParams),
		gatedTokens:    s.gatedTokens.Clone(),
		gatedStages:    maps.Clone(s.gatedStages),
		redeemed:       maps.Clone(s.redeemed),
		usedDigests:    maps.Clone(s.usedDigests),
		events:         s.events[:len(s.events):len(s.events)],
		totalSupply:    s.totalSupply,
		minted:         maps.Clone(s.minted),
	}
}
