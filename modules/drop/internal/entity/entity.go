package entity

import (
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// BasisPointsDenominator is 100% in basis points.
const BasisPointsDenominator = 10_000

type ItemType uint8

const (
	ItemTypeNative ItemType = iota
	ItemTypeERC20
	ItemTypeERC721
	ItemTypeERC1155
)

func (t ItemType) String() string {
	switch t {
	case ItemTypeNative:
		return "NATIVE"
	case ItemTypeERC20:
		return "ERC20"
	case ItemTypeERC721:
		return "ERC721"
	case ItemTypeERC1155:
		return "ERC1155"
	}
	return "UNKNOWN"
}

// SpentItem is an item offered by the drop (the minted units) or spent by the fulfiller.
type SpentItem struct {
	ItemType   ItemType
	Token      common.Address
	Identifier *uint256.Int
	Amount     *uint256.Int
}

// ReceivedItem is a payment obligation: Amount of Token must reach Recipient.
type ReceivedItem struct {
	ItemType   ItemType
	Token      common.Address
	Identifier *uint256.Int
	Amount     *uint256.Int
	Recipient  common.Address
}

type Substandard uint8

const (
	SubstandardPublic Substandard = iota
	SubstandardAllowList
	SubstandardTokenGated
	SubstandardSigned
)

func (s Substandard) String() string {
	switch s {
	case SubstandardPublic:
		return "public"
	case SubstandardAllowList:
		return "allow_list"
	case SubstandardTokenGated:
		return "token_gated"
	case SubstandardSigned:
		return "signed"
	}
	return "unknown"
}

// IsValid reports whether s is one of the known substandards.
func (s Substandard) IsValid() bool {
	return s <= SubstandardSigned
}

// PublicDrop is the configuration of the open public sale.
type PublicDrop struct {
	MintPrice                *uint256.Int
	PaymentToken             common.Address // zero address means native currency
	StartTime                uint64
	EndTime                  uint64
	MaxTotalMintableByWallet uint64
	FeeBps                   uint16
	RestrictFeeRecipients    bool
}

// MintParams are the per-stage terms carried inside allow-list and signed mint
// requests. Numeric fields are full 256-bit words so that hashing reproduces the
// exact encoding the signer or tree builder committed to.
type MintParams struct {
	MintPrice                *uint256.Int
	PaymentToken             common.Address
	MaxTotalMintableByWallet *uint256.Int
	StartTime                *uint256.Int
	EndTime                  *uint256.Int
	DropStageIndex           *uint256.Int
	MaxTokenSupplyForStage   *uint256.Int
	FeeBps                   *uint256.Int
	RestrictFeeRecipients    bool
}

// TokenGatedDropStage is the stage configured for holders of an allowed NFT collection.
type TokenGatedDropStage struct {
	MintPrice                   *uint256.Int
	PaymentToken                common.Address
	MaxMintablePerRedeemedToken uint64
	MaxTotalMintableByWallet    uint64
	StartTime                   uint64
	EndTime                     uint64
	DropStageIndex              uint64
	MaxTokenSupplyForStage      uint64
	FeeBps                      uint16
	RestrictFeeRecipients       bool
}

// TokenGatedMintParams is the decoded token-gated payload.
type TokenGatedMintParams struct {
	AllowedNftToken    common.Address
	AllowedNftTokenIDs []*uint256.Int
	Amounts            []*uint256.Int
}

type PaymentTokenPrice struct {
	PaymentToken common.Address
	MinMintPrice *uint256.Int
}

// SignedMintValidationParams bounds what a registered signer may authorize.
type SignedMintValidationParams struct {
	MinMintPrices               []PaymentTokenPrice
	MaxMaxTotalMintableByWallet uint64
	MinStartTime                uint64
	MaxEndTime                  uint64
	MaxMaxTokenSupplyForStage   uint64
	MinFeeBps                   uint16
	MaxFeeBps                   uint16
}

// MinMintPrice returns the minimum price configured for token.
func (p SignedMintValidationParams) MinMintPrice(token common.Address) (*uint256.Int, bool) {
	for _, price := range p.MinMintPrices {
		if price.PaymentToken == token {
			return price.MinMintPrice, true
		}
	}
	return nil, false
}

type CreatorPayout struct {
	PayoutAddress common.Address
	BasisPoints   uint16
}

// Redemption is a staged increment of a gating token's redeemed counter.
type Redemption struct {
	Token    common.Address
	TokenID  *uint256.Int
	Redeemed uint64 // cumulative, including this redemption
}

// MintStats is the token ledger view of a minter.
type MintStats struct {
	MintedByWallet uint64
	TotalSupply    uint64
	MaxSupply      uint64
}

// Capability gates configuration updates to the owner or the drop itself.
type Capability struct {
	Owner common.Address
	Self  common.Address
}

// Allows reports whether caller may update the configuration. The zero address never may.
func (c Capability) Allows(caller common.Address) bool {
	if caller == (common.Address{}) {
		return false
	}
	return caller == c.Owner || caller == c.Self
}

type EventKind string

const (
	EventKindPublicDropUpdated          EventKind = "PublicDropUpdated"
	EventKindAllowListUpdated           EventKind = "AllowListUpdated"
	EventKindCreatorPayoutsUpdated      EventKind = "CreatorPayoutsUpdated"
	EventKindAllowedFeeRecipientUpdated EventKind = "AllowedFeeRecipientUpdated"
	EventKindPayerUpdated               EventKind = "PayerUpdated"
	EventKindSignedMintValidationParams EventKind = "SignedMintValidationParamsUpdated"
	EventKindTokenGatedDropStageUpdated EventKind = "TokenGatedDropStageUpdated"
	EventKindOwnershipTransferred       EventKind = "OwnershipTransferred"
	EventKindMint                       EventKind = "DropMint"
)

// Event is an append-only change notification.
type Event struct {
	Seq       uint64
	Kind      EventKind
	Payload   json.RawMessage
	CreatedAt time.Time
}

// MintEvent is the payload of [EventKindMint].
type MintEvent struct {
	Minter         common.Address `json:"minter"`
	FeeRecipient   common.Address `json:"feeRecipient"`
	Payer          common.Address `json:"payer"`
	Quantity       string         `json:"quantity"`
	UnitMintPrice  string         `json:"unitMintPrice"`
	PaymentToken   common.Address `json:"paymentToken"`
	FeeBps         uint16         `json:"feeBps"`
	DropStageIndex uint64         `json:"dropStageIndex"`
	Substandard    string         `json:"substandard"`
}
