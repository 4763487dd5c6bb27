package entity

import "github.com/ethereum/go-ethereum/common"

type OrderRequest struct {
	Fulfiller       common.Address
	MinimumReceived []SpentItem
	// MaximumSpent is enforced by the settlement caller.
	MaximumSpent []SpentItem
	Context      []byte
}

type Order struct {
	Offer         []SpentItem
	Consideration []ReceivedItem
}

type Schema struct {
	ID uint64
	// Metadata is the ABI encoding of the supported substandards as uint256[].
	Metadata []byte
}

type Metadata struct {
	Name                  string
	Schemas               []Schema
	SupportedSubstandards []Substandard
}
