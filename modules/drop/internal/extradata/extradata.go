// Package extradata decodes and encodes the opaque context bytes attached to a
// mint order:
//
//	[version:1][substandard:1][feeRecipient:20][minter:20][payload...]
package extradata

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/holiman/uint256"
)

const (
	// Version is the only supported encoding version.
	Version uint8 = 0

	// HeaderLength is the length of the fixed header preceding the payload.
	HeaderLength = 42

	MintParamsLength = 9 * 32
	SaltLength       = 32
)

// Request is a decoded mint request.
type Request struct {
	Substandard  entity.Substandard
	FeeRecipient common.Address
	Minter       common.Address
	Payload      []byte
	Quantity     *uint256.Int
}

type decodeChecks struct {
	hasSelfItem        bool
	versionSupported   bool
	substandardValid   bool
	payloadLengthValid bool
}

// resolveDecodeFailure returns the highest priority failure among the checks,
// or nil if every check passed.
func resolveDecodeFailure(c decodeChecks, items int, version, substandard uint8, length int) error {
	switch {
	case !c.hasSelfItem:
		return entity.MissingSelfItem(items)
	case !c.versionSupported:
		return entity.UnsupportedVersion(version)
	case !c.substandardValid:
		return entity.UnsupportedSubstandard(substandard)
	case !c.payloadLengthValid:
		return entity.PayloadTooShort(length, HeaderLength+1)
	}
	return nil
}

// Decode parses context into a request. minimumReceived must hold exactly one
// item issued by self with a non-zero amount, whose amount becomes the
// requested quantity. Bytes beyond the end of context read as zero, so a short
// context is reported as a length failure rather than a version failure.
func Decode(self common.Address, minimumReceived []entity.SpentItem, context []byte) (*Request, error) {
	version := byteAt(context, 0)
	substandard := byteAt(context, 1)

	checks := decodeChecks{
		hasSelfItem:        len(minimumReceived) == 1 && minimumReceived[0].Token == self && minimumReceived[0].Amount != nil && !minimumReceived[0].Amount.IsZero(),
		versionSupported:   version == Version,
		substandardValid:   entity.Substandard(substandard).IsValid(),
		payloadLengthValid: len(context) > HeaderLength,
	}
	if err := resolveDecodeFailure(checks, len(minimumReceived), version, substandard, len(context)); err != nil {
		return nil, err
	}

	return &Request{
		Substandard:  entity.Substandard(substandard),
		FeeRecipient: common.BytesToAddress(context[2:22]),
		Minter:       common.BytesToAddress(context[22:42]),
		Payload:      context[HeaderLength:],
		Quantity:     new(uint256.Int).Set(minimumReceived[0].Amount),
	}, nil
}

func byteAt(b []byte, i int) uint8 {
	if i < len(b) {
		return b[i]
	}
	return 0
}

// Header is the fixed part of an encoded request.
type Header struct {
	Substandard  entity.Substandard
	FeeRecipient common.Address
	Minter       common.Address
}

// Encode returns the context bytes for header followed by payload.
func Encode(h Header, payload []byte) []byte {
	out := make([]byte, 0, HeaderLength+len(payload))
	out = append(out, Version, uint8(h.Substandard))
	out = append(out, h.FeeRecipient[:]...)
	out = append(out, h.Minter[:]...)
	return append(out, payload...)
}

// EncodePublic returns a public mint request. The public payload is ignored
// by the decoder but must be present.
func EncodePublic(feeRecipient, minter common.Address) []byte {
	return Encode(Header{
		Substandard:  entity.SubstandardPublic,
		FeeRecipient: feeRecipient,
		Minter:       minter,
	}, []byte{0})
}
