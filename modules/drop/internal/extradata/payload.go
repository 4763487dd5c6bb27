package extradata

import (
	"bytes"
	"math/big"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/holiman/uint256"
	"github.com/samber/lo"
)

var (
	uint256Type      = utils.Must(abi.NewType("uint256", "", nil))
	uint256ArrayType = utils.Must(abi.NewType("uint256[]", "", nil))
	addressType      = utils.Must(abi.NewType("address", "", nil))
	boolType         = utils.Must(abi.NewType("bool", "", nil))

	mintParamsArguments = abi.Arguments{
		{Name: "mintPrice", Type: uint256Type},
		{Name: "paymentToken", Type: addressType},
		{Name: "maxTotalMintableByWallet", Type: uint256Type},
		{Name: "startTime", Type: uint256Type},
		{Name: "endTime", Type: uint256Type},
		{Name: "dropStageIndex", Type: uint256Type},
		{Name: "maxTokenSupplyForStage", Type: uint256Type},
		{Name: "feeBps", Type: uint256Type},
		{Name: "restrictFeeRecipients", Type: boolType},
	}

	tokenGatedArguments = abi.Arguments{
		{Name: "allowedNftToken", Type: addressType},
		{Name: "allowedNftTokenIds", Type: uint256ArrayType},
		{Name: "amounts", Type: uint256ArrayType},
	}

	// SupportedSubstandardsArguments encodes the metadata schema payload.
	SupportedSubstandardsArguments = abi.Arguments{
		{Name: "substandards", Type: uint256ArrayType},
	}
)

// EncodeMintParams returns the 288-byte ABI encoding of p.
func EncodeMintParams(p entity.MintParams) []byte {
	return utils.Must(mintParamsArguments.Pack(
		toBig(p.MintPrice),
		p.PaymentToken,
		toBig(p.MaxTotalMintableByWallet),
		toBig(p.StartTime),
		toBig(p.EndTime),
		toBig(p.DropStageIndex),
		toBig(p.MaxTokenSupplyForStage),
		toBig(p.FeeBps),
		p.RestrictFeeRecipients,
	))
}

// DecodeMintParams decodes exactly [MintParamsLength] bytes.
func DecodeMintParams(data []byte) (entity.MintParams, error) {
	if len(data) != MintParamsLength {
		return entity.MintParams{}, errors.Errorf("mint params must be %d bytes, got %d", MintParamsLength, len(data))
	}
	// address word must be left padded with zeros
	if !isZero(data[32:44]) {
		return entity.MintParams{}, errors.New("dirty address padding")
	}
	values, err := mintParamsArguments.Unpack(data)
	if err != nil {
		return entity.MintParams{}, errors.Wrap(err, "unpack mint params")
	}
	return entity.MintParams{
		MintPrice:                fromBig(values[0].(*big.Int)),
		PaymentToken:             values[1].(common.Address),
		MaxTotalMintableByWallet: fromBig(values[2].(*big.Int)),
		StartTime:                fromBig(values[3].(*big.Int)),
		EndTime:                  fromBig(values[4].(*big.Int)),
		DropStageIndex:           fromBig(values[5].(*big.Int)),
		MaxTokenSupplyForStage:   fromBig(values[6].(*big.Int)),
		FeeBps:                   fromBig(values[7].(*big.Int)),
		RestrictFeeRecipients:    values[8].(bool),
	}, nil
}

// DecodeAllowList decodes an allow-list payload: mint params followed by the
// proof as concatenated 32-byte siblings.
func DecodeAllowList(payload []byte) (entity.MintParams, []common.Hash, error) {
	if len(payload) < MintParamsLength {
		return entity.MintParams{}, nil, entity.PayloadTooShort(len(payload), MintParamsLength)
	}
	rest := payload[MintParamsLength:]
	if len(rest)%common.HashLength != 0 {
		return entity.MintParams{}, nil, entity.MalformedPayload(entity.SubstandardAllowList, "proof length is not a multiple of 32")
	}
	params, err := DecodeMintParams(payload[:MintParamsLength])
	if err != nil {
		return entity.MintParams{}, nil, entity.MalformedPayload(entity.SubstandardAllowList, err.Error())
	}
	proof := make([]common.Hash, 0, len(rest)/common.HashLength)
	for i := 0; i < len(rest); i += common.HashLength {
		proof = append(proof, common.BytesToHash(rest[i:i+common.HashLength]))
	}
	return params, proof, nil
}

func EncodeAllowList(feeRecipient, minter common.Address, params entity.MintParams, proof []common.Hash) []byte {
	payload := EncodeMintParams(params)
	for _, sibling := range proof {
		payload = append(payload, sibling[:]...)
	}
	return Encode(Header{
		Substandard:  entity.SubstandardAllowList,
		FeeRecipient: feeRecipient,
		Minter:       minter,
	}, payload)
}

// DecodeSigned decodes a signed payload: mint params, salt and a 64 or 65 byte signature.
func DecodeSigned(payload []byte) (entity.MintParams, common.Hash, []byte, error) {
	const minimum = MintParamsLength + SaltLength + 64
	if len(payload) < minimum {
		return entity.MintParams{}, common.Hash{}, nil, entity.PayloadTooShort(len(payload), minimum)
	}
	if len(payload) > minimum+1 {
		return entity.MintParams{}, common.Hash{}, nil, entity.MalformedPayload(entity.SubstandardSigned, "signature must be 64 or 65 bytes")
	}
	params, err := DecodeMintParams(payload[:MintParamsLength])
	if err != nil {
		return entity.MintParams{}, common.Hash{}, nil, entity.MalformedPayload(entity.SubstandardSigned, err.Error())
	}
	salt := common.BytesToHash(payload[MintParamsLength : MintParamsLength+SaltLength])
	signature := bytes.Clone(payload[MintParamsLength+SaltLength:])
	return params, salt, signature, nil
}

func EncodeSigned(feeRecipient, minter common.Address, params entity.MintParams, salt common.Hash, signature []byte) []byte {
	payload := EncodeMintParams(params)
	payload = append(payload, salt[:]...)
	payload = append(payload, signature...)
	return Encode(Header{
		Substandard:  entity.SubstandardSigned,
		FeeRecipient: feeRecipient,
		Minter:       minter,
	}, payload)
}

// DecodeTokenGated decodes abi.encode(address, uint256[], uint256[]).
func DecodeTokenGated(payload []byte) (entity.TokenGatedMintParams, error) {
	const minimum = 3 * 32
	if len(payload) < minimum {
		return entity.TokenGatedMintParams{}, entity.PayloadTooShort(len(payload), minimum)
	}
	if !isZero(payload[:12]) {
		return entity.TokenGatedMintParams{}, entity.MalformedPayload(entity.SubstandardTokenGated, "dirty address padding")
	}
	values, err := tokenGatedArguments.Unpack(payload)
	if err != nil {
		return entity.TokenGatedMintParams{}, entity.MalformedPayload(entity.SubstandardTokenGated, err.Error())
	}
	return entity.TokenGatedMintParams{
		AllowedNftToken:    values[0].(common.Address),
		AllowedNftTokenIDs: lo.Map(values[1].([]*big.Int), func(v *big.Int, _ int) *uint256.Int { return fromBig(v) }),
		Amounts:            lo.Map(values[2].([]*big.Int), func(v *big.Int, _ int) *uint256.Int { return fromBig(v) }),
	}, nil
}

func EncodeTokenGated(feeRecipient, minter common.Address, params entity.TokenGatedMintParams) ([]byte, error) {
	payload, err := tokenGatedArguments.Pack(
		params.AllowedNftToken,
		lo.Map(params.AllowedNftTokenIDs, func(v *uint256.Int, _ int) *big.Int { return toBig(v) }),
		lo.Map(params.Amounts, func(v *uint256.Int, _ int) *big.Int { return toBig(v) }),
	)
	if err != nil {
		return nil, errors.Wrap(err, "pack token gated params")
	}
	return Encode(Header{
		Substandard:  entity.SubstandardTokenGated,
		FeeRecipient: feeRecipient,
		Minter:       minter,
	}, payload), nil
}

// EncodeSubstandards returns abi.encode(uint256[]) of the given substandards.
func EncodeSubstandards(substandards []entity.Substandard) []byte {
	return utils.Must(SupportedSubstandardsArguments.Pack(
		lo.Map(substandards, func(s entity.Substandard, _ int) *big.Int { return big.NewInt(int64(s)) }),
	))
}

func toBig(v *uint256.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v.ToBig()
}

func fromBig(v *big.Int) *uint256.Int {
	return uint256.MustFromBig(v)
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
