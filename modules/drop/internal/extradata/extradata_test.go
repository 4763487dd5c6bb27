package extradata

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/common/errs"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	self         = common.HexToAddress("0x00000000000000000000000000000000000d0d0d")
	feeRecipient = common.HexToAddress("0x000000000000000000000000000000000000fee1")
	minter       = common.HexToAddress("0x0000000000000000000000000000000000001111")
)

func selfItem(amount uint64) []entity.SpentItem {
	return []entity.SpentItem{{
		ItemType:   entity.ItemTypeERC1155,
		Token:      self,
		Identifier: uint256.NewInt(0),
		Amount:     uint256.NewInt(amount),
	}}
}

func testMintParams() entity.MintParams {
	return entity.MintParams{
		MintPrice:                uint256.NewInt(1_000_000_000_000_000),
		PaymentToken:             common.Address{},
		MaxTotalMintableByWallet: uint256.NewInt(5),
		StartTime:                uint256.NewInt(1_700_000_000),
		EndTime:                  uint256.NewInt(1_800_000_000),
		DropStageIndex:           uint256.NewInt(1),
		MaxTokenSupplyForStage:   uint256.NewInt(1000),
		FeeBps:                   uint256.NewInt(500),
		RestrictFeeRecipients:    true,
	}
}

func TestDecode(t *testing.T) {
	t.Run("public", func(t *testing.T) {
		req, err := Decode(self, selfItem(3), EncodePublic(feeRecipient, minter))
		require.NoError(t, err)
		assert.Equal(t, entity.SubstandardPublic, req.Substandard)
		assert.Equal(t, feeRecipient, req.FeeRecipient)
		assert.Equal(t, minter, req.Minter)
		assert.Equal(t, []byte{0}, req.Payload)
		assert.Equal(t, uint64(3), req.Quantity.Uint64())
	})

	valid := EncodePublic(feeRecipient, minter)
	withByte := func(i int, b byte) []byte {
		out := append([]byte{}, valid...)
		out[i] = b
		return out
	}

	testcases := []struct {
		name     string
		items    []entity.SpentItem
		context  []byte
		expected errs.ErrorKind
	}{
		{"no_items", nil, valid, entity.ErrMissingSelfItem},
		{"two_items", append(selfItem(1), selfItem(1)...), valid, entity.ErrMissingSelfItem},
		{"zero_amount", selfItem(0), valid, entity.ErrMissingSelfItem},
		{"foreign_token", []entity.SpentItem{{Token: minter, Amount: uint256.NewInt(1)}}, valid, entity.ErrMissingSelfItem},
		{"nil_amount", []entity.SpentItem{{Token: self}}, valid, entity.ErrMissingSelfItem},
		{"bad_version", selfItem(1), withByte(0, 1), entity.ErrUnsupportedVersion},
		{"bad_substandard", selfItem(1), withByte(1, 4), entity.ErrUnsupportedSubstandard},
		{"header_only", selfItem(1), valid[:HeaderLength], entity.ErrPayloadTooShort},
		{"empty", selfItem(1), nil, entity.ErrPayloadTooShort},

		// priority when several checks fail
		{"missing_item_beats_version", nil, withByte(0, 9), entity.ErrMissingSelfItem},
		{"version_beats_substandard", selfItem(1), append([]byte{1, 9}, valid[2:]...), entity.ErrUnsupportedVersion},
		{"version_beats_length", selfItem(1), []byte{1, 9}, entity.ErrUnsupportedVersion},
		{"substandard_beats_length", selfItem(1), []byte{0, 9}, entity.ErrUnsupportedSubstandard},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(self, tc.items, tc.context)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.expected), "expected %s, got %v", tc.expected, err)
		})
	}
}

func TestDecodeLengthFailsForEverySubstandard(t *testing.T) {
	for s := entity.SubstandardPublic; s <= entity.SubstandardSigned; s++ {
		t.Run(s.String(), func(t *testing.T) {
			context := Encode(Header{Substandard: s, FeeRecipient: feeRecipient, Minter: minter}, nil)
			_, err := Decode(self, selfItem(1), context)
			assert.True(t, errors.Is(err, entity.ErrPayloadTooShort))
		})
	}
}

func TestMintParamsRoundTrip(t *testing.T) {
	params := testMintParams()
	encoded := EncodeMintParams(params)
	require.Len(t, encoded, MintParamsLength)

	decoded, err := DecodeMintParams(encoded)
	require.NoError(t, err)
	assert.Equal(t, params, decoded)

	t.Run("dirty_address", func(t *testing.T) {
		dirty := append([]byte{}, encoded...)
		dirty[32] = 1
		_, err := DecodeMintParams(dirty)
		assert.Error(t, err)
	})
	t.Run("bad_bool", func(t *testing.T) {
		dirty := append([]byte{}, encoded...)
		dirty[len(dirty)-1] = 2
		_, err := DecodeMintParams(dirty)
		assert.Error(t, err)
	})
}

func TestAllowListPayload(t *testing.T) {
	params := testMintParams()
	proof := []common.Hash{common.HexToHash("0x01"), common.HexToHash("0x02")}
	context := EncodeAllowList(feeRecipient, minter, params, proof)

	req, err := Decode(self, selfItem(1), context)
	require.NoError(t, err)
	require.Equal(t, entity.SubstandardAllowList, req.Substandard)

	gotParams, gotProof, err := DecodeAllowList(req.Payload)
	require.NoError(t, err)
	assert.Equal(t, params, gotParams)
	assert.Equal(t, proof, gotProof)

	_, _, err = DecodeAllowList(req.Payload[:MintParamsLength-1])
	assert.True(t, errors.Is(err, entity.ErrPayloadTooShort))

	_, _, err = DecodeAllowList(req.Payload[:MintParamsLength+5])
	assert.True(t, errors.Is(err, entity.ErrMalformedPayload))

	_, gotProof, err = DecodeAllowList(req.Payload[:MintParamsLength])
	require.NoError(t, err)
	assert.Empty(t, gotProof)
}

func TestSignedPayload(t *testing.T) {
	params := testMintParams()
	salt := common.HexToHash("0xabcdef")
	for _, sigLen := range []int{64, 65} {
		signature := make([]byte, sigLen)
		signature[0] = 0x42
		context := EncodeSigned(feeRecipient, minter, params, salt, signature)

		req, err := Decode(self, selfItem(1), context)
		require.NoError(t, err)

		gotParams, gotSalt, gotSig, err := DecodeSigned(req.Payload)
		require.NoError(t, err)
		assert.Equal(t, params, gotParams)
		assert.Equal(t, salt, gotSalt)
		assert.Equal(t, signature, gotSig)
	}

	payload := EncodeMintParams(params)
	_, _, _, err := DecodeSigned(payload)
	assert.True(t, errors.Is(err, entity.ErrPayloadTooShort))

	_, _, _, err = DecodeSigned(append(payload, make([]byte, SaltLength+66)...))
	assert.True(t, errors.Is(err, entity.ErrMalformedPayload))
}

func TestTokenGatedPayload(t *testing.T) {
	params := entity.TokenGatedMintParams{
		AllowedNftToken:    common.HexToAddress("0x0000000000000000000000000000000000007777"),
		AllowedNftTokenIDs: []*uint256.Int{uint256.NewInt(1), uint256.NewInt(42)},
		Amounts:            []*uint256.Int{uint256.NewInt(2), uint256.NewInt(1)},
	}
	context, err := EncodeTokenGated(feeRecipient, minter, params)
	require.NoError(t, err)

	req, err := Decode(self, selfItem(3), context)
	require.NoError(t, err)
	require.Equal(t, entity.SubstandardTokenGated, req.Substandard)

	decoded, err := DecodeTokenGated(req.Payload)
	require.NoError(t, err)
	assert.Equal(t, params, decoded)

	_, err = DecodeTokenGated(req.Payload[:64])
	assert.True(t, errors.Is(err, entity.ErrPayloadTooShort))

	_, err = DecodeTokenGated(req.Payload[:100])
	assert.True(t, errors.Is(err, entity.ErrMalformedPayload))
}

func TestEncodeSubstandards(t *testing.T) {
	encoded := EncodeSubstandards([]entity.Substandard{entity.SubstandardPublic, entity.SubstandardAllowList})
	// offset, length, two elements
	require.Len(t, encoded, 4*32)
	assert.Equal(t, uint256.NewInt(32).Bytes32(), [32]byte(encoded[0:32]))
	assert.Equal(t, uint256.NewInt(2).Bytes32(), [32]byte(encoded[32:64]))
	assert.Equal(t, uint256.NewInt(0).Bytes32(), [32]byte(encoded[64:96]))
	assert.Equal(t, uint256.NewInt(1).Bytes32(), [32]byte(encoded[96:128]))
}
