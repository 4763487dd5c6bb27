package allowlist

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/extradata"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/validator"
	"github.com/gaze-network/drop-offerer/pkg/merkle"
)

type AllowListValidator struct {
	validator.Validator
}

func New() *AllowListValidator {
	v := validator.New()
	return &AllowListValidator{
		Validator: *v,
	}
}

// Leaf returns keccak256(abi.encode(minter, mintParams)).
func Leaf(minter common.Address, params entity.MintParams) common.Hash {
	return crypto.Keccak256Hash(common.LeftPadBytes(minter[:], 32), extradata.EncodeMintParams(params))
}

// VerifyProof checks that (minter, params) is a leaf of the tree committed to by root.
func (v *AllowListValidator) VerifyProof(root common.Hash, minter common.Address, params entity.MintParams, proof []common.Hash) bool {
	if !v.Valid {
		return false
	}
	leaf := Leaf(minter, params)
	if !merkle.Verify(proof, root, leaf) {
		return v.Fail(entity.InvalidProof(root, leaf))
	}
	return true
}
