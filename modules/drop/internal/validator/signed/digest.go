package signed

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/gaze-network/drop-offerer/pkg/eip712"
)

const (
	mintParamsType = "MintParams(uint256 mintPrice,address paymentToken,uint256 maxTotalMintableByWallet,uint256 startTime,uint256 endTime,uint256 dropStageIndex,uint256 maxTokenSupplyForStage,uint256 feeBps,bool restrictFeeRecipients)"
	signedMintType = "SignedMint(address minter,address feeRecipient,MintParams mintParams,uint256 salt)"
)

var (
	MintParamsTypeHash = eip712.TypeHash(mintParamsType)
	SignedMintTypeHash = eip712.TypeHash(signedMintType + mintParamsType)
)

func hashMintParams(p entity.MintParams) common.Hash {
	return eip712.HashStruct(MintParamsTypeHash,
		eip712.Uint256(p.MintPrice),
		eip712.Address(p.PaymentToken),
		eip712.Uint256(p.MaxTotalMintableByWallet),
		eip712.Uint256(p.StartTime),
		eip712.Uint256(p.EndTime),
		eip712.Uint256(p.DropStageIndex),
		eip712.Uint256(p.MaxTokenSupplyForStage),
		eip712.Uint256(p.FeeBps),
		eip712.Bool(p.RestrictFeeRecipients),
	)
}

// Digest returns the EIP-712 digest a signer signs to authorize a mint.
func Digest(domainSeparator common.Hash, minter, feeRecipient common.Address, params entity.MintParams, salt common.Hash) common.Hash {
	structHash := eip712.HashStruct(SignedMintTypeHash,
		eip712.Address(minter),
		eip712.Address(feeRecipient),
		hashMintParams(params),
		salt,
	)
	return eip712.Digest(domainSeparator, structHash)
}
