package datagateway

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/holiman/uint256"
)

type DropDataGateway interface {
	DropReaderDataGateway
	DropWriterDataGateway

	// BeginDropTx returns a new DropDataGateway with transaction enabled. All write operations performed in this datagateway must be committed to persist changes.
	BeginDropTx(ctx context.Context) (DropDataGatewayWithTx, error)
}

type DropDataGatewayWithTx interface {
	DropDataGateway
	Tx
}

type DropReaderDataGateway interface {
	GetOwner(ctx context.Context) (common.Address, error)
	// GetPublicDrop returns the zero PublicDrop if it was never configured.
	GetPublicDrop(ctx context.Context) (entity.PublicDrop, error)
	GetAllowListMerkleRoot(ctx context.Context) (common.Hash, error)
	GetCreatorPayouts(ctx context.Context) ([]entity.CreatorPayout, error)

	GetAllowedFeeRecipients(ctx context.Context) ([]common.Address, error)
	IsAllowedFeeRecipient(ctx context.Context, feeRecipient common.Address) (bool, error)
	GetAllowedPayers(ctx context.Context) ([]common.Address, error)
	IsAllowedPayer(ctx context.Context, payer common.Address) (bool, error)

	GetSigners(ctx context.Context) ([]common.Address, error)
	// GetSignedMintValidationParams returns errs.NotFound if signer is not registered.
	GetSignedMintValidationParams(ctx context.Context, signer common.Address) (entity.SignedMintValidationParams, error)

	GetTokenGatedAllowedTokens(ctx context.Context) ([]common.Address, error)
	// GetTokenGatedDropStage returns errs.NotFound if no stage is configured for allowedNftToken.
	GetTokenGatedDropStage(ctx context.Context, allowedNftToken common.Address) (entity.TokenGatedDropStage, error)
	GetTokenGatedRedeemed(ctx context.Context, allowedNftToken common.Address, tokenID *uint256.Int) (uint64, error)

	IsDigestUsed(ctx context.Context, digest common.Hash) (bool, error)

	// GetEvents returns up to limit events with Seq >= fromSeq in ascending order.
	GetEvents(ctx context.Context, fromSeq uint64, limit int) ([]entity.Event, error)
}

type DropWriterDataGateway interface {
	SetOwner(ctx context.Context, owner common.Address) error
	SetPublicDrop(ctx context.Context, publicDrop entity.PublicDrop) error
	SetAllowListMerkleRoot(ctx context.Context, root common.Hash) error
	SetCreatorPayouts(ctx context.Context, payouts []entity.CreatorPayout) error

	// Add* returns errs.Conflict if the entry already exists, Remove* returns errs.NotFound if it does not.
	AddAllowedFeeRecipient(ctx context.Context, feeRecipient common.Address) error
	RemoveAllowedFeeRecipient(ctx context.Context, feeRecipient common.Address) error
	AddAllowedPayer(ctx context.Context, payer common.Address) error
	RemoveAllowedPayer(ctx context.Context, payer common.Address) error

	SetSignedMintValidationParams(ctx context.Context, signer common.Address, params entity.SignedMintValidationParams) error
	RemoveSigner(ctx context.Context, signer common.Address) error

	SetTokenGatedDropStage(ctx context.Context, allowedNftToken common.Address, stage entity.TokenGatedDropStage) error
	RemoveTokenGatedDropStage(ctx context.Context, allowedNftToken common.Address) error
	SetTokenGatedRedeemed(ctx context.Context, redemption entity.Redemption) error

	// AddUsedDigest returns errs.Conflict if digest was already consumed.
	AddUsedDigest(ctx context.Context, digest common.Hash) error

	CreateEvent(ctx context.Context, kind entity.EventKind, payload []byte) (entity.Event, error)
}
