package httphandler

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gaze-network/drop-offerer/common/errs"
	"github.com/gaze-network/drop-offerer/modules/drop/datagateway"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/gaze-network/drop-offerer/pkg/decimals"
	"github.com/holiman/uint256"
)

// Engine is the drop engine served over HTTP.
type Engine interface {
	PreviewOrder(ctx context.Context, caller common.Address, req entity.OrderRequest) (entity.Order, error)
	GenerateOrder(ctx context.Context, caller common.Address, req entity.OrderRequest) (entity.Order, error)
	Metadata() entity.Metadata
	Store() datagateway.DropReaderDataGateway
	ConsumeRequestSignature(ctx context.Context, signer common.Address, body []byte) error

	TransferOwnership(ctx context.Context, caller, newOwner common.Address) error
	UpdatePublicDrop(ctx context.Context, caller common.Address, publicDrop entity.PublicDrop) error
	UpdateAllowList(ctx context.Context, caller common.Address, merkleRoot common.Hash) error
	UpdateCreatorPayouts(ctx context.Context, caller common.Address, payouts []entity.CreatorPayout) error
	UpdateAllowedFeeRecipient(ctx context.Context, caller, feeRecipient common.Address, allowed bool) error
	UpdatePayer(ctx context.Context, caller, payer common.Address, allowed bool) error
	UpdateSignedMintValidationParams(ctx context.Context, caller, signer common.Address, params entity.SignedMintValidationParams) error
	RemoveSigner(ctx context.Context, caller, signer common.Address) error
	UpdateTokenGatedDrop(ctx context.Context, caller, allowedNftToken common.Address, stage entity.TokenGatedDropStage) error
	RemoveTokenGatedDrop(ctx context.Context, caller, allowedNftToken common.Address) error
}

type HttpHandler struct {
	engine Engine
	clock  func() int64
}

func New(engine Engine, clock func() int64) *HttpHandler {
	return &HttpHandler{
		engine: engine,
		clock:  clock,
	}
}

type HttpResponse[T any] struct {
	Error  *string `json:"error"`
	Result *T      `json:"result,omitempty"`
}

// publicError exposes domain failures to the client with their kind and details.
func publicError(err error) error {
	if e := new(entity.Error); errors.As(err, &e) {
		return errs.WithPublicDetails(err, string(e.Kind), e.Details)
	}
	return errors.WithStack(err)
}

// nativeToken is the payment token address denoting the native currency, which has nativeDecimals decimals.
var nativeToken common.Address

const nativeDecimals = 18

func parseAddress(field, s string, errList *[]error) common.Address {
	if s == "" {
		return common.Address{}
	}
	if !common.IsHexAddress(s) {
		*errList = append(*errList, errors.Errorf("%s '%s' is not a valid address", field, s))
		return common.Address{}
	}
	return common.HexToAddress(s)
}

func parseUint256(field, s string, errList *[]error) *uint256.Int {
	if s == "" {
		return new(uint256.Int)
	}
	v, err := decimals.ParseUnits(strings.TrimSpace(s), 0)
	if err != nil {
		*errList = append(*errList, errors.Errorf("%s '%s' is not a valid uint256", field, s))
		return new(uint256.Int)
	}
	return v
}

func parseItemType(field, s string, errList *[]error) entity.ItemType {
	for _, t := range []entity.ItemType{entity.ItemTypeNative, entity.ItemTypeERC20, entity.ItemTypeERC721, entity.ItemTypeERC1155} {
		if strings.EqualFold(s, t.String()) {
			return t
		}
	}
	*errList = append(*errList, errors.Errorf("%s '%s' is not a valid item type", field, s))
	return 0
}

func parseHash(s string) (common.Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return common.Hash{}, errors.WithStack(err)
	}
	if len(b) != common.HashLength {
		return common.Hash{}, errors.Errorf("expected %d bytes, got %d", common.HashLength, len(b))
	}
	return common.BytesToHash(b), nil
}
