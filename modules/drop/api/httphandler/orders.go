package httphandler

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gaze-network/drop-offerer/common/errs"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/gaze-network/drop-offerer/pkg/decimals"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type itemRequest struct {
	ItemType   string `json:"itemType"`
	Token      string `json:"token"`
	Identifier string `json:"identifier"`
	Amount     string `json:"amount"`
}

type orderRequest struct {
	// Caller is only honored by preview; generate uses the authenticated signer.
	Caller          string        `json:"caller"`
	Fulfiller       string        `json:"fulfiller"`
	MinimumReceived []itemRequest `json:"minimumReceived"`
	MaximumSpent    []itemRequest `json:"maximumSpent"`
	Context         hexutil.Bytes `json:"context"`

	caller common.Address
	order  entity.OrderRequest
}

func (r *orderRequest) Validate() error {
	var errList []error
	r.caller = parseAddress("caller", r.Caller, &errList)
	r.order = entity.OrderRequest{
		Fulfiller:       parseAddress("fulfiller", r.Fulfiller, &errList),
		MinimumReceived: parseItems("minimumReceived", r.MinimumReceived, &errList),
		MaximumSpent:    parseItems("maximumSpent", r.MaximumSpent, &errList),
		Context:         r.Context,
	}
	if r.order.Fulfiller == (common.Address{}) {
		errList = append(errList, errors.New("fulfiller is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

func parseItems(field string, items []itemRequest, errList *[]error) []entity.SpentItem {
	return lo.Map(items, func(item itemRequest, i int) entity.SpentItem {
		prefix := fmt.Sprintf("%s[%d]", field, i)
		return entity.SpentItem{
			ItemType:   parseItemType(prefix+".itemType", item.ItemType, errList),
			Token:      parseAddress(prefix+".token", item.Token, errList),
			Identifier: parseUint256(prefix+".identifier", item.Identifier, errList),
			Amount:     parseUint256(prefix+".amount", item.Amount, errList),
		}
	})
}

type itemResult struct {
	ItemType   string `json:"itemType"`
	Token      string `json:"token"`
	Identifier string `json:"identifier"`
	Amount     string `json:"amount"`
	// AmountDecimal is Amount in whole units of the native currency.
	AmountDecimal string `json:"amountDecimal,omitempty"`
	Recipient     string `json:"recipient,omitempty"`
}

type orderResult struct {
	Offer         []itemResult `json:"offer"`
	Consideration []itemResult `json:"consideration"`
}

type orderResponse = HttpResponse[orderResult]

func mapOrder(order entity.Order) orderResult {
	return orderResult{
		Offer: lo.Map(order.Offer, func(item entity.SpentItem, _ int) itemResult {
			return itemResult{
				ItemType:   item.ItemType.String(),
				Token:      item.Token.Hex(),
				Identifier: item.Identifier.Dec(),
				Amount:     item.Amount.Dec(),
			}
		}),
		Consideration: lo.Map(order.Consideration, func(item entity.ReceivedItem, _ int) itemResult {
			return itemResult{
				ItemType:      item.ItemType.String(),
				Token:         item.Token.Hex(),
				Identifier:    item.Identifier.Dec(),
				Amount:        item.Amount.Dec(),
				AmountDecimal: lo.Ternary(item.ItemType == entity.ItemTypeNative, decimals.FormatUnits(item.Amount, nativeDecimals), ""),
				Recipient:     item.Recipient.Hex(),
			}
		}),
	}
}

func (h *HttpHandler) PreviewOrder(ctx *fiber.Ctx) (err error) {
	var req orderRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.WithPublicMessage(err, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	caller := req.caller
	if signer, ok := signerOf(ctx); ok {
		caller = signer
	}
	order, err := h.engine.PreviewOrder(ctx.UserContext(), caller, req.order)
	if err != nil {
		return publicError(err)
	}

	result := mapOrder(order)
	return errors.WithStack(ctx.JSON(orderResponse{Result: &result}))
}

func (h *HttpHandler) GenerateOrder(ctx *fiber.Ctx) (err error) {
	var req orderRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.WithPublicMessage(err, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	signer, _ := signerOf(ctx)
	order, err := h.engine.GenerateOrder(ctx.UserContext(), signer, req.order)
	if err != nil {
		return publicError(err)
	}

	result := mapOrder(order)
	return errors.WithStack(ctx.JSON(orderResponse{Result: &result}))
}
