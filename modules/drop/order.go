package drop

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/modules/drop/datagateway"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/extradata"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/payment"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/validator"
	"github.com/gaze-network/drop-offerer/pkg/logger"
	"github.com/gaze-network/drop-offerer/pkg/logger/slogx"
	"github.com/holiman/uint256"
)

type (
	OrderRequest = entity.OrderRequest
	Order        = entity.Order
)

// mintPlan is an approved mint request and the effects committing it requires.
type mintPlan struct {
	request *extradata.Request
	minter  common.Address
	payer   common.Address
	terms   entity.MintParams

	digest      *common.Hash
	redemptions []entity.Redemption

	order Order
}

// PreviewOrder evaluates a request without mutating any state and returns
// the order a commit would produce.
func (e *Engine) PreviewOrder(ctx context.Context, caller common.Address, req OrderRequest) (Order, error) {
	ctx, leave, err := e.enter(ctx)
	if err != nil {
		return Order{}, err
	}
	defer leave()

	ctx = logger.WithContext(ctx, slogx.Address("caller", caller), slogx.Address("fulfiller", req.Fulfiller))
	plan, err := e.evaluate(ctx, e.store, e.ledger, req)
	if err != nil {
		logger.DebugContext(ctx, "order preview rejected", slogx.Error(err))
		return Order{}, err
	}
	return plan.order, nil
}

// GenerateOrder evaluates a request from the settlement caller and applies its effects atomically.
func (e *Engine) GenerateOrder(ctx context.Context, caller common.Address, req OrderRequest) (Order, error) {
	if caller != e.settlement {
		return Order{}, entity.InvalidCaller(caller)
	}
	ctx, leave, err := e.enter(ctx)
	if err != nil {
		return Order{}, err
	}
	defer leave()

	ctx = logger.WithContext(ctx, slogx.Address("fulfiller", req.Fulfiller))

	tx, err := e.store.BeginDropTx(ctx)
	if err != nil {
		return Order{}, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil {
			logger.WarnContext(ctx, "failed to rollback transaction", slogx.Error(err))
		}
	}()

	ledger, bound, err := e.ledgerFor(tx)
	if err != nil {
		return Order{}, err
	}
	plan, err := e.evaluate(ctx, tx, ledger, req)
	if err != nil {
		logger.DebugContext(ctx, "order rejected", slogx.Error(err))
		return Order{}, err
	}
	if err := e.apply(ctx, tx, ledger, bound, plan); err != nil {
		return Order{}, err
	}

	logger.InfoContext(ctx, "mint committed",
		slogx.Stringer("substandard", plan.request.Substandard),
		slogx.Address("minter", plan.minter),
		slogx.Uint256("quantity", plan.request.Quantity),
	)
	return plan.order, nil
}

// ledgerFor binds the token ledger to tx when it supports it. An unbound
// ledger is minted last, right before the commit.
func (e *Engine) ledgerFor(tx datagateway.DropDataGatewayWithTx) (ledger datagateway.TokenLedger, bound bool, err error) {
	txLedger, ok := e.ledger.(datagateway.TxTokenLedger)
	if !ok {
		return e.ledger, false, nil
	}
	ledger, err = txLedger.WithTx(tx)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to bind token ledger to transaction")
	}
	return ledger, true, nil
}

func (e *Engine) evaluate(ctx context.Context, store datagateway.DropReaderDataGateway, ledger datagateway.TokenLedger, req OrderRequest) (*mintPlan, error) {
	request, err := extradata.Decode(e.self, req.MinimumReceived, req.Context)
	if err != nil {
		return nil, err
	}
	if !e.substandardEnabled(request.Substandard) {
		return nil, entity.SubstandardNotSupported(request.Substandard)
	}

	minter := request.Minter
	if minter == (common.Address{}) {
		minter = req.Fulfiller
	}
	plan := &mintPlan{
		request: request,
		minter:  minter,
		payer:   req.Fulfiller,
	}
	logger.DebugContext(ctx, "evaluating mint request",
		slogx.Stringer("substandard", request.Substandard),
		slogx.Address("minter", minter),
		slogx.Uint256("quantity", request.Quantity),
	)

	deps := validator.Dependencies{
		Store:      store,
		Ledger:     ledger,
		Delegation: e.delegation,
		Clock:      e.clock,
	}
	v := validator.New()
	if _, err := v.CheckPayer(ctx, deps, plan.payer, minter); err != nil {
		return nil, errors.WithStack(err)
	}
	if !v.Valid {
		return nil, v.Reason
	}

	switch request.Substandard {
	case entity.SubstandardPublic:
		err = e.authorizePublic(ctx, store, plan)
	case entity.SubstandardAllowList:
		err = e.authorizeAllowList(ctx, store, plan)
	case entity.SubstandardTokenGated:
		err = e.authorizeTokenGated(ctx, store, plan)
	case entity.SubstandardSigned:
		err = e.authorizeSigned(ctx, store, plan)
	}
	if err != nil {
		return nil, err
	}

	terms := plan.terms
	v.CheckActive(deps.Clock(), terms.StartTime, terms.EndTime)
	if _, err := v.CheckFeeRecipient(ctx, deps, request.FeeRecipient, terms.RestrictFeeRecipients); err != nil {
		return nil, errors.WithStack(err)
	}
	if _, err := v.CheckQuantity(ctx, deps, minter, request.Quantity, terms.MaxTotalMintableByWallet, terms.MaxTokenSupplyForStage); err != nil {
		return nil, errors.WithStack(err)
	}
	if !v.Valid {
		return nil, v.Reason
	}

	payouts, err := store.GetCreatorPayouts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get creator payouts")
	}
	consideration, err := payment.Obligations(payment.Params{
		Quantity:     request.Quantity,
		MintPrice:    terms.MintPrice,
		PaymentToken: terms.PaymentToken,
		FeeRecipient: request.FeeRecipient,
		FeeBps:       terms.FeeBps,
		Payouts:      payouts,
	})
	if err != nil {
		return nil, err
	}

	offered := req.MinimumReceived[0]
	plan.order = Order{
		Offer: []entity.SpentItem{{
			ItemType:   offered.ItemType,
			Token:      e.self,
			Identifier: offered.Identifier,
			Amount:     new(uint256.Int).Set(request.Quantity),
		}},
		Consideration: consideration,
	}
	return plan, nil
}

// apply commits the effects of an approved plan. The used digest is recorded first.
func (e *Engine) apply(ctx context.Context, tx datagateway.DropDataGatewayWithTx, ledger datagateway.TokenLedger, bound bool, plan *mintPlan) error {
	if plan.digest != nil {
		if err := tx.AddUsedDigest(ctx, *plan.digest); err != nil {
			return errors.Wrap(err, "failed to consume signature digest")
		}
	}
	for _, redemption := range plan.redemptions {
		if err := tx.SetTokenGatedRedeemed(ctx, redemption); err != nil {
			return errors.Wrap(err, "failed to update redeemed count")
		}
	}

	payload, err := json.Marshal(entity.MintEvent{
		Minter:         plan.minter,
		FeeRecipient:   plan.request.FeeRecipient,
		Payer:          plan.payer,
		Quantity:       plan.request.Quantity.Dec(),
		UnitMintPrice:  plan.terms.MintPrice.Dec(),
		PaymentToken:   plan.terms.PaymentToken,
		FeeBps:         uint16(min(saturatingUint64(plan.terms.FeeBps), math.MaxUint16)),
		DropStageIndex: saturatingUint64(plan.terms.DropStageIndex),
		Substandard:    plan.request.Substandard.String(),
	})
	if err != nil {
		return errors.Wrap(err, "failed to marshal mint event")
	}
	if _, err := tx.CreateEvent(ctx, entity.EventKindMint, payload); err != nil {
		return errors.Wrap(err, "failed to create mint event")
	}

	// quantity is bounded by the max supply, a uint64
	if err := ledger.Mint(ctx, plan.minter, plan.request.Quantity.Uint64()); err != nil {
		return errors.Wrap(err, "failed to mint")
	}
	if err := tx.Commit(ctx); err != nil {
		if bound {
			return errors.Wrap(err, "failed to commit transaction")
		}
		logger.LogContext(ctx, logger.LevelCritical, "units minted but drop state not committed",
			slogx.Address("minter", plan.minter),
			slogx.Uint256("quantity", plan.request.Quantity),
			slog.String("substandard", plan.request.Substandard.String()),
			slogx.Error(err),
		)
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

func saturatingUint64(v *uint256.Int) uint64 {
	if !v.IsUint64() {
		return ^uint64(0)
	}
	return v.Uint64()
}
