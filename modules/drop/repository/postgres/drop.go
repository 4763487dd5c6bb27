package postgres

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/common/errs"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/holiman/uint256"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	listFeeRecipients = "fee_recipients"
	listPayers        = "payers"
	listSigners       = "signers"
	listGatedTokens   = "token_gated_tokens"
)

func (r *Repository) GetOwner(ctx context.Context) (common.Address, error) {
	var owner string
	if err := r.conn().QueryRow(ctx, `SELECT "owner" FROM "drop_settings" WHERE "id" = 1`).Scan(&owner); err != nil {
		return common.Address{}, errors.Wrap(err, "failed to get owner")
	}
	return address(owner), nil
}

func (r *Repository) SetOwner(ctx context.Context, owner common.Address) error {
	if _, err := r.conn().Exec(ctx, `UPDATE "drop_settings" SET "owner" = $1 WHERE "id" = 1`, owner.Hex()); err != nil {
		return errors.Wrap(err, "failed to set owner")
	}
	return nil
}

func (r *Repository) GetPublicDrop(ctx context.Context) (entity.PublicDrop, error) {
	var (
		publicDrop   entity.PublicDrop
		mintPrice    decimal.Decimal
		paymentToken string
		feeBps       int32
		scanner      uint64Scanner
	)
	err := r.conn().QueryRow(ctx, `SELECT "public_mint_price", "public_payment_token", "public_start_time", "public_end_time",
		"public_max_total_mintable_by_wallet", "public_fee_bps", "public_restrict_fee_recipients"
		FROM "drop_settings" WHERE "id" = 1`).Scan(
		&mintPrice,
		&paymentToken,
		scanner.dest(&publicDrop.StartTime),
		scanner.dest(&publicDrop.EndTime),
		scanner.dest(&publicDrop.MaxTotalMintableByWallet),
		&feeBps,
		&publicDrop.RestrictFeeRecipients,
	)
	if err != nil {
		return entity.PublicDrop{}, errors.Wrap(err, "failed to get public drop")
	}
	if err := scanner.resolve(); err != nil {
		return entity.PublicDrop{}, errors.WithStack(err)
	}
	if publicDrop.MintPrice, err = toUint256(mintPrice); err != nil {
		return entity.PublicDrop{}, errors.WithStack(err)
	}
	publicDrop.PaymentToken = address(paymentToken)
	publicDrop.FeeBps = uint16(feeBps)
	return publicDrop, nil
}

func (r *Repository) SetPublicDrop(ctx context.Context, publicDrop entity.PublicDrop) error {
	_, err := r.conn().Exec(ctx, `UPDATE "drop_settings" SET
		"public_mint_price" = $1, "public_payment_token" = $2, "public_start_time" = $3, "public_end_time" = $4,
		"public_max_total_mintable_by_wallet" = $5, "public_fee_bps" = $6, "public_restrict_fee_recipients" = $7
		WHERE "id" = 1`,
		numeric(publicDrop.MintPrice),
		publicDrop.PaymentToken.Hex(),
		numericUint64(publicDrop.StartTime),
		numericUint64(publicDrop.EndTime),
		numericUint64(publicDrop.MaxTotalMintableByWallet),
		int32(publicDrop.FeeBps),
		publicDrop.RestrictFeeRecipients,
	)
	if err != nil {
		return errors.Wrap(err, "failed to set public drop")
	}
	return nil
}

func (r *Repository) GetAllowListMerkleRoot(ctx context.Context) (common.Hash, error) {
	var root string
	if err := r.conn().QueryRow(ctx, `SELECT "allow_list_merkle_root" FROM "drop_settings" WHERE "id" = 1`).Scan(&root); err != nil {
		return common.Hash{}, errors.Wrap(err, "failed to get allow-list merkle root")
	}
	return hash(root), nil
}

func (r *Repository) SetAllowListMerkleRoot(ctx context.Context, root common.Hash) error {
	if _, err := r.conn().Exec(ctx, `UPDATE "drop_settings" SET "allow_list_merkle_root" = $1 WHERE "id" = 1`, root.Hex()); err != nil {
		return errors.Wrap(err, "failed to set allow-list merkle root")
	}
	return nil
}

func (r *Repository) GetCreatorPayouts(ctx context.Context) ([]entity.CreatorPayout, error) {
	rows, err := r.conn().Query(ctx, `SELECT "payout_address", "basis_points" FROM "drop_creator_payouts" ORDER BY "position"`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get creator payouts")
	}
	payouts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.CreatorPayout, error) {
		var (
			payoutAddress string
			basisPoints   int32
		)
		if err := row.Scan(&payoutAddress, &basisPoints); err != nil {
			return entity.CreatorPayout{}, err
		}
		return entity.CreatorPayout{PayoutAddress: address(payoutAddress), BasisPoints: uint16(basisPoints)}, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan creator payouts")
	}
	return payouts, nil
}

func (r *Repository) SetCreatorPayouts(ctx context.Context, payouts []entity.CreatorPayout) error {
	if _, err := r.conn().Exec(ctx, `DELETE FROM "drop_creator_payouts"`); err != nil {
		return errors.Wrap(err, "failed to clear creator payouts")
	}
	for i, payout := range payouts {
		_, err := r.conn().Exec(ctx, `INSERT INTO "drop_creator_payouts" ("position", "payout_address", "basis_points") VALUES ($1, $2, $3)`,
			int32(i), payout.PayoutAddress.Hex(), int32(payout.BasisPoints))
		if err != nil {
			return errors.Wrap(err, "failed to insert creator payout")
		}
	}
	return nil
}

func (r *Repository) GetAllowedFeeRecipients(ctx context.Context) ([]common.Address, error) {
	return r.listAddresses(ctx, listFeeRecipients)
}

func (r *Repository) IsAllowedFeeRecipient(ctx context.Context, feeRecipient common.Address) (bool, error) {
	return r.containsAddress(ctx, listFeeRecipients, feeRecipient)
}

func (r *Repository) AddAllowedFeeRecipient(ctx context.Context, feeRecipient common.Address) error {
	return r.addAddress(ctx, listFeeRecipients, feeRecipient)
}

func (r *Repository) RemoveAllowedFeeRecipient(ctx context.Context, feeRecipient common.Address) error {
	return r.removeAddress(ctx, listFeeRecipients, feeRecipient)
}

func (r *Repository) GetAllowedPayers(ctx context.Context) ([]common.Address, error) {
	return r.listAddresses(ctx, listPayers)
}

func (r *Repository) IsAllowedPayer(ctx context.Context, payer common.Address) (bool, error) {
	return r.containsAddress(ctx, listPayers, payer)
}

func (r *Repository) AddAllowedPayer(ctx context.Context, payer common.Address) error {
	return r.addAddress(ctx, listPayers, payer)
}

func (r *Repository) RemoveAllowedPayer(ctx context.Context, payer common.Address) error {
	return r.removeAddress(ctx, listPayers, payer)
}

func (r *Repository) GetSigners(ctx context.Context) ([]common.Address, error) {
	return r.listAddresses(ctx, listSigners)
}

type paymentTokenPrice struct {
	PaymentToken common.Address `json:"paymentToken"`
	MinMintPrice string         `json:"minMintPrice"`
}

func (r *Repository) GetSignedMintValidationParams(ctx context.Context, signer common.Address) (entity.SignedMintValidationParams, error) {
	var (
		params        entity.SignedMintValidationParams
		minMintPrices []byte
		minFeeBps     int32
		maxFeeBps     int32
		scanner       uint64Scanner
	)
	err := r.conn().QueryRow(ctx, `SELECT "min_mint_prices", "max_max_total_mintable_by_wallet", "min_start_time", "max_end_time",
		"max_max_token_supply_for_stage", "min_fee_bps", "max_fee_bps"
		FROM "drop_signers" WHERE "signer" = $1`, signer.Hex()).Scan(
		&minMintPrices,
		scanner.dest(&params.MaxMaxTotalMintableByWallet),
		scanner.dest(&params.MinStartTime),
		scanner.dest(&params.MaxEndTime),
		scanner.dest(&params.MaxMaxTokenSupplyForStage),
		&minFeeBps,
		&maxFeeBps,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.SignedMintValidationParams{}, errors.Wrapf(errs.NotFound, "signer %s", signer.Hex())
	}
	if err != nil {
		return entity.SignedMintValidationParams{}, errors.Wrap(err, "failed to get signed mint validation params")
	}
	if err := scanner.resolve(); err != nil {
		return entity.SignedMintValidationParams{}, errors.WithStack(err)
	}

	var prices []paymentTokenPrice
	if err := json.Unmarshal(minMintPrices, &prices); err != nil {
		return entity.SignedMintValidationParams{}, errors.Wrap(err, "failed to unmarshal min mint prices")
	}
	for _, price := range prices {
		minMintPrice, err := uint256.FromDecimal(price.MinMintPrice)
		if err != nil {
			return entity.SignedMintValidationParams{}, errors.Wrapf(err, "invalid min mint price %q", price.MinMintPrice)
		}
		params.MinMintPrices = append(params.MinMintPrices, entity.PaymentTokenPrice{PaymentToken: price.PaymentToken, MinMintPrice: minMintPrice})
	}
	params.MinFeeBps = uint16(minFeeBps)
	params.MaxFeeBps = uint16(maxFeeBps)
	return params, nil
}

func (r *Repository) SetSignedMintValidationParams(ctx context.Context, signer common.Address, params entity.SignedMintValidationParams) error {
	minMintPrices, err := json.Marshal(lo.Map(params.MinMintPrices, func(p entity.PaymentTokenPrice, _ int) paymentTokenPrice {
		return paymentTokenPrice{PaymentToken: p.PaymentToken, MinMintPrice: numeric(p.MinMintPrice).String()}
	}))
	if err != nil {
		return errors.Wrap(err, "failed to marshal min mint prices")
	}
	if err := r.addAddressIfAbsent(ctx, listSigners, signer); err != nil {
		return errors.WithStack(err)
	}
	_, err = r.conn().Exec(ctx, `INSERT INTO "drop_signers" ("signer", "min_mint_prices", "max_max_total_mintable_by_wallet", "min_start_time",
		"max_end_time", "max_max_token_supply_for_stage", "min_fee_bps", "max_fee_bps")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT ("signer") DO UPDATE SET
			"min_mint_prices" = EXCLUDED."min_mint_prices",
			"max_max_total_mintable_by_wallet" = EXCLUDED."max_max_total_mintable_by_wallet",
			"min_start_time" = EXCLUDED."min_start_time",
			"max_end_time" = EXCLUDED."max_end_time",
			"max_max_token_supply_for_stage" = EXCLUDED."max_max_token_supply_for_stage",
			"min_fee_bps" = EXCLUDED."min_fee_bps",
			"max_fee_bps" = EXCLUDED."max_fee_bps"`,
		signer.Hex(),
		minMintPrices,
		numericUint64(params.MaxMaxTotalMintableByWallet),
		numericUint64(params.MinStartTime),
		numericUint64(params.MaxEndTime),
		numericUint64(params.MaxMaxTokenSupplyForStage),
		int32(params.MinFeeBps),
		int32(params.MaxFeeBps),
	)
	if err != nil {
		return errors.Wrap(err, "failed to upsert signer")
	}
	return nil
}

func (r *Repository) RemoveSigner(ctx context.Context, signer common.Address) error {
	if err := r.removeAddress(ctx, listSigners, signer); err != nil {
		return err
	}
	if _, err := r.conn().Exec(ctx, `DELETE FROM "drop_signers" WHERE "signer" = $1`, signer.Hex()); err != nil {
		return errors.Wrap(err, "failed to delete signer")
	}
	return nil
}

func (r *Repository) GetTokenGatedAllowedTokens(ctx context.Context) ([]common.Address, error) {
	return r.listAddresses(ctx, listGatedTokens)
}

func (r *Repository) GetTokenGatedDropStage(ctx context.Context, allowedNftToken common.Address) (entity.TokenGatedDropStage, error) {
	var (
		stage        entity.TokenGatedDropStage
		mintPrice    decimal.Decimal
		paymentToken string
		feeBps       int32
		scanner      uint64Scanner
	)
	err := r.conn().QueryRow(ctx, `SELECT "mint_price", "payment_token", "max_mintable_per_redeemed_token", "max_total_mintable_by_wallet",
		"start_time", "end_time", "drop_stage_index", "max_token_supply_for_stage", "fee_bps", "restrict_fee_recipients"
		FROM "drop_token_gated_stages" WHERE "allowed_nft_token" = $1`, allowedNftToken.Hex()).Scan(
		&mintPrice,
		&paymentToken,
		scanner.dest(&stage.MaxMintablePerRedeemedToken),
		scanner.dest(&stage.MaxTotalMintableByWallet),
		scanner.dest(&stage.StartTime),
		scanner.dest(&stage.EndTime),
		scanner.dest(&stage.DropStageIndex),
		scanner.dest(&stage.MaxTokenSupplyForStage),
		&feeBps,
		&stage.RestrictFeeRecipients,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.TokenGatedDropStage{}, errors.Wrapf(errs.NotFound, "token gated drop stage %s", allowedNftToken.Hex())
	}
	if err != nil {
		return entity.TokenGatedDropStage{}, errors.Wrap(err, "failed to get token gated drop stage")
	}
	if err := scanner.resolve(); err != nil {
		return entity.TokenGatedDropStage{}, errors.WithStack(err)
	}
	if stage.MintPrice, err = toUint256(mintPrice); err != nil {
		return entity.TokenGatedDropStage{}, errors.WithStack(err)
	}
	stage.PaymentToken = address(paymentToken)
	stage.FeeBps = uint16(feeBps)
	return stage, nil
}

func (r *Repository) SetTokenGatedDropStage(ctx context.Context, allowedNftToken common.Address, stage entity.TokenGatedDropStage) error {
	if err := r.addAddressIfAbsent(ctx, listGatedTokens, allowedNftToken); err != nil {
		return errors.WithStack(err)
	}
	_, err := r.conn().Exec(ctx, `INSERT INTO "drop_token_gated_stages" ("allowed_nft_token", "mint_price", "payment_token",
		"max_mintable_per_redeemed_token", "max_total_mintable_by_wallet", "start_time", "end_time", "drop_stage_index",
		"max_token_supply_for_stage", "fee_bps", "restrict_fee_recipients")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT ("allowed_nft_token") DO UPDATE SET
			"mint_price" = EXCLUDED."mint_price",
			"payment_token" = EXCLUDED."payment_token",
			"max_mintable_per_redeemed_token" = EXCLUDED."max_mintable_per_redeemed_token",
			"max_total_mintable_by_wallet" = EXCLUDED."max_total_mintable_by_wallet",
			"start_time" = EXCLUDED."start_time",
			"end_time" = EXCLUDED."end_time",
			"drop_stage_index" = EXCLUDED."drop_stage_index",
			"max_token_supply_for_stage" = EXCLUDED."max_token_supply_for_stage",
			"fee_bps" = EXCLUDED."fee_bps",
			"restrict_fee_recipients" = EXCLUDED."restrict_fee_recipients"`,
		allowedNftToken.Hex(),
		numeric(stage.MintPrice),
		stage.PaymentToken.Hex(),
		numericUint64(stage.MaxMintablePerRedeemedToken),
		numericUint64(stage.MaxTotalMintableByWallet),
		numericUint64(stage.StartTime),
		numericUint64(stage.EndTime),
		numericUint64(stage.DropStageIndex),
		numericUint64(stage.MaxTokenSupplyForStage),
		int32(stage.FeeBps),
		stage.RestrictFeeRecipients,
	)
	if err != nil {
		return errors.Wrap(err, "failed to upsert token gated drop stage")
	}
	return nil
}

func (r *Repository) RemoveTokenGatedDropStage(ctx context.Context, allowedNftToken common.Address) error {
	if err := r.removeAddress(ctx, listGatedTokens, allowedNftToken); err != nil {
		return err
	}
	if _, err := r.conn().Exec(ctx, `DELETE FROM "drop_token_gated_stages" WHERE "allowed_nft_token" = $1`, allowedNftToken.Hex()); err != nil {
		return errors.Wrap(err, "failed to delete token gated drop stage")
	}
	return nil
}

func (r *Repository) GetTokenGatedRedeemed(ctx context.Context, allowedNftToken common.Address, tokenID *uint256.Int) (uint64, error) {
	var redeemed decimal.Decimal
	err := r.conn().QueryRow(ctx, `SELECT "redeemed" FROM "drop_token_gated_redemptions" WHERE "allowed_nft_token" = $1 AND "token_id" = $2`,
		allowedNftToken.Hex(), numeric(tokenID)).Scan(&redeemed)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to get redeemed count")
	}
	return toUint64(redeemed)
}

func (r *Repository) SetTokenGatedRedeemed(ctx context.Context, redemption entity.Redemption) error {
	tag, err := r.conn().Exec(ctx, `INSERT INTO "drop_token_gated_redemptions" ("allowed_nft_token", "token_id", "redeemed")
		VALUES ($1, $2, $3)
		ON CONFLICT ("allowed_nft_token", "token_id") DO UPDATE SET "redeemed" = EXCLUDED."redeemed"
		WHERE "drop_token_gated_redemptions"."redeemed" <= EXCLUDED."redeemed"`,
		redemption.Token.Hex(), numeric(redemption.TokenID), numericUint64(redemption.Redeemed))
	if err != nil {
		return errors.Wrap(err, "failed to set redeemed count")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(errs.InvalidArgument, "redeemed counter of token %s cannot decrease", redemption.TokenID.Dec())
	}
	return nil
}

func (r *Repository) IsDigestUsed(ctx context.Context, digest common.Hash) (bool, error) {
	var used bool
	err := r.conn().QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM "drop_used_digests" WHERE "digest" = $1)`, digest.Hex()).Scan(&used)
	if err != nil {
		return false, errors.Wrap(err, "failed to check used digest")
	}
	return used, nil
}

func (r *Repository) AddUsedDigest(ctx context.Context, digest common.Hash) error {
	tag, err := r.conn().Exec(ctx, `INSERT INTO "drop_used_digests" ("digest", "created_at") VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		digest.Hex(), pgtype.Timestamp{Time: r.clock().UTC(), Valid: true})
	if err != nil {
		return errors.Wrap(err, "failed to add used digest")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(errs.Conflict, "digest %s already used", digest.Hex())
	}
	return nil
}

func (r *Repository) CreateEvent(ctx context.Context, kind entity.EventKind, payload []byte) (entity.Event, error) {
	event := entity.Event{
		Kind:      kind,
		Payload:   payload,
		CreatedAt: r.clock().UTC(),
	}
	var seq int64
	err := r.conn().QueryRow(ctx, `INSERT INTO "drop_events" ("kind", "payload", "created_at") VALUES ($1, $2, $3) RETURNING "seq"`,
		string(kind), payload, pgtype.Timestamp{Time: event.CreatedAt, Valid: true}).Scan(&seq)
	if err != nil {
		return entity.Event{}, errors.Wrap(err, "failed to create event")
	}
	event.Seq = uint64(seq)
	return event, nil
}

func (r *Repository) GetEvents(ctx context.Context, fromSeq uint64, limit int) ([]entity.Event, error) {
	rows, err := r.conn().Query(ctx, `SELECT "seq", "kind", "payload", "created_at" FROM "drop_events"
		WHERE "seq" >= $1 ORDER BY "seq" LIMIT $2`,
		int64(min(fromSeq, 1<<63-1)), pgtype.Int8{Int64: int64(limit), Valid: limit > 0})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get events")
	}
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Event, error) {
		var (
			seq       int64
			kind      string
			payload   []byte
			createdAt pgtype.Timestamp
		)
		if err := row.Scan(&seq, &kind, &payload, &createdAt); err != nil {
			return entity.Event{}, err
		}
		return entity.Event{
			Seq:       uint64(seq),
			Kind:      entity.EventKind(kind),
			Payload:   payload,
			CreatedAt: createdAt.Time,
		}, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan events")
	}
	return events, nil
}

func (r *Repository) listAddresses(ctx context.Context, list string) ([]common.Address, error) {
	rows, err := r.conn().Query(ctx, `SELECT "address" FROM "drop_enumerated_addresses" WHERE "list" = $1 ORDER BY "position"`, list)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get %s", list)
	}
	addresses, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scan %s", list)
	}
	return lo.Map(addresses, func(s string, _ int) common.Address { return address(s) }), nil
}

func (r *Repository) containsAddress(ctx context.Context, list string, addr common.Address) (bool, error) {
	var exists bool
	err := r.conn().QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM "drop_enumerated_addresses" WHERE "list" = $1 AND "address" = $2)`,
		list, addr.Hex()).Scan(&exists)
	if err != nil {
		return false, errors.Wrapf(err, "failed to check %s", list)
	}
	return exists, nil
}

// insertAddress appends addr to the end of list and reports whether it was absent.
func (r *Repository) insertAddress(ctx context.Context, list string, addr common.Address) (bool, error) {
	tag, err := r.conn().Exec(ctx, `INSERT INTO "drop_enumerated_addresses" ("list", "address", "position")
		SELECT $1, $2, COALESCE(MAX("position") + 1, 0) FROM "drop_enumerated_addresses" WHERE "list" = $1
		ON CONFLICT ("list", "address") DO NOTHING`, list, addr.Hex())
	if err != nil {
		return false, errors.Wrapf(err, "failed to add to %s", list)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) addAddress(ctx context.Context, list string, addr common.Address) error {
	inserted, err := r.insertAddress(ctx, list, addr)
	if err != nil {
		return err
	}
	if !inserted {
		return errors.Wrapf(errs.Conflict, "%s already exists in %s", addr.Hex(), list)
	}
	return nil
}

func (r *Repository) addAddressIfAbsent(ctx context.Context, list string, addr common.Address) error {
	_, err := r.insertAddress(ctx, list, addr)
	return err
}

// removeAddress moves the last entry of list into the position of addr.
func (r *Repository) removeAddress(ctx context.Context, list string, addr common.Address) error {
	var position int32
	err := r.conn().QueryRow(ctx, `DELETE FROM "drop_enumerated_addresses" WHERE "list" = $1 AND "address" = $2 RETURNING "position"`,
		list, addr.Hex()).Scan(&position)
	if errors.Is(err, pgx.ErrNoRows) {
		return errors.Wrapf(errs.NotFound, "%s not in %s", addr.Hex(), list)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to remove from %s", list)
	}
	_, err = r.conn().Exec(ctx, `UPDATE "drop_enumerated_addresses" SET "position" = $2
		WHERE "list" = $1 AND "position" > $2
		AND "position" = (SELECT MAX("position") FROM "drop_enumerated_addresses" WHERE "list" = $1)`, list, position)
	if err != nil {
		return errors.Wrapf(err, "failed to compact %s", list)
	}
	return nil
}
