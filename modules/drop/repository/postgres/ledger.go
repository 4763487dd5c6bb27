package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/common/errs"
	"github.com/gaze-network/drop-offerer/internal/postgres"
	"github.com/gaze-network/drop-offerer/modules/drop/datagateway"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var _ datagateway.TxTokenLedger = (*TokenLedger)(nil)

// TokenLedger keeps supply and per-wallet mint counts in the drop_token_* tables.
type TokenLedger struct {
	db        postgres.DB
	tx        pgx.Tx
	maxSupply uint64
}

func NewTokenLedger(db postgres.DB, maxSupply uint64) *TokenLedger {
	return &TokenLedger{
		db:        db,
		maxSupply: maxSupply,
	}
}

// pgxTxHolder is implemented by *Repository and by types embedding it.
type pgxTxHolder interface {
	pgxTx() pgx.Tx
}

func (r *Repository) pgxTx() pgx.Tx {
	return r.tx
}

func (l *TokenLedger) WithTx(tx datagateway.DropDataGatewayWithTx) (datagateway.TokenLedger, error) {
	holder, ok := tx.(pgxTxHolder)
	if !ok {
		return nil, errors.Wrapf(errs.Unsupported, "%T is not a postgres transaction", tx)
	}
	pgxTx := holder.pgxTx()
	if pgxTx == nil {
		return nil, errors.Wrap(errs.InvalidArgument, "transaction is not open")
	}
	return &TokenLedger{
		db:        l.db,
		tx:        pgxTx,
		maxSupply: l.maxSupply,
	}, nil
}

func (l *TokenLedger) conn() postgres.Queryable {
	if l.tx != nil {
		return l.tx
	}
	return l.db
}

func (l *TokenLedger) MintStats(ctx context.Context, minter common.Address) (entity.MintStats, error) {
	var totalSupply, minted decimal.Decimal
	err := l.conn().QueryRow(ctx, `SELECT "total_supply",
		COALESCE((SELECT "minted" FROM "drop_token_ledger" WHERE "minter" = $1), 0)
		FROM "drop_token_supply" WHERE "id" = 1`, minter.Hex()).Scan(&totalSupply, &minted)
	if err != nil {
		return entity.MintStats{}, errors.Wrap(err, "failed to get mint stats")
	}
	stats := entity.MintStats{MaxSupply: l.maxSupply}
	if stats.TotalSupply, err = toUint64(totalSupply); err != nil {
		return entity.MintStats{}, errors.WithStack(err)
	}
	if stats.MintedByWallet, err = toUint64(minted); err != nil {
		return entity.MintStats{}, errors.WithStack(err)
	}
	return stats, nil
}

// Mint writes through the bound transaction, or commits in its own when unbound.
func (l *TokenLedger) Mint(ctx context.Context, minter common.Address, quantity uint64) (err error) {
	if l.tx != nil {
		return l.mint(ctx, l.tx, minter, quantity)
	}
	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()
	if err := l.mint(ctx, tx, minter, quantity); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit mint")
	}
	return nil
}

func (l *TokenLedger) mint(ctx context.Context, q postgres.Queryable, minter common.Address, quantity uint64) error {
	tag, err := q.Exec(ctx, `UPDATE "drop_token_supply" SET "total_supply" = "total_supply" + $1
		WHERE "id" = 1 AND "total_supply" + $1 <= $2`, numericUint64(quantity), numericUint64(l.maxSupply))
	if err != nil {
		return errors.Wrap(err, "failed to update total supply")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(errs.Conflict, "minting %d exceeds max supply %d", quantity, l.maxSupply)
	}
	_, err = q.Exec(ctx, `INSERT INTO "drop_token_ledger" ("minter", "minted") VALUES ($1, $2)
		ON CONFLICT ("minter") DO UPDATE SET "minted" = "drop_token_ledger"."minted" + EXCLUDED."minted"`,
		minter.Hex(), numericUint64(quantity))
	if err != nil {
		return errors.Wrap(err, "failed to update minted count")
	}
	return nil
}
