package postgres

import (
	"time"

	"github.com/gaze-network/drop-offerer/internal/postgres"
	"github.com/gaze-network/drop-offerer/modules/drop/datagateway"
	"github.com/jackc/pgx/v5"
)

var _ datagateway.DropDataGateway = (*Repository)(nil)

type Repository struct {
	db    postgres.DB
	tx    pgx.Tx
	clock func() time.Time
}

func NewRepository(db postgres.DB) *Repository {
	return &Repository{
		db:    db,
		clock: time.Now,
	}
}

// conn returns the transaction if one is open.
func (r *Repository) conn() postgres.Queryable {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}
