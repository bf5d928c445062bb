package registry

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// ErrTransferDenied is returned when the stated holder is not the item's
// current custodian or the item does not exist. Callers must treat it as a
// hard failure: no custody changed hands.
var ErrTransferDenied = errors.New("registry: transfer denied")

// ErrItemNotFound is returned by lookups for unknown item ids.
var ErrItemNotFound = errors.New("registry: item not found")

// Postgres is the system-of-record item registry backed by a single items
// table. Custody transfer is a compare-and-swap UPDATE, so the atomicity and
// fail-fast behavior the ledger relies on come from the database itself.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(connString string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse registry config")
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create connection pool")
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, errors.Wrap(err, "unable to ping registry database")
	}

	return &Postgres{db: pool}, nil
}

func (p *Postgres) Close() {
	p.db.Close()
}

// Transfer moves custody of itemID from one holder to another. Zero rows
// affected means `from` is not the current custodian or the item is unknown.
func (p *Postgres) Transfer(ctx context.Context, from, to string, itemID int64) error {
	tag, err := p.db.Exec(ctx,
		"UPDATE items SET custodian = $1 WHERE id = $2 AND custodian = $3",
		to, itemID, from)
	if err != nil {
		return errors.Wrap(err, "registry transfer failed")
	}
	if tag.RowsAffected() == 0 {
		return ErrTransferDenied
	}
	return nil
}

// Mint registers a new item under the given owner's custody.
func (p *Postgres) Mint(ctx context.Context, itemID int64, owner string) error {
	_, err := p.db.Exec(ctx,
		"INSERT INTO items (id, custodian) VALUES ($1, $2)",
		itemID, owner)
	if err != nil {
		return errors.Wrap(err, "registry mint failed")
	}
	return nil
}

// CustodianOf returns the current custodian of an item.
func (p *Postgres) CustodianOf(ctx context.Context, itemID int64) (string, error) {
	var custodian string
	err := p.db.QueryRow(ctx,
		"SELECT custodian FROM items WHERE id = $1", itemID).Scan(&custodian)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", ErrItemNotFound
		}
		return "", errors.Wrap(err, "registry lookup failed")
	}
	return custodian, nil
}
