package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Database is a DBTX that can open transactions.
type Database interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TxRepositories are repositories bound to one transaction.
type TxRepositories struct {
	Companies CompanyRepository
	Articles  ArticleRepository
	Invoices  InvoiceRepository
}

// UnitOfWork runs fn inside a transaction; fn's error rolls everything back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}

type unitOfWork struct {
	db Database
}

func NewUnitOfWork(db Database) UnitOfWork {
	return &unitOfWork{db: db}
}

func (u *unitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error {
	tx, err := u.db.Begin(ctx)
	if err != nil {
		return mapError(err, "transaction")
	}

	repos := TxRepositories{
		Companies: NewCompanyRepo(tx),
		Articles:  NewArticleRepo(tx),
		Invoices:  NewInvoiceRepo(tx),
	}

	if err := fn(ctx, repos); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError(err, "transaction")
	}
	return nil
}

// errNoRows reports a write that matched nothing.
var errNoRows = pgx.ErrNoRows

type rowScanner interface {
	Scan(dest ...interface{}) error
}
