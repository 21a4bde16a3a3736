package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Admins() Admins
	PendingAdmins() PendingAdmins
}

type mngr struct {
	db            *bun.DB
	admins        Admins
	pendingAdmins PendingAdmins
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:            db,
		admins:        NewAdminsRepository(db),
		pendingAdmins: NewPendingAdminsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.admins == nil {
		return errors.New("repository admins should be initialized")
	}

	if m.pendingAdmins == nil {
		return errors.New("repository pendingAdmins should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Admins() Admins {
	return m.admins
}

func (m mngr) PendingAdmins() PendingAdmins {
	return m.pendingAdmins
}
