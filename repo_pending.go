package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PendingAdmins is the pending-registration store. Rows are keyed by email
// (unique) and are deleted on promotion; expired rows stay until a sweep
// outside this module removes them, expiry is checked at read time.
type PendingAdmins interface {
	repository.Repository[*PendingAdmin]

	GetByEmail(ctx context.Context, email string) (*PendingAdmin, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*PendingAdmin, error)
	ExistsByEmailTx(ctx context.Context, tx bun.IDB, email string) (bool, error)

	// GetForConfirmation matches email AND code AND an unexpired window in
	// a single lookup so callers cannot tell which predicate failed.
	GetForConfirmationTx(ctx context.Context, tx bun.IDB, email, code string, now time.Time) (*PendingAdmin, error)

	Create(ctx context.Context, record *PendingAdmin, criteria ...repository.InsertCriteria) (*PendingAdmin, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *PendingAdmin, criteria ...repository.InsertCriteria) (*PendingAdmin, error)

	DeleteByEmail(ctx context.Context, email string) error
	DeleteByEmailTx(ctx context.Context, tx bun.IDB, email string) error
}

type pendingAdmins struct {
	repository.Repository[*PendingAdmin]
	db *bun.DB
}

var (
	_ PendingAdmins                        = (*pendingAdmins)(nil)
	_ repository.Repository[*PendingAdmin] = (*pendingAdmins)(nil)
)

func NewPendingAdminsRepository(db *bun.DB) PendingAdmins {
	repo := repository.NewRepository[*PendingAdmin](db, repository.ModelHandlers[*PendingAdmin]{
		NewRecord: func() *PendingAdmin { return &PendingAdmin{} },
		GetID: func(p *PendingAdmin) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *PendingAdmin, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &pendingAdmins{
		Repository: repo,
		db:         db,
	}
}

func (p *pendingAdmins) GetByEmail(ctx context.Context, email string) (*PendingAdmin, error) {
	return p.GetByEmailTx(ctx, p.db, email)
}

func (p *pendingAdmins) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*PendingAdmin, error) {
	record := &PendingAdmin{}

	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}

func (p *pendingAdmins) ExistsByEmailTx(ctx context.Context, tx bun.IDB, email string) (bool, error) {
	return tx.NewSelect().
		Model((*PendingAdmin)(nil)).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Exists(ctx)
}

func (p *pendingAdmins) GetForConfirmationTx(ctx context.Context, tx bun.IDB, email, code string, now time.Time) (*PendingAdmin, error) {
	record := &PendingAdmin{}

	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Where("?TableAlias.code = ?", code).
		Where("?TableAlias.code_expires_at > ?", now).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}

func (p *pendingAdmins) Create(ctx context.Context, record *PendingAdmin, criteria ...repository.InsertCriteria) (*PendingAdmin, error) {
	return p.CreateTx(ctx, p.db, record, criteria...)
}

func (p *pendingAdmins) CreateTx(ctx context.Context, tx bun.IDB, record *PendingAdmin, criteria ...repository.InsertCriteria) (*PendingAdmin, error) {
	preparePendingDefaults(record)
	return p.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (p *pendingAdmins) DeleteByEmail(ctx context.Context, email string) error {
	return p.DeleteByEmailTx(ctx, p.db, email)
}

func (p *pendingAdmins) DeleteByEmailTx(ctx context.Context, tx bun.IDB, email string) error {
	_, err := tx.NewDelete().
		Model((*PendingAdmin)(nil)).
		Where("email = ?", NormalizeEmail(email)).
		Exec(ctx)
	return err
}

func preparePendingDefaults(record *PendingAdmin) {
	if record == nil {
		return
	}

	record.Email = NormalizeEmail(record.Email)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
