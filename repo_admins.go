package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Admins is the verified-account store. Email uniqueness is enforced by
// the table constraint, so a racing double insert surfaces as a conflict
// instead of last-write-wins.
type Admins interface {
	repository.Repository[*Admin]

	GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*Admin, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string, criteria ...repository.SelectCriteria) (*Admin, error)
	ExistsByEmailTx(ctx context.Context, tx bun.IDB, email string) (bool, error)

	Create(ctx context.Context, record *Admin, criteria ...repository.InsertCriteria) (*Admin, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Admin, criteria ...repository.InsertCriteria) (*Admin, error)

	TrackAttemptedLogin(ctx context.Context, admin *Admin) error
	TrackAttemptedLoginTx(ctx context.Context, tx bun.IDB, admin *Admin) error
	TrackSuccessfulLogin(ctx context.Context, admin *Admin) error
	TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, admin *Admin) error
}

type admins struct {
	repository.Repository[*Admin]
	db *bun.DB
}

var (
	_ Admins                        = (*admins)(nil)
	_ repository.Repository[*Admin] = (*admins)(nil)
)

func NewAdminsRepository(db *bun.DB) Admins {
	repo := repository.NewRepository[*Admin](db, repository.ModelHandlers[*Admin]{
		NewRecord: func() *Admin { return &Admin{} },
		GetID: func(a *Admin) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Admin, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &admins{
		Repository: repo,
		db:         db,
	}
}

func (a *admins) GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*Admin, error) {
	return a.GetByEmailTx(ctx, a.db, email, criteria...)
}

func (a *admins) GetByEmailTx(ctx context.Context, tx bun.IDB, email string, criteria ...repository.SelectCriteria) (*Admin, error) {
	record := &Admin{}
	q := tx.NewSelect().Model(record)

	for _, c := range criteria {
		q.Apply(c)
	}

	err := q.
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

func (a *admins) ExistsByEmailTx(ctx context.Context, tx bun.IDB, email string) (bool, error) {
	return tx.NewSelect().
		Model((*Admin)(nil)).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Exists(ctx)
}

func (a *admins) Create(ctx context.Context, record *Admin, criteria ...repository.InsertCriteria) (*Admin, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *admins) CreateTx(ctx context.Context, tx bun.IDB, record *Admin, criteria ...repository.InsertCriteria) (*Admin, error) {
	prepareAdminDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *admins) TrackSuccessfulLogin(ctx context.Context, admin *Admin) error {
	return a.TrackSuccessfulLoginTx(ctx, a.db, admin)
}

func (a *admins) TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, admin *Admin) error {
	// NOTE: Updating using the ORM fails due to a bug, it wont reset
	// login_attempt_at, login_attempts fields.
	loggedInAt := time.Now()
	_, err := tx.NewRaw(`
		UPDATE "admins" AS "adm"
		SET
			"loggedin_at" = ?,
			"login_attempt_at" = NULL,
			"login_attempts" = 0
		WHERE
			("adm".id = ?)
			AND "adm"."deleted_at" IS NULL;
	`, loggedInAt, admin.ID).Exec(ctx)

	return err
}

func (a *admins) TrackAttemptedLogin(ctx context.Context, admin *Admin) error {
	return a.TrackAttemptedLoginTx(ctx, a.db, admin)
}

func (a *admins) TrackAttemptedLoginTx(ctx context.Context, tx bun.IDB, admin *Admin) error {
	criteria := []repository.UpdateCriteria{
		repository.UpdateByID(admin.ID.String()),
	}

	record := &Admin{}
	record.ID = admin.ID
	record.LoginAttempts = admin.LoginAttempts + 1
	now := time.Now()
	record.LoginAttemptAt = &now

	_, err := a.Repository.UpdateTx(ctx, tx, record, criteria...)

	return err
}

func prepareAdminDefaults(record *Admin) {
	if record == nil {
		return
	}

	record.Email = NormalizeEmail(record.Email)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

func isEmail(email string) bool {
	_, err := mail.ParseAddress(strings.TrimSpace(email))
	return err == nil
}
