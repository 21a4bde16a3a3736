package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type StartRegistrationMessage struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Whatsapp  string `json:"whatsapp"`
	Country   string `json:"country"`
	State     string `json:"state"`
	UseHashid bool
	OnResponse func(*StartRegistrationResponse)
}

func (e StartRegistrationMessage) Type() string { return "admin.registration_start" }

type StartRegistrationResponse struct {
	Email         string    `json:"email"`
	CodeExpiresAt time.Time `json:"code_expires_at"`
}

// StartRegistrationHandler drives the NoRecord -> Pending transition:
// conflict check against both stores, hash, code generation, pending
// write, then code dispatch. Dispatch failure triggers a compensating
// delete so the email is immediately retryable.
type StartRegistrationHandler struct {
	repo       RepositoryManager
	dispatcher CodeDispatcher
	sink       ActivitySink
}

func NewStartRegistrationHandler(repo RepositoryManager, dispatcher CodeDispatcher) *StartRegistrationHandler {
	if dispatcher == nil {
		dispatcher = LogCodeDispatcher{}
	}
	return &StartRegistrationHandler{repo: repo, dispatcher: dispatcher, sink: noopActivitySink{}}
}

// WithActivitySink configures an ActivitySink for emitting registration events.
func (h *StartRegistrationHandler) WithActivitySink(sink ActivitySink) *StartRegistrationHandler {
	h.sink = normalizeActivitySink(sink)
	return h
}

func (h *StartRegistrationHandler) Execute(ctx context.Context, event StartRegistrationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during registration start",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *StartRegistrationHandler) execute(ctx context.Context, event StartRegistrationMessage) error {
	if err := requireRegistrationFields(event); err != nil {
		return err
	}

	pending := &PendingAdmin{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if exists, err := h.repo.Admins().ExistsByEmailTx(ctx, tx, event.Email); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check verified admins")
		} else if exists {
			return ErrRegistrationConflict
		}

		if exists, err := h.repo.PendingAdmins().ExistsByEmailTx(ctx, tx, event.Email); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check pending registrations")
		} else if exists {
			return ErrRegistrationConflict
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return richErr
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		code, expiresAt, err := GenerateOneTimeCode()
		if err != nil {
			return err
		}

		pending.FirstName = event.FirstName
		pending.LastName = event.LastName
		pending.Email = event.Email
		pending.PasswordHash = hash
		pending.Whatsapp = event.Whatsapp
		pending.Country = event.Country
		pending.State = event.State
		pending.Code = code
		pending.CodeExpiresAt = expiresAt
		if event.UseHashid {
			if id, err := hashid.NewUUID(NormalizeEmail(event.Email)); err == nil {
				pending.ID = id
			}
		}

		if pending, err = h.repo.PendingAdmins().CreateTx(ctx, tx, pending); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create pending registration")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "registration start transaction failed")
	}

	// Persist first, then dispatch. A failed dispatch compensates the
	// pending write so the address does not stay locked behind a code the
	// admin never received.
	if err := h.dispatcher.DispatchCode(ctx, pending.Email, pending.Code); err != nil {
		if delErr := h.repo.PendingAdmins().DeleteByEmail(ctx, pending.Email); delErr != nil {
			return goerrors.Wrap(delErr, goerrors.CategoryInternal, "failed to compensate pending registration after dispatch error")
		}
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to dispatch one-time code")
	}

	// Sink failures do not undo a registration that already persisted
	// and dispatched.
	if err := h.sink.Record(ctx, ActivityEvent{
		EventType:  ActivityEventRegistrationStarted,
		Email:      pending.Email,
		Metadata:   map[string]any{"code_expires_at": pending.CodeExpiresAt},
		OccurredAt: time.Now(),
	}); err != nil {
		defLogger{}.Warn("activity sink record error: %v", err)
	}

	if event.OnResponse != nil {
		event.OnResponse(&StartRegistrationResponse{
			Email:         pending.Email,
			CodeExpiresAt: pending.CodeExpiresAt,
		})
	}

	return nil
}

func requireRegistrationFields(event StartRegistrationMessage) error {
	missing := []string{}
	if event.FirstName == "" {
		missing = append(missing, "first_name")
	}
	if event.LastName == "" {
		missing = append(missing, "last_name")
	}
	if event.Email == "" || !isEmail(event.Email) {
		missing = append(missing, "email")
	}
	if event.Password == "" {
		missing = append(missing, "password")
	}
	if event.Country == "" {
		missing = append(missing, "country")
	}
	if event.State == "" {
		missing = append(missing, "state")
	}

	if len(missing) > 0 {
		return goerrors.New("missing required registration fields", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest).
			WithMetadata(map[string]any{"fields": missing})
	}

	return nil
}
