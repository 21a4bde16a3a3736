package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type ConfirmRegistrationMessage struct {
	Email      string `json:"email"`
	Code       string `json:"code"`
	OnResponse func(*ConfirmRegistrationResponse)
}

func (e ConfirmRegistrationMessage) Type() string { return "admin.registration_confirm" }

type ConfirmRegistrationResponse struct {
	Admin *Admin `json:"admin"`
}

// ConfirmRegistrationHandler drives the Pending -> Verified transition.
// The lookup matches email, code, and expiry at once, and the fetched row is
// checked again before promotion; any miss is the same uniform rejection.
// Promotion and pending cleanup share one transaction,
// so a second confirm with the same code can never succeed twice.
type ConfirmRegistrationHandler struct {
	repo RepositoryManager
	sink ActivitySink
}

func NewConfirmRegistrationHandler(repo RepositoryManager) *ConfirmRegistrationHandler {
	return &ConfirmRegistrationHandler{repo: repo, sink: noopActivitySink{}}
}

// WithActivitySink configures an ActivitySink for emitting registration events.
func (h *ConfirmRegistrationHandler) WithActivitySink(sink ActivitySink) *ConfirmRegistrationHandler {
	h.sink = normalizeActivitySink(sink)
	return h
}

func (h *ConfirmRegistrationHandler) Execute(ctx context.Context, event ConfirmRegistrationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during registration confirmation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ConfirmRegistrationHandler) execute(ctx context.Context, event ConfirmRegistrationMessage) error {
	admin := &Admin{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now()

		pending, err := h.repo.PendingAdmins().GetForConfirmationTx(ctx, tx, event.Email, event.Code, now)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrCodeInvalidOrExpired
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve pending registration")
		}

		// promotion requires the fetched row itself to carry a live matching code
		if !pending.CodeMatches(event.Code, now) {
			return ErrCodeInvalidOrExpired
		}

		if admin, err = h.repo.Admins().CreateTx(ctx, tx, pending.Promote()); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not promote pending registration")
		}

		if err := h.repo.PendingAdmins().DeleteByEmailTx(ctx, tx, pending.Email); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to remove pending registration")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "registration confirmation transaction failed")
	}

	if err := h.sink.Record(ctx, ActivityEvent{
		EventType:  ActivityEventRegistrationConfirmed,
		AdminID:    admin.ID.String(),
		Email:      admin.Email,
		OccurredAt: time.Now(),
	}); err != nil {
		defLogger{}.Warn("activity sink record error: %v", err)
	}

	if event.OnResponse != nil {
		event.OnResponse(&ConfirmRegistrationResponse{Admin: admin})
	}

	return nil
}
