package auth_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	auth "github.com/goliatone/go-admin-auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func validRegistration() auth.StartRegistrationMessage {
	return auth.StartRegistrationMessage{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "password123",
		Whatsapp:  "+14155552671",
		Country:   "UK",
		State:     "London",
	}
}

// expectTxPassthrough makes RunInTx invoke the given function with a zero
// transaction, mirroring how the real manager delegates.
func expectTxPassthrough(t *testing.T, repo *MockRepositoryManager) {
	t.Helper()
	repo.On("RunInTx", mock.Anything, (*sql.TxOptions)(nil), mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) {
			fn := args.Get(2).(func(context.Context, bun.Tx) error)
			var tx bun.Tx
			require.NoError(t, fn(args.Get(0).(context.Context), tx))
		}).Once()
}

func TestStartRegistration(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	admins := &MockAdmins{}
	pendings := &MockPendingAdmins{}
	dispatcher := &MockDispatcher{}

	repo.On("Admins").Return(admins)
	repo.On("PendingAdmins").Return(pendings)
	expectTxPassthrough(t, repo)

	admins.On("ExistsByEmailTx", mock.Anything, mock.Anything, "ada@example.com").
		Return(false, nil).Once()
	pendings.On("ExistsByEmailTx", mock.Anything, mock.Anything, "ada@example.com").
		Return(false, nil).Once()

	var storedCode string
	pendings.On("CreateTx", mock.Anything, mock.Anything, mock.AnythingOfType("*auth.PendingAdmin")).
		Return(nil, nil).
		Run(func(args mock.Arguments) {
			record := args.Get(2).(*auth.PendingAdmin)
			storedCode = record.Code

			assert.Len(t, record.Code, 6)
			assert.True(t, record.CodeExpiresAt.After(time.Now()))
			assert.NotEqual(t, "password123", record.PasswordHash)
			assert.NoError(t, auth.ComparePasswordAndHash("password123", record.PasswordHash))
		}).Once()

	dispatcher.On("DispatchCode", mock.Anything, "ada@example.com", mock.AnythingOfType("string")).
		Return(nil).
		Run(func(args mock.Arguments) {
			assert.Equal(t, storedCode, args.String(2))
		}).Once()

	var response *auth.StartRegistrationResponse
	event := validRegistration()
	event.OnResponse = func(r *auth.StartRegistrationResponse) { response = r }

	handler := auth.NewStartRegistrationHandler(repo, dispatcher)
	err := handler.Execute(ctx, event)
	assert.NoError(t, err)

	assert.NotNil(t, response)
	assert.Equal(t, "ada@example.com", response.Email)

	repo.AssertExpectations(t)
	admins.AssertExpectations(t)
	pendings.AssertExpectations(t)
	dispatcher.AssertExpectations(t)
}

func TestStartRegistrationConflictVerified(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	admins := &MockAdmins{}
	dispatcher := &MockDispatcher{}

	repo.On("Admins").Return(admins)
	admins.On("ExistsByEmailTx", mock.Anything, mock.Anything, "ada@example.com").
		Return(true, nil).Once()

	repo.On("RunInTx", mock.Anything, (*sql.TxOptions)(nil), mock.Anything).
		Return(auth.ErrRegistrationConflict).
		Run(func(args mock.Arguments) {
			fn := args.Get(2).(func(context.Context, bun.Tx) error)
			var tx bun.Tx
			err := fn(args.Get(0).(context.Context), tx)
			assert.ErrorIs(t, err, auth.ErrRegistrationConflict)
		}).Once()

	handler := auth.NewStartRegistrationHandler(repo, dispatcher)
	err := handler.Execute(ctx, validRegistration())
	assert.ErrorIs(t, err, auth.ErrRegistrationConflict)

	dispatcher.AssertNotCalled(t, "DispatchCode", mock.Anything, mock.Anything, mock.Anything)
}

func TestStartRegistrationConflictPending(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	admins := &MockAdmins{}
	pendings := &MockPendingAdmins{}
	dispatcher := &MockDispatcher{}

	repo.On("Admins").Return(admins)
	repo.On("PendingAdmins").Return(pendings)

	admins.On("ExistsByEmailTx", mock.Anything, mock.Anything, "ada@example.com").
		Return(false, nil).Once()
	pendings.On("ExistsByEmailTx", mock.Anything, mock.Anything, "ada@example.com").
		Return(true, nil).Once()

	repo.On("RunInTx", mock.Anything, (*sql.TxOptions)(nil), mock.Anything).
		Return(auth.ErrRegistrationConflict).
		Run(func(args mock.Arguments) {
			fn := args.Get(2).(func(context.Context, bun.Tx) error)
			var tx bun.Tx
			err := fn(args.Get(0).(context.Context), tx)
			assert.ErrorIs(t, err, auth.ErrRegistrationConflict)
		}).Once()

	handler := auth.NewStartRegistrationHandler(repo, dispatcher)
	err := handler.Execute(ctx, validRegistration())
	assert.ErrorIs(t, err, auth.ErrRegistrationConflict)

	dispatcher.AssertNotCalled(t, "DispatchCode", mock.Anything, mock.Anything, mock.Anything)
}

func TestStartRegistrationMissingFields(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	dispatcher := &MockDispatcher{}

	event := validRegistration()
	event.Email = "not-an-email"
	event.Password = ""

	handler := auth.NewStartRegistrationHandler(repo, dispatcher)
	err := handler.Execute(ctx, event)

	var richErr *goerrors.Error
	assert.ErrorAs(t, err, &richErr)
	assert.Equal(t, goerrors.CategoryValidation, richErr.Category)

	fields, ok := richErr.Metadata["fields"].([]string)
	assert.True(t, ok)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")

	// no store call happens before validation passes
	repo.AssertNotCalled(t, "RunInTx", mock.Anything, mock.Anything, mock.Anything)
}

// A failed dispatch compensates the pending write so the address is
// immediately retryable instead of locked behind a code nobody received.
func TestStartRegistrationDispatchFailureCompensates(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	admins := &MockAdmins{}
	pendings := &MockPendingAdmins{}
	dispatcher := &MockDispatcher{}

	repo.On("Admins").Return(admins)
	repo.On("PendingAdmins").Return(pendings)
	expectTxPassthrough(t, repo)

	admins.On("ExistsByEmailTx", mock.Anything, mock.Anything, "ada@example.com").
		Return(false, nil).Once()
	pendings.On("ExistsByEmailTx", mock.Anything, mock.Anything, "ada@example.com").
		Return(false, nil).Once()
	pendings.On("CreateTx", mock.Anything, mock.Anything, mock.AnythingOfType("*auth.PendingAdmin")).
		Return(nil, nil).Once()

	dispatcher.On("DispatchCode", mock.Anything, "ada@example.com", mock.AnythingOfType("string")).
		Return(assert.AnError).Once()
	pendings.On("DeleteByEmail", mock.Anything, "ada@example.com").
		Return(nil).Once()

	handler := auth.NewStartRegistrationHandler(repo, dispatcher)
	err := handler.Execute(ctx, validRegistration())
	assert.Error(t, err)

	pendings.AssertCalled(t, "DeleteByEmail", mock.Anything, "ada@example.com")
}

func TestStartRegistrationCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	handler := auth.NewStartRegistrationHandler(&MockRepositoryManager{}, &MockDispatcher{})
	err := handler.Execute(ctx, validRegistration())
	assert.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
