package auth_test

import (
	"context"
	"database/sql"
	"time"

	auth "github.com/goliatone/go-admin-auth"
	"github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// MockConfig implements auth.Config
type MockConfig struct {
	SigningKey      string
	TokenExpiration int
	Issuer          string
	Audience        []string
}

func (m MockConfig) GetSigningKey() string    { return m.SigningKey }
func (m MockConfig) GetSigningMethod() string { return "HS256" }
func (m MockConfig) GetContextKey() string    { return "admin" }
func (m MockConfig) GetTokenExpiration() int {
	if m.TokenExpiration == 0 {
		return 1
	}
	return m.TokenExpiration
}
func (m MockConfig) GetTokenLookup() string { return "header:Authorization" }
func (m MockConfig) GetAuthScheme() string  { return "Bearer" }
func (m MockConfig) GetIssuer() string      { return m.Issuer }
func (m MockConfig) GetAudience() []string  { return m.Audience }

// MockIdentity implements auth.Identity
type MockIdentity struct {
	IDVal    string
	EmailVal string
	NameVal  string
}

func (m MockIdentity) ID() string    { return m.IDVal }
func (m MockIdentity) Email() string { return m.EmailVal }
func (m MockIdentity) Name() string  { return m.NameVal }

// MockLoginPayload implements auth.LoginPayload
type MockLoginPayload struct {
	Identifier string
	Password   string
}

func (m MockLoginPayload) GetIdentifier() string { return m.Identifier }
func (m MockLoginPayload) GetPassword() string   { return m.Password }

// MockAuthenticator implements auth.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, identifier, password string) (string, error) {
	args := m.Called(ctx, identifier, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthenticator) Impersonate(ctx context.Context, identifier string) (string, error) {
	args := m.Called(ctx, identifier)
	return args.String(0), args.Error(1)
}

func (m *MockAuthenticator) SessionFromToken(token string) (auth.Session, error) {
	args := m.Called(token)
	var session auth.Session
	if v := args.Get(0); v != nil {
		session = v.(auth.Session)
	}
	return session, args.Error(1)
}

func (m *MockAuthenticator) IdentityFromSession(ctx context.Context, session auth.Session) (auth.Identity, error) {
	args := m.Called(ctx, session)
	var identity auth.Identity
	if v := args.Get(0); v != nil {
		identity = v.(auth.Identity)
	}
	return identity, args.Error(1)
}

// MockIdentityProvider implements auth.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (auth.Identity, error) {
	args := m.Called(ctx, identifier, password)
	var identity auth.Identity
	if v := args.Get(0); v != nil {
		identity = v.(auth.Identity)
	}
	return identity, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (auth.Identity, error) {
	args := m.Called(ctx, identifier)
	var identity auth.Identity
	if v := args.Get(0); v != nil {
		identity = v.(auth.Identity)
	}
	return identity, args.Error(1)
}

// MockAdminTracker implements auth.AdminTracker for provider tests
type MockAdminTracker struct {
	mock.Mock
}

func (m *MockAdminTracker) GetByEmail(ctx context.Context, email string) (*auth.Admin, error) {
	args := m.Called(ctx, email)
	var admin *auth.Admin
	if v := args.Get(0); v != nil {
		admin = v.(*auth.Admin)
	}
	return admin, args.Error(1)
}

func (m *MockAdminTracker) TrackAttemptedLogin(ctx context.Context, admin *auth.Admin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *MockAdminTracker) TrackSuccessfulLogin(ctx context.Context, admin *auth.Admin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

// MockAdmins mocks the methods the handlers exercise. The embedded
// interface covers the remainder of the repository surface.
type MockAdmins struct {
	mock.Mock
	auth.Admins
}

func (m *MockAdmins) GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*auth.Admin, error) {
	args := m.Called(ctx, email)
	var admin *auth.Admin
	if v := args.Get(0); v != nil {
		admin = v.(*auth.Admin)
	}
	return admin, args.Error(1)
}

func (m *MockAdmins) ExistsByEmailTx(ctx context.Context, tx bun.IDB, email string) (bool, error) {
	args := m.Called(ctx, tx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockAdmins) CreateTx(ctx context.Context, tx bun.IDB, record *auth.Admin, criteria ...repository.InsertCriteria) (*auth.Admin, error) {
	args := m.Called(ctx, tx, record)
	if v := args.Get(0); v != nil {
		return v.(*auth.Admin), args.Error(1)
	}
	// echo the input so handlers that reuse the created record keep working
	return record, args.Error(1)
}

func (m *MockAdmins) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*auth.Admin, error) {
	args := m.Called(ctx, id)
	var admin *auth.Admin
	if v := args.Get(0); v != nil {
		admin = v.(*auth.Admin)
	}
	return admin, args.Error(1)
}

// MockPendingAdmins mocks the pending-registration store.
type MockPendingAdmins struct {
	mock.Mock
	auth.PendingAdmins
}

func (m *MockPendingAdmins) GetByEmail(ctx context.Context, email string) (*auth.PendingAdmin, error) {
	args := m.Called(ctx, email)
	var pending *auth.PendingAdmin
	if v := args.Get(0); v != nil {
		pending = v.(*auth.PendingAdmin)
	}
	return pending, args.Error(1)
}

func (m *MockPendingAdmins) ExistsByEmailTx(ctx context.Context, tx bun.IDB, email string) (bool, error) {
	args := m.Called(ctx, tx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockPendingAdmins) GetForConfirmationTx(ctx context.Context, tx bun.IDB, email, code string, now time.Time) (*auth.PendingAdmin, error) {
	args := m.Called(ctx, tx, email, code, now)
	var pending *auth.PendingAdmin
	if v := args.Get(0); v != nil {
		pending = v.(*auth.PendingAdmin)
	}
	return pending, args.Error(1)
}

func (m *MockPendingAdmins) CreateTx(ctx context.Context, tx bun.IDB, record *auth.PendingAdmin, criteria ...repository.InsertCriteria) (*auth.PendingAdmin, error) {
	args := m.Called(ctx, tx, record)
	if v := args.Get(0); v != nil {
		return v.(*auth.PendingAdmin), args.Error(1)
	}
	return record, args.Error(1)
}

func (m *MockPendingAdmins) DeleteByEmail(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockPendingAdmins) DeleteByEmailTx(ctx context.Context, tx bun.IDB, email string) error {
	args := m.Called(ctx, tx, email)
	return args.Error(0)
}

// MockRepositoryManager implements auth.RepositoryManager
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error { return nil }
func (m *MockRepositoryManager) MustValidate()   {}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	return args.Error(0)
}

func (m *MockRepositoryManager) Admins() auth.Admins {
	args := m.Called()
	return args.Get(0).(auth.Admins)
}

func (m *MockRepositoryManager) PendingAdmins() auth.PendingAdmins {
	args := m.Called()
	return args.Get(0).(auth.PendingAdmins)
}

// MockDispatcher implements auth.CodeDispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) DispatchCode(ctx context.Context, destination, code string) error {
	args := m.Called(ctx, destination, code)
	return args.Error(0)
}
