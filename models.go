package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Admin is a durable, login capable administrator account. Records are
// only ever created by promoting a PendingAdmin after code confirmation.
type Admin struct {
	bun.BaseModel  `bun:"table:admins,alias:adm"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	FirstName      string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName       string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	Email          string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash   string     `bun:"password_hash,notnull" json:"-"`
	Whatsapp       string     `bun:"whatsapp" json:"whatsapp,omitempty"`
	Country        string     `bun:"country,notnull" json:"country,omitempty"`
	State          string     `bun:"state,notnull" json:"state,omitempty"`
	ProfilePicture string     `bun:"profile_picture" json:"profile_picture,omitempty"`
	LoginAttempts  int        `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt     *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	VerifiedAt     *time.Time `bun:"verified_at,nullzero,default:current_timestamp" json:"verified_at,omitempty"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// PendingAdmin is a registration attempt awaiting proof of address
// ownership. At most one row exists per email; the row is deleted on
// promotion. The code is stored in clear because it has to be compared, it
// expires within CodeTTL.
type PendingAdmin struct {
	bun.BaseModel `bun:"table:pending_admins,alias:padm"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	FirstName     string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Whatsapp      string     `bun:"whatsapp" json:"whatsapp,omitempty"`
	Country       string     `bun:"country,notnull" json:"country,omitempty"`
	State         string     `bun:"state,notnull" json:"state,omitempty"`
	Code          string     `bun:"code,notnull" json:"-"`
	CodeExpiresAt time.Time  `bun:"code_expires_at,notnull" json:"code_expires_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Promote builds the durable Admin record from a confirmed pending entry.
// The code and its expiry never cross over.
func (p *PendingAdmin) Promote() *Admin {
	now := time.Now()
	return &Admin{
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		Whatsapp:     p.Whatsapp,
		Country:      p.Country,
		State:        p.State,
		VerifiedAt:   &now,
	}
}

// CodeMatches reports whether the submitted code matches and is unexpired.
func (p *PendingAdmin) CodeMatches(code string, now time.Time) bool {
	if p == nil || code == "" {
		return false
	}
	return p.Code == code && now.Before(p.CodeExpiresAt)
}

// NormalizeEmail lowercases and trims an email so both stores key admins
// case insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
