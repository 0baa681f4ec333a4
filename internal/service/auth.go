package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/projectdesk/internal/model"
	"github.com/iliyamo/projectdesk/internal/queue"
	"github.com/iliyamo/projectdesk/internal/repository"
	"github.com/iliyamo/projectdesk/internal/utils"
)

// Password length bounds.  bcrypt refuses input longer than MaxPasswordLen
// bytes.
const (
	MinPasswordLen = 6
	MaxPasswordLen = 72
)

// UserStore is the part of the credential store the authenticator needs.
type UserStore interface {
	CreateWithLink(ctx context.Context, u *model.User) error
	GetByHandle(ctx context.Context, handle string) (model.User, error)
}

// Authenticator registers users, checks credentials and issues or verifies
// identity tokens.  All settings are fixed at construction.
type Authenticator struct {
	Users      UserStore
	Secret     string
	TTL        time.Duration
	BcryptCost int
	Events     Publisher

	// decoy is compared against when the handle is unknown so both login
	// failures cost one bcrypt comparison.
	decoyOnce sync.Once
	decoy     string
}

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Name     string
	Surname  string
	Handle   string
	Password string
	RoleID   uint64
}

func (in RegisterInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return invalid("name", "is required")
	case strings.TrimSpace(in.Surname) == "":
		return invalid("surname", "is required")
	case strings.TrimSpace(in.Handle) == "":
		return invalid("handle", "is required")
	case len(in.Password) < MinPasswordLen:
		return invalid("password", "must be at least 6 characters")
	case len(in.Password) > MaxPasswordLen:
		return invalid("password", "must be at most 72 bytes")
	case in.RoleID == 0:
		return invalid("roleId", "is required")
	}
	return nil
}

// Register creates the user together with its role link and returns a token
// for the new account.  A taken handle yields repository.ErrHandleExists and
// an unknown role repository.ErrRoleNotFound.
func (a *Authenticator) Register(ctx context.Context, in RegisterInput) (utils.AccessToken, error) {
	if err := in.validate(); err != nil {
		return utils.AccessToken{}, err
	}
	hash, err := utils.HashPassword(in.Password, a.BcryptCost)
	if err != nil {
		return utils.AccessToken{}, errors.Wrap(err, "hash password")
	}
	u := &model.User{
		Name:         strings.TrimSpace(in.Name),
		Surname:      strings.TrimSpace(in.Surname),
		Handle:       strings.TrimSpace(in.Handle),
		PasswordHash: hash,
		RoleID:       in.RoleID,
	}
	if err := a.Users.CreateWithLink(ctx, u); err != nil {
		return utils.AccessToken{}, err
	}
	Publish(a.Events, queue.AuditEvent{Kind: queue.KindUserRegistered, UserID: u.ID, Handle: u.Handle, RoleID: u.RoleID})
	return a.issue(model.Identity{UserID: u.ID, Handle: u.Handle, RoleID: u.RoleID})
}

// Login issues a token for a matching active account.  The password is
// checked before the status flag.
func (a *Authenticator) Login(ctx context.Context, handle, password string) (utils.AccessToken, error) {
	u, err := a.Users.GetByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			utils.VerifyPassword(a.decoyHash(), password)
			return utils.AccessToken{}, ErrInvalidCredentials
		}
		return utils.AccessToken{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return utils.AccessToken{}, ErrInvalidCredentials
	}
	if !u.Active() {
		return utils.AccessToken{}, ErrInactiveAccount
	}
	return a.issue(model.Identity{UserID: u.ID, Handle: u.Handle, RoleID: u.RoleID})
}

// Verify decodes a token into the identity it carries.  It performs no I/O
// and fails with utils.ErrInvalidToken.
func (a *Authenticator) Verify(raw string) (model.Identity, error) {
	claims, err := utils.ParseAccessToken(a.Secret, raw)
	if err != nil {
		return model.Identity{}, err
	}
	return claims.Identity(), nil
}

// decoyHash returns a hash of a random secret at the configured cost.
func (a *Authenticator) decoyHash() string {
	a.decoyOnce.Do(func() {
		h, err := utils.HashPassword(uuid.NewString(), a.BcryptCost)
		if err != nil {
			log.WithError(err).Error("auth: decoy hash")
			return
		}
		a.decoy = h
	})
	return a.decoy
}

func (a *Authenticator) issue(id model.Identity) (utils.AccessToken, error) {
	ttl := a.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	tok, err := utils.NewAccessToken(a.Secret, id, ttl)
	return tok, errors.Wrap(err, "issue token")
}
