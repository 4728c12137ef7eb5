package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"mallops-console/internal/access"
	"mallops-console/internal/directory/domain"
	profiledomain "mallops-console/internal/profile/domain"
	"mallops-console/internal/security"
)

// Sentinel errors for credential verification. The console collapses the
// first two into one generic message so usernames cannot be enumerated; the
// typed values stay available at the service boundary.
var (
	ErrUnknownUser     = errors.New("unknown user")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInactiveAccount = errors.New("account is inactive")
)

// AccountRepo is the minimal directory repository needed by the verifier.
type AccountRepo interface {
	GetAccountByUsername(ctx context.Context, username string) (*domain.Account, error)
	ListMalls(ctx context.Context) ([]domain.Mall, error)
	ListShops(ctx context.Context) ([]domain.Shop, error)
}

// Verifier checks credentials against the account directory and exposes the
// tenant universe. It is constructed explicitly and injected; there is no
// package-level registry.
type Verifier struct {
	repo   AccountRepo
	hasher *security.Hasher
	// delay simulates directory round-trip latency on Verify, matching the
	// behavior of the hosted directory the console talks to in production.
	delay time.Duration
}

// NewVerifier returns a Verifier over the given repository. delay may be
// zero to disable the simulated latency (tests).
func NewVerifier(repo AccountRepo, hasher *security.Hasher, delay time.Duration) *Verifier {
	return &Verifier{repo: repo, hasher: hasher, delay: delay}
}

// Verify authenticates username/password. Username lookup is
// case-insensitive. The active flag is checked only after the password
// matches. On success it returns a defensive copy of the profile with its
// tenant access caches populated; the password verifier never leaves the
// directory.
func (v *Verifier) Verify(ctx context.Context, username, password string) (*profiledomain.Profile, error) {
	if v.delay > 0 {
		select {
		case <-time.After(v.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	acct, err := v.repo.GetAccountByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, ErrUnknownUser
	}
	if err := v.hasher.Compare(acct.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidPassword
	}
	if !acct.Profile.Active {
		return nil, ErrInactiveAccount
	}
	p := acct.Profile.Clone()
	if err := v.hydrateAccess(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Lookup returns the current profile for username, or nil when the account
// no longer exists. Used at session restoration to re-resolve the active
// flag from the authoritative directory instead of trusting cached claims.
func (v *Verifier) Lookup(ctx context.Context, username string) (*profiledomain.Profile, error) {
	acct, err := v.repo.GetAccountByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, nil
	}
	p := acct.Profile.Clone()
	if err := v.hydrateAccess(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Universe returns the tenant snapshot for the access resolver.
func (v *Verifier) Universe(ctx context.Context) (access.Universe, error) {
	malls, err := v.repo.ListMalls(ctx)
	if err != nil {
		return access.Universe{}, err
	}
	shops, err := v.repo.ListShops(ctx)
	if err != nil {
		return access.Universe{}, err
	}
	u := access.Universe{ShopsByMall: make(map[int][]int, len(malls))}
	for _, m := range malls {
		u.Malls = append(u.Malls, m.ID)
	}
	for _, s := range shops {
		u.ShopsByMall[s.MallID] = append(u.ShopsByMall[s.MallID], s.ID)
	}
	return u, nil
}

// hydrateAccess fills the MallAccess/ShopAccess caches from the role and
// tenant binding. super_admin keeps them empty: its access is the whole
// universe and is resolved per call.
func (v *Verifier) hydrateAccess(ctx context.Context, p *profiledomain.Profile) error {
	switch p.Role {
	case profiledomain.RoleShopAdmin:
		if p.MallID != nil {
			p.MallAccess = []int{*p.MallID}
		}
		if p.ShopID != nil {
			p.ShopAccess = []int{*p.ShopID}
		}
	case profiledomain.RoleMallAdmin:
		if p.MallID == nil {
			return nil
		}
		p.MallAccess = []int{*p.MallID}
		u, err := v.Universe(ctx)
		if err != nil {
			return err
		}
		p.ShopAccess = append([]int(nil), u.ShopsByMall[*p.MallID]...)
	}
	return nil
}
