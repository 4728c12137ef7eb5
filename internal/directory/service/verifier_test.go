package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	directorydomain "mallops-console/internal/directory/domain"
	"mallops-console/internal/directory/repository"
	profiledomain "mallops-console/internal/profile/domain"
	"mallops-console/internal/security"
)

func intPtr(v int) *int { return &v }

// bcrypt's minimum cost keeps the tests fast.
const testCost = 4

func newTestVerifier(t *testing.T) (*Verifier, *repository.Memory) {
	t.Helper()
	ctx := context.Background()
	repo := repository.NewMemory()

	for _, m := range []directorydomain.Mall{
		{ID: 3, Name: "Central Galleria"},
		{ID: 6, Name: "Riverside Mall"},
	} {
		mall := m
		if err := repo.CreateMall(ctx, &mall); err != nil {
			t.Fatal(err)
		}
	}
	for _, s := range []directorydomain.Shop{
		{ID: 30, MallID: 3, Name: "Atrium Books"},
		{ID: 31, MallID: 3, Name: "Galleria Coffee"},
		{ID: 6, MallID: 6, Name: "Riverside Outfitters"},
	} {
		shop := s
		if err := repo.CreateShop(ctx, &shop); err != nil {
			t.Fatal(err)
		}
	}

	hasher := security.NewHasher(testCost)
	hash, err := hasher.Hash([]byte("correct-horse"))
	if err != nil {
		t.Fatal(err)
	}
	accounts := []directorydomain.Account{
		{
			Profile:      profiledomain.Profile{ID: 1, Username: "admin", Role: profiledomain.RoleSuperAdmin, Active: true},
			PasswordHash: hash,
		},
		{
			Profile:      profiledomain.Profile{ID: 2, Username: "galleria", Role: profiledomain.RoleMallAdmin, MallID: intPtr(3), Active: true},
			PasswordHash: hash,
		},
		{
			Profile:      profiledomain.Profile{ID: 5, Username: "shop6", Role: profiledomain.RoleShopAdmin, MallID: intPtr(6), ShopID: intPtr(6), Active: true},
			PasswordHash: hash,
		},
		{
			Profile:      profiledomain.Profile{ID: 6, Username: "suspended", Role: profiledomain.RoleMallAdmin, MallID: intPtr(3), Active: false},
			PasswordHash: hash,
		},
	}
	for _, a := range accounts {
		acct := a
		if err := repo.CreateAccount(ctx, &acct); err != nil {
			t.Fatal(err)
		}
	}

	return NewVerifier(repo, hasher, 0), repo
}

func TestVerifySuccess(t *testing.T) {
	v, _ := newTestVerifier(t)

	p, err := v.Verify(context.Background(), "shop6", "correct-horse")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if p.Username != "shop6" || p.Role != profiledomain.RoleShopAdmin {
		t.Errorf("profile = %+v", p)
	}
	if !reflect.DeepEqual(p.MallAccess, []int{6}) || !reflect.DeepEqual(p.ShopAccess, []int{6}) {
		t.Errorf("access caches = %v / %v, want [6] / [6]", p.MallAccess, p.ShopAccess)
	}
}

func TestVerifyHydratesMallAdminShops(t *testing.T) {
	v, _ := newTestVerifier(t)

	p, err := v.Verify(context.Background(), "galleria", "correct-horse")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !reflect.DeepEqual(p.MallAccess, []int{3}) {
		t.Errorf("MallAccess = %v, want [3]", p.MallAccess)
	}
	if len(p.ShopAccess) != 2 {
		t.Errorf("ShopAccess = %v, want the mall's two shops", p.ShopAccess)
	}
}

func TestVerifyCaseInsensitiveUsername(t *testing.T) {
	v, _ := newTestVerifier(t)

	p, err := v.Verify(context.Background(), "SHOP6", "correct-horse")
	if err != nil {
		t.Fatalf("Verify with uppercase username: %v", err)
	}
	if p.Username != "shop6" {
		t.Errorf("Username = %q, want canonical %q", p.Username, "shop6")
	}
}

func TestVerifyUnknownUser(t *testing.T) {
	v, _ := newTestVerifier(t)

	if _, err := v.Verify(context.Background(), "ghost", "whatever"); !errors.Is(err, ErrUnknownUser) {
		t.Errorf("err = %v, want ErrUnknownUser", err)
	}
}

func TestVerifyWrongPassword(t *testing.T) {
	v, _ := newTestVerifier(t)

	if _, err := v.Verify(context.Background(), "shop6", "wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("err = %v, want ErrInvalidPassword", err)
	}
}

func TestVerifyInactiveCheckedAfterPassword(t *testing.T) {
	v, _ := newTestVerifier(t)
	ctx := context.Background()

	// Wrong password on an inactive account reports the password error, not
	// the account status.
	if _, err := v.Verify(ctx, "suspended", "wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("wrong password on inactive account: err = %v, want ErrInvalidPassword", err)
	}
	if _, err := v.Verify(ctx, "suspended", "correct-horse"); !errors.Is(err, ErrInactiveAccount) {
		t.Errorf("correct password on inactive account: err = %v, want ErrInactiveAccount", err)
	}
}

func TestLookup(t *testing.T) {
	v, _ := newTestVerifier(t)
	ctx := context.Background()

	p, err := v.Lookup(ctx, "suspended")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if p == nil || p.Active {
		t.Errorf("Lookup should return inactive accounts as-is, got %+v", p)
	}

	p, err = v.Lookup(ctx, "ghost")
	if err != nil {
		t.Fatalf("Lookup unknown: %v", err)
	}
	if p != nil {
		t.Errorf("Lookup of unknown user = %+v, want nil", p)
	}
}

func TestUniverse(t *testing.T) {
	v, _ := newTestVerifier(t)

	u, err := v.Universe(context.Background())
	if err != nil {
		t.Fatalf("Universe: %v", err)
	}
	if len(u.Malls) != 2 {
		t.Errorf("Malls = %v, want 2 entries", u.Malls)
	}
	if len(u.ShopsByMall[3]) != 2 || len(u.ShopsByMall[6]) != 1 {
		t.Errorf("ShopsByMall = %v", u.ShopsByMall)
	}
}

func TestVerifyReturnsDefensiveCopy(t *testing.T) {
	v, repo := newTestVerifier(t)
	ctx := context.Background()

	p, err := v.Verify(ctx, "shop6", "correct-horse")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	*p.MallID = 99
	p.Username = "mutated"

	again, err := repo.GetAccountByUsername(ctx, "shop6")
	if err != nil {
		t.Fatal(err)
	}
	if again == nil || *again.Profile.MallID != 6 || again.Profile.Username != "shop6" {
		t.Errorf("directory record mutated through the returned profile: %+v", again)
	}
}
