package domain

import "errors"

// Role is the operator role for a console profile, ordered
// shop_admin < mall_admin < super_admin.
type Role string

const (
	RoleShopAdmin  Role = "shop_admin"
	RoleMallAdmin  Role = "mall_admin"
	RoleSuperAdmin Role = "super_admin"
)

// ParseRole returns the Role for s and true, or "" and false for unknown values.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleShopAdmin, RoleMallAdmin, RoleSuperAdmin:
		return Role(s), true
	default:
		return "", false
	}
}

// Level returns the rank of the role (shop_admin=1, mall_admin=2,
// super_admin=3). Unknown roles rank 0 so every comparison against them fails.
func (r Role) Level() int {
	switch r {
	case RoleShopAdmin:
		return 1
	case RoleMallAdmin:
		return 2
	case RoleSuperAdmin:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether r ranks at or above min. Unknown roles are never
// at least anything.
func (r Role) AtLeast(min Role) bool {
	lvl := r.Level()
	return lvl > 0 && lvl >= min.Level()
}

// Profile is the authenticated identity with its role and tenant binding.
type Profile struct {
	ID       int
	Username string
	FullName string
	Role     Role
	// MallID is the single mall a mall_admin or shop_admin is bound to; nil for super_admin.
	MallID *int
	// ShopID is the single shop a shop_admin is bound to; nil otherwise.
	ShopID *int
	// MallAccess and ShopAccess cache the tenant IDs this profile may view.
	// Derived from role and tenant binding; kept for fast lookups in screens.
	MallAccess []int
	ShopAccess []int
	// Active gates authentication; inactive profiles never log in.
	Active bool
}

// Validate checks the role/tenant invariant for persistence: super_admin has
// no tenant binding, mall_admin is bound to a mall only, shop_admin to both
// a mall and a shop.
func (p *Profile) Validate() error {
	if p.Username == "" {
		return errors.New("username is required")
	}
	switch p.Role {
	case RoleSuperAdmin:
		if p.MallID != nil || p.ShopID != nil {
			return errors.New("super_admin must not have a tenant binding")
		}
	case RoleMallAdmin:
		if p.MallID == nil {
			return errors.New("mall_admin requires mall_id")
		}
		if p.ShopID != nil {
			return errors.New("mall_admin must not have shop_id")
		}
	case RoleShopAdmin:
		if p.MallID == nil || p.ShopID == nil {
			return errors.New("shop_admin requires mall_id and shop_id")
		}
	default:
		return errors.New("unknown role")
	}
	return nil
}

// Clone returns a deep copy of the profile so callers can hand it out
// without exposing shared slices or tenant ID pointers.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.MallID = copyIntPtr(p.MallID)
	c.ShopID = copyIntPtr(p.ShopID)
	c.MallAccess = append([]int(nil), p.MallAccess...)
	c.ShopAccess = append([]int(nil), p.ShopAccess...)
	return &c
}

// HasMinimumRole reports whether the profile's role ranks at or above min.
// A nil profile fails closed.
func HasMinimumRole(p *Profile, min Role) bool {
	if p == nil {
		return false
	}
	return p.Role.AtLeast(min)
}

func copyIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
