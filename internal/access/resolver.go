// Package access computes which malls and shops a profile may see. All
// functions are pure over an in-memory tenant snapshot; screens call them on
// every render without triggering I/O.
package access

import (
	"sort"

	profiledomain "mallops-console/internal/profile/domain"
)

// Universe is an immutable snapshot of the tenant directory: every known
// mall and the shops each mall contains.
type Universe struct {
	Malls       []int
	ShopsByMall map[int][]int
}

// AllShops returns every shop ID in the universe, sorted.
func (u Universe) AllShops() []int {
	var out []int
	for _, shops := range u.ShopsByMall {
		out = append(out, shops...)
	}
	sort.Ints(out)
	return out
}

// AccessibleMalls returns the mall IDs visible to the profile, sorted.
// super_admin sees the full universe; mall_admin and shop_admin see the
// single mall they are bound to. Nil profiles and unknown roles see nothing.
func AccessibleMalls(u Universe, p *profiledomain.Profile) []int {
	if p == nil {
		return nil
	}
	switch p.Role {
	case profiledomain.RoleSuperAdmin:
		out := append([]int(nil), u.Malls...)
		sort.Ints(out)
		return out
	case profiledomain.RoleMallAdmin:
		if len(p.MallAccess) > 0 {
			out := append([]int(nil), p.MallAccess...)
			sort.Ints(out)
			return out
		}
		if p.MallID != nil {
			return []int{*p.MallID}
		}
		return nil
	case profiledomain.RoleShopAdmin:
		if p.MallID != nil {
			return []int{*p.MallID}
		}
		return nil
	default:
		return nil
	}
}

// AccessibleShops returns the shop IDs visible to the profile, sorted.
// mall_admin shops are computed from the universe on every call so that a
// shop added to the mall becomes visible without re-authentication.
// shop_admin sees exactly its one shop, never more.
func AccessibleShops(u Universe, p *profiledomain.Profile) []int {
	if p == nil {
		return nil
	}
	switch p.Role {
	case profiledomain.RoleSuperAdmin:
		return u.AllShops()
	case profiledomain.RoleMallAdmin:
		if p.MallID == nil {
			return nil
		}
		out := append([]int(nil), u.ShopsByMall[*p.MallID]...)
		sort.Ints(out)
		return out
	case profiledomain.RoleShopAdmin:
		if p.ShopID != nil {
			return []int{*p.ShopID}
		}
		return nil
	default:
		return nil
	}
}

// CanAccessMall reports whether the profile may act on the given mall.
// Fails closed on nil profiles and unknown roles.
func CanAccessMall(u Universe, p *profiledomain.Profile, mallID int) bool {
	for _, id := range AccessibleMalls(u, p) {
		if id == mallID {
			return true
		}
	}
	return false
}

// CanAccessShop reports whether the profile may act on the given shop.
// Fails closed on nil profiles and unknown roles.
func CanAccessShop(u Universe, p *profiledomain.Profile, shopID int) bool {
	for _, id := range AccessibleShops(u, p) {
		if id == shopID {
			return true
		}
	}
	return false
}

// Filter returns the subset of requested IDs the profile may access,
// preserving request order. Used by screens to pre-filter fetches.
func Filter(allowed []int, requested []int) []int {
	set := make(map[int]struct{}, len(allowed))
	for _, id := range allowed {
		set[id] = struct{}{}
	}
	var out []int
	for _, id := range requested {
		if _, ok := set[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
