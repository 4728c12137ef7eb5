package domain

import "testing"

func intPtr(v int) *int { return &v }

func TestRoleOrdering(t *testing.T) {
	if !RoleSuperAdmin.AtLeast(RoleMallAdmin) {
		t.Error("super_admin should rank at least mall_admin")
	}
	if !RoleMallAdmin.AtLeast(RoleShopAdmin) {
		t.Error("mall_admin should rank at least shop_admin")
	}
	if RoleShopAdmin.AtLeast(RoleMallAdmin) {
		t.Error("shop_admin should not rank at least mall_admin")
	}
	if !RoleShopAdmin.AtLeast(RoleShopAdmin) {
		t.Error("a role should rank at least itself")
	}
}

func TestUnknownRoleFailsClosed(t *testing.T) {
	unknown := Role("auditor")
	if unknown.Level() != 0 {
		t.Errorf("unknown role level = %d, want 0", unknown.Level())
	}
	if unknown.AtLeast(RoleShopAdmin) {
		t.Error("unknown role should never pass a minimum-role check")
	}
	// Even against another unknown role.
	if unknown.AtLeast(Role("auditor")) {
		t.Error("unknown role compared to itself should fail")
	}
}

func TestParseRole(t *testing.T) {
	if r, ok := ParseRole("mall_admin"); !ok || r != RoleMallAdmin {
		t.Errorf("ParseRole(mall_admin) = %q, %v", r, ok)
	}
	if _, ok := ParseRole("MALL_ADMIN"); ok {
		t.Error("ParseRole should be case-sensitive")
	}
	if _, ok := ParseRole(""); ok {
		t.Error("ParseRole should reject empty string")
	}
}

func TestHasMinimumRoleNilProfile(t *testing.T) {
	if HasMinimumRole(nil, RoleShopAdmin) {
		t.Error("nil profile should fail every role check")
	}
}

func TestValidateTenantBinding(t *testing.T) {
	cases := []struct {
		name    string
		p       Profile
		wantErr bool
	}{
		{"super admin unbound", Profile{Username: "root", Role: RoleSuperAdmin}, false},
		{"super admin with mall", Profile{Username: "root", Role: RoleSuperAdmin, MallID: intPtr(3)}, true},
		{"mall admin bound", Profile{Username: "m", Role: RoleMallAdmin, MallID: intPtr(3)}, false},
		{"mall admin unbound", Profile{Username: "m", Role: RoleMallAdmin}, true},
		{"mall admin with shop", Profile{Username: "m", Role: RoleMallAdmin, MallID: intPtr(3), ShopID: intPtr(30)}, true},
		{"shop admin bound", Profile{Username: "s", Role: RoleShopAdmin, MallID: intPtr(6), ShopID: intPtr(6)}, false},
		{"shop admin missing shop", Profile{Username: "s", Role: RoleShopAdmin, MallID: intPtr(6)}, true},
		{"unknown role", Profile{Username: "x", Role: Role("auditor")}, true},
		{"missing username", Profile{Role: RoleSuperAdmin}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.p.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	p := &Profile{
		ID:         5,
		Username:   "shop6",
		Role:       RoleShopAdmin,
		MallID:     intPtr(6),
		ShopID:     intPtr(6),
		MallAccess: []int{6},
		ShopAccess: []int{6},
		Active:     true,
	}
	c := p.Clone()

	*c.MallID = 99
	c.ShopAccess[0] = 99
	if *p.MallID != 6 {
		t.Error("Clone shares the MallID pointer")
	}
	if p.ShopAccess[0] != 6 {
		t.Error("Clone shares the ShopAccess slice")
	}

	var nilP *Profile
	if nilP.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}
