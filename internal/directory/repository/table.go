package repository

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mallops-console/internal/directory/domain"
	profiledomain "mallops-console/internal/profile/domain"
)

// Table is the YAML form of the directory: per-environment user lists and
// the tenant catalog are configuration data, not code.
type Table struct {
	Malls    []TableMall    `yaml:"malls"`
	Shops    []TableShop    `yaml:"shops"`
	Accounts []TableAccount `yaml:"accounts"`
}

type TableMall struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

type TableShop struct {
	ID     int    `yaml:"id"`
	MallID int    `yaml:"mall_id"`
	Name   string `yaml:"name"`
}

type TableAccount struct {
	ID           int    `yaml:"id"`
	Username     string `yaml:"username"`
	FullName     string `yaml:"full_name"`
	Role         string `yaml:"role"`
	MallID       *int   `yaml:"mall_id,omitempty"`
	ShopID       *int   `yaml:"shop_id,omitempty"`
	Active       bool   `yaml:"active"`
	PasswordHash string `yaml:"password_hash"`
}

// LoadTable reads and parses the YAML account table at path.
func LoadTable(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("account table: %w", err)
	}
	var t Table
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("account table: %w", err)
	}
	return &t, nil
}

// WriteTable marshals the table to YAML at path. Used by cmd/seed.
func WriteTable(path string, t *Table) error {
	raw, err := yaml.Marshal(t)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

// NewMemoryFromTable builds an in-memory repository from the table,
// validating every account profile.
func NewMemoryFromTable(t *Table) (*Memory, error) {
	m := NewMemory()
	ctx := context.Background()
	for i := range t.Malls {
		mall := domain.Mall{ID: t.Malls[i].ID, Name: t.Malls[i].Name}
		if err := m.CreateMall(ctx, &mall); err != nil {
			return nil, err
		}
	}
	for i := range t.Shops {
		shop := domain.Shop{ID: t.Shops[i].ID, MallID: t.Shops[i].MallID, Name: t.Shops[i].Name}
		if err := m.CreateShop(ctx, &shop); err != nil {
			return nil, err
		}
	}
	for i := range t.Accounts {
		ta := t.Accounts[i]
		role, ok := profiledomain.ParseRole(ta.Role)
		if !ok {
			return nil, fmt.Errorf("account table: account %q has unknown role %q", ta.Username, ta.Role)
		}
		acct := domain.Account{
			Profile: profiledomain.Profile{
				ID:       ta.ID,
				Username: ta.Username,
				FullName: ta.FullName,
				Role:     role,
				MallID:   ta.MallID,
				ShopID:   ta.ShopID,
				Active:   ta.Active,
			},
			PasswordHash: ta.PasswordHash,
		}
		if err := acct.Profile.Validate(); err != nil {
			return nil, fmt.Errorf("account table: account %q: %w", ta.Username, err)
		}
		if err := m.CreateAccount(ctx, &acct); err != nil {
			return nil, err
		}
	}
	return m, nil
}
