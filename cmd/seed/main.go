// Command seed populates the account directory with development fixtures.
// With DATABASE_URL set it writes to Postgres, otherwise it writes the YAML
// account table at USERS_FILE. Seeding is idempotent.
package main

import (
	"context"
	"log"
	"os"

	"mallops-console/internal/config"
	"mallops-console/internal/db"
	directorydomain "mallops-console/internal/directory/domain"
	"mallops-console/internal/directory/repository"
	profiledomain "mallops-console/internal/profile/domain"
	"mallops-console/internal/security"
)

// Development-only password shared by every seeded account.
const devPassword = "mallops-dev"

type seedAccount struct {
	id       int
	username string
	fullName string
	role     profiledomain.Role
	mallID   *int
	shopID   *int
	active   bool
}

func intPtr(v int) *int { return &v }

var (
	seedMalls = []directorydomain.Mall{
		{ID: 3, Name: "Central Galleria"},
		{ID: 6, Name: "Riverside Mall"},
		{ID: 7, Name: "Northgate"},
	}

	seedShops = []directorydomain.Shop{
		{ID: 30, MallID: 3, Name: "Atrium Books"},
		{ID: 31, MallID: 3, Name: "Galleria Coffee"},
		{ID: 6, MallID: 6, Name: "Riverside Outfitters"},
		{ID: 7, MallID: 7, Name: "Northgate Electronics"},
	}

	seedAccounts = []seedAccount{
		{id: 1, username: "admin", fullName: "Platform Admin", role: profiledomain.RoleSuperAdmin, active: true},
		{id: 2, username: "galleria", fullName: "Galleria Operator", role: profiledomain.RoleMallAdmin, mallID: intPtr(3), active: true},
		{id: 3, username: "riverside", fullName: "Riverside Operator", role: profiledomain.RoleMallAdmin, mallID: intPtr(6), active: true},
		{id: 4, username: "northgate", fullName: "Northgate Operator", role: profiledomain.RoleMallAdmin, mallID: intPtr(7), active: true},
		{id: 5, username: "shop6", fullName: "Riverside Outfitters Manager", role: profiledomain.RoleShopAdmin, mallID: intPtr(6), shopID: intPtr(6), active: true},
		{id: 6, username: "suspended", fullName: "Suspended Operator", role: profiledomain.RoleMallAdmin, mallID: intPtr(3), active: false},
	}
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	hasher := security.NewHasher(cfg.EffectiveBcryptCost())
	hash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hashing seed password: %v", err)
	}

	if cfg.DatabaseURL != "" {
		seedPostgres(cfg.DatabaseURL, hash)
		return
	}
	seedYAML(cfg.UsersFile, hash)
}

func seedPostgres(dsn, hash string) {
	ctx := context.Background()
	conn, err := db.Open(dsn)
	if err != nil {
		log.Fatalf("directory database: %v", err)
	}
	defer conn.Close()

	repo := repository.NewPostgres(conn)

	existing, err := repo.GetAccountByUsername(ctx, seedAccounts[0].username)
	if err != nil {
		log.Fatalf("checking existing seed data: %v", err)
	}
	if existing != nil {
		log.Println("directory already seeded, nothing to do")
		return
	}

	for _, m := range seedMalls {
		mall := m
		if err := repo.CreateMall(ctx, &mall); err != nil {
			log.Fatalf("seeding mall %d: %v", m.ID, err)
		}
	}
	for _, s := range seedShops {
		shop := s
		if err := repo.CreateShop(ctx, &shop); err != nil {
			log.Fatalf("seeding shop %d: %v", s.ID, err)
		}
	}
	for _, a := range seedAccounts {
		acct := toAccount(a, hash)
		if err := repo.CreateAccount(ctx, acct); err != nil {
			log.Fatalf("seeding account %q: %v", a.username, err)
		}
	}
	log.Printf("seeded %d malls, %d shops, %d accounts", len(seedMalls), len(seedShops), len(seedAccounts))
}

func seedYAML(path, hash string) {
	if _, err := os.Stat(path); err == nil {
		log.Printf("%s already exists, nothing to do", path)
		return
	}

	table := &repository.Table{}
	for _, m := range seedMalls {
		table.Malls = append(table.Malls, repository.TableMall{ID: m.ID, Name: m.Name})
	}
	for _, s := range seedShops {
		table.Shops = append(table.Shops, repository.TableShop{ID: s.ID, MallID: s.MallID, Name: s.Name})
	}
	for _, a := range seedAccounts {
		table.Accounts = append(table.Accounts, repository.TableAccount{
			ID:           a.id,
			Username:     a.username,
			FullName:     a.fullName,
			Role:         string(a.role),
			MallID:       a.mallID,
			ShopID:       a.shopID,
			Active:       a.active,
			PasswordHash: hash,
		})
	}

	if err := repository.WriteTable(path, table); err != nil {
		log.Fatalf("writing %s: %v", path, err)
	}
	log.Printf("wrote %s with %d accounts (password %q)", path, len(seedAccounts), devPassword)
}

func toAccount(a seedAccount, hash string) *directorydomain.Account {
	return &directorydomain.Account{
		Profile: profiledomain.Profile{
			ID:       a.id,
			Username: a.username,
			FullName: a.fullName,
			Role:     a.role,
			MallID:   a.mallID,
			ShopID:   a.shopID,
			Active:   a.active,
		},
		PasswordHash: hash,
	}
}
