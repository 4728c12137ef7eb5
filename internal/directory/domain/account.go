package domain

import (
	profiledomain "mallops-console/internal/profile/domain"
)

// Account is a directory record: a console profile plus its password
// verifier. The verifier never leaves the directory packages.
type Account struct {
	Profile      profiledomain.Profile
	PasswordHash string
}

// Mall is a tenant mall known to the directory.
type Mall struct {
	ID   int
	Name string
}

// Shop is a tenant shop inside a mall.
type Shop struct {
	ID     int
	MallID int
	Name   string
}
