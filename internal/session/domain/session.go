package domain

import (
	"time"

	profiledomain "mallops-console/internal/profile/domain"
)

// Session pairs the current token with its cached profile in durable
// storage. The authentication service owns its lifecycle exclusively.
type Session struct {
	Profile *profiledomain.Profile
	Token   string
	SavedAt time.Time
}
