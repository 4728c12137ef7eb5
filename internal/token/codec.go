// Package token encodes console profiles into portable session tokens and
// decodes them back. The format is a versioned, delimiter-separated payload
// wrapped in base64url. Tokens are reversible and carry no signature, so
// they must never be treated as proof of identity on their own; callers
// re-validate decoded claims against the directory before trusting them.
package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	profiledomain "mallops-console/internal/profile/domain"
)

// encoding is the outer wrapping for the delimited payload; raw URL-safe
// base64 keeps the token a single opaque string safe for headers and storage.
var encoding = base64.RawURLEncoding

const (
	formatVersion = "v1"
	delimiter     = "|"
	fieldCount    = 7
	// absentField marks a tenant ID that is nil for the profile's role.
	absentField = "-"
)

// DefaultTTL is the token lifetime when the codec is built with no explicit TTL.
const DefaultTTL = 24 * time.Hour

var (
	// ErrMalformedToken is returned by Decode for any token that is not a
	// well-formed v1 token: bad base64, wrong version, wrong field count,
	// non-integer IDs or timestamps, or an unknown role. There is a single
	// decode path; unknown formats are rejected outright, never guessed at.
	ErrMalformedToken = errors.New("malformed session token")
	// ErrUnencodableProfile is returned by Encode when a profile field would
	// collide with the wire delimiter.
	ErrUnencodableProfile = errors.New("profile cannot be encoded")
)

// Claims are the fields carried by a session token.
type Claims struct {
	ID       int
	Username string
	Role     profiledomain.Role
	MallID   *int
	ShopID   *int
	IssuedAt time.Time
}

// Codec encodes and decodes session tokens with a fixed lifetime.
type Codec struct {
	ttl time.Duration
}

// NewCodec returns a Codec with the given token lifetime. Non-positive TTLs
// fall back to DefaultTTL.
func NewCodec(ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{ttl: ttl}
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Encode serializes the profile's identity fields into a token issued now.
func (c *Codec) Encode(p *profiledomain.Profile) (string, error) {
	if p == nil {
		return "", ErrUnencodableProfile
	}
	return c.EncodeClaims(Claims{
		ID:       p.ID,
		Username: p.Username,
		Role:     p.Role,
		MallID:   p.MallID,
		ShopID:   p.ShopID,
		IssuedAt: time.Now().UTC(),
	})
}

// EncodeClaims serializes claims with an explicit issued-at. Used by Encode
// and by callers that need to mint tokens at a fixed instant.
func (c *Codec) EncodeClaims(claims Claims) (string, error) {
	if strings.Contains(claims.Username, delimiter) {
		return "", fmt.Errorf("%w: username contains %q", ErrUnencodableProfile, delimiter)
	}
	if _, ok := profiledomain.ParseRole(string(claims.Role)); !ok {
		return "", fmt.Errorf("%w: unknown role %q", ErrUnencodableProfile, claims.Role)
	}
	payload := strings.Join([]string{
		formatVersion,
		strconv.Itoa(claims.ID),
		claims.Username,
		string(claims.Role),
		encodeOptionalID(claims.MallID),
		encodeOptionalID(claims.ShopID),
		strconv.FormatInt(claims.IssuedAt.Unix(), 10),
	}, delimiter)
	return encoding.EncodeToString([]byte(payload)), nil
}

// Decode reverses Encode. It returns ErrMalformedToken for anything that is
// not a valid v1 token. Decode performs no expiry check and never consults
// the directory; see Expired and the authentication service for that.
func (c *Codec) Decode(token string) (*Claims, error) {
	raw, err := encoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return nil, ErrMalformedToken
	}
	fields := strings.Split(string(raw), delimiter)
	if len(fields) != fieldCount {
		return nil, ErrMalformedToken
	}
	if fields[0] != formatVersion {
		return nil, ErrMalformedToken
	}
	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, ErrMalformedToken
	}
	role, ok := profiledomain.ParseRole(fields[3])
	if !ok {
		return nil, ErrMalformedToken
	}
	mallID, err := decodeOptionalID(fields[4])
	if err != nil {
		return nil, ErrMalformedToken
	}
	shopID, err := decodeOptionalID(fields[5])
	if err != nil {
		return nil, ErrMalformedToken
	}
	issuedUnix, err := strconv.ParseInt(fields[6], 10, 64)
	if err != nil {
		return nil, ErrMalformedToken
	}
	return &Claims{
		ID:       id,
		Username: fields[2],
		Role:     role,
		MallID:   mallID,
		ShopID:   shopID,
		IssuedAt: time.Unix(issuedUnix, 0).UTC(),
	}, nil
}

// Expired reports whether the claims were issued more than the codec TTL
// before now.
func (c *Codec) Expired(claims *Claims, now time.Time) bool {
	if claims == nil {
		return true
	}
	return now.Sub(claims.IssuedAt) > c.ttl
}

func encodeOptionalID(v *int) string {
	if v == nil {
		return absentField
	}
	return strconv.Itoa(*v)
}

func decodeOptionalID(s string) (*int, error) {
	if s == absentField {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
