package jwt

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/andressep95/estate-admin/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformedToken = errors.New("malformed token")
	ErrEmptyToken     = errors.New("empty token")
)

// Decoder reads the payload of a signed token without verifying the
// signature. The result is advisory; the backend is the only verifier.
type Decoder struct {
	parser *jwt.Parser
}

func NewDecoder() *Decoder {
	return &Decoder{
		parser: jwt.NewParser(),
	}
}

// Decode parses the token payload into claims. Only a token whose payload
// cannot be split, base64-decoded or JSON-parsed is an error; time claims
// of the wrong type are left unset.
func (d *Decoder) Decode(tokenString string) (*domain.TokenClaims, error) {
	if tokenString == "" {
		return nil, ErrEmptyToken
	}

	mapClaims := jwt.MapClaims{}
	_, _, err := d.parser.ParseUnverified(tokenString, mapClaims)
	// An unknown or missing alg only matters for verification, the payload
	// has already been decoded at that point.
	if err != nil && !errors.Is(err, jwt.ErrTokenUnverifiable) {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	sub, _ := mapClaims.GetSubject()

	claims := &domain.TokenClaims{
		ExpiresAt: numericDate(mapClaims["exp"]),
		IssuedAt:  numericDate(mapClaims["iat"]),
		Subject:   sub,
		Raw:       map[string]any(mapClaims),
	}
	claims.Email, _ = mapClaims["email"].(string)
	claims.Role, _ = mapClaims["role"].(string)

	return claims, nil
}

// IsExpired reports whether the token must be treated as expired at now.
// Undecodable tokens are expired. A missing, null, zero or non-numeric exp
// never expires. Otherwise the token expires once exp < now + skew.
func (d *Decoder) IsExpired(tokenString string, now time.Time, skew time.Duration) bool {
	claims, err := d.Decode(tokenString)
	if err != nil {
		return true
	}
	if !claims.HasExpiry() {
		return false
	}
	return claims.ExpiresAt.Before(now.Add(skew))
}

// numericDate reads a NumericDate claim leniently. Anything that is not a
// usable number of seconds yields nil.
func numericDate(v any) *time.Time {
	var seconds float64
	switch n := v.(type) {
	case float64:
		seconds = n
	case int64:
		seconds = float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return nil
		}
		seconds = f
	default:
		return nil
	}
	if seconds == 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return nil
	}

	sec, frac := math.Modf(seconds)
	t := time.Unix(int64(sec), int64(frac*1e9))
	return &t
}
