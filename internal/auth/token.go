package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/openshelf/review-platform/internal/model"
)

// AccessToken represents a signed JWT access token along with its expiry.
// Access tokens are the only credential: there is no refresh token and no
// server-side revocation list.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// Claims is the identity carried by a parsed access token.
type Claims struct {
	UserID      uint64
	Role        model.Role
	IsSuperuser bool
}

// NewAccessToken builds and signs an HS256 JWT for a user. The JWT carries
// the subject (sub), role, superuser flag (su), expiration (exp) and issued
// at (iat).
func NewAccessToken(secret string, userID uint64, role model.Role, superuser bool, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"su":   superuser,
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

var errInvalidToken = errors.New("invalid token")

// ParseAccessToken validates the signature and shape of a raw token and
// returns its claims. The signing method must be HMAC; tokens signed with
// anything else are rejected.
func ParseAccessToken(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, errInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errInvalidToken
	}

	var out Claims
	switch sub := mc["sub"].(type) {
	case float64:
		out.UserID = uint64(sub)
	case string:
		n, err := strconv.ParseUint(sub, 10, 64)
		if err != nil {
			return Claims{}, errInvalidToken
		}
		out.UserID = n
	default:
		return Claims{}, errInvalidToken
	}
	roleStr, _ := mc["role"].(string)
	role, err := model.ParseRole(roleStr)
	if err != nil {
		return Claims{}, errInvalidToken
	}
	out.Role = role
	out.IsSuperuser, _ = mc["su"].(bool)
	return out, nil
}
