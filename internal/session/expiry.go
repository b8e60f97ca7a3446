package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry returns the expiry timestamp encoded in a token, when the
// token happens to be a JWT carrying one.
//
// Access tokens are opaque to the client; this does not verify anything and
// is only used for UX, such as warning that a saved token is stale before
// trying it. The server stays authoritative and will reject with a 401 if
// needed.
func TokenExpiry(token string) (time.Time, bool) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// TokenSubject returns the subject claim of a JWT token, when there is one.
// Same caveats as TokenExpiry: unverified, UX only.
func TokenSubject(token string) (string, bool) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return "", false
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", false
	}
	return sub, true
}

// TokenExpired reports whether a saved token is provably expired. Opaque
// tokens without a readable expiry are never considered expired here.
func TokenExpired(token string, now time.Time) bool {
	exp, ok := TokenExpiry(token)
	if !ok {
		return false
	}
	return !now.Before(exp)
}
