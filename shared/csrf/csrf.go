// Package csrf holds the double-submit tokens that guard the frontend's forms: login,
// posts, boarding card actions and modal confirmations.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
)

const TokenLength = 32 // bytes

var encodedLength = base64.RawURLEncoding.EncodedLen(TokenLength)

func GenerateToken() (string, error) {
	buf := make([]byte, TokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// WellFormed reports whether token could have come from GenerateToken. A cookie that fails
// this is replaced instead of reused.
func WellFormed(token string) bool {
	if len(token) != encodedLength {
		return false
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	return err == nil && len(raw) == TokenLength
}

// ValidateToken compares the cookie token with the submitted one in constant time.
func ValidateToken(cookieToken, formToken string) bool {
	if cookieToken == "" || formToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookieToken), []byte(formToken)) == 1
}
