package utils

import "golang.org/x/crypto/bcrypt"

// MinPasswordLen is the shortest plaintext password accepted anywhere a
// password is set. Enforced by callers, not here.
const MinPasswordLen = 6

// HashPassword returns a bcrypt hash using the given cost. bcrypt salts
// every call, so hashing the same plaintext twice yields different output.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password. A
// malformed hash is reported as a mismatch, never as an error.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
