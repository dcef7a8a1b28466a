// Package auth provides password hashing and session-token issuance for
// the API. It has no knowledge of HTTP or the database; the handlers
// compose it with the user store.
package auth

import "golang.org/x/crypto/bcrypt"

// PasswordService hashes and verifies passwords with bcrypt. The cost
// is injectable so tests can use the bcrypt minimum instead of paying
// the production work factor on every case.
type PasswordService struct {
	cost int
}

func NewPasswordService() *PasswordService {
	return &PasswordService{cost: bcrypt.DefaultCost}
}

// NewPasswordServiceWithCost is intended for tests.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash returns the bcrypt digest of plaintext. The digest embeds the
// salt and cost; store it as-is.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored digest. A
// malformed digest verifies false rather than erroring: the caller
// treats both the same way.
func (p *PasswordService) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
