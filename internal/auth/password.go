package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password using bcrypt with the given cost.
func HashPassword(pw string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	return string(b), err
}

// CheckPassword compares a bcrypt hash with a candidate plaintext password.
func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// decoyHash is compared against when no user matches, so unknown emails
// cost one bcrypt comparison at the same cost as stored hashes.
type decoyHash struct {
	cost int
	once sync.Once
	hash []byte
}

func newDecoyHash(cost int) *decoyHash { return &decoyHash{cost: cost} }

func (d *decoyHash) get() []byte {
	d.once.Do(func() {
		d.hash, _ = bcrypt.GenerateFromPassword([]byte("mvpy-dummy-password"), d.cost)
	})
	return d.hash
}

func (d *decoyHash) compare(pw string) {
	_ = bcrypt.CompareHashAndPassword(d.get(), []byte(pw))
}
