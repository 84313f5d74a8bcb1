package security

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptSHA256Prefix marks bcrypt hashes of the base64 SHA-256 digest of the
// password. bcrypt reads at most 72 bytes; the digest is 44, so every
// password length hashes and verifies. Unprefixed bcrypt hashes are legacy
// and still verify against the raw password.
const bcryptSHA256Prefix = "$bcrypt-sha256$"

// Supported password hash algorithms. The algorithm of an existing hash is
// detected from its prefix, so stored hashes keep verifying after the
// configured algorithm changes.
const (
	AlgoBcrypt   = "bcrypt"
	AlgoArgon2id = "argon2id"
)

// Hasher hashes and verifies passwords. New hashes use Algo; verification
// accepts both bcrypt and argon2id encodings. Callers must not log or persist
// plaintext passwords.
type Hasher struct {
	Algo string
	Cost int
}

// NewHasher returns a bcrypt Hasher with the given cost (4–31).
func NewHasher(cost int) *Hasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{Algo: AlgoBcrypt, Cost: cost}
}

// NewHasherWithAlgo is NewHasher with an explicit algorithm for new hashes.
// Unknown algorithms fall back to bcrypt.
func NewHasherWithAlgo(algo string, cost int) *Hasher {
	h := NewHasher(cost)
	if algo == AlgoArgon2id {
		h.Algo = AlgoArgon2id
	}
	return h
}

// Hash produces a salted one-way hash of password suitable for storage.
func (h *Hasher) Hash(password string) (string, error) {
	if h.Algo == AlgoArgon2id {
		return hashArgon2id(password)
	}
	b, err := bcrypt.GenerateFromPassword(prehash(password), h.Cost)
	if err != nil {
		return "", err
	}
	return bcryptSHA256Prefix + string(b), nil
}

func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// Verify reports whether password matches the stored hash. Malformed or
// unsupported hashes never match.
func (h *Hasher) Verify(password, hash string) bool {
	if strings.HasPrefix(hash, "$argon2id$") {
		ok, err := verifyArgon2id(password, hash)
		return err == nil && ok
	}
	if rest, ok := strings.CutPrefix(hash, bcryptSHA256Prefix); ok {
		return bcrypt.CompareHashAndPassword([]byte(rest), prehash(password)) == nil
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NeedsRehash reports whether hash was made with a different algorithm or
// bcrypt cost than h would use now. Legacy unprefixed bcrypt hashes always
// need a rehash. Callers may re-hash after a successful Verify.
func (h *Hasher) NeedsRehash(hash string) bool {
	isArgon := strings.HasPrefix(hash, "$argon2id$")
	if h.Algo == AlgoArgon2id {
		return !isArgon
	}
	if isArgon {
		return true
	}
	rest, ok := strings.CutPrefix(hash, bcryptSHA256Prefix)
	if !ok {
		return true
	}
	cost, err := bcrypt.Cost([]byte(rest))
	return err != nil || cost != h.Cost
}
