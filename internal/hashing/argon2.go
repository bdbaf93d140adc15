// Package hashing hashes and verifies channel passwords with argon2id.
//
// Hashes are encoded in the PHC string format used by the reference argon2
// implementations, so values written by other clients verify here and vice versa:
//
//	$argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
package hashing

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/netchat/netchat/internal/models"
)

// Params are the argon2id cost parameters.
type Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams are the parameters new hashes are written with.
var DefaultParams = Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

var errMalformed = errors.New("malformed encoded hash")

// Hasher hashes and verifies secrets. The zero value is not usable, use New.
type Hasher struct {
	params Params
}

// New creates a Hasher with the given parameters.
func New(p Params) *Hasher {
	return &Hasher{params: p}
}

// Hash returns the encoded argon2id hash of secret using a fresh random salt.
func (h *Hasher) Hash(secret string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", &models.HashingError{Op: "hash", Err: err}
	}

	key := argon2.IDKey([]byte(secret), salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory, h.params.Iterations, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether candidate matches the encoded hash. A mismatch is not
// an error; only a malformed encoding is.
func (h *Hasher) Verify(encoded, candidate string) (bool, error) {
	p, salt, key, err := decode(encoded)
	if err != nil {
		return false, &models.HashingError{Op: "verify", Err: err}
	}

	other := argon2.IDKey([]byte(candidate), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
	return subtle.ConstantTimeCompare(key, other) == 1, nil
}

func decode(encoded string) (Params, []byte, []byte, error) {
	var p Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return p, nil, nil, errMalformed
	}
	if parts[1] != "argon2id" {
		return p, nil, nil, fmt.Errorf("unsupported variant %q", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, errMalformed
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("unsupported version %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return p, nil, nil, errMalformed
	}
	if p.Memory == 0 || p.Iterations == 0 || p.Parallelism == 0 {
		return p, nil, nil, errMalformed
	}

	salt, err := base64.RawStdEncoding.Strict().DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, errMalformed
	}
	key, err := base64.RawStdEncoding.Strict().DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, errMalformed
	}

	p.SaltLength = uint32(len(salt))
	p.KeyLength = uint32(len(key))
	return p, salt, key, nil
}
