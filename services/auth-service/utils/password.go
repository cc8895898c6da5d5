package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const (
	SchemePBKDF2SHA256 = "pbkdf2_sha256"
	SchemeBcrypt       = "bcrypt"

	pbkdf2Prefix  = "$pbkdf2-sha256$"
	pbkdf2SaltLen = 16
	pbkdf2KeyLen  = 32
)

var (
	ErrUnsupportedScheme = errors.New("unsupported password hash scheme")
	// ErrPasswordTooLong is returned by the bcrypt scheme for passwords over 72 bytes.
	ErrPasswordTooLong = bcrypt.ErrPasswordTooLong
)

type HasherConfig struct {
	Scheme       string
	PBKDF2Rounds int
	BcryptCost   int
}

// PasswordHasher hashes new passwords with the configured scheme and verifies
// hashes produced by any supported scheme.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify never fails loudly: a mismatch or an unreadable hash is false.
	Verify(password, hash string) bool
	// NeedsRehash reports whether hash was produced with other settings than
	// the current ones.
	NeedsRehash(hash string) bool
	// SimulateVerify costs as much as a real Verify. Use it when there is no
	// stored hash to compare against.
	SimulateVerify(password string)
}

type passwordHasher struct {
	cfg   HasherConfig
	dummy string
}

func NewPasswordHasher(cfg HasherConfig) (PasswordHasher, error) {
	switch cfg.Scheme {
	case SchemePBKDF2SHA256:
		if cfg.PBKDF2Rounds <= 0 {
			return nil, fmt.Errorf("pbkdf2 rounds must be positive, got %d", cfg.PBKDF2Rounds)
		}
	case SchemeBcrypt:
		if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost must be within [%d, %d], got %d", bcrypt.MinCost, bcrypt.MaxCost, cfg.BcryptCost)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, cfg.Scheme)
	}

	h := &passwordHasher{cfg: cfg}
	dummy, err := h.Hash("arktutor-timing-equaliser")
	if err != nil {
		return nil, err
	}
	h.dummy = dummy
	return h, nil
}

func (h *passwordHasher) Hash(password string) (string, error) {
	if h.cfg.Scheme == SchemeBcrypt {
		b, err := bcrypt.GenerateFromPassword([]byte(password), h.cfg.BcryptCost)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	salt := make([]byte, pbkdf2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), salt, h.cfg.PBKDF2Rounds, pbkdf2KeyLen, sha256.New)
	return pbkdf2Prefix + strconv.Itoa(h.cfg.PBKDF2Rounds) + "$" + ab64Encode(salt) + "$" + ab64Encode(key), nil
}

func (h *passwordHasher) Verify(password, hash string) bool {
	switch {
	case strings.HasPrefix(hash, pbkdf2Prefix):
		return verifyPBKDF2(password, hash)
	case isBcrypt(hash):
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	default:
		return false
	}
}

func (h *passwordHasher) NeedsRehash(hash string) bool {
	switch h.cfg.Scheme {
	case SchemeBcrypt:
		if !isBcrypt(hash) {
			return true
		}
		cost, err := bcrypt.Cost([]byte(hash))
		return err != nil || cost != h.cfg.BcryptCost
	default:
		rounds, _, _, err := parsePBKDF2(hash)
		return err != nil || rounds != h.cfg.PBKDF2Rounds
	}
}

func (h *passwordHasher) SimulateVerify(password string) {
	_ = h.Verify(password, h.dummy)
}

func verifyPBKDF2(password, hash string) bool {
	rounds, salt, want, err := parsePBKDF2(hash)
	if err != nil {
		return false
	}
	got := pbkdf2.Key([]byte(password), salt, rounds, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}

// parsePBKDF2 reads $pbkdf2-sha256$<rounds>$<salt>$<checksum>.
func parsePBKDF2(hash string) (int, []byte, []byte, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 5 || parts[0] != "" || "$"+parts[1]+"$" != pbkdf2Prefix {
		return 0, nil, nil, errors.New("malformed pbkdf2 hash")
	}
	rounds, err := strconv.Atoi(parts[2])
	if err != nil || rounds <= 0 {
		return 0, nil, nil, errors.New("malformed pbkdf2 rounds")
	}
	salt, err := ab64Decode(parts[3])
	if err != nil {
		return 0, nil, nil, err
	}
	sum, err := ab64Decode(parts[4])
	if err != nil || len(sum) == 0 {
		return 0, nil, nil, errors.New("malformed pbkdf2 checksum")
	}
	return rounds, salt, sum, nil
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}

// ab64 is unpadded standard base64 with "." in place of "+", as written by
// passlib.
func ab64Encode(b []byte) string {
	return strings.ReplaceAll(base64.RawStdEncoding.EncodeToString(b), "+", ".")
}

func ab64Decode(s string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(strings.ReplaceAll(s, ".", "+"))
}
