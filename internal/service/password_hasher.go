package service

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/plano-treino/pkg/config"
)

// PasswordHasher turns a chosen password into its stored form and checks
// candidates against it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(stored, candidate string) bool
}

// PlaintextHasher stores passwords as typed, which is what existing data
// files contain. Comparison is exact string equality.
type PlaintextHasher struct{}

func (PlaintextHasher) Hash(password string) (string, error) {
	return password, nil
}

func (PlaintextHasher) Verify(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

// BcryptHasher stores salted bcrypt hashes. Enabling it on a directory that
// already holds plaintext passwords locks those accounts out until they are
// reset.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h BcryptHasher) Verify(stored, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
}

// NewPasswordHasher picks the hasher for a CREDENTIAL_MODE value.
func NewPasswordHasher(mode string) (PasswordHasher, error) {
	switch mode {
	case "", config.CredentialPlaintext:
		return PlaintextHasher{}, nil
	case config.CredentialBcrypt:
		return BcryptHasher{}, nil
	default:
		return nil, fmt.Errorf("unknown credential mode %q", mode)
	}
}
