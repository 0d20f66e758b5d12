package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	// SaveHashCost es el factor que usa el flujo de guardado de usuarios.
	SaveHashCost = 5
	// ManualHashCost es el factor de la herramienta manual cmd/hashpw.
	ManualHashCost = 8
)

// PasswordHasher hashea y verifica passwords con bcrypt a un costo fijo.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Cost() int {
	return h.cost
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify devuelve false sin error cuando el password no coincide;
// un hash mal formado si devuelve error.
func (h *PasswordHasher) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
