package auth

import (
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// PinHasher hashes and verifies account pins with bcrypt.
type PinHasher struct {
	cost int
}

// NewPinHasher creates a PinHasher. Costs outside bcrypt's range fall back
// to bcrypt.DefaultCost.
func NewPinHasher(cost int) *PinHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PinHasher{cost: cost}
}

// Hash returns the bcrypt hash of pin's decimal form.
func (h *PinHasher) Hash(pin int) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(strconv.Itoa(pin)), h.cost)
}

// VerifyPin reports whether pin matches hash.
func (h *PinHasher) VerifyPin(hash []byte, pin int) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(strconv.Itoa(pin))) == nil
}
