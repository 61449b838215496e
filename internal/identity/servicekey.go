package identity

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// serviceKeyCost is the bcrypt cost factor the startup strength check
// hashes at. The resulting hash is discarded after the round trip; it is
// not stored anywhere.
const serviceKeyCost = bcrypt.DefaultCost

// ValidateServiceKeyStrength rejects a service/admin key short enough that
// the identity provider relationship is effectively unauthenticated. Keys
// under 16 characters (including an empty key) are rejected by an explicit
// length check; the key is then bcrypt-hashed and round-tripped, and any
// error bcrypt returns for it is reported. bcrypt itself has no
// minimum-length rule.
func ValidateServiceKeyStrength(serviceKey string) error {
	if len(serviceKey) < 16 {
		return fmt.Errorf("identity service key must be at least 16 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(serviceKey), serviceKeyCost)
	if err != nil {
		return fmt.Errorf("failed to validate identity service key: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(serviceKey)); err != nil {
		return fmt.Errorf("identity service key failed strength validation: %w", err)
	}

	return nil
}
