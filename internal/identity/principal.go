package identity

import "github.com/google/uuid"

// Principal is the authenticated caller the external identity provider
// vouches for. The core never mints or stores credentials itself (spec.md
// §6 Non-goals exclude account management); this is the whole shape a
// request handler needs from a bearer token.
type Principal struct {
	UserID  uuid.UUID `json:"user_id"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"is_admin"`
}
