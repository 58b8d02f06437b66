package auth

import "context"

// AuthVerifier resuelve un bearer token a la identidad del caller.
// Cualquier error se responde como 401 "token failed".
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
