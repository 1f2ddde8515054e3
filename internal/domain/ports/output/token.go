package ports

import model "yatube/internal/domain/models"

// TokenManager issues and verifies session tokens.
type TokenManager interface {
	Generate(user *model.User) (string, error)
	// Validate returns the user id carried by a valid, unexpired token.
	Validate(token string) (int64, error)
}
