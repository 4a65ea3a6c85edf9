package auth

import "github.com/isdelr/inkwell-be/internal/apperr"

// Authorize decides whether principalID may mutate a resource owned by
// ownerID. It is a pure comparison with no side effects and must be called
// immediately before each mutation rather than cached across requests.
func Authorize(principalID, ownerID string) error {
	if principalID == "" || principalID != ownerID {
		return apperr.ErrForbidden
	}
	return nil
}
