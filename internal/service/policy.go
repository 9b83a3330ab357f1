package service

import "agora/internal/models"

const msgNotOwner = "You do not have permission to perform this action."

// RequireOwner rejects userID unless it owns the resource owned by ownerID.
// Callers check existence first so NotFound wins over Unauthorized.
func RequireOwner(ownerID, userID uint) error {
	if userID == 0 || ownerID != userID {
		return models.NewUnauthorizedError(msgNotOwner)
	}
	return nil
}
