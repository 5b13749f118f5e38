package command

import "github.com/inkleaf/journal/internal/models"

// CanAccess is the single authorization predicate for entry operations:
// admins can touch any entry, everyone else only their own.
func CanAccess(principal models.Principal, entry *models.Entry) bool {
	return principal.Role == models.RoleAdmin || entry.OwnerID == principal.UserID
}
