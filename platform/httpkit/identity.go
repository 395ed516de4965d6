package httpkit

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OperatorID returns the authenticated operator's id from the request
// context. The second return is false on unauthenticated routes.
func OperatorID(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := c.Get(ContextOperatorIDKey)
	if !ok {
		return uuid.Nil, false
	}

	id, ok := raw.(uuid.UUID)
	return id, ok
}

// OperatorRoles returns the roles embedded in the operator's token.
func OperatorRoles(c *gin.Context) []string {
	raw, ok := c.Get(ContextRolesKey)
	if !ok {
		return nil
	}

	roles, _ := raw.([]string)
	return roles
}

// OperatorHasRole reports whether the operator's token carries the role.
func OperatorHasRole(c *gin.Context, role string) bool {
	for _, item := range OperatorRoles(c) {
		if item == role {
			return true
		}
	}
	return false
}
