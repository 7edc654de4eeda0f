package auth

import "flightbooking/internal/model"

// Echo context keys set by the authentication middleware.
const (
	// ClaimsKey holds the verified *Claims of the bearer token.
	ClaimsKey = "claims"
	// PrincipalKey holds the authenticated *Principal.
	PrincipalKey = "principal"
)

// Principal is the acting user of a request, refreshed from storage so role
// and name reflect the current state rather than the token snapshot.
type Principal struct {
	ID      uint
	Email   string
	Name    string
	Role    model.Role
	TokenID string
}

// NewPrincipal builds a principal from a stored user.
func NewPrincipal(user *model.User, tokenID string) *Principal {
	return &Principal{
		ID:      user.ID,
		Email:   user.Email,
		Name:    user.Name,
		Role:    user.Role,
		TokenID: tokenID,
	}
}

// IsAdmin reports whether the principal has the admin role.
func (p *Principal) IsAdmin() bool {
	return p.Role == model.RoleAdmin
}

// HasRole reports whether the principal holds any of roles.
func (p *Principal) HasRole(roles ...model.Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// CanAccess reports whether the principal may act on a resource owned by ownerID.
func (p *Principal) CanAccess(ownerID uint) bool {
	return p.IsAdmin() || p.ID == ownerID
}
