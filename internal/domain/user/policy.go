package user

// Principal is the authenticated caller reconstructed from the bearer
// token. All role checks in the services go through it; handlers only use
// it for coarse route gating.
type Principal struct {
	UserID string
	Role   Role
	TeamID *string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// HasTeam reports whether the principal carries a team assignment. A
// manager without a team has all manager-scoped capabilities disabled.
func (p Principal) HasTeam() bool {
	return p.TeamID != nil && *p.TeamID != ""
}

// CanApprove reports whether the principal may approve or reject a
// request submitted by a user on submitterTeamID.
func (p Principal) CanApprove(submitterTeamID *string) bool {
	if p.IsAdmin() {
		return true
	}
	if p.Role != RoleManager || !p.HasTeam() {
		return false
	}
	return submitterTeamID != nil && *submitterTeamID == *p.TeamID
}

// CanViewUser reports whether the principal may read the target user.
func (p Principal) CanViewUser(target *User) bool {
	if p.IsAdmin() {
		return true
	}
	if p.Role != RoleManager || !p.HasTeam() {
		return false
	}
	return target.TeamID != nil && *target.TeamID == *p.TeamID
}

// CanViewTeamScope reports whether the principal may read team-scoped
// aggregates for teamID.
func (p Principal) CanViewTeamScope(teamID string) bool {
	if p.IsAdmin() {
		return true
	}
	if p.Role != RoleManager || !p.HasTeam() {
		return false
	}
	return *p.TeamID == teamID
}

// CanViewCompanyScope reports whether the principal may read
// company-wide aggregates.
func (p Principal) CanViewCompanyScope() bool {
	return p.IsAdmin()
}
