package models

import "sort"

// Role is the single role carried by every portal account. Authorization is
// always explicit set membership, never inheritance between roles.
type Role string

const (
	RoleCitizen                        Role = "CITIZEN"
	RoleOfficer                        Role = "OFFICER"
	RoleDistrictCommissioner           Role = "DISTRICT_COMMISSIONER"
	RoleAdditionalDistrictCommissioner Role = "ADDITIONAL_DISTRICT_COMMISSIONER"
	RoleBlockDevelopmentOfficer        Role = "BLOCK_DEVELOPMENT_OFFICER"
	RoleGramPanchayatOfficer           Role = "GRAM_PANCHAYAT_OFFICER"
	RoleTehsildar                      Role = "TEHSILDAR"
	RoleSubDivisionalOfficer           Role = "SUB_DIVISIONAL_OFFICER"
	RoleHealthOfficer                  Role = "HEALTH_OFFICER"
	RoleEducationOfficer               Role = "EDUCATION_OFFICER"
	RoleRevenueOfficer                 Role = "REVENUE_OFFICER"
	RoleAgricultureOfficer             Role = "AGRICULTURE_OFFICER"
	RolePublicWorksOfficer             Role = "PUBLIC_WORKS_OFFICER"
	RolePoliceOfficer                  Role = "POLICE_OFFICER"
	RoleAdmin                          Role = "ADMIN"
)

// RoleSet is a closed membership set of roles.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

// Has reports whether the role is a member of the set.
func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// List returns the members in stable sorted order.
func (s RoleSet) List() []Role {
	roles := make([]Role, 0, len(s))
	for r := range s {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

// OfficerRoles returns the officer-tier role set: every staff designation
// that may enter the officer dashboard.
func OfficerRoles() RoleSet {
	return NewRoleSet(
		RoleOfficer,
		RoleDistrictCommissioner,
		RoleAdditionalDistrictCommissioner,
		RoleBlockDevelopmentOfficer,
		RoleGramPanchayatOfficer,
		RoleTehsildar,
		RoleSubDivisionalOfficer,
		RoleHealthOfficer,
		RoleEducationOfficer,
		RoleRevenueOfficer,
		RoleAgricultureOfficer,
		RolePublicWorksOfficer,
		RolePoliceOfficer,
		RoleAdmin,
	)
}

// AdminRoles returns the admin-equivalent roles allowed to approve or
// reject pending officer registrations.
func AdminRoles() RoleSet {
	return NewRoleSet(RoleAdmin, RoleDistrictCommissioner)
}

// IsOfficerTier reports whether the role belongs to government staff.
func (r Role) IsOfficerTier() bool {
	return OfficerRoles().Has(r)
}

// DefaultLanding returns the landing path appropriate to the role. A
// legitimate but misrouted user is sent here instead of an error page.
func (r Role) DefaultLanding() string {
	if r.IsOfficerTier() {
		return "/dashboard"
	}
	return "/citizen"
}
