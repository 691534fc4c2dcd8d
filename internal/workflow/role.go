package workflow

// Role is a departmental role. Values are the exact strings stored by the
// template and user-role tables.
type Role string

const (
	RoleAdmin               Role = "Admin"
	RoleClerk               Role = "Clerk"
	RoleSectionOfficer      Role = "Section Officer"
	RoleUnderSecretary      Role = "Under Secretary"
	RoleDeputySecretary     Role = "Deputy Secretary"
	RoleJointSecretary      Role = "Joint Secretary"
	RoleAdditionalSecretary Role = "Additional Secretary"
	RoleSecretary           Role = "Secretary"
)

// Admin has authority 0: it manages files but never approves or skips levels.
var authority = map[Role]int{
	RoleAdmin:               0,
	RoleClerk:               1,
	RoleSectionOfficer:      2,
	RoleUnderSecretary:      3,
	RoleDeputySecretary:     4,
	RoleJointSecretary:      5,
	RoleAdditionalSecretary: 6,
	RoleSecretary:           7,
}

// Roles lists the known roles in ascending authority.
func Roles() []Role {
	return []Role{
		RoleAdmin,
		RoleClerk,
		RoleSectionOfficer,
		RoleUnderSecretary,
		RoleDeputySecretary,
		RoleJointSecretary,
		RoleAdditionalSecretary,
		RoleSecretary,
	}
}

// ParseRole maps a stored role string to a Role. ok is false for strings
// outside the table; the returned Role still carries the raw value.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	_, ok := authority[r]
	return r, ok
}

func (r Role) Valid() bool {
	_, ok := authority[r]
	return ok
}

func (r Role) String() string {
	return string(r)
}

// AuthorityOf returns the authority of role, 0 for unknown roles.
func AuthorityOf(r Role) int {
	return authority[r]
}

// AuthorityAtLeast reports whether a is at least as senior as b.
func AuthorityAtLeast(a, b Role) bool {
	return AuthorityOf(a) >= AuthorityOf(b)
}
