package enums

// UserRole is the platform role carried in access tokens.
type UserRole string

const (
	UserRoleCustomer UserRole = "CUSTOMER"
	UserRoleAdmin    UserRole = "ADMIN"
)

var userRoles = []UserRole{UserRoleCustomer, UserRoleAdmin}

func (r UserRole) String() string { return string(r) }

func (r UserRole) IsValid() bool { return member(userRoles, r) }

func ParseUserRole(value string) (UserRole, error) { return parse(userRoles, value, "user role") }
