package auth

// Role is the account role returned by the storefront API.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the two storefront roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Session is the credential triple persisted for the current client context.
// The JSON field names are the storage keys.
type Session struct {
	Token  string `json:"token"`
	Role   Role   `json:"role"`
	UserID string `json:"userId"`
}

// Valid reports whether all three fields are present and the role is known.
func (s Session) Valid() bool {
	return s.Token != "" && s.UserID != "" && s.Role.Valid()
}

// Principal is the identity a guard or view acts on, derived once per read.
type Principal int

const (
	Anonymous Principal = iota
	User
	Admin
)

func (p Principal) String() string {
	switch p {
	case User:
		return "user"
	case Admin:
		return "admin"
	default:
		return "anonymous"
	}
}

// PrincipalOf maps a store read onto a Principal. An absent or invalid
// session is Anonymous.
func PrincipalOf(sess Session, ok bool) Principal {
	if !ok || !sess.Valid() {
		return Anonymous
	}
	switch sess.Role {
	case RoleAdmin:
		return Admin
	case RoleUser:
		return User
	default:
		return Anonymous
	}
}

// SessionReader is the read side of the credential store.
type SessionReader interface {
	Read() (Session, bool)
}

// CurrentPrincipal reads the store once and returns the derived Principal.
func CurrentPrincipal(r SessionReader) Principal {
	return PrincipalOf(r.Read())
}
