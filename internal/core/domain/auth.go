package domain

// AuthMethod identifies how a reader authenticates.
type AuthMethod string

const (
	// AuthMethodNone is used by readers that need no credentials.
	AuthMethodNone AuthMethod = "none"

	// AuthMethodToken is a static integration token (Notion internal integration).
	AuthMethodToken AuthMethod = "token"
)

// Credentials holds login material for a course adapter that needs one.
type Credentials struct {
	Email    string
	Password string
}

// Empty reports whether no credential is set.
func (c Credentials) Empty() bool {
	return c.Email == "" && c.Password == ""
}
