package domain

// User is an account that can authenticate and manage tickets.
type User struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	// Password holds the stored credential: a bcrypt hash, or the plaintext
	// value when hashing is disabled.
	Password string
	// Token is the single active bearer token; empty until issued.
	Token string
}
