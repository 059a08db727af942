package models

// User represents a registered user account.
type User struct {
	// ID is the database-assigned identifier.
	ID int64

	// Username is the display name of the user.
	Username string

	// Email is the user's email address (unique).
	// Used for login and for friends to find each other.
	Email string

	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized to API responses.
	PasswordHash string

	// Currency is a display label only (default "INR").
	// It carries no exchange-rate semantics.
	Currency string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}
