package domain

// User is the slice of the account record this engine needs; accounts
// themselves are managed elsewhere.
type User struct {
	ID    int64
	Email string
	Name  string
}
