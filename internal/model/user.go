package model

// UserID uniquely identifies a staff user
type UserID int64

// User is an authenticated operator of the collection site.
// Users are created out-of-band by the admin CLI and never edited by the web app.
type User struct {
	ID           UserID
	Name         string // display name shown in listings
	Username     string // login name, unique
	PasswordHash string `json:"-"` // bcrypt hash
}
