package account

import "errors"

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering with an email that already
	// has an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned for a wrong email/password pair.
	// Login never distinguishes the two cases.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidEmail is returned when the email fails format validation.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrWeakPassword is returned when the password does not meet the
	// minimum length requirement.
	ErrWeakPassword = errors.New("password does not meet requirements")
	// ErrInvalidGoogleToken is returned when the Google ID token cannot be
	// verified.
	ErrInvalidGoogleToken = errors.New("invalid google id token")
	// ErrAlreadySaved is returned when bookmarking an idea twice.
	ErrAlreadySaved = errors.New("idea already saved")
	// ErrBookmarkNotFound is returned when removing a bookmark that does
	// not exist.
	ErrBookmarkNotFound = errors.New("bookmark not found")
)
