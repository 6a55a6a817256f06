package auth

import "errors"

var (
	// ErrUserNotFound is returned when no account matches the username.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAccountDisabled is returned when the matched account is inactive.
	ErrUserAccountDisabled = errors.New("user account is disabled")

	// ErrInvalidPassword is returned when the password does not match.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidTOTPCode is returned when the TOTP second factor fails.
	ErrInvalidTOTPCode = errors.New("invalid totp code")

	// ErrInvalidOldPassword is returned when the provided old password does not match the user's current password.
	ErrInvalidOldPassword = errors.New("invalid old password")

	// ErrUserNameOrEmailExists is returned when creating an account whose username or email is taken.
	ErrUserNameOrEmailExists = errors.New("username or email already exists")

	// ErrNoIDToken is returned when the OAuth2 token response doesn't contain an ID token.
	// This typically indicates a misconfigured OIDC provider or an incomplete authentication flow.
	ErrNoIDToken = errors.New("no id_token in token response")
)
