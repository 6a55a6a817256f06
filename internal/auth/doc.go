// Package auth implements the credential providers used to verify sign-in
// attempts: local database (argon2id password, optional TOTP second
// factor), LDAP/Active Directory, and OpenID Connect.
//
// Providers only verify credentials and return the matched resource. They
// never touch the session; handlers hand the returned resource to the
// request auth helper's SignIn afterwards.
package auth
