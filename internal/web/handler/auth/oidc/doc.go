// Package oidc implements the OpenID Connect login flow for the user scope.
//
// GET /auth/oidc stores a CSRF state token in the session and redirects to
// the provider's authorization URL; GET /auth/oidc/callback verifies the
// state, exchanges the code, and signs the resulting user in through the
// request auth helper.
package oidc
