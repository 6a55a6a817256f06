package handler

import (
	"github.com/scopegate/scopegate/internal/scope"
)

// Configured scopes. The registry in internal/web registers exactly these.
const (
	// ScopeUser is the self-service scope backed by models.User.
	ScopeUser scope.Name = "user"

	// ScopeAdmin is the administration scope backed by models.Admin.
	ScopeAdmin scope.Name = "admin"
)

const (
	// RootPath is the root path the route group.
	RootPath = "/"

	// RouterRootPath is the root path within a route group.
	RouterRootPath = ""

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg, db or helper is nil"
)
