package authproxy

import (
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopegate/scopegate/internal/scope"
	"github.com/scopegate/scopegate/internal/web/session"
)

type testUser struct {
	ID   uint64
	Name string
}

type testAdmin struct {
	ID uint64
}

// testWorld holds the finder state shared by a test's registry so finder
// invocations can be counted.
type testWorld struct {
	users     map[uint64]*testUser
	admins    map[uint64]*testAdmin
	userFinds int
}

func newTestRegistry(t *testing.T, w *testWorld) *scope.Registry {
	t.Helper()

	reg := scope.NewRegistry()

	err := reg.Register(scope.Mapping{
		Name:     "user",
		Resource: &testUser{},
		Routes:   scope.Routes{SignInPath: "/login", AfterSignInPath: "/dashboard"},
		SerializeKey: func(resource any) (string, error) {
			return strconv.FormatUint(resource.(*testUser).ID, 10), nil
		},
		Find: func(key string) (any, error) {
			w.userFinds++

			id, err := strconv.ParseUint(key, 10, 64)
			if err != nil {
				return nil, nil //nolint:nilerr
			}

			u, ok := w.users[id]
			if !ok {
				return nil, nil
			}

			return u, nil
		},
	})
	require.NoError(t, err)

	err = reg.Register(scope.Mapping{
		Name:     "admin",
		Resource: &testAdmin{},
		Routes:   scope.Routes{SignInPath: "/admin/login", AfterSignInPath: "/admin"},
		SerializeKey: func(resource any) (string, error) {
			return strconv.FormatUint(resource.(*testAdmin).ID, 10), nil
		},
		Find: func(key string) (any, error) {
			id, err := strconv.ParseUint(key, 10, 64)
			if err != nil {
				return nil, nil //nolint:nilerr
			}

			a, ok := w.admins[id]
			if !ok {
				return nil, nil
			}

			return a, nil
		},
	})
	require.NoError(t, err)

	reg.Freeze()

	return reg
}

func newTestProxy(t *testing.T, w *testWorld, cfg Config) *SessionProxy {
	t.Helper()

	reg := newTestRegistry(t, w)

	return New(nil, reg, &session.Data{}, "test-session", cfg)
}

func TestSetUserAndUser(t *testing.T) {
	alice := &testUser{ID: 7, Name: "alice"}
	w := &testWorld{users: map[uint64]*testUser{7: alice}}
	p := newTestProxy(t, w, Config{})

	require.NoError(t, p.SetUser(alice, Options{Scope: "user"}))

	assert.True(t, p.Authenticated("user"))
	assert.False(t, p.Authenticated("admin"))

	got, err := p.User("user")
	require.NoError(t, err)
	assert.Same(t, alice, got)

	// SetUser caches the resource, so the finder never ran
	assert.Zero(t, w.userFinds)

	assert.Equal(t, "7", p.RawSession().Scope("user").Key)
}

func TestSetUserInfersScopeFromResource(t *testing.T) {
	alice := &testUser{ID: 7}
	w := &testWorld{users: map[uint64]*testUser{7: alice}}
	p := newTestProxy(t, w, Config{})

	// empty scope resolves via the resource's runtime type
	require.NoError(t, p.SetUser(alice, Options{}))
	assert.True(t, p.Authenticated("user"))
}

func TestSetUserRejectsNilAndUnmappedResources(t *testing.T) {
	w := &testWorld{}
	p := newTestProxy(t, w, Config{})

	assert.ErrorIs(t, p.SetUser(nil, Options{Scope: "user"}), ErrNilResource)

	type unmapped struct{}

	var lookupErr *scope.LookupError

	err := p.SetUser(&unmapped{}, Options{})
	assert.ErrorAs(t, err, &lookupErr)
}

func TestUserLoadsLazilyAndCachesAbsence(t *testing.T) {
	w := &testWorld{users: map[uint64]*testUser{}}
	p := newTestProxy(t, w, Config{})

	// session carries a key whose user no longer exists
	p.RawSession().Scope("user").Key = "7"

	got, err := p.User("user")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, w.userFinds)

	// the dangling key was dropped
	assert.Empty(t, p.RawSession().Scope("user").Key)

	// second call is served from the request cache
	got, err = p.User("user")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, w.userFinds)
}

func TestAuthenticateRequiresScope(t *testing.T) {
	w := &testWorld{}
	p := newTestProxy(t, w, Config{})

	_, err := p.Authenticate(Options{})
	assert.ErrorIs(t, err, ErrNoScope)
}

func TestSessionIsNamespacedPerScope(t *testing.T) {
	w := &testWorld{}
	p := newTestProxy(t, w, Config{})

	p.Session("user")["theme"] = "dark"

	_, ok := p.Session("admin")["theme"]
	assert.False(t, ok, "admin session must not see user session data")
}

func TestLogoutSingleScope(t *testing.T) {
	alice := &testUser{ID: 7}
	root := &testAdmin{ID: 1}
	w := &testWorld{
		users:  map[uint64]*testUser{7: alice},
		admins: map[uint64]*testAdmin{1: root},
	}

	var loggedOut []scope.Name

	p := newTestProxy(t, w, Config{
		Hooks: Hooks{
			BeforeLogout: []func(c *fiber.Ctx, resource any, s scope.Name){
				func(_ *fiber.Ctx, resource any, s scope.Name) {
					loggedOut = append(loggedOut, s)
					// the hook observes the force-loaded resource
					assert.NotNil(t, resource)
				},
			},
		},
	})

	require.NoError(t, p.SetUser(alice, Options{Scope: "user"}))
	require.NoError(t, p.SetUser(root, Options{Scope: "admin"}))

	require.NoError(t, p.Logout("user"))

	assert.False(t, p.Authenticated("user"))
	assert.True(t, p.Authenticated("admin"), "logging out user must not touch admin")
	assert.Equal(t, []scope.Name{"user"}, loggedOut)
}

func TestLogoutAllScopesResetsSession(t *testing.T) {
	alice := &testUser{ID: 7}
	w := &testWorld{users: map[uint64]*testUser{7: alice}}
	p := newTestProxy(t, w, Config{})

	require.NoError(t, p.SetUser(alice, Options{Scope: "user"}))
	p.RawSession().SetValue("user.return_to", "/somewhere")

	require.NoError(t, p.Logout())

	assert.False(t, p.Authenticated("user"))

	_, ok := p.RawSession().Value("user.return_to")
	assert.False(t, ok, "full logout resets the whole session")
}

func TestAfterSetUserHookRuns(t *testing.T) {
	alice := &testUser{ID: 7}
	w := &testWorld{users: map[uint64]*testUser{7: alice}}

	var hookScope scope.Name

	p := newTestProxy(t, w, Config{
		Hooks: Hooks{
			AfterSetUser: []func(c *fiber.Ctx, resource any, opts Options){
				func(_ *fiber.Ctx, resource any, opts Options) {
					hookScope = opts.Scope
					assert.Same(t, alice, resource)
				},
			},
		},
	})

	require.NoError(t, p.SetUser(alice, Options{Scope: "user"}))
	assert.Equal(t, scope.Name("user"), hookScope)
}
