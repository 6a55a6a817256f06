package login

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage"
	"gorm.io/gorm"

	"github.com/scopegate/scopegate/internal/auth"
	"github.com/scopegate/scopegate/internal/config"
	"github.com/scopegate/scopegate/internal/db/models"
	"github.com/scopegate/scopegate/internal/scope"
	"github.com/scopegate/scopegate/internal/web/handler"
	"github.com/scopegate/scopegate/internal/web/handler/dashboard"
	"github.com/scopegate/scopegate/internal/web/helper"
	authmiddleware "github.com/scopegate/scopegate/internal/web/middleware/auth"
	websess "github.com/scopegate/scopegate/internal/web/session"
)

// noOpViews is a minimal Fiber Views engine used for tests.
// It writes the "error" field from the provided fiber.Map (if any)
// so tests can assert error messages rendered by handlers.
type noOpViews struct{}

func (noOpViews) Load() error { return nil }

func (noOpViews) Render(w io.Writer, name string, data interface{}, _ ...string) error {
	if m, ok := data.(fiber.Map); ok {
		if v, exists := m["error"]; exists && v != nil {
			_, _ = io.WriteString(w, v.(string))
			return nil
		}
	}
	// write template name to have some content
	_, _ = io.WriteString(w, name)

	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Admin{}); err != nil {
		t.Fatalf("failed to migrate models: %v", err)
	}

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		DevMode: false,
		Webserver: config.Webserver{
			URL:     "http://localhost",
			Port:    3000,
			Session: config.Session{ExpiryTime: time.Minute},
		},
		Auth: config.Auth{
			LocalDB: config.LocalDBAuth{Enabled: true},
			OIDC:    config.OIDCAuth{Enabled: false},
			LDAP:    config.LDAPAuth{Enabled: false},
		},
	}
}

// testStorage is a minimal in-memory implementation of storage.Storage for tests.
type testStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ storage.Storage = (*testStorage)(nil)

func (s *testStorage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := s.data[key]
	out := make([]byte, len(v))
	copy(out, v)

	return out, nil
}

func (s *testStorage) Set(key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string][]byte)
	}

	buf := make([]byte, len(val))
	copy(buf, val)
	s.data[key] = buf

	return nil
}

func (s *testStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

func (s *testStorage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string][]byte)

	return nil
}

func (s *testStorage) Close() error { return nil }

func newTestRegistry(t *testing.T, db *gorm.DB) *scope.Registry {
	t.Helper()

	reg := scope.NewRegistry()

	err := reg.Register(scope.Mapping{
		Name:     handler.ScopeUser,
		Resource: &models.User{},
		Routes: scope.Routes{
			SignInPath:       Path,
			AfterSignInPath:  dashboard.Path,
			AfterSignOutPath: Path,
		},
		SerializeKey: func(resource any) (string, error) {
			return strconv.FormatUint(resource.(*models.User).ID, 10), nil
		},
		Find: func(key string) (any, error) {
			id, err := strconv.ParseUint(key, 10, 64)
			if err != nil {
				return nil, nil //nolint:nilerr
			}

			var user models.User
			if err := db.First(&user, id).Error; err != nil {
				return nil, nil //nolint:nilerr
			}

			return &user, nil
		},
	})
	if err != nil {
		t.Fatalf("failed to register user scope: %v", err)
	}

	reg.Freeze()

	return reg
}

// newTestStack builds app + helper with the proxy middleware and the login
// handler fully wired, the way internal/web assembles them.
func newTestStack(t *testing.T, cfg *config.Config, db *gorm.DB) (*fiber.App, *helper.Helper) {
	t.Helper()

	websess.Init(&testStorage{data: make(map[string][]byte)})

	reg := newTestRegistry(t, db)
	h := helper.New(reg)

	app := fiber.New(fiber.Config{Views: noOpViews{}})
	app.Use(authmiddleware.New(authmiddleware.Config{
		Scopes: reg,
		Expiry: cfg.Webserver.Session.ExpiryTime,
		Secure: !cfg.DevMode,
	}))

	var s Service
	if err := s.Init(app, cfg, db, h); err != nil {
		t.Fatalf("failed to init login handler: %v", err)
	}

	return app, h
}

func TestPickAuthType_DefaultsAndErrors(t *testing.T) {
	cfg := newTestConfig()
	s := Service{cfg: cfg}

	// No requested type, Local enabled → choose local
	at, err := s.pickAuthType("")
	if err != nil || at != AuthTypeLocal {
		t.Fatalf("expected local, got at=%q err=%v", at, err)
	}

	// Disable Local, enable LDAP but ldapAuth nil → default pick returns ldap when none requested
	s.cfg.Auth.LocalDB.Enabled = false
	s.cfg.Auth.LDAP.Enabled = true

	if at, err = s.pickAuthType(""); err != nil || at != AuthTypeLDAP {
		t.Fatalf("expected default pick ldap, got at=%q err=%v", at, err)
	}

	// When explicitly asking ldap with Enabled but ldapAuth == nil → ErrLDAPAuthDisabled
	if _, err = s.pickAuthType(AuthTypeLDAP); err == nil || !errors.Is(err, ErrLDAPAuthDisabled) {
		t.Fatalf("expected ErrLDAPAuthDisabled, got %v", err)
	}

	// Provide a non-nil ldapAuth and keep Enabled → selecting ldap should succeed
	s.ldapAuth = &auth.LDAPProvider{}
	if at, err = s.pickAuthType(AuthTypeLDAP); err != nil || at != AuthTypeLDAP {
		t.Fatalf("expected ldap, got at=%q err=%v", at, err)
	}

	// Neither provider enabled
	s.cfg.Auth.LDAP.Enabled = false
	if _, err = s.pickAuthType(""); err == nil || !errors.Is(err, ErrNoAuthMethodEnabled) {
		t.Fatalf("expected ErrNoAuthMethodEnabled, got %v", err)
	}

	// Invalid method
	if _, errAuthType := s.pickAuthType("unknown"); errAuthType == nil || !errors.Is(errAuthType, ErrInvalidAuthMethod) {
		t.Fatalf("expected ErrInvalidAuthMethod, got %v", errAuthType)
	}
}

func performPost(t *testing.T, app *fiber.App, target string, form url.Values, cookie string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}

	return resp
}

func sessionCookie(t *testing.T, resp *http.Response) string {
	t.Helper()

	for _, c := range resp.Cookies() {
		if c.Name == authmiddleware.CookieName {
			return c.Name + "=" + c.Value
		}
	}

	t.Fatal("no session cookie in response")

	return ""
}

func TestPost_Local_Success_SetsCookieAndRedirects(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	cfg.DevMode = false // Secure cookie expected

	app, _ := newTestStack(t, cfg, db)

	// Create user for local auth
	lp := auth.NewLocalProvider(db)
	if _, err := lp.CreateUser("bob", "bob@example.com", "s3cr3t"); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	form := url.Values{
		"username":  {"bob"},
		"password":  {"s3cr3t"},
		"auth_type": {"local"},
	}
	resp := performPost(t, app, Path+"/", form, "")

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302 Found, got %d", resp.StatusCode)
	}

	if loc := resp.Header.Get("Location"); loc != dashboard.Path {
		t.Fatalf("expected redirect to %s, got %s", dashboard.Path, loc)
	}

	setCookie := resp.Header.Get("Set-Cookie")
	if !strings.Contains(setCookie, authmiddleware.CookieName+"=") {
		t.Fatalf("expected session cookie, got %q", setCookie)
	}

	if !strings.Contains(strings.ToLower(setCookie), "secure") {
		t.Fatalf("expected Secure flag on cookie when DevMode=false, got %q", setCookie)
	}
}

func TestPost_Local_Success_DevModeDisablesSecure(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	cfg.DevMode = true // Secure=false expected

	app, _ := newTestStack(t, cfg, db)

	lp := auth.NewLocalProvider(db)
	if _, err := lp.CreateUser("carol", "carol@example.com", "pass"); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	form := url.Values{
		"username":  {"carol"},
		"password":  {"pass"},
		"auth_type": {"local"},
	}
	resp := performPost(t, app, Path+"/", form, "")

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302 Found, got %d", resp.StatusCode)
	}

	setCookie := resp.Header.Get("Set-Cookie")
	if strings.Contains(strings.ToLower(setCookie), "secure") {
		t.Fatalf("did not expect Secure flag when DevMode=true, got %q", setCookie)
	}
}

func TestPost_Local_WrongPassword_RendersError(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()

	app, _ := newTestStack(t, cfg, db)

	lp := auth.NewLocalProvider(db)
	if _, err := lp.CreateUser("dave", "dave@example.com", "right"); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	form := url.Values{
		"username":  {"dave"},
		"password":  {"wrong"},
		"auth_type": {"local"},
	}
	resp := performPost(t, app, Path+"/", form, "")

	defer func() {
		_ = resp.Body.Close()
	}()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Invalid credentials") {
		t.Fatalf("expected rendered error message, got %q", body)
	}
}

func TestPost_MissingFields_RendersValidationError(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()

	app, _ := newTestStack(t, cfg, db)

	form := url.Values{"username": {"eve"}}
	resp := performPost(t, app, Path+"/", form, "")

	defer func() {
		_ = resp.Body.Close()
	}()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "required") {
		t.Fatalf("expected validation error message, got %q", body)
	}
}

func TestGet_RedirectsWhenAlreadySignedIn(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()

	app, _ := newTestStack(t, cfg, db)

	lp := auth.NewLocalProvider(db)
	if _, err := lp.CreateUser("frank", "frank@example.com", "pw"); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	form := url.Values{
		"username":  {"frank"},
		"password":  {"pw"},
		"auth_type": {"local"},
	}
	resp := performPost(t, app, Path+"/", form, "")
	cookie := sessionCookie(t, resp)

	req := httptest.NewRequest(http.MethodGet, Path+"/", nil)
	req.Header.Set("Cookie", cookie)

	getResp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}

	defer func() {
		_ = getResp.Body.Close()
	}()

	if getResp.StatusCode != http.StatusFound {
		t.Fatalf("expected signed-in GET /login to redirect, got %d", getResp.StatusCode)
	}

	if loc := getResp.Header.Get("Location"); loc != dashboard.Path {
		t.Fatalf("expected redirect to %s, got %s", dashboard.Path, loc)
	}
}
