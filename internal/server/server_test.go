package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/kapu/planning-center-groups-go/internal/domain"
	"github.com/kapu/planning-center-groups-go/internal/service/settings"
	"github.com/kapu/planning-center-groups-go/internal/shortcode"
)

type fakeGroups struct {
	overrides []string
}

func (f *fakeGroups) RenderGroups(_ context.Context, groupTypeOverride string) string {
	f.overrides = append(f.overrides, groupTypeOverride)
	return "<div class=\"pcg-group-grid\">" + groupTypeOverride + "</div>"
}

func (f *fakeGroups) Name() string        { return "planning_center_groups" }
func (f *fakeGroups) Description() string { return "fake" }
func (f *fakeGroups) Render(ctx context.Context, attrs map[string]string) string {
	return f.RenderGroups(ctx, attrs["group_type"])
}

func newTestServer(t *testing.T, store settings.Store, cfg Config) (*Server, *fakeGroups) {
	t.Helper()
	groups := &fakeGroups{}
	registry := shortcode.NewRegistry(zap.NewNop())
	registry.Register(groups)
	return New(cfg, Dependencies{
		Groups:     groups,
		Shortcodes: registry,
		Settings:   store,
		Logger:     zap.NewNop(),
	}), groups
}

// adminSession loads the settings form and returns the issued token cookie
// together with the token echoed in the form.
func adminSession(t *testing.T, srv *Server) (*http.Cookie, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/admin/settings", nil)
	req.SetBasicAuth("admin", "pw")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from settings form, got %d", w.Code)
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == csrfCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatalf("settings form did not issue a token cookie")
	}

	doc, err := goquery.NewDocumentFromReader(w.Body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	token, _ := doc.Find(`input[name="csrf_token"]`).Attr("value")
	return cookie, token
}

func postSettings(srv *Server, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin/settings", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("admin", "pw")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t, settings.NewMemoryStore(domain.Settings{}), Config{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestEmbedGroups(t *testing.T) {
	srv, groups := newTestServer(t, settings.NewMemoryStore(domain.Settings{}), Config{})

	req := httptest.NewRequest(http.MethodGet, "/embed/groups?group_type=Small+Group", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if len(groups.overrides) != 1 || groups.overrides[0] != "Small Group" {
		t.Fatalf("override not forwarded: %v", groups.overrides)
	}
}

func TestRenderExpandsShortcodes(t *testing.T) {
	srv, _ := newTestServer(t, settings.NewMemoryStore(domain.Settings{}), Config{})

	req := httptest.NewRequest(http.MethodPost, "/render", strings.NewReader(`<p>Join a group</p>[planning_center_groups group_type="Youth"]`))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	want := `<p>Join a group</p><div class="pcg-group-grid">Youth</div>`
	if got := w.Body.String(); got != want {
		t.Fatalf("render = %q, want %q", got, want)
	}
}

func TestAdminDisabledWithoutCredentials(t *testing.T) {
	srv, _ := newTestServer(t, settings.NewMemoryStore(domain.Settings{}), Config{})

	req := httptest.NewRequest(http.MethodGet, "/admin/settings", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestAdminRequiresBasicAuth(t *testing.T) {
	srv, _ := newTestServer(t, settings.NewMemoryStore(domain.Settings{}), Config{AdminUser: "admin", AdminPassword: "pw"})

	req := httptest.NewRequest(http.MethodGet, "/admin/settings", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAdminSettingsRoundTrip(t *testing.T) {
	store := settings.NewMemoryStore(domain.Settings{ClientID: "old", DebugMode: true})
	srv, _ := newTestServer(t, store, Config{AdminUser: "admin", AdminPassword: "pw"})

	cookie, token := adminSession(t, srv)

	form := url.Values{}
	form.Set("csrf_token", token)
	form.Set("pcg_client_id", "  new-id ")
	form.Set("pcg_client_secret", "new-secret")
	form.Set("pcg_tag_filter", "Youth")
	form.Set("pcg_group_type_filter", "Small Group")

	w := postSettings(srv, form, cookie)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", w.Code, w.Body.String())
	}

	saved, _ := store.Load(context.Background())
	want := domain.Settings{ClientID: "new-id", ClientSecret: "new-secret", TagFilter: "Youth", GroupTypeFilter: "Small Group"}
	if saved != want {
		t.Fatalf("saved = %+v, want %+v", saved, want)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/settings?saved=1", nil)
	req.SetBasicAuth("admin", "pw")
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	doc, err := goquery.NewDocumentFromReader(w.Body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v, _ := doc.Find(`input[name="pcg_client_id"]`).Attr("value"); v != "new-id" {
		t.Fatalf("form should show saved client id, got %q", v)
	}
	if _, checked := doc.Find(`input[name="pcg_debug_mode"]`).Attr("checked"); checked {
		t.Fatalf("debug checkbox should be cleared after saving without it")
	}
	if doc.Find("p.notice").Length() != 1 {
		t.Fatalf("expected saved notice")
	}
}

func TestAdminRejectsHalfCredentials(t *testing.T) {
	store := settings.NewMemoryStore(domain.Settings{ClientID: "old", ClientSecret: "old-secret"})
	srv, _ := newTestServer(t, store, Config{AdminUser: "admin", AdminPassword: "pw"})

	cookie, token := adminSession(t, srv)

	form := url.Values{}
	form.Set("csrf_token", token)
	form.Set("pcg_client_id", "new-id")

	w := postSettings(srv, form, cookie)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	doc, err := goquery.NewDocumentFromReader(w.Body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(doc.Find("p.error").Text(), "Secret is required") {
		t.Fatalf("expected validation message, got %q", doc.Find("p.error").Text())
	}

	saved, _ := store.Load(context.Background())
	if saved.ClientID != "old" {
		t.Fatalf("invalid form must not be saved, got %+v", saved)
	}
}

func TestAdminRejectsPostWithoutMatchingToken(t *testing.T) {
	original := domain.Settings{ClientID: "old", ClientSecret: "old-secret"}
	store := settings.NewMemoryStore(original)
	srv, _ := newTestServer(t, store, Config{AdminUser: "admin", AdminPassword: "pw"})

	cookie, token := adminSession(t, srv)
	if len(token) != csrfTokenLen*2 || token != cookie.Value {
		t.Fatalf("form token %q should match cookie %q", token, cookie.Value)
	}
	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteStrictMode {
		t.Fatalf("token cookie should be HttpOnly and SameSite=Strict: %+v", cookie)
	}

	tests := []struct {
		name   string
		token  string
		cookie *http.Cookie
	}{
		{name: "no cookie", token: token, cookie: nil},
		{name: "no field", token: "", cookie: cookie},
		{name: "mismatched field", token: strings.Repeat("0", csrfTokenLen*2), cookie: cookie},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{}
			if tt.token != "" {
				form.Set("csrf_token", tt.token)
			}
			form.Set("pcg_client_id", "attacker")
			form.Set("pcg_client_secret", "attacker")
			form.Set("pcg_debug_mode", "1")

			w := postSettings(srv, form, tt.cookie)
			if w.Code != http.StatusForbidden {
				t.Fatalf("expected 403, got %d", w.Code)
			}
			saved, _ := store.Load(context.Background())
			if saved != original {
				t.Fatalf("rejected post must not be saved, got %+v", saved)
			}
		})
	}
}

func TestAdminFormReusesTokenCookie(t *testing.T) {
	srv, _ := newTestServer(t, settings.NewMemoryStore(domain.Settings{}), Config{AdminUser: "admin", AdminPassword: "pw"})
	cookie, _ := adminSession(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/admin/settings", nil)
	req.SetBasicAuth("admin", "pw")
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if len(w.Result().Cookies()) != 0 {
		t.Fatalf("an existing token cookie should not be replaced")
	}
	doc, err := goquery.NewDocumentFromReader(w.Body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v, _ := doc.Find(`input[name="csrf_token"]`).Attr("value"); v != cookie.Value {
		t.Fatalf("form token %q should reuse cookie %q", v, cookie.Value)
	}
}
