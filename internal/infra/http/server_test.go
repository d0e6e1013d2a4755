package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"officine/internal/config"
	"officine/internal/domain"
	"officine/internal/infra/auth/rbac"
	"officine/internal/infra/ratelimit"
	"officine/internal/usecase"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

type fakeSessions struct {
	bySubject map[string]string
}

func (f *fakeSessions) Issue(subjectID string) (string, error) {
	token := "token-" + subjectID
	f.bySubject[token] = subjectID
	return token, nil
}

func (f *fakeSessions) Verify(token string) (string, error) {
	subject, ok := f.bySubject[token]
	if !ok {
		return "", domain.ErrUnauthenticated
	}
	return subject, nil
}

type fakeResolver struct {
	actors map[string]domain.ActorContext
	// orphaned lists subjects the provider knows but no tenant claims.
	orphaned map[string]bool
}

func (f *fakeResolver) Resolve(_ context.Context, subjectID string) (domain.ActorContext, error) {
	if f.orphaned[subjectID] {
		return domain.ActorContext{}, domain.ErrTenantNotFound
	}
	actor, ok := f.actors[subjectID]
	if !ok {
		return domain.ActorContext{}, domain.ErrUnauthenticated
	}
	return actor, nil
}

type fakePermSource struct {
	perms map[string][]domain.Permission
}

func (f *fakePermSource) ListByRole(_ context.Context, tenantID, roleID string) ([]domain.Permission, error) {
	return f.perms[tenantID+"/"+roleID], nil
}

type fakeCategories struct {
	seq  int
	rows map[string]domain.Category
}

func (f *fakeCategories) Create(_ context.Context, actor domain.ActorContext, category domain.Category) (*domain.Category, error) {
	f.seq++
	category.ID = "cat-" + strconv.Itoa(f.seq)
	category.TenantID = actor.TenantID
	category.Actif = true
	category.CreatedAt = time.Now().UTC()
	category.UpdatedAt = category.CreatedAt
	f.rows[category.ID] = category
	return &category, nil
}

func (f *fakeCategories) GetByID(_ context.Context, actor domain.ActorContext, id string) (*domain.Category, error) {
	category, ok := f.rows[id]
	if !ok || category.TenantID != actor.TenantID || !category.Actif {
		return nil, domain.ErrNotFound
	}
	return &category, nil
}

func (f *fakeCategories) List(_ context.Context, actor domain.ActorContext) ([]domain.Category, error) {
	out := []domain.Category{}
	for _, category := range f.rows {
		if category.TenantID == actor.TenantID && category.Actif {
			out = append(out, category)
		}
	}
	return out, nil
}

func (f *fakeCategories) Update(_ context.Context, actor domain.ActorContext, category domain.Category) (*domain.Category, error) {
	existing, ok := f.rows[category.ID]
	if !ok || existing.TenantID != actor.TenantID || !existing.Actif {
		return nil, domain.ErrNotFound
	}
	existing.Nom = category.Nom
	existing.UpdatedAt = time.Now().UTC()
	f.rows[category.ID] = existing
	return &existing, nil
}

func (f *fakeCategories) SoftDelete(_ context.Context, actor domain.ActorContext, id string) error {
	existing, ok := f.rows[id]
	if !ok || existing.TenantID != actor.TenantID || !existing.Actif {
		return domain.ErrNotFound
	}
	existing.Actif = false
	f.rows[id] = existing
	return nil
}

type fakeRoleRepo struct {
	seq  int
	rows map[string]domain.Role
}

func (f *fakeRoleRepo) Create(_ context.Context, actor domain.ActorContext, role domain.Role) (*domain.Role, error) {
	f.seq++
	role.ID = "role-" + strconv.Itoa(f.seq)
	role.TenantID = actor.TenantID
	f.rows[role.ID] = role
	return &role, nil
}

func (f *fakeRoleRepo) GetByID(_ context.Context, actor domain.ActorContext, roleID string) (*domain.Role, error) {
	role, ok := f.rows[roleID]
	if !ok || role.TenantID != actor.TenantID {
		return nil, domain.ErrNotFound
	}
	return &role, nil
}

func (f *fakeRoleRepo) List(_ context.Context, actor domain.ActorContext) ([]domain.Role, error) {
	out := []domain.Role{}
	for _, role := range f.rows {
		if role.TenantID == actor.TenantID {
			out = append(out, role)
		}
	}
	return out, nil
}

func (f *fakeRoleRepo) Update(_ context.Context, actor domain.ActorContext, role domain.Role) (*domain.Role, error) {
	existing, ok := f.rows[role.ID]
	if !ok || existing.TenantID != actor.TenantID {
		return nil, domain.ErrNotFound
	}
	role.TenantID = existing.TenantID
	f.rows[role.ID] = role
	return &role, nil
}

func (f *fakeRoleRepo) SoftDelete(_ context.Context, actor domain.ActorContext, roleID string) error {
	role, ok := f.rows[roleID]
	if !ok || role.TenantID != actor.TenantID {
		return domain.ErrNotFound
	}
	delete(f.rows, roleID)
	return nil
}

type fakeLoginIdentity struct {
	subjects map[string]string
}

func (f *fakeLoginIdentity) Authenticate(_ context.Context, email, _ string) (string, error) {
	subject, ok := f.subjects[email]
	if !ok {
		return "", domain.ErrUnauthenticated
	}
	return subject, nil
}

func (f *fakeLoginIdentity) CreateAccount(_ context.Context, email, _ string) (string, error) {
	subject := "subject-" + email
	f.subjects[email] = subject
	return subject, nil
}

func (f *fakeLoginIdentity) DeleteAccount(context.Context, string) error { return nil }
func (f *fakeLoginIdentity) ForceSignOut(context.Context, string) error  { return nil }

type testEnv struct {
	server     *Server
	sessions   *fakeSessions
	categories *fakeCategories
}

// newTestEnv wires two tenants: owner-1 with employee emp-1 (role cashier-1,
// granted categories/voir only) and owner-2 on a separate tenant.
func newTestEnv(t *testing.T, cfg config.Config) *testEnv {
	t.Helper()

	sessions := &fakeSessions{bySubject: map[string]string{}}
	resolver := &fakeResolver{actors: map[string]domain.ActorContext{
		"owner-1": {SubjectID: "owner-1", DisplayName: "Awa Diallo", TenantID: "owner-1", Kind: domain.ActorOwner},
		"owner-2": {SubjectID: "owner-2", TenantID: "owner-2", Kind: domain.ActorOwner},
		"emp-1": {SubjectID: "emp-1", TenantID: "owner-1", Kind: domain.ActorEmployee,
			RoleID: "cashier-1", RoleName: "Caissier"},
		"emp-norole": {SubjectID: "emp-norole", TenantID: "owner-1", Kind: domain.ActorEmployee},
	}, orphaned: map[string]bool{"emp-orphan": true}}
	source := &fakePermSource{perms: map[string][]domain.Permission{
		"owner-1/cashier-1": {
			{Module: domain.ModuleCategories, Action: domain.ActionVoir},
		},
	}}
	categories := &fakeCategories{rows: map[string]domain.Category{}}
	roleRepo := &fakeRoleRepo{rows: map[string]domain.Role{}}

	stocks := &fakeSweepStocks{}
	notifications := &fakeSweepNotifications{}

	server := NewServerWithDeps(cfg, ServerDeps{
		Sessions:   sessions,
		Issuer:     sessions,
		Resolver:   resolver,
		Evaluator:  rbac.NewEvaluator(source),
		Identity:   &fakeLoginIdentity{subjects: map[string]string{"awa@officine.test": "owner-1"}},
		Categories: categories,
		Roles:      usecase.NewRoleService(roleRepo, nil),
		Sweeper:    usecase.NewSweeper(stocks, &fakeSweepProducts{}, notifications, time.Hour, nil),
	}, nil)

	for _, subject := range []string{"owner-1", "owner-2", "emp-1", "emp-norole", "emp-orphan"} {
		if _, err := sessions.Issue(subject); err != nil {
			t.Fatalf("issue session for %s: %v", subject, err)
		}
	}
	return &testEnv{server: server, sessions: sessions, categories: categories}
}

type fakeSweepStocks struct {
	low []domain.Stock
}

func (f *fakeSweepStocks) ListBelowThreshold(_ context.Context, tenantID string) ([]domain.Stock, error) {
	out := []domain.Stock{}
	for _, stock := range f.low {
		if stock.TenantID == tenantID {
			out = append(out, stock)
		}
	}
	return out, nil
}

type fakeSweepProducts struct{}

func (f *fakeSweepProducts) ListExpiringBefore(context.Context, string, time.Time) ([]domain.Product, error) {
	return nil, nil
}

func (f *fakeSweepProducts) NamesByID(_ context.Context, _ string, ids []string) (map[string]string, error) {
	return map[string]string{}, nil
}

type fakeSweepNotifications struct {
	tenants []string
	created []domain.Notification
}

func (f *fakeSweepNotifications) CreateIfAbsent(_ context.Context, notification domain.Notification) (bool, error) {
	f.created = append(f.created, notification)
	return true, nil
}

func (f *fakeSweepNotifications) TenantIDs(context.Context) ([]string, error) {
	return f.tenants, nil
}

func doRequest(t *testing.T, server *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	w := doRequest(t, env.server, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
}

func TestLoginIssuesToken(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	w := doRequest(t, env.server, http.MethodPost, "/v1/login", "", gin.H{
		"email":        "awa@officine.test",
		"mot_de_passe": "secret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d body: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["token"] == "" || body["token"] == nil {
		t.Fatal("expected a token")
	}
	profil, ok := body["profil"].(map[string]any)
	if !ok {
		t.Fatalf("expected profil object, got %v", body["profil"])
	}
	if profil["officine_id"] != "owner-1" {
		t.Fatalf("unexpected profil: %v", profil)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	w := doRequest(t, env.server, http.MethodPost, "/v1/login", "", gin.H{
		"email":        "inconnu@officine.test",
		"mot_de_passe": "x",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status: %d", w.Code)
	}
	if decodeBody(t, w)["error"] == nil {
		t.Fatal("expected error message")
	}
}

func TestLoginRateLimited(t *testing.T) {
	cfg := config.Config{RateLimitRequests: 2, RateLimitWindowSeconds: 60}
	env := newTestEnv(t, cfg)
	env.server.rateLimiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{})
	env.server.rateLimitRequests = 2
	env.server.rateLimitWindow = time.Minute

	body := gin.H{"email": "inconnu@officine.test", "mot_de_passe": "x"}
	for i := 0; i < 2; i++ {
		w := doRequest(t, env.server, http.MethodPost, "/v1/login", "", body)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d status: %d", i, w.Code)
		}
	}
	w := doRequest(t, env.server, http.MethodPost, "/v1/login", "", body)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestMissingTokenUnauthorized(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	for _, path := range []string{"/v1/categories", "/v1/roles", "/v1/me"} {
		w := doRequest(t, env.server, http.MethodGet, path, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, w.Code)
		}
	}
}

func TestInvalidTokenUnauthorized(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	w := doRequest(t, env.server, http.MethodGet, "/v1/categories", "forged-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestOrphanedSubjectUnauthorized(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	// Valid session but no tenant claims the subject: the caller has no
	// usable identity, so the denial is a 401, not a 403.
	w := doRequest(t, env.server, http.MethodGet, "/v1/categories", "token-emp-orphan", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body %s", w.Code, w.Body.String())
	}
}

func TestEmployeeWithoutRoleDeniedEverything(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	w := doRequest(t, env.server, http.MethodGet, "/v1/categories", "token-emp-norole", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestExactPermissionPerAction(t *testing.T) {
	env := newTestEnv(t, config.Config{})

	// Granted pair: categories/voir.
	w := doRequest(t, env.server, http.MethodGet, "/v1/categories", "token-emp-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("granted read: expected 200, got %d body %s", w.Code, w.Body.String())
	}

	// Same module, creer not granted: no implication between actions.
	w = doRequest(t, env.server, http.MethodPost, "/v1/categories", "token-emp-1", gin.H{"nom": "Antalgiques"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("ungranted create: expected 403, got %d", w.Code)
	}
}

func TestOwnerBypassesPermissionRows(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	w := doRequest(t, env.server, http.MethodPost, "/v1/categories", "token-owner-1", gin.H{"nom": "Antalgiques"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	categorie, ok := body["categorie"].(map[string]any)
	if !ok {
		t.Fatalf("expected categorie wrapper, got %s", w.Body.String())
	}
	if categorie["nom"] != "Antalgiques" {
		t.Fatalf("unexpected payload: %v", categorie)
	}
}

func TestTenantIsolationReadsAsNotFound(t *testing.T) {
	env := newTestEnv(t, config.Config{})

	w := doRequest(t, env.server, http.MethodPost, "/v1/categories", "token-owner-1", gin.H{"nom": "Sirops"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d", w.Code)
	}
	id := decodeBody(t, w)["categorie"].(map[string]any)["id"].(string)

	// Other tenant sees 404, indistinguishable from absence.
	w = doRequest(t, env.server, http.MethodGet, "/v1/categories/"+id, "token-owner-2", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("cross-tenant read: expected 404, got %d", w.Code)
	}
	w = doRequest(t, env.server, http.MethodDelete, "/v1/categories/"+id, "token-owner-2", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("cross-tenant delete: expected 404, got %d", w.Code)
	}

	// Owning tenant still reads it.
	w = doRequest(t, env.server, http.MethodGet, "/v1/categories/"+id, "token-owner-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("own read: expected 200, got %d", w.Code)
	}
}

func TestSoftDeleteHidesResource(t *testing.T) {
	env := newTestEnv(t, config.Config{})

	w := doRequest(t, env.server, http.MethodPost, "/v1/categories", "token-owner-1", gin.H{"nom": "Vitamines"})
	id := decodeBody(t, w)["categorie"].(map[string]any)["id"].(string)

	w = doRequest(t, env.server, http.MethodDelete, "/v1/categories/"+id, "token-owner-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %d", w.Code)
	}
	w = doRequest(t, env.server, http.MethodGet, "/v1/categories/"+id, "token-owner-1", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("deleted resource should read as 404, got %d", w.Code)
	}
}

func TestRolesOwnerOnly(t *testing.T) {
	env := newTestEnv(t, config.Config{})

	w := doRequest(t, env.server, http.MethodGet, "/v1/roles", "token-emp-1", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("employee on roles: expected 403, got %d", w.Code)
	}

	w = doRequest(t, env.server, http.MethodPost, "/v1/roles", "token-owner-1", gin.H{
		"nom": "Caissier",
		"permissions": []gin.H{
			{"module": "ventes", "action": "creer"},
			{"module": "employes", "action": "voir"},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("owner create role: expected 201, got %d body %s", w.Code, w.Body.String())
	}
	role := decodeBody(t, w)["role"].(map[string]any)
	perms := role["permissions"].([]any)
	if len(perms) != 1 {
		t.Fatalf("reserved grant should be filtered, got %v", perms)
	}
}

func TestValidationErrors(t *testing.T) {
	env := newTestEnv(t, config.Config{})

	w := doRequest(t, env.server, http.MethodPost, "/v1/categories", "token-owner-1", gin.H{"nom": ""})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty name: expected 400, got %d", w.Code)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/categories", strings.NewReader("{broken"))
	req.Header.Set("Authorization", "Bearer token-owner-1")
	w2 := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(w2, req)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("broken json: expected 400, got %d", w2.Code)
	}
}

func TestCronKeyGate(t *testing.T) {
	env := newTestEnv(t, config.Config{CronKey: "sweep-secret"})

	w := doRequest(t, env.server, http.MethodPost, "/v1/cron/notifications", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing key: expected 401, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/cron/notifications", nil)
	req.Header.Set("X-Cron-Key", "wrong")
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong key: expected 401, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/cron/notifications", nil)
	req.Header.Set("X-Cron-Key", "sweep-secret")
	rec = httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("correct key: expected 200, got %d body %s", rec.Code, rec.Body.String())
	}
}

func TestCronDisabledWithoutConfiguredKey(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	req := httptest.NewRequest(http.MethodPost, "/v1/cron/notifications", nil)
	req.Header.Set("X-Cron-Key", "")
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unset cron key must disable the route, got %d", rec.Code)
	}
}

func TestMeReturnsProfile(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	w := doRequest(t, env.server, http.MethodGet, "/v1/me", "token-emp-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	profil := decodeBody(t, w)["profil"].(map[string]any)
	if profil["type"] != "employee" || profil["role_nom"] != "Caissier" {
		t.Fatalf("unexpected profil: %v", profil)
	}
}

func TestNoRouteIsJSON(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	w := doRequest(t, env.server, http.MethodGet, "/v1/nexiste/pas", "token-owner-1", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status: %d", w.Code)
	}
	if decodeBody(t, w)["error"] == nil {
		t.Fatal("expected json error body")
	}
}
