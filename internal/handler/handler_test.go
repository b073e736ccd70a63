package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-stock-tracker/internal/middleware"
	"go-stock-tracker/internal/model"
	"go-stock-tracker/internal/query"
	"go-stock-tracker/internal/service"
	"go-stock-tracker/pkg/apperror"
	"go-stock-tracker/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// stubProducts answers from a single known product.
type stubProducts struct {
	service.ProductService
	known   model.Product
	created *service.ProductInput
	actor   service.Actor
}

func (s *stubProducts) GetByID(id uuid.UUID) (*model.Product, error) {
	if id != s.known.ID {
		return nil, apperror.NotFound("Product not found")
	}
	p := s.known
	return &p, nil
}

func (s *stubProducts) Create(req *service.ProductInput, actor service.Actor) (*model.Product, error) {
	s.created, s.actor = req, actor
	p := s.known
	return &p, nil
}

func (s *stubProducts) List(c query.Criteria, srt query.Sort, page query.Page) (*service.ProductList, error) {
	data, pagination := query.Paginate([]model.Product{s.known}, page)
	return &service.ProductList{
		Data:       data,
		Pagination: pagination,
		Filters:    service.ListFilters{Criteria: c, Sort: srt},
		Summary:    query.Summarize(data),
	}, nil
}

func (s *stubProducts) Categories() ([]query.CategoryCount, error) {
	return query.CategoryCounts(nil), nil
}

type stubReports struct {
	service.ReportService
}

func (stubReports) Export(format service.ExportFormat, reportType string) (*service.ExportFile, error) {
	if reportType == "bogus" {
		return nil, apperror.Validation("Invalid report type", map[string]string{"type": "unknown"})
	}
	return &service.ExportFile{Name: "inventory-report-2024-05-01.csv", ContentType: "text/csv; charset=utf-8", Data: []byte("Code\n")}, nil
}

type stubUsers map[uuid.UUID]*model.User

func (u stubUsers) FindByID(id uuid.UUID) (*model.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (stubUsers) FindByEmail(string) (*model.User, error)    { return nil, gorm.ErrRecordNotFound }
func (stubUsers) FindByUsername(string) (*model.User, error) { return nil, gorm.ErrRecordNotFound }
func (stubUsers) FindAll() ([]model.User, error)             { return nil, nil }
func (stubUsers) Create(*model.User) error                   { return nil }
func (stubUsers) Update(*model.User) error                   { return nil }
func (stubUsers) UpdatePassword(uuid.UUID, string) error     { return nil }

type testEnv struct {
	app      *fiber.App
	products *stubProducts
	tokens   map[model.Role]string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	manager := jwt.NewManager("handler-test", time.Hour)
	users := stubUsers{}
	env := &testEnv{
		products: &stubProducts{known: model.Product{BaseModel: model.BaseModel{ID: uuid.New()}, Code: "ABC123", Name: "Lamp", Status: model.StatusActive}},
		tokens:   map[model.Role]string{},
	}
	for _, role := range []model.Role{model.RoleUser, model.RoleAdmin} {
		u := &model.User{BaseModel: model.BaseModel{ID: uuid.New()}, Username: string(role), Role: role, IsActive: true}
		users[u.ID] = u
		token, err := manager.GenerateToken(u.ID, u.Username, string(role))
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		env.tokens[role] = token
	}

	ph := NewProductHandler(env.products)
	rh := NewReportHandler(stubReports{})
	requireAuth := middleware.RequireAuth(manager, users)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	api := app.Group("/api")
	products := api.Group("/products")
	products.Get("/categories", ph.GetCategories)
	products.Use(requireAuth)
	products.Get("/", ph.GetProducts)
	products.Get("/:id", ph.GetProduct)
	products.Post("/", adminOnly, ph.CreateProduct)
	api.Get("/reports/export/csv", requireAuth, rh.Export(service.FormatCSV))

	env.app = app
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string, role model.Role) (int, map[string]any, *http.Response) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token, ok := e.tokens[role]; ok {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	raw, _ := io.ReadAll(resp.Body)
	var decoded map[string]any
	_ = json.Unmarshal(raw, &decoded)
	return resp.StatusCode, decoded, resp
}

func errorKind(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	kind, _ := e["kind"].(string)
	return kind
}

func TestAuthGuards(t *testing.T) {
	env := newTestEnv(t)
	id := env.products.known.ID.String()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		role   model.Role
		status int
		kind   string
	}{
		{"public categories", http.MethodGet, "/api/products/categories", "", "", http.StatusOK, ""},
		{"missing token", http.MethodGet, "/api/products/" + id, "", "", http.StatusUnauthorized, "unauthorized"},
		{"user reads", http.MethodGet, "/api/products/" + id, "", model.RoleUser, http.StatusOK, ""},
		{"user cannot create", http.MethodPost, "/api/products/", `{"code":"X"}`, model.RoleUser, http.StatusForbidden, "forbidden"},
		{"admin creates", http.MethodPost, "/api/products/", `{"code":"ABC123"}`, model.RoleAdmin, http.StatusCreated, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, _ := env.do(t, tt.method, tt.path, tt.body, tt.role)
			if status != tt.status {
				t.Fatalf("status = %d, want %d (%v)", status, tt.status, body)
			}
			if tt.kind == "" {
				if body["success"] != true {
					t.Errorf("success = %v", body["success"])
				}
				return
			}
			if body["success"] != false || errorKind(body) != tt.kind {
				t.Errorf("body = %v, want error kind %s", body, tt.kind)
			}
		})
	}

	if env.products.actor.Username != "admin" {
		t.Errorf("actor = %+v, want the admin caller", env.products.actor)
	}
}

func TestInvalidToken(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/products/", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer garbage")
	resp, err := env.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestProductErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		kind   string
	}{
		{"malformed id", http.MethodGet, "/api/products/not-a-uuid", "", http.StatusBadRequest, "validation"},
		{"unknown id", http.MethodGet, "/api/products/" + uuid.NewString(), "", http.StatusNotFound, "not_found"},
		{"unknown field", http.MethodPost, "/api/products/", `{"code":"ABC123","color":"red"}`, http.StatusBadRequest, "validation"},
		{"trailing data", http.MethodPost, "/api/products/", `{"code":"ABC123"} {}`, http.StatusBadRequest, "validation"},
		{"malformed json", http.MethodPost, "/api/products/", `{"code":`, http.StatusBadRequest, "validation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, _ := env.do(t, tt.method, tt.path, tt.body, model.RoleAdmin)
			if status != tt.status || errorKind(body) != tt.kind {
				t.Errorf("got %d %v, want %d %s", status, body, tt.status, tt.kind)
			}
			if _, ok := body["message"].(string); !ok {
				t.Errorf("message missing: %v", body)
			}
		})
	}
}

func TestGetProductsEnvelope(t *testing.T) {
	env := newTestEnv(t)

	status, body, _ := env.do(t, http.MethodGet, "/api/products/?limit=5&sortBy=name&category=all", "", model.RoleUser)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	for _, key := range []string{"data", "pagination", "filters", "summary"} {
		if _, ok := body[key]; !ok {
			t.Errorf("response lacks %q: %v", key, body)
		}
	}
	pagination := body["pagination"].(map[string]any)
	if pagination["limit"] != float64(5) || pagination["total"] != float64(1) {
		t.Errorf("pagination = %v", pagination)
	}

	status, body, _ = env.do(t, http.MethodGet, "/api/products/?search=x", "", model.RoleUser)
	if status != http.StatusBadRequest || errorKind(body) != "validation" {
		t.Errorf("short search: %d %v", status, body)
	}
}

func TestExportHeaders(t *testing.T) {
	env := newTestEnv(t)

	status, _, resp := env.do(t, http.MethodGet, "/api/reports/export/csv", "", model.RoleUser)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if got := resp.Header.Get(fiber.HeaderContentDisposition); got != `attachment; filename="inventory-report-2024-05-01.csv"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := resp.Header.Get(fiber.HeaderContentType); !strings.HasPrefix(got, "text/csv") {
		t.Errorf("Content-Type = %q", got)
	}

	status, body, _ := env.do(t, http.MethodGet, "/api/reports/export/csv?type=bogus", "", model.RoleUser)
	if status != http.StatusBadRequest || errorKind(body) != "validation" {
		t.Errorf("bogus type: %d %v", status, body)
	}
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)
	status, body, _ := env.do(t, http.MethodGet, "/api/nowhere", "", "")
	if status != http.StatusNotFound || errorKind(body) != "not_found" {
		t.Errorf("got %d %v", status, body)
	}
}
