package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mgmcet/admission-portal/internal/config"
	"github.com/mgmcet/admission-portal/internal/models"
	"github.com/mgmcet/admission-portal/internal/pdf"
	"github.com/mgmcet/admission-portal/internal/storage"
	"github.com/mgmcet/admission-portal/internal/templates"
	"github.com/mgmcet/admission-portal/internal/validate"
)

type stubSubmitter struct {
	app *models.Application
	err error
}

func (s *stubSubmitter) Submit(context.Context, *models.Submission) (*models.Application, error) {
	return s.app, s.err
}

type stubRepo struct {
	apps    map[string]*models.Application
	counter int64
	admins  map[string]*models.AdminClient
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		apps: make(map[string]*models.Application),
		admins: map[string]*models.AdminClient{
			"sk_test_admin": {
				ID:          1,
				Name:        "dashboard",
				APIKey:      "sk_test_admin",
				IsActive:    true,
				Permissions: []string{"applications:*"},
			},
		},
	}
}

func (r *stubRepo) AllocateApplication(_ context.Context, app *models.Application) (string, error) {
	r.counter++
	app.AppID = "1"
	return "1", nil
}

func (r *stubRepo) GetApplication(_ context.Context, appID string) (*models.Application, error) {
	app, ok := r.apps[appID]
	if !ok {
		return nil, storage.ErrApplicationNotFound
	}
	return app, nil
}

func (r *stubRepo) ListApplications(context.Context, int, int) ([]*models.Application, error) {
	out := make([]*models.Application, 0, len(r.apps))
	for _, app := range r.apps {
		out = append(out, app)
	}
	return out, nil
}

func (r *stubRepo) CounterValue(context.Context) (int64, error) { return r.counter, nil }

func (r *stubRepo) GetAdminByAPIKey(_ context.Context, apiKey string) (*models.AdminClient, error) {
	return r.admins[apiKey], nil
}

func (r *stubRepo) UpdateAdminLastUsed(context.Context, string) error { return nil }

func (r *stubRepo) Ping(context.Context) error { return nil }

func (r *stubRepo) Close() error { return nil }

func testServer(repo *stubRepo, submitter Submitter) *Server {
	tmpl := templates.Default()
	tmpl.LogoPath = ""
	renderer := pdf.NewRenderer(tmpl, "https://admissions.example.edu/")
	limiter := NewRateLimiter(nil, config.RateLimitConfig{})

	return NewServer(config.ServerConfig{Host: "127.0.0.1", Port: 8080},
		submitter, repo, renderer, limiter, 2<<20, "")
}

func multipartBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatalf("WriteField failed: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("multipart close failed: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(newStubRepo(), &stubSubmitter{})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSubmitValidationErrorEnvelope(t *testing.T) {
	verr := &validate.Error{Fields: map[string]string{
		"candidateName": "Name is required",
		"aadhaarNumber": "Aadhaar number must be 12 digits",
	}}
	srv := testServer(newStubRepo(), &stubSubmitter{err: verr})

	body, contentType := multipartBody(t, map[string]string{"candidateName": ""})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/applications", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code   string            `json:"code"`
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Error.Code != "validation_error" {
		t.Errorf("expected code validation_error, got %s", resp.Error.Code)
	}
	if resp.Error.Fields["candidateName"] != "Name is required" {
		t.Errorf("missing field message, got %v", resp.Error.Fields)
	}
}

func TestSubmitSuccessReturnsRecord(t *testing.T) {
	app := &models.Application{AppID: "7", CandidateName: "Anu Thomas", SubmittedAt: time.Now()}
	srv := testServer(newStubRepo(), &stubSubmitter{app: app})

	body, contentType := multipartBody(t, map[string]string{"candidateName": "Anu Thomas"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/applications", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"appId":"7"`) {
		t.Errorf("expected allocated id in response, got %s", rec.Body.String())
	}
}

func TestAdminRoutesRequireAPIKey(t *testing.T) {
	srv := testServer(newStubRepo(), &stubSubmitter{})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/applications", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestListApplicationsWithAPIKey(t *testing.T) {
	repo := newStubRepo()
	repo.apps["1"] = &models.Application{AppID: "1", CandidateName: "Anu Thomas"}
	srv := testServer(repo, &stubSubmitter{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/applications", nil)
	req.Header.Set("Authorization", "Bearer sk_test_admin")

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"count":1`) {
		t.Errorf("expected one application, got %s", rec.Body.String())
	}
}

func TestGetApplicationNotFound(t *testing.T) {
	srv := testServer(newStubRepo(), &stubSubmitter{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/applications/404", nil)
	req.Header.Set("X-API-Key", "sk_test_admin")

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDownloadPDF(t *testing.T) {
	repo := newStubRepo()
	repo.apps["3"] = &models.Application{
		AppID:         "3",
		CandidateName: "Anu Thomas",
		Form: models.ApplicationForm{
			AppID:         "3",
			CandidateName: "Anu Thomas",
		},
		Subjects: []models.Subject{
			{Name: "Physics", MarkObtained: "98", MaxMark: "100", Grade: "A+"},
		},
	}
	srv := testServer(repo, &stubSubmitter{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/applications/3/pdf?date=01/06/2025", nil)
	req.Header.Set("X-API-Key", "sk_test_admin")

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("expected application/pdf, got %s", got)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "Anu_Thomas_Application.pdf") {
		t.Errorf("unexpected disposition %s", got)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("expected PDF payload")
	}
}
