package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"exeat-backend/internal/middleware"
	"exeat-backend/internal/model"
	"exeat-backend/internal/service"
	"exeat-backend/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (*gin.Engine, store.ExeatStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewExeatStore()
	exeatService := service.NewExeatService(st, zap.NewNop())
	checkpointService := service.NewCheckpointService(st, zap.NewNop())

	router := gin.New()
	NewExeatHandler(exeatService).RegisterRoutes(router.Group(""))
	NewCheckpointHandler(checkpointService).RegisterRoutes(router.Group(""))
	return router, st
}

func signToken(t *testing.T, role, name, studentID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        uuid.New().String(),
		"role":       role,
		"name":       name,
		"student_id": studentID,
		"exp":        time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(middleware.GetJWTSecret())
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func doRequest(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListRequiresAdminRole(t *testing.T) {
	router, _ := newTestRouter(t)

	if w := doRequest(router, http.MethodGet, "/api/exeats", "", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}

	student := signToken(t, model.RoleStudent, "John Student", "VU123456")
	if w := doRequest(router, http.MethodGet, "/api/exeats", student, ""); w.Code != http.StatusForbidden {
		t.Errorf("student token: status = %d, want 403", w.Code)
	}

	admin := signToken(t, model.RoleAdmin, "Admin User", "")
	if w := doRequest(router, http.MethodGet, "/api/exeats", admin, ""); w.Code != http.StatusOK {
		t.Errorf("admin token: status = %d, want 200", w.Code)
	}
}

func TestSubmitReviewVerifyFlow(t *testing.T) {
	router, _ := newTestRouter(t)
	student := signToken(t, model.RoleStudent, "John Student", "VU123456")
	admin := signToken(t, model.RoleAdmin, "Admin User", "")
	security := signToken(t, model.RoleSecurity, "Security Officer", "")

	departure := time.Now().Add(24 * time.Hour).Format(time.RFC3339)
	ret := time.Now().Add(30 * time.Hour).Format(time.RFC3339)
	payload := `{
		"reason": "` + model.ReasonMedical + `",
		"reason_details": "Dental appointment",
		"destination": "City Dental Clinic",
		"departure_date": "` + departure + `",
		"return_date": "` + ret + `"
	}`

	w := doRequest(router, http.MethodPost, "/api/exeats", student, payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("submit: status = %d, body = %s", w.Code, w.Body.String())
	}

	var created struct {
		Data model.ExeatRequest `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode submit response: %v", err)
	}
	if created.Data.StudentID != "VU123456" || created.Data.StudentName != "John Student" {
		t.Errorf("subject must come from the token, got %+v", created.Data)
	}
	if created.Data.Status != model.StatusPending {
		t.Errorf("status = %s, want pending", created.Data.Status)
	}

	// Students cannot approve their own requests.
	w = doRequest(router, http.MethodPut, "/api/exeats/"+created.Data.ID+"/approve", student, `{"comment":"ok"}`)
	if w.Code != http.StatusForbidden {
		t.Errorf("student approve: status = %d, want 403", w.Code)
	}

	w = doRequest(router, http.MethodPut, "/api/exeats/"+created.Data.ID+"/approve", admin, `{"comment":"ok"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("approve: status = %d, body = %s", w.Code, w.Body.String())
	}
	var approved struct {
		Data model.ExeatRequest `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &approved); err != nil {
		t.Fatalf("failed to decode approve response: %v", err)
	}
	if approved.Data.QRCode != created.Data.ID+"-approved" {
		t.Fatalf("QR token = %q", approved.Data.QRCode)
	}

	w = doRequest(router, http.MethodGet, "/api/verify/"+approved.Data.QRCode, security, "")
	if w.Code != http.StatusOK {
		t.Fatalf("verify: status = %d, body = %s", w.Code, w.Body.String())
	}
	var verified struct {
		Data service.VerificationResult `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &verified); err != nil {
		t.Fatalf("failed to decode verify response: %v", err)
	}
	if verified.Data.Status != service.VerificationValid {
		t.Errorf("verification status = %s, want valid", verified.Data.Status)
	}

	w = doRequest(router, http.MethodGet, "/api/verify/not-a-real-code", security, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("bogus code: status = %d, want 404", w.Code)
	}
}

func TestSubmitRejectsInvalidInterval(t *testing.T) {
	router, _ := newTestRouter(t)
	student := signToken(t, model.RoleStudent, "John Student", "VU123456")

	when := time.Now().Add(24 * time.Hour).Format(time.RFC3339)
	payload := `{
		"reason": "` + model.ReasonMedical + `",
		"reason_details": "x",
		"destination": "y",
		"departure_date": "` + when + `",
		"return_date": "` + when + `"
	}`

	w := doRequest(router, http.MethodPost, "/api/exeats", student, payload)
	if w.Code != http.StatusBadRequest {
		t.Errorf("equal interval: status = %d, want 400", w.Code)
	}
}

func TestStudentsOnlySeeTheirOwnRequests(t *testing.T) {
	router, st := newTestRouter(t)
	if err := store.SeedDemoData(st); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	// exeat-003 belongs to VU789012; John is VU123456.
	john := signToken(t, model.RoleStudent, "John Student", "VU123456")
	if w := doRequest(router, http.MethodGet, "/api/exeats/exeat-003", john, ""); w.Code != http.StatusForbidden {
		t.Errorf("foreign record read: status = %d, want 403", w.Code)
	}
	if w := doRequest(router, http.MethodGet, "/api/exeats/exeat-001", john, ""); w.Code != http.StatusOK {
		t.Errorf("own record read: status = %d, want 200", w.Code)
	}
	if w := doRequest(router, http.MethodDelete, "/api/exeats/exeat-003", john, ""); w.Code != http.StatusForbidden {
		t.Errorf("foreign record delete: status = %d, want 403", w.Code)
	}

	w := doRequest(router, http.MethodGet, "/api/exeats/mine", john, "")
	if w.Code != http.StatusOK {
		t.Fatalf("mine: status = %d", w.Code)
	}
	var mine struct {
		Data []model.ExeatRequest `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &mine); err != nil {
		t.Fatalf("failed to decode mine response: %v", err)
	}
	if len(mine.Data) != 2 {
		t.Errorf("mine returned %d records, want 2", len(mine.Data))
	}
	for _, rec := range mine.Data {
		if rec.StudentID != "VU123456" {
			t.Errorf("foreign record %s in mine listing", rec.ID)
		}
	}
}

func TestListFilterAndSearch(t *testing.T) {
	router, st := newTestRouter(t)
	if err := store.SeedDemoData(st); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	admin := signToken(t, model.RoleAdmin, "Admin User", "")

	w := doRequest(router, http.MethodGet, "/api/exeats?status=pending&student_id=VU123456", admin, "")
	if w.Code != http.StatusOK {
		t.Fatalf("filtered list: status = %d", w.Code)
	}
	var listed struct {
		Data  []model.ExeatRequest `json:"data"`
		Total int64                `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if listed.Total != 1 || len(listed.Data) != 1 || listed.Data[0].ID != "exeat-002" {
		t.Errorf("conjunctive filter returned %+v", listed.Data)
	}

	w = doRequest(router, http.MethodGet, "/api/exeats?search=jane", admin, "")
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("failed to decode search response: %v", err)
	}
	if listed.Total != 1 || listed.Data[0].StudentName != "Jane Student" {
		t.Errorf("search returned %+v", listed.Data)
	}

	if w := doRequest(router, http.MethodGet, "/api/exeats?status=bogus", admin, ""); w.Code != http.StatusBadRequest {
		t.Errorf("bogus status: status = %d, want 400", w.Code)
	}
}
