package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.DisableRates = true
	return cfg
}

func TestNew(t *testing.T) {
	server := New(testConfig())

	if server == nil {
		t.Fatal("Expected server to be created")
	}
	if server.mux == nil {
		t.Fatal("Expected mux to be initialized")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Port != ":8080" {
		t.Errorf("Expected port ':8080', got '%s'", cfg.Port)
	}
	if cfg.RatesFrom != "2012-01-01" {
		t.Errorf("Expected rates from 2012-01-01, got '%s'", cfg.RatesFrom)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := New(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response["status"] != "ok" {
		t.Errorf("Expected status 'ok', got '%s'", response["status"])
	}
}

func TestProcessEndpoint_MethodNotAllowed(t *testing.T) {
	server := New(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/process", nil)
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestProcessEndpoint_NoFile(t *testing.T) {
	server := New(testConfig())

	req := httptest.NewRequest(http.MethodPost, "/process", nil)
	req.Header.Set("Content-Type", "multipart/form-data")
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestProcessEndpoint_InvalidFile(t *testing.T) {
	server := New(testConfig())

	// Multipart form carrying something that is not a PDF. The failure
	// is reported per document; with no statements left the ledger
	// build is rejected.
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("files", "test.pdf")
	part.Write([]byte("not a valid pdf"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/process", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", w.Code)
	}

	var response processResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Errors) != 1 {
		t.Errorf("Expected 1 per-file error, got %d", len(response.Errors))
	}
}

func TestRequestValue_QueryParam(t *testing.T) {
	server := New(testConfig())

	req := httptest.NewRequest(http.MethodPost, "/process?format=xlsx&year=2023", nil)

	if got := server.requestValue(req, "format"); got != "xlsx" {
		t.Errorf("Expected 'xlsx', got '%s'", got)
	}
	if got := server.requestValue(req, "year"); got != "2023" {
		t.Errorf("Expected '2023', got '%s'", got)
	}
}
