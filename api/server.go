// Package api provides the HTTP surface of the statement processor.
// It accepts statement PDF uploads and returns the reconstructed
// ledger as JSON or as a yearly spreadsheet.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"slstmt/extractor"
	"slstmt/ledger"
	"slstmt/rates"
	"slstmt/report"
)

// Config holds the API server configuration
type Config struct {
	Port      string
	LogPrefix string

	// RatesBaseURL overrides the ECB endpoint; empty means the default.
	RatesBaseURL string
	// RatesFrom is the start of the rate-table range, YYYY-MM-DD.
	RatesFrom string
	// DisableRates skips rate fetching entirely; repayments are then
	// reported without conversion fields.
	DisableRates bool
}

// DefaultConfig returns the default API configuration
func DefaultConfig() Config {
	return Config{
		Port:      ":8080",
		LogPrefix: "API: ",
		RatesFrom: "2012-01-01",
	}
}

// Server represents the HTTP API server
type Server struct {
	config Config
	mux    *http.ServeMux
}

// New creates a new API server with the given configuration
func New(cfg Config) *Server {
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/process", s.handleProcess)
	s.mux.HandleFunc("/health", s.handleHealth)
}

// Handler returns the http.Handler for the server
// This allows the server to be used with custom http.Server configurations
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server (blocking)
func (s *Server) Start() error {
	log.Printf("%sStarting server on %s", s.config.LogPrefix, s.config.Port)
	return http.ListenAndServe(s.config.Port, s.mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// processResponse is the JSON envelope for a processed upload.
type processResponse struct {
	Entries []ledger.Entry `json:"entries"`
	Years   []int          `json:"years"`
	Errors  []string       `json:"errors,omitempty"`
}

// handleProcess extracts every uploaded statement, builds the ledger
// and returns it in the requested format. A file that fails to extract
// is reported in the envelope without failing the request.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	log.Printf("%sReceived request from %s", s.config.LogPrefix, r.RemoteAddr)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse multipart form with 32MB max memory
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		log.Printf("%sError parsing multipart form: %v", s.config.LogPrefix, err)
		http.Error(w, "Could not parse multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		files = r.MultipartForm.File["file"]
	}
	if len(files) == 0 {
		http.Error(w, "No statement files uploaded", http.StatusBadRequest)
		return
	}

	var statements []ledger.Statement
	var failures []string
	for _, header := range files {
		statement, err := s.extractUpload(header)
		if err != nil {
			log.Printf("%sExtraction failed for %s: %v", s.config.LogPrefix, header.Filename, err)
			failures = append(failures, fmt.Sprintf("%s: %v", header.Filename, err))
			continue
		}
		statements = append(statements, statement)
	}

	table := rates.NewTable()
	if !s.config.DisableRates {
		from, err := time.ParseInLocation("2006-01-02", s.config.RatesFrom, time.Local)
		if err != nil {
			from = time.Date(2012, time.January, 1, 0, 0, 0, 0, time.Local)
		}
		client := rates.NewClient(s.config.RatesBaseURL)
		// A fetch failure degrades to an unconverted ledger.
		table.Load(r.Context(), client, from, time.Now().AddDate(0, 0, 1))
	}

	entries, err := ledger.Build(statements, table)
	if err != nil {
		if errors.Is(err, ledger.ErrNoStatements) {
			s.writeJSON(w, http.StatusUnprocessableEntity, processResponse{Errors: failures})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	years := ledger.YearsSpanned(entries)

	if s.requestValue(r, "format") == "xlsx" {
		s.writeSpreadsheet(w, r, entries, years)
		return
	}

	s.writeJSON(w, http.StatusOK, processResponse{
		Entries: entries,
		Years:   years,
		Errors:  failures,
	})
}

func (s *Server) extractUpload(header *multipart.FileHeader) (ledger.Statement, error) {
	file, err := header.Open()
	if err != nil {
		return ledger.Statement{}, err
	}
	defer file.Close()
	return extractor.ProcessReader(file, header.Filename)
}

// writeSpreadsheet renders one spanned year as an XLSX attachment. The
// year query parameter selects it; the default is the latest year.
func (s *Server) writeSpreadsheet(w http.ResponseWriter, r *http.Request, entries []ledger.Entry, years []int) {
	year := years[len(years)-1]
	if value := s.requestValue(r, "year"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			http.Error(w, "Invalid year: "+value, http.StatusBadRequest)
			return
		}
		year = parsed
	}

	from, to := ledger.YearRange(year)
	workbook, err := report.Generate(entries, from, to)
	if err != nil {
		http.Error(w, "Could not generate report: "+err.Error(), http.StatusInternalServerError)
		return
	}

	payload, err := report.Bytes(workbook)
	if err != nil {
		http.Error(w, "Could not serialise report: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+report.FileName(year))
	w.Write(payload)
}

// requestValue reads a flag from form values or query params.
func (s *Server) requestValue(r *http.Request, key string) string {
	if value := r.FormValue(key); value != "" {
		return value
	}
	return r.URL.Query().Get(key)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
