package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"catalog/api/internal/catalog"
	"catalog/api/internal/export"
	"catalog/api/internal/manual"
	"catalog/api/internal/search"
	"catalog/api/internal/selection"
	"catalog/api/internal/taxonomy"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"store": map[string]any{"status": "ok"},
		}

		if err := s.service.Ping(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["store"] = map[string]any{
				"status": "error",
				"error":  err.Error(),
			}
		}

		writeJSON(w, statusCode, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/taxonomy" {
		query := parseCatalogQuery(r)
		tree, counts := s.service.Taxonomy(query)
		writeJSON(w, http.StatusOK, map[string]any{
			"pillars": tree.Pillars,
			"counts":  counts,
		})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/taxonomy/flat" {
		writeJSON(w, http.StatusOK, map[string]any{"activities": s.service.Flat()})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/selections" {
		writeJSON(w, http.StatusOK, map[string]any{"selections": s.service.Selections()})
		return
	}

	// /api/selections/{activityID} and /api/selections/{activityID}/{field}
	if parts := splitPath(r.URL.Path); len(parts) >= 3 && parts[0] == "api" && parts[1] == "selections" {
		activityID := parts[2]

		if r.Method == http.MethodDelete && len(parts) == 3 {
			if err := s.service.ClearSelection(r.Context(), activityID); err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			return
		}

		if r.Method == http.MethodPut && len(parts) == 4 {
			switch parts[3] {
			case "status":
				var body struct {
					Status selection.Status `json:"status"`
				}
				if err := decodeBody(r, &body); err != nil {
					writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
					return
				}
				sel, err := s.service.ToggleStatus(r.Context(), activityID, body.Status)
				if err != nil {
					status, code, message, details := mapError(err)
					writeError(w, status, code, message, details)
					return
				}
				writeJSON(w, http.StatusOK, map[string]any{"selection": sel})
				return
			case "overrides":
				var body struct {
					Urgency   taxonomy.Urgency   `json:"urgency"`
					Condition taxonomy.Condition `json:"condition"`
				}
				if err := decodeBody(r, &body); err != nil {
					writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
					return
				}
				sel, err := s.service.SetOverrides(r.Context(), activityID, body.Urgency, body.Condition)
				if err != nil {
					status, code, message, details := mapError(err)
					writeError(w, status, code, message, details)
					return
				}
				writeJSON(w, http.StatusOK, map[string]any{"selection": sel})
				return
			case "notes":
				var body struct {
					Notes string `json:"notes"`
				}
				if err := decodeBody(r, &body); err != nil {
					writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
					return
				}
				sel, err := s.service.SetNotes(r.Context(), activityID, body.Notes)
				if err != nil {
					status, code, message, details := mapError(err)
					writeError(w, status, code, message, details)
					return
				}
				writeJSON(w, http.StatusOK, map[string]any{"selection": sel})
				return
			}
		}
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/stats" {
		query := parseCatalogQuery(r)
		counts, levels := s.service.Stats(query)
		writeJSON(w, http.StatusOK, map[string]any{
			"statuses": counts,
			"levels":   levels,
		})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/export" {
		req, err := parseExportRequest(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_QUERY", err.Error(), nil)
			return
		}
		result, err := s.service.Export(req)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeFile(w, result)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/manual" {
		writeJSON(w, http.StatusOK, map[string]any{"manual": s.service.Manual()})
		return
	}

	if r.Method == http.MethodPut && r.URL.Path == "/api/manual" {
		var body manual.Data
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		updated, err := s.service.UpdateManual(r.Context(), body)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"manual": updated})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/manual/steps" {
		writeJSON(w, http.StatusOK, map[string]any{"steps": s.service.ManualSteps()})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/manual/export" {
		result, err := s.service.ExportManual()
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeFile(w, result)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/manual/history" {
		limit := 20
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				limit = parsed
			}
		}
		items, err := s.service.ManualHistory(limit)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"history": items})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/search" {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				limit = parsed
			}
		}
		response := s.service.Search(search.Query{
			Text:     r.URL.Query().Get("q"),
			PillarID: r.URL.Query().Get("pillar"),
			Limit:    limit,
		})
		writeJSON(w, http.StatusOK, response)
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func parseCatalogQuery(r *http.Request) catalog.Query {
	values := r.URL.Query()
	return catalog.Query{
		Text:          values.Get("q"),
		PillarID:      values.Get("pillar"),
		SubCategoryID: values.Get("subCategory"),
		TypeID:        values.Get("type"),
		Status:        selection.Status(values.Get("status")),
		CriticalOnly:  values.Get("criticalOnly") == "true",
	}
}

func parseExportRequest(r *http.Request) (export.Request, error) {
	values := r.URL.Query()
	req := export.Request{
		Format:   export.Format(values.Get("format")),
		Levels:   export.AllLevels(),
		Elements: export.AllElements(),
	}
	if req.Format == "" {
		return export.Request{}, fmt.Errorf("format is required")
	}
	if raw := values.Get("levels"); raw != "" {
		req.Levels = export.Levels{}
		for _, level := range strings.Split(raw, ",") {
			switch strings.TrimSpace(level) {
			case "pillar":
				req.Levels.Pillar = true
			case "subCategory":
				req.Levels.SubCategory = true
			case "type":
				req.Levels.Type = true
			case "":
			default:
				return export.Request{}, fmt.Errorf("unknown level %q", level)
			}
		}
	}
	if raw := values.Get("elements"); raw != "" {
		req.Elements = export.Elements{}
		for _, element := range strings.Split(raw, ",") {
			switch strings.TrimSpace(element) {
			case "definitions":
				req.Elements.Definitions = true
			case "criticality":
				req.Elements.Criticality = true
			case "notes":
				req.Elements.Notes = true
			case "":
			default:
				return export.Request{}, fmt.Errorf("unknown element %q", element)
			}
		}
	}
	return req, nil
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

// writeFile sends an export artifact as an attachment download.
func writeFile(w http.ResponseWriter, result *export.Result) {
	w.Header().Set("Content-Type", result.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}
