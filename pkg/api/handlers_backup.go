package api

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"

	"github.com/dd0wney/starry-habits/pkg/habits"
	"github.com/dd0wney/starry-habits/pkg/storage"
)

// handleExport returns all data as JSON, or as a YAML backup with ?format=yaml.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.Export(r.Context())
	if err != nil {
		s.respondServiceError(w, err, "export")
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		s.respondJSON(w, http.StatusOK, data)
	case "yaml":
		var buf bytes.Buffer
		if err := storage.ExportYAML(&buf, data); err != nil {
			s.respondServiceError(w, err, "export")
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.Header().Set("Content-Disposition", `attachment; filename="starry-habits.yaml"`)
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	default:
		s.respondError(w, http.StatusBadRequest, "format must be json or yaml")
	}
}

// handleImport replaces all data. The body is JSON unless the content type
// names YAML.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var data *habits.Data
	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml":
		imported, err := storage.ImportYAML(r.Body)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid backup: %v", err))
			return
		}
		data = imported
	default:
		var decoded habits.Data
		rd := newRequestDecoder(r).DecodeJSON(&decoded)
		if rd.HasError() {
			rd.Respond(s, w)
			return
		}
		data = &decoded
	}

	if err := s.service.Import(r.Context(), data); err != nil {
		s.respondServiceError(w, err, "import")
		return
	}
	s.respondJSON(w, http.StatusOK, ImportResponse{Habits: len(data.Habits), Logs: len(data.Logs)})
}

