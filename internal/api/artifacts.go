package api

import (
	"net/http"

	"github.com/insightportal/attrition/internal/artifact"
	"github.com/insightportal/attrition/internal/schema"
)

type artifactStatusResponse struct {
	Artifacts []artifact.Status `json:"artifacts"`
}

func (s *Server) handleArtifactStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, artifactStatusResponse{Artifacts: s.registry.StatusAll()})
}

type reloadResult struct {
	Variant     schema.Variant `json:"variant"`
	Reloaded    bool           `json:"reloaded"`
	Fingerprint string         `json:"fingerprint,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// handleArtifactReload re-reads both artifact sets from disk. Per-variant
// failures are reported in the body rather than failing the whole request, so
// a deploy that only ships one variant still takes effect.
func (s *Server) handleArtifactReload(w http.ResponseWriter, r *http.Request) {
	results := make([]reloadResult, 0, 2)
	for _, v := range []schema.Variant{schema.Employee, schema.Customer} {
		res := reloadResult{Variant: v}
		set, err := s.registry.Reload(v)
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Reloaded = true
			res.Fingerprint = set.Fingerprint
		}
		results = append(results, res)
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
