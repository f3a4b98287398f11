package httpapi

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/openleadr/openleadr-go/internal/apperr"
	"github.com/openleadr/openleadr-go/internal/auth"
	"github.com/openleadr/openleadr-go/internal/storage"
	"github.com/openleadr/openleadr-go/wire"
)

// ListReports handles GET /reports.
func (s *Server) ListReports(w http.ResponseWriter, r *http.Request) {
	c, err := claims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	perm, err := venObjectReadPermission(c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	pagination, err := parsePagination(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	filter := storage.ReportFilter{
		ClientName: r.URL.Query().Get("clientName"),
		Pagination: pagination,
	}
	for _, p := range []struct {
		param string
		out   *wire.Identifier
	}{
		{"programID", &filter.ProgramID},
		{"eventID", &filter.EventID},
	} {
		if v := r.URL.Query().Get(p.param); v != "" {
			id, err := wire.ParseIdentifier(v)
			if err != nil {
				writeError(w, r, apperr.Validation("%s: %s", p.param, err.Error()))
				return
			}
			*p.out = id
		}
	}

	reports, err := s.Store.Reports().RetrieveAll(r.Context(), filter, perm)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if reports == nil {
		reports = []wire.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

// GetReport handles GET /reports/{id}.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	c, err := claims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	perm, err := venObjectReadPermission(c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	report, err := s.Store.Reports().Retrieve(r.Context(), id, perm)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// reportWrite resolves the caller for report mutations. The authenticated
// subject always becomes (or must already be) the owning client.
func (s *Server) reportWrite(r *http.Request) (auth.Claims, storage.Permission, error) {
	c, err := claims(r)
	if err != nil {
		return auth.Claims{}, storage.Permission{}, err
	}
	if !c.Scopes.Has(auth.ScopeWriteReports) {
		return auth.Claims{}, storage.Permission{}, errMissingScope(auth.ScopeWriteReports)
	}
	clientID, err := c.ClientID()
	if err != nil {
		return auth.Claims{}, storage.Permission{}, err
	}
	return c, storage.ForClient(clientID), nil
}

// CreateReport handles POST /reports.
func (s *Server) CreateReport(w http.ResponseWriter, r *http.Request) {
	c, perm, err := s.reportWrite(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req wire.ReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, apperr.Validation("%s", err.Error()))
		return
	}

	report, err := s.Store.Reports().Create(r.Context(),
		storage.NewReport{ReportRequest: req, ClientID: perm.ClientID}, perm)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().
		Str("report_id", string(report.ID)).
		Str("client_id", c.Sub).
		Msg("report added")
	s.notify(r, wire.OperationPost, report)
	writeJSON(w, http.StatusCreated, report)
}

// UpdateReport handles PUT /reports/{id}.
func (s *Server) UpdateReport(w http.ResponseWriter, r *http.Request) {
	c, perm, err := s.reportWrite(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req wire.ReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, apperr.Validation("%s", err.Error()))
		return
	}

	report, err := s.Store.Reports().Update(r.Context(), id,
		storage.NewReport{ReportRequest: req, ClientID: perm.ClientID}, perm)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().
		Str("report_id", string(report.ID)).
		Str("client_id", c.Sub).
		Msg("report updated")
	s.notify(r, wire.OperationPut, report)
	writeJSON(w, http.StatusOK, report)
}

// DeleteReport handles DELETE /reports/{id}.
func (s *Server) DeleteReport(w http.ResponseWriter, r *http.Request) {
	c, perm, err := s.reportWrite(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	report, err := s.Store.Reports().Delete(r.Context(), id, perm)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().
		Str("report_id", string(id)).
		Str("client_id", c.Sub).
		Msg("report deleted")
	s.notify(r, wire.OperationDelete, report)
	writeJSON(w, http.StatusOK, report)
}
