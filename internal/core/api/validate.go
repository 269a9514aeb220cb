package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/civickit/civickit/internal/core/auth"
	"github.com/civickit/civickit/internal/fields"
	"github.com/civickit/civickit/internal/types"
)

// ValidateRequest carries a declaration to check against the event's
// form definition. Now is optional and defaults to the current date;
// fixing it makes validation reproducible for review workflows.
type ValidateRequest struct {
	Declaration types.FormData `json:"declaration"`
	Now         string         `json:"now,omitempty"`
}

// ValidateResponse reports per-field message descriptors plus the
// derived set of visible values. Hidden field input stays in the stored
// declaration but is absent here.
type ValidateResponse struct {
	Valid         bool                                         `json:"valid"`
	Errors        map[types.FieldID][]types.TranslationMessage `json:"errors,omitempty"`
	VisibleValues types.FormData                               `json:"visibleValues"`
}

// handleValidate runs the full form validation for one declaration.
func (s *Service) handleValidate(w http.ResponseWriter, r *http.Request) {
	eventType := types.EventType(chi.URLParam(r, "eventType"))

	cfg, err := s.store.GetEventConfig(eventType)
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	var req ValidateRequest
	if !s.decode(w, r, &req) {
		return
	}

	now := req.Now
	if now == "" {
		now = today()
	} else if fields.StrictDate(now) != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "now must be a YYYY-MM-DD date",
		})
		return
	}

	// Conditionals may reference the caller; expose the same two
	// properties query resolution uses.
	var user map[string]any
	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		user = map[string]any{
			"id":              principal.UserID,
			"primaryOfficeId": principal.PrimaryOfficeID,
		}
	}

	errs := s.registry.ValidateForm(cfg, req.Declaration, now, user)

	s.logger.Info("declaration validated",
		"event_type", eventType,
		"fields", len(cfg.Fields),
		"invalid_fields", len(errs),
	)

	s.writeJSON(w, http.StatusOK, ValidateResponse{
		Valid:         len(errs) == 0,
		Errors:        errs,
		VisibleValues: fields.VisibleValues(cfg.Fields, req.Declaration, now, user),
	})
}
