package handler

import (
	"net/http"
	"time"

	"oyna-console/internal/gate"
	"oyna-console/internal/logging"
	"oyna-console/internal/service"
	"oyna-console/internal/validation"
	"oyna-console/pkg/apierror"
	"oyna-console/pkg/response"
)

// SectionHandler serves the protected sections once they are unlocked.
type SectionHandler struct {
	validate *validation.Validator
	log      logging.Logger
	now      func() time.Time
}

// NewSectionHandler creates a new section handler.
func NewSectionHandler(validate *validation.Validator, log logging.Logger) *SectionHandler {
	if log == nil {
		log = logging.Nop()
	}
	return &SectionHandler{validate: validate, log: log.With("component", "sections"), now: time.Now}
}

// Get returns the handler for GET /console/sections/{name}
func (h *SectionHandler) Get(sec service.Section) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := h.open(w, r, sec)
		if !ok {
			return
		}
		defer page.Close()

		v, err := page.View(r.Context())
		if err != nil {
			remoteError(w, err)
			return
		}
		if v.State.Errored {
			response.Fail(w, apierror.FromRemote(v.Err).StatusCode, v)
			return
		}
		response.OK(w, v)
	}
}

// Put returns the handler for PUT /console/sections/{name}
func (h *SectionHandler) Put(sec service.Section) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form service.SectionForm
		if err := h.validate.DecodeJSON(r, &form); err != nil {
			response.Error(w, err)
			return
		}

		page, ok := h.open(w, r, sec)
		if !ok {
			return
		}
		defer page.Close()

		v, err := page.Save(r.Context(), form.Values)
		if err != nil {
			remoteError(w, err)
			return
		}
		h.log.Info(r.Context(), "section saved", "section", sec.Name)
		response.OK(w, v)
	}
}

// open mounts the section page. The fetch is enabled only while the grant is
// valid, independently of the route guard.
func (h *SectionHandler) open(w http.ResponseWriter, r *http.Request, sec service.Section) (*service.SectionPage, bool) {
	client, sess, ok := sessionClient(w, r)
	if !ok {
		return nil, false
	}

	granted, err := gate.HasValidGrant(r.Context(), sess.Storage(), sec.Name, h.now())
	if err != nil {
		h.log.Warn(r.Context(), "grant check failed", "section", sec.Name, "error", err)
	}
	if !granted {
		response.Error(w, apierror.Locked("").WithRedirect("/console/gate/"+sec.Name))
		return nil, false
	}
	return service.OpenSection(r.Context(), client, sec, granted), true
}
