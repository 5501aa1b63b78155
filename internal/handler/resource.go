package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"oyna-console/internal/listing"
	"oyna-console/internal/logging"
	"oyna-console/internal/middleware"
	"oyna-console/internal/service"
	"oyna-console/internal/validation"
	"oyna-console/pkg/apierror"
	"oyna-console/pkg/response"
)

// ResourceHandler serves the generic admin pages of every registered resource.
type ResourceHandler struct {
	registry *service.Registry
	validate *validation.Validator
	log      logging.Logger
}

// NewResourceHandler creates a new resource handler.
func NewResourceHandler(registry *service.Registry, validate *validation.Validator, log logging.Logger) *ResourceHandler {
	if log == nil {
		log = logging.Nop()
	}
	return &ResourceHandler{registry: registry, validate: validate, log: log.With("component", "resource")}
}

// ListResponse is a resource page with its stats.
type ListResponse struct {
	service.View
	Stats map[string]any `json:"stats,omitempty"`
}

// Index handles GET /console/resources
func (h *ResourceHandler) Index(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		Name    string           `json:"name"`
		Label   string           `json:"label"`
		Columns []service.Column `json:"columns"`
		Actions []string         `json:"actions"`
	}

	resources := h.registry.All()
	out := make([]entry, 0, len(resources))
	for _, res := range resources {
		e := entry{Name: res.Name(), Label: res.Label(), Columns: res.Columns()}
		for _, a := range res.Actions() {
			e.Actions = append(e.Actions, a.Name)
		}
		out = append(out, e)
	}
	response.OK(w, out)
}

// List handles GET /console/{resource}
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r)
	if !ok {
		return
	}
	params, err := listing.ParamsFromQuery(r.URL.Query())
	if err != nil {
		response.Error(w, err)
		return
	}
	client, _, ok := sessionClient(w, r)
	if !ok {
		return
	}

	page := res.Open(r.Context(), client, params, true)
	defer page.Close()

	v, err := page.View(r.Context())
	if err != nil {
		remoteError(w, err)
		return
	}
	if v.State.Errored {
		h.log.Warn(r.Context(), "list failed",
			"request_id", middleware.GetRequestID(r.Context()), "resource", res.Name(), "error", v.Err)
		response.Fail(w, apierror.FromRemote(v.Err).StatusCode, ListResponse{View: v})
		return
	}

	out := ListResponse{View: v}
	if res.HasStats() {
		stats, err := res.Stats(r.Context(), client)
		if err != nil {
			h.log.Warn(r.Context(), "stats failed", "resource", res.Name(), "error", err)
		} else {
			out.Stats = stats
		}
	}
	response.OK(w, out)
}

// Create handles POST /console/{resource}
func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "create", "")
}

// Update handles PUT /console/{resource}/{id}
func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "update", chi.URLParam(r, "id"))
}

// Delete handles DELETE /console/{resource}/{id}
func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "delete", chi.URLParam(r, "id"))
}

// Action handles POST /console/{resource}/{id}/{action}
func (h *ResourceHandler) Action(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, chi.URLParam(r, "action"), chi.URLParam(r, "id"))
}

// run validates the body, performs the action remotely and answers with the
// re-fetched list.
func (h *ResourceHandler) run(w http.ResponseWriter, r *http.Request, name, id string) {
	res, ok := h.resource(w, r)
	if !ok {
		return
	}
	action, ok := res.Action(name)
	if !ok {
		response.Error(w, apierror.NotFound("Bu kayıt için böyle bir işlem yok."))
		return
	}
	if action.Scope == service.ItemScope && id == "" {
		response.Error(w, apierror.BadRequest("id is required"))
		return
	}

	var body any
	if action.Form != nil {
		body = action.Form()
		if err := h.validate.DecodeJSON(r, body); err != nil {
			response.Error(w, err)
			return
		}
	}

	params, err := listing.ParamsFromQuery(r.URL.Query())
	if err != nil {
		response.Error(w, err)
		return
	}
	client, _, ok := sessionClient(w, r)
	if !ok {
		return
	}

	page := res.Open(r.Context(), client, params, false)
	defer page.Close()

	v, err := page.Run(r.Context(), action, id, body)
	if err != nil {
		h.log.Warn(r.Context(), "action failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"resource", res.Name(), "action", name, "id", id, "error", err)
		remoteError(w, err)
		return
	}

	h.log.Info(r.Context(), "action performed", "resource", res.Name(), "action", name, "id", id)
	if action.Scope == service.CollectionScope {
		response.Created(w, ListResponse{View: v})
		return
	}
	response.OK(w, ListResponse{View: v})
}

func (h *ResourceHandler) resource(w http.ResponseWriter, r *http.Request) (service.Resource, bool) {
	res, ok := h.registry.Get(chi.URLParam(r, "resource"))
	if !ok {
		response.Error(w, apierror.NotFound("Sayfa bulunamadı."))
		return nil, false
	}
	return res, true
}
