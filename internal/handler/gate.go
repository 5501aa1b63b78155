package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"oyna-console/internal/gate"
	"oyna-console/internal/logging"
	"oyna-console/internal/middleware"
	"oyna-console/internal/model"
	"oyna-console/internal/service"
	"oyna-console/internal/validation"
	"oyna-console/pkg/apierror"
	"oyna-console/pkg/response"
)

// GateHandler serves the access code form of the protected sections.
type GateHandler struct {
	cfg      gate.Config
	sections []service.Section
	locks    *gate.Locks
	validate *validation.Validator
	log      logging.Logger
	now      func() time.Time
}

// NewGateHandler creates a new gate handler.
func NewGateHandler(cfg gate.Config, sections []service.Section, validate *validation.Validator, log logging.Logger) *GateHandler {
	if log == nil {
		log = logging.Nop()
	}
	return &GateHandler{
		cfg:      cfg,
		sections: sections,
		locks:    gate.NewLocks(),
		validate: validate,
		log:      log.With("component", "gate"),
		now:      time.Now,
	}
}

// DigitRequest types one character into the focused box.
type DigitRequest struct {
	Digit string `json:"digit" validate:"required,max=4"`
}

// CodeRequest submits the whole code at once.
type CodeRequest struct {
	Code string `json:"code" validate:"required,len=4,number"`
}

// FocusRequest moves the cursor.
type FocusRequest struct {
	Index *int `json:"index" validate:"required,gte=0,lte=3"`
}

// GateResponse is the state of the code form.
type GateResponse struct {
	Section string     `json:"section"`
	Label   string     `json:"label"`
	State   gate.State `json:"state"`
}

// State handles GET /console/gate/{section}
func (h *GateHandler) State(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, g *gate.Gate) (gate.State, error) {
		return g.Open(ctx)
	})
}

// Digit handles POST /console/gate/{section}/digits
func (h *GateHandler) Digit(w http.ResponseWriter, r *http.Request) {
	var req DigitRequest
	if err := h.validate.DecodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	h.serve(w, r, func(ctx context.Context, g *gate.Gate) (gate.State, error) {
		return g.Enter(ctx, req.Digit)
	})
}

// Backspace handles POST /console/gate/{section}/backspace
func (h *GateHandler) Backspace(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, g *gate.Gate) (gate.State, error) {
		return g.Backspace(ctx)
	})
}

// Focus handles POST /console/gate/{section}/focus
func (h *GateHandler) Focus(w http.ResponseWriter, r *http.Request) {
	var req FocusRequest
	if err := h.validate.DecodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	h.serve(w, r, func(ctx context.Context, g *gate.Gate) (gate.State, error) {
		return g.Focus(ctx, *req.Index)
	})
}

// Verify handles POST /console/gate/{section}/verify
func (h *GateHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req CodeRequest
	if err := h.validate.DecodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	h.serve(w, r, func(ctx context.Context, g *gate.Gate) (gate.State, error) {
		return g.Submit(ctx, req.Code)
	})
}

// Lock handles DELETE /console/gate/{section}
func (h *GateHandler) Lock(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, g *gate.Gate) (gate.State, error) {
		return g.Revoke(ctx)
	})
}

func (h *GateHandler) serve(w http.ResponseWriter, r *http.Request, step func(context.Context, *gate.Gate) (gate.State, error)) {
	sec, ok := service.FindSection(h.sections, chi.URLParam(r, "section"))
	if !ok {
		response.Error(w, apierror.NotFound("Sayfa bulunamadı."))
		return
	}
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	g := gate.New(sec.Name, sess.Storage(), h.cfg,
		gate.WithClock(h.now),
		gate.WithLocks(h.locks, middleware.GetClientID(ctx)+":"+sec.Name),
		gate.OnGranted(func(grant model.AccessGrant) {
			h.log.Info(ctx, "section unlocked",
				"request_id", middleware.GetRequestID(ctx),
				"section", sec.Name, "expires_at", grant.ExpiresAt)
		}),
	)

	before, err := g.Open(ctx)
	st := before
	if err == nil {
		st, err = step(ctx, g)
	}
	if errors.Is(err, gate.ErrInvalidCode) {
		response.Error(w, apierror.ValidationError("Kod 4 haneli olmalıdır.",
			apierror.FieldError{Field: "code", Message: "4 karakter olmalıdır."}))
		return
	}
	if err != nil {
		h.log.Error(ctx, "gate storage failed",
			"request_id", middleware.GetRequestID(ctx), "section", sec.Name, "error", err)
		response.Error(w, apierror.ServiceUnavailable(""))
		return
	}
	if st.Status == gate.LockedOut && before.Status != gate.LockedOut {
		h.log.Warn(ctx, "section locked out", "section", sec.Name, "attempts", st.Attempts)
	}

	response.OK(w, GateResponse{Section: sec.Name, Label: sec.Label, State: st})
}
