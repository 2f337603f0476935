package rates

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/solventa-app/solventa/internal/rbac"
	"github.com/solventa-app/solventa/internal/shared"
	"github.com/solventa-app/solventa/internal/view"
)

// Handler manages rate configuration endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
	rbac      rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, sessions: sessions, rbac: rbac}
}

// MountRoutes registers rate routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermRatesView))
		r.Get("/", h.listPlanRates)
		r.Get("/convert", h.convert)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermRatesEdit))
		r.Post("/{plan}", h.updatePlanRates)
	})
}

type formErrors map[string]string

func (h *Handler) listPlanRates(w http.ResponseWriter, r *http.Request) {
	planRates, err := h.service.ListPlanRates(r.Context())
	if err != nil {
		h.render(w, r, "pages/rates/list.html", map[string]any{"Errors": formErrors{"general": shared.UserSafeMessage(err)}}, http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/rates/list.html", map[string]any{"PlanRates": planRates, "Plans": Plans()}, http.StatusOK)
}

// convert answers the sale form's live rate recalculation: given one of
// tem/tna/tea as a query parameter, return the consistent triple as JSON.
func (h *Handler) convert(w http.ResponseWriter, r *http.Request) {
	var (
		set RateSet
		err error
	)
	q := r.URL.Query()
	switch {
	case q.Get("tem") != "":
		var tem float64
		if tem, err = strconv.ParseFloat(q.Get("tem"), 64); err == nil {
			set, err = FromTEM(tem)
		}
	case q.Get("tna") != "":
		var tna float64
		if tna, err = strconv.ParseFloat(q.Get("tna"), 64); err == nil {
			set, err = FromTNA(tna)
		}
	case q.Get("tea") != "":
		var tea float64
		if tea, err = strconv.ParseFloat(q.Get("tea"), 64); err == nil {
			set, err = FromTEA(tea)
		}
	default:
		http.Error(w, "one of tem, tna or tea is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, shared.UserSafeMessage(err), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(set); err != nil {
		h.logger.Error("encode rate set", slog.Any("error", err))
	}
}

func (h *Handler) updatePlanRates(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	plan := chi.URLParam(r, "plan")
	tem, err := strconv.ParseFloat(r.PostFormValue("tem"), 64)
	if err != nil {
		h.redirectWithFlash(w, r, "/rates", "error", "Monthly rate must be a number")
		return
	}
	if _, err := h.service.SetPlanRates(r.Context(), plan, tem); err != nil {
		h.redirectWithFlash(w, r, "/rates", "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/rates", "success", "Rates updated")
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{Title: "Rates", CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Data: data}
	w.WriteHeader(status)
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err))
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
