package collections

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/solventa-app/solventa/internal/rbac"
	"github.com/solventa-app/solventa/internal/shared"
	"github.com/solventa-app/solventa/internal/view"
)

// Handler manages payment collection endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager, rbacMW rbac.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		csrf:      csrf,
		sessions:  sessions,
		rbac:      rbacMW,
		validator: validator.New(),
	}
}

// MountRoutes registers collection routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermCollectionsView))
		r.Get("/sales/{saleID}", h.showLedger)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermCollectionsCollect))
		r.Post("/sales/{saleID}/payments", h.recordPayment)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermCollectionsLateFee))
		r.Post("/sales/{saleID}/latefee", h.addLateFee)
	})
}

type formErrors map[string]string

type paymentForm struct {
	Amount  float64 `validate:"required,gt=0"`
	Date    string  `validate:"required"`
	Type    string  `validate:"required,oneof=DOWN_PAYMENT FULL_PAYMENT REFINANCE"`
	Method  string
	Place   string
	Receipt string
	Notes   string
}

// installmentRow pairs an installment with its display status.
type installmentRow struct {
	Installment
	DisplayStatus InstallmentStatus
}

func (h *Handler) showLedger(w http.ResponseWriter, r *http.Request) {
	saleID, err := strconv.ParseInt(chi.URLParam(r, "saleID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid sale ID", http.StatusBadRequest)
		return
	}

	installments, err := h.service.Schedule(r.Context(), saleID)
	if err != nil {
		h.logger.Error("load schedule failed", slog.Any("error", err), slog.Int64("sale_id", saleID))
		http.Error(w, "Failed to load schedule", http.StatusInternalServerError)
		return
	}
	payments, err := h.service.Payments(r.Context(), saleID)
	if err != nil {
		h.logger.Error("load payments failed", slog.Any("error", err), slog.Int64("sale_id", saleID))
	}
	lastNotes, err := h.service.LastPaymentNotes(r.Context(), saleID)
	if err != nil {
		h.logger.Error("load last notes failed", slog.Any("error", err))
	}

	today := time.Now()
	rows := make([]installmentRow, len(installments))
	for i, inst := range installments {
		rows[i] = installmentRow{Installment: inst, DisplayStatus: inst.Status(today)}
	}

	h.render(w, r, "pages/collections/ledger.html", map[string]any{
		"SaleID":       saleID,
		"Installments": rows,
		"Payments":     payments,
		"Summary":      Summarize(installments),
		"LastNotes":    lastNotes,
		"Errors":       formErrors{},
	}, http.StatusOK)
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	saleID, err := strconv.ParseInt(chi.URLParam(r, "saleID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid sale ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	amount, _ := strconv.ParseFloat(r.PostFormValue("amount"), 64)
	form := paymentForm{
		Amount:  amount,
		Date:    r.PostFormValue("date"),
		Type:    r.PostFormValue("type"),
		Method:  r.PostFormValue("method"),
		Place:   r.PostFormValue("place"),
		Receipt: r.PostFormValue("receipt"),
		Notes:   r.PostFormValue("notes"),
	}
	if err := h.validator.Struct(form); err != nil {
		h.redirectWithFlash(w, r, ledgerPath(saleID), "error", "Check the payment amount, date and type")
		return
	}
	date, err := time.Parse("2006-01-02", form.Date)
	if err != nil {
		h.redirectWithFlash(w, r, ledgerPath(saleID), "error", "Payment date must be yyyy-mm-dd")
		return
	}

	input := PaymentInput{
		SaleID:     saleID,
		Date:       date,
		Amount:     form.Amount,
		Type:       form.Type,
		Method:     form.Method,
		Place:      form.Place,
		Receipt:    form.Receipt,
		Notes:      form.Notes,
		RecordedBy: currentUserID(r),
	}
	_, result, err := h.service.RegisterPayment(r.Context(), input)
	if err != nil {
		h.redirectWithFlash(w, r, ledgerPath(saleID), "error", shared.UserSafeMessage(err))
		return
	}

	msg := "Payment recorded"
	if result.Leftover > PaidTolerance {
		msg = fmt.Sprintf("Payment recorded; %.2f could not be applied (all installments covered)", result.Leftover)
	}
	h.redirectWithFlash(w, r, ledgerPath(saleID), "success", msg)
}

func (h *Handler) addLateFee(w http.ResponseWriter, r *http.Request) {
	saleID, err := strconv.ParseInt(chi.URLParam(r, "saleID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid sale ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	amount, err := strconv.ParseFloat(r.PostFormValue("amount"), 64)
	if err != nil {
		h.redirectWithFlash(w, r, ledgerPath(saleID), "error", "Late fee amount must be a number")
		return
	}
	due, err := time.Parse("2006-01-02", r.PostFormValue("due_date"))
	if err != nil {
		h.redirectWithFlash(w, r, ledgerPath(saleID), "error", "Due date must be yyyy-mm-dd")
		return
	}
	if _, err := h.service.AddLateFeeInstallment(r.Context(), saleID, amount, due); err != nil {
		h.redirectWithFlash(w, r, ledgerPath(saleID), "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, ledgerPath(saleID), "success", "Late fee installment added")
}

func ledgerPath(saleID int64) string {
	return "/collections/sales/" + strconv.FormatInt(saleID, 10)
}

func currentUserID(r *http.Request) int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{Title: "Collections", CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Data: data}
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
