package sales

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/solventa-app/solventa/internal/collections"
	"github.com/solventa-app/solventa/internal/masterdata"
	"github.com/solventa-app/solventa/internal/rates"
	"github.com/solventa-app/solventa/internal/rbac"
	"github.com/solventa-app/solventa/internal/shared"
	"github.com/solventa-app/solventa/internal/view"
)

// Handler manages sale screens.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	ledger     *collections.Service
	rates      *rates.Service
	masterdata masterdata.Service
	templates  *view.Engine
	csrf       *shared.CSRFManager
	sessions   *shared.SessionManager
	rbac       rbac.Middleware
	validator  *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, ledger *collections.Service, ratesSvc *rates.Service, md masterdata.Service, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager, rbacMW rbac.Middleware) *Handler {
	return &Handler{
		logger:     logger,
		service:    service,
		ledger:     ledger,
		rates:      ratesSvc,
		masterdata: md,
		templates:  templates,
		csrf:       csrf,
		sessions:   sessions,
		rbac:       rbacMW,
		validator:  validator.New(),
	}
}

// MountRoutes registers sale routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermSaleView))
		r.Get("/", h.listSales)
		r.Get("/{id}", h.showSale)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermSaleCreate))
		r.Get("/new", h.newSaleForm)
		r.Post("/", h.createSale)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermSaleFinalize))
		r.Post("/{id}/finalize", h.finalizeSale)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermSaleAnnul))
		r.Post("/{id}/annul", h.annulSale)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermSaleRate))
		r.Post("/{id}/ratings", h.rateParticipants)
	})
}

type formErrors map[string]string

type saleForm struct {
	ClientID          int64   `validate:"required,gt=0"`
	GuarantorID       int64   `validate:"omitempty,gt=0"`
	ProductID         int64   `validate:"required,gt=0"`
	CoordinatorID     int64   `validate:"required,gt=0"`
	SalespersonID     int64   `validate:"required,gt=0"`
	CollectorID       int64   `validate:"required,gt=0"`
	Date              string  `validate:"omitempty"`
	FirstDueDate      string  `validate:"required"`
	Principal         float64 `validate:"required,gt=0"`
	InstallmentCount  int     `validate:"required,gt=0"`
	InstallmentAmount float64 `validate:"required,gt=0"`
	TEM               float64 `validate:"gte=0"`
	Plan              string  `validate:"required,oneof=daily weekly monthly"`
	CollectionAddress string  `validate:"omitempty,oneof=personal work"`
	Notes             string
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	filters := ListFilters{
		Page:   page,
		Limit:  limit,
		Search: q.Get("q"),
		Status: Status(q.Get("status")),
	}

	rows, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list sales failed", slog.Any("error", err))
		http.Error(w, "Failed to load sales", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "pages/sales/list.html", map[string]any{
		"Sales":      rows,
		"Search":     filters.Search,
		"Status":     string(filters.Status),
		"Pagination": shared.NewPagination(page, limit, total),
	}, http.StatusOK)
}

func (h *Handler) newSaleForm(w http.ResponseWriter, r *http.Request) {
	data, err := h.formData(r)
	if err != nil {
		h.logger.Error("load sale form data failed", slog.Any("error", err))
		http.Error(w, "Failed to load form", http.StatusInternalServerError)
		return
	}
	data["Errors"] = formErrors{}
	h.render(w, r, "pages/sales/form.html", data, http.StatusOK)
}

// formData gathers the select-list options the sale form needs: products,
// personnel by role, plans and per-plan default rates.
func (h *Handler) formData(r *http.Request) (map[string]any, error) {
	ctx := r.Context()
	products, _, err := h.masterdata.ListProducts(ctx, masterdata.ListFilters{})
	if err != nil {
		return nil, err
	}
	personnel := map[string][]masterdata.Personnel{}
	for _, kind := range []string{masterdata.PersonnelCoordinator, masterdata.PersonnelSalesperson, masterdata.PersonnelCollector} {
		people, _, err := h.masterdata.ListPersonnel(ctx, masterdata.ListFilters{PersonnelKind: kind})
		if err != nil {
			return nil, err
		}
		personnel[kind] = people
	}
	defaults := map[string]rates.RateSet{}
	for _, plan := range rates.Plans() {
		set, err := h.rates.DefaultsFor(ctx, plan)
		if err != nil {
			return nil, err
		}
		defaults[plan] = set
	}
	return map[string]any{
		"Products":     products,
		"Personnel":    personnel,
		"Plans":        rates.Plans(),
		"DefaultRates": defaults,
	}, nil
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	form := saleForm{
		ClientID:          parseInt64(r.PostFormValue("client_id")),
		GuarantorID:       parseInt64(r.PostFormValue("guarantor_id")),
		ProductID:         parseInt64(r.PostFormValue("product_id")),
		CoordinatorID:     parseInt64(r.PostFormValue("coordinator_id")),
		SalespersonID:     parseInt64(r.PostFormValue("salesperson_id")),
		CollectorID:       parseInt64(r.PostFormValue("collector_id")),
		Date:              r.PostFormValue("date"),
		FirstDueDate:      r.PostFormValue("first_due_date"),
		Principal:         parseFloat(r.PostFormValue("principal")),
		InstallmentCount:  int(parseInt64(r.PostFormValue("installment_count"))),
		InstallmentAmount: parseFloat(r.PostFormValue("installment_amount")),
		TEM:               parseFloat(r.PostFormValue("tem")),
		Plan:              r.PostFormValue("plan"),
		CollectionAddress: r.PostFormValue("collection_address"),
		Notes:             r.PostFormValue("notes"),
	}
	if err := h.validator.Struct(form); err != nil {
		h.renderFormWithError(w, r, "Check the required sale fields")
		return
	}
	firstDue, err := time.Parse("2006-01-02", form.FirstDueDate)
	if err != nil {
		h.renderFormWithError(w, r, "First due date must be yyyy-mm-dd")
		return
	}
	var saleDate time.Time
	if form.Date != "" {
		saleDate, err = time.Parse("2006-01-02", form.Date)
		if err != nil {
			h.renderFormWithError(w, r, "Sale date must be yyyy-mm-dd")
			return
		}
	}

	input := NewSaleInput{
		ClientID:          form.ClientID,
		ProductID:         form.ProductID,
		CoordinatorID:     form.CoordinatorID,
		SalespersonID:     form.SalespersonID,
		CollectorID:       form.CollectorID,
		Date:              saleDate,
		FirstDueDate:      firstDue,
		Principal:         form.Principal,
		InstallmentCount:  form.InstallmentCount,
		InstallmentAmount: form.InstallmentAmount,
		TEM:               form.TEM,
		Plan:              form.Plan,
		CollectionAddress: form.CollectionAddress,
		Notes:             form.Notes,
	}
	if form.GuarantorID > 0 {
		input.GuarantorID = &form.GuarantorID
	}

	sale, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.renderFormWithError(w, r, shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, salePath(sale.ID), "success", "Sale created")
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, message string) {
	data, err := h.formData(r)
	if err != nil {
		h.logger.Error("load sale form data failed", slog.Any("error", err))
		http.Error(w, "Failed to load form", http.StatusInternalServerError)
		return
	}
	data["Errors"] = formErrors{"form": message}
	data["Form"] = r.PostForm
	h.render(w, r, "pages/sales/form.html", data, http.StatusBadRequest)
}

func (h *Handler) showSale(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid sale ID", http.StatusBadRequest)
		return
	}
	sale, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("load sale failed", slog.Any("error", err), slog.Int64("sale_id", id))
		http.Error(w, "Failed to load sale", http.StatusInternalServerError)
		return
	}

	client, err := h.masterdata.GetClient(r.Context(), sale.ClientID)
	if err != nil {
		h.logger.Error("load sale client failed", slog.Any("error", err), slog.Int64("sale_id", id))
	}
	installments, err := h.ledger.Schedule(r.Context(), id)
	if err != nil {
		h.logger.Error("load sale schedule failed", slog.Any("error", err), slog.Int64("sale_id", id))
	}

	h.render(w, r, "pages/sales/detail.html", map[string]any{
		"Sale":         sale,
		"Client":       client,
		"Installments": installments,
		"Summary":      collections.Summarize(installments),
		"Ratings":      masterdata.Ratings(),
	}, http.StatusOK)
}

func (h *Handler) finalizeSale(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid sale ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	input := FinalizeInput{
		SaleID:              id,
		SkipOriginalLateFee: r.PostFormValue("skip_original_late_fee") == "on",
		SkipLateFeeLateFee:  r.PostFormValue("skip_late_fee_late_fee") == "on",
	}
	if err := h.service.Finalize(r.Context(), input); err != nil {
		var pending *LateFeePendingError
		if errors.As(err, &pending) {
			h.redirectWithFlash(w, r, salePath(id), "warning", pending.Error())
			return
		}
		h.redirectWithFlash(w, r, salePath(id), "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, salePath(id), "success", "Sale finalized")
}

func (h *Handler) annulSale(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid sale ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.service.Annul(r.Context(), id, r.PostFormValue("reason")); err != nil {
		h.redirectWithFlash(w, r, salePath(id), "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, salePath(id), "success", "Sale annulled")
}

func (h *Handler) rateParticipants(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid sale ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	input := RatingInput{
		SaleID:          id,
		ClientRating:    r.PostFormValue("client_rating"),
		GuarantorRating: r.PostFormValue("guarantor_rating"),
	}
	if err := h.service.RateParticipants(r.Context(), input); err != nil {
		h.redirectWithFlash(w, r, salePath(id), "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, salePath(id), "success", "Ratings saved")
}

func salePath(id int64) string {
	return "/sales/" + strconv.FormatInt(id, 10)
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{Title: "Sales", CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Data: data}
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
