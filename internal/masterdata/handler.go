package masterdata

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/solventa-app/solventa/internal/rbac"
	"github.com/solventa-app/solventa/internal/shared"
	"github.com/solventa-app/solventa/internal/view"
)

// Handler manages master data endpoints.
type Handler struct {
	logger    *slog.Logger
	service   Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
	rbac      rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service Service, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, sessions: sessions, rbac: rbac}
}

// MountRoutes registers master data routes.
func (h *Handler) MountRoutes(r chi.Router) {
	// Clients
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermClientView))
		r.Get("/clients", h.listClients)
		r.Get("/clients/{id}", h.showClient)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermClientCreate))
		r.Get("/clients/new", h.showClientForm)
		r.Post("/clients", h.createClient)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermClientEdit))
		r.Get("/clients/{id}/edit", h.showEditClientForm)
		r.Post("/clients/{id}/edit", h.updateClient)
	})

	// Guarantors
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermGuarantorView))
		r.Get("/guarantors", h.listGuarantors)
		r.Get("/guarantors/{id}", h.showGuarantor)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermGuarantorCreate))
		r.Get("/guarantors/new", h.showGuarantorForm)
		r.Post("/guarantors", h.createGuarantor)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermGuarantorEdit))
		r.Get("/guarantors/{id}/edit", h.showEditGuarantorForm)
		r.Post("/guarantors/{id}/edit", h.updateGuarantor)
	})

	// Categories & Products
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermProductView))
		r.Get("/categories", h.listCategories)
		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.showProduct)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermProductCreate))
		r.Post("/categories", h.createCategory)
		r.Get("/products/new", h.showProductForm)
		r.Post("/products", h.createProduct)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermProductEdit))
		r.Get("/products/{id}/edit", h.showEditProductForm)
		r.Post("/products/{id}/edit", h.updateProduct)
	})

	// Personnel
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermPersonnelView))
		r.Get("/personnel", h.listPersonnel)
		r.Get("/personnel/{id}", h.showPersonnel)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermPersonnelCreate))
		r.Get("/personnel/new", h.showPersonnelForm)
		r.Post("/personnel", h.createPersonnel)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermPersonnelEdit))
		r.Get("/personnel/{id}/edit", h.showEditPersonnelForm)
		r.Post("/personnel/{id}/edit", h.updatePersonnel)
	})
}

func listFiltersFromQuery(r *http.Request) ListFilters {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 20
	}
	return ListFilters{
		Page:    page,
		Limit:   limit,
		Search:  r.URL.Query().Get("search"),
		SortBy:  r.URL.Query().Get("sort"),
		SortDir: r.URL.Query().Get("dir"),
	}
}

// parseDate parses an optional yyyy-mm-dd form value.
func parseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil
	}
	return &t
}

// ============================================================================
// CLIENT HANDLERS
// ============================================================================

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	filters := listFiltersFromQuery(r)
	clients, total, err := h.service.ListClients(r.Context(), filters)
	if err != nil {
		h.logger.Error("list clients failed", "error", err)
		http.Error(w, "Failed to load clients", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/masterdata/clients_list.html", map[string]any{
		"Clients":    clients,
		"Filters":    filters,
		"Total":      total,
		"Pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	}, http.StatusOK)
}

func (h *Handler) showClient(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}
	client, err := h.service.GetClient(r.Context(), id)
	if err != nil {
		h.logger.Error("get client failed", "error", err, "id", id)
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}
	h.render(w, r, "pages/masterdata/client_detail.html", map[string]any{
		"Client": client,
	}, http.StatusOK)
}

func (h *Handler) showClientForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/masterdata/client_form.html", map[string]any{
		"Errors": formErrors{},
		"Client": nil,
	}, http.StatusOK)
}

func clientFromForm(r *http.Request) Client {
	return Client{
		LastName:      r.PostFormValue("last_name"),
		FirstName:     r.PostFormValue("first_name"),
		DNI:           r.PostFormValue("dni"),
		BirthDate:     parseDate(r.PostFormValue("birth_date")),
		Occupation:    r.PostFormValue("occupation"),
		HomeAddress:   r.PostFormValue("home_address"),
		City:          r.PostFormValue("city"),
		Province:      r.PostFormValue("province"),
		WorkplaceName: r.PostFormValue("workplace_name"),
		WorkAddress:   r.PostFormValue("work_address"),
		Sex:           r.PostFormValue("sex"),
		MaritalStatus: r.PostFormValue("marital_status"),
		PersonalPhone: r.PostFormValue("personal_phone"),
		WorkPhone:     r.PostFormValue("work_phone"),
		Email:         r.PostFormValue("email"),
		Notes:         r.PostFormValue("notes"),
	}
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	client := clientFromForm(r)
	created, err := h.service.CreateClient(r.Context(), client)
	if err != nil {
		h.render(w, r, "pages/masterdata/client_form.html", map[string]any{
			"Errors": formErrors{"general": shared.UserSafeMessage(err)},
			"Client": client,
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/masterdata/clients/"+strconv.FormatInt(created.ID, 10), "success", "Client created successfully")
}

func (h *Handler) showEditClientForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}
	client, err := h.service.GetClient(r.Context(), id)
	if err != nil {
		h.logger.Error("get client failed", "error", err, "id", id)
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}
	h.render(w, r, "pages/masterdata/client_form.html", map[string]any{
		"Errors": formErrors{},
		"Client": client,
	}, http.StatusOK)
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	client := clientFromForm(r)
	if err := h.service.UpdateClient(r.Context(), id, client); err != nil {
		h.render(w, r, "pages/masterdata/client_form.html", map[string]any{
			"Errors": formErrors{"general": shared.UserSafeMessage(err)},
			"Client": client,
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/masterdata/clients/"+strconv.FormatInt(id, 10), "success", "Client updated successfully")
}

// ============================================================================
// GUARANTOR HANDLERS
// ============================================================================

func (h *Handler) listGuarantors(w http.ResponseWriter, r *http.Request) {
	filters := listFiltersFromQuery(r)
	guarantors, total, err := h.service.ListGuarantors(r.Context(), filters)
	if err != nil {
		h.logger.Error("list guarantors failed", "error", err)
		http.Error(w, "Failed to load guarantors", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/masterdata/guarantors_list.html", map[string]any{
		"Guarantors": guarantors,
		"Filters":    filters,
		"Total":      total,
		"Pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	}, http.StatusOK)
}

func (h *Handler) showGuarantor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid guarantor ID", http.StatusBadRequest)
		return
	}
	guarantor, err := h.service.GetGuarantor(r.Context(), id)
	if err != nil {
		h.logger.Error("get guarantor failed", "error", err, "id", id)
		http.Error(w, "Guarantor not found", http.StatusNotFound)
		return
	}
	h.render(w, r, "pages/masterdata/guarantor_detail.html", map[string]any{
		"Guarantor": guarantor,
	}, http.StatusOK)
}

func (h *Handler) showGuarantorForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/masterdata/guarantor_form.html", map[string]any{
		"Errors":    formErrors{},
		"Guarantor": nil,
	}, http.StatusOK)
}

func guarantorFromForm(r *http.Request) Guarantor {
	return Guarantor{
		LastName:      r.PostFormValue("last_name"),
		FirstName:     r.PostFormValue("first_name"),
		DNI:           r.PostFormValue("dni"),
		BirthDate:     parseDate(r.PostFormValue("birth_date")),
		Occupation:    r.PostFormValue("occupation"),
		HomeAddress:   r.PostFormValue("home_address"),
		City:          r.PostFormValue("city"),
		Province:      r.PostFormValue("province"),
		WorkplaceName: r.PostFormValue("workplace_name"),
		WorkAddress:   r.PostFormValue("work_address"),
		Sex:           r.PostFormValue("sex"),
		MaritalStatus: r.PostFormValue("marital_status"),
		PersonalPhone: r.PostFormValue("personal_phone"),
		WorkPhone:     r.PostFormValue("work_phone"),
		Email:         r.PostFormValue("email"),
		Notes:         r.PostFormValue("notes"),
	}
}

func (h *Handler) createGuarantor(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	guarantor := guarantorFromForm(r)
	created, err := h.service.CreateGuarantor(r.Context(), guarantor)
	if err != nil {
		h.render(w, r, "pages/masterdata/guarantor_form.html", map[string]any{
			"Errors":    formErrors{"general": shared.UserSafeMessage(err)},
			"Guarantor": guarantor,
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/masterdata/guarantors/"+strconv.FormatInt(created.ID, 10), "success", "Guarantor created successfully")
}

func (h *Handler) showEditGuarantorForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid guarantor ID", http.StatusBadRequest)
		return
	}
	guarantor, err := h.service.GetGuarantor(r.Context(), id)
	if err != nil {
		h.logger.Error("get guarantor failed", "error", err, "id", id)
		http.Error(w, "Guarantor not found", http.StatusNotFound)
		return
	}
	h.render(w, r, "pages/masterdata/guarantor_form.html", map[string]any{
		"Errors":    formErrors{},
		"Guarantor": guarantor,
	}, http.StatusOK)
}

func (h *Handler) updateGuarantor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid guarantor ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	guarantor := guarantorFromForm(r)
	if err := h.service.UpdateGuarantor(r.Context(), id, guarantor); err != nil {
		h.render(w, r, "pages/masterdata/guarantor_form.html", map[string]any{
			"Errors":    formErrors{"general": shared.UserSafeMessage(err)},
			"Guarantor": guarantor,
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/masterdata/guarantors/"+strconv.FormatInt(id, 10), "success", "Guarantor updated successfully")
}

// ============================================================================
// CATEGORY & PRODUCT HANDLERS
// ============================================================================

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("list categories failed", "error", err)
		http.Error(w, "Failed to load categories", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/masterdata/categories_list.html", map[string]any{
		"Categories": categories,
	}, http.StatusOK)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	if _, err := h.service.CreateCategory(r.Context(), Category{Name: r.PostFormValue("name")}); err != nil {
		h.redirectWithFlash(w, r, "/masterdata/categories", "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/masterdata/categories", "success", "Category created successfully")
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	filters := listFiltersFromQuery(r)
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filters.CategoryID = &parsed
		}
	}
	products, total, err := h.service.ListProducts(r.Context(), filters)
	if err != nil {
		h.logger.Error("list products failed", "error", err)
		http.Error(w, "Failed to load products", http.StatusInternalServerError)
		return
	}
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("list categories failed", "error", err)
	}
	h.render(w, r, "pages/masterdata/products_list.html", map[string]any{
		"Products":   products,
		"Categories": categories,
		"Filters":    filters,
		"Total":      total,
		"Pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	}, http.StatusOK)
}

func (h *Handler) showProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.logger.Error("get product failed", "error", err, "id", id)
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	h.render(w, r, "pages/masterdata/product_detail.html", map[string]any{
		"Product": product,
	}, http.StatusOK)
}

func (h *Handler) showProductForm(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("list categories failed", "error", err)
	}
	h.render(w, r, "pages/masterdata/product_form.html", map[string]any{
		"Errors":     formErrors{},
		"Product":    nil,
		"Categories": categories,
	}, http.StatusOK)
}

func productFromForm(r *http.Request) Product {
	product := Product{Name: r.PostFormValue("name")}
	if raw := r.PostFormValue("category_id"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			product.CategoryID = &parsed
		}
	}
	return product
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	product := productFromForm(r)
	created, err := h.service.CreateProduct(r.Context(), product)
	if err != nil {
		h.render(w, r, "pages/masterdata/product_form.html", map[string]any{
			"Errors":  formErrors{"general": shared.UserSafeMessage(err)},
			"Product": product,
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/masterdata/products/"+strconv.FormatInt(created.ID, 10), "success", "Product created successfully")
}

func (h *Handler) showEditProductForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.logger.Error("get product failed", "error", err, "id", id)
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("list categories failed", "error", err)
	}
	h.render(w, r, "pages/masterdata/product_form.html", map[string]any{
		"Errors":     formErrors{},
		"Product":    product,
		"Categories": categories,
	}, http.StatusOK)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	product := productFromForm(r)
	if err := h.service.UpdateProduct(r.Context(), id, product); err != nil {
		h.render(w, r, "pages/masterdata/product_form.html", map[string]any{
			"Errors":  formErrors{"general": shared.UserSafeMessage(err)},
			"Product": product,
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/masterdata/products/"+strconv.FormatInt(id, 10), "success", "Product updated successfully")
}

// ============================================================================
// PERSONNEL HANDLERS
// ============================================================================

func (h *Handler) listPersonnel(w http.ResponseWriter, r *http.Request) {
	filters := listFiltersFromQuery(r)
	filters.PersonnelKind = r.URL.Query().Get("kind")
	people, total, err := h.service.ListPersonnel(r.Context(), filters)
	if err != nil {
		h.logger.Error("list personnel failed", "error", err)
		http.Error(w, "Failed to load personnel", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/masterdata/personnel_list.html", map[string]any{
		"Personnel":  people,
		"Filters":    filters,
		"Total":      total,
		"Pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	}, http.StatusOK)
}

func (h *Handler) showPersonnel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid personnel ID", http.StatusBadRequest)
		return
	}
	person, err := h.service.GetPersonnel(r.Context(), id)
	if err != nil {
		h.logger.Error("get personnel failed", "error", err, "id", id)
		http.Error(w, "Personnel not found", http.StatusNotFound)
		return
	}
	h.render(w, r, "pages/masterdata/personnel_detail.html", map[string]any{
		"Person": person,
	}, http.StatusOK)
}

func (h *Handler) showPersonnelForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/masterdata/personnel_form.html", map[string]any{
		"Errors": formErrors{},
		"Person": nil,
	}, http.StatusOK)
}

func personnelFromForm(r *http.Request) Personnel {
	return Personnel{
		LastName:      r.PostFormValue("last_name"),
		FirstName:     r.PostFormValue("first_name"),
		DNI:           r.PostFormValue("dni"),
		BirthDate:     parseDate(r.PostFormValue("birth_date")),
		HomeAddress:   r.PostFormValue("home_address"),
		City:          r.PostFormValue("city"),
		Province:      r.PostFormValue("province"),
		Sex:           r.PostFormValue("sex"),
		MaritalStatus: r.PostFormValue("marital_status"),
		PersonalPhone: r.PostFormValue("personal_phone"),
		AltPhone:      r.PostFormValue("alt_phone"),
		Email:         r.PostFormValue("email"),
		CUIL:          r.PostFormValue("cuil"),
		HireDate:      parseDate(r.PostFormValue("hire_date")),
		Kind:          r.PostFormValue("kind"),
	}
}

func (h *Handler) createPersonnel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	person := personnelFromForm(r)
	created, err := h.service.CreatePersonnel(r.Context(), person)
	if err != nil {
		h.render(w, r, "pages/masterdata/personnel_form.html", map[string]any{
			"Errors": formErrors{"general": shared.UserSafeMessage(err)},
			"Person": person,
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/masterdata/personnel/"+strconv.FormatInt(created.ID, 10), "success", "Personnel created successfully")
}

func (h *Handler) showEditPersonnelForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid personnel ID", http.StatusBadRequest)
		return
	}
	person, err := h.service.GetPersonnel(r.Context(), id)
	if err != nil {
		h.logger.Error("get personnel failed", "error", err, "id", id)
		http.Error(w, "Personnel not found", http.StatusNotFound)
		return
	}
	h.render(w, r, "pages/masterdata/personnel_form.html", map[string]any{
		"Errors": formErrors{},
		"Person": person,
	}, http.StatusOK)
}

func (h *Handler) updatePersonnel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid personnel ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	person := personnelFromForm(r)
	if err := h.service.UpdatePersonnel(r.Context(), id, person); err != nil {
		h.render(w, r, "pages/masterdata/personnel_form.html", map[string]any{
			"Errors": formErrors{"general": shared.UserSafeMessage(err)},
			"Person": person,
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/masterdata/personnel/"+strconv.FormatInt(id, 10), "success", "Personnel updated successfully")
}

type formErrors map[string]string

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{Title: "Master Data", CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Data: data}
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
