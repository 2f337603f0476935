package report

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/solventa-app/solventa/internal/collections"
	"github.com/solventa-app/solventa/internal/masterdata"
	"github.com/solventa-app/solventa/internal/rbac"
	"github.com/solventa-app/solventa/internal/sales"
	"github.com/solventa-app/solventa/internal/shared"
)

// Handler serves printable sale documents as PDFs.
type Handler struct {
	client     *Client
	sales      *sales.Service
	ledger     *collections.Service
	masterdata masterdata.Service
	logger     *slog.Logger
	rbac       rbac.Middleware
}

// NewHandler creates a report handler.
func NewHandler(client *Client, salesSvc *sales.Service, ledger *collections.Service, md masterdata.Service, logger *slog.Logger, rbacMW rbac.Middleware) *Handler {
	return &Handler{
		client:     client,
		sales:      salesSvc,
		ledger:     ledger,
		masterdata: md,
		logger:     logger,
		rbac:       rbacMW,
	}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermDocumentsPrint))
		r.Get("/sales/{saleID}/contract", h.contract)
		r.Get("/sales/{saleID}/promissory-note", h.promissoryNote)
		r.Get("/sales/{saleID}/statement", h.statement)
	})
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) contract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sale, ok := h.loadSale(w, r)
	if !ok {
		return
	}
	client, err := h.masterdata.GetClient(ctx, sale.ClientID)
	if err != nil {
		h.fail(w, "load client", err)
		return
	}
	product, err := h.masterdata.GetProduct(ctx, sale.ProductID)
	if err != nil {
		h.fail(w, "load product", err)
		return
	}
	salesperson, err := h.masterdata.GetPersonnel(ctx, sale.SalespersonID)
	if err != nil {
		h.fail(w, "load salesperson", err)
		return
	}
	html, err := ContractHTML(ContractData{
		Sale:        sale,
		Client:      client,
		Guarantor:   h.loadGuarantor(r, sale),
		Product:     product,
		Salesperson: salesperson,
		GeneratedAt: time.Now(),
	})
	if err != nil {
		h.fail(w, "build contract", err)
		return
	}
	h.servePDF(w, r, html, fmt.Sprintf("contract-%d.pdf", sale.ID))
}

func (h *Handler) promissoryNote(w http.ResponseWriter, r *http.Request) {
	sale, ok := h.loadSale(w, r)
	if !ok {
		return
	}
	client, err := h.masterdata.GetClient(r.Context(), sale.ClientID)
	if err != nil {
		h.fail(w, "load client", err)
		return
	}
	html, err := PromissoryHTML(PromissoryData{
		Sale:        sale,
		Client:      client,
		Guarantor:   h.loadGuarantor(r, sale),
		GeneratedAt: time.Now(),
	})
	if err != nil {
		h.fail(w, "build promissory note", err)
		return
	}
	h.servePDF(w, r, html, fmt.Sprintf("promissory-note-%d.pdf", sale.ID))
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sale, ok := h.loadSale(w, r)
	if !ok {
		return
	}
	client, err := h.masterdata.GetClient(ctx, sale.ClientID)
	if err != nil {
		h.fail(w, "load client", err)
		return
	}
	installments, err := h.ledger.Schedule(ctx, sale.ID)
	if err != nil {
		h.fail(w, "load schedule", err)
		return
	}
	payments, err := h.ledger.Payments(ctx, sale.ID)
	if err != nil {
		h.fail(w, "load payments", err)
		return
	}
	html, err := StatementHTML(StatementData{
		Sale:         sale,
		Client:       client,
		Installments: installments,
		Payments:     payments,
		Summary:      collections.Summarize(installments),
		GeneratedAt:  time.Now(),
	})
	if err != nil {
		h.fail(w, "build statement", err)
		return
	}
	h.servePDF(w, r, html, fmt.Sprintf("statement-%d.pdf", sale.ID))
}

func (h *Handler) loadSale(w http.ResponseWriter, r *http.Request) (sales.Sale, bool) {
	saleID, err := strconv.ParseInt(chi.URLParam(r, "saleID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid sale ID", http.StatusBadRequest)
		return sales.Sale{}, false
	}
	sale, err := h.sales.Get(r.Context(), saleID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.Error(w, "Sale not found", http.StatusNotFound)
			return sales.Sale{}, false
		}
		h.fail(w, "load sale", err)
		return sales.Sale{}, false
	}
	return sale, true
}

// loadGuarantor returns nil when the sale has none or the lookup fails; the
// documents render without the guarantor section in both cases.
func (h *Handler) loadGuarantor(r *http.Request, sale sales.Sale) *masterdata.Guarantor {
	if sale.GuarantorID == nil {
		return nil
	}
	guarantor, err := h.masterdata.GetGuarantor(r.Context(), *sale.GuarantorID)
	if err != nil {
		h.logger.Warn("load guarantor", slog.Any("error", err), slog.Int64("guarantor_id", *sale.GuarantorID))
		return nil
	}
	return &guarantor
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) servePDF(w http.ResponseWriter, r *http.Request, html, filename string) {
	pdf, err := h.client.RenderHTML(r.Context(), html)
	if err != nil {
		h.logger.Error("render pdf", slog.Any("error", err), slog.String("filename", filename))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename="+filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
