package admin

import (
	"net/http"
	"strings"
	"time"

	"github.com/Rakhulsr/fashion-boutique/app/helpers"
	"github.com/Rakhulsr/fashion-boutique/app/models"
	"github.com/Rakhulsr/fashion-boutique/app/repositories"
	"github.com/Rakhulsr/fashion-boutique/app/services"
	"github.com/Rakhulsr/fashion-boutique/app/utils/logger"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

func parseDay(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	day, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return nil, services.NewValidationError(field, "%s must be a date formatted as YYYY-MM-DD", field)
	}
	return &day, nil
}

// CreateInvoice registers a sale. With send_email the copy is mailed right
// away; a delivery failure keeps the invoice and is reported in the payload.
func (h *AdminHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req services.CreateInvoiceRequest
	if !h.decode(w, r, &req) {
		return
	}
	if user := helpers.CurrentUser(r); user != nil {
		req.UserID = &user.ID
	}

	invoice, err := h.invoices.Create(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	payload := helpers.Payload{"invoice": invoice}
	if req.SendEmail {
		sent, err := h.invoices.SendEmail(r.Context(), invoice.ID)
		if err != nil {
			logger.FromContext(r.Context(), h.log).Warn("invoice email not delivered",
				zap.String("invoice_number", invoice.InvoiceNumber),
				zap.Error(err),
			)
			payload["email_sent"] = false
			payload["email_error"] = err.Error()
		} else {
			payload["invoice"] = sent
			payload["email_sent"] = true
		}
	}
	helpers.RespondSuccess(h.render, w, http.StatusCreated, "invoice created", payload)
}

// ListInvoices filters by ?status=, ?q= (number, customer name or email) and
// the ?from= / ?to= day range, both inclusive.
func (h *AdminHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	status := strings.TrimSpace(query.Get("status"))
	switch status {
	case "", models.InvoiceStatusActive, models.InvoiceStatusSent, models.InvoiceStatusVoided:
	default:
		h.fail(w, r, services.NewValidationError("status", "unknown invoice status %q", status))
		return
	}

	from, err := parseDay("from", query.Get("from"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	to, err := parseDay("to", query.Get("to"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if to != nil {
		end := to.AddDate(0, 0, 1)
		to = &end
	}

	page, perPage := helpers.ParsePagination(r)
	invoices, pagination, err := h.invoices.List(r.Context(), repositories.InvoiceFilter{
		Status:  status,
		Search:  strings.TrimSpace(query.Get("q")),
		From:    from,
		To:      to,
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "invoices retrieved", helpers.Payload{
		"invoices":   invoices,
		"pagination": pagination,
	})
}

func (h *AdminHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.invoices.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "invoice retrieved", helpers.Payload{"invoice": invoice})
}

func (h *AdminHandler) VoidInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.invoices.Void(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "invoice voided", helpers.Payload{"invoice": invoice})
}

func (h *AdminHandler) SendInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.invoices.SendEmail(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "invoice sent", helpers.Payload{"invoice": invoice})
}

// InvoiceSummary reports the sales of ?date= (YYYY-MM-DD), today by default.
func (h *AdminHandler) InvoiceSummary(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay("date", r.URL.Query().Get("date"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if day == nil {
		today := h.invoices.Today()
		day = &today
	}

	summary, err := h.invoices.DailySummary(r.Context(), *day)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "summary retrieved", helpers.Payload{"summary": summary})
}

func (h *AdminHandler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.invoices.PaymentStatus(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "payment status retrieved", helpers.Payload{"payment": status})
}
