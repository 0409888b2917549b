package admin

import (
	"net/http"

	"github.com/Rakhulsr/fashion-boutique/app/helpers"
	"github.com/Rakhulsr/fashion-boutique/app/services"
	"github.com/go-playground/validator/v10"
	"github.com/unrolled/render"
	"go.uber.org/zap"
)

type AdminHandler struct {
	render      *render.Render
	validator   *validator.Validate
	catalog     *services.CatalogService
	attributes  *services.AttributeService
	invoices    *services.InvoiceService
	invitations *services.InvitationService
	accounts    *services.AccountService
	log         *zap.Logger
}

func NewAdminHandler(
	render *render.Render,
	validator *validator.Validate,
	catalog *services.CatalogService,
	attributes *services.AttributeService,
	invoices *services.InvoiceService,
	invitations *services.InvitationService,
	accounts *services.AccountService,
	log *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		render:      render,
		validator:   validator,
		catalog:     catalog,
		attributes:  attributes,
		invoices:    invoices,
		invitations: invitations,
		accounts:    accounts,
		log:         log,
	}
}

func (h *AdminHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	helpers.WriteError(h.render, w, r, h.log, err)
}

func (h *AdminHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	return helpers.DecodeAndValidate(h.render, h.validator, h.log, w, r, dst)
}

// Dashboard returns the headline numbers for the back-office landing page.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.accounts.UserStats(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	today, err := h.invoices.DailySummary(ctx, h.invoices.Today())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lowStock, err := h.attributes.LowStockVariants(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	categories, err := h.catalog.ListCategories(ctx, false)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	helpers.RespondSuccess(h.render, w, http.StatusOK, "dashboard retrieved", helpers.Payload{
		"users":           stats,
		"today":           today,
		"low_stock_count": len(lowStock),
		"categories":      len(categories),
	})
}
