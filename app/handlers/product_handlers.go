package handlers

import (
	"net/http"
	"strings"

	"github.com/Rakhulsr/fashion-boutique/app/helpers"
	"github.com/Rakhulsr/fashion-boutique/app/models"
	"github.com/Rakhulsr/fashion-boutique/app/repositories"
	"github.com/Rakhulsr/fashion-boutique/app/services"
	"github.com/gorilla/mux"
	"github.com/unrolled/render"
	"go.uber.org/zap"
)

type ProductHandler struct {
	render  *render.Render
	catalog *services.CatalogService
	log     *zap.Logger
}

func NewProductHandler(r *render.Render, catalog *services.CatalogService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{render: r, catalog: catalog, log: log}
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request, category string) {
	page, perPage := helpers.ParsePagination(r)
	filter := repositories.ProductFilter{
		Query:    strings.TrimSpace(r.URL.Query().Get("q")),
		Category: category,
		Status:   models.StatusActive,
		Page:     page,
		PerPage:  perPage,
	}

	products, pagination, err := h.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		helpers.WriteError(h.render, w, r, h.log, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "products retrieved", helpers.Payload{
		"products":   products,
		"pagination": pagination,
	})
}

// Products lists active products. ?q= searches name, category and description.
func (h *ProductHandler) Products(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, strings.TrimSpace(r.URL.Query().Get("category")))
}

func (h *ProductHandler) ProductsByCategory(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, mux.Vars(r)["name"])
}

func (h *ProductHandler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.catalog.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		helpers.WriteError(h.render, w, r, h.log, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "product retrieved", helpers.Payload{
		"product":          detail.Product,
		"related_products": detail.Related,
	})
}

func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context(), true)
	if err != nil {
		helpers.WriteError(h.render, w, r, h.log, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "categories retrieved", helpers.Payload{
		"categories": categories,
	})
}
