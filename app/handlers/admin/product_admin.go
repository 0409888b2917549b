package admin

import (
	"net/http"
	"strings"

	"github.com/Rakhulsr/fashion-boutique/app/helpers"
	"github.com/Rakhulsr/fashion-boutique/app/models"
	"github.com/Rakhulsr/fashion-boutique/app/repositories"
	"github.com/Rakhulsr/fashion-boutique/app/services"
	"github.com/gorilla/mux"
)

type StockForm struct {
	Stock *int `json:"stock" validate:"required"`
}

// ListProducts returns every product regardless of status. ?status= narrows
// the list to Active or Inactive.
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	status := strings.TrimSpace(query.Get("status"))
	if status != "" && !models.IsValidStatus(status) {
		h.fail(w, r, services.NewValidationError("status", "status must be %s or %s", models.StatusActive, models.StatusInactive))
		return
	}

	page, perPage := helpers.ParsePagination(r)
	products, pagination, err := h.catalog.ListProducts(r.Context(), repositories.ProductFilter{
		Query:    strings.TrimSpace(query.Get("q")),
		Category: strings.TrimSpace(query.Get("category")),
		Status:   status,
		Page:     page,
		PerPage:  perPage,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "products retrieved", helpers.Payload{
		"products":   products,
		"pagination": pagination,
	})
}

func (h *AdminHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	detail, err := h.catalog.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "product retrieved", helpers.Payload{"product": detail.Product})
}

func (h *AdminHandler) AddProductPost(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if !h.decode(w, r, &in) {
		return
	}
	product, err := h.catalog.CreateProduct(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusCreated, "product created", helpers.Payload{"product": product})
}

func (h *AdminHandler) EditProductPost(w http.ResponseWriter, r *http.Request) {
	var patch services.ProductPatch
	if !h.decode(w, r, &patch) {
		return
	}
	product, err := h.catalog.UpdateProduct(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "product updated", helpers.Payload{"product": product})
}

// UpdateStock sets the absolute stock level; status follows the new value.
func (h *AdminHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	var form StockForm
	if !h.decode(w, r, &form) {
		return
	}
	product, err := h.catalog.SetStock(r.Context(), mux.Vars(r)["id"], *form.Stock)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "stock updated", helpers.Payload{"product": product})
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "product deleted", nil)
}
