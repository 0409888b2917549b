package admin

import (
	"net/http"

	"github.com/Rakhulsr/fashion-boutique/app/helpers"
	"github.com/Rakhulsr/fashion-boutique/app/services"
	"github.com/gorilla/mux"
)

// ListCategories includes inactive categories with their product counts.
func (h *AdminHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context(), false)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "categories retrieved", helpers.Payload{"categories": categories})
}

func (h *AdminHandler) AddCategoryPost(w http.ResponseWriter, r *http.Request) {
	var in services.CategoryInput
	if !h.decode(w, r, &in) {
		return
	}
	category, err := h.catalog.CreateCategory(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusCreated, "category created", helpers.Payload{"category": category})
}

func (h *AdminHandler) EditCategoryPost(w http.ResponseWriter, r *http.Request) {
	var in services.CategoryInput
	if !h.decode(w, r, &in) {
		return
	}
	category, err := h.catalog.UpdateCategory(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "category updated", helpers.Payload{"category": category})
}

func (h *AdminHandler) ToggleCategoryStatus(w http.ResponseWriter, r *http.Request) {
	category, err := h.catalog.ToggleCategoryStatus(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "category status changed", helpers.Payload{"category": category})
}

func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteCategory(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "category deleted", nil)
}
