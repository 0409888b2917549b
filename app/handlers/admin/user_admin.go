package admin

import (
	"net/http"

	"github.com/Rakhulsr/fashion-boutique/app/helpers"
)

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, perPage := helpers.ParsePagination(r)
	users, pagination, err := h.accounts.ListUsers(r.Context(), page, perPage)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "users retrieved", helpers.Payload{
		"users":      users,
		"pagination": pagination,
	})
}

func (h *AdminHandler) UserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.accounts.UserStats(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "user stats retrieved", helpers.Payload{"stats": stats})
}
