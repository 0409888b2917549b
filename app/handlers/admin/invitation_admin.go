package admin

import (
	"net/http"

	"github.com/Rakhulsr/fashion-boutique/app/helpers"
	"github.com/Rakhulsr/fashion-boutique/app/services"
	"github.com/gorilla/mux"
)

// SendInvitation issues an invitation and emails the registration link.
func (h *AdminHandler) SendInvitation(w http.ResponseWriter, r *http.Request) {
	var req services.InviteRequest
	if !h.decode(w, r, &req) {
		return
	}
	invitation, err := h.invitations.Issue(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusCreated, "invitation sent", helpers.Payload{
		"invitation": invitation,
		"expires_at": invitation.ExpiresAt,
	})
}

func (h *AdminHandler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	page, perPage := helpers.ParsePagination(r)
	invitations, pagination, err := h.invitations.List(r.Context(), page, perPage)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "invitations retrieved", helpers.Payload{
		"invitations": invitations,
		"pagination":  pagination,
	})
}

func (h *AdminHandler) RevokeInvitation(w http.ResponseWriter, r *http.Request) {
	if err := h.invitations.Revoke(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "invitation revoked", nil)
}
