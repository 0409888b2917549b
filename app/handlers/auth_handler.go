package handlers

import (
	"net/http"

	"github.com/Rakhulsr/fashion-boutique/app/helpers"
	"github.com/Rakhulsr/fashion-boutique/app/middlewares"
	"github.com/Rakhulsr/fashion-boutique/app/services"
	"github.com/Rakhulsr/fashion-boutique/app/utils/apitoken"
	"github.com/Rakhulsr/fashion-boutique/app/utils/logger"
	"github.com/Rakhulsr/fashion-boutique/app/utils/sessions"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/unrolled/render"
	"go.uber.org/zap"
)

type AuthHandler struct {
	render       *render.Render
	validator    *validator.Validate
	accounts     *services.AccountService
	verification *services.VerificationService
	invitations  *services.InvitationService
	sessionStore sessions.SessionStore
	tokens       *apitoken.Issuer
	log          *zap.Logger
}

func NewAuthHandler(
	r *render.Render,
	validator *validator.Validate,
	accounts *services.AccountService,
	verification *services.VerificationService,
	invitations *services.InvitationService,
	sessionStore sessions.SessionStore,
	tokens *apitoken.Issuer,
	log *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		render:       r,
		validator:    validator,
		accounts:     accounts,
		verification: verification,
		invitations:  invitations,
		sessionStore: sessionStore,
		tokens:       tokens,
		log:          log,
	}
}

type LoginForm struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type EmailForm struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyCodeForm struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type ResetPasswordForm struct {
	Email           string `json:"email" validate:"required,email"`
	Code            string `json:"code" validate:"required,len=6,numeric"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

func (h *AuthHandler) RegisterPostHandler(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if !helpers.DecodeAndValidate(h.render, h.validator, h.log, w, r, &req) {
		return
	}

	user, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		helpers.WriteError(h.render, w, r, h.log, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusCreated, "registration successful", helpers.Payload{"user": user})
}

func (h *AuthHandler) LoginPostHandler(w http.ResponseWriter, r *http.Request) {
	var form LoginForm
	if !helpers.DecodeAndValidate(h.render, h.validator, h.log, w, r, &form) {
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), form.Login, form.Password)
	if err != nil {
		helpers.WriteError(h.render, w, r, h.log, err)
		return
	}
	if err := h.sessionStore.SetUser(w, r, user.ID, user.Role); err != nil {
		helpers.WriteError(h.render, w, r, h.log, err)
		return
	}

	logger.FromContext(r.Context(), h.log).Info("user logged in", zap.String("user_id", user.ID))
	helpers.RespondSuccess(h.render, w, http.StatusOK, "login successful", helpers.Payload{"user": user})
}

func (h *AuthHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionStore.ClearSession(w, r); err != nil {
		helpers.WriteError(h.render, w, r, h.log, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "logged out", nil)
}

// TokenPostHandler exchanges credentials for a bearer token.
func (h *AuthHandler) TokenPostHandler(w http.ResponseWriter, r *http.Request) {
	if !h.tokens.Enabled() {
		helpers.RespondError(h.render, w, http.StatusServiceUnavailable, "bearer tokens are not enabled", nil)
		return
	}

	var form LoginForm
	if !helpers.DecodeAndValidate(h.render, h.validator, h.log, w, r, &form) {
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), form.Login, form.Password)
	if err != nil {
		helpers.WriteError(h.render, w, r, h.log, err)
		return
	}
	token, expiresAt, err := h.tokens.Issue(user.ID, user.Role)
	if err != nil {
		helpers.WriteError(h.render, w, r, h.log, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "token issued", helpers.Payload{
		"token":      token,
		"token_type": "Bearer",
		"expires_at": expiresAt,
		"user":       user,
	})
}

func (h *AuthHandler) ForgotPasswordPostHandler(w http.ResponseWriter, r *http.Request) {
	var form EmailForm
	if !helpers.DecodeAndValidate(h.render, h.validator, h.log, w, r, &form) {
		return
	}
	if err := h.verification.RequestCode(r.Context(), form.Email); err != nil {
		helpers.WriteError(h.render, w, r, h.log, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "if the email is registered a verification code has been sent", nil)
}

func (h *AuthHandler) VerifyOTPPostHandler(w http.ResponseWriter, r *http.Request) {
	var form VerifyCodeForm
	if !helpers.DecodeAndValidate(h.render, h.validator, h.log, w, r, &form) {
		return
	}
	if err := h.verification.VerifyCode(r.Context(), form.Email, form.Code); err != nil {
		helpers.WriteError(h.render, w, r, h.log, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "verification code is valid", nil)
}

func (h *AuthHandler) ResetPasswordPostHandler(w http.ResponseWriter, r *http.Request) {
	var form ResetPasswordForm
	if !helpers.DecodeAndValidate(h.render, h.validator, h.log, w, r, &form) {
		return
	}
	if err := h.verification.ResetPassword(r.Context(), form.Email, form.Code, form.Password, form.ConfirmPassword); err != nil {
		helpers.WriteError(h.render, w, r, h.log, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "password has been reset", nil)
}

func (h *AuthHandler) InvitationGetHandler(w http.ResponseWriter, r *http.Request) {
	invitation, err := h.invitations.Validate(r.Context(), mux.Vars(r)["token"])
	if err != nil {
		helpers.WriteError(h.render, w, r, h.log, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "invitation is valid", helpers.Payload{
		"email":      invitation.Email,
		"role":       invitation.Role,
		"expires_at": invitation.ExpiresAt,
	})
}

func (h *AuthHandler) CSRFTokenHandler(w http.ResponseWriter, r *http.Request) {
	helpers.RespondSuccess(h.render, w, http.StatusOK, "csrf token", helpers.Payload{
		"csrf_token": csrf.Token(r),
		"header":     middlewares.CSRFHeader,
	})
}

func (h *AuthHandler) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.GetUser(r.Context(), helpers.CurrentUserID(r))
	if err != nil {
		helpers.WriteError(h.render, w, r, h.log, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "profile retrieved", helpers.Payload{"user": user})
}

func (h *AuthHandler) UpdateProfilePost(w http.ResponseWriter, r *http.Request) {
	var update services.ProfileUpdate
	if !helpers.DecodeAndValidate(h.render, h.validator, h.log, w, r, &update) {
		return
	}
	user, err := h.accounts.UpdateProfile(r.Context(), helpers.CurrentUserID(r), update)
	if err != nil {
		helpers.WriteError(h.render, w, r, h.log, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "profile updated", helpers.Payload{"user": user})
}

func (h *AuthHandler) ChangePasswordPost(w http.ResponseWriter, r *http.Request) {
	var req services.ChangePasswordRequest
	if !helpers.DecodeAndValidate(h.render, h.validator, h.log, w, r, &req) {
		return
	}
	if err := h.accounts.ChangePassword(r.Context(), helpers.CurrentUserID(r), req); err != nil {
		helpers.WriteError(h.render, w, r, h.log, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "password changed", nil)
}
