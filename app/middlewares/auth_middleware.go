package middlewares

import (
	"net/http"
	"strings"

	"github.com/Rakhulsr/fashion-boutique/app/helpers"
	"github.com/Rakhulsr/fashion-boutique/app/repositories"
	"github.com/Rakhulsr/fashion-boutique/app/utils/apitoken"
	"github.com/Rakhulsr/fashion-boutique/app/utils/logger"
	"github.com/Rakhulsr/fashion-boutique/app/utils/sessions"
	"github.com/unrolled/render"
	"go.uber.org/zap"
)

const (
	AuthViaSession = "session"
	AuthViaBearer  = "bearer"
)

type Authenticator struct {
	render       *render.Render
	sessionStore sessions.SessionStore
	tokens       *apitoken.Issuer
	userRepo     repositories.UserRepositoryImpl
	log          *zap.Logger
}

func NewAuthenticator(rnd *render.Render, sessionStore sessions.SessionStore, tokens *apitoken.Issuer, userRepo repositories.UserRepositoryImpl, log *zap.Logger) *Authenticator {
	return &Authenticator{
		render:       rnd,
		sessionStore: sessionStore,
		tokens:       tokens,
		userRepo:     userRepo,
		log:          log,
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

// Authenticate resolves the caller from a bearer token or the session cookie
// and stores the user in the request context. Anonymous requests pass through.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context(), a.log)

		userID, via := "", ""
		if token, ok := bearerToken(r); ok {
			claims, err := a.tokens.Parse(token)
			if err != nil {
				helpers.RespondError(a.render, w, http.StatusUnauthorized, "invalid or expired token", nil)
				return
			}
			userID, via = claims.UserID, AuthViaBearer
		} else if id := a.sessionStore.GetUserID(r); id != "" {
			userID, via = id, AuthViaSession
		}

		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := a.userRepo.FindByID(r.Context(), userID)
		if err != nil {
			log.Error("failed to load authenticated user", zap.String("user_id", userID), zap.Error(err))
			helpers.RespondError(a.render, w, http.StatusInternalServerError, "internal server error", nil)
			return
		}
		if user == nil {
			log.Warn("authenticated user no longer exists", zap.String("user_id", userID))
			if via == AuthViaSession {
				_ = a.sessionStore.ClearSession(w, r)
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(helpers.WithUser(r.Context(), user, via)))
	})
}

func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if helpers.CurrentUser(r) == nil {
			helpers.RespondError(a.render, w, http.StatusUnauthorized, "authentication required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := helpers.CurrentUser(r)
		if user == nil {
			helpers.RespondError(a.render, w, http.StatusUnauthorized, "authentication required", nil)
			return
		}
		if !user.IsAdmin() {
			logger.FromContext(r.Context(), a.log).Warn("admin route denied",
				zap.String("user_id", user.ID),
				zap.String("path", r.URL.Path),
			)
			helpers.RespondError(a.render, w, http.StatusForbidden, "admin role required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
