package routes

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Rakhulsr/fashion-boutique/app/configs"
	"github.com/Rakhulsr/fashion-boutique/app/handlers"
	"github.com/Rakhulsr/fashion-boutique/app/handlers/admin"
	"github.com/Rakhulsr/fashion-boutique/app/helpers"
	"github.com/Rakhulsr/fashion-boutique/app/metrics"
	"github.com/Rakhulsr/fashion-boutique/app/middlewares"
	"github.com/Rakhulsr/fashion-boutique/app/repositories"
	"github.com/Rakhulsr/fashion-boutique/app/services"
	"github.com/Rakhulsr/fashion-boutique/app/utils/apitoken"
	"github.com/Rakhulsr/fashion-boutique/app/utils/renderer"
	"github.com/Rakhulsr/fashion-boutique/app/utils/sessions"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options carries everything the router needs from the process. Mailer,
// Gateway and Now are optional.
type Options struct {
	DB          *gorm.DB
	Env         configs.ENV
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	Mailer      services.EmailSender
	Gateway     services.PaymentGateway
	Now         services.Clock
	SessionKeys *configs.SessionKeys
}

func NewRouter(opts Options) (*mux.Router, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("router needs a database handle")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New("boutique")
	}
	env := opts.Env
	db := opts.DB

	keys := opts.SessionKeys
	if keys == nil {
		var err error
		if keys, err = configs.LoadSessionKeys(env); err != nil {
			return nil, err
		}
	}
	csrfKey, err := configs.CSRFKey(env, keys)
	if err != nil && env.CSRFEnabled {
		return nil, err
	}

	mailer := opts.Mailer
	if mailer == nil {
		mailer = services.NewMailer(services.Config{
			Host:     env.EmailHost,
			Port:     env.EmailPort,
			Username: env.EmailUsername,
			Password: env.EmailPassword,
			From:     env.EmailFrom,
		})
	}

	rnd := renderer.New(!env.IsProduction())
	validate := helpers.NewValidator()
	secure := env.IsProduction()
	sessionStore := sessions.NewCookieSessionStore(secure, keys.AuthKey, keys.EncKey)

	tokens := apitoken.NewIssuer(env.JWTSecret, time.Duration(env.JWTTTLHours)*time.Hour, opts.Now)

	productRepo := repositories.NewProductRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	colorRepo := repositories.NewColorRepository(db)
	sizeRepo := repositories.NewSizeRepository(db)
	variantRepo := repositories.NewVariantRepository(db)
	imageRepo := repositories.NewImageRepository(db)
	invoiceRepo := repositories.NewInvoiceRepository(db)
	cartRepo := repositories.NewCartItemRepository(db)
	userRepo := repositories.NewUserRepository(db)
	invitationRepo := repositories.NewInvitationRepository(db)

	catalog := services.NewCatalogService(db, productRepo, categoryRepo, m, log)
	attributes := services.NewAttributeService(db, colorRepo, sizeRepo, variantRepo, imageRepo, productRepo, m)
	invoices := services.NewInvoiceService(db, invoiceRepo, productRepo, mailer, opts.Gateway, env.AppName, m, log, opts.Now)
	cart := services.NewCartService(db, cartRepo, productRepo, userRepo, invoices, log)
	accounts := services.NewAccountService(db, userRepo, invitationRepo, mailer, env.AppName, m, log, opts.Now)
	invitations := services.NewInvitationService(invitationRepo, userRepo, mailer, env.AppName, env.AppURL,
		time.Duration(env.InvitationTTLHours)*time.Hour, m, log, opts.Now)
	verification := services.NewVerificationService(userRepo, mailer, env.AppName,
		time.Duration(env.VerificationCodeTTLMinutes)*time.Minute, m, log, opts.Now)

	auth := middlewares.NewAuthenticator(rnd, sessionStore, tokens, userRepo, log)

	healthHandler := handlers.NewHealthHandler(rnd, db)
	productHandler := handlers.NewProductHandler(rnd, catalog, log)
	authHandler := handlers.NewAuthHandler(rnd, validate, accounts, verification, invitations, sessionStore, tokens, log)
	cartHandler := handlers.NewCartHandler(rnd, validate, cart, log)
	adminHandler := admin.NewAdminHandler(rnd, validate, catalog, attributes, invoices, invitations, accounts, log)

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		helpers.RespondError(rnd, w, http.StatusNotFound, "route not found", nil)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		helpers.RespondError(rnd, w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	router.Use(middlewares.Recoverer(rnd, log))
	router.Use(middlewares.RequestLogger(log))
	router.Use(m.Middleware)

	router.HandleFunc("/healthz", healthHandler.Healthz).Methods("GET")
	router.Handle("/metrics", m.Handler()).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.Use(middlewares.CSRFProtect(rnd, csrfKey, secure, env.CSRFEnabled))
	api.Use(auth.Authenticate)

	api.HandleFunc("/products", productHandler.Products).Methods("GET")
	api.HandleFunc("/products/category/{name}", productHandler.ProductsByCategory).Methods("GET")
	api.HandleFunc("/products/{id}", productHandler.ProductDetail).Methods("GET")
	api.HandleFunc("/categories", productHandler.Categories).Methods("GET")
	api.HandleFunc("/invitations/{token}", authHandler.InvitationGetHandler).Methods("GET")
	api.HandleFunc("/csrf-token", authHandler.CSRFTokenHandler).Methods("GET")

	api.HandleFunc("/auth/register", authHandler.RegisterPostHandler).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.LoginPostHandler).Methods("POST")
	api.HandleFunc("/auth/logout", authHandler.LogoutHandler).Methods("POST")
	api.HandleFunc("/auth/token", authHandler.TokenPostHandler).Methods("POST")
	api.HandleFunc("/auth/password-reset/request", authHandler.ForgotPasswordPostHandler).Methods("POST")
	api.HandleFunc("/auth/password-reset/verify", authHandler.VerifyOTPPostHandler).Methods("POST")
	api.HandleFunc("/auth/password-reset/confirm", authHandler.ResetPasswordPostHandler).Methods("POST")

	user := api.NewRoute().Subrouter()
	user.Use(auth.RequireAuth)
	user.HandleFunc("/profile", authHandler.ProfileHandler).Methods("GET")
	user.HandleFunc("/profile", authHandler.UpdateProfilePost).Methods("PUT")
	user.HandleFunc("/profile/password", authHandler.ChangePasswordPost).Methods("POST")

	user.HandleFunc("/cart", cartHandler.GetCart).Methods("GET")
	user.HandleFunc("/cart", cartHandler.AddItemCart).Methods("POST")
	user.HandleFunc("/cart", cartHandler.ClearCart).Methods("DELETE")
	user.HandleFunc("/cart/count", cartHandler.GetCartCount).Methods("GET")
	user.HandleFunc("/cart/checkout", cartHandler.Checkout).Methods("POST")
	user.HandleFunc("/cart/{productID}", cartHandler.UpdateCartItem).Methods("PUT")
	user.HandleFunc("/cart/{productID}", cartHandler.DeleteCartItem).Methods("DELETE")

	api.Handle("/send_invitation", auth.RequireAdmin(http.HandlerFunc(adminHandler.SendInvitation))).Methods("POST")

	adm := api.PathPrefix("/admin").Subrouter()
	adm.Use(auth.RequireAdmin)
	adm.HandleFunc("/dashboard", adminHandler.Dashboard).Methods("GET")

	adm.HandleFunc("/products", adminHandler.ListProducts).Methods("GET")
	adm.HandleFunc("/products", adminHandler.AddProductPost).Methods("POST")
	adm.HandleFunc("/products/{id}", adminHandler.GetProduct).Methods("GET")
	adm.HandleFunc("/products/{id}", adminHandler.EditProductPost).Methods("PUT")
	adm.HandleFunc("/products/{id}", adminHandler.DeleteProduct).Methods("DELETE")
	adm.HandleFunc("/products/{id}/stock", adminHandler.UpdateStock).Methods("PUT")
	adm.HandleFunc("/products/{id}/variants", adminHandler.ListVariants).Methods("GET")
	adm.HandleFunc("/products/{id}/variants", adminHandler.AddVariantPost).Methods("POST")
	adm.HandleFunc("/products/{id}/images", adminHandler.ListImages).Methods("GET")
	adm.HandleFunc("/products/{id}/images", adminHandler.AddImagePost).Methods("POST")
	adm.HandleFunc("/products/{id}/images/{imageID}/main", adminHandler.SetMainImage).Methods("PUT")
	adm.HandleFunc("/products/{id}/images/{imageID}", adminHandler.DeleteImage).Methods("DELETE")

	adm.HandleFunc("/variants/low-stock", adminHandler.LowStockVariants).Methods("GET")
	adm.HandleFunc("/variants/{id}", adminHandler.EditVariantPost).Methods("PUT")
	adm.HandleFunc("/variants/{id}", adminHandler.DeleteVariant).Methods("DELETE")

	adm.HandleFunc("/categories", adminHandler.ListCategories).Methods("GET")
	adm.HandleFunc("/categories", adminHandler.AddCategoryPost).Methods("POST")
	adm.HandleFunc("/categories/{id}", adminHandler.EditCategoryPost).Methods("PUT")
	adm.HandleFunc("/categories/{id}", adminHandler.DeleteCategory).Methods("DELETE")
	adm.HandleFunc("/categories/{id}/toggle", adminHandler.ToggleCategoryStatus).Methods("PUT")

	adm.HandleFunc("/colors", adminHandler.ListColors).Methods("GET")
	adm.HandleFunc("/colors", adminHandler.AddColorPost).Methods("POST")
	adm.HandleFunc("/colors/{id}", adminHandler.EditColorPost).Methods("PUT")
	adm.HandleFunc("/colors/{id}", adminHandler.DeleteColor).Methods("DELETE")
	adm.HandleFunc("/sizes", adminHandler.ListSizes).Methods("GET")
	adm.HandleFunc("/sizes", adminHandler.AddSizePost).Methods("POST")
	adm.HandleFunc("/sizes/{id}", adminHandler.EditSizePost).Methods("PUT")
	adm.HandleFunc("/sizes/{id}", adminHandler.DeleteSize).Methods("DELETE")

	adm.HandleFunc("/invoices", adminHandler.ListInvoices).Methods("GET")
	adm.HandleFunc("/invoices", adminHandler.CreateInvoice).Methods("POST")
	adm.HandleFunc("/invoices/summary", adminHandler.InvoiceSummary).Methods("GET")
	adm.HandleFunc("/invoices/{id}", adminHandler.GetInvoice).Methods("GET")
	adm.HandleFunc("/invoices/{id}/void", adminHandler.VoidInvoice).Methods("POST")
	adm.HandleFunc("/invoices/{id}/send", adminHandler.SendInvoice).Methods("POST")
	adm.HandleFunc("/invoices/{id}/payment-status", adminHandler.PaymentStatus).Methods("GET")

	adm.HandleFunc("/invitations", adminHandler.ListInvitations).Methods("GET")
	adm.HandleFunc("/invitations/{id}", adminHandler.RevokeInvitation).Methods("DELETE")

	adm.HandleFunc("/users", adminHandler.ListUsers).Methods("GET")
	adm.HandleFunc("/users/stats", adminHandler.UserStats).Methods("GET")

	return router, nil
}
