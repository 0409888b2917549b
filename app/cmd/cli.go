package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rakhulsr/fashion-boutique/app/configs"
	"github.com/Rakhulsr/fashion-boutique/app/db/seeders"
	"github.com/Rakhulsr/fashion-boutique/app/metrics"
	"github.com/Rakhulsr/fashion-boutique/app/models/migrations"
	"github.com/Rakhulsr/fashion-boutique/app/repositories"
	"github.com/Rakhulsr/fashion-boutique/app/routes"
	"github.com/Rakhulsr/fashion-boutique/app/services"
	"github.com/Rakhulsr/fashion-boutique/app/utils/logger"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

// ENVLoader is swapped in tests.
type ENVLoader func() (configs.ENV, bool)

func bootstrap(load ENVLoader) (configs.ENV, *zap.Logger, error) {
	env, found := load()
	log, err := logger.New(env.LogLevel, env.AppEnv, env.AppName)
	if err != nil {
		return env, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	if !found {
		log.Info("no .env file found, using process environment")
	}
	return env, log, nil
}

func serve(ctx context.Context, env configs.ENV, log *zap.Logger, autoMigrate bool) error {
	db, err := configs.OpenConnection(env, log)
	if err != nil {
		return err
	}
	if autoMigrate {
		if err := migrations.AutoMigrate(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	var gateway services.PaymentGateway
	if client := configs.NewSnapClient(env); client != nil {
		gateway = services.NewSnapGateway(client, env.MidtransServerKey, configs.MidtransEnvironment(env), env.AppURL+"/payment/finish")
	} else {
		log.Warn("MIDTRANS_SERVER_KEY not set, online payments disabled")
	}

	router, err := routes.NewRouter(routes.Options{
		DB:      db,
		Env:     env,
		Logger:  log,
		Metrics: metrics.New("boutique"),
		Gateway: gateway,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + env.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func newSeeder(db *gorm.DB, log *zap.Logger, seed int64) *seeders.Seeder {
	m := metrics.New("boutique_seed")
	catalog := services.NewCatalogService(db,
		repositories.NewProductRepository(db), repositories.NewCategoryRepository(db), m, log)
	attributes := services.NewAttributeService(db,
		repositories.NewColorRepository(db), repositories.NewSizeRepository(db),
		repositories.NewVariantRepository(db), repositories.NewImageRepository(db),
		repositories.NewProductRepository(db), m)
	return seeders.New(catalog, attributes, seed, log)
}

func NewCommand(load ENVLoader) *cli.Command {
	withRuntime := func(fn func(ctx context.Context, c *cli.Command, env configs.ENV, log *zap.Logger) error) cli.ActionFunc {
		return func(ctx context.Context, c *cli.Command) error {
			env, log, err := bootstrap(load)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			return fn(ctx, c, env, log)
		}
	}

	serveAction := withRuntime(func(ctx context.Context, c *cli.Command, env configs.ENV, log *zap.Logger) error {
		return serve(ctx, env, log, c.Bool("migrate"))
	})

	return &cli.Command{
		Name:   "boutique",
		Usage:  "Fashion boutique storefront and back-office API",
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the HTTP API",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "migrate", Usage: "run database migration before serving"},
				},
				Action: serveAction,
			},
			{
				Name:  "migrate",
				Usage: "Run database migration",
				Action: withRuntime(func(ctx context.Context, c *cli.Command, env configs.ENV, log *zap.Logger) error {
					db, err := configs.OpenConnection(env, log)
					if err != nil {
						return err
					}
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					log.Info("migration complete")
					return nil
				}),
			},
			{
				Name:  "seed",
				Usage: "Fill the catalog with demo categories, attributes and products",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "products", Value: 5, Usage: "products per category"},
					&cli.IntFlag{Name: "seed", Usage: "random seed, current time when zero"},
				},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, env configs.ENV, log *zap.Logger) error {
					db, err := configs.OpenConnection(env, log)
					if err != nil {
						return err
					}
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					seed := int64(c.Int("seed"))
					if seed == 0 {
						seed = time.Now().UnixNano()
					}
					return newSeeder(db, log, seed).DBSeed(ctx, int(c.Int("products")))
				}),
			},
			{
				Name:  "create-admin",
				Usage: "Create an administrator account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true, Sources: cli.EnvVars("ADMIN_PASSWORD")},
				},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, env configs.ENV, log *zap.Logger) error {
					db, err := configs.OpenConnection(env, log)
					if err != nil {
						return err
					}
					userRepo := repositories.NewUserRepository(db)
					accounts := services.NewAccountService(db, userRepo, repositories.NewInvitationRepository(db),
						nil, env.AppName, nil, log, nil)
					user, err := accounts.CreateAdmin(ctx, c.String("username"), c.String("email"), c.String("password"))
					if err != nil {
						return err
					}
					log.Info("admin created", zap.String("user_id", user.ID), zap.String("email", user.Email))
					return nil
				}),
			},
			{
				Name:  "generate-keys",
				Usage: "Generate session, encryption and CSRF keys for .env",
				Action: func(ctx context.Context, c *cli.Command) error {
					return configs.WriteNewSessionKeys(c.Root().Writer)
				},
			},
		},
	}
}

func RunCli() {
	if err := NewCommand(configs.LoadEnv).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
