package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/ideavault/ideavault/modules/api"
	"github.com/ideavault/ideavault/pkg/account"
	"github.com/ideavault/ideavault/pkg/billing"
	"github.com/ideavault/ideavault/pkg/catalog"
	"github.com/ideavault/ideavault/pkg/config"
	"github.com/ideavault/ideavault/pkg/httpserver"
	"github.com/ideavault/ideavault/pkg/jwt"
	"github.com/ideavault/ideavault/pkg/logger"
	"github.com/ideavault/ideavault/pkg/pg"
	"github.com/ideavault/ideavault/pkg/redis"
)

// appConfig holds the settings that do not belong to an infrastructure
// package: token signing, dataset locations and webhook deduplication.
type appConfig struct {
	Environment   string        `env:"APP_ENV" envDefault:"development"`
	ServiceName   string        `env:"APP_NAME" envDefault:"ideavault"`
	JWTSigningKey string        `env:"JWT_SIGNING_KEY,required"`
	PlansPath     string        `env:"PLANS_PATH" envDefault:"configs/plans.yaml"`
	IdeasPath     string        `env:"IDEAS_PATH" envDefault:"data/ideas.yaml"`
	WebhookDedup  time.Duration `env:"WEBHOOK_DEDUP_TTL" envDefault:"24h"`
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var appCfg appConfig
	config.MustLoad(&appCfg)

	log := logger.New(logger.WithEnvironment(appCfg.Environment, appCfg.ServiceName))
	logger.SetAsDefault(log)

	if err := run(ctx, appCfg, log); err != nil {
		log.ErrorContext(ctx, "server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, appCfg appConfig, log *slog.Logger) error {
	var pgCfg pg.Config
	config.MustLoad(&pgCfg)
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return err
	}

	var redisCfg redis.Config
	config.MustLoad(&redisCfg)
	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var stripeCfg billing.StripeConfig
	config.MustLoad(&stripeCfg)
	gateway, err := billing.NewStripeGateway(stripeCfg)
	if err != nil {
		return err
	}

	plans, err := billing.LoadPlanCatalog(appCfg.PlansPath)
	if err != nil {
		return err
	}

	ideas, err := catalog.Load(appCfg.IdeasPath)
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "idea catalog loaded", "ideas", ideas.Len())

	tokens, err := jwt.NewFromString(appCfg.JWTSigningKey)
	if err != nil {
		return err
	}

	var googleCfg account.GoogleConfig
	config.MustLoad(&googleCfg)

	store := account.NewStore(pool)

	accountOpts := []account.ServiceOption{account.WithLogger(log.With(logger.Component("account")))}
	if googleCfg.ClientID != "" {
		verifier, err := account.NewGoogleVerifier(googleCfg)
		if err != nil {
			return err
		}
		accountOpts = append(accountOpts, account.WithGoogleVerifier(verifier))
	}
	accounts := account.NewService(store, tokens, accountOpts...)

	billingLog := log.With(logger.Component("billing"))
	reconciler := billing.NewReconciler(gateway, store, billing.WithReconcilerLogger(billingLog))
	orchestrator := billing.NewOrchestrator(gateway, store, plans, billingLog)
	dedup := billing.NewRedisEventDeduplicator(redisClient, appCfg.WebhookDedup)
	webhooks := billing.NewWebhookHandler(gateway, store, reconciler, dedup, billingLog)

	server := api.NewServer(api.Deps{
		Auth:       accounts,
		Users:      store,
		Ideas:      ideas,
		Plans:      plans,
		Purchases:  orchestrator,
		Reconciler: reconciler,
		Webhooks:   webhooks,
		Log:        log.With(logger.Component("api")),
		Health:     httpserver.HealthCheckHandler(ctx, log, pg.Healthcheck(pool), redis.Healthcheck(redisClient)),
	})

	var httpCfg httpserver.Config
	config.MustLoad(&httpCfg)
	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))

	log.InfoContext(ctx, "starting http server", "addr", httpCfg.Addr)
	return srv.Run(ctx, server.Router())
}
