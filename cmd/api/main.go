// Command api runs the Emailify backend: the template generation and library
// API, the campaign delivery worker, and the periodic audience drift check,
// all in one process.
package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/handler"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/modules/audiences"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/modules/campaigns"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/modules/templates"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/blobstore"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/clientip"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/config"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/email"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/environment"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/httpserver"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/llm"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/logger"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/mongo"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/opensearch"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/pg"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/queue"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/ratelimiter"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/redis"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/render"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/requestid"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/secrets"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/userid"
)

// appConfig carries service-level settings that belong to no single package.
type appConfig struct {
	AppName string `env:"APP_NAME" envDefault:"emailify-api"`
	AppEnv  string `env:"APP_ENV" envDefault:"development"`

	// SecretsAppKey is the base64-encoded 32-byte key that encrypts stored
	// provider API keys at rest.
	SecretsAppKey string `env:"SECRETS_APP_KEY,required"`

	// DriftCheckHour is the UTC hour the daily audience drift check runs at.
	DriftCheckHour int `env:"AUDIENCES_DRIFT_CHECK_HOUR" envDefault:"6"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("api exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	var (
		appCfg    appConfig
		httpCfg   httpserver.Config
		mongoCfg  mongo.Config
		pgCfg     pg.Config
		redisCfg  redis.Config
		searchCfg opensearch.Config
		emailCfg  email.Config
		llmCfg    llm.Config
		queueCfg  queue.Config
		blobCfg   blobstore.Config
		tplCfg    templates.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&httpCfg)
	config.MustLoad(&mongoCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&searchCfg)
	config.MustLoad(&emailCfg)
	config.MustLoad(&llmCfg)
	config.MustLoad(&queueCfg)
	config.MustLoad(&blobCfg)
	config.MustLoad(&tplCfg)

	env := environment.Parse(appCfg.AppEnv)
	log := logger.New(
		logger.WithEnvironment(env, appCfg.AppName),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			userid.LoggerExtractor(),
			clientip.LoggerExtractor(),
		),
	)
	logger.SetAsDefault(log)

	appKey, err := base64.StdEncoding.DecodeString(appCfg.SecretsAppKey)
	if err != nil {
		return fmt.Errorf("decode SECRETS_APP_KEY: %w", err)
	}
	if len(appKey) != secrets.KeySize {
		return fmt.Errorf("SECRETS_APP_KEY must decode to %d bytes, got %d", secrets.KeySize, len(appKey))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// MongoDB holds the domain documents; Postgres backs the task queue.
	db, err := mongo.Database(ctx, mongoCfg)
	if err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}
	defer func() { _ = db.Client().Disconnect(context.Background()) }()

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	templateStore := templates.NewMongoTemplateStore(db)
	conversationStore := templates.NewMongoConversationStore(db)
	campaignStore := campaigns.NewMongoCampaignStore(db)
	listStore := audiences.NewMongoListStore(db)
	subscriberStore := audiences.NewMongoSubscriberStore(db)
	credentialStore := audiences.NewMongoCredentialStore(db)
	for _, ensure := range []func(context.Context) error{
		templateStore.EnsureIndexes,
		conversationStore.EnsureIndexes,
		campaignStore.EnsureIndexes,
		listStore.EnsureIndexes,
		subscriberStore.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return fmt.Errorf("ensure mongodb indexes: %w", err)
		}
	}

	renderer := render.NewMJML()
	llmClient, err := llm.NewAnthropic(llmCfg)
	if err != nil {
		return fmt.Errorf("anthropic client: %w", err)
	}
	generator := templates.NewGenerator(llmClient, templates.NewValidator(renderer),
		templates.WithTimeout(llmCfg.RequestTimeout),
		templates.WithGeneratorLogger(log),
	)

	blobs, err := blobstore.New(ctx, blobCfg)
	if err != nil {
		return fmt.Errorf("blob storage: %w", err)
	}

	var mailer email.EmailSender
	if emailCfg.UsePostmark() {
		mailer, err = email.NewPostmarkClient(emailCfg)
		if err != nil {
			return fmt.Errorf("postmark client: %w", err)
		}
	} else {
		log.Warn("postmark tokens not configured, writing emails to disk",
			slog.String("dir", emailCfg.DevOutputDir))
		mailer = email.NewDevSender(emailCfg.DevOutputDir)
	}

	healthchecks := []func(context.Context) error{
		pg.Healthcheck(pool),
		mongo.Healthcheck(db.Client()),
		redis.Healthcheck(redisClient),
	}

	tplOpts := []templates.ServiceOption{
		templates.WithBlobStorage(blobs),
		templates.WithServiceLogger(log),
		templates.WithPreviewCacheSize(tplCfg.PreviewCacheSize),
	}
	if searchCfg.Enabled() {
		osClient, err := opensearch.New(ctx, searchCfg)
		if err != nil {
			return fmt.Errorf("connect opensearch: %w", err)
		}
		indexer := templates.NewOpenSearchIndexer(osClient, "")
		if err := indexer.EnsureIndex(ctx); err != nil {
			return fmt.Errorf("ensure search index: %w", err)
		}
		tplOpts = append(tplOpts, templates.WithIndexer(indexer))
		healthchecks = append(healthchecks, opensearch.Healthcheck(osClient))
	}
	templateSvc, err := templates.NewService(generator, renderer, templateStore, conversationStore, tplOpts...)
	if err != nil {
		return fmt.Errorf("templates service: %w", err)
	}

	repo := queue.NewPostgresRepository(pool)
	enqueuer, err := queue.NewEnqueuer(repo)
	if err != nil {
		return fmt.Errorf("queue enqueuer: %w", err)
	}

	campaignSvc := campaigns.NewService(campaignStore, templateStore, renderer, mailer, enqueuer,
		campaigns.WithServiceLogger(log))
	campaignSender := campaigns.NewSender(campaignStore, templateStore, renderer, mailer,
		campaigns.WithSenderLogger(log))

	// The remote audience provider is deployment wiring (audiences.WithProvider);
	// without it the reconcile endpoints answer 503 and the drift check idles.
	audienceSvc, err := audiences.NewService(listStore, subscriberStore, credentialStore, appKey,
		audiences.WithServiceLogger(log))
	if err != nil {
		return fmt.Errorf("audiences service: %w", err)
	}

	worker, err := queue.NewWorker(repo,
		queue.WithPullInterval(queueCfg.PollInterval),
		queue.WithLockTimeout(queueCfg.LockTimeout),
		queue.WithMaxConcurrentTasks(queueCfg.MaxConcurrentTasks),
		queue.WithWorkerLogger(log),
	)
	if err != nil {
		return fmt.Errorf("queue worker: %w", err)
	}
	if err := worker.RegisterHandlers(
		campaignSender.Handler(),
		queue.NewPeriodicTaskHandler(audiences.DriftCheckTaskName, audienceSvc.DriftCheck),
	); err != nil {
		return fmt.Errorf("register task handlers: %w", err)
	}

	scheduler, err := queue.NewScheduler(repo, queue.WithSchedulerLogger(log))
	if err != nil {
		return fmt.Errorf("queue scheduler: %w", err)
	}
	if err := scheduler.AddTask(audiences.DriftCheckTaskName, queue.DailyAt(appCfg.DriftCheckHour, 0)); err != nil {
		return fmt.Errorf("schedule drift check: %w", err)
	}

	limiter := ratelimiter.Must(
		ratelimiter.NewRedisStore(redisClient),
		ratelimiter.PerMinute(tplCfg.GeneratePerMinute),
	)
	errorHandler := handler.NewErrorHandler(log)

	root := chi.NewRouter()
	root.Use(requestid.Middleware, clientip.Middleware)
	root.Get("/healthz", httpserver.HealthCheckHandler(ctx, log, healthchecks...))

	// Hosted previews from the local backend are plain files; serve them
	// where their published URLs point. The S3 backend serves its own.
	if (blobCfg.Provider == "" || blobCfg.Provider == "local") && strings.HasPrefix(blobCfg.BaseURL, "/") {
		prefix := strings.TrimSuffix(blobCfg.BaseURL, "/")
		root.Handle(prefix+"/*", http.StripPrefix(prefix+"/", http.FileServer(http.Dir(blobCfg.LocalDir))))
	}

	root.Group(func(r chi.Router) {
		r.Use(userid.Middleware)
		r.Mount("/campaigns", campaigns.Router(campaigns.RouterOptions{
			Service:      campaignSvc,
			ErrorHandler: errorHandler,
		}))
		r.Mount("/audiences", audiences.Router(audiences.RouterOptions{
			Service:      audienceSvc,
			ErrorHandler: errorHandler,
		}))
		r.Mount("/", templates.Router(templates.RouterOptions{
			Service:         templateSvc,
			ErrorHandler:    errorHandler,
			GenerateLimiter: limiter,
		}))
	})

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx, root) })
	g.Go(worker.Run(ctx))
	g.Go(scheduler.Run(ctx))

	log.Info("emailify api started",
		slog.String("addr", httpCfg.Addr),
		slog.String("env", string(env)))

	return g.Wait()
}
