package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/ivankudzin/matrimony/internal/config"
	"github.com/ivankudzin/matrimony/internal/domain/rules"
	mailinfra "github.com/ivankudzin/matrimony/internal/infra/mail"
	"github.com/ivankudzin/matrimony/internal/infra/metrics"
	mongoinfra "github.com/ivankudzin/matrimony/internal/infra/mongo"
	s3infra "github.com/ivankudzin/matrimony/internal/infra/s3"
	mongorepo "github.com/ivankudzin/matrimony/internal/repo/mongo"
	pgrepo "github.com/ivankudzin/matrimony/internal/repo/postgres"
	redrepo "github.com/ivankudzin/matrimony/internal/repo/redis"
	authsvc "github.com/ivankudzin/matrimony/internal/services/auth"
	chatsvc "github.com/ivankudzin/matrimony/internal/services/chat"
	interactionsvc "github.com/ivankudzin/matrimony/internal/services/interactions"
	matchessvc "github.com/ivankudzin/matrimony/internal/services/matches"
	mediasvc "github.com/ivankudzin/matrimony/internal/services/media"
	notifysvc "github.com/ivankudzin/matrimony/internal/services/notify"
	prefsvc "github.com/ivankudzin/matrimony/internal/services/preferences"
	profilesvc "github.com/ivankudzin/matrimony/internal/services/profiles"
	ratesvc "github.com/ivankudzin/matrimony/internal/services/rate"
	"github.com/ivankudzin/matrimony/internal/services/realtime"
	searchsvc "github.com/ivankudzin/matrimony/internal/services/search"
	"github.com/ivankudzin/matrimony/internal/transport/http/handlers"
	"github.com/ivankudzin/matrimony/internal/transport/socket"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	mongo      *mongodriver.Client
	redis      *goredis.Client
	s3         *minio.Client
	notify     *notifysvc.Queue
	socket     *socket.Server
	cancel     context.CancelFunc
	httpRouter http.Handler
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	registry := metrics.New()
	health := handlers.NewHealthHandler()

	r := chi.NewRouter()
	ApplyMiddlewares(r, log, cfg.HTTP.AllowedOrigins, registry)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
		if err := pgrepo.Migrate(ctx, pool); err != nil {
			log.Warn("postgres migrate failed, continuing in degraded mode", zap.Error(err))
		}
		health.AttachCheck("postgres", pool)
	}

	var mongoClient *mongodriver.Client
	var conversations chatsvc.ConversationStore
	if client, db, err := mongoinfra.Connect(ctx, mongoinfra.Config{
		URI:            cfg.Mongo.URI,
		Database:       cfg.Mongo.Database,
		ConnectTimeout: cfg.Mongo.ConnectTimeout,
	}); err != nil {
		log.Warn("mongo init failed, continuing in degraded mode", zap.Error(err))
	} else {
		mongoClient = client
		health.AttachCheck("mongo", pingFunc(func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		}))
		if repo, err := mongorepo.NewConversationRepo(ctx, db); err != nil {
			log.Warn("conversation store init failed, continuing in degraded mode", zap.Error(err))
		} else {
			conversations = repo
		}
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := redrepo.Ping(ctx, redisClient); err != nil {
		log.Warn("redis ping failed, continuing in degraded mode", zap.Error(err))
	}
	health.AttachCheck("redis", pingFunc(func(ctx context.Context) error {
		return redrepo.Ping(ctx, redisClient)
	}))
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	rateRepo := redrepo.NewRateRepo(redisClient)
	sequenceRepo := redrepo.NewSequenceRepo(redisClient, rules.FirstDisplayNumber)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}
	photoStorage := mediasvc.NewPhotoBucket(s3Client, cfg.S3.Bucket)
	if s3Client != nil {
		if err := photoStorage.EnsureBucket(ctx); err != nil {
			log.Warn("s3 bucket check failed, photo urls may be empty", zap.Error(err))
		}
	}
	photoService := mediasvc.NewService(photoStorage, cfg.S3.PhotoURLTTL, log)

	userRepo := pgrepo.NewUserRepo(pool)
	profileRepo := pgrepo.NewProfileRepo(pool)
	profileRepo.SetCandidateCap(cfg.Limits.CandidatePool)
	preferenceRepo := pgrepo.NewPreferenceRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	interactionRepo := pgrepo.NewInteractionRepo(pool)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, sessionRepo, cfg.Auth.RefreshTTL)
	authService.AttachUsers(userRepo)

	rateLimiter := ratesvc.NewLimiter(rateRepo, cfg.Limits.InterestsPerHour, cfg.Limits.MessagesPerMinute)

	profileService := profilesvc.NewService(profileRepo, sequenceRepo, photoService, log)
	preferenceService := prefsvc.NewService(preferenceRepo)
	matchService := matchessvc.NewService(matchessvc.Dependencies{
		Profiles:    profileRepo,
		Preferences: preferenceRepo,
		Matches:     matchRepo,
		Resolver:    profileService,
		Summaries:   profileService,
		Metrics:     registry,
		Logger:      log,
	})

	searchService := searchsvc.NewService(profileRepo, preferenceRepo, profileService)

	interactionService := interactionsvc.NewService(interactionsvc.Dependencies{
		Interactions: interactionRepo,
		Profiles:     profileRepo,
		Users:        userRepo,
		Summaries:    profileService,
		Logger:       log,
	})
	interactionService.AttachRateLimiter(rateLimiter)
	profileService.AttachViews(interactionService)

	var queue *notifysvc.Queue
	if mailer, err := mailinfra.NewSendGridMailer(mailinfra.Config{
		APIKey:    cfg.Mail.SendGridAPIKey,
		FromEmail: cfg.Mail.FromEmail,
		FromName:  cfg.Mail.FromName,
	}); err != nil {
		log.Warn("interest emails disabled", zap.Error(err))
	} else {
		queue = notifysvc.NewQueue(notifysvc.NewInterestNotifier(mailer, cfg.Mail.FrontendURL), cfg.Mail.QueueSize, log)
		queue.AttachMetrics(registry)
		interactionService.AttachNotifier(queue)
	}

	hub := realtime.NewHub(log)
	hub.AttachMetrics(registry)

	chatService := chatsvc.NewService(chatsvc.Dependencies{
		Conversations: conversations,
		Profiles:      profileRepo,
		Users:         userRepo,
		Summaries:     profileService,
		Logger:        log,
	})
	chatService.AttachRelay(hub)
	chatService.AttachRateLimiter(rateLimiter)

	socketServer := socket.NewServer(hub, authService, log)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:        authService,
		ProfileService:     profileService,
		PreferenceService:  preferenceService,
		MatchService:       matchService,
		SearchService:      searchService,
		InteractionService: interactionService,
		ChatService:        chatService,
		Health:             health,
		Metrics:            registry.Handler(),
		Realtime:           socketServer,
		Logger:             log,
		Config:             cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		mongo:      mongoClient,
		redis:      redisClient,
		s3:         s3Client,
		notify:     queue,
		socket:     socketServer,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	bgCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.notify != nil {
		go a.notify.Run(bgCtx)
	}
	go func() {
		if err := a.socket.Run(); err != nil {
			a.logger.Error("socket server stopped", zap.Error(err))
		}
	}()

	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if err := a.socket.Close(); err != nil && shutdownErr == nil {
		shutdownErr = err
	}
	if a.notify != nil {
		a.notify.Close()
	}
	if a.cancel != nil {
		a.cancel()
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.mongo != nil {
		if err := a.mongo.Disconnect(ctx); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
