package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AnkurSaini200/Cupid/internal/config"
	"github.com/AnkurSaini200/Cupid/internal/jobs/cleanup"
	"github.com/AnkurSaini200/Cupid/internal/realtime"
	pgrepo "github.com/AnkurSaini200/Cupid/internal/repo/postgres"
	redrepo "github.com/AnkurSaini200/Cupid/internal/repo/redis"
	authsvc "github.com/AnkurSaini200/Cupid/internal/services/auth"
	chatsvc "github.com/AnkurSaini200/Cupid/internal/services/chat"
	hmusvc "github.com/AnkurSaini200/Cupid/internal/services/hmu"
	matchessvc "github.com/AnkurSaini200/Cupid/internal/services/matches"
	ratesvc "github.com/AnkurSaini200/Cupid/internal/services/rate"
	swipesvc "github.com/AnkurSaini200/Cupid/internal/services/swipes"
	userssvc "github.com/AnkurSaini200/Cupid/internal/services/users"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	hub        *realtime.Hub
	cleanupJob *cleanup.Job
	stopJobs   context.CancelFunc
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	presenceRepo := redrepo.NewPresenceRepo(redisClient)
	rateRepo := redrepo.NewRateRepo(redisClient)
	swipeRepo := pgrepo.NewSwipeRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	conversationRepo := pgrepo.NewConversationRepo(pool)
	messageRepo := pgrepo.NewMessageRepo(pool)
	hmuRepo := pgrepo.NewHMURepo(pool)
	userRepo := pgrepo.NewUserRepo(pool)

	verifier := authsvc.NewVerifier(cfg.Auth.JWTSecret)
	hub := realtime.NewHub(presenceRepo, log)
	realtimeHandler := realtime.NewHandler(hub, verifier, realtime.HandlerConfig{
		SendBuffer: cfg.Realtime.SendBuffer,
		PingPeriod: cfg.Realtime.PingPeriod,
	}, log)

	rateLimiter := ratesvc.NewLimiter(rateRepo, cfg.Chat.SendRatePer10Sec)

	swipeService := swipesvc.NewService(swipesvc.Dependencies{
		Pool:        pool,
		SwipeStore:  swipeRepo,
		MatchStore:  matchRepo,
		Broadcaster: hub,
	})
	matchService := matchessvc.NewService(matchessvc.Dependencies{
		Pool:       pool,
		MatchStore: matchRepo,
		Presence:   hub,
	})
	chatService := chatsvc.NewService(chatsvc.Dependencies{
		Pool:          pool,
		Conversations: conversationRepo,
		Messages:      messageRepo,
		Broadcaster:   hub,
		RateLimiter:   rateLimiter,
	}, chatsvc.Config{
		MaxMessageLen: cfg.Chat.MaxMessageLen,
	})
	hmuService := hmusvc.NewService(hmuRepo, hub, cfg.HMU.FeedLimit)
	userService := userssvc.NewService(userRepo, hub)

	cleanupJob := cleanup.NewJob(hmuRepo, cfg.HMU.Retention, cfg.HMU.CleanupInterval, log)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		Verifier:        verifier,
		SwipeService:    swipeService,
		MatchService:    matchService,
		ChatService:     chatService,
		HMUService:      hmuService,
		UserService:     userService,
		RealtimeHandler: realtimeHandler,
		Logger:          log,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		hub:        hub,
		cleanupJob: cleanupJob,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	jobCtx, cancel := context.WithCancel(context.Background())
	a.stopJobs = cancel
	if a.postgres != nil {
		go a.cleanupJob.Start(jobCtx)
	}

	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if a.stopJobs != nil {
		a.stopJobs()
	}
	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.hub != nil {
		a.hub.CloseAll()
	}
	if a.postgres != nil {
		a.postgres.Close()
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
