package cli

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"sense-hacker-service/internal/app"
	"sense-hacker-service/internal/config"
	"sense-hacker-service/internal/genai"
	"sense-hacker-service/internal/infra/memory"
	pgstore "sense-hacker-service/internal/infra/postgres"
	redisinfra "sense-hacker-service/internal/infra/redis"
	"sense-hacker-service/internal/leaderboard"
	"sense-hacker-service/internal/question"
	transport "sense-hacker-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz-battle server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	rules := app.Rules{
		MaxHealth:         cfg.Game.MaxHealth,
		QuestionsPerRound: cfg.Game.QuestionsPerRound,
		PointsPerCorrect:  cfg.Game.PointsPerCorrect,
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = redisinfra.NewSessionStore(redisClient, rules, redisTTL)
	} else {
		sessions = memory.NewSessionStore(rules)
	}

	var generator question.Generator
	if apiKey := config.APIKey(); apiKey != "" {
		genTimeout := config.TTLDuration(cfg.GenAI.Timeout, 15*time.Second)
		opts := []genai.Option{
			genai.WithModel(cfg.GenAI.Model),
			genai.WithHTTPClient(&http.Client{Timeout: genTimeout}),
		}
		if cfg.GenAI.BaseURL != "" {
			opts = append(opts, genai.WithBaseURL(cfg.GenAI.BaseURL))
		}
		generator = genai.NewClient(apiKey, opts...)
	} else {
		log.Printf("GENAI_API_KEY not set, serving fallback questions only")
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	bank := question.NewFallbackBank(rnd)
	provider := question.NewProvider(generator, bank, rnd)

	lbLimit := cfg.Leaderboard.Limit
	if lbLimit <= 0 {
		lbLimit = 10
	}
	lbTTL := config.TTLDuration(cfg.Leaderboard.TTL, time.Minute)

	var store leaderboard.Store
	if pool != nil {
		store = pgstore.NewLeaderboardStore(pool)
	} else {
		store = memory.NewLeaderboardStore()
	}

	var boards app.LeaderboardViewer
	if redisClient != nil {
		view := redisinfra.NewRankedView(redisClient, store, lbLimit, lbTTL)
		store = redisinfra.NewInvalidatingStore(store, view)
		boards = view
	} else {
		boards = leaderboard.NewStoreView(store, lbLimit)
	}

	submitter := leaderboard.NewAsyncSubmitter(store, 64)
	defer submitter.Close()

	service := app.NewGameService(sessions, provider, boards, submitter)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting sense-hacker service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
