package integration

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"sense-hacker-service/internal/app"
	"sense-hacker-service/internal/domain"
	pgstore "sense-hacker-service/internal/infra/postgres"
	pgmigrations "sense-hacker-service/internal/infra/postgres/migrations"
	infraredis "sense-hacker-service/internal/infra/redis"
	"sense-hacker-service/internal/leaderboard"
	"sense-hacker-service/internal/question"
)

func TestBattleToLeaderboardEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	applyMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	store := pgstore.NewLeaderboardStore(pool)
	view := infraredis.NewRankedView(redisClient, store, 10, time.Minute)
	wrapped := infraredis.NewInvalidatingStore(store, view)
	submitter := leaderboard.NewAsyncSubmitter(wrapped, 16)

	sessions := infraredis.NewSessionStore(redisClient, app.DefaultRules(), time.Minute)
	// No generator configured: the provider serves the static bank, which
	// keeps the integration path deterministic.
	rnd := rand.New(rand.NewSource(1))
	source := question.NewProvider(nil, question.NewFallbackBank(rnd), rnd)
	service := app.NewGameService(sessions, source, view, submitter)

	if _, err := service.Start(ctx, "p1", "Alice", "avatar"); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Lose on purpose: a choice matching no option drains user health in
	// five answers.
	for i := 0; i < 5; i++ {
		result, err := service.Answer(ctx, "p1", "definitely not an option")
		if err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
		if result.GameOver {
			if result.Outcome != domain.OutcomeLost {
				t.Fatalf("expected lost, got %s", result.Outcome)
			}
			break
		}
		if _, err := service.Next(ctx, "p1"); err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
	}

	submitter.Close() // drain the queue before reading

	top, err := view.Top(ctx)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 1 || top[0].PlayerID != "p1" || top[0].Score != 0 {
		t.Fatalf("expected p1 with score 0 on the board, got %+v", top)
	}

	// A later, better submission replaces the ranked entry and busts the cache.
	err = wrapped.Append(ctx, domain.LeaderboardEntry{
		PlayerID:    "p1",
		DisplayName: "Alice",
		Score:       40,
		Round:       2,
		SubmittedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	top, err = view.Top(ctx)
	if err != nil {
		t.Fatalf("top after append: %v", err)
	}
	if len(top) != 1 || top[0].Score != 40 {
		t.Fatalf("expected best score 40 ranked, got %+v", top)
	}

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected append-only history of 2, got %d", len(entries))
	}
}

func applyMigrations(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "battle", "POSTGRES_PASSWORD": "battlepass", "POSTGRES_DB": "battledb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://battle:battlepass@%s:%s/battledb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
