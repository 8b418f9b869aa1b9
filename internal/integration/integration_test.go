package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/engine"
	pginfra "adaptive-quiz-service/internal/infra/postgres"
	pgmigrations "adaptive-quiz-service/internal/infra/postgres/migrations"
	infraredis "adaptive-quiz-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestQuizLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := openBun(t, pgURL)
	defer db.Close()
	migrateDB(t, ctx, db)
	seedQuiz(t, ctx, db, sampleQuiz())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	quizRepo := infraredis.NewQuizRepository(redisClient, pginfra.NewQuizLoader(pool), 5*time.Minute)
	store := pginfra.NewStore(db)
	eng := engine.NewEngine(store, quizRepo)

	session, err := eng.StartSession(ctx, "quiz-1", "u1")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if session.TotalQuestions != 2 {
		t.Fatalf("expected 2 questions, got %d", session.TotalQuestions)
	}

	result, err := eng.SubmitAnswer(ctx, engine.SubmitRequest{
		SessionID:  session.ID,
		QuestionID: "q1",
		Answer:     "4",
	})
	if err != nil {
		t.Fatalf("submit q1: %v", err)
	}
	if !result.IsCorrect || result.SessionCompleted {
		t.Fatalf("unexpected first result: %+v", result)
	}

	// Resubmitting the same question must hit the unique constraint.
	_, err = eng.SubmitAnswer(ctx, engine.SubmitRequest{SessionID: session.ID, QuestionID: "q1", Answer: "4"})
	if err != domain.ErrDuplicateAnswer {
		t.Fatalf("expected duplicate answer error, got %v", err)
	}

	result, err = eng.SubmitAnswer(ctx, engine.SubmitRequest{
		SessionID:  session.ID,
		QuestionID: "q2",
		Answer:     "9",
	})
	if err != nil {
		t.Fatalf("submit q2: %v", err)
	}
	if !result.SessionCompleted || result.CurrentScore != 100 {
		t.Fatalf("unexpected final result: %+v", result)
	}

	final, err := eng.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if final.Status != domain.SessionCompleted || !final.Passed {
		t.Fatalf("unexpected final session: %+v", final)
	}

	// Completion cascades into progress and quiz analytics.
	progress, err := store.Progress(ctx, "u1", "arithmetic")
	if err != nil {
		t.Fatalf("load progress: %v", err)
	}
	if progress.QuizzesTaken != 1 || progress.AverageScore != 100 {
		t.Fatalf("unexpected progress: %+v", progress)
	}
	if progress.NextReviewDate.IsZero() {
		t.Fatalf("expected next review scheduled")
	}

	analytics, err := store.QuizAnalytics(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("load analytics: %v", err)
	}
	if analytics == nil || analytics.TotalCompleted != 1 || analytics.AverageScore != 100 {
		t.Fatalf("unexpected analytics: %+v", analytics)
	}

	items, err := eng.DueReviews(ctx, "u1")
	if err != nil {
		t.Fatalf("due reviews: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("nothing should be due yet, got %+v", items)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
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
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
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

func openBun(t *testing.T, dsn string) *bun.DB {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func migrateDB(t *testing.T, ctx context.Context, db *bun.DB) {
	t.Helper()
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func seedQuiz(t *testing.T, ctx context.Context, db *bun.DB, quiz domain.Quiz) {
	t.Helper()
	data, err := json.Marshal(quiz)
	if err != nil {
		t.Fatalf("marshal quiz: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO quizzes (id, data) VALUES (? , ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, quiz.ID, string(data)); err != nil {
		t.Fatalf("insert quiz: %v", err)
	}
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:           "quiz-1",
		Title:        "Arithmetic basics",
		Topic:        "arithmetic",
		Difficulty:   domain.Beginner,
		PassingScore: 70,
		IsActive:     true,
		Questions: []domain.Question{
			{
				ID:            "q1",
				Type:          domain.MultipleChoice,
				Text:          "What is 2 + 2?",
				CorrectAnswer: "4",
				Topic:         "arithmetic",
				Difficulty:    domain.Beginner,
			},
			{
				ID:            "q2",
				Type:          domain.FillInBlank,
				Text:          "3 * 3 = ?",
				CorrectAnswer: "9",
				Topic:         "arithmetic",
				Difficulty:    domain.Beginner,
			},
		},
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
