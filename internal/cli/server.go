package cli

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adaptive-quiz-service/internal/config"
	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/engine"
	"adaptive-quiz-service/internal/infra/memory"
	pginfra "adaptive-quiz-service/internal/infra/postgres"
	redisinfra "adaptive-quiz-service/internal/infra/redis"
	transport "adaptive-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the learning engine server",
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

	var store engine.Store = memory.NewStore()
	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		loader = pginfra.NewQuizLoader(pool)

		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		store = pginfra.NewStore(bun.NewDB(sqldb, pgdialect.New()))
	}

	quizTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
	var quizRepo engine.QuizRepository
	if redisClient != nil {
		quizRepo = redisinfra.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	eng := engine.NewEngine(store, quizRepo)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	transport.NewHandler(eng).Register(mux)
	mux.HandleFunc("/ws", transport.NewWSHandler(eng).ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting adaptive quiz service on :%s", finalPort)
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

// sampleQuizzes provides demo quiz content when no database is configured.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-go-basics": {
			ID:           "quiz-go-basics",
			Title:        "Go Basics",
			Topic:        "go",
			Difficulty:   domain.Beginner,
			PassingScore: 70,
			IsActive:     true,
			Questions: []domain.Question{
				{
					ID:            "q1",
					Type:          domain.MultipleChoice,
					Text:          "Which keyword declares a variable with inferred type?",
					CorrectAnswer: "b",
					Topic:         "go",
					Difficulty:    domain.Beginner,
					Explanation:   "Short variable declarations use :=",
				},
				{
					ID:            "q2",
					Type:          domain.TrueFalse,
					Text:          "Go has classes.",
					CorrectAnswer: "false",
					Topic:         "go",
					Difficulty:    domain.Beginner,
				},
				{
					ID:            "q3",
					Type:          domain.FillInBlank,
					Text:          "The entry point of a Go program is the ___ function.",
					CorrectAnswer: "main",
					Topic:         "go",
					Difficulty:    domain.Beginner,
				},
			},
		},
	}
}
