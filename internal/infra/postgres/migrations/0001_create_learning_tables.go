package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_create_learning_tables.sql
var createLearningTablesSQL string

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(createLearningTablesSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`
				DROP TABLE IF EXISTS quiz_analytics;
				DROP TABLE IF EXISTS user_progress;
				DROP TABLE IF EXISTS user_responses;
				DROP TABLE IF EXISTS quiz_sessions;
				DROP TABLE IF EXISTS quizzes;
			`)
			return err
		},
	)
}
