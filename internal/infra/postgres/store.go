package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/engine"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

const pgUniqueViolation = "23505"

// Store is the Postgres implementation of engine.Store, built on bun.
// Duplicate answers are rejected by the (session_id, question_id) unique
// index; the responses insert never does a check-then-insert.
type Store struct {
	db *bun.DB
	q  queries
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db, q: queries{db: db}}
}

// InTx runs fn inside a database transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx engine.Store) error) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(&txStore{q: queries{db: tx}})
	})
}

func (s *Store) CreateSession(ctx context.Context, session *domain.QuizSession) error {
	return s.q.createSession(ctx, session)
}

func (s *Store) Session(ctx context.Context, id string) (*domain.QuizSession, error) {
	return s.q.session(ctx, id, false)
}

func (s *Store) SessionForUpdate(ctx context.Context, id string) (*domain.QuizSession, error) {
	return s.q.session(ctx, id, true)
}

func (s *Store) SaveSession(ctx context.Context, session *domain.QuizSession) error {
	return s.q.saveSession(ctx, session)
}

func (s *Store) CompletedSessions(ctx context.Context, userID string, start, end time.Time) ([]domain.QuizSession, error) {
	return s.q.completedSessions(ctx, userID, start, end)
}

func (s *Store) InsertResponse(ctx context.Context, response *domain.UserResponse) error {
	return s.q.insertResponse(ctx, response)
}

func (s *Store) CompletedResponses(ctx context.Context, userID string) ([]domain.UserResponse, error) {
	return s.q.completedResponses(ctx, userID)
}

func (s *Store) Progress(ctx context.Context, userID, topic string) (*domain.UserProgress, error) {
	return s.q.progress(ctx, userID, topic)
}

func (s *Store) ProgressByUser(ctx context.Context, userID string) ([]domain.UserProgress, error) {
	return s.q.progressByUser(ctx, userID)
}

func (s *Store) SaveProgress(ctx context.Context, progress *domain.UserProgress) error {
	return s.q.saveProgress(ctx, progress)
}

func (s *Store) QuizAnalytics(ctx context.Context, quizID string) (*domain.QuizAnalytics, error) {
	return s.q.quizAnalytics(ctx, quizID)
}

func (s *Store) SaveQuizAnalytics(ctx context.Context, analytics *domain.QuizAnalytics) error {
	return s.q.saveQuizAnalytics(ctx, analytics)
}

// txStore serves engine.Store calls inside an open transaction.
type txStore struct {
	q queries
}

// InTx on an open transaction just runs fn in the same transaction.
func (t *txStore) InTx(_ context.Context, fn func(tx engine.Store) error) error {
	return fn(t)
}

func (t *txStore) CreateSession(ctx context.Context, session *domain.QuizSession) error {
	return t.q.createSession(ctx, session)
}

func (t *txStore) Session(ctx context.Context, id string) (*domain.QuizSession, error) {
	return t.q.session(ctx, id, false)
}

func (t *txStore) SessionForUpdate(ctx context.Context, id string) (*domain.QuizSession, error) {
	return t.q.session(ctx, id, true)
}

func (t *txStore) SaveSession(ctx context.Context, session *domain.QuizSession) error {
	return t.q.saveSession(ctx, session)
}

func (t *txStore) CompletedSessions(ctx context.Context, userID string, start, end time.Time) ([]domain.QuizSession, error) {
	return t.q.completedSessions(ctx, userID, start, end)
}

func (t *txStore) InsertResponse(ctx context.Context, response *domain.UserResponse) error {
	return t.q.insertResponse(ctx, response)
}

func (t *txStore) CompletedResponses(ctx context.Context, userID string) ([]domain.UserResponse, error) {
	return t.q.completedResponses(ctx, userID)
}

func (t *txStore) Progress(ctx context.Context, userID, topic string) (*domain.UserProgress, error) {
	return t.q.progress(ctx, userID, topic)
}

func (t *txStore) ProgressByUser(ctx context.Context, userID string) ([]domain.UserProgress, error) {
	return t.q.progressByUser(ctx, userID)
}

func (t *txStore) SaveProgress(ctx context.Context, progress *domain.UserProgress) error {
	return t.q.saveProgress(ctx, progress)
}

func (t *txStore) QuizAnalytics(ctx context.Context, quizID string) (*domain.QuizAnalytics, error) {
	return t.q.quizAnalytics(ctx, quizID)
}

func (t *txStore) SaveQuizAnalytics(ctx context.Context, analytics *domain.QuizAnalytics) error {
	return t.q.saveQuizAnalytics(ctx, analytics)
}

// queries holds the shared SQL; bun.IDB is satisfied by both *bun.DB and bun.Tx.
type queries struct {
	db bun.IDB
}

func (q queries) createSession(ctx context.Context, session *domain.QuizSession) error {
	_, err := q.db.NewInsert().Model(sessionToRow(session)).Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (q queries) session(ctx context.Context, id string, forUpdate bool) (*domain.QuizSession, error) {
	row := new(sessionRow)
	query := q.db.NewSelect().Model(row).Where("id = ?", id)
	if forUpdate {
		query = query.For("UPDATE")
	}
	if err := query.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("select session: %w", err)
	}
	return row.toDomain(), nil
}

func (q queries) saveSession(ctx context.Context, session *domain.QuizSession) error {
	_, err := q.db.NewUpdate().Model(sessionToRow(session)).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

func (q queries) completedSessions(ctx context.Context, userID string, start, end time.Time) ([]domain.QuizSession, error) {
	var rows []sessionRow
	query := q.db.NewSelect().Model(&rows).
		Where("user_id = ?", userID).
		Where("status = ?", string(domain.SessionCompleted)).
		Where("completed_at <= ?", end).
		Order("completed_at ASC")
	if !start.IsZero() {
		query = query.Where("completed_at >= ?", start)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("select completed sessions: %w", err)
	}
	sessions := make([]domain.QuizSession, len(rows))
	for i := range rows {
		sessions[i] = *rows[i].toDomain()
	}
	return sessions, nil
}

func (q queries) insertResponse(ctx context.Context, response *domain.UserResponse) error {
	_, err := q.db.NewInsert().Model(responseToRow(response)).Exec(ctx)
	if err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.Field('C') == pgUniqueViolation {
			return domain.ErrDuplicateAnswer
		}
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}

func (q queries) completedResponses(ctx context.Context, userID string) ([]domain.UserResponse, error) {
	var rows []responseRow
	err := q.db.NewSelect().Model(&rows).
		Join("JOIN quiz_sessions AS qs ON qs.id = ur.session_id").
		Where("ur.user_id = ?", userID).
		Where("qs.status = ?", string(domain.SessionCompleted)).
		Order("ur.answered_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select responses: %w", err)
	}
	responses := make([]domain.UserResponse, len(rows))
	for i := range rows {
		responses[i] = rows[i].toDomain()
	}
	return responses, nil
}

func (q queries) progress(ctx context.Context, userID, topic string) (*domain.UserProgress, error) {
	row := new(progressRow)
	err := q.db.NewSelect().Model(row).
		Where("user_id = ?", userID).
		Where("topic = ?", topic).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoProgress
		}
		return nil, fmt.Errorf("select progress: %w", err)
	}
	progress := row.toDomain()
	return &progress, nil
}

func (q queries) progressByUser(ctx context.Context, userID string) ([]domain.UserProgress, error) {
	var rows []progressRow
	err := q.db.NewSelect().Model(&rows).
		Where("user_id = ?", userID).
		Order("topic ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select progress rows: %w", err)
	}
	records := make([]domain.UserProgress, len(rows))
	for i := range rows {
		records[i] = rows[i].toDomain()
	}
	return records, nil
}

func (q queries) saveProgress(ctx context.Context, progress *domain.UserProgress) error {
	_, err := q.db.NewInsert().Model(progressToRow(progress)).
		On("CONFLICT (user_id, topic) DO UPDATE").
		Set("quizzes_taken = EXCLUDED.quizzes_taken").
		Set("questions_answered = EXCLUDED.questions_answered").
		Set("correct_answers = EXCLUDED.correct_answers").
		Set("average_score = EXCLUDED.average_score").
		Set("mastery_level = EXCLUDED.mastery_level").
		Set("mastery_score = EXCLUDED.mastery_score").
		Set("suggested_difficulty = EXCLUDED.suggested_difficulty").
		Set("review_interval_days = EXCLUDED.review_interval_days").
		Set("next_review_date = EXCLUDED.next_review_date").
		Set("last_updated_at = EXCLUDED.last_updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

func (q queries) quizAnalytics(ctx context.Context, quizID string) (*domain.QuizAnalytics, error) {
	row := new(analyticsRow)
	err := q.db.NewSelect().Model(row).Where("quiz_id = ?", quizID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select quiz analytics: %w", err)
	}
	return row.toDomain(), nil
}

func (q queries) saveQuizAnalytics(ctx context.Context, analytics *domain.QuizAnalytics) error {
	_, err := q.db.NewInsert().Model(analyticsToRow(analytics)).
		On("CONFLICT (quiz_id) DO UPDATE").
		Set("total_attempts = EXCLUDED.total_attempts").
		Set("total_completed = EXCLUDED.total_completed").
		Set("completion_rate = EXCLUDED.completion_rate").
		Set("average_score = EXCLUDED.average_score").
		Set("last_updated_at = EXCLUDED.last_updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert quiz analytics: %w", err)
	}
	return nil
}
