package engine

import (
	"context"
	"time"

	"adaptive-quiz-service/internal/domain"
)

// Store abstracts how engine state is persisted (in-memory, Postgres, etc).
//
// InTx runs fn against a transactional view of the store; every mutation made
// through the passed Store commits or rolls back as one unit. Duplicate
// response protection is owned by the store: InsertResponse must fail with
// domain.ErrDuplicateAnswer when a (sessionID, questionID) pair already
// exists, enforced by a uniqueness constraint rather than a check-then-insert.
type Store interface {
	InTx(ctx context.Context, fn func(tx Store) error) error

	CreateSession(ctx context.Context, session *domain.QuizSession) error
	Session(ctx context.Context, id string) (*domain.QuizSession, error)
	// SessionForUpdate loads a session with an exclusive row lock so that
	// concurrent submissions serialize on the counter updates.
	SessionForUpdate(ctx context.Context, id string) (*domain.QuizSession, error)
	SaveSession(ctx context.Context, session *domain.QuizSession) error
	// CompletedSessions returns a user's completed sessions with
	// completedAt in [start, end], ordered by completion time ascending.
	// A zero start means no lower bound.
	CompletedSessions(ctx context.Context, userID string, start, end time.Time) ([]domain.QuizSession, error)

	InsertResponse(ctx context.Context, response *domain.UserResponse) error
	// CompletedResponses returns every response the user gave in sessions
	// that reached the completed state, ordered by answer time ascending.
	CompletedResponses(ctx context.Context, userID string) ([]domain.UserResponse, error)

	Progress(ctx context.Context, userID, topic string) (*domain.UserProgress, error)
	ProgressByUser(ctx context.Context, userID string) ([]domain.UserProgress, error)
	SaveProgress(ctx context.Context, progress *domain.UserProgress) error

	QuizAnalytics(ctx context.Context, quizID string) (*domain.QuizAnalytics, error)
	SaveQuizAnalytics(ctx context.Context, analytics *domain.QuizAnalytics) error
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}
