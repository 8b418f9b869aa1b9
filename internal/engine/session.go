package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adaptive-quiz-service/internal/domain"
	"github.com/google/uuid"
)

// SubmitRequest carries one answer submission.
type SubmitRequest struct {
	SessionID        string
	QuestionID       string
	Answer           string
	TimeTakenSeconds int
}

// StartSession snapshots the quiz's generated question set into a new
// in-progress session. The snapshot is immutable for the session's lifetime.
func (e *Engine) StartSession(ctx context.Context, quizID, userID string) (*domain.QuizSession, error) {
	quiz, err := e.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsActive {
		return nil, domain.ErrQuizInactive
	}
	if len(quiz.Questions) == 0 {
		return nil, domain.ErrEmptyQuestionSet
	}

	questions := make([]domain.Question, len(quiz.Questions))
	copy(questions, quiz.Questions)

	session := &domain.QuizSession{
		ID:             uuid.NewString(),
		QuizID:         quiz.ID,
		UserID:         userID,
		Topic:          quiz.Topic,
		Difficulty:     quiz.Difficulty,
		PassingScore:   quiz.PassingScore,
		Status:         domain.SessionInProgress,
		TotalQuestions: len(questions),
		Questions:      questions,
		StartedAt:      e.now(),
	}
	if err := e.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// GetSession returns a session by ID.
func (e *Engine) GetSession(ctx context.Context, sessionID string) (*domain.QuizSession, error) {
	return e.store.Session(ctx, sessionID)
}

// SubmitAnswer validates, scores and records one answer. The duplicate check,
// response insert, counter updates and (on the final answer) the completion
// cascade all commit as a single transaction, so a crash can never leave a
// completed session without its progress update.
func (e *Engine) SubmitAnswer(ctx context.Context, req SubmitRequest) (*domain.SubmitResult, error) {
	var result domain.SubmitResult
	err := e.store.InTx(ctx, func(tx Store) error {
		session, err := tx.SessionForUpdate(ctx, req.SessionID)
		if err != nil {
			return err
		}
		if session.Status != domain.SessionInProgress {
			return domain.ErrSessionNotActive
		}
		question, ok := session.QuestionByID(req.QuestionID)
		if !ok {
			return domain.ErrQuestionNotFound
		}

		correct, err := Score(question, req.Answer)
		if err != nil {
			return err
		}

		response := &domain.UserResponse{
			ID:               uuid.NewString(),
			SessionID:        session.ID,
			QuestionID:       question.ID,
			UserID:           session.UserID,
			QuestionType:     question.Type,
			QuestionText:     question.Text,
			CorrectAnswer:    question.CorrectAnswer,
			Topic:            question.Topic,
			Difficulty:       question.Difficulty,
			UserAnswer:       req.Answer,
			IsCorrect:        correct,
			TimeTakenSeconds: req.TimeTakenSeconds,
			AnsweredAt:       e.now(),
		}
		if err := tx.InsertResponse(ctx, response); err != nil {
			return err
		}

		session.AnsweredQuestions++
		if correct {
			session.CorrectAnswers++
		}
		session.CurrentQuestion++
		session.TimeSpentSeconds += req.TimeTakenSeconds

		if session.AnsweredQuestions >= session.TotalQuestions {
			if err := e.completeSession(ctx, tx, session); err != nil {
				return err
			}
		}
		if err := tx.SaveSession(ctx, session); err != nil {
			return fmt.Errorf("save session: %w", err)
		}

		result = domain.SubmitResult{
			IsCorrect:        correct,
			CorrectAnswer:    question.CorrectAnswer,
			Explanation:      question.Explanation,
			Answered:         session.AnsweredQuestions,
			Total:            session.TotalQuestions,
			CurrentScore:     float64(session.CorrectAnswers) / float64(session.AnsweredQuestions) * 100,
			SessionCompleted: session.Status == domain.SessionCompleted,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// AbandonSession moves an in-progress session to its abandoned terminal state.
func (e *Engine) AbandonSession(ctx context.Context, sessionID string) error {
	return e.store.InTx(ctx, func(tx Store) error {
		session, err := tx.SessionForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if session.Status != domain.SessionInProgress {
			return domain.ErrSessionNotActive
		}
		session.Status = domain.SessionAbandoned
		session.CompletedAt = e.now()
		if err := e.recordAttempt(ctx, tx, session); err != nil {
			return err
		}
		return tx.SaveSession(ctx, session)
	})
}

// completeSession finalizes score and pass state, then cascades into the
// mastery and spaced-repetition updates for the session's (user, topic).
func (e *Engine) completeSession(ctx context.Context, tx Store, session *domain.QuizSession) error {
	now := e.now()
	session.Status = domain.SessionCompleted
	session.CompletedAt = now
	session.Score = float64(session.CorrectAnswers) / float64(session.TotalQuestions) * 100
	session.Passed = session.Score >= session.PassingScore

	if session.UserID != "" {
		if err := e.updateProgress(ctx, tx, session, now); err != nil {
			return err
		}
	}
	return e.recordAttempt(ctx, tx, session)
}

func (e *Engine) updateProgress(ctx context.Context, tx Store, session *domain.QuizSession, now time.Time) error {
	progress, err := tx.Progress(ctx, session.UserID, session.Topic)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNoProgress):
		progress = &domain.UserProgress{
			ID:                  uuid.NewString(),
			UserID:              session.UserID,
			Topic:               session.Topic,
			MasteryLevel:        domain.MasteryNovice,
			SuggestedDifficulty: domain.Beginner,
			ReviewIntervalDays:  1,
			FirstAttemptAt:      session.StartedAt,
		}
	default:
		return fmt.Errorf("load progress: %w", err)
	}

	applyMasteryUpdate(progress, session)
	applyReviewInterval(progress, session.Score, now)
	progress.LastUpdatedAt = now

	if err := tx.SaveProgress(ctx, progress); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// recordAttempt keeps per-quiz aggregates current. The running average uses
// incremental aggregation instead of rescanning completed sessions.
func (e *Engine) recordAttempt(ctx context.Context, tx Store, session *domain.QuizSession) error {
	analytics, err := tx.QuizAnalytics(ctx, session.QuizID)
	if err != nil {
		return fmt.Errorf("load quiz analytics: %w", err)
	}
	if analytics == nil {
		analytics = &domain.QuizAnalytics{QuizID: session.QuizID}
	}

	analytics.TotalAttempts++
	if session.Status == domain.SessionCompleted {
		analytics.TotalCompleted++
		n := float64(analytics.TotalCompleted)
		analytics.AverageScore += (session.Score - analytics.AverageScore) / n
	}
	analytics.CompletionRate = float64(analytics.TotalCompleted) / float64(analytics.TotalAttempts) * 100
	analytics.LastUpdatedAt = e.now()

	if err := tx.SaveQuizAnalytics(ctx, analytics); err != nil {
		return fmt.Errorf("save quiz analytics: %w", err)
	}
	return nil
}
