package postgres

import (
	"time"

	"adaptive-quiz-service/internal/domain"
	"github.com/uptrace/bun"
)

type sessionRow struct {
	bun.BaseModel `bun:"table:quiz_sessions"`

	ID                string            `bun:"id,pk"`
	QuizID            string            `bun:"quiz_id"`
	UserID            string            `bun:"user_id"`
	Topic             string            `bun:"topic"`
	Difficulty        string            `bun:"difficulty"`
	PassingScore      float64           `bun:"passing_score"`
	Status            string            `bun:"status"`
	TotalQuestions    int               `bun:"total_questions"`
	AnsweredQuestions int               `bun:"answered_questions"`
	CorrectAnswers    int               `bun:"correct_answers"`
	Score             float64           `bun:"score"`
	Passed            bool              `bun:"passed"`
	CurrentQuestion   int               `bun:"current_question"`
	TimeSpentSeconds  int               `bun:"time_spent_seconds"`
	Questions         []domain.Question `bun:"questions,type:jsonb"`
	StartedAt         time.Time         `bun:"started_at"`
	CompletedAt       time.Time         `bun:"completed_at,nullzero"`
}

func sessionToRow(s *domain.QuizSession) *sessionRow {
	return &sessionRow{
		ID:                s.ID,
		QuizID:            s.QuizID,
		UserID:            s.UserID,
		Topic:             s.Topic,
		Difficulty:        string(s.Difficulty),
		PassingScore:      s.PassingScore,
		Status:            string(s.Status),
		TotalQuestions:    s.TotalQuestions,
		AnsweredQuestions: s.AnsweredQuestions,
		CorrectAnswers:    s.CorrectAnswers,
		Score:             s.Score,
		Passed:            s.Passed,
		CurrentQuestion:   s.CurrentQuestion,
		TimeSpentSeconds:  s.TimeSpentSeconds,
		Questions:         s.Questions,
		StartedAt:         s.StartedAt,
		CompletedAt:       s.CompletedAt,
	}
}

func (r *sessionRow) toDomain() *domain.QuizSession {
	return &domain.QuizSession{
		ID:                r.ID,
		QuizID:            r.QuizID,
		UserID:            r.UserID,
		Topic:             r.Topic,
		Difficulty:        domain.Difficulty(r.Difficulty),
		PassingScore:      r.PassingScore,
		Status:            domain.SessionStatus(r.Status),
		TotalQuestions:    r.TotalQuestions,
		AnsweredQuestions: r.AnsweredQuestions,
		CorrectAnswers:    r.CorrectAnswers,
		Score:             r.Score,
		Passed:            r.Passed,
		CurrentQuestion:   r.CurrentQuestion,
		TimeSpentSeconds:  r.TimeSpentSeconds,
		Questions:         r.Questions,
		StartedAt:         r.StartedAt,
		CompletedAt:       r.CompletedAt,
	}
}

type responseRow struct {
	bun.BaseModel `bun:"table:user_responses,alias:ur"`

	ID               string    `bun:"id,pk"`
	SessionID        string    `bun:"session_id"`
	QuestionID       string    `bun:"question_id"`
	UserID           string    `bun:"user_id"`
	QuestionType     string    `bun:"question_type"`
	QuestionText     string    `bun:"question_text"`
	CorrectAnswer    string    `bun:"correct_answer"`
	Topic            string    `bun:"topic"`
	Difficulty       string    `bun:"difficulty"`
	UserAnswer       string    `bun:"user_answer"`
	IsCorrect        bool      `bun:"is_correct"`
	TimeTakenSeconds int       `bun:"time_taken_seconds"`
	AnsweredAt       time.Time `bun:"answered_at"`
}

func responseToRow(r *domain.UserResponse) *responseRow {
	return &responseRow{
		ID:               r.ID,
		SessionID:        r.SessionID,
		QuestionID:       r.QuestionID,
		UserID:           r.UserID,
		QuestionType:     string(r.QuestionType),
		QuestionText:     r.QuestionText,
		CorrectAnswer:    r.CorrectAnswer,
		Topic:            r.Topic,
		Difficulty:       string(r.Difficulty),
		UserAnswer:       r.UserAnswer,
		IsCorrect:        r.IsCorrect,
		TimeTakenSeconds: r.TimeTakenSeconds,
		AnsweredAt:       r.AnsweredAt,
	}
}

func (r *responseRow) toDomain() domain.UserResponse {
	return domain.UserResponse{
		ID:               r.ID,
		SessionID:        r.SessionID,
		QuestionID:       r.QuestionID,
		UserID:           r.UserID,
		QuestionType:     domain.QuestionType(r.QuestionType),
		QuestionText:     r.QuestionText,
		CorrectAnswer:    r.CorrectAnswer,
		Topic:            r.Topic,
		Difficulty:       domain.Difficulty(r.Difficulty),
		UserAnswer:       r.UserAnswer,
		IsCorrect:        r.IsCorrect,
		TimeTakenSeconds: r.TimeTakenSeconds,
		AnsweredAt:       r.AnsweredAt,
	}
}

type progressRow struct {
	bun.BaseModel `bun:"table:user_progress"`

	ID                  string    `bun:"id,pk"`
	UserID              string    `bun:"user_id"`
	Topic               string    `bun:"topic"`
	QuizzesTaken        int       `bun:"quizzes_taken"`
	QuestionsAnswered   int       `bun:"questions_answered"`
	CorrectAnswers      int       `bun:"correct_answers"`
	AverageScore        float64   `bun:"average_score"`
	MasteryLevel        string    `bun:"mastery_level"`
	MasteryScore        float64   `bun:"mastery_score"`
	SuggestedDifficulty string    `bun:"suggested_difficulty"`
	ReviewIntervalDays  int       `bun:"review_interval_days"`
	NextReviewDate      time.Time `bun:"next_review_date,nullzero"`
	FirstAttemptAt      time.Time `bun:"first_attempt_at"`
	LastUpdatedAt       time.Time `bun:"last_updated_at"`
}

func progressToRow(p *domain.UserProgress) *progressRow {
	return &progressRow{
		ID:                  p.ID,
		UserID:              p.UserID,
		Topic:               p.Topic,
		QuizzesTaken:        p.QuizzesTaken,
		QuestionsAnswered:   p.QuestionsAnswered,
		CorrectAnswers:      p.CorrectAnswers,
		AverageScore:        p.AverageScore,
		MasteryLevel:        string(p.MasteryLevel),
		MasteryScore:        p.MasteryScore,
		SuggestedDifficulty: string(p.SuggestedDifficulty),
		ReviewIntervalDays:  p.ReviewIntervalDays,
		NextReviewDate:      p.NextReviewDate,
		FirstAttemptAt:      p.FirstAttemptAt,
		LastUpdatedAt:       p.LastUpdatedAt,
	}
}

func (r *progressRow) toDomain() domain.UserProgress {
	return domain.UserProgress{
		ID:                  r.ID,
		UserID:              r.UserID,
		Topic:               r.Topic,
		QuizzesTaken:        r.QuizzesTaken,
		QuestionsAnswered:   r.QuestionsAnswered,
		CorrectAnswers:      r.CorrectAnswers,
		AverageScore:        r.AverageScore,
		MasteryLevel:        domain.MasteryLevel(r.MasteryLevel),
		MasteryScore:        r.MasteryScore,
		SuggestedDifficulty: domain.Difficulty(r.SuggestedDifficulty),
		ReviewIntervalDays:  r.ReviewIntervalDays,
		NextReviewDate:      r.NextReviewDate,
		FirstAttemptAt:      r.FirstAttemptAt,
		LastUpdatedAt:       r.LastUpdatedAt,
	}
}

type analyticsRow struct {
	bun.BaseModel `bun:"table:quiz_analytics"`

	QuizID         string    `bun:"quiz_id,pk"`
	TotalAttempts  int       `bun:"total_attempts"`
	TotalCompleted int       `bun:"total_completed"`
	CompletionRate float64   `bun:"completion_rate"`
	AverageScore   float64   `bun:"average_score"`
	LastUpdatedAt  time.Time `bun:"last_updated_at"`
}

func analyticsToRow(a *domain.QuizAnalytics) *analyticsRow {
	return &analyticsRow{
		QuizID:         a.QuizID,
		TotalAttempts:  a.TotalAttempts,
		TotalCompleted: a.TotalCompleted,
		CompletionRate: a.CompletionRate,
		AverageScore:   a.AverageScore,
		LastUpdatedAt:  a.LastUpdatedAt,
	}
}

func (r *analyticsRow) toDomain() *domain.QuizAnalytics {
	return &domain.QuizAnalytics{
		QuizID:         r.QuizID,
		TotalAttempts:  r.TotalAttempts,
		TotalCompleted: r.TotalCompleted,
		CompletionRate: r.CompletionRate,
		AverageScore:   r.AverageScore,
		LastUpdatedAt:  r.LastUpdatedAt,
	}
}
