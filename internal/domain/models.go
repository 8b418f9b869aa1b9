package domain

import "time"

// SessionStatus tracks the lifecycle of one quiz attempt.
// Transitions are one-way: in_progress -> completed or in_progress -> abandoned.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionAbandoned  SessionStatus = "abandoned"
)

// Terminal reports whether a session can no longer accept answers.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionAbandoned
}

// QuestionType is the closed set of question formats the scorer understands.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	FillInBlank    QuestionType = "fill_in_blank"
	ShortAnswer    QuestionType = "short_answer"
)

// Difficulty levels, ordered easiest to hardest.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// Next returns the next harder level, or the same level at the cap.
func (d Difficulty) Next() Difficulty {
	switch d {
	case Beginner:
		return Intermediate
	default:
		return Advanced
	}
}

// Prev returns the next easier level, or the same level at the floor.
func (d Difficulty) Prev() Difficulty {
	switch d {
	case Advanced:
		return Intermediate
	default:
		return Beginner
	}
}

// MasteryLevel is the discrete tier derived from cumulative topic statistics.
type MasteryLevel string

const (
	MasteryNovice     MasteryLevel = "novice"
	MasteryLearning   MasteryLevel = "learning"
	MasteryProficient MasteryLevel = "proficient"
	MasteryExpert     MasteryLevel = "expert"
)

// Question is one immutable entry in a session's question snapshot, produced
// by the external question generator and never reordered mid-session.
type Question struct {
	ID            string       `json:"id"`
	Type          QuestionType `json:"type"`
	Text          string       `json:"text"`
	CorrectAnswer string       `json:"correctAnswer"`
	Topic         string       `json:"topic"`
	Difficulty    Difficulty   `json:"difficulty"`
	Explanation   string       `json:"explanation,omitempty"`
}

// Quiz is collaborator-owned configuration plus the question bank a session
// snapshot is drawn from. Immutable once a session starts.
type Quiz struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Topic        string     `json:"topic"`
	Difficulty   Difficulty `json:"difficulty"`
	PassingScore float64    `json:"passingScore"`
	IsActive     bool       `json:"isActive"`
	Questions    []Question `json:"questions"`
}

// QuizSession is one attempt at a fixed question set.
// Score and Passed are meaningful only once Status is completed.
type QuizSession struct {
	ID                string        `json:"id"`
	QuizID            string        `json:"quizId"`
	UserID            string        `json:"userId,omitempty"`
	Topic             string        `json:"topic"`
	Difficulty        Difficulty    `json:"difficulty"`
	PassingScore      float64       `json:"passingScore"`
	Status            SessionStatus `json:"status"`
	TotalQuestions    int           `json:"totalQuestions"`
	AnsweredQuestions int           `json:"answeredQuestions"`
	CorrectAnswers    int           `json:"correctAnswers"`
	Score             float64       `json:"score"`
	Passed            bool          `json:"passed"`
	CurrentQuestion   int           `json:"currentQuestion"`
	TimeSpentSeconds  int           `json:"timeSpentSeconds"`
	Questions         []Question    `json:"questions"`
	StartedAt         time.Time     `json:"startedAt"`
	CompletedAt       time.Time     `json:"completedAt,omitempty"`
}

// QuestionByID finds a question in the session snapshot.
func (s *QuizSession) QuestionByID(questionID string) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == questionID {
			return q, true
		}
	}
	return Question{}, false
}

// UserResponse records a single submitted answer. Question fields are
// denormalized so analytics never re-joins against quiz content.
type UserResponse struct {
	ID               string       `json:"id"`
	SessionID        string       `json:"sessionId"`
	QuestionID       string       `json:"questionId"`
	UserID           string       `json:"userId,omitempty"`
	QuestionType     QuestionType `json:"questionType"`
	QuestionText     string       `json:"questionText"`
	CorrectAnswer    string       `json:"correctAnswer"`
	Topic            string       `json:"topic"`
	Difficulty       Difficulty   `json:"difficulty"`
	UserAnswer       string       `json:"userAnswer"`
	IsCorrect        bool         `json:"isCorrect"`
	TimeTakenSeconds int          `json:"timeTakenSeconds"`
	AnsweredAt       time.Time    `json:"answeredAt"`
}

// UserProgress is the cumulative learning state for one (user, topic) pair.
// Created on the first completed session for the topic; mutated only by
// session completion and by the spaced-repetition scheduler.
type UserProgress struct {
	ID                  string       `json:"id"`
	UserID              string       `json:"userId"`
	Topic               string       `json:"topic"`
	QuizzesTaken        int          `json:"quizzesTaken"`
	QuestionsAnswered   int          `json:"questionsAnswered"`
	CorrectAnswers      int          `json:"correctAnswers"`
	AverageScore        float64      `json:"averageScore"`
	MasteryLevel        MasteryLevel `json:"masteryLevel"`
	MasteryScore        float64      `json:"masteryScore"`
	SuggestedDifficulty Difficulty   `json:"suggestedDifficulty"`
	ReviewIntervalDays  int          `json:"reviewIntervalDays"`
	NextReviewDate      time.Time    `json:"nextReviewDate"`
	FirstAttemptAt      time.Time    `json:"firstAttemptAt"`
	LastUpdatedAt       time.Time    `json:"lastUpdatedAt"`
}

// SuccessRate is correct/answered, 0 when no questions were answered yet.
func (p *UserProgress) SuccessRate() float64 {
	if p.QuestionsAnswered == 0 {
		return 0
	}
	return float64(p.CorrectAnswers) / float64(p.QuestionsAnswered)
}

// RepetitionLevel buckets a review interval for display; it plays no part in
// interval arithmetic.
type RepetitionLevel string

const (
	RepetitionLevel1   RepetitionLevel = "level_1" // 1 day
	RepetitionLevel2   RepetitionLevel = "level_2" // 3 days
	RepetitionLevel3   RepetitionLevel = "level_3" // 7 days
	RepetitionLevel4   RepetitionLevel = "level_4" // 14 days
	RepetitionLevel5   RepetitionLevel = "level_5" // 30 days
	RepetitionMastered RepetitionLevel = "mastered"
)

// ReviewItem is a due spaced-repetition entry for one topic.
type ReviewItem struct {
	Topic           string          `json:"topic"`
	Difficulty      Difficulty      `json:"difficulty"`
	LastReviewed    time.Time       `json:"lastReviewed"`
	NextReview      time.Time       `json:"nextReview"`
	RepetitionLevel RepetitionLevel `json:"repetitionLevel"`
	SuccessRate     float64         `json:"successRate"`
	ReviewCount     int             `json:"reviewCount"`
}

// GapSeverity grades how far below threshold a topic's accuracy sits.
type GapSeverity string

const (
	SeverityMedium GapSeverity = "medium"
	SeverityHigh   GapSeverity = "high"
)

// MissedQuestion is a sample of an incorrectly answered question attached to
// a knowledge gap.
type MissedQuestion struct {
	Question   string       `json:"question"`
	Difficulty Difficulty   `json:"difficulty"`
	Type       QuestionType `json:"type"`
}

// KnowledgeGap is a topic whose historical accuracy fell below the gap threshold.
type KnowledgeGap struct {
	Topic          string           `json:"topic"`
	Accuracy       float64          `json:"accuracy"`
	TotalQuestions int              `json:"totalQuestions"`
	WeakAreas      []MissedQuestion `json:"weakAreas"`
	Severity       GapSeverity      `json:"severity"`
}

// PracticeSuggestion is the focused-practice action derived from a gap.
type PracticeSuggestion struct {
	Topic             string  `json:"topic"`
	TargetAccuracy    float64 `json:"targetAccuracy"`
	EstimatedSessions int     `json:"estimatedSessions"`
}

// GapAnalysis is the read-only view produced by the gap analyzer.
type GapAnalysis struct {
	Gaps           []KnowledgeGap       `json:"gaps"`
	Strengths      []string             `json:"strengths"`
	Suggestions    []PracticeSuggestion `json:"suggestions"`
	TotalResponses int                  `json:"totalResponses"`
	Confidence     float64              `json:"confidence"`
	AnalyzedAt     time.Time            `json:"analyzedAt"`
}

// RecommendationType tags why a recommendation was emitted.
type RecommendationType string

const (
	RecommendKnowledgeGap     RecommendationType = "knowledge_gap"
	RecommendSpacedRepetition RecommendationType = "spaced_repetition"
	RecommendProgression      RecommendationType = "progression"
	RecommendBeginner         RecommendationType = "beginner"
)

// Recommendation is an ephemeral, ranked study suggestion. Lower priority
// values are more urgent.
type Recommendation struct {
	Type                 RecommendationType `json:"type"`
	Topic                string             `json:"topic"`
	Difficulty           Difficulty         `json:"difficulty"`
	Priority             int                `json:"priority"`
	Reason               string             `json:"reason"`
	EstimatedTimeMinutes int                `json:"estimatedTimeMinutes"`
	ConfidenceScore      float64            `json:"confidenceScore"`
}

// QuizAnalytics aggregates attempt outcomes for one quiz, updated
// incrementally inside the transaction that finishes each session.
type QuizAnalytics struct {
	QuizID         string    `json:"quizId"`
	TotalAttempts  int       `json:"totalAttempts"`
	TotalCompleted int       `json:"totalCompleted"`
	CompletionRate float64   `json:"completionRate"`
	AverageScore   float64   `json:"averageScore"`
	LastUpdatedAt  time.Time `json:"lastUpdatedAt"`
}

// SubmitResult is the per-answer feedback returned to the caller.
type SubmitResult struct {
	IsCorrect        bool    `json:"isCorrect"`
	CorrectAnswer    string  `json:"correctAnswer"`
	Explanation      string  `json:"explanation,omitempty"`
	Answered         int     `json:"answered"`
	Total            int     `json:"total"`
	CurrentScore     float64 `json:"currentScore"`
	SessionCompleted bool    `json:"sessionCompleted"`
}

// LearnerMetrics summarizes a user's activity across all completed sessions.
type LearnerMetrics struct {
	TotalSessions    int      `json:"totalSessions"`
	TotalQuestions   int      `json:"totalQuestions"`
	CorrectAnswers   int      `json:"correctAnswers"`
	AccuracyRate     float64  `json:"accuracyRate"`
	AverageScore     float64  `json:"averageScore"`
	TimeSpentMinutes float64  `json:"timeSpentMinutes"`
	StreakDays       int      `json:"streakDays"`
	MasteryProgress  float64  `json:"masteryProgress"`
	KnowledgeGaps    []string `json:"knowledgeGaps"`
	Strengths        []string `json:"strengths"`
}

// InsightType labels the trend insights in a period report.
type InsightType string

const (
	InsightImprovement InsightType = "improvement"
	InsightRegression  InsightType = "regression"
)

// Insight is a detected performance trend.
type Insight struct {
	Type       InsightType `json:"type"`
	Message    string      `json:"message"`
	Confidence float64     `json:"confidence"`
}

// DailyPerformance is one per-day bucket in a period report.
type DailyPerformance struct {
	Sessions     int     `json:"sessions"`
	AverageScore float64 `json:"averageScore"`
}

// TopicPerformance is one per-topic bucket in a period report.
type TopicPerformance struct {
	Sessions       int `json:"sessions"`
	TotalQuestions int `json:"totalQuestions"`
	CorrectAnswers int `json:"correctAnswers"`
}

// PeriodReport is the analytics view over a date range.
type PeriodReport struct {
	StartDate             time.Time                   `json:"startDate"`
	EndDate               time.Time                   `json:"endDate"`
	TotalSessions         int                         `json:"totalSessions"`
	TotalQuestions        int                         `json:"totalQuestions"`
	OverallAccuracy       float64                     `json:"overallAccuracy"`
	AverageScore          float64                     `json:"averageScore"`
	TotalTimeMinutes      float64                     `json:"totalTimeMinutes"`
	AverageSessionMinutes float64                     `json:"averageSessionMinutes"`
	ImprovementRate       float64                     `json:"improvementRate"`
	DailyPerformance      map[string]DailyPerformance `json:"dailyPerformance"`
	TopicBreakdown        map[string]TopicPerformance `json:"topicBreakdown"`
	Insights              []Insight                   `json:"insights"`
	GeneratedAt           time.Time                   `json:"generatedAt"`
}
