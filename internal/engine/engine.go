package engine

import (
	"time"
)

// Engine contains the adaptive-learning use cases: session lifecycle,
// progress/mastery updates, spaced-repetition scheduling, gap analysis,
// recommendations and reporting.
type Engine struct {
	store   Store
	quizzes QuizRepository
	now     func() time.Time
}

func NewEngine(store Store, quizzes QuizRepository) *Engine {
	return NewEngineWithClock(store, quizzes, time.Now)
}

// NewEngineWithClock injects the clock so scheduling tests are deterministic.
func NewEngineWithClock(store Store, quizzes QuizRepository, now func() time.Time) *Engine {
	return &Engine{store: store, quizzes: quizzes, now: now}
}
