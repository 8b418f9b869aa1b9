package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizInactive is returned when starting a session against a deactivated quiz.
	ErrQuizInactive = errors.New("quiz is not active")
	// ErrEmptyQuestionSet is returned when a session would start with no questions.
	ErrEmptyQuestionSet = errors.New("question set is empty")
	// ErrSessionNotFound is returned when a session ID does not exist.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionNotActive is returned when submitting to a completed or abandoned session.
	ErrSessionNotActive = errors.New("quiz session is not in progress")
	// ErrQuestionNotFound indicates a submitted question ID is not in the session snapshot.
	ErrQuestionNotFound = errors.New("question not found in session")
	// ErrDuplicateAnswer is returned when a (session, question) pair already has a response.
	// The storage layer's uniqueness constraint is authoritative, so a client
	// retrying a timed-out submit sees this error instead of double-counting.
	ErrDuplicateAnswer = errors.New("question already answered")
	// ErrUnsupportedQuestionType is returned by the scorer for unknown question types.
	ErrUnsupportedQuestionType = errors.New("unsupported question type")
	// ErrNoProgress is returned when a (user, topic) progress row does not exist.
	ErrNoProgress = errors.New("no progress record for user and topic")
)
