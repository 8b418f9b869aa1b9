package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/engine"
)

// Store is an in-memory implementation of engine.Store with the same
// guarantees as the Postgres store: (sessionID, questionID) uniqueness on
// responses, (userID, topic) uniqueness on progress, and all-or-nothing
// transactions. Useful for tests and for running without a database.
type Store struct {
	mu   sync.RWMutex
	data *storeData
}

type storeData struct {
	sessions     []domain.QuizSession
	sessionIdx   map[string]int
	responses    []domain.UserResponse
	responseKeys map[string]struct{}
	progress     []domain.UserProgress
	progressIdx  map[string]int
	analytics    map[string]domain.QuizAnalytics
}

func NewStore() *Store {
	return &Store{data: newStoreData()}
}

func newStoreData() *storeData {
	return &storeData{
		sessionIdx:   make(map[string]int),
		responseKeys: make(map[string]struct{}),
		progressIdx:  make(map[string]int),
		analytics:    make(map[string]domain.QuizAnalytics),
	}
}

// InTx runs fn against a cloned snapshot and swaps it in only when fn
// succeeds, so a failed submission leaves no partial writes behind.
func (s *Store) InTx(_ context.Context, fn func(tx engine.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.data.clone()
	if err := fn(&txStore{data: staged}); err != nil {
		return err
	}
	s.data = staged
	return nil
}

func (s *Store) CreateSession(_ context.Context, session *domain.QuizSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.createSession(session)
}

func (s *Store) Session(_ context.Context, id string) (*domain.QuizSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.session(id)
}

func (s *Store) SessionForUpdate(ctx context.Context, id string) (*domain.QuizSession, error) {
	return s.Session(ctx, id)
}

func (s *Store) SaveSession(_ context.Context, session *domain.QuizSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.saveSession(session)
}

func (s *Store) CompletedSessions(_ context.Context, userID string, start, end time.Time) ([]domain.QuizSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.completedSessions(userID, start, end), nil
}

func (s *Store) InsertResponse(_ context.Context, response *domain.UserResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.insertResponse(response)
}

func (s *Store) CompletedResponses(_ context.Context, userID string) ([]domain.UserResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.completedResponses(userID), nil
}

func (s *Store) Progress(_ context.Context, userID, topic string) (*domain.UserProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.progressFor(userID, topic)
}

func (s *Store) ProgressByUser(_ context.Context, userID string) ([]domain.UserProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.progressByUser(userID), nil
}

func (s *Store) SaveProgress(_ context.Context, progress *domain.UserProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.saveProgress(progress)
}

func (s *Store) QuizAnalytics(_ context.Context, quizID string) (*domain.QuizAnalytics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.quizAnalytics(quizID), nil
}

func (s *Store) SaveQuizAnalytics(_ context.Context, analytics *domain.QuizAnalytics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.analytics[analytics.QuizID] = *analytics
	return nil
}

// txStore operates on staged data under the parent's lock; no extra locking.
type txStore struct {
	data *storeData
}

func (t *txStore) InTx(_ context.Context, fn func(tx engine.Store) error) error {
	// Already inside a transaction.
	return fn(t)
}

func (t *txStore) CreateSession(_ context.Context, session *domain.QuizSession) error {
	return t.data.createSession(session)
}

func (t *txStore) Session(_ context.Context, id string) (*domain.QuizSession, error) {
	return t.data.session(id)
}

func (t *txStore) SessionForUpdate(_ context.Context, id string) (*domain.QuizSession, error) {
	return t.data.session(id)
}

func (t *txStore) SaveSession(_ context.Context, session *domain.QuizSession) error {
	return t.data.saveSession(session)
}

func (t *txStore) CompletedSessions(_ context.Context, userID string, start, end time.Time) ([]domain.QuizSession, error) {
	return t.data.completedSessions(userID, start, end), nil
}

func (t *txStore) InsertResponse(_ context.Context, response *domain.UserResponse) error {
	return t.data.insertResponse(response)
}

func (t *txStore) CompletedResponses(_ context.Context, userID string) ([]domain.UserResponse, error) {
	return t.data.completedResponses(userID), nil
}

func (t *txStore) Progress(_ context.Context, userID, topic string) (*domain.UserProgress, error) {
	return t.data.progressFor(userID, topic)
}

func (t *txStore) ProgressByUser(_ context.Context, userID string) ([]domain.UserProgress, error) {
	return t.data.progressByUser(userID), nil
}

func (t *txStore) SaveProgress(_ context.Context, progress *domain.UserProgress) error {
	return t.data.saveProgress(progress)
}

func (t *txStore) QuizAnalytics(_ context.Context, quizID string) (*domain.QuizAnalytics, error) {
	return t.data.quizAnalytics(quizID), nil
}

func (t *txStore) SaveQuizAnalytics(_ context.Context, analytics *domain.QuizAnalytics) error {
	t.data.analytics[analytics.QuizID] = *analytics
	return nil
}

func (d *storeData) clone() *storeData {
	staged := &storeData{
		sessions:     append([]domain.QuizSession(nil), d.sessions...),
		sessionIdx:   make(map[string]int, len(d.sessionIdx)),
		responses:    append([]domain.UserResponse(nil), d.responses...),
		responseKeys: make(map[string]struct{}, len(d.responseKeys)),
		progress:     append([]domain.UserProgress(nil), d.progress...),
		progressIdx:  make(map[string]int, len(d.progressIdx)),
		analytics:    make(map[string]domain.QuizAnalytics, len(d.analytics)),
	}
	for k, v := range d.sessionIdx {
		staged.sessionIdx[k] = v
	}
	for k := range d.responseKeys {
		staged.responseKeys[k] = struct{}{}
	}
	for k, v := range d.progressIdx {
		staged.progressIdx[k] = v
	}
	for k, v := range d.analytics {
		staged.analytics[k] = v
	}
	return staged
}

func (d *storeData) createSession(session *domain.QuizSession) error {
	d.sessionIdx[session.ID] = len(d.sessions)
	d.sessions = append(d.sessions, *session)
	return nil
}

func (d *storeData) session(id string) (*domain.QuizSession, error) {
	idx, ok := d.sessionIdx[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	session := d.sessions[idx]
	return &session, nil
}

func (d *storeData) saveSession(session *domain.QuizSession) error {
	idx, ok := d.sessionIdx[session.ID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	d.sessions[idx] = *session
	return nil
}

func (d *storeData) completedSessions(userID string, start, end time.Time) []domain.QuizSession {
	var out []domain.QuizSession
	for _, session := range d.sessions {
		if session.UserID != userID || session.Status != domain.SessionCompleted {
			continue
		}
		if !start.IsZero() && session.CompletedAt.Before(start) {
			continue
		}
		if session.CompletedAt.After(end) {
			continue
		}
		out = append(out, session)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.Before(out[j].CompletedAt)
	})
	return out
}

func (d *storeData) insertResponse(response *domain.UserResponse) error {
	key := response.SessionID + "|" + response.QuestionID
	if _, exists := d.responseKeys[key]; exists {
		return domain.ErrDuplicateAnswer
	}
	d.responseKeys[key] = struct{}{}
	d.responses = append(d.responses, *response)
	return nil
}

func (d *storeData) completedResponses(userID string) []domain.UserResponse {
	var out []domain.UserResponse
	for _, response := range d.responses {
		if response.UserID != userID {
			continue
		}
		idx, ok := d.sessionIdx[response.SessionID]
		if !ok || d.sessions[idx].Status != domain.SessionCompleted {
			continue
		}
		out = append(out, response)
	}
	return out
}

func (d *storeData) progressFor(userID, topic string) (*domain.UserProgress, error) {
	idx, ok := d.progressIdx[userID+"|"+topic]
	if !ok {
		return nil, domain.ErrNoProgress
	}
	progress := d.progress[idx]
	return &progress, nil
}

func (d *storeData) progressByUser(userID string) []domain.UserProgress {
	var out []domain.UserProgress
	for _, progress := range d.progress {
		if progress.UserID == userID {
			out = append(out, progress)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Topic < out[j].Topic
	})
	return out
}

func (d *storeData) saveProgress(progress *domain.UserProgress) error {
	key := progress.UserID + "|" + progress.Topic
	if idx, ok := d.progressIdx[key]; ok {
		d.progress[idx] = *progress
		return nil
	}
	d.progressIdx[key] = len(d.progress)
	d.progress = append(d.progress, *progress)
	return nil
}

func (d *storeData) quizAnalytics(quizID string) *domain.QuizAnalytics {
	if analytics, ok := d.analytics[quizID]; ok {
		return &analytics
	}
	return nil
}
