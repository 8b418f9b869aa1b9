package engine

import (
	"context"
	"sort"

	"adaptive-quiz-service/internal/domain"
)

const (
	gapAccuracyThreshold      = 70
	strengthAccuracyThreshold = 85
	highSeverityThreshold     = 50
	maxWeakAreaSamples        = 5
	// Confidence saturates once this many responses back the analysis.
	fullConfidenceResponses = 50
)

// AnalyzeGaps groups a user's historical responses by topic and classifies
// gaps and strengths. A topic between the gap and strength thresholds is
// deliberately neither. With no history the analysis degrades to empty
// lists rather than erroring.
func (e *Engine) AnalyzeGaps(ctx context.Context, userID string) (*domain.GapAnalysis, error) {
	responses, err := e.store.CompletedResponses(ctx, userID)
	if err != nil {
		return nil, err
	}

	analysis := &domain.GapAnalysis{
		Gaps:        []domain.KnowledgeGap{},
		Strengths:   []string{},
		Suggestions: []domain.PracticeSuggestion{},
		AnalyzedAt:  e.now(),
	}
	if len(responses) == 0 {
		return analysis, nil
	}

	type topicStats struct {
		total   int
		correct int
		missed  []domain.MissedQuestion
	}
	byTopic := make(map[string]*topicStats)
	for _, response := range responses {
		stats, ok := byTopic[response.Topic]
		if !ok {
			stats = &topicStats{}
			byTopic[response.Topic] = stats
		}
		stats.total++
		if response.IsCorrect {
			stats.correct++
		} else if len(stats.missed) < maxWeakAreaSamples {
			stats.missed = append(stats.missed, domain.MissedQuestion{
				Question:   response.QuestionText,
				Difficulty: response.Difficulty,
				Type:       response.QuestionType,
			})
		}
	}

	topics := make([]string, 0, len(byTopic))
	for topic := range byTopic {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	for _, topic := range topics {
		stats := byTopic[topic]
		accuracy := float64(stats.correct) / float64(stats.total) * 100
		switch {
		case accuracy < gapAccuracyThreshold:
			severity := domain.SeverityMedium
			if accuracy < highSeverityThreshold {
				severity = domain.SeverityHigh
			}
			analysis.Gaps = append(analysis.Gaps, domain.KnowledgeGap{
				Topic:          topic,
				Accuracy:       accuracy,
				TotalQuestions: stats.total,
				WeakAreas:      stats.missed,
				Severity:       severity,
			})
			analysis.Suggestions = append(analysis.Suggestions, domain.PracticeSuggestion{
				Topic:             topic,
				TargetAccuracy:    80,
				EstimatedSessions: estimatedSessions(accuracy),
			})
		case accuracy >= strengthAccuracyThreshold:
			analysis.Strengths = append(analysis.Strengths, topic)
		}
	}

	analysis.TotalResponses = len(responses)
	analysis.Confidence = float64(len(responses)) / fullConfidenceResponses
	if analysis.Confidence > 1 {
		analysis.Confidence = 1
	}
	return analysis, nil
}

func estimatedSessions(accuracy float64) int {
	sessions := int((80 - accuracy) / 10)
	if sessions < 1 {
		return 1
	}
	return sessions
}
