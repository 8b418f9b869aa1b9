package engine

import (
	"context"
	"fmt"
	"time"

	"adaptive-quiz-service/internal/domain"
)

// Streaks scan a bounded window rather than full history; unbounded streak
// tracking would need an incremental day counter updated on completion.
const streakLookbackDays = 30

// Streak counts consecutive calendar days with at least one completed
// session, walking backward from today.
func (e *Engine) Streak(ctx context.Context, userID string) (int, error) {
	now := e.now()
	sessions, err := e.store.CompletedSessions(ctx, userID, now.AddDate(0, 0, -streakLookbackDays), now)
	if err != nil {
		return 0, err
	}
	if len(sessions) == 0 {
		return 0, nil
	}

	activeDays := make(map[string]struct{}, len(sessions))
	for _, session := range sessions {
		activeDays[dayKey(session.CompletedAt)] = struct{}{}
	}

	streak := 0
	day := now
	for {
		if _, ok := activeDays[dayKey(day)]; !ok {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak, nil
}

// improvementRate is the ordinary-least-squares slope of score against
// session index in chronological order. Fewer than two sessions yield 0.
func improvementRate(sessions []domain.QuizSession) float64 {
	n := len(sessions)
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, session := range sessions {
		x := float64(i)
		sumX += x
		sumY += session.Score
		sumXY += x * session.Score
		sumX2 += x * x
	}
	nf := float64(n)
	return (nf*sumXY - sumX*sumY) / (nf*sumX2 - sumX*sumX)
}

// PeriodReport summarizes completed sessions in [start, end]: totals,
// per-day and per-topic buckets, trend slope and first-half/second-half
// insights.
func (e *Engine) PeriodReport(ctx context.Context, userID string, start, end time.Time) (*domain.PeriodReport, error) {
	sessions, err := e.store.CompletedSessions(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	report := &domain.PeriodReport{
		StartDate:        start,
		EndDate:          end,
		DailyPerformance: map[string]domain.DailyPerformance{},
		TopicBreakdown:   map[string]domain.TopicPerformance{},
		Insights:         []domain.Insight{},
		GeneratedAt:      e.now(),
	}
	if len(sessions) == 0 {
		return report, nil
	}

	var totalQuestions, totalCorrect, totalSeconds int
	var scoreSum float64
	dailyScores := map[string][]float64{}
	for _, session := range sessions {
		totalQuestions += session.TotalQuestions
		totalCorrect += session.CorrectAnswers
		totalSeconds += session.TimeSpentSeconds
		scoreSum += session.Score

		day := dayKey(session.CompletedAt)
		dailyScores[day] = append(dailyScores[day], session.Score)

		topic := report.TopicBreakdown[session.Topic]
		topic.Sessions++
		topic.TotalQuestions += session.TotalQuestions
		topic.CorrectAnswers += session.CorrectAnswers
		report.TopicBreakdown[session.Topic] = topic
	}

	for day, scores := range dailyScores {
		var sum float64
		for _, score := range scores {
			sum += score
		}
		report.DailyPerformance[day] = domain.DailyPerformance{
			Sessions:     len(scores),
			AverageScore: sum / float64(len(scores)),
		}
	}

	report.TotalSessions = len(sessions)
	report.TotalQuestions = totalQuestions
	if totalQuestions > 0 {
		report.OverallAccuracy = float64(totalCorrect) / float64(totalQuestions) * 100
	}
	report.AverageScore = scoreSum / float64(len(sessions))
	report.TotalTimeMinutes = float64(totalSeconds) / 60
	report.AverageSessionMinutes = report.TotalTimeMinutes / float64(len(sessions))
	report.ImprovementRate = improvementRate(sessions)
	report.Insights = trendInsights(sessions)
	return report, nil
}

// trendInsights compares first-half and second-half average scores; a delta
// of five points or more flags an improvement or regression.
func trendInsights(sessions []domain.QuizSession) []domain.Insight {
	insights := []domain.Insight{}
	if len(sessions) < 2 {
		return insights
	}

	mid := len(sessions) / 2
	firstAvg := averageScore(sessions[:mid])
	secondAvg := averageScore(sessions[mid:])

	switch {
	case secondAvg > firstAvg+5:
		insights = append(insights, domain.Insight{
			Type:       domain.InsightImprovement,
			Message:    fmt.Sprintf("performance improved by %.1f points over the period", secondAvg-firstAvg),
			Confidence: 0.8,
		})
	case firstAvg > secondAvg+5:
		insights = append(insights, domain.Insight{
			Type:       domain.InsightRegression,
			Message:    fmt.Sprintf("performance declined by %.1f points recently", firstAvg-secondAvg),
			Confidence: 0.8,
		})
	}
	return insights
}

// LearnerMetrics aggregates a user's full completed-session history into one
// snapshot: totals, accuracy, streak, overall mastery and gap/strength topics.
func (e *Engine) LearnerMetrics(ctx context.Context, userID string) (*domain.LearnerMetrics, error) {
	sessions, err := e.store.CompletedSessions(ctx, userID, time.Time{}, e.now())
	if err != nil {
		return nil, err
	}

	metrics := &domain.LearnerMetrics{KnowledgeGaps: []string{}, Strengths: []string{}}
	if len(sessions) == 0 {
		return metrics, nil
	}

	var totalQuestions, totalCorrect, totalSeconds int
	var scoreSum float64
	for _, session := range sessions {
		totalQuestions += session.TotalQuestions
		totalCorrect += session.CorrectAnswers
		totalSeconds += session.TimeSpentSeconds
		scoreSum += session.Score
	}

	metrics.TotalSessions = len(sessions)
	metrics.TotalQuestions = totalQuestions
	metrics.CorrectAnswers = totalCorrect
	if totalQuestions > 0 {
		metrics.AccuracyRate = float64(totalCorrect) / float64(totalQuestions) * 100
	}
	metrics.AverageScore = scoreSum / float64(len(sessions))
	metrics.TimeSpentMinutes = float64(totalSeconds) / 60

	streak, err := e.Streak(ctx, userID)
	if err != nil {
		return nil, err
	}
	metrics.StreakDays = streak

	records, err := e.store.ProgressByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var masterySum float64
	for _, progress := range records {
		masterySum += progress.MasteryScore
		if progress.AverageScore < gapAccuracyThreshold {
			metrics.KnowledgeGaps = append(metrics.KnowledgeGaps, progress.Topic)
		} else if progress.AverageScore >= strengthAccuracyThreshold {
			metrics.Strengths = append(metrics.Strengths, progress.Topic)
		}
	}
	if len(records) > 0 {
		metrics.MasteryProgress = masterySum / float64(len(records))
	}
	return metrics, nil
}

// UserProgress returns all per-topic progress rows for a user.
func (e *Engine) UserProgress(ctx context.Context, userID string) ([]domain.UserProgress, error) {
	return e.store.ProgressByUser(ctx, userID)
}

func averageScore(sessions []domain.QuizSession) float64 {
	if len(sessions) == 0 {
		return 0
	}
	var sum float64
	for _, session := range sessions {
		sum += session.Score
	}
	return sum / float64(len(sessions))
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
