package engine_test

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/infra/memory"
)

func TestStreakCountsConsecutiveDays(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(t, testClockAt(baseTime))

	// Today, yesterday and the day before, then a break, then an older session.
	seedCompleted(t, store, "s1", "u1", "go", 80, baseTime)
	seedCompleted(t, store, "s2", "u1", "go", 80, baseTime.AddDate(0, 0, -1))
	seedCompleted(t, store, "s3", "u1", "go", 80, baseTime.AddDate(0, 0, -2))
	seedCompleted(t, store, "s4", "u1", "go", 80, baseTime.AddDate(0, 0, -5))

	streak, err := eng.Streak(ctx, "u1")
	if err != nil {
		t.Fatalf("streak: %v", err)
	}
	if streak != 3 {
		t.Fatalf("expected streak 3, got %d", streak)
	}
}

func TestStreakBrokenByMissedToday(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(t, testClockAt(baseTime))

	seedCompleted(t, store, "s1", "u1", "go", 80, baseTime.AddDate(0, 0, -1))
	seedCompleted(t, store, "s2", "u1", "go", 80, baseTime.AddDate(0, 0, -2))

	streak, err := eng.Streak(ctx, "u1")
	if err != nil {
		t.Fatalf("streak: %v", err)
	}
	if streak != 0 {
		t.Fatalf("no session today means no streak, got %d", streak)
	}
}

func TestStreakNoHistory(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t, testClockAt(baseTime))

	streak, err := eng.Streak(ctx, "u1")
	if err != nil {
		t.Fatalf("streak: %v", err)
	}
	if streak != 0 {
		t.Fatalf("expected 0, got %d", streak)
	}
}

func TestPeriodReportAggregates(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(t, testClockAt(baseTime))

	// Rising scores across four days: 60, 60, 80, 80.
	seedCompleted(t, store, "s1", "u1", "algebra", 60, baseTime.AddDate(0, 0, -3))
	seedCompleted(t, store, "s2", "u1", "algebra", 60, baseTime.AddDate(0, 0, -2))
	seedCompleted(t, store, "s3", "u1", "geometry", 80, baseTime.AddDate(0, 0, -1))
	seedCompleted(t, store, "s4", "u1", "geometry", 80, baseTime)
	// Outside the window.
	seedCompleted(t, store, "s5", "u1", "algebra", 10, baseTime.AddDate(0, 0, -40))

	report, err := eng.PeriodReport(ctx, "u1", baseTime.AddDate(0, 0, -30), baseTime)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.TotalSessions != 4 {
		t.Fatalf("expected 4 sessions in window, got %d", report.TotalSessions)
	}
	if report.AverageScore != 70 {
		t.Fatalf("expected average 70, got %f", report.AverageScore)
	}
	if report.TotalQuestions != 40 || report.OverallAccuracy != 70 {
		t.Fatalf("unexpected accuracy aggregates: %+v", report)
	}
	if report.TotalTimeMinutes != 20 || report.AverageSessionMinutes != 5 {
		t.Fatalf("unexpected time aggregates: %+v", report)
	}

	if len(report.DailyPerformance) != 4 {
		t.Fatalf("expected 4 daily buckets, got %d", len(report.DailyPerformance))
	}
	today := report.DailyPerformance[baseTime.UTC().Format("2006-01-02")]
	if today.Sessions != 1 || today.AverageScore != 80 {
		t.Fatalf("unexpected daily bucket: %+v", today)
	}

	algebra := report.TopicBreakdown["algebra"]
	if algebra.Sessions != 2 || algebra.TotalQuestions != 20 || algebra.CorrectAnswers != 12 {
		t.Fatalf("unexpected topic bucket: %+v", algebra)
	}

	// Slope of 60,60,80,80 against indexes 0..3 is 8 points per session.
	if math.Abs(report.ImprovementRate-8) > 1e-9 {
		t.Fatalf("expected improvement rate 8, got %f", report.ImprovementRate)
	}

	if len(report.Insights) != 1 {
		t.Fatalf("expected one insight, got %d", len(report.Insights))
	}
	insight := report.Insights[0]
	if insight.Type != domain.InsightImprovement || insight.Confidence != 0.8 {
		t.Fatalf("unexpected insight: %+v", insight)
	}
}

func TestPeriodReportRegressionInsight(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(t, testClockAt(baseTime))

	seedCompleted(t, store, "s1", "u1", "go", 90, baseTime.AddDate(0, 0, -3))
	seedCompleted(t, store, "s2", "u1", "go", 90, baseTime.AddDate(0, 0, -2))
	seedCompleted(t, store, "s3", "u1", "go", 70, baseTime.AddDate(0, 0, -1))
	seedCompleted(t, store, "s4", "u1", "go", 70, baseTime)

	report, err := eng.PeriodReport(ctx, "u1", baseTime.AddDate(0, 0, -30), baseTime)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(report.Insights) != 1 || report.Insights[0].Type != domain.InsightRegression {
		t.Fatalf("expected regression insight, got %+v", report.Insights)
	}
	if report.ImprovementRate >= 0 {
		t.Fatalf("expected negative slope, got %f", report.ImprovementRate)
	}
}

func TestPeriodReportEmptyWindow(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t, testClockAt(baseTime))

	report, err := eng.PeriodReport(ctx, "u1", baseTime.AddDate(0, 0, -7), baseTime)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.TotalSessions != 0 || len(report.Insights) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}

func TestLearnerMetrics(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(t, testClockAt(baseTime))

	seedCompleted(t, store, "s1", "u1", "algebra", 60, baseTime.AddDate(0, 0, -1))
	seedCompleted(t, store, "s2", "u1", "geometry", 90, baseTime)

	progress := []domain.UserProgress{
		{ID: "p1", UserID: "u1", Topic: "algebra", AverageScore: 60, MasteryScore: 62},
		{ID: "p2", UserID: "u1", Topic: "geometry", AverageScore: 90, MasteryScore: 94},
	}
	for i := range progress {
		if err := store.SaveProgress(ctx, &progress[i]); err != nil {
			t.Fatalf("seed progress: %v", err)
		}
	}

	metrics, err := eng.LearnerMetrics(ctx, "u1")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if metrics.TotalSessions != 2 || metrics.TotalQuestions != 20 {
		t.Fatalf("unexpected totals: %+v", metrics)
	}
	if metrics.AverageScore != 75 || metrics.AccuracyRate != 75 {
		t.Fatalf("unexpected averages: %+v", metrics)
	}
	if metrics.StreakDays != 2 {
		t.Fatalf("expected streak 2, got %d", metrics.StreakDays)
	}
	if metrics.MasteryProgress != 78 {
		t.Fatalf("expected mastery average 78, got %f", metrics.MasteryProgress)
	}
	if len(metrics.KnowledgeGaps) != 1 || metrics.KnowledgeGaps[0] != "algebra" {
		t.Fatalf("expected algebra gap, got %v", metrics.KnowledgeGaps)
	}
	if len(metrics.Strengths) != 1 || metrics.Strengths[0] != "geometry" {
		t.Fatalf("expected geometry strength, got %v", metrics.Strengths)
	}
}

func TestLearnerMetricsNoHistory(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t, testClockAt(baseTime))

	metrics, err := eng.LearnerMetrics(ctx, "nobody")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if metrics.TotalSessions != 0 || metrics.MasteryProgress != 0 {
		t.Fatalf("expected zero metrics, got %+v", metrics)
	}
}

// seedCompleted inserts a finished ten-question session directly into the
// store. Correct answers are derived from the score.
func seedCompleted(t *testing.T, store *memory.Store, id, userID, topic string, score float64, completedAt time.Time) {
	t.Helper()
	session := domain.QuizSession{
		ID:                id,
		QuizID:            fmt.Sprintf("quiz-%s", topic),
		UserID:            userID,
		Topic:             topic,
		Difficulty:        domain.Intermediate,
		Status:            domain.SessionCompleted,
		TotalQuestions:    10,
		AnsweredQuestions: 10,
		CorrectAnswers:    int(score / 10),
		Score:             score,
		TimeSpentSeconds:  300,
		StartedAt:         completedAt.Add(-5 * time.Minute),
		CompletedAt:       completedAt,
	}
	if err := store.CreateSession(context.Background(), &session); err != nil {
		t.Fatalf("seed session: %v", err)
	}
}
