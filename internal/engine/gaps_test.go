package engine_test

import (
	"context"
	"testing"

	"adaptive-quiz-service/internal/domain"
)

func TestAnalyzeGapsClassifiesTopics(t *testing.T) {
	ctx := context.Background()
	quizzes := map[string]domain.Quiz{
		"quiz-pointers": makeQuiz("quiz-pointers", "pointers", domain.Intermediate, 70, 20),
		"quiz-slices":   makeQuiz("quiz-slices", "slices", domain.Intermediate, 70, 20),
		"quiz-maps":     makeQuiz("quiz-maps", "maps", domain.Intermediate, 70, 10),
	}
	eng, _ := newTestEngineWithQuizzes(t, testClockAt(baseTime), quizzes)

	runQuiz(t, eng, "quiz-pointers", "u1", 9) // 45%: high-severity gap
	runQuiz(t, eng, "quiz-slices", "u1", 17)  // 85%: strength, boundary inclusive
	runQuiz(t, eng, "quiz-maps", "u1", 7)     // 70%: neither gap nor strength

	analysis, err := eng.AnalyzeGaps(ctx, "u1")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if len(analysis.Gaps) != 1 {
		t.Fatalf("expected 1 gap, got %d", len(analysis.Gaps))
	}
	gap := analysis.Gaps[0]
	if gap.Topic != "pointers" || gap.Severity != domain.SeverityHigh {
		t.Fatalf("unexpected gap: %+v", gap)
	}
	if gap.Accuracy != 45 || gap.TotalQuestions != 20 {
		t.Fatalf("unexpected gap stats: %+v", gap)
	}
	// Eleven questions were missed but samples are capped.
	if len(gap.WeakAreas) != 5 {
		t.Fatalf("expected 5 weak-area samples, got %d", len(gap.WeakAreas))
	}

	if len(analysis.Suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(analysis.Suggestions))
	}
	suggestion := analysis.Suggestions[0]
	if suggestion.Topic != "pointers" || suggestion.TargetAccuracy != 80 {
		t.Fatalf("unexpected suggestion: %+v", suggestion)
	}
	if suggestion.EstimatedSessions != 3 {
		t.Fatalf("expected 3 estimated sessions for 45%% accuracy, got %d", suggestion.EstimatedSessions)
	}

	if len(analysis.Strengths) != 1 || analysis.Strengths[0] != "slices" {
		t.Fatalf("expected slices as the only strength, got %v", analysis.Strengths)
	}

	if analysis.TotalResponses != 50 {
		t.Fatalf("expected 50 responses, got %d", analysis.TotalResponses)
	}
	if analysis.Confidence != 1 {
		t.Fatalf("expected saturated confidence, got %f", analysis.Confidence)
	}
}

func TestAnalyzeGapsSeverityBoundary(t *testing.T) {
	ctx := context.Background()
	quizzes := map[string]domain.Quiz{
		"quiz-a": makeQuiz("quiz-a", "structs", domain.Beginner, 70, 10),
	}
	eng, _ := newTestEngineWithQuizzes(t, testClockAt(baseTime), quizzes)

	runQuiz(t, eng, "quiz-a", "u1", 5) // exactly 50%: medium, not high

	analysis, err := eng.AnalyzeGaps(ctx, "u1")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(analysis.Gaps) != 1 || analysis.Gaps[0].Severity != domain.SeverityMedium {
		t.Fatalf("expected one medium gap, got %+v", analysis.Gaps)
	}
	// 10 of 50 responses backing the analysis.
	if analysis.Confidence != 0.2 {
		t.Fatalf("expected confidence 0.2, got %f", analysis.Confidence)
	}
}

func TestAnalyzeGapsIgnoresUnfinishedSessions(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t, testClockAt(baseTime))

	// One answer submitted but the session never completes.
	session, err := eng.StartSession(ctx, "quiz-go", "u1")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	submitOne(t, eng, session.ID, "q1", "wrong")

	analysis, err := eng.AnalyzeGaps(ctx, "u1")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.TotalResponses != 0 || len(analysis.Gaps) != 0 {
		t.Fatalf("in-progress responses must not count, got %+v", analysis)
	}
}

func TestAnalyzeGapsEmptyHistory(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t, testClockAt(baseTime))

	analysis, err := eng.AnalyzeGaps(ctx, "nobody")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(analysis.Gaps) != 0 || len(analysis.Strengths) != 0 || len(analysis.Suggestions) != 0 {
		t.Fatalf("expected empty analysis, got %+v", analysis)
	}
	if analysis.Confidence != 0 {
		t.Fatalf("expected zero confidence, got %f", analysis.Confidence)
	}
}
