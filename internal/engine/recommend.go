package engine

import (
	"context"
	"fmt"
	"sort"

	"adaptive-quiz-service/internal/domain"
)

// Recommend merges gap, scheduling and progression signals into a ranked
// study list. A user without progress records gets a single bootstrap
// recommendation instead.
func (e *Engine) Recommend(ctx context.Context, userID string, max int) ([]domain.Recommendation, error) {
	records, err := e.store.ProgressByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []domain.Recommendation{beginnerRecommendation()}, nil
	}

	now := e.now()
	recommendations := make([]domain.Recommendation, 0, len(records))
	for _, progress := range records {
		if progress.AverageScore < gapAccuracyThreshold {
			recommendations = append(recommendations, domain.Recommendation{
				Type:                 domain.RecommendKnowledgeGap,
				Topic:                progress.Topic,
				Difficulty:           progress.SuggestedDifficulty,
				Priority:             1,
				Reason:               fmt.Sprintf("low performance (%.1f%%) needs reinforcement", progress.AverageScore),
				EstimatedTimeMinutes: 20,
				ConfidenceScore:      0.9,
			})
		}
		if !progress.NextReviewDate.IsZero() && !progress.NextReviewDate.After(now) {
			recommendations = append(recommendations, domain.Recommendation{
				Type:                 domain.RecommendSpacedRepetition,
				Topic:                progress.Topic,
				Difficulty:           progress.SuggestedDifficulty,
				Priority:             2,
				Reason:               "due for spaced repetition review",
				EstimatedTimeMinutes: 15,
				ConfidenceScore:      0.8,
			})
		}
		if progress.MasteryScore >= 80 && progress.SuggestedDifficulty != domain.Advanced {
			next := progress.SuggestedDifficulty.Next()
			recommendations = append(recommendations, domain.Recommendation{
				Type:                 domain.RecommendProgression,
				Topic:                progress.Topic,
				Difficulty:           next,
				Priority:             3,
				Reason:               fmt.Sprintf("ready for %s level", next),
				EstimatedTimeMinutes: 25,
				ConfidenceScore:      0.7,
			})
		}
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		if recommendations[i].Priority != recommendations[j].Priority {
			return recommendations[i].Priority < recommendations[j].Priority
		}
		if recommendations[i].ConfidenceScore != recommendations[j].ConfidenceScore {
			return recommendations[i].ConfidenceScore > recommendations[j].ConfidenceScore
		}
		return recommendations[i].Topic < recommendations[j].Topic
	})

	if max > 0 && len(recommendations) > max {
		recommendations = recommendations[:max]
	}
	return recommendations, nil
}

func beginnerRecommendation() domain.Recommendation {
	return domain.Recommendation{
		Type:                 domain.RecommendBeginner,
		Topic:                "fundamentals",
		Difficulty:           domain.Beginner,
		Priority:             1,
		Reason:               "great starting point for new learners",
		EstimatedTimeMinutes: 15,
		ConfidenceScore:      1.0,
	}
}
