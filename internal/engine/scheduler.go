package engine

import (
	"context"
	"sort"
	"time"

	"adaptive-quiz-service/internal/domain"
)

const (
	minReviewIntervalDays = 1
	maxReviewIntervalDays = 90
)

// nextReviewInterval adjusts a review interval from session performance:
// strong performance doubles it (capped), middling performance keeps it,
// weak performance halves it (floored at one day).
func nextReviewInterval(currentDays int, performanceScore float64) int {
	switch {
	case performanceScore >= 80:
		doubled := currentDays * 2
		if doubled > maxReviewIntervalDays {
			return maxReviewIntervalDays
		}
		return doubled
	case performanceScore >= 60:
		return currentDays
	default:
		halved := currentDays / 2
		if halved < minReviewIntervalDays {
			return minReviewIntervalDays
		}
		return halved
	}
}

// applyReviewInterval writes the new interval and next review date onto the
// progress record.
func applyReviewInterval(progress *domain.UserProgress, performanceScore float64, now time.Time) {
	progress.ReviewIntervalDays = nextReviewInterval(progress.ReviewIntervalDays, performanceScore)
	progress.NextReviewDate = now.AddDate(0, 0, progress.ReviewIntervalDays)
}

// classifyRepetitionLevel buckets an interval for display only.
func classifyRepetitionLevel(intervalDays int) domain.RepetitionLevel {
	switch {
	case intervalDays <= 1:
		return domain.RepetitionLevel1
	case intervalDays <= 3:
		return domain.RepetitionLevel2
	case intervalDays <= 7:
		return domain.RepetitionLevel3
	case intervalDays <= 14:
		return domain.RepetitionLevel4
	case intervalDays <= 30:
		return domain.RepetitionLevel5
	default:
		return domain.RepetitionMastered
	}
}

// DueReviews returns every topic whose next review date has passed, most
// overdue first and, among equally due items, weakest success rate first.
func (e *Engine) DueReviews(ctx context.Context, userID string) ([]domain.ReviewItem, error) {
	records, err := e.store.ProgressByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	items := make([]domain.ReviewItem, 0, len(records))
	for _, progress := range records {
		if progress.NextReviewDate.IsZero() || progress.NextReviewDate.After(now) {
			continue
		}
		items = append(items, reviewItem(&progress))
	}

	sort.Slice(items, func(i, j int) bool {
		if !items[i].NextReview.Equal(items[j].NextReview) {
			return items[i].NextReview.Before(items[j].NextReview)
		}
		return items[i].SuccessRate < items[j].SuccessRate
	})
	return items, nil
}

// RecordReview reschedules one topic from an out-of-session review score,
// for callers running standalone review drills.
func (e *Engine) RecordReview(ctx context.Context, userID, topic string, performanceScore float64) (*domain.ReviewItem, error) {
	var item domain.ReviewItem
	err := e.store.InTx(ctx, func(tx Store) error {
		progress, err := tx.Progress(ctx, userID, topic)
		if err != nil {
			return err
		}
		applyReviewInterval(progress, performanceScore, e.now())
		progress.LastUpdatedAt = e.now()
		if err := tx.SaveProgress(ctx, progress); err != nil {
			return err
		}
		item = reviewItem(progress)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func reviewItem(progress *domain.UserProgress) domain.ReviewItem {
	return domain.ReviewItem{
		Topic:           progress.Topic,
		Difficulty:      progress.SuggestedDifficulty,
		LastReviewed:    progress.LastUpdatedAt,
		NextReview:      progress.NextReviewDate,
		RepetitionLevel: classifyRepetitionLevel(progress.ReviewIntervalDays),
		SuccessRate:     progress.SuccessRate(),
		ReviewCount:     progress.QuizzesTaken,
	}
}
