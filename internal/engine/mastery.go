package engine

import (
	"adaptive-quiz-service/internal/domain"
)

const maxExperienceBonus = 20

// applyMasteryUpdate folds a completed session into cumulative topic
// statistics. Pure arithmetic over validated inputs; replaying the same
// ordered sessions from a clean record always yields the same final state.
func applyMasteryUpdate(progress *domain.UserProgress, session *domain.QuizSession) {
	progress.QuizzesTaken++
	progress.QuestionsAnswered += session.TotalQuestions
	progress.CorrectAnswers += session.CorrectAnswers
	progress.AverageScore = float64(progress.CorrectAnswers) / float64(progress.QuestionsAnswered) * 100

	progress.MasteryScore = masteryScore(progress)
	progress.MasteryLevel = masteryLevel(progress)
	progress.SuggestedDifficulty = suggestDifficulty(session.Difficulty, session.Score)
}

// masteryScore is average accuracy plus an experience bonus of 2 points per
// quiz taken, capped at 20, the whole thing capped at 100.
func masteryScore(progress *domain.UserProgress) float64 {
	bonus := float64(progress.QuizzesTaken * 2)
	if bonus > maxExperienceBonus {
		bonus = maxExperienceBonus
	}
	score := progress.AverageScore + bonus
	if score > 100 {
		score = 100
	}
	return score
}

func masteryLevel(progress *domain.UserProgress) domain.MasteryLevel {
	switch {
	case progress.AverageScore >= 90 && progress.QuizzesTaken >= 5:
		return domain.MasteryExpert
	case progress.AverageScore >= 80 && progress.QuizzesTaken >= 3:
		return domain.MasteryProficient
	case progress.AverageScore >= 60 && progress.QuizzesTaken >= 2:
		return domain.MasteryLearning
	default:
		return domain.MasteryNovice
	}
}

// suggestDifficulty promotes on a strong latest session, demotes on a weak
// one, and otherwise keeps the session's difficulty.
func suggestDifficulty(current domain.Difficulty, latestScore float64) domain.Difficulty {
	switch {
	case latestScore >= 85:
		return current.Next()
	case latestScore <= 60:
		return current.Prev()
	default:
		return current
	}
}
