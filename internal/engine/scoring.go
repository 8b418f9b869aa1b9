package engine

import (
	"strconv"
	"strings"

	"adaptive-quiz-service/internal/domain"
)

// Score evaluates a submitted answer against a question. It is pure: no
// state, no side effects, same inputs always produce the same verdict.
func Score(question domain.Question, answer string) (bool, error) {
	switch question.Type {
	case domain.MultipleChoice:
		return normalize(answer) == normalize(question.CorrectAnswer), nil
	case domain.TrueFalse:
		return scoreTrueFalse(question.CorrectAnswer, answer), nil
	case domain.FillInBlank:
		return normalize(answer) == normalize(question.CorrectAnswer), nil
	case domain.ShortAnswer:
		// Loose heuristic: either side containing the other counts as correct.
		// Anything stronger would be guessing at undocumented intent.
		submitted := normalize(answer)
		expected := normalize(question.CorrectAnswer)
		if submitted == "" || expected == "" {
			return submitted == expected, nil
		}
		return strings.Contains(submitted, expected) || strings.Contains(expected, submitted), nil
	default:
		return false, domain.ErrUnsupportedQuestionType
	}
}

func scoreTrueFalse(correct, answer string) bool {
	expected, okExpected := parseBool(correct)
	got, okGot := parseBool(answer)
	if !okExpected || !okGot {
		// Unparseable values fall back to case-insensitive string equality.
		return normalize(answer) == normalize(correct)
	}
	return expected == got
}

func parseBool(raw string) (bool, bool) {
	v, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return false, false
	}
	return v, true
}

func normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
