package quiz

import (
	"crypto/sha1"
	"encoding/hex"
	"math/rand"
	"strings"

	"trivia-quiz/internal/opentdb"
)

type Option struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

// PublicQuestion is what a player is shown; it never carries the answer.
type PublicQuestion struct {
	QuestionID string   `json:"question_id"`
	Question   string   `json:"question"`
	Options    []Option `json:"options"`
	Category   string   `json:"category"`
	Difficulty string   `json:"difficulty"`
	Type       string   `json:"type"`
}

type Question struct {
	PublicQuestion
	CorrectIndex int `json:"correct_index"`
}

// CorrectOption returns the option holding the right answer.
func (q Question) CorrectOption() Option {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return Option{}
	}
	return q.Options[q.CorrectIndex]
}

// BuildQuestions shuffles the answers of each raw question and assigns
// option letters and a content-derived ID.
func BuildQuestions(raw []opentdb.RawQuestion) []Question {
	questions := make([]Question, 0, len(raw))
	for _, item := range raw {
		question := buildQuestion(item)
		question.QuestionID = MakeQuestionID(question)
		questions = append(questions, question)
	}
	return questions
}

func MakeQuestionID(question Question) string {
	var keyBuilder strings.Builder
	keyBuilder.WriteString(question.Question)
	for _, option := range question.Options {
		keyBuilder.WriteString("|")
		keyBuilder.WriteString(option.Text)
	}

	hash := sha1.Sum([]byte(keyBuilder.String()))
	return "q_" + hex.EncodeToString(hash[:6])
}

func NormalizeLetter(answer string) string {
	letter := strings.ToUpper(strings.TrimSpace(answer))
	if len(letter) != 1 {
		return ""
	}
	return letter
}

// AnswerIndex maps a letter to an option index, or -1 when it names no option.
func AnswerIndex(answer string, optionCount int) int {
	letter := NormalizeLetter(answer)
	if letter == "" {
		return -1
	}
	idx := int(letter[0]) - 'A'
	if idx < 0 || idx >= optionCount {
		return -1
	}
	return idx
}

func buildQuestion(raw opentdb.RawQuestion) Question {
	type choice struct {
		text      string
		isCorrect bool
	}

	choices := make([]choice, 0, len(raw.IncorrectAnswers)+1)
	for _, incorrect := range raw.IncorrectAnswers {
		choices = append(choices, choice{
			text:      incorrect,
			isCorrect: false,
		})
	}

	choices = append(choices, choice{
		text:      raw.CorrectAnswer,
		isCorrect: true,
	})

	if raw.Type == "boolean" && len(choices) == 2 {
		// True/False keeps its natural order.
		if strings.EqualFold(choices[1].text, "true") {
			choices[0], choices[1] = choices[1], choices[0]
		}
	} else {
		rand.Shuffle(len(choices), func(i, j int) {
			choices[i], choices[j] = choices[j], choices[i]
		})
	}

	options := make([]Option, len(choices))
	correctIndex := -1

	for idx, candidate := range choices {
		letter := string(rune('A' + idx))
		options[idx] = Option{
			Letter: letter,
			Text:   candidate.text,
		}
		if candidate.isCorrect {
			correctIndex = idx
		}
	}

	return Question{
		PublicQuestion: PublicQuestion{
			Question:   raw.Question,
			Options:    options,
			Category:   raw.Category,
			Difficulty: raw.Difficulty,
			Type:       raw.Type,
		},
		CorrectIndex: correctIndex,
	}
}
