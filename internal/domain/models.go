package domain

import (
	"strings"
	"time"
)

// FlashCard is a two-sided study card. Cards are never deleted during a
// session; flipping toggles which side the client shows.
type FlashCard struct {
	ID        string `json:"id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	IsFlipped bool   `json:"isFlipped"`
}

// QuizAnswer is one answer option of a question. Immutable once created.
type QuizAnswer struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// QuizQuestion models an MCQ question. Insertion order of Answers is display
// order; the first answer flagged correct is authoritative for grading.
type QuizQuestion struct {
	ID      string       `json:"id"`
	Text    string       `json:"text"`
	Answers []QuizAnswer `json:"answers"`
}

// Quiz is an ordered collection of questions, immutable after creation.
type Quiz struct {
	ID        string         `json:"id"`
	Questions []QuizQuestion `json:"questions"`
}

// AnswerInput and QuestionInput carry quiz content before ids are assigned,
// e.g. from the conversational runtime or the quiz bank.
type AnswerInput struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

type QuestionInput struct {
	Text    string        `json:"text"`
	Answers []AnswerInput `json:"answers"`
}

// QuizResult is the grading outcome for a single question. Selected and
// Correct are nil when no matching answer exists.
type QuizResult struct {
	Question  QuizQuestion
	Selected  *QuizAnswer
	Correct   *QuizAnswer
	IsCorrect bool
}

// Product is a wishlist entry resolved from the catalog. Re-adding the "same"
// gift creates a new Product with a new id.
type Product struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
}

// CatalogProduct is the raw record shape returned by the catalog service.
type CatalogProduct struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Thumbnail   string   `json:"thumbnail"`
	Images      []string `json:"images"`
	Category    string   `json:"category"`
}

// Image picks the primary thumbnail, falling back to the first list image.
func (p CatalogProduct) Image() string {
	if p.Thumbnail != "" {
		return p.Thumbnail
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

// Letter is the per-session singleton letter. Edits overwrite Recipient and
// Content in place; ID and CreatedAt survive every edit.
type Letter struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProductView is the wire-level projection of a product, with the description
// split into up to three display chunks.
type ProductView struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Description1     string  `json:"description1"`
	Description2     string  `json:"description2"`
	Description3     string  `json:"description3"`
	Image            string  `json:"image"`
	Price            float64 `json:"price"`
	Category         string  `json:"category"`
	IsRecommendation bool    `json:"isRecommendation,omitempty"`
}

// NewProductView projects a product for the client.
func NewProductView(p Product) ProductView {
	d1, d2, d3 := SplitDescription(p.Description)
	return ProductView{
		ID:           p.ID,
		Title:        p.Title,
		Description1: d1,
		Description2: d2,
		Description3: d3,
		Image:        p.Image,
		Price:        p.Price,
		Category:     p.Category,
	}
}

// SplitDescription chunks a description for card display. Fewer than 10 words
// stay whole in the first chunk; otherwise the word list splits into three
// contiguous thirds, remainder attached to the last third.
func SplitDescription(description string) (string, string, string) {
	words := strings.Fields(description)
	if len(words) < 10 {
		return description, "", ""
	}
	third := len(words) / 3
	return strings.Join(words[:third], " "),
		strings.Join(words[third:2*third], " "),
		strings.Join(words[2*third:], " ")
}

// Game results arrive from the client's perspective.
const (
	GameResultWin  = "win"
	GameResultLose = "lose"
	GameResultTie  = "tie"
)
