package models

// Node statuses an LLM completion may report.
const (
	StatusSuccess = "success"
	StatusClarify = "clarify"
)

// StructuredNode is the validated shape an LLM completion must have to become a Node.
// Status "clarify" means the question was too vague and Content holds a clarifying prompt.
type StructuredNode struct {
	Status    string   `json:"status" validate:"required,oneof=success clarify"`
	Name      string   `json:"name" validate:"required,min=1"`
	Content   string   `json:"content" validate:"required,min=1"`
	Followups []string `json:"followups" validate:"required,max=10"`
}

// FlashcardInput is one keyword/definition pair produced by the flashcard prompt.
type FlashcardInput struct {
	Keyword    string `json:"keyword" validate:"required,min=1"`
	Definition string `json:"definition" validate:"required,min=1"`
}
