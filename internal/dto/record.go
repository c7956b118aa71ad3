package dto

// EditRequest carries a partial update of a record. Blank fields keep
// their previous value.
type EditRequest struct {
	ID          OptionalInt `json:"id"`
	Type        string      `json:"type"`
	Title       string      `json:"titre"`
	Course      string      `json:"cours"`
	Author      string      `json:"nomDiscord"`
	Description string      `json:"description"`
	URL         string      `json:"url"`
	Year        OptionalInt `json:"annee" validate:"omitempty,min=1,max=99"`
	SchoolYear  string      `json:"anneeScolaire"`
}

// VoteRequest casts or switches a vote.
type VoteRequest struct {
	ID      OptionalInt `json:"id"`
	Vote    string      `json:"vote" validate:"required,oneof=like dislike"`
	VoterID string      `json:"voterId"`
}

// Vote actions.
const (
	VoteLike    = "like"
	VoteDislike = "dislike"
)

// ListFilter narrows the public catalogue.
type ListFilter struct {
	Year *int
}

// ExportRequest selects the catalogue export format.
type ExportRequest struct {
	Format string `form:"format"`
	Year   *int   `form:"-"`
}

// Export formats.
const (
	ExportCSV = "csv"
	ExportPDF = "pdf"
)
