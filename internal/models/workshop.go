package models

import "time"

type Label struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type DocumentCategory string

const (
	DocumentInstructions DocumentCategory = "instructions"
	DocumentManuals      DocumentCategory = "manuals"
	DocumentDemo         DocumentCategory = "demo"
	DocumentWorksheets   DocumentCategory = "worksheets"
)

// DocumentInfo is an uploaded file tagged with the section it belongs to.
type DocumentInfo struct {
	Name     string           `json:"name"`
	Path     string           `json:"path"`
	Category DocumentCategory `json:"category"`
}

type QuizOption struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

type QuizQuestion struct {
	Question string       `json:"question"`
	Options  []QuizOption `json:"options"`
}

type Workshop struct {
	ID              string
	Name            string
	Description     string
	Duration        string
	ImagePath       string
	Files           []string
	Labels          []Label
	Documents       []DocumentInfo
	Quiz            []QuizQuestion
	ParentalConsent bool
	CreatedAt       time.Time
}
