package models

import "time"

type Review struct {
	ID                string
	WorkshopID        string
	UserID            string
	Stars             int
	Text              string
	AdminResponseText *string
	AdminRespondedAt  *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Favorite struct {
	ID         string
	UserID     string
	WorkshopID string
	Workshop   *Workshop
	CreatedAt  time.Time
}

// StoredFile keeps a payload in the database instead of on disk.
type StoredFile struct {
	ID        string
	Name      string
	MimeType  string
	Data      []byte
	CreatedAt time.Time
}
