package handlers

import (
	"time"

	"workshops/internal/models"
	"workshops/internal/service"
)

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	School    string    `json:"school"`
	Phone     string    `json:"phone"`
	AvatarURL *string   `json:"avatarUrl"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUser(u models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		School:    u.School,
		Phone:     u.Phone,
		AvatarURL: u.AvatarURL,
		Role:      string(u.Role),
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
	}
}

func toUsers(users []models.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUser(u))
	}
	return out
}

type reviewResponse struct {
	ID                string     `json:"id"`
	WorkshopID        string     `json:"workshopId"`
	UserID            string     `json:"userId"`
	Stars             int        `json:"stars"`
	Text              string     `json:"text"`
	AdminResponseText *string    `json:"adminResponseText"`
	AdminRespondedAt  *time.Time `json:"adminRespondedAt"`
	CreatedAt         time.Time  `json:"createdAt"`
}

func toReview(r models.Review) reviewResponse {
	return reviewResponse{
		ID:                r.ID,
		WorkshopID:        r.WorkshopID,
		UserID:            r.UserID,
		Stars:             r.Stars,
		Text:              r.Text,
		AdminResponseText: r.AdminResponseText,
		AdminRespondedAt:  r.AdminRespondedAt,
		CreatedAt:         r.CreatedAt,
	}
}

func toReviews(reviews []models.Review) []reviewResponse {
	out := make([]reviewResponse, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, toReview(r))
	}
	return out
}

type workshopResponse struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	Description     string                `json:"description"`
	Duration        string                `json:"duration"`
	ImagePath       string                `json:"imagePath"`
	Files           []string              `json:"files"`
	Labels          []models.Label        `json:"labelsJson"`
	Documents       []models.DocumentInfo `json:"documentsJson"`
	Quiz            []models.QuizQuestion `json:"quizJson"`
	ParentalConsent bool                  `json:"parentalConsent"`
	CreatedAt       time.Time             `json:"createdAt"`
}

// workshopStatsResponse is returned by every workshop read; writes return workshopResponse.
type workshopStatsResponse struct {
	workshopResponse
	Average     float64          `json:"average"`
	ReviewCount int              `json:"reviewCount"`
	Reviews     []reviewResponse `json:"reviews"`
}

func toWorkshop(w models.Workshop) workshopResponse {
	return workshopResponse{
		ID:              w.ID,
		Name:            w.Name,
		Description:     w.Description,
		Duration:        w.Duration,
		ImagePath:       w.ImagePath,
		Files:           orEmpty(w.Files),
		Labels:          orEmpty(w.Labels),
		Documents:       orEmpty(w.Documents),
		Quiz:            w.Quiz,
		ParentalConsent: w.ParentalConsent,
		CreatedAt:       w.CreatedAt,
	}
}

func toWorkshopWithStats(w service.WorkshopWithStats) workshopStatsResponse {
	return workshopStatsResponse{
		workshopResponse: toWorkshop(w.Workshop),
		Average:          w.Average,
		ReviewCount:      w.ReviewCount,
		Reviews:          toReviews(w.Reviews),
	}
}

func toWorkshopsWithStats(workshops []service.WorkshopWithStats) []workshopStatsResponse {
	out := make([]workshopStatsResponse, 0, len(workshops))
	for _, w := range workshops {
		out = append(out, toWorkshopWithStats(w))
	}
	return out
}

type favoriteResponse struct {
	ID         string            `json:"id"`
	UserID     string            `json:"userId"`
	WorkshopID string            `json:"workshopId"`
	Workshop   *workshopResponse `json:"workshop,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
}

func toFavorite(f models.Favorite) favoriteResponse {
	resp := favoriteResponse{
		ID:         f.ID,
		UserID:     f.UserID,
		WorkshopID: f.WorkshopID,
		CreatedAt:  f.CreatedAt,
	}
	if f.Workshop != nil {
		w := toWorkshop(*f.Workshop)
		resp.Workshop = &w
	}
	return resp
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
