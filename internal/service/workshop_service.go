package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"workshops/internal/ids"
	"workshops/internal/models"
	"workshops/internal/repository"
)

const TopRatedThreshold = 4.0

// WorkshopInput holds the form fields of a create or update call. A nil field was not sent.
type WorkshopInput struct {
	Name            *string
	Description     *string
	Duration        *string
	Labels          *string
	ParentalConsent *string
	Quiz            *string
}

// WorkshopFiles groups the uploaded files of a create or update call by form field.
type WorkshopFiles struct {
	Image        *FileUpload
	Media        []FileUpload
	Instructions []FileUpload
	Manuals      []FileUpload
	Demo         []FileUpload
	Worksheets   []FileUpload
	LabelsFile   *FileUpload
}

type WorkshopWithStats struct {
	models.Workshop
	ReviewStats
}

type WorkshopService struct {
	workshops WorkshopStore
	reviews   *ReviewService
	uploads   *UploadService
	log       zerolog.Logger
	now       func() time.Time
}

func NewWorkshopService(workshops WorkshopStore, reviews *ReviewService, uploads *UploadService, log zerolog.Logger) *WorkshopService {
	return &WorkshopService{
		workshops: workshops,
		reviews:   reviews,
		uploads:   uploads,
		log:       log,
		now:       time.Now,
	}
}

// GetAllWithStats loads the stats of every workshop one by one. Fine for a catalogue of
// this size; a join is the fix once it grows.
func (s *WorkshopService) GetAllWithStats(ctx context.Context) ([]WorkshopWithStats, error) {
	workshops, err := s.workshops.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.withStats(ctx, workshops)
}

func (s *WorkshopService) GetWorkshopWithStats(ctx context.Context, id string) (WorkshopWithStats, error) {
	workshop, err := s.get(ctx, id)
	if err != nil {
		return WorkshopWithStats{}, err
	}
	stats, err := s.reviews.Stats(ctx, workshop.ID)
	if err != nil {
		return WorkshopWithStats{}, err
	}
	return WorkshopWithStats{Workshop: workshop, ReviewStats: stats}, nil
}

// GetWorkshop returns the workshop without review stats.
func (s *WorkshopService) GetWorkshop(ctx context.Context, id string) (models.Workshop, error) {
	return s.get(ctx, id)
}

func (s *WorkshopService) GetNewestWithStats(ctx context.Context, limit int) ([]WorkshopWithStats, error) {
	if limit <= 0 {
		return []WorkshopWithStats{}, nil
	}
	workshops, err := s.workshops.ListNewest(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.withStats(ctx, workshops)
}

// GetTopRatedWithStats keeps workshops rated 4 or higher, best first. Equal averages keep
// their listing order.
func (s *WorkshopService) GetTopRatedWithStats(ctx context.Context, limit int) ([]WorkshopWithStats, error) {
	all, err := s.GetAllWithStats(ctx)
	if err != nil {
		return nil, err
	}
	top := make([]WorkshopWithStats, 0, len(all))
	for _, w := range all {
		if w.Average >= TopRatedThreshold {
			top = append(top, w)
		}
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Average > top[j].Average })
	if limit >= 0 && len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

func (s *WorkshopService) SaveWorkshop(ctx context.Context, input WorkshopInput, files WorkshopFiles) (models.Workshop, error) {
	name := strings.TrimSpace(deref(input.Name))
	if name == "" {
		return models.Workshop{}, invalid("name is required")
	}

	workshop := models.Workshop{
		ID:              ids.New(),
		Name:            name,
		Description:     deref(input.Description),
		Duration:        deref(input.Duration),
		Files:           []string{},
		Documents:       []models.DocumentInfo{},
		Labels:          []models.Label{},
		ParentalConsent: parseConsent(deref(input.ParentalConsent)),
		CreatedAt:       s.now().UTC(),
	}
	if err := s.attachFiles(ctx, &workshop, files); err != nil {
		return models.Workshop{}, err
	}
	if labels, ok := s.ParseLabels(files.LabelsFile, input.Labels); ok {
		workshop.Labels = labels
	}
	if input.Quiz != nil {
		workshop.Quiz = s.parseQuiz(*input.Quiz)
	}

	if err := s.workshops.Create(ctx, workshop); err != nil {
		return models.Workshop{}, err
	}
	s.log.Info().Str("workshop_id", workshop.ID).Int("documents", len(workshop.Documents)).Msg("workshop created")
	return workshop, nil
}

// UpdateWorkshop overwrites the fields that were sent. Media and documents are appended
// to the existing lists; labels and quiz are replaced.
func (s *WorkshopService) UpdateWorkshop(ctx context.Context, id string, input WorkshopInput, files WorkshopFiles) (models.Workshop, error) {
	workshop, err := s.get(ctx, id)
	if err != nil {
		return models.Workshop{}, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return models.Workshop{}, invalid("name cannot be empty")
		}
		workshop.Name = name
	}
	if input.Description != nil {
		workshop.Description = *input.Description
	}
	if input.Duration != nil {
		workshop.Duration = *input.Duration
	}
	if input.ParentalConsent != nil {
		workshop.ParentalConsent = parseConsent(*input.ParentalConsent)
	}
	if err := s.attachFiles(ctx, &workshop, files); err != nil {
		return models.Workshop{}, err
	}
	if labels, ok := s.ParseLabels(files.LabelsFile, input.Labels); ok {
		workshop.Labels = labels
	}
	if input.Quiz != nil {
		workshop.Quiz = s.parseQuiz(*input.Quiz)
	}

	if err := s.workshops.Update(ctx, workshop); err != nil {
		if errors.Is(err, repository.ErrWorkshopNotFound) {
			return models.Workshop{}, notFound("workshop")
		}
		return models.Workshop{}, err
	}
	return workshop, nil
}

// DeleteWorkshop does nothing for an unknown id.
func (s *WorkshopService) DeleteWorkshop(ctx context.Context, id string) error {
	err := s.workshops.Delete(ctx, id)
	if errors.Is(err, repository.ErrWorkshopNotFound) {
		return nil
	}
	return err
}

// ParseLabels reads labels from the uploaded labels file or else from the inline field.
// The second result reports whether labels were sent at all. Unparseable input yields
// an empty list.
func (s *WorkshopService) ParseLabels(file *FileUpload, inline *string) ([]models.Label, bool) {
	var raw []byte
	switch {
	case file != nil && file.Open != nil:
		data, err := readUpload(*file)
		if err != nil {
			s.log.Warn().Err(err).Str("file", file.Name).Msg("labels file unreadable")
			return []models.Label{}, true
		}
		raw = data
	case inline != nil:
		raw = []byte(*inline)
	default:
		return nil, false
	}
	return decodeLabels(raw), true
}

func decodeLabels(raw []byte) []models.Label {
	labels := []models.Label{}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return labels
	}

	var parsed []models.Label
	if err := json.Unmarshal(raw, &parsed); err != nil {
		// Plain string lists are accepted as labels without a colour.
		var names []string
		if err := json.Unmarshal(raw, &names); err != nil {
			return labels
		}
		for _, n := range names {
			parsed = append(parsed, models.Label{Name: n})
		}
	}
	for _, l := range parsed {
		l.Name = strings.TrimSpace(l.Name)
		if l.Name == "" {
			continue
		}
		labels = append(labels, l)
	}
	return labels
}

func (s *WorkshopService) parseQuiz(raw string) []models.QuizQuestion {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var quiz []models.QuizQuestion
	if err := json.Unmarshal([]byte(raw), &quiz); err != nil {
		s.log.Warn().Err(err).Msg("quiz payload ignored")
		return []models.QuizQuestion{}
	}
	if quiz == nil {
		quiz = []models.QuizQuestion{}
	}
	return quiz
}

func (s *WorkshopService) attachFiles(ctx context.Context, workshop *models.Workshop, files WorkshopFiles) error {
	if files.Image != nil {
		img, err := s.uploads.StoreImage(ctx, *files.Image)
		if err != nil {
			return err
		}
		workshop.ImagePath = img.Path
	}
	for _, f := range files.Media {
		up, err := s.uploads.Store(ctx, f)
		if err != nil {
			return err
		}
		workshop.Files = append(workshop.Files, up.Path)
	}

	groups := []struct {
		category models.DocumentCategory
		files    []FileUpload
	}{
		{models.DocumentInstructions, files.Instructions},
		{models.DocumentManuals, files.Manuals},
		{models.DocumentDemo, files.Demo},
		{models.DocumentWorksheets, files.Worksheets},
	}
	for _, g := range groups {
		for _, f := range g.files {
			up, err := s.uploads.Store(ctx, f)
			if err != nil {
				return err
			}
			workshop.Documents = append(workshop.Documents, models.DocumentInfo{
				Name:     up.Name,
				Path:     up.Path,
				Category: g.category,
			})
		}
	}
	return nil
}

func (s *WorkshopService) get(ctx context.Context, id string) (models.Workshop, error) {
	workshop, err := s.workshops.GetByID(ctx, id)
	if errors.Is(err, repository.ErrWorkshopNotFound) {
		return models.Workshop{}, notFound("workshop")
	}
	return workshop, err
}

func (s *WorkshopService) withStats(ctx context.Context, workshops []models.Workshop) ([]WorkshopWithStats, error) {
	out := make([]WorkshopWithStats, 0, len(workshops))
	for _, w := range workshops {
		stats, err := s.reviews.Stats(ctx, w.ID)
		if err != nil {
			return nil, fmt.Errorf("stats for %s: %w", w.ID, err)
		}
		out = append(out, WorkshopWithStats{Workshop: w, ReviewStats: stats})
	}
	return out, nil
}

// parseConsent accepts the checkbox and string forms browsers send.
func parseConsent(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "on", "yes", "ja":
		return true
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func readUpload(f FileUpload) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
