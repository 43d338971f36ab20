package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshops/internal/models"
)

func TestSaveWorkshopTagsDocuments(t *testing.T) {
	f := newFixture(t)

	w, err := f.workshops.SaveWorkshop(context.Background(), WorkshopInput{Name: strPtr("Robots bouwen")}, WorkshopFiles{
		Instructions: []FileUpload{pdf("stap1.pdf"), pdf("stap2.pdf")},
		Demo:         []FileUpload{pdf("demo.pdf")},
	})
	require.NoError(t, err)

	require.Len(t, w.Documents, 3)
	categories := map[models.DocumentCategory]int{}
	for _, doc := range w.Documents {
		categories[doc.Category]++
		assert.True(t, strings.HasPrefix(doc.Path, "/uploads/"), doc.Path)
	}
	assert.Equal(t, 2, categories[models.DocumentInstructions])
	assert.Equal(t, 1, categories[models.DocumentDemo])
	assert.Equal(t, "stap1.pdf", w.Documents[0].Name)
	assert.Equal(t, "", w.ImagePath)

	stored, err := f.db.Workshops().GetByID(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Documents, 3)
}

func TestSaveWorkshopParsesFormFields(t *testing.T) {
	f := newFixture(t)

	w, err := f.workshops.SaveWorkshop(context.Background(), WorkshopInput{
		Name:            strPtr("Robots"),
		Description:     strPtr("Bouw een robot"),
		Duration:        strPtr("01:30"),
		Labels:          strPtr(`[{"name":"STEM","color":"#ff0000"},{"name":"  ","color":"#000"}]`),
		ParentalConsent: strPtr("true"),
		Quiz:            strPtr(`[{"question":"2+2?","options":[{"text":"4","correct":true},{"text":"5","correct":false}]}]`),
	}, WorkshopFiles{
		Image: ptr(upload("cover.png", pngHeader)),
		Media: []FileUpload{pdf("slides.pdf")},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bouw een robot", w.Description)
	assert.Equal(t, "01:30", w.Duration)
	assert.True(t, w.ParentalConsent)
	assert.Equal(t, []models.Label{{Name: "STEM", Color: "#ff0000"}}, w.Labels)
	require.Len(t, w.Quiz, 1)
	assert.True(t, w.Quiz[0].Options[0].Correct)
	assert.True(t, strings.HasPrefix(w.ImagePath, "/uploads/"))
	assert.True(t, strings.HasSuffix(w.ImagePath, "-cover.png"))
	require.Len(t, w.Files, 1)
}

func TestSaveWorkshopRequiresName(t *testing.T) {
	f := newFixture(t)

	_, err := f.workshops.SaveWorkshop(context.Background(), WorkshopInput{Name: strPtr("  ")}, WorkshopFiles{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSaveWorkshopRejectsNonImageCover(t *testing.T) {
	f := newFixture(t)

	_, err := f.workshops.SaveWorkshop(context.Background(), WorkshopInput{Name: strPtr("Robots")}, WorkshopFiles{
		Image: ptr(pdf("cover.pdf")),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSaveWorkshopSanitizesSVGCover(t *testing.T) {
	f := newFixture(t)
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" onload="alert(1)"><script>alert(1)</script><rect/></svg>`)

	w, err := f.workshops.SaveWorkshop(context.Background(), WorkshopInput{Name: strPtr("Robots")}, WorkshopFiles{
		Image: ptr(upload("logo.svg", svg)),
	})
	require.NoError(t, err)

	name := strings.TrimPrefix(w.ImagePath, "/uploads/")
	rc, _, err := f.uploads.Open(context.Background(), name)
	require.NoError(t, err)
	defer rc.Close()
	buf, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.NotContains(t, string(buf), "script")
	assert.NotContains(t, string(buf), "onload")
}

func TestParseLabelsIsLenient(t *testing.T) {
	f := newFixture(t)

	labels, ok := f.workshops.ParseLabels(nil, strPtr("{not json"))
	assert.True(t, ok)
	assert.Empty(t, labels)
	assert.NotNil(t, labels)

	labels, ok = f.workshops.ParseLabels(nil, nil)
	assert.False(t, ok)
	assert.Nil(t, labels)

	file := upload("labels.json", []byte(`[{"name":"Techniek","color":"#00f"}]`))
	labels, ok = f.workshops.ParseLabels(&file, strPtr(`[{"name":"ignored"}]`))
	assert.True(t, ok)
	assert.Equal(t, []models.Label{{Name: "Techniek", Color: "#00f"}}, labels)

	labels, _ = f.workshops.ParseLabels(nil, strPtr(`["Lego","Code"]`))
	assert.Equal(t, []models.Label{{Name: "Lego"}, {Name: "Code"}}, labels)
}

func TestInvalidQuizBecomesEmptyList(t *testing.T) {
	f := newFixture(t)

	w, err := f.workshops.SaveWorkshop(context.Background(), WorkshopInput{
		Name: strPtr("Robots"),
		Quiz: strPtr("[{broken"),
	}, WorkshopFiles{})
	require.NoError(t, err)
	assert.NotNil(t, w.Quiz)
	assert.Empty(t, w.Quiz)
}

func TestParseConsent(t *testing.T) {
	for in, want := range map[string]bool{
		"true": true, "TRUE": true, "1": true, "on": true,
		"false": false, "0": false, "": false, "nope": false,
	} {
		assert.Equal(t, want, parseConsent(in), in)
	}
}

func TestUpdateWorkshopAppendsMediaAndDocuments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.workshops.SaveWorkshop(ctx, WorkshopInput{
		Name:        strPtr("Robots"),
		Description: strPtr("eerste versie"),
		Labels:      strPtr(`[{"name":"Oud","color":"#111"}]`),
	}, WorkshopFiles{
		Media:      []FileUpload{pdf("a.pdf")},
		Worksheets: []FileUpload{pdf("blad1.pdf")},
	})
	require.NoError(t, err)

	updated, err := f.workshops.UpdateWorkshop(ctx, created.ID, WorkshopInput{
		Description: strPtr("tweede versie"),
		Labels:      strPtr(`[{"name":"Nieuw","color":"#222"}]`),
	}, WorkshopFiles{
		Media:   []FileUpload{pdf("b.pdf")},
		Manuals: []FileUpload{pdf("handleiding.pdf")},
	})
	require.NoError(t, err)

	assert.Equal(t, "Robots", updated.Name)
	assert.Equal(t, "tweede versie", updated.Description)
	assert.Len(t, updated.Files, 2)
	require.Len(t, updated.Documents, 2)
	assert.Equal(t, models.DocumentWorksheets, updated.Documents[0].Category)
	assert.Equal(t, models.DocumentManuals, updated.Documents[1].Category)
	assert.Equal(t, []models.Label{{Name: "Nieuw", Color: "#222"}}, updated.Labels)
}

func TestUpdateWorkshopKeepsLabelsWhenAbsent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.workshops.SaveWorkshop(ctx, WorkshopInput{
		Name:   strPtr("Robots"),
		Labels: strPtr(`[{"name":"Blijft","color":"#111"}]`),
	}, WorkshopFiles{})
	require.NoError(t, err)

	updated, err := f.workshops.UpdateWorkshop(ctx, created.ID, WorkshopInput{Duration: strPtr("45")}, WorkshopFiles{})
	require.NoError(t, err)
	assert.Equal(t, created.Labels, updated.Labels)
	assert.Equal(t, "45", updated.Duration)
}

func TestUpdateMissingWorkshop(t *testing.T) {
	f := newFixture(t)

	_, err := f.workshops.UpdateWorkshop(context.Background(), "missing", WorkshopInput{Name: strPtr("x")}, WorkshopFiles{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetMissingWorkshop(t *testing.T) {
	f := newFixture(t)

	_, err := f.workshops.GetWorkshopWithStats(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteWorkshop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	w := f.workshop(t, "robots", time.Now())

	require.NoError(t, f.workshops.DeleteWorkshop(ctx, w.ID))
	_, err := f.db.Workshops().GetByID(ctx, w.ID)
	assert.Error(t, err)

	assert.NoError(t, f.workshops.DeleteWorkshop(ctx, w.ID))
}

func TestGetTopRatedWithStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	ratings := map[string][]int{
		"five":      {5, 5},
		"four-a":    {4},
		"four-b":    {5, 3},
		"three":     {3, 3},
		"unrated":   nil,
		"almost":    {4, 4, 3},
		"excellent": {5, 4},
	}
	order := []string{"five", "four-a", "four-b", "three", "unrated", "almost", "excellent"}
	f.members(t, "user-0", "user-1", "user-2")
	for i, name := range order {
		w := f.workshop(t, name, base.Add(time.Duration(i)*time.Minute))
		for u, stars := range ratings[name] {
			_, err := f.reviews.CreateOrUpdateReview(ctx, fmt.Sprintf("user-%d", u), w.ID, stars, "")
			require.NoError(t, err)
		}
	}

	top, err := f.workshops.GetTopRatedWithStats(ctx, 10)
	require.NoError(t, err)

	var names []string
	for _, w := range top {
		names = append(names, w.Name)
		assert.GreaterOrEqual(t, w.Average, 4.0)
	}
	// Listing order is newest first, so ties keep that order.
	assert.Equal(t, []string{"five", "excellent", "four-b", "four-a"}, names)

	limited, err := f.workshops.GetTopRatedWithStats(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "five", limited[0].Name)
}

func TestGetNewestWithStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, name := range []string{"oud", "midden", "nieuw"} {
		f.workshop(t, name, base.Add(time.Duration(i)*time.Hour))
	}

	newest, err := f.workshops.GetNewestWithStats(ctx, 2)
	require.NoError(t, err)
	require.Len(t, newest, 2)
	assert.Equal(t, "nieuw", newest[0].Name)
	assert.Equal(t, "midden", newest[1].Name)
	assert.Zero(t, newest[0].ReviewCount)
}

func ptr[T any](v T) *T { return &v }
