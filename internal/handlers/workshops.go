package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"workshops/internal/service"
)

const (
	defaultListLimit = 5
	maxListLimit     = 100
)

func (h HandlerSet) ListWorkshops(c *gin.Context) {
	workshops, err := h.svc.Workshops.GetAllWithStats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toWorkshopsWithStats(workshops))
}

func (h HandlerSet) GetWorkshop(c *gin.Context) {
	workshop, err := h.svc.Workshops.GetWorkshopWithStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toWorkshopWithStats(workshop))
}

func (h HandlerSet) TopRated(c *gin.Context) {
	limit, ok := limitParam(c)
	if !ok {
		return
	}
	workshops, err := h.svc.Workshops.GetTopRatedWithStats(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toWorkshopsWithStats(workshops))
}

func (h HandlerSet) Newest(c *gin.Context) {
	limit, ok := limitParam(c)
	if !ok {
		return
	}
	workshops, err := h.svc.Workshops.GetNewestWithStats(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toWorkshopsWithStats(workshops))
}

func (h HandlerSet) CreateWorkshop(c *gin.Context) {
	input, files, err := workshopForm(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	workshop, err := h.svc.Workshops.SaveWorkshop(c.Request.Context(), input, files)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toWorkshop(workshop))
}

func (h HandlerSet) UpdateWorkshop(c *gin.Context) {
	input, files, err := workshopForm(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	workshop, err := h.svc.Workshops.UpdateWorkshop(c.Request.Context(), c.Param("id"), input, files)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toWorkshop(workshop))
}

func (h HandlerSet) DeleteWorkshop(c *gin.Context) {
	if err := h.svc.Workshops.DeleteWorkshop(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// workshopForm reads a multipart or urlencoded workshop form. Fields that were not sent
// stay nil so updates leave them alone.
func workshopForm(c *gin.Context) (service.WorkshopInput, service.WorkshopFiles, error) {
	values := map[string][]string{}
	var fileFields map[string][]*multipart.FileHeader

	form, err := c.MultipartForm()
	switch {
	case err == nil:
		values = form.Value
		fileFields = form.File
	case errors.Is(err, http.ErrNotMultipart):
		if err := c.Request.ParseForm(); err != nil {
			return service.WorkshopInput{}, service.WorkshopFiles{}, errors.New("invalid form body")
		}
		values = c.Request.PostForm
	default:
		return service.WorkshopInput{}, service.WorkshopFiles{}, errors.New("invalid multipart body")
	}

	field := func(name string) *string {
		v, ok := values[name]
		if !ok || len(v) == 0 {
			return nil
		}
		return &v[0]
	}
	filesFor := func(name string) []*multipart.FileHeader {
		return append(append([]*multipart.FileHeader(nil), fileFields[name]...), fileFields[name+"[]"]...)
	}
	single := func(name string) *service.FileUpload {
		headers := filesFor(name)
		if len(headers) == 0 {
			return nil
		}
		f := service.FromMultipart(headers[0])
		return &f
	}

	input := service.WorkshopInput{
		Name:            field("name"),
		Description:     field("description"),
		Duration:        field("duration"),
		Labels:          field("labels"),
		ParentalConsent: field("parentalConsent"),
		Quiz:            field("quiz"),
	}
	files := service.WorkshopFiles{
		Image:        single("image"),
		Media:        service.FromMultipartList(filesFor("media")),
		Instructions: service.FromMultipartList(filesFor("instructionsFiles")),
		Manuals:      service.FromMultipartList(filesFor("manualsFiles")),
		Demo:         service.FromMultipartList(filesFor("demoFiles")),
		Worksheets:   service.FromMultipartList(filesFor("worksheetsFiles")),
		LabelsFile:   single("labels"),
	}
	return input, files, nil
}

func limitParam(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultListLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		badRequest(c, "limit must be a non-negative integer")
		return 0, false
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit, true
}
