package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workshops/internal/middleware"
)

type favoriteRequest struct {
	WorkshopID string `json:"workshopId" form:"workshopId"`
}

func (h HandlerSet) ListFavorites(c *gin.Context) {
	claims, _ := middleware.Claims(c)
	favorites, err := h.svc.Favorites.GetFavorites(c.Request.Context(), claims.Subject)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]favoriteResponse, 0, len(favorites))
	for _, f := range favorites {
		out = append(out, toFavorite(f))
	}
	c.JSON(http.StatusOK, out)
}

func (h HandlerSet) AddFavorite(c *gin.Context) {
	workshopID, ok := favoriteWorkshopID(c)
	if !ok {
		return
	}
	claims, _ := middleware.Claims(c)
	favorite, err := h.svc.Favorites.AddFavorite(c.Request.Context(), claims.Subject, workshopID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toFavorite(favorite))
}

func (h HandlerSet) RemoveFavorite(c *gin.Context) {
	workshopID, ok := favoriteWorkshopID(c)
	if !ok {
		return
	}
	claims, _ := middleware.Claims(c)
	if err := h.svc.Favorites.RemoveFavorite(c.Request.Context(), claims.Subject, workshopID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// favoriteWorkshopID takes the workshop id from the query string or the JSON body.
func favoriteWorkshopID(c *gin.Context) (string, bool) {
	if id := c.Query("workshopId"); id != "" {
		return id, true
	}
	var req favoriteRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return "", false
		}
	}
	if req.WorkshopID == "" {
		badRequest(c, "workshopId is required")
		return "", false
	}
	return req.WorkshopID, true
}
