package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workshops/internal/middleware"
)

func (h HandlerSet) ListReviews(c *gin.Context) {
	reviews, err := h.svc.Reviews.FindByWorkshop(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toReviews(reviews))
}

func (h HandlerSet) MyReview(c *gin.Context) {
	claims, _ := middleware.Claims(c)
	review, err := h.svc.Reviews.FindByUserAndWorkshop(c.Request.Context(), claims.Subject, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toReview(review))
}

type reviewRequest struct {
	WorkshopID string `json:"workshopId" binding:"required"`
	Stars      int    `json:"stars"`
	Text       string `json:"text"`
}

func (h HandlerSet) SaveReview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	claims, _ := middleware.Claims(c)
	review, err := h.svc.Reviews.CreateOrUpdateReview(c.Request.Context(), claims.Subject, req.WorkshopID, req.Stars, req.Text)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toReview(review))
}

type respondRequest struct {
	AdminResponse string `json:"adminResponse" binding:"required"`
	UserEmail     string `json:"userEmail"`
	WorkshopTitle string `json:"workshopTitle"`
}

// RespondToReview fills in the reviewer address and workshop title when the client
// leaves them out.
func (h HandlerSet) RespondToReview(c *gin.Context) {
	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()
	reviewID := c.Param("id")

	if req.UserEmail == "" || req.WorkshopTitle == "" {
		review, err := h.svc.Reviews.Get(ctx, reviewID)
		if err != nil {
			fail(c, err)
			return
		}
		if req.UserEmail == "" {
			if user, err := h.svc.Accounts.GetUser(ctx, review.UserID); err == nil {
				req.UserEmail = user.Email
			}
		}
		if req.WorkshopTitle == "" {
			if w, err := h.svc.Workshops.GetWorkshop(ctx, review.WorkshopID); err == nil {
				req.WorkshopTitle = w.Name
			}
		}
	}

	review, err := h.svc.Reviews.RespondToReview(ctx, reviewID, req.UserEmail, req.WorkshopTitle, req.AdminResponse)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toReview(review))
}
