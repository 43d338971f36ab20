package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workshops/internal/middleware"
	"workshops/internal/models"
	"workshops/internal/service"
)

func (h HandlerSet) ListPending(c *gin.Context) {
	users, err := h.svc.Accounts.ListPending(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": toUsers(users)})
}

func (h HandlerSet) ListApproved(c *gin.Context) {
	users, err := h.svc.Accounts.ListApproved(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": toUsers(users)})
}

func (h HandlerSet) Approve(c *gin.Context) {
	h.updateStatus(c, models.UserStatusApproved)
}

func (h HandlerSet) Deny(c *gin.Context) {
	h.updateStatus(c, models.UserStatusDenied)
}

func (h HandlerSet) updateStatus(c *gin.Context, status models.UserStatus) {
	user, err := h.svc.Accounts.UpdateStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUser(user)})
}

// Me answers from the token for administrators and from the users table otherwise.
func (h HandlerSet) Me(c *gin.Context) {
	claims, _ := middleware.Claims(c)
	if claims.HasRole(string(models.RoleAdmin)) {
		c.JSON(http.StatusOK, gin.H{"user": gin.H{
			"id":    claims.Subject,
			"email": claims.Email,
			"role":  models.RoleAdmin,
			"roles": claims.Roles,
		}})
		return
	}

	user, err := h.svc.Accounts.GetUser(c.Request.Context(), claims.Subject)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUser(user)})
}

func (h HandlerSet) UpdateAvatar(c *gin.Context) {
	claims, _ := middleware.Claims(c)
	header, err := c.FormFile("avatar")
	if err != nil {
		badRequest(c, "avatar file is required")
		return
	}

	user, err := h.svc.Accounts.UpdateAvatar(c.Request.Context(), claims.Subject, service.FromMultipart(header))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUser(user)})
}

func (h HandlerSet) DeleteMe(c *gin.Context) {
	claims, _ := middleware.Claims(c)
	if !claims.HasRole(string(models.RoleUser)) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "only user accounts can be deleted this way"})
		return
	}
	if err := h.svc.Accounts.DeleteUserByEmail(c.Request.Context(), claims.Email); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) DeleteUser(c *gin.Context) {
	if err := h.svc.Accounts.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
