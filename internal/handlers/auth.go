package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"workshops/internal/service"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken string   `json:"accessToken"`
	TokenType   string   `json:"tokenType"`
	ExpiresIn   int64    `json:"expiresIn"`
	Subject     string   `json:"sub"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
}

// Login accepts administrator and user credentials.
func (h HandlerSet) Login(c *gin.Context) {
	h.login(c, h.svc.Auth.Login)
}

// UserLogin only accepts approved users.
func (h HandlerSet) UserLogin(c *gin.Context) {
	h.login(c, h.svc.Auth.LoginUser)
}

func (h HandlerSet) login(c *gin.Context, login func(ctx context.Context, email, password string) (service.LoginResult, error)) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		AccessToken: result.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.cfg.Security.JWTTTL.Seconds()),
		Subject:     result.Subject,
		Email:       result.Email,
		Roles:       result.Roles,
	})
}

type registerUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	School    string `json:"school"`
	Phone     string `json:"phone"`
}

func (h HandlerSet) RegisterRequest(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := h.svc.Accounts.RegisterRequest(c.Request.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		School:    req.School,
		Phone:     req.Phone,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": toUser(user)})
}

type registerAdminRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (h HandlerSet) RegisterAdmin(c *gin.Context) {
	var req registerAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	admin, err := h.svc.Accounts.Register(c.Request.Context(), service.AdminInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"admin": gin.H{
		"id":        admin.ID,
		"email":     admin.Email,
		"firstName": admin.FirstName,
		"lastName":  admin.LastName,
		"role":      admin.Role,
		"status":    admin.Status,
	}})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h HandlerSet) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.svc.Accounts.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type resetPasswordRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Code     string `json:"code" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.svc.Accounts.ResetPassword(c.Request.Context(), req.Email, req.Code, req.Password); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
