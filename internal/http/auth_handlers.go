package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"formdraft/internal/domain"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{UID: u.UID, Name: u.Name, Email: u.Email}
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, domain.ErrMissingFields, "")
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.writeError(c, err, "Server error")
		return
	}
	if !h.startSession(c, user) {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    userToResponse(user),
	})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, domain.ErrMissingFields, "")
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err, "Server error")
		return
	}

	submitted, err := h.drafts.Status(c.Request.Context(), user.UID)
	if err != nil {
		h.writeError(c, err, "Server error")
		return
	}
	if !h.startSession(c, user) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Login successful",
		"user":        userToResponse(user),
		"isSubmitted": submitted,
	})
}

func (h *Handler) verify(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"loggedIn": true,
		"user":     userToResponse(principal(c)),
	})
}

func (h *Handler) logout(c *gin.Context) {
	http.SetCookie(c.Writer, h.tokens.ClearCookie())
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *Handler) startSession(c *gin.Context, user *domain.User) bool {
	sess, err := h.tokens.Issue(user.UID)
	if err != nil {
		h.writeError(c, err, "Server error")
		return false
	}
	http.SetCookie(c.Writer, h.tokens.Cookie(sess))
	return true
}
