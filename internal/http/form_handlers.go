package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"formdraft/internal/domain"
	"formdraft/internal/service"
)

type DraftResponse struct {
	UserID      string                  `json:"userId"`
	Steps       map[int]json.RawMessage `json:"steps"`
	ProfilePic  string                  `json:"profilePic"`
	IsSubmitted bool                    `json:"isSubmitted"`
	CreatedAt   string                  `json:"createdAt"`
	UpdatedAt   string                  `json:"updatedAt"`
}

type FormResponse struct {
	DraftResponse
	User UserResponse `json:"user"`
}

func draftToResponse(d *domain.Draft) DraftResponse {
	steps := d.Steps
	if steps == nil {
		steps = map[int]json.RawMessage{}
	}
	return DraftResponse{
		UserID:      d.UserID,
		Steps:       steps,
		ProfilePic:  d.ProfilePic,
		IsSubmitted: d.IsSubmitted,
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   d.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) getForm(c *gin.Context) {
	user := principal(c)
	draft, err := h.drafts.GetOrCreate(c.Request.Context(), user.UID)
	if err != nil {
		h.writeError(c, err, "Error fetching form data")
		return
	}
	c.JSON(http.StatusOK, FormResponse{
		DraftResponse: draftToResponse(draft),
		User:          userToResponse(user),
	})
}

func (h *Handler) saveStep(c *gin.Context) {
	step, err := service.ParseStep(c.Param("step"))
	if err != nil {
		h.writeError(c, err, "")
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unable to read request body"})
		return
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte(`{}`)
	}
	if body[0] != '{' || !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Step payload must be a JSON object"})
		return
	}

	draft, err := h.drafts.SaveStep(c.Request.Context(), principal(c).UID, step, body)
	if err != nil {
		h.writeError(c, err, "Error updating form step")
		return
	}
	c.JSON(http.StatusOK, draftToResponse(draft))
}

func (h *Handler) uploadProfile(c *gin.Context) {
	file, err := c.FormFile("profilePic")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "File too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
		return
	}

	src, err := file.Open()
	if err != nil {
		h.writeError(c, err, "Upload failed")
		return
	}
	defer src.Close()

	ref, err := h.profiles.Upload(c.Request.Context(), principal(c).UID, service.ProfileImage{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Body:        src,
	})
	if err != nil {
		h.writeError(c, err, "Upload failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Profile picture uploaded successfully",
		"imagePath": ref,
	})
}

func (h *Handler) submit(c *gin.Context) {
	draft, err := h.drafts.Submit(c.Request.Context(), principal(c).UID)
	if err != nil {
		h.writeError(c, err, "Error submitting form")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Form submitted successfully",
		"form":    draftToResponse(draft),
	})
}

func (h *Handler) status(c *gin.Context) {
	submitted, err := h.drafts.Status(c.Request.Context(), principal(c).UID)
	if err != nil {
		h.writeError(c, err, "Error fetching status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"isSubmitted": submitted})
}
