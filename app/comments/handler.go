package comments

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trucksigns/truck-signs-api/app/api"
	"github.com/trucksigns/truck-signs-api/models"
)

type CommentsProvider interface {
	ListVisible(ctx context.Context) ([]models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
}

type CommentsHandler struct {
	repo     CommentsProvider
	validate *validator.Validate
}

func NewCommentsHandler(r CommentsProvider) *CommentsHandler {
	return &CommentsHandler{
		repo:     r,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

type commentInput struct {
	UserEmail string `json:"user_email" validate:"required,email,max=254"`
	Text      string `json:"text" validate:"required,max=2000"`
}

func (h *CommentsHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	comments, err := h.repo.ListVisible(r.Context())
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	response := make([]api.Comment, len(comments))
	for i, c := range comments {
		response[i] = api.NewComment(c)
	}
	api.OKResponse(w, http.StatusOK, response)
}

// HandleCreate stores a visible comment. Visibility is moderated by staff, so
// a visible field in the body is ignored.
func (h *CommentsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input commentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "validation_error", "Invalid JSON body")
		return
	}

	input.UserEmail = strings.ToLower(strings.TrimSpace(input.UserEmail))
	input.Text = strings.TrimSpace(input.Text)
	if err := h.validate.Struct(input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "validation_error", "A valid user_email and a text are required")
		return
	}

	comment := &models.Comment{
		UserEmail: input.UserEmail,
		Text:      input.Text,
		Visible:   true,
	}

	if err := h.repo.Create(r.Context(), comment); err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.OKResponse(w, http.StatusCreated, api.NewComment(*comment))
}
