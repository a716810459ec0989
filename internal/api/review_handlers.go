package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookreview/bookreview-server/internal/api/dto"
	"github.com/bookreview/bookreview-server/internal/domain"
	"github.com/bookreview/bookreview-server/internal/service"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createReview",
		Method:        http.MethodPost,
		Path:          "/api/reviews",
		Summary:       "Create review",
		Description:   "Reviews a book. Each user may review a book once",
		Tags:          []string{"Reviews"},
		DefaultStatus: http.StatusCreated,
		Security:      protected,
	}, s.handleCreateReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateReview",
		Method:      http.MethodPut,
		Path:        "/api/reviews/{id}",
		Summary:     "Update review",
		Description: "Partially updates the caller's review. New text is re-classified",
		Tags:        []string{"Reviews"},
		Security:    protected,
	}, s.handleUpdateReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteReview",
		Method:      http.MethodDelete,
		Path:        "/api/reviews/{id}",
		Summary:     "Delete review",
		Description: "Deletes the caller's review",
		Tags:        []string{"Reviews"},
		Security:    protected,
	}, s.handleDeleteReview)
}

// ReviewRequest is the request body for creating a review.
type ReviewRequest struct {
	BookID     string `json:"book_id" minLength:"1" doc:"Book being reviewed"`
	Rating     int    `json:"rating" minimum:"1" maximum:"5" doc:"Star rating, 1 to 5"`
	ReviewText string `json:"review_text" maxLength:"10000" doc:"Review body"`
}

// CreateReviewInput wraps the create request for huma.
type CreateReviewInput struct {
	Body ReviewRequest
}

// ReviewUpdateRequest is the request body for updating a review.
type ReviewUpdateRequest struct {
	Rating     *int    `json:"rating,omitempty" minimum:"1" maximum:"5" doc:"Star rating, 1 to 5"`
	ReviewText *string `json:"review_text,omitempty" maxLength:"10000" doc:"Review body"`
}

// UpdateReviewInput wraps the update request for huma.
type UpdateReviewInput struct {
	dto.IDParam
	Body ReviewUpdateRequest
}

// ReviewOutput wraps a review for huma.
type ReviewOutput struct {
	Body *domain.Review
}

func (s *Server) handleCreateReview(ctx context.Context, input *CreateReviewInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.CreateReview(ctx, userID, service.CreateReviewRequest{
		BookID:     input.Body.BookID,
		Rating:     input.Body.Rating,
		ReviewText: input.Body.ReviewText,
	})
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: review}, nil
}

func (s *Server) handleUpdateReview(ctx context.Context, input *UpdateReviewInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.UpdateReview(ctx, userID, input.ID, service.UpdateReviewRequest{
		Rating:     input.Body.Rating,
		ReviewText: input.Body.ReviewText,
	})
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: review}, nil
}

func (s *Server) handleDeleteReview(ctx context.Context, input *dto.IDParam) (*dto.MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.services.Review.DeleteReview(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &dto.MessageOutput{Body: dto.MessageResponse{Message: resp.Message}}, nil
}
