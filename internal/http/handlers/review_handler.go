package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xevon/studio-backend/internal/domain"
	"github.com/xevon/studio-backend/internal/http/middleware"
	"github.com/xevon/studio-backend/internal/services"
	"github.com/xevon/studio-backend/internal/utils"
)

const (
	defaultReviewLimit = 50
	maxReviewLimit     = 200
)

// PostReviewRequest is a rating submitted from the reviews page.
type PostReviewRequest struct {
	ID      string `json:"id"`
	Name    string `json:"name"    example:"Sam"`
	Rating  int    `json:"rating"  binding:"required" example:"5"`
	Comment string `json:"comment" example:"Fast and friendly."`
}

// ReviewsResponse wraps reviews, newest first.
type ReviewsResponse struct {
	Reviews []domain.Review `json:"reviews"`
}

// ListReviews godoc
// @ID          listReviews
// @Summary     List reviews
// @Tags        Reviews
// @Produce     json
// @Param       limit  query  int  false  "Max reviews"  minimum(1) maximum(200) default(50)
// @Success     200  {object} handlers.ReviewsResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /reviews [get]
func (h *Handlers) ListReviews(c *gin.Context) {
	limit := utils.ClampInt(utils.AtoiDefault(c.Query("limit"), defaultReviewLimit), 1, maxReviewLimit)
	items, err := h.reviews.List(c.Request.Context(), limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ReviewsResponse{Reviews: items})
}

// PostReview godoc
// @ID          postReview
// @Summary     Post a review
// @Description Stores a 1 to 5 star review. The name defaults to "Anonymous Visitor"; the visitor header is optional.
// @Tags        Reviews
// @Accept      json
// @Produce     json
//
// @Param       X-Visitor-ID     header  string  false "Visitor ID"
// @Param       Idempotency-Key  header  string  false "Replay-safe key"
// @Param       body             body    handlers.PostReviewRequest  true  "Review"
//
// @Success     201  {object} domain.Review
// @Success     200  {object} domain.Review "Replayed"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Router      /reviews [post]
func (h *Handlers) PostReview(c *gin.Context) {
	visitorID := middleware.VisitorFrom(c)
	if h.replay(c, visitorID, services.ScopeReviews, h.loadReview) {
		return
	}
	var req PostReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, services.ErrInvalidRating.Error())
		return
	}
	r, err := h.reviews.Post(c.Request.Context(), visitorID, services.ReviewInput{
		ID:      strings.TrimSpace(req.ID),
		Name:    req.Name,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		failService(c, err)
		return
	}
	h.remember(c, visitorID, services.ScopeReviews, r.ID)
	ok(c, http.StatusCreated, r)
}

func (h *Handlers) loadReview(ctx context.Context, id string) (any, error) {
	return h.reviews.Get(ctx, id)
}
