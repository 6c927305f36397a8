package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// VisitorNameRequest sets the caller's display name.
type VisitorNameRequest struct {
	Name string `json:"name" binding:"required" example:"Dana"`
}

// VisitorResponse is the caller's identity as the server knows it.
type VisitorResponse struct {
	VisitorID string `json:"visitor_id"`
	Name      string `json:"name"`
}

// SetVisitorName godoc
// @ID          setVisitorName
// @Summary     Set the caller's name
// @Tags        Visitors
// @Accept      json
// @Produce     json
// @Param       X-Visitor-ID  header  string  true  "Visitor ID"
// @Param       body          body    handlers.VisitorNameRequest  true  "Name"
// @Success     200  {object} handlers.VisitorResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Router      /visitors/me [put]
func (h *Handlers) SetVisitorName(c *gin.Context) {
	visitorID, okID := requireVisitor(c)
	if !okID {
		return
	}
	var req VisitorNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, "name is required")
		return
	}
	v, err := h.visitors.Upsert(c.Request.Context(), visitorID, req.Name)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, VisitorResponse{VisitorID: v.VisitorID, Name: v.Name})
}

// GetVisitor godoc
// @ID          getVisitor
// @Summary     The caller's stored name
// @Tags        Visitors
// @Produce     json
// @Param       X-Visitor-ID  header  string  true  "Visitor ID"
// @Success     200  {object} handlers.VisitorResponse
// @Failure     404  {object} handlers.ErrorResponse "No name stored"
// @Router      /visitors/me [get]
func (h *Handlers) GetVisitor(c *gin.Context) {
	visitorID, okID := requireVisitor(c)
	if !okID {
		return
	}
	name, err := h.visitors.Name(c.Request.Context(), visitorID)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, VisitorResponse{VisitorID: visitorID, Name: name})
}
