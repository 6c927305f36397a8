package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetContent godoc
// @ID          getContent
// @Summary     Read site content
// @Description Returns a section of the site document as raw JSON; "all" returns the whole document.
// @Tags        Content
// @Produce     json
// @Param       section  path  string  true  "Section"  example(all)
// @Success     200  {object} object
// @Failure     404  {object} handlers.ErrorResponse "Unknown section"
// @Router      /content/{section} [get]
func (h *Handlers) GetContent(c *gin.Context) {
	raw, err := h.content.Get(c.Request.Context(), c.Param("section"))
	if err != nil {
		failService(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// SaveContent godoc
// @ID          saveContent
// @Summary     Replace a content section
// @Description Body must be a JSON object. Saving "all" replaces the whole document.
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       section  path  string  true  "Section"
// @Param       body     body  object  true  "Section value"
// @Success     200  {object} object
// @Failure     400  {object} handlers.ErrorResponse "Not a JSON object"
// @Failure     403  {object} handlers.ErrorResponse "Server-managed section"
// @Failure     404  {object} handlers.ErrorResponse "Unknown section"
// @Router      /admin/content/{section} [put]
func (h *Handlers) SaveContent(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || !json.Valid(body) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	saved, err := h.content.Save(c.Request.Context(), c.Param("section"), body)
	if err != nil {
		failService(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", saved)
}

// ResetContent godoc
// @ID          resetContent
// @Summary     Restore the default site content
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object} object
// @Router      /admin/content [delete]
func (h *Handlers) ResetContent(c *gin.Context) {
	doc, err := h.content.Reset(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", doc)
}

// TrackVisit godoc
// @ID          trackVisit
// @Summary     Count a site visit
// @Tags        Stats
// @Produce     json
// @Success     200  {object} domain.SiteStats
// @Router      /stats/visits [post]
func (h *Handlers) TrackVisit(c *gin.Context) {
	st, err := h.stats.TrackVisit(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}

// GetStats godoc
// @ID          getStats
// @Summary     Visit counters
// @Tags        Stats
// @Produce     json
// @Success     200  {object} domain.SiteStats
// @Router      /stats [get]
func (h *Handlers) GetStats(c *gin.Context) {
	st, err := h.stats.Stats(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}
