package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/waichatt/console/internal/blog"
	"github.com/waichatt/console/internal/models"
	"gorm.io/gorm"
)

// BlogHandler manages admin CRUD endpoints for blog posts.
type BlogHandler struct {
	db *gorm.DB // Database handle for blog records.
}

// NewBlogHandler constructs a blog handler.
func NewBlogHandler(db *gorm.DB) *BlogHandler {
	return &BlogHandler{db: db}
}

// createBlogRequest captures the payload for creating a post.
type createBlogRequest struct {
	Slug            string           `json:"slug"`            // URL slug.
	Title           string           `json:"title"`           // Post title.
	Subtitle        string           `json:"subtitle"`        // Post subtitle.
	Description     string           `json:"description"`     // Post summary.
	MainImage       string           `json:"main_image"`      // Cover image URL.
	Sections        []models.Section `json:"sections"`        // Ordered content sections.
	Status          string           `json:"status"`          // draft or published; defaults to draft.
	Recommendations []uint64         `json:"recommendations"` // Related post ids, capped at 3.
}

// Create validates input and inserts a post.
func (h *BlogHandler) Create(c *gin.Context) {
	var body createBlogRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	body.Slug = strings.TrimSpace(body.Slug)
	body.Title = strings.TrimSpace(body.Title)
	if body.Slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug is required"})
		return
	}
	if body.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	status := models.BlogStatus(strings.TrimSpace(body.Status))
	if status == "" {
		status = models.BlogStatusDraft
	}
	if !models.ValidBlogStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be draft or published"})
		return
	}

	sections := models.Sections{}
	for _, section := range body.Sections {
		sections = blog.AppendSection(sections, section)
	}

	now := time.Now().UTC()
	post := models.BlogPost{
		Slug:        body.Slug,
		Title:       body.Title,
		Subtitle:    strings.TrimSpace(body.Subtitle),
		Description: body.Description,
		MainImage:   strings.TrimSpace(body.MainImage),
		Sections:    sections,
		Status:      status,
		// The post id is unknown before insert, so self-references cannot
		// exist yet; normalize for duplicates and the cap only.
		Recommendations: blog.NormalizeRecommendations(body.Recommendations, 0),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if errCreate := h.db.WithContext(c.Request.Context()).Create(&post).Error; errCreate != nil {
		if isDuplicateKey(errCreate) {
			c.JSON(http.StatusConflict, gin.H{"error": "slug already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create blog failed"})
		return
	}
	c.JSON(http.StatusCreated, h.formatBlog(&post))
}

// List returns posts filtered by query parameters.
func (h *BlogHandler) List(c *gin.Context) {
	statusQ := strings.TrimSpace(c.Query("status"))

	q := h.db.WithContext(c.Request.Context()).Model(&models.BlogPost{})
	if statusQ != "" {
		status := models.BlogStatus(statusQ)
		if !models.ValidBlogStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be draft or published"})
			return
		}
		q = q.Where("status = ?", status)
	}

	var rows []models.BlogPost
	if errFind := q.Order("created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list blogs failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, h.formatBlogSummary(&row))
	}
	c.JSON(http.StatusOK, gin.H{"blogs": out})
}

// Get returns a post by ID with its full section structure.
func (h *BlogHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var post models.BlogPost
	if errFind := h.db.WithContext(c.Request.Context()).First(&post, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, h.formatBlog(&post))
}

// updateBlogRequest captures optional fields for post updates. A submitted
// sections or recommendations list replaces the stored one wholesale.
type updateBlogRequest struct {
	Slug            *string           `json:"slug"`            // Optional URL slug.
	Title           *string           `json:"title"`           // Optional post title.
	Subtitle        *string           `json:"subtitle"`        // Optional subtitle.
	Description     *string           `json:"description"`     // Optional summary.
	MainImage       *string           `json:"main_image"`      // Optional cover image URL.
	Sections        *[]models.Section `json:"sections"`        // Optional full section list.
	Status          *string           `json:"status"`          // Optional publication state.
	Recommendations *[]uint64         `json:"recommendations"` // Optional related post ids.
}

// Update validates and applies post field updates.
func (h *BlogHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updateBlogRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	var existing models.BlogPost
	if errFind := h.db.WithContext(c.Request.Context()).First(&existing, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	updates := map[string]any{
		"updated_at": time.Now().UTC(),
	}

	if body.Slug != nil {
		slug := strings.TrimSpace(*body.Slug)
		if slug == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "slug cannot be empty"})
			return
		}
		updates["slug"] = slug
	}
	if body.Title != nil {
		title := strings.TrimSpace(*body.Title)
		if title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title cannot be empty"})
			return
		}
		updates["title"] = title
	}
	if body.Subtitle != nil {
		updates["subtitle"] = strings.TrimSpace(*body.Subtitle)
	}
	if body.Description != nil {
		updates["description"] = *body.Description
	}
	if body.MainImage != nil {
		updates["main_image"] = strings.TrimSpace(*body.MainImage)
	}
	if body.Sections != nil {
		sections := models.Sections{}
		for _, section := range *body.Sections {
			sections = blog.AppendSection(sections, section)
		}
		updates["sections"] = sections
	}
	if body.Status != nil {
		status := models.BlogStatus(strings.TrimSpace(*body.Status))
		if !models.ValidBlogStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be draft or published"})
			return
		}
		updates["status"] = status
	}
	if body.Recommendations != nil {
		for _, recID := range *body.Recommendations {
			if recID == id {
				c.JSON(http.StatusBadRequest, gin.H{"error": "post cannot recommend itself"})
				return
			}
		}
		if len(*body.Recommendations) > blog.MaxRecommendations {
			c.JSON(http.StatusBadRequest, gin.H{"error": "at most 3 recommendations"})
			return
		}
		updates["recommendations"] = blog.NormalizeRecommendations(*body.Recommendations, id)
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.BlogPost{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		if isDuplicateKey(res.Error) {
			c.JSON(http.StatusConflict, gin.H{"error": "slug already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes a post by ID. Other posts may keep recommending the
// deleted id; the list endpoint simply no longer resolves it.
func (h *BlogHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.BlogPost{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Recommendable returns the published posts that the given post may
// recommend: everything published except itself.
func (h *BlogHandler) Recommendable(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var rows []models.BlogPost
	errFind := h.db.WithContext(c.Request.Context()).
		Where("id <> ?", id).
		Where("status = ?", models.BlogStatusPublished).
		Order("created_at DESC").
		Find(&rows).Error
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list blogs failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":    row.ID,
			"slug":  row.Slug,
			"title": row.Title,
		})
	}
	c.JSON(http.StatusOK, gin.H{"blogs": out})
}

// formatBlog converts a post model into a full response payload.
func (h *BlogHandler) formatBlog(post *models.BlogPost) gin.H {
	return gin.H{
		"id":              post.ID,
		"slug":            post.Slug,
		"title":           post.Title,
		"subtitle":        post.Subtitle,
		"description":     post.Description,
		"main_image":      post.MainImage,
		"sections":        post.Sections,
		"status":          post.Status,
		"recommendations": post.Recommendations,
		"created_at":      post.CreatedAt,
		"updated_at":      post.UpdatedAt,
	}
}

// formatBlogSummary converts a post model into a list-row payload without
// the section document.
func (h *BlogHandler) formatBlogSummary(post *models.BlogPost) gin.H {
	return gin.H{
		"id":         post.ID,
		"slug":       post.Slug,
		"title":      post.Title,
		"subtitle":   post.Subtitle,
		"main_image": post.MainImage,
		"status":     post.Status,
		"created_at": post.CreatedAt,
		"updated_at": post.UpdatedAt,
	}
}
