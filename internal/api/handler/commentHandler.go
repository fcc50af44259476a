package handler

import (
	"net/http"
	"strconv"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/middleware"
	"reviewhub/internal/api/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// RegisterRoutes mounts comments under
// /titles/:title_id/reviews/:review_id/comments with the same gate layering
// as reviews.
func (h *CommentHandler) RegisterRoutes(rg *gin.RouterGroup, authRequired gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/:comment_id", h.Get)
	rg.POST("", authRequired, h.Create)
	rg.PATCH("/:comment_id", authRequired, h.Update)
	rg.DELETE("/:comment_id", authRequired, h.Delete)
}

func commentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("comment_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
		return 0, false
	}
	return id, true
}

func (h *CommentHandler) List(c *gin.Context) {
	tid, ok := titleID(c)
	if !ok {
		return
	}
	rid, ok := reviewID(c)
	if !ok {
		return
	}
	page, pageSize := parsePagination(c)

	comments, total, err := h.commentService.ListByReview(tid, rid, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       comments,
		"pagination": dto.NewPagination(total, page, pageSize),
	})
}

func (h *CommentHandler) Get(c *gin.Context) {
	tid, ok := titleID(c)
	if !ok {
		return
	}
	rid, ok := reviewID(c)
	if !ok {
		return
	}
	cid, ok := commentID(c)
	if !ok {
		return
	}

	comment, err := h.commentService.Get(tid, rid, cid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Create(c *gin.Context) {
	tid, ok := titleID(c)
	if !ok {
		return
	}
	rid, ok := reviewID(c)
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.commentService.Create(middleware.CurrentUser(c), tid, rid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) Update(c *gin.Context) {
	tid, ok := titleID(c)
	if !ok {
		return
	}
	rid, ok := reviewID(c)
	if !ok {
		return
	}
	cid, ok := commentID(c)
	if !ok {
		return
	}

	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.commentService.Update(middleware.CurrentUser(c), tid, rid, cid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	tid, ok := titleID(c)
	if !ok {
		return
	}
	rid, ok := reviewID(c)
	if !ok {
		return
	}
	cid, ok := commentID(c)
	if !ok {
		return
	}

	if err := h.commentService.Delete(middleware.CurrentUser(c), tid, rid, cid); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
