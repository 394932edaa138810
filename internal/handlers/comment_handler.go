package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pawhub/backend/internal/models"
	"github.com/pawhub/backend/internal/notify"
	"github.com/pawhub/backend/internal/registry"
	"github.com/pawhub/backend/internal/repositories"
	"gorm.io/gorm"
)

// CommentHandler handles HTTP requests related to comments. The comment row,
// the organization rating recomputation and the resulting notification all
// commit in one transaction; live pushes go out only after commit.
type CommentHandler struct {
	db       *gorm.DB
	registry *registry.Registry
	fanout   *notify.Fanout
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(db *gorm.DB, reg *registry.Registry, fanout *notify.Fanout) *CommentHandler {
	return &CommentHandler{db: db, registry: reg, fanout: fanout}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/comments", h.CreateComment)
	g.GET("/comments", h.ListComments)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment creates a comment on any registered entity kind
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	kind, err := resolveKind(h.registry, "content_type", req.ContentType)
	if err != nil {
		return apiError(err)
	}

	comment := &models.Comment{
		UserID:        &userID,
		ContentTypeID: kind.ID,
		ObjectID:      req.ObjectID,
		Body:          req.Body,
		Rating:        req.Rating,
	}

	var pending []notify.Pending
	err = h.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewPostgresCommentRepository(tx)
		if err := repo.CreateComment(comment); err != nil {
			return err
		}
		pending = h.fanout.CommentCreated(tx, comment)
		return nil
	})
	if err != nil {
		return apiError(err)
	}
	h.fanout.Flush(pending)

	return c.JSON(http.StatusCreated, comment)
}

// ListComments lists the comments attached to one target, newest first
func (h *CommentHandler) ListComments(c echo.Context) error {
	kind, err := resolveKind(h.registry, "content_type", c.QueryParam("content_type"))
	if err != nil {
		return apiError(err)
	}
	objectID, err := strconv.ParseUint(c.QueryParam("object_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid object_id")
	}
	limit, offset := parsePagination(c)

	repo := repositories.NewPostgresCommentRepository(h.db)
	comments, err := repo.ListByTarget(kind.ID, uint(objectID), limit, offset)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, comments)
}

// UpdateComment updates a comment's body or rating; only its author may do so
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	repo := repositories.NewPostgresCommentRepository(h.db)
	comment, err := repo.GetCommentByID(id)
	if err != nil {
		return apiError(err)
	}
	if comment.UserID == nil || *comment.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You do not own this comment")
	}

	if req.Body != "" {
		comment.Body = req.Body
	}
	if req.Rating != nil {
		comment.Rating = req.Rating
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		return repositories.NewPostgresCommentRepository(tx).UpdateComment(comment)
	})
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, comment)
}

// DeleteComment deletes a comment; only its author may do so. Deleting a
// rating-bearing organization comment recomputes the aggregate rating.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	repo := repositories.NewPostgresCommentRepository(h.db)
	comment, err := repo.GetCommentByID(id)
	if err != nil {
		return apiError(err)
	}
	if comment.UserID == nil || *comment.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You do not own this comment")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		return repositories.NewPostgresCommentRepository(tx).DeleteComment(id)
	})
	if err != nil {
		return apiError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
