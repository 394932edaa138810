package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pawhub/backend/internal/models"
	"github.com/pawhub/backend/internal/notify"
	"github.com/pawhub/backend/internal/repositories"
	"gorm.io/gorm"
)

// PostHandler handles HTTP requests related to posts. Creating a post fans
// out to the followers of its parent animal or organization.
type PostHandler struct {
	db       *gorm.DB
	postRepo repositories.PostRepository
	fanout   *notify.Fanout
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(db *gorm.DB, postRepo repositories.PostRepository, fanout *notify.Fanout) *PostHandler {
	return &PostHandler{db: db, postRepo: postRepo, fanout: fanout}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.ListPosts)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost creates a new post and notifies the parent's followers whose
// posts preference is on, excluding the author.
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post := &models.Post{
		Content:        req.Content,
		AuthorID:       userID,
		AnimalID:       req.AnimalID,
		OrganizationID: req.OrganizationID,
	}

	var pending []notify.Pending
	err := h.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewPostgresPostRepository(tx)
		if err := repo.CreatePost(post); err != nil {
			return err
		}
		pending = h.fanout.PostCreated(tx, post)
		return nil
	})
	if err != nil {
		if err == repositories.ErrPostParentRequired {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return apiError(err)
	}
	h.fanout.Flush(pending)

	return c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	post, err := h.postRepo.GetPostByID(id)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// ListPosts lists posts for an animal or organization given as a query param
func (h *PostHandler) ListPosts(c echo.Context) error {
	limit, offset := parsePagination(c)

	if v := c.QueryParam("animal_id"); v != "" {
		animalID, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid animal_id")
		}
		posts, err := h.postRepo.ListPostsByAnimal(uint(animalID), limit, offset)
		if err != nil {
			return apiError(err)
		}
		return c.JSON(http.StatusOK, posts)
	}

	if v := c.QueryParam("organization_id"); v != "" {
		orgID, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid organization_id")
		}
		posts, err := h.postRepo.ListPostsByOrganization(uint(orgID), limit, offset)
		if err != nil {
			return apiError(err)
		}
		return c.JSON(http.StatusOK, posts)
	}

	return echo.NewHTTPError(http.StatusBadRequest, "animal_id or organization_id query parameter required")
}

// UpdatePost updates a post's content; only its author may do so
func (h *PostHandler) UpdatePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post, err := h.postRepo.GetPostByID(id)
	if err != nil {
		return apiError(err)
	}
	if post.AuthorID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You do not own this post")
	}

	if req.Content != "" {
		post.Content = req.Content
	}

	if err := h.postRepo.UpdatePost(post); err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post; only its author may do so
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	post, err := h.postRepo.GetPostByID(id)
	if err != nil {
		return apiError(err)
	}
	if post.AuthorID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You do not own this post")
	}

	if err := h.postRepo.DeletePost(id); err != nil {
		return apiError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
