package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pawhub/backend/internal/models"
	"github.com/pawhub/backend/internal/repositories"
)

// ArticleHandler handles HTTP requests related to articles
type ArticleHandler struct {
	articleRepository repositories.ArticleRepository
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(articleRepo repositories.ArticleRepository) *ArticleHandler {
	return &ArticleHandler{articleRepository: articleRepo}
}

// RegisterArticleRoutes registers article-related routes
func (h *ArticleHandler) RegisterArticleRoutes(g *echo.Group) {
	g.POST("/articles", h.CreateArticle)
	g.GET("/articles", h.ListArticles)
	g.GET("/articles/:id", h.GetArticle)
	g.DELETE("/articles/:id", h.DeleteArticle)
}

func (h *ArticleHandler) CreateArticle(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req models.CreateArticleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	article := &models.Article{
		Title:    req.Title,
		Body:     req.Body,
		AuthorID: userID,
	}

	if err := h.articleRepository.CreateArticle(article); err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusCreated, article)
}

func (h *ArticleHandler) GetArticle(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	article, err := h.articleRepository.GetArticleByID(id)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, article)
}

func (h *ArticleHandler) ListArticles(c echo.Context) error {
	limit, offset := parsePagination(c)
	articles, err := h.articleRepository.ListArticles(limit, offset)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, articles)
}

func (h *ArticleHandler) DeleteArticle(c echo.Context) error {
	userID := getUserIDFromContext(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	article, err := h.articleRepository.GetArticleByID(id)
	if err != nil {
		return apiError(err)
	}
	if article.AuthorID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You do not own this article")
	}

	if err := h.articleRepository.DeleteArticle(id); err != nil {
		return apiError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
