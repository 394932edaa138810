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

// ReactionHandler handles HTTP requests related to reactions. LIKE mutations
// additionally refresh the live like counter and notify the target's owner.
type ReactionHandler struct {
	db       *gorm.DB
	registry *registry.Registry
	fanout   *notify.Fanout
}

// NewReactionHandler creates a new ReactionHandler
func NewReactionHandler(db *gorm.DB, reg *registry.Registry, fanout *notify.Fanout) *ReactionHandler {
	return &ReactionHandler{db: db, registry: reg, fanout: fanout}
}

// RegisterReactionRoutes registers reaction-related routes
func (h *ReactionHandler) RegisterReactionRoutes(g *echo.Group) {
	g.POST("/reactions", h.CreateReaction)
	g.PUT("/reactions/:id", h.UpdateReaction)
	g.DELETE("/reactions/remove-like", h.RemoveLike)
	g.GET("/reactions/has-reaction", h.HasReaction)
	g.GET("/reactions/count-likes", h.CountLikes)
}

// targetFromQuery resolves the reactable_type/reactable_id query parameters.
func (h *ReactionHandler) targetFromQuery(c echo.Context) (registry.Kind, uint, error) {
	kind, err := resolveKind(h.registry, "reactable_type", c.QueryParam("reactable_type"))
	if err != nil {
		return registry.Kind{}, 0, apiError(err)
	}
	objectID, err := strconv.ParseUint(c.QueryParam("reactable_id"), 10, 32)
	if err != nil {
		return registry.Kind{}, 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid reactable_id")
	}
	return kind, uint(objectID), nil
}

// CreateReaction records a typed reaction toward a target
func (h *ReactionHandler) CreateReaction(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req models.CreateReactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	kind, err := resolveKind(h.registry, "reactable_type", req.ReactableType)
	if err != nil {
		return apiError(err)
	}

	reactionType := req.ReactionType
	if reactionType == "" {
		reactionType = models.ReactionLike
	}

	reaction := &models.Reaction{
		UserID:          &userID,
		ReactionType:    reactionType,
		ReactableTypeID: kind.ID,
		ReactableID:     req.ReactableID,
	}

	var pending []notify.Pending
	err = h.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewPostgresReactionRepository(tx)
		if err := repo.CreateReaction(reaction); err != nil {
			return err
		}
		pending = h.fanout.ReactionSaved(tx, reaction, "")
		return nil
	})
	if err != nil {
		return apiError(err)
	}
	h.fanout.Flush(pending)

	return c.JSON(http.StatusCreated, reaction)
}

// UpdateReaction replaces the type of an existing reaction; only its author
// may do so. A LIKE entering or leaving the picture refreshes the live
// counter, and a new LIKE notifies the target's owner.
func (h *ReactionHandler) UpdateReaction(c echo.Context) error {
	userID := getUserIDFromContext(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateReactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	repo := repositories.NewPostgresReactionRepository(h.db)
	reaction, err := repo.GetReactionByID(id)
	if err != nil {
		return apiError(err)
	}
	if reaction.UserID == nil || *reaction.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You do not own this reaction")
	}

	previousType := reaction.ReactionType

	var pending []notify.Pending
	err = h.db.Transaction(func(tx *gorm.DB) error {
		txRepo := repositories.NewPostgresReactionRepository(tx)
		if err := txRepo.UpdateReactionType(reaction, req.ReactionType); err != nil {
			return err
		}
		if reaction.ReactionType != previousType {
			pending = h.fanout.ReactionSaved(tx, reaction, previousType)
		}
		return nil
	})
	if err != nil {
		return apiError(err)
	}
	h.fanout.Flush(pending)

	return c.JSON(http.StatusOK, reaction)
}

// RemoveLike removes the authenticated user's LIKE for the target. Always
// answers 204, whether or not a row existed.
func (h *ReactionHandler) RemoveLike(c echo.Context) error {
	userID := getUserIDFromContext(c)

	kind, objectID, err := h.targetFromQuery(c)
	if err != nil {
		return err
	}

	var pending []notify.Pending
	err = h.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewPostgresReactionRepository(tx)
		removed, err := repo.DeleteLike(userID, kind.ID, objectID)
		if err != nil {
			return err
		}
		if removed > 0 {
			unliked := &models.Reaction{
				UserID:          &userID,
				ReactionType:    models.ReactionLike,
				ReactableTypeID: kind.ID,
				ReactableID:     objectID,
			}
			pending = h.fanout.ReactionDeleted(tx, unliked)
		}
		return nil
	})
	if err != nil {
		return apiError(err)
	}
	h.fanout.Flush(pending)

	return c.NoContent(http.StatusNoContent)
}

// HasReaction reports whether the user has reacted with the given type,
// answering {"reaction_id": <id>} with 0 when they have not.
func (h *ReactionHandler) HasReaction(c echo.Context) error {
	userID := getUserIDFromContext(c)

	kind, objectID, err := h.targetFromQuery(c)
	if err != nil {
		return err
	}

	reactionType := c.QueryParam("reaction_type")
	if reactionType == "" {
		reactionType = models.ReactionLike
	}
	if !models.IsValidReactionType(reactionType) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid reaction_type")
	}

	repo := repositories.NewPostgresReactionRepository(h.db)
	id, err := repo.HasReaction(userID, reactionType, kind.ID, objectID)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reaction_id": id})
}

// CountLikes returns the current LIKE count for the target
func (h *ReactionHandler) CountLikes(c echo.Context) error {
	kind, objectID, err := h.targetFromQuery(c)
	if err != nil {
		return err
	}

	repo := repositories.NewPostgresReactionRepository(h.db)
	total, err := repo.CountLikes(kind.ID, objectID)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"total_likes": total})
}
