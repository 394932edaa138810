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
	"github.com/pawhub/backend/internal/validation"
	"gorm.io/gorm"
)

// FollowHandler handles HTTP requests related to follows
type FollowHandler struct {
	db       *gorm.DB
	registry *registry.Registry
	fanout   *notify.Fanout
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(db *gorm.DB, reg *registry.Registry, fanout *notify.Fanout) *FollowHandler {
	return &FollowHandler{db: db, registry: reg, fanout: fanout}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/follows", h.CreateFollow)
	g.GET("/follows", h.ListOwnFollows)
	g.PUT("/follows/:id", h.UpdateFollow)
	g.DELETE("/follows/unfollow", h.Unfollow)
	g.GET("/follows/is-following", h.IsFollowing)
	g.GET("/follows/followers-count", h.FollowersCount)
}

// followableFromQuery resolves target_type/target_id query parameters and
// enforces the followable kind restriction.
func (h *FollowHandler) followableFromQuery(c echo.Context) (registry.Kind, uint, error) {
	kind, err := resolveKind(h.registry, "target_type", c.QueryParam("target_type"))
	if err != nil {
		return registry.Kind{}, 0, apiError(err)
	}
	if !registry.Followable(kind) {
		return registry.Kind{}, 0, echo.NewHTTPError(http.StatusBadRequest,
			"'target_type' must be users.organization or animals.animal.")
	}
	targetID, err := strconv.ParseUint(c.QueryParam("target_id"), 10, 32)
	if err != nil {
		return registry.Kind{}, 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid target_id")
	}
	return kind, uint(targetID), nil
}

// CreateFollow subscribes the user to a followable target. The target's
// owner is notified unless they are the actor.
func (h *FollowHandler) CreateFollow(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req models.CreateFollowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	kind, err := resolveKind(h.registry, "target_type", req.TargetType)
	if err != nil {
		return apiError(err)
	}
	if !registry.Followable(kind) {
		verrs := make(validation.Errors)
		verrs.Add("target_type", validation.CodeUnsupportedTargetKind,
			"'target_type' must be users.organization or animals.animal.")
		return apiError(verrs)
	}

	preferences, verrs := repositories.PreferencesFromMap(req.NotificationPreferences)
	if verrs != nil {
		return apiError(verrs)
	}

	follow := &models.Follow{
		UserID:                  userID,
		TargetTypeID:            kind.ID,
		TargetID:                req.TargetID,
		NotificationPreferences: preferences,
	}

	var pending []notify.Pending
	err = h.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewPostgresFollowRepository(tx)
		if err := repo.CreateFollow(follow); err != nil {
			return err
		}
		pending = h.fanout.FollowCreated(tx, follow)
		return nil
	})
	if err != nil {
		return apiError(err)
	}
	h.fanout.Flush(pending)

	return c.JSON(http.StatusCreated, follow)
}

// ListOwnFollows lists the authenticated user's follows
func (h *FollowHandler) ListOwnFollows(c echo.Context) error {
	userID := getUserIDFromContext(c)

	repo := repositories.NewPostgresFollowRepository(h.db)
	follows, err := repo.ListByUser(userID)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, follows)
}

// UpdateFollow replaces the follow's notification preferences; only its
// owner may do so
func (h *FollowHandler) UpdateFollow(c echo.Context) error {
	userID := getUserIDFromContext(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateFollowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	repo := repositories.NewPostgresFollowRepository(h.db)
	follow, err := repo.GetFollowByID(id)
	if err != nil {
		return apiError(err)
	}
	if follow.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You do not own this follow")
	}

	preferences, verrs := repositories.PreferencesFromMap(req.NotificationPreferences)
	if verrs != nil {
		return apiError(verrs)
	}
	follow.NotificationPreferences = preferences

	if err := repo.UpdateFollow(follow); err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, follow)
}

// Unfollow removes the user's follow for the target. Always answers 204,
// whether or not a row existed.
func (h *FollowHandler) Unfollow(c echo.Context) error {
	userID := getUserIDFromContext(c)

	kind, targetID, err := h.followableFromQuery(c)
	if err != nil {
		return err
	}

	repo := repositories.NewPostgresFollowRepository(h.db)
	if _, err := repo.DeleteFollow(userID, kind.ID, targetID); err != nil {
		return apiError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// IsFollowing answers {"follow_id": <id>} with 0 when the user does not
// follow the target
func (h *FollowHandler) IsFollowing(c echo.Context) error {
	userID := getUserIDFromContext(c)

	kind, targetID, err := h.followableFromQuery(c)
	if err != nil {
		return err
	}

	repo := repositories.NewPostgresFollowRepository(h.db)
	id, err := repo.IsFollowing(userID, kind.ID, targetID)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"follow_id": id})
}

// FollowersCount returns the number of followers of a followable target
func (h *FollowHandler) FollowersCount(c echo.Context) error {
	kind, targetID, err := h.followableFromQuery(c)
	if err != nil {
		return err
	}

	repo := repositories.NewPostgresFollowRepository(h.db)
	count, err := repo.FollowersCount(kind.ID, targetID)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"followers_count": count})
}
