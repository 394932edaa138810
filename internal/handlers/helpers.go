package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pawhub/backend/internal/models"
	"github.com/pawhub/backend/internal/registry"
	"github.com/pawhub/backend/internal/validation"
	"gorm.io/gorm"
)

// getUserIDFromContext extracts the authenticated user's id from the JWT
// claims placed on the context by the auth middleware. Returns 0 when the
// request is unauthenticated.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return 0
	}
	return claims.UserID
}

// parseIDParam parses a numeric path parameter.
func parseIDParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid %s", name))
	}
	return uint(id), nil
}

// parsePagination reads limit/offset query parameters with sane defaults.
func parsePagination(c echo.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ = strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// resolveKind resolves a loosely-typed kind reference, wrapping an unknown
// kind as a field validation error against the given field name.
func resolveKind(reg *registry.Registry, field string, value any) (registry.Kind, error) {
	kind, err := reg.Resolve(value)
	if err != nil {
		verrs := make(validation.Errors)
		verrs.Add(field, validation.CodeUnknownEntityKind, fmt.Sprintf("unknown entity kind: %v", value))
		return registry.Kind{}, verrs
	}
	return kind, nil
}

// apiError maps repository errors onto HTTP responses: structured validation
// errors become a 400 with a field->violations payload, missing rows a 404,
// anything else a 500.
func apiError(err error) error {
	if verrs, ok := validation.AsErrors(err); ok {
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{"errors": verrs})
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Resource not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
