package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pawhub/backend/internal/models"
	"github.com/pawhub/backend/internal/repositories"
)

// AnimalHandler handles HTTP requests related to animals
type AnimalHandler struct {
	animalRepository repositories.AnimalRepository
}

// NewAnimalHandler creates a new AnimalHandler
func NewAnimalHandler(animalRepo repositories.AnimalRepository) *AnimalHandler {
	return &AnimalHandler{animalRepository: animalRepo}
}

// RegisterAnimalRoutes registers animal-related routes
func (h *AnimalHandler) RegisterAnimalRoutes(g *echo.Group) {
	g.POST("/animals", h.CreateAnimal)
	g.GET("/animals", h.ListAnimals)
	g.GET("/animals/:id", h.GetAnimal)
	g.PUT("/animals/:id", h.UpdateAnimal)
	g.DELETE("/animals/:id", h.DeleteAnimal)
}

// CreateAnimal creates a new animal owned by the authenticated user
func (h *AnimalHandler) CreateAnimal(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req models.CreateAnimalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	animal := &models.Animal{
		Name:           req.Name,
		Species:        req.Species,
		Gender:         req.Gender,
		Status:         models.AnimalStatusAvailable,
		OwnerID:        userID,
		OrganizationID: req.OrganizationID,
	}

	if err := h.animalRepository.CreateAnimal(animal); err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusCreated, animal)
}

func (h *AnimalHandler) GetAnimal(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	animal, err := h.animalRepository.GetAnimalByID(id)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, animal)
}

func (h *AnimalHandler) ListAnimals(c echo.Context) error {
	limit, offset := parsePagination(c)
	animals, err := h.animalRepository.ListAnimals(limit, offset)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, animals)
}

// UpdateAnimal updates an animal; only its owner may do so
func (h *AnimalHandler) UpdateAnimal(c echo.Context) error {
	userID := getUserIDFromContext(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateAnimalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	animal, err := h.animalRepository.GetAnimalByID(id)
	if err != nil {
		return apiError(err)
	}
	if animal.OwnerID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You do not own this animal")
	}

	if req.Name != "" {
		animal.Name = req.Name
	}
	if req.Status != "" {
		animal.Status = req.Status
	}

	if err := h.animalRepository.UpdateAnimal(animal); err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, animal)
}

// DeleteAnimal deletes an animal; only its owner may do so
func (h *AnimalHandler) DeleteAnimal(c echo.Context) error {
	userID := getUserIDFromContext(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	animal, err := h.animalRepository.GetAnimalByID(id)
	if err != nil {
		return apiError(err)
	}
	if animal.OwnerID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You do not own this animal")
	}

	if err := h.animalRepository.DeleteAnimal(id); err != nil {
		return apiError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
