package router

import (
	"log"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pawhub/backend/internal/handlers"
	"github.com/pawhub/backend/internal/middleware"
	"github.com/pawhub/backend/internal/models"
	"github.com/pawhub/backend/internal/notify"
	"github.com/pawhub/backend/internal/registry"
	"github.com/pawhub/backend/internal/repositories"
	"github.com/pawhub/backend/internal/ws"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// BuildRegistry assembles the entity kind table and attaches the owner and
// label resolvers the fan-out and payload builder need. Kinds without an
// owner notion (user, comment) register no resolver and never notify.
func BuildRegistry() *registry.Registry {
	reg := registry.Builtin()

	reg.SetOwnerResolver(registry.KeyAnimal, func(db *gorm.DB, objectID uint) (uint, bool) {
		var animal models.Animal
		if err := db.First(&animal, objectID).Error; err != nil {
			return 0, false
		}
		return animal.OwnerID, true
	})
	reg.SetLabelResolver(registry.KeyAnimal, func(db *gorm.DB, objectID uint) (string, bool) {
		var animal models.Animal
		if err := db.First(&animal, objectID).Error; err != nil {
			return "", false
		}
		return animal.Name, true
	})

	reg.SetOwnerResolver(registry.KeyOrganization, func(db *gorm.DB, objectID uint) (uint, bool) {
		var org models.Organization
		if err := db.First(&org, objectID).Error; err != nil {
			return 0, false
		}
		return org.UserID, true
	})
	reg.SetLabelResolver(registry.KeyOrganization, func(db *gorm.DB, objectID uint) (string, bool) {
		var org models.Organization
		if err := db.First(&org, objectID).Error; err != nil {
			return "", false
		}
		return org.Name, true
	})

	reg.SetOwnerResolver(registry.KeyPost, func(db *gorm.DB, objectID uint) (uint, bool) {
		var post models.Post
		if err := db.First(&post, objectID).Error; err != nil {
			return 0, false
		}
		return post.AuthorID, true
	})

	reg.SetOwnerResolver(registry.KeyArticle, func(db *gorm.DB, objectID uint) (uint, bool) {
		var article models.Article
		if err := db.First(&article, objectID).Error; err != nil {
			return 0, false
		}
		return article.AuthorID, true
	})
	reg.SetLabelResolver(registry.KeyArticle, func(db *gorm.DB, objectID uint) (string, bool) {
		var article models.Article
		if err := db.First(&article, objectID).Error; err != nil {
			return "", false
		}
		return article.Title, true
	})

	return reg
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, db *gorm.DB, firebaseAuthClient *auth.Client) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.OrganizationMember{},
		&models.Animal{},
		&models.Post{},
		&models.Article{},
		&models.Comment{},
		&models.Reaction{},
		&models.Follow{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Core wiring: registry, live channel hub, dispatcher, fan-out ---
	reg := BuildRegistry()
	hub := ws.NewHub()
	dispatcher := notify.NewDispatcher(reg, hub)
	fanout := notify.NewFanout(dispatcher, reg)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db)
	animalRepo := repositories.NewPostgresAnimalRepository(db)
	orgRepo := repositories.NewPostgresOrganizationRepository(db)
	articleRepo := repositories.NewPostgresArticleRepository(db)
	postRepo := repositories.NewPostgresPostRepository(db)
	notificationRepo := repositories.NewPostgresNotificationRepository(db)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- WebSocket endpoints (self-authenticating) ---
	wsHandler := handlers.NewWebSocketHandler(db, hub, reg)
	wsHandler.RegisterWebSocketRoutes(e)
	log.Println("WebSocket routes configured.")

	// --- Protected routes ---
	api := e.Group("/api/v1")
	if firebaseAuthClient != nil {
		api.Use(middleware.FirebaseAuthMiddleware(firebaseAuthClient, userRepo))
		log.Println("JWT and Firebase authentication middleware applied to /api/v1 group.")
	} else {
		api.Use(middleware.JWTAuthMiddleware())
		log.Println("JWT authentication middleware applied to /api/v1 group.")
	}

	api.GET("/content-types", func(c echo.Context) error {
		kinds := reg.Kinds()
		out := make([]echo.Map, 0, len(kinds))
		for _, k := range kinds {
			out = append(out, echo.Map{"id": k.ID, "key": k.Key()})
		}
		return c.JSON(http.StatusOK, out)
	})

	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterProfileRoutes(api)
	log.Println("User profile routes configured.")

	animalHandler := handlers.NewAnimalHandler(animalRepo)
	animalHandler.RegisterAnimalRoutes(api)
	log.Println("Animal routes configured.")

	orgHandler := handlers.NewOrganizationHandler(db, orgRepo, fanout)
	orgHandler.RegisterOrganizationRoutes(api)
	log.Println("Organization routes configured.")

	articleHandler := handlers.NewArticleHandler(articleRepo)
	articleHandler.RegisterArticleRoutes(api)
	log.Println("Article routes configured.")

	postHandler := handlers.NewPostHandler(db, postRepo, fanout)
	postHandler.RegisterPostRoutes(api)
	log.Println("Post routes configured.")

	commentHandler := handlers.NewCommentHandler(db, reg, fanout)
	commentHandler.RegisterCommentRoutes(api)
	log.Println("Comment routes configured.")

	reactionHandler := handlers.NewReactionHandler(db, reg, fanout)
	reactionHandler.RegisterReactionRoutes(api)
	log.Println("Reaction routes configured.")

	followHandler := handlers.NewFollowHandler(db, reg, fanout)
	followHandler.RegisterFollowRoutes(api)
	log.Println("Follow routes configured.")

	notificationHandler := handlers.NewNotificationHandler(db, notificationRepo, dispatcher)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	log.Println("All routes configured.")
}
