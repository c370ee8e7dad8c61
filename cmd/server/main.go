package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/complaintdesk/backend/internal/config"
	"github.com/complaintdesk/backend/internal/database"
	"github.com/complaintdesk/backend/internal/events"
	"github.com/complaintdesk/backend/internal/handlers"
	"github.com/complaintdesk/backend/internal/logging"
	"github.com/complaintdesk/backend/internal/middleware"
	"github.com/complaintdesk/backend/internal/repository"
	"github.com/complaintdesk/backend/internal/services"
	"github.com/complaintdesk/backend/internal/storage"
	"github.com/complaintdesk/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLog, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLog.Sync()

	db, err := database.Connect(&cfg.Database, zapLog)
	if err != nil {
		zapLog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		zapLog.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Seed default data
	if err := database.Seed(db, zapLog); err != nil {
		zapLog.Warn("Failed to seed database", zap.Error(err))
	}

	// Reference numbers come from Redis when available.
	var crnGenerator services.CRNGenerator = services.UUIDCRNGenerator{}
	if cfg.Redis.Enabled {
		redisClient, err := database.ConnectRedis(&cfg.Redis)
		if err != nil {
			zapLog.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer database.CloseRedis(redisClient)
		crnGenerator = services.NewRedisCRNGenerator(redisClient)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.RabbitMQ.Enabled {
		rabbit, err := events.NewRabbitMQPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, zapLog)
		if err != nil {
			zapLog.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		publisher = rabbit
	}
	defer publisher.Close()

	var fileStorage storage.FileStorage
	if cfg.MinIO.Enabled {
		minioStorage, err := storage.NewMinIOStorage(&cfg.MinIO, zapLog)
		if err != nil {
			zapLog.Fatal("Failed to connect to MinIO", zap.Error(err))
		}
		fileStorage = minioStorage
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpireHour)

	// Initialize repositories
	complaintRepo := repository.NewComplaintRepository(db)
	complaintTypeRepo := repository.NewComplaintTypeRepository(db)
	complaintStatusRepo := repository.NewComplaintStatusRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	boundaryRepo := repository.NewBoundaryRepository(db)

	// Initialize services
	lookups := services.Lookups{
		Types:       services.NewComplaintTypeService(complaintTypeRepo),
		Statuses:    services.NewComplaintStatusService(complaintStatusRepo),
		Departments: services.NewDepartmentService(departmentRepo),
		Employees:   services.NewEmployeeService(employeeRepo),
		Boundaries:  services.NewBoundaryService(boundaryRepo),
	}
	complaintService := services.NewComplaintService(complaintRepo, lookups, crnGenerator, publisher, fileStorage, zapLog)

	// Start SLA monitor (checks every 5 minutes)
	slaMonitor := services.NewSLAMonitor(complaintRepo, publisher, zapLog, 5*time.Minute)
	slaMonitor.Start(context.Background())
	defer slaMonitor.Stop()

	// Initialize handlers
	complaintHandler := handlers.NewComplaintHandler(complaintService)
	referenceHandler := handlers.NewReferenceHandler(lookups)

	// Initialize middleware
	actorMiddleware := middleware.NewActorMiddleware(jwtManager)

	app := fiber.New(fiber.Config{
		AppName:      "Complaint Desk",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	handlers.RegisterRoutes(app.Group("/api"), complaintHandler, referenceHandler, actorMiddleware)

	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		zapLog.Info("Server starting", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			zapLog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLog.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		zapLog.Error("Error during shutdown", zap.Error(err))
	}
	zapLog.Info("Server stopped")
}
