package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"comerciotech/internal/handlers"
	"comerciotech/internal/middleware"
	"comerciotech/internal/models"
	"comerciotech/internal/repositories"
	"comerciotech/internal/services"
	"comerciotech/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":5001")
	viper.SetDefault("DB_DRIVER", "sqlite")
	viper.SetDefault("DATABASE_DSN", "comerciotech.db")
	viper.SetDefault("JWT_SECRET", "comerciotech_dev_secret")
	viper.SetDefault("AUTH_DISABLED", false)
	viper.SetDefault("RABBITMQ_URL", "") // empty disables event publishing
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")

	// --- Database ---
	db, err := openDatabase(viper.GetString("DB_DRIVER"), viper.GetString("DATABASE_DSN"))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.Customer{}, &models.Product{}, &models.Order{}, &models.LineItem{}, &models.User{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if url := viper.GetString("RABBITMQ_URL"); url != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: url})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
	} else {
		log.Println("RABBITMQ_URL not set, order event publishing disabled")
	}

	// --- Repositories ---
	customerRepo := repositories.NewGORMCustomerRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	seedCatalog(customerRepo, productRepo)

	// --- Services ---
	var publisher services.EventPublisher
	if mqClient != nil {
		publisher = mqClient
	}
	customerService := services.NewCustomerService(customerRepo, orderRepo)
	productService := services.NewProductService(productRepo)
	orderService := services.NewOrderService(orderRepo, customerRepo, publisher)
	authService := services.NewAuthService(userRepo, viper.GetString("JWT_SECRET"))

	// --- Handlers ---
	customerHandler := handlers.NewCustomerHandler(customerService)
	productHandler := handlers.NewProductHandler(productService)
	orderHandler := handlers.NewOrderHandler(orderService)
	authHandler := handlers.NewAuthHandler(authService)

	// --- Fiber app ---
	app := fiber.New()
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes stay public; the data routes are guarded
	// unless auth is switched off for local use.
	authHandler.RegisterRoutes(app)

	dataRoutes := fiber.Router(app)
	if !viper.GetBool("AUTH_DISABLED") {
		dataRoutes = app.Group("", middleware.AuthRequired(authService))
	} else {
		log.Println("AUTH_DISABLED is set, data routes are unauthenticated")
	}
	customerHandler.RegisterRoutes(dataRoutes)
	productHandler.RegisterRoutes(dataRoutes)
	orderHandler.RegisterRoutes(dataRoutes)

	// --- Order event consumer ---
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for order events...")
			err := mqClient.ConsumeOrderEvents(func(msg amqp.Delivery) error {
				log.Printf("Order event %s: %s", msg.RoutingKey, string(msg.Body))
				return nil
			})
			if err != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", err)
			}
		}()
	}

	// --- Start HTTP server ---
	log.Printf("Starting ComercioTech service on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// openDatabase opens the configured GORM backend.
func openDatabase(driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case "postgres":
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	default:
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	}
}

// seedCatalog populates an empty database with a few customers and
// products so a fresh install has something to list.
func seedCatalog(customerRepo repositories.CustomerRepository, productRepo repositories.ProductRepository) {
	if existing, err := customerRepo.GetAll(); err == nil && len(existing) == 0 {
		customers := []models.Customer{
			{FirstName: "Ana", LastName: "Torres", Code: "C001"},
			{FirstName: "Luis", LastName: "Romero", Code: "C002"},
			{FirstName: "Marta", LastName: "Quintana", Code: "C003"},
		}
		for i := range customers {
			customers[i].RegisteredAt = time.Now().UTC().Format("2006-01-02")
			if err := customerRepo.Create(&customers[i]); err != nil {
				log.Printf("Error seeding customer %s: %v", customers[i].Code, err)
			}
		}
	}

	if existing, err := productRepo.GetAll(); err == nil && len(existing) == 0 {
		products := []models.Product{
			{Name: "Laptop", Category: "electronics", Price: 1200.00, Stock: 10},
			{Name: "Keyboard", Category: "electronics", Price: 75.00, Stock: 25},
			{Name: "Mouse", Category: "electronics", Price: 25.00, Stock: 50},
		}
		for i := range products {
			if err := productRepo.Create(&products[i]); err != nil {
				log.Printf("Error seeding product %s: %v", products[i].Name, err)
			}
		}
	}
}
