package handlers

import (
	"fmt"
	"log"
	"strings"

	"comerciotech/internal/models"
	"comerciotech/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CustomerHandler handles HTTP requests for customers.
type CustomerHandler struct {
	service  *services.CustomerService
	validate *validator.Validate
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(service *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the customer routes with the Fiber app.
func (h *CustomerHandler) RegisterRoutes(router fiber.Router) {
	customerRoutes := router.Group("/customers")
	customerRoutes.Get("/", h.HandleGetCustomers)
	customerRoutes.Get("/:id", h.HandleGetCustomerByID)
	customerRoutes.Post("/", h.HandleCreateCustomer)
	customerRoutes.Put("/:id", h.HandleUpdateCustomer)
	customerRoutes.Delete("/:id", h.HandleDeleteCustomer)
}

// HandleGetCustomers retrieves all customers.
func (h *CustomerHandler) HandleGetCustomers(c *fiber.Ctx) error {
	customers, err := h.service.GetAllCustomers()
	if err != nil {
		log.Printf("Error getting all customers: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve customers",
			"error":   err.Error(),
		})
	}
	return c.JSON(customers)
}

// HandleGetCustomerByID retrieves a single customer by its ID.
func (h *CustomerHandler) HandleGetCustomerByID(c *fiber.Ctx) error {
	customerID := c.Params("id")
	customer, err := h.service.GetCustomerByID(customerID)
	if err != nil {
		log.Printf("Error getting customer by ID %s: %v", customerID, err)
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Customer with ID %s not found", customerID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve customer",
			"error":   err.Error(),
		})
	}
	return c.JSON(customer)
}

// HandleCreateCustomer creates a new customer.
func (h *CustomerHandler) HandleCreateCustomer(c *fiber.Ctx) error {
	var customer models.Customer
	if err := c.BodyParser(&customer); err != nil {
		log.Printf("Error parsing customer request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(customer); err != nil {
		return validationFailed(c, err)
	}

	if err := h.service.CreateCustomer(&customer); err != nil {
		log.Printf("Error creating customer: %v", err)
		return customerErrorResponse(c, "Could not create customer", err)
	}
	return c.Status(fiber.StatusCreated).JSON(customer)
}

// HandleUpdateCustomer updates an existing customer.
func (h *CustomerHandler) HandleUpdateCustomer(c *fiber.Ctx) error {
	customerID := c.Params("id")
	var customer models.Customer
	if err := c.BodyParser(&customer); err != nil {
		log.Printf("Error parsing customer request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(customer); err != nil {
		return validationFailed(c, err)
	}

	if err := h.service.UpdateCustomer(customerID, &customer); err != nil {
		log.Printf("Error updating customer %s: %v", customerID, err)
		return customerErrorResponse(c, "Could not update customer", err)
	}
	return c.JSON(customer)
}

// HandleDeleteCustomer deletes a customer by its ID. A customer with
// associated orders cannot be deleted.
func (h *CustomerHandler) HandleDeleteCustomer(c *fiber.Ctx) error {
	customerID := c.Params("id")
	if err := h.service.DeleteCustomer(customerID); err != nil {
		log.Printf("Error deleting customer %s: %v", customerID, err)
		return customerErrorResponse(c, "Could not delete customer", err)
	}
	return c.JSON(fiber.Map{
		"message": "Customer deleted successfully",
	})
}

func customerErrorResponse(c *fiber.Ctx, message string, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case strings.Contains(err.Error(), "not found"):
		status = fiber.StatusNotFound
	case strings.Contains(err.Error(), "already exists"):
		status = fiber.StatusConflict
	case strings.Contains(err.Error(), "cannot be deleted"):
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}
