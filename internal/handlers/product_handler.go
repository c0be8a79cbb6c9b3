package handlers

import (
	"log"

	"flowershop/internal/models"
	"flowershop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler serves the JSON flower API.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the flower routes. Handlers in protect run
// before every write route.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, protect ...fiber.Handler) {
	guarded := func(handler fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, protect...), handler)
	}

	flowerRoutes := router.Group("/flowers")
	flowerRoutes.Get("/", h.HandleGetFlowers)
	flowerRoutes.Get("/:id", h.HandleGetFlower)
	flowerRoutes.Post("/", guarded(h.HandleCreateFlower)...)
	flowerRoutes.Patch("/:id", guarded(h.HandlePatchFlower)...)
	flowerRoutes.Delete("/:id", guarded(h.HandleDeleteFlower)...)
}

type searchParams struct {
	Query string `query:"query"`
	Limit int    `query:"limit"`
	Skip  int    `query:"skip"`
}

// HandleGetFlowers searches flowers by the query, limit and skip parameters.
func (h *ProductHandler) HandleGetFlowers(c *fiber.Ctx) error {
	params := searchParams{Limit: services.DefaultSearchLimit}
	if err := c.QueryParser(&params); err != nil {
		log.Printf("Error parsing search parameters: %v", err)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Invalid query parameters",
			"error":   err.Error(),
		})
	}

	flowers, err := h.service.SearchProducts(c.UserContext(), params.Query, params.Limit, params.Skip)
	if err != nil {
		return respondError(c, err, "retrieve flowers")
	}
	return c.JSON(flowers)
}

// HandleGetFlower retrieves a single flower by its ID.
func (h *ProductHandler) HandleGetFlower(c *fiber.Ctx) error {
	flower, err := h.service.GetProduct(c.UserContext(), c.Params("id"), true)
	if err != nil {
		return respondError(c, err, "retrieve flower")
	}
	return c.JSON(flower)
}

// HandleCreateFlower creates a new flower.
func (h *ProductHandler) HandleCreateFlower(c *fiber.Ctx) error {
	var input models.NewProduct
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c, err)
	}

	flower, err := h.service.CreateProduct(c.UserContext(), input)
	if err != nil {
		return respondError(c, err, "create flower")
	}
	return c.Status(fiber.StatusCreated).JSON(flower)
}

// HandlePatchFlower changes the price and title of a flower.
func (h *ProductHandler) HandlePatchFlower(c *fiber.Ctx) error {
	var patch models.PatchProduct
	if err := c.BodyParser(&patch); err != nil {
		return invalidBody(c, err)
	}

	flower, err := h.service.PatchProduct(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return respondError(c, err, "update flower")
	}
	return c.JSON(flower)
}

// HandleDeleteFlower deletes a flower. It succeeds whether or not the flower
// existed.
func (h *ProductHandler) HandleDeleteFlower(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err, "delete flower")
	}
	return c.JSON(fiber.Map{})
}
