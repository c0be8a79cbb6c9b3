package handlers

import (
	"log"

	"flowershop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PageHandler renders the HTML catalog. Errors never reach the browser as
// raw messages.
type PageHandler struct {
	service *services.ProductService
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(service *services.ProductService) *PageHandler {
	return &PageHandler{
		service: service,
	}
}

// RegisterRoutes registers the page routes. It must be called after every
// other route because "/:id" matches any single path segment.
func (h *PageHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleIndex)
	router.Post("/", h.HandleIndex)
	router.Get("/map_route", h.HandleMap)
	router.Get("/video", h.HandleVideo)
	router.Get("/:id", h.HandleFlowerDetails)
}

func page(title, query string) fiber.Map {
	return fiber.Map{
		"Title": title,
		"Query": query,
	}
}

// HandleIndex lists flowers, filtered by the "q" form or query field.
func (h *PageHandler) HandleIndex(c *fiber.Ctx) error {
	query := c.FormValue("q")
	flowers, err := h.service.SearchProducts(c.UserContext(), query, services.DefaultSearchLimit, 0)
	if err != nil {
		log.Printf("Error searching flowers for %q: %v", query, err)
		return c.Status(fiber.StatusInternalServerError).Render("error", page("Error", query))
	}

	bind := page("Catalog", query)
	bind["Flowers"] = flowers
	return c.Render("index", bind)
}

// HandleMap renders the directions page.
func (h *PageHandler) HandleMap(c *fiber.Ctx) error {
	return c.Render("map", page("How to find us", ""))
}

// HandleVideo renders the video page.
func (h *PageHandler) HandleVideo(c *fiber.Ctx) error {
	return c.Render("video", page("Video", ""))
}

// HandleFlowerDetails renders one flower, or the not-found page.
func (h *PageHandler) HandleFlowerDetails(c *fiber.Ctx) error {
	flower, err := h.service.GetProduct(c.UserContext(), c.Params("id"), false)
	if err != nil {
		log.Printf("Error getting flower %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).Render("error", page("Error", ""))
	}
	if flower == nil {
		return c.Status(fiber.StatusNotFound).Render("404", page("Not found", ""))
	}

	bind := page(flower.Title, "")
	bind["Flower"] = flower
	return c.Render("details", bind)
}
