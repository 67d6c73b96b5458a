package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rental-service/internal/api/dto"
	"github.com/spec-kit/rental-service/internal/auth"
	"github.com/spec-kit/rental-service/internal/service"
)

// AdminHandler exposes moderation endpoints. Routes are gated to admins.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func (h *AdminHandler) Users(c *fiber.Ctx) error {
	users, err := h.admin.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponses(users)})
}

func (h *AdminHandler) Listings(c *fiber.Ctx) error {
	views, err := h.admin.ListListings(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewListingViewResponses(views, true)})
}

func (h *AdminHandler) Bookings(c *fiber.Ctx) error {
	views, err := h.admin.ListBookings(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBookingViewResponses(views)})
}

// DeleteUser handles DELETE /api/admin/users/:id.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	actor, _ := auth.UserFromContext(c)
	if err := h.admin.DeleteUser(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": c.Params("id"), "deleted": true}})
}

// DeleteListing handles DELETE /api/admin/listings/:id.
func (h *AdminHandler) DeleteListing(c *fiber.Ctx) error {
	actor, _ := auth.UserFromContext(c)
	if err := h.admin.DeleteListing(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": c.Params("id"), "deleted": true}})
}

// Promote handles PUT /api/admin/users/:id/promote.
func (h *AdminHandler) Promote(c *fiber.Ctx) error {
	actor, _ := auth.UserFromContext(c)
	user, err := h.admin.PromoteToHost(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}
