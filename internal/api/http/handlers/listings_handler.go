package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rental-service/internal/api/dto"
	"github.com/spec-kit/rental-service/internal/auth"
	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/service"
	apperrors "github.com/spec-kit/rental-service/pkg/util"
)

const imagesField = "images"

// ListingsHandler exposes public listing reads and host mutations.
type ListingsHandler struct {
	listings *service.ListingService
}

// NewListingsHandler constructs handler.
func NewListingsHandler(listings *service.ListingService) *ListingsHandler {
	return &ListingsHandler{listings: listings}
}

// List handles GET /api/listings?location=&min=&max=.
func (h *ListingsHandler) List(c *fiber.Ctx) error {
	var filter domain.ListingFilter
	if loc := strings.TrimSpace(c.Query("location")); loc != "" {
		filter.Location = &loc
	}
	var err error
	if filter.MinPrice, err = queryFloat(c, "min"); err != nil {
		return err
	}
	if filter.MaxPrice, err = queryFloat(c, "max"); err != nil {
		return err
	}

	views, err := h.listings.ListListings(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewListingViewResponses(views, false)})
}

// Get handles GET /api/listings/:id.
func (h *ListingsHandler) Get(c *fiber.Ctx) error {
	view, err := h.listings.GetListing(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewListingViewResponse(*view, false)})
}

// Mine handles GET /api/listings/host/my-listings.
func (h *ListingsHandler) Mine(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	listings, err := h.listings.ListHostListings(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewListingResponses(listings)})
}

// Create handles POST /api/listings as multipart (field "images") or JSON.
func (h *ListingsHandler) Create(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	req, files, err := parseListingRequest(c)
	if err != nil {
		return err
	}
	uploads, closeAll, err := openUploads(files)
	if err != nil {
		return err
	}
	defer closeAll()

	listing, err := h.listings.CreateListing(c.UserContext(), user, req.Input(), uploads)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewListingResponse(listing)})
}

// Update handles PUT /api/listings/:id.
func (h *ListingsHandler) Update(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	req, files, err := parseListingRequest(c)
	if err != nil {
		return err
	}
	uploads, closeAll, err := openUploads(files)
	if err != nil {
		return err
	}
	defer closeAll()

	listing, err := h.listings.UpdateListing(c.UserContext(), user, c.Params("id"), req.Input(), uploads)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewListingResponse(listing)})
}

// Delete handles DELETE /api/listings/:id.
func (h *ListingsHandler) Delete(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.listings.DeleteListing(c.UserContext(), user, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": c.Params("id"), "deleted": true}})
}

func parseListingRequest(c *fiber.Ctx) (dto.ListingRequest, []*multipart.FileHeader, error) {
	var req dto.ListingRequest
	if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		err := bindJSON(c, &req)
		return req, nil, err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return req, nil, apperrors.NewValidationError("invalid multipart payload", nil)
	}
	req.Title = formString(form, "title")
	req.Description = formString(form, "description")
	req.Location = formString(form, "location")
	if raw := formString(form, "price"); raw != nil && strings.TrimSpace(*raw) != "" {
		price, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
		if err != nil {
			return req, nil, apperrors.NewValidationError("validation failed", map[string]any{"price": "number"})
		}
		req.Price = &price
	}
	if err := validateStruct(&req); err != nil {
		return req, nil, err
	}
	return req, form.File[imagesField], nil
}

func formString(form *multipart.Form, key string) *string {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

func openUploads(files []*multipart.FileHeader) ([]service.ImageUpload, func(), error) {
	if len(files) > domain.MaxListingImages {
		return nil, func() {}, apperrors.NewValidationError("too many images", map[string]any{
			"max":   domain.MaxListingImages,
			"count": len(files),
		})
	}
	opened := make([]multipart.File, 0, len(files))
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	uploads := make([]service.ImageUpload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, apperrors.NewValidationError("unreadable image", map[string]any{"file": fh.Filename})
		}
		opened = append(opened, f)
		uploads = append(uploads, service.ImageUpload{Filename: fh.Filename, Content: f})
	}
	return uploads, closeAll, nil
}

func queryFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid query parameter", map[string]any{key: raw})
	}
	return &v, nil
}
