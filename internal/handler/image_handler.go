package handler

import (
	"mime/multipart"

	"go-stock-tracker/internal/service"
	"go-stock-tracker/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

type ImageHandler struct {
	service service.ImageService
}

func NewImageHandler(s service.ImageService) *ImageHandler {
	return &ImageHandler{service: s}
}

// UploadImage stores the "image" form file.
// POST /api/upload/product/:id/image
func (h *ImageHandler) UploadImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return respondError(c, apperror.Validation("No image uploaded", map[string]string{"image": "is required"}))
	}
	return h.upload(c, []*multipart.FileHeader{fh})
}

// UploadImages stores every "images" form file.
// POST /api/upload/product/:id/images
func (h *ImageHandler) UploadImages(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return respondError(c, apperror.Validation("Invalid multipart form", nil))
	}
	return h.upload(c, form.File["images"])
}

func (h *ImageHandler) upload(c *fiber.Ctx, headers []*multipart.FileHeader) error {
	productID, err := paramUUID(c, "id", "product")
	if err != nil {
		return respondError(c, err)
	}

	files := make([]service.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return respondError(c, apperror.Internal("Failed to read upload", err))
		}
		defer f.Close()
		files = append(files, service.UploadFile{Name: fh.Filename, Content: f})
	}

	images, err := h.service.Upload(productID, files, actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return okMessage(c, fiber.StatusCreated, "Images uploaded", images)
}

func (h *ImageHandler) ListImages(c *fiber.Ctx) error {
	productID, err := paramUUID(c, "id", "product")
	if err != nil {
		return respondError(c, err)
	}
	images, err := h.service.List(productID)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, images)
}

func (h *ImageHandler) DeleteImage(c *fiber.Ctx) error {
	productID, err := paramUUID(c, "id", "product")
	if err != nil {
		return respondError(c, err)
	}
	imageID, err := paramUUID(c, "imageId", "image")
	if err != nil {
		return respondError(c, err)
	}
	images, err := h.service.Delete(productID, imageID, actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return okMessage(c, fiber.StatusOK, "Image deleted", images)
}

func (h *ImageHandler) SetPrimaryImage(c *fiber.Ctx) error {
	productID, err := paramUUID(c, "id", "product")
	if err != nil {
		return respondError(c, err)
	}
	imageID, err := paramUUID(c, "imageId", "image")
	if err != nil {
		return respondError(c, err)
	}
	images, err := h.service.SetPrimary(productID, imageID, actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return okMessage(c, fiber.StatusOK, "Primary image updated", images)
}
