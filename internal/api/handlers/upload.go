package handlers

import (
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/tajious/parkify/internal/middleware"
	"github.com/tajious/parkify/internal/service"
)

const msgUploadFieldsRequired = "File, storage bucket, and parking lot ID are required"

type UploadHandler struct {
	images *service.ImageService
}

func NewUploadHandler(images *service.ImageService) *UploadHandler {
	return &UploadHandler{
		images: images,
	}
}

func (h *UploadHandler) UploadParkingLotImage(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	file, err := c.FormFile("file")
	bucket := strings.TrimSpace(c.FormValue("storageBucket"))
	rawID := strings.TrimSpace(c.FormValue("parkingLotId"))
	if err != nil || file == nil || bucket == "" || rawID == "" {
		return fiber.NewError(fiber.StatusBadRequest, msgUploadFieldsRequired)
	}

	lotID, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || lotID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid parking lot ID")
	}

	f, err := file.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, msgUploadFieldsRequired)
	}
	defer f.Close()

	body, err := io.ReadAll(f)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Could not read uploaded file")
	}

	contentType := file.Header.Get(fiber.HeaderContentType)
	if contentType == "" {
		contentType = fiber.MIMEOctetStream
	}

	res, err := h.images.Upload(c.UserContext(), service.UploadImageInput{
		LessorID:     claims.SubjectID,
		ParkingLotID: uint(lotID),
		Bucket:       bucket,
		FileName:     file.Filename,
		ContentType:  contentType,
		Body:         body,
		OldImagePath: c.FormValue("oldImagePath"),
	})
	if err != nil {
		return err
	}

	return c.JSON(res)
}
