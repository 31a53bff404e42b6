package sitebuilder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 1200
	jpegQuality   = 80
	uploadsPrefix = "/uploads"
)

// processedImage is an upload re-encoded as JPEG.
type processedImage struct {
	Data          []byte
	Width, Height int
}

// processImage decodes src, scales it down to maxImageWidth when wider, and
// re-encodes it as JPEG. Metadata such as EXIF is dropped by the re-encode.
func processImage(src io.Reader) (processedImage, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return processedImage{}, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		if newH < 1 {
			newH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w, h = maxImageWidth, newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return processedImage{}, fmt.Errorf("encode jpeg: %w", err)
	}
	return processedImage{Data: buf.Bytes(), Width: w, Height: h}, nil
}

// uploadFilename derives a file name from the item id and the original name,
// e.g. "item_2a..-beach-sunset.jpg". The id keeps names unique.
func uploadFilename(itemID, original string) string {
	base := Slugify(strings.TrimSuffix(filepath.Base(original), filepath.Ext(original)))
	if base == "" {
		return itemID + ".jpg"
	}
	if len(base) > 60 {
		base = strings.TrimRight(base[:60], "-")
	}
	return itemID + "-" + base + ".jpg"
}

func (a *App) handleListPortfolio(c echo.Context) error {
	items, err := a.Store.ListPortfolioItems(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

func (a *App) handlePortfolioUpload(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > maxUploadSize {
		return echo.NewHTTPError(http.StatusBadRequest, "File too large (max 10MB)")
	}
	title := strings.TrimSpace(c.FormValue("title"))
	if err := validateFields(field{name: "title", value: title, max: 200}); err != nil {
		return err
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	img, err := processImage(src)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid image")
	}

	item := PortfolioItem{
		ItemID:    NewID(prefixItem),
		Title:     title,
		Width:     img.Width,
		Height:    img.Height,
		CreatedAt: a.timestamp(),
	}
	if item.Title == "" {
		item.Title = strings.TrimSuffix(filepath.Base(file.Filename), filepath.Ext(file.Filename))
	}
	item.Filename = uploadFilename(item.ItemID, file.Filename)
	item.ImageURL = path.Join(uploadsPrefix, item.Filename)

	if err := os.MkdirAll(a.Config.UploadDir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	dst := filepath.Join(a.Config.UploadDir, item.Filename)
	if err := os.WriteFile(dst, img.Data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	if err := a.Store.CreatePortfolioItem(c.Request().Context(), item); err != nil {
		_ = os.Remove(dst)
		return err
	}
	a.Log.Infow("portfolio image uploaded", "item_id", item.ItemID, "width", item.Width, "height", item.Height)
	return c.JSON(http.StatusCreated, item)
}

type renameItemRequest struct {
	Title string `json:"title"`
}

func (a *App) handleRenamePortfolioItem(c echo.Context) error {
	var req renameItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := validateFields(field{name: "title", value: req.Title, max: 200, required: true}); err != nil {
		return err
	}
	err := a.Store.RenamePortfolioItem(c.Request().Context(), c.Param("item_id"), strings.TrimSpace(req.Title))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Item not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pageResult{Success: true, Message: "Item updated"})
}

func (a *App) handleDeletePortfolioItem(c echo.Context) error {
	ctx := c.Request().Context()
	item, err := a.Store.GetPortfolioItem(ctx, c.Param("item_id"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Item not found")
	}
	if err != nil {
		return err
	}
	if err := a.Store.DeletePortfolioItem(ctx, item.ItemID); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(a.Config.UploadDir, item.Filename)); err != nil && !errors.Is(err, os.ErrNotExist) {
		a.Log.Warnw("remove portfolio file", "item_id", item.ItemID, "error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
