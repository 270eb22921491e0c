package apiclient

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/campusmart/webclient/internal/core/domain"
)

// ImageUpload is one product image to attach to a listing.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// ListProducts fetches the home feed. Unauthenticated call.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, "/products", "", nil, "", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches a single listing by ID.
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+id, "", nil, "", &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct submits a new listing with its images as a streamed
// multipart/form-data request. Field names match the API's form contract.
func (c *Client) CreateProduct(ctx context.Context, token string, p domain.NewProduct, images []ImageUpload) (*domain.Product, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeProductForm(mw, p, images)
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()

	var created domain.Product
	if err := c.do(ctx, http.MethodPost, "/products", token, pr, mw.FormDataContentType(), &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func writeProductForm(mw *multipart.Writer, p domain.NewProduct, images []ImageUpload) error {
	fields := map[string]string{
		"name":     p.Name,
		"price":    strconv.FormatFloat(p.Price, 'f', -1, 64),
		"location": p.Location,
		"category": p.Category,
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return fmt.Errorf("write field %q: %w", name, err)
		}
	}
	if p.Description != "" {
		if err := mw.WriteField("description", p.Description); err != nil {
			return fmt.Errorf("write field description: %w", err)
		}
	}

	for _, img := range images {
		part, err := mw.CreateFormFile("images", img.Filename)
		if err != nil {
			return fmt.Errorf("create image part %q: %w", img.Filename, err)
		}
		if _, err := io.Copy(part, img.Content); err != nil {
			return fmt.Errorf("copy image %q: %w", img.Filename, err)
		}
	}
	return nil
}
