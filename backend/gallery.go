package backend

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/ariebrainware/clinic-admin/model"
)

// GalleryInput is the gallery upload form. Image is required.
type GalleryInput struct {
	Title       string
	Description string
	Image       *Upload
}

func (c *Client) ListGallery(ctx context.Context) ([]model.GalleryImage, error) {
	return getList[model.GalleryImage](ctx, c, c.endpoint("gallery"))
}

func (c *Client) UploadGalleryImage(ctx context.Context, in GalleryInput) error {
	f := &form{}
	f.attach("image", in.Image)
	f.set("title", in.Title)
	f.set("description", in.Description)
	return c.sendForm(ctx, http.MethodPost, c.endpoint("gallery"), f, nil)
}

func (c *Client) DeleteGalleryImage(ctx context.Context, id int) error {
	return c.sendJSON(ctx, http.MethodDelete, c.endpoint("gallery", strconv.Itoa(id)), nil, nil)
}

// AssetURL resolves an image_url path returned by the backend against the base URL.
func (c *Client) AssetURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}
