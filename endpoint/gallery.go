package endpoint

import (
	"net/http"

	"github.com/ariebrainware/clinic-admin/backend"
	"github.com/ariebrainware/clinic-admin/model"
	"github.com/ariebrainware/clinic-admin/util"
	"github.com/gin-gonic/gin"
)

type GalleryForm struct {
	Title       string `form:"title"`
	Description string `form:"description"`
}

// GalleryItem adds the absolute image source to a gallery image.
type GalleryItem struct {
	model.GalleryImage
	Src string `json:"src"`
}

// ListGallery godoc
// @Summary      List gallery images
// @Tags         Gallery
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse{data=[]GalleryItem}
// @Router       /gallery [get]
func (p *Pages) ListGallery(c *gin.Context) {
	p.respondGallery(c, http.StatusOK, "Gallery retrieved")
}

func (p *Pages) respondGallery(c *gin.Context, status int, msg string) {
	images, err := p.backend.ListGallery(c.Request.Context())
	if err != nil {
		respondBackendError(c, "Failed to fetch gallery", err)
		return
	}
	items := make([]GalleryItem, 0, len(images))
	for _, img := range images {
		items = append(items, GalleryItem{GalleryImage: img, Src: p.backend.AssetURL(img.ImageURL)})
	}
	params := util.APISuccessParams{Msg: msg, Data: items}
	if status == http.StatusCreated {
		util.CallSuccessCreated(c, params)
		return
	}
	util.CallSuccessOK(c, params)
}

// UploadGalleryImage godoc
// @Summary      Upload a gallery image
// @Tags         Gallery
// @Accept       multipart/form-data
// @Produce      json
// @Security     SessionToken
// @Param        image formData file true "Image"
// @Param        title formData string false "Title"
// @Param        description formData string false "Description"
// @Success      201 {object} util.APIResponse{data=[]GalleryItem}
// @Failure      400 {object} util.APIResponse "Missing or non-image file"
// @Router       /gallery [post]
func (p *Pages) UploadGalleryImage(c *gin.Context) {
	var form GalleryForm
	if !bindFormOrRespond(c, &form, "Invalid gallery form") {
		return
	}
	img, closeImg, ok := uploadFromForm(c, "image", true)
	if !ok {
		return
	}
	defer closeImg()

	in := backend.GalleryInput{Title: form.Title, Description: form.Description, Image: img}
	if err := p.backend.UploadGalleryImage(c.Request.Context(), in); err != nil {
		respondBackendError(c, "Failed to upload image", err)
		return
	}
	p.respondGallery(c, http.StatusCreated, "Image uploaded")
}

// DeleteGalleryImage godoc
// @Summary      Delete a gallery image
// @Tags         Gallery
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Image ID"
// @Param        confirm query bool true "Must be true"
// @Success      200 {object} util.APIResponse{data=[]GalleryItem}
// @Failure      400 {object} util.APIResponse "Confirmation required"
// @Router       /gallery/{id} [delete]
func (p *Pages) DeleteGalleryImage(c *gin.Context) {
	id, ok := intParamOrRespond(c, "id")
	if !ok {
		return
	}
	if !confirmedOrRespond(c) {
		return
	}
	if err := p.backend.DeleteGalleryImage(c.Request.Context(), id); err != nil {
		respondBackendError(c, "Failed to delete image", err)
		return
	}
	p.respondGallery(c, http.StatusOK, "Image deleted")
}
