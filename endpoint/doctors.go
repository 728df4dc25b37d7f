package endpoint

import (
	"fmt"
	"net/http"

	"github.com/ariebrainware/clinic-admin/backend"
	"github.com/ariebrainware/clinic-admin/util"
	"github.com/gin-gonic/gin"
)

type DoctorForm struct {
	Name           string `form:"name" binding:"required"`
	Specialization string `form:"specialization" binding:"required"`
	Phone          string `form:"phone" binding:"required"`
}

func (f DoctorForm) input(img *backend.Upload) backend.DoctorInput {
	return backend.DoctorInput{
		Name:           util.NormalizeName(f.Name),
		Specialization: f.Specialization,
		Phone:          f.Phone,
		Image:          img,
	}
}

// ListDoctors godoc
// @Summary      List doctors
// @Tags         Doctors
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse{data=[]model.Doctor}
// @Failure      502 {object} util.APIResponse "Backend unavailable"
// @Router       /doctors [get]
func (p *Pages) ListDoctors(c *gin.Context) {
	p.respondDoctors(c, http.StatusOK, "Doctors retrieved")
}

func (p *Pages) respondDoctors(c *gin.Context, status int, msg string) {
	doctors, err := p.backend.ListDoctors(c.Request.Context())
	if err != nil {
		respondBackendError(c, "Failed to fetch doctors", err)
		return
	}
	p.doctors.remember(doctors)
	params := util.APISuccessParams{Msg: msg, Data: doctors}
	if status == http.StatusCreated {
		util.CallSuccessCreated(c, params)
		return
	}
	util.CallSuccessOK(c, params)
}

// CreateDoctor godoc
// @Summary      Add a doctor
// @Tags         Doctors
// @Accept       multipart/form-data
// @Produce      json
// @Security     SessionToken
// @Param        name formData string true "Name"
// @Param        specialization formData string true "Specialization"
// @Param        phone formData string true "Phone"
// @Param        image formData file false "Photo"
// @Success      201 {object} util.APIResponse{data=[]model.Doctor}
// @Failure      400 {object} util.APIResponse "Invalid form"
// @Router       /doctors [post]
func (p *Pages) CreateDoctor(c *gin.Context) {
	var form DoctorForm
	if !bindFormOrRespond(c, &form, "Name, specialization and phone are required") {
		return
	}
	img, closeImg, ok := uploadFromForm(c, "image", false)
	if !ok {
		return
	}
	defer closeImg()

	if err := p.backend.CreateDoctor(c.Request.Context(), form.input(img)); err != nil {
		respondBackendError(c, "Failed to add doctor", err)
		return
	}
	p.respondDoctors(c, http.StatusCreated, "Doctor added")
}

// UpdateDoctor godoc
// @Summary      Update a doctor
// @Tags         Doctors
// @Accept       multipart/form-data
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Doctor ID"
// @Success      200 {object} util.APIResponse{data=[]model.Doctor}
// @Failure      400 {object} util.APIResponse "Invalid form"
// @Failure      404 {object} util.APIResponse "Doctor not found"
// @Router       /doctors/{id} [put]
func (p *Pages) UpdateDoctor(c *gin.Context) {
	id, ok := paramOrRespond(c, "id")
	if !ok {
		return
	}
	var form DoctorForm
	if !bindFormOrRespond(c, &form, "Name, specialization and phone are required") {
		return
	}
	img, closeImg, ok := uploadFromForm(c, "image", false)
	if !ok {
		return
	}
	defer closeImg()

	if err := p.backend.UpdateDoctor(c.Request.Context(), id, form.input(img)); err != nil {
		respondBackendError(c, "Failed to update doctor", err)
		return
	}
	p.respondDoctors(c, http.StatusOK, "Doctor updated")
}

// DeleteDoctor godoc
// @Summary      Delete a doctor
// @Description  Deletes the doctor and answers with the remaining doctors. The list is read again only when none is remembered
// @Tags         Doctors
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Doctor ID"
// @Param        confirm query bool true "Must be true"
// @Success      200 {object} util.APIResponse{data=[]model.Doctor}
// @Failure      400 {object} util.APIResponse "Confirmation required"
// @Router       /doctors/{id} [delete]
func (p *Pages) DeleteDoctor(c *gin.Context) {
	id, ok := paramOrRespond(c, "id")
	if !ok {
		return
	}
	if !confirmedOrRespond(c) {
		return
	}
	if err := p.backend.DeleteDoctor(c.Request.Context(), id); err != nil {
		respondBackendError(c, "Failed to delete doctor", err)
		return
	}
	if remaining, ok := p.doctors.remove(id); ok {
		util.CallSuccessOK(c, util.APISuccessParams{Msg: "Doctor deleted", Data: remaining})
		return
	}

	// Nothing remembered yet: the delete went through, so read the list once to answer with it.
	list, err := p.backend.ListDoctors(c.Request.Context())
	if err != nil {
		logger := util.Logger()
		logger.Warn().Err(err).Str("doctor_id", id).Msg("doctor deleted but list could not be reloaded")
		util.CallSuccessOK(c, util.APISuccessParams{Msg: "Doctor deleted", Data: map[string]string{"id": id}})
		return
	}
	remaining := withoutDoctor(list, id)
	p.doctors.remember(remaining)
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Doctor deleted", Data: remaining})
}

// DoctorImage godoc
// @Summary      Doctor photo
// @Tags         Doctors
// @Security     SessionToken
// @Param        id path string true "Doctor ID"
// @Success      302 "Redirect to the image on the clinic backend"
// @Failure      404 {object} util.APIResponse "No photo"
// @Router       /doctors/{id}/image [get]
func (p *Pages) DoctorImage(c *gin.Context) {
	id, ok := paramOrRespond(c, "id")
	if !ok {
		return
	}
	doctors, cached := p.doctors.list()
	if !cached {
		var err error
		if doctors, err = p.backend.ListDoctors(c.Request.Context()); err != nil {
			respondBackendError(c, "Failed to fetch doctors", err)
			return
		}
		p.doctors.remember(doctors)
	}
	for _, doc := range doctors {
		if doc.ID != id {
			continue
		}
		if doc.ImageFilename == nil || *doc.ImageFilename == "" {
			break
		}
		c.Redirect(http.StatusFound, p.backend.DoctorImageURL(*doc.ImageFilename))
		return
	}
	util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Doctor photo not found", Err: fmt.Errorf("doctor %s has no photo", id)})
}
