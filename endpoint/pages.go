package endpoint

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ariebrainware/clinic-admin/backend"
	"github.com/ariebrainware/clinic-admin/model"
	"github.com/ariebrainware/clinic-admin/roster"
	"github.com/ariebrainware/clinic-admin/util"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

// Deps carries everything the router and the page handlers need.
type Deps struct {
	DB          *gorm.DB
	Backend     *backend.Client
	Roster      *roster.Service
	Repairs     *roster.Queue
	Mailer      util.Mailer
	ClinicName  string
	CORSOrigins []string
	InFlightTTL time.Duration
}

// Pages serves the dashboard pages on top of the clinic backend.
type Pages struct {
	backend *backend.Client
	roster  *roster.Service
	repairs *roster.Queue
	mailer  util.Mailer
	clinic  string
	doctors *doctorDirectory
}

func NewPages(d Deps) *Pages {
	svc := d.Roster
	if svc == nil {
		svc = roster.NewService(d.Backend, d.Repairs)
	}
	clinic := d.ClinicName
	if clinic == "" {
		clinic = "Clinic"
	}
	return &Pages{
		backend: d.Backend,
		roster:  svc,
		repairs: d.Repairs,
		mailer:  d.Mailer,
		clinic:  clinic,
		doctors: newDoctorDirectory(10 * time.Minute),
	}
}

const doctorDirectoryKey = "doctors"

// doctorDirectory remembers the last doctor list read from the backend so a delete can
// answer with the remaining doctors without reading the list again.
type doctorDirectory struct {
	mu    sync.Mutex
	store *cache.Cache
}

func newDoctorDirectory(ttl time.Duration) *doctorDirectory {
	return &doctorDirectory{store: cache.New(ttl, 2*ttl)}
}

func (d *doctorDirectory) remember(list []model.Doctor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.store.SetDefault(doctorDirectoryKey, append([]model.Doctor(nil), list...))
}

func (d *doctorDirectory) list() ([]model.Doctor, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.store.Get(doctorDirectoryKey)
	if !ok {
		return nil, false
	}
	return append([]model.Doctor(nil), v.([]model.Doctor)...), true
}

// remove drops id from the remembered list and returns what is left. It reports false when
// nothing is remembered, in which case the caller has to read the list again.
func (d *doctorDirectory) remove(id string) ([]model.Doctor, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.store.Get(doctorDirectoryKey)
	if !ok {
		return nil, false
	}
	remaining := withoutDoctor(v.([]model.Doctor), id)
	d.store.SetDefault(doctorDirectoryKey, remaining)
	return append([]model.Doctor(nil), remaining...), true
}

func withoutDoctor(list []model.Doctor, id string) []model.Doctor {
	out := []model.Doctor{}
	for _, doc := range list {
		if doc.ID != id {
			out = append(out, doc)
		}
	}
	return out
}

// uploadFromForm reads an image file from a multipart field. A missing optional file, or a
// form that is not multipart at all, yields a nil upload. The returned closer must be called once the upload has been sent.
func uploadFromForm(c *gin.Context, field string, required bool) (*backend.Upload, func(), bool) {
	noop := func() {}
	header, err := c.FormFile(field)
	if (errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart)) && !required {
		return nil, noop, true
	}
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Image file is required", Err: err})
		return nil, noop, false
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		util.CallUserError(c, util.APIErrorParams{Msg: "Only image files are allowed", Err: errors.New("unsupported content type " + contentType)})
		return nil, noop, false
	}
	file, err := header.Open()
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to read uploaded file", Err: err})
		return nil, noop, false
	}
	return newUpload(header, file, contentType), func() { _ = file.Close() }, true
}

func newUpload(header *multipart.FileHeader, file multipart.File, contentType string) *backend.Upload {
	return &backend.Upload{Filename: header.Filename, ContentType: contentType, Content: file}
}

func bindFormOrRespond(c *gin.Context, dst interface{}, msg string) bool {
	if err := c.ShouldBind(dst); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
		return false
	}
	return true
}
