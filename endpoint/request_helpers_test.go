package endpoint

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/ariebrainware/clinic-admin/util"
	"github.com/gin-gonic/gin"
)

// handlerCall mounts a single handler on a bare engine and drives one request through it.
// An empty route skips mounting, for engines that already carry their routes.
type handlerCall struct {
	method  string
	route   string
	target  string
	handler gin.HandlerFunc
	token   string
	body    interface{}
}

func serveCall(r *gin.Engine, call handlerCall) (*httptest.ResponseRecorder, util.APIResponse, error) {
	if call.route != "" && call.handler != nil {
		r.Handle(call.method, call.route, call.handler)
	}

	var body io.Reader = http.NoBody
	if call.body != nil {
		raw, err := json.Marshal(call.body)
		if err != nil {
			return nil, util.APIResponse{}, err
		}
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(call.method, call.target, body)
	if call.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if call.token != "" {
		req.Header.Set("session-token", call.token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp util.APIResponse
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			return w, resp, err
		}
	}
	return w, resp, nil
}
