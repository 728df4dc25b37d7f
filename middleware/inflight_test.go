package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInFlightGuard_RejectsDuplicateWhileRunning(t *testing.T) {
	noRedis(t)
	guard := NewInFlightGuard(time.Minute)

	entered := make(chan struct{})
	release := make(chan struct{})
	r := gin.New()
	r.Use(guard.Handler())
	r.POST("/visits/:visitId/patients", func(c *gin.Context) {
		close(entered)
		<-release
		c.Status(http.StatusCreated)
	})

	send := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/visits/v1/patients", nil)
		req.Header.Set(SessionHeader, "tok-a")
		r.ServeHTTP(w, req)
		return w.Code
	}

	var wg sync.WaitGroup
	var first int
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = send()
	}()

	<-entered
	assert.Equal(t, http.StatusConflict, send())

	close(release)
	wg.Wait()
	assert.Equal(t, http.StatusCreated, first)
}

func TestInFlightGuard_ReleasesAfterCompletion(t *testing.T) {
	noRedis(t)
	guard := NewInFlightGuard(0)

	r := gin.New()
	r.Use(guard.Handler())
	r.PATCH("/patients/:id/fee", ok)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/patients/p1/fee", nil)
		req.Header.Set(SessionHeader, "tok-a")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestInFlightGuard_IgnoresReads(t *testing.T) {
	noRedis(t)
	guard := NewInFlightGuard(time.Minute)
	require.NoError(t, guard.local.Add("inflight:tok-a:GET:/doctors", struct{}{}, time.Minute))

	r := gin.New()
	r.Use(guard.Handler())
	r.GET("/doctors", ok)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/doctors", nil)
	req.Header.Set(SessionHeader, "tok-a")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInFlightGuard_Redis(t *testing.T) {
	mock := setupRedisMock(t)
	guard := NewInFlightGuard(time.Minute)
	key := "inflight:tok-b:DELETE:/gallery/3"

	r := gin.New()
	r.Use(guard.Handler())
	r.DELETE("/gallery/:id", ok)

	mock.ExpectSetNX(key, 1, time.Minute).SetVal(true)
	mock.ExpectDel(key).SetVal(1)
	mock.ExpectSetNX(key, 1, time.Minute).SetVal(false)

	do := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/gallery/3", nil)
		req.Header.Set(SessionHeader, "tok-b")
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusConflict, do())
	assert.NoError(t, mock.ExpectationsWereMet())
}
