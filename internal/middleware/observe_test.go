package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	method, route string
	status        int
}

type fakeObserver struct {
	mu  sync.Mutex
	got []observation
}

func (f *fakeObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, observation{method, route, status})
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	obs := &fakeObserver{}
	e := echo.New()
	e.Use(Metrics(obs))
	e.GET("/api/games/:id", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTeapot) })

	for _, p := range []string{"/api/games/1", "/api/games/2", "/boom", "/nowhere"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	require.Len(t, obs.got, 4)
	assert.Equal(t, observation{"GET", "/api/games/:id", 200}, obs.got[0])
	assert.Equal(t, observation{"GET", "/api/games/:id", 200}, obs.got[1])
	assert.Equal(t, observation{"GET", "/boom", http.StatusTeapot}, obs.got[2])
	assert.Equal(t, http.StatusNotFound, obs.got[3].status)
}

func TestRequestLoggerAndID(t *testing.T) {
	var buf bytes.Buffer
	prev := log.StandardLogger().Out
	log.SetOutput(&buf)
	log.SetFormatter(&log.JSONFormatter{})
	t.Cleanup(func() {
		log.SetOutput(prev)
		log.SetFormatter(&log.TextFormatter{})
	})

	e := echo.New()
	e.Use(RequestID(), RequestLogger())
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	id := rec.Header().Get(echo.HeaderXRequestID)
	assert.Len(t, id, 36)
	assert.Contains(t, buf.String(), `"request_id":"`+id+`"`)
	assert.Contains(t, buf.String(), `"status":200`)
	assert.Contains(t, buf.String(), `"route":"/ping"`)
}
