package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestLimiterRefills(t *testing.T) {
	now := time.Unix(0, 0)
	l := New(2, 1)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))

	now = now.Add(time.Second)
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))

	now = now.Add(time.Hour)
	assert.Equal(t, 2, l.Sweep())
}

func TestMiddlewareLimitsSelectedMethods(t *testing.T) {
	e := echo.New()
	l := New(1, 0)
	e.Use(l.Middleware(http.MethodPost))
	e.POST("/r", func(c echo.Context) error { return c.NoContent(http.StatusCreated) })
	e.GET("/r", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	send := func(method string) int {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(method, "/r", nil))
		return rec.Code
	}
	assert.Equal(t, http.StatusCreated, send(http.MethodPost))
	assert.Equal(t, http.StatusTooManyRequests, send(http.MethodPost))
	assert.Equal(t, http.StatusOK, send(http.MethodGet))
	assert.Equal(t, http.StatusOK, send(http.MethodGet))
}
