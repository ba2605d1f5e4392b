package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieSetAndRead(t *testing.T) {
	t.Parallel()

	cm := NewCookieManager(24*time.Hour, true)
	rec := httptest.NewRecorder()
	cm.Set(rec, "opaque-token-value")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, RefreshCookieName, c.Name)
	assert.Equal(t, "opaque-token-value", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)
	assert.Equal(t, int((24 * time.Hour).Seconds()), c.MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	got, err := cm.Read(req)
	require.NoError(t, err)
	assert.Equal(t, "opaque-token-value", got)
}

func TestCookieClear(t *testing.T) {
	t.Parallel()

	cm := NewCookieManager(time.Hour, true)
	rec := httptest.NewRecorder()
	cm.Clear(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestCookieReadMissing(t *testing.T) {
	t.Parallel()

	cm := NewCookieManager(time.Hour, true)
	_, err := cm.Read(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Error(t, err)
}
