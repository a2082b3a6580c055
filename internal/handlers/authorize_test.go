package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (a *testApp) getAuthorize(params url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/oauth/authorize?"+params.Encode(), nil)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestAuthorizeUnknownClient(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.getAuthorize(url.Values{
		"response_type": {"code"},
		"client_id":     {"no-such-client"},
		"redirect_uri":  {"https://client.example.com/callback"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_client", decodeJSON(t, w)["error"])
}

// A mismatched redirect URI must never receive a redirect.
func TestAuthorizeRedirectMismatchRenderedInline(t *testing.T) {
	app := newTestApp(t, nil)
	client := app.seedClient(t, []string{"authorization_code"})

	w := app.getAuthorize(url.Values{
		"response_type": {"code"},
		"client_id":     {client.ClientID},
		"redirect_uri":  {"https://evil.example.com/callback"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", decodeJSON(t, w)["error"])
}

func TestAuthorizeErrorRedirects(t *testing.T) {
	app := newTestApp(t, nil)
	client := app.seedClient(t, []string{"authorization_code"})

	// No resource owner session: the error flows back to the verified
	// redirect URI.
	w := app.getAuthorize(url.Values{
		"response_type": {"code"},
		"client_id":     {client.ClientID},
		"redirect_uri":  {client.RedirectURI},
		"state":         {"xyz"},
	})
	require.Equal(t, http.StatusFound, w.Code)

	redirect, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "access_denied", redirect.Query().Get("error"))
	assert.Equal(t, "xyz", redirect.Query().Get("state"))
}

func TestAuthorizeUnsupportedResponseTypeRedirects(t *testing.T) {
	app := newTestApp(t, nil)
	client := app.seedClient(t, []string{"authorization_code"})

	w := app.getAuthorize(url.Values{
		"response_type": {"token"},
		"client_id":     {client.ClientID},
		"redirect_uri":  {client.RedirectURI},
	})
	require.Equal(t, http.StatusFound, w.Code)

	redirect, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "unsupported_response_type", redirect.Query().Get("error"))
}
