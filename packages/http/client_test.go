package http

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, c *Client, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := c.Do(context.Background(), req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestClient_WithTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(WithTimeout(50 * time.Millisecond))
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	_, err = client.Do(context.Background(), req)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Client.Timeout exceeded")
}

func TestClient_FollowRedirects(t *testing.T) {
	redirectCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/final" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`final`))
			return
		}
		redirectCount++
		http.Redirect(w, r, "/final", http.StatusFound)
	}))
	defer server.Close()

	client, err := NewClient(WithFollowRedirects(true))
	require.NoError(t, err)
	resp := get(t, client, server.URL+"/redirect")

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "final", string(body))
	assert.Equal(t, 1, redirectCount)
}

func TestClient_NoFollowRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	}))
	defer server.Close()

	client, err := NewClient(WithFollowRedirects(false))
	require.NoError(t, err)
	resp := get(t, client, server.URL+"/redirect")

	assert.Equal(t, 302, resp.StatusCode)
}

func TestClient_MaxRedirects(t *testing.T) {
	redirectCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		redirectCount++
		http.Redirect(w, r, "/redirect", http.StatusFound)
	}))
	defer server.Close()

	client, err := NewClient(WithMaxRedirects(3))
	require.NoError(t, err)
	resp := get(t, client, server.URL+"/redirect")

	assert.Equal(t, 302, resp.StatusCode)
	assert.Equal(t, 4, redirectCount)
}

func TestClient_MaxRedirectsBoundary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a":
			http.Redirect(w, r, "/b", http.StatusFound)
		case "/b":
			http.Redirect(w, r, "/c", http.StatusFound)
		default:
			_, _ = w.Write([]byte("done"))
		}
	}))
	defer server.Close()

	client, err := NewClient(WithMaxRedirects(2))
	require.NoError(t, err)
	resp := get(t, client, server.URL+"/a")
	assert.Equal(t, 200, resp.StatusCode)

	client, err = NewClient(WithMaxRedirects(1))
	require.NoError(t, err)
	resp = get(t, client, server.URL+"/a")
	assert.Equal(t, 302, resp.StatusCode)
	assert.Equal(t, "/c", resp.Header.Get("Location"))
}

func TestClient_WithProxy(t *testing.T) {
	var gotAuth, gotURL string
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Proxy-Authorization")
		gotURL = r.URL.String()
		w.WriteHeader(http.StatusOK)
	}))
	defer proxy.Close()

	client, err := NewClient(WithProxy(proxy.URL, "user", "secret"))
	require.NoError(t, err)
	resp := get(t, client, "http://api.example.invalid/things")

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "http://api.example.invalid/things", gotURL)
	assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("user:secret")), gotAuth)
}

func TestClient_WithProxyWithoutLogin(t *testing.T) {
	var gotAuth string
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Proxy-Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer proxy.Close()

	client, err := NewClient(WithProxy(proxy.URL, "", ""))
	require.NoError(t, err)
	resp := get(t, client, "http://api.example.invalid/")

	assert.Equal(t, 204, resp.StatusCode)
	assert.Empty(t, gotAuth)
}

func TestClient_InvalidProxy(t *testing.T) {
	_, err := NewClient(WithProxy("not a proxy", "", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid proxy URL")
}

func TestClient_InsecureTLS(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	strict, err := NewClient()
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	_, err = strict.Do(context.Background(), req)
	assert.Error(t, err)

	insecure, err := NewClient(WithValidateSSL(false))
	require.NoError(t, err)
	resp := get(t, insecure, server.URL)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestClient_CACertificates(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewClient(WithCACertificates(filepath.Join(t.TempDir(), "nope.pem")))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading certificate")
	})

	t.Run("no PEM data", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.pem")
		require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
		_, err := NewClient(WithCACertificates(path))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no PEM certificate")
	})
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid http URL",
			url:     "http://example.com/path",
			wantErr: false,
		},
		{
			name:    "valid https URL",
			url:     "https://example.com/path",
			wantErr: false,
		},
		{
			name:    "invalid scheme",
			url:     "ftp://example.com",
			wantErr: true,
			errMsg:  "apix only supports http(s) protocols",
		},
		{
			name:    "missing scheme",
			url:     "example.com/path",
			wantErr: true,
			errMsg:  "unsupported URL scheme",
		},
		{
			name:    "file scheme",
			url:     "file:///etc/passwd",
			wantErr: true,
			errMsg:  "unsupported URL scheme",
		},
		{
			name:    "missing host",
			url:     "http:///path",
			wantErr: true,
			errMsg:  "URL must have a host",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
