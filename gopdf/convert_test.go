package gopdf

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePDF = []byte("%PDF-1.4\n\x00\xff\xfe binary body\n%%EOF")

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("test-key", zerolog.Nop(), WithBaseURL(server.URL+"/"))
	require.NoError(t, err)
	return client
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

func TestNewClient(t *testing.T) {
	t.Run("missing API key", func(t *testing.T) {
		_, err := NewClient("", zerolog.Nop())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.Error(), "API key is required")
	})

	t.Run("defaults", func(t *testing.T) {
		client, err := NewClient("k", zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, DefaultBaseURL, client.BaseURL())
		assert.Equal(t, time.Duration(0), client.httpClient.Timeout)
	})

	t.Run("with timeout", func(t *testing.T) {
		client, err := NewClient("k", zerolog.Nop(), WithTimeout(5*time.Second))
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
	})

	t.Run("with custom http client", func(t *testing.T) {
		custom := &http.Client{Timeout: 10 * time.Second}
		client, err := NewClient("k", zerolog.Nop(), WithHTTPClient(custom))
		require.NoError(t, err)
		assert.Same(t, custom, client.httpClient)
	})

	t.Run("base url trailing slash trimmed", func(t *testing.T) {
		client, err := NewClient("k", zerolog.Nop(), WithBaseURL("http://localhost:8080/api/"))
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080/api", client.BaseURL())
	})
}

func TestConvertWireFormat(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/go", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "test-key", user)
		assert.Equal(t, "", pass)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://example.com", body["source"])
		assert.Equal(t, map[string]any{"username": "u", "password": "p"}, body["auth"])
		assert.Equal(t, true, body["landscape"])

		w.Write(samplePDF)
	})

	req := client.NewRequest().SetAuth("u", "p").Set("landscape", true)
	_, err := req.Convert(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", req.Get(KeySource))
}

func TestConvertSuccess(t *testing.T) {
	t.Run("raw bytes", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write(samplePDF)
		})

		req := client.NewRequest()
		assert.Nil(t, req.Result())

		res, err := req.Convert(context.Background(), "<h1>hi</h1>")
		require.NoError(t, err)
		assert.Equal(t, samplePDF, res.Bytes())
		assert.False(t, res.IsHosted())
		assert.Nil(t, res.HostedFile())
		assert.Same(t, res, req.Result())
	})

	t.Run("hosted file descriptor", func(t *testing.T) {
		client := newTestClient(t, respond(http.StatusOK, `{"url":"https://files.example/a.pdf","expires_in":172800}`))

		res, err := client.NewRequest().SetFilename("a.pdf").Convert(context.Background(), "<h1>hi</h1>")
		require.NoError(t, err)
		assert.True(t, res.IsHosted())
		assert.Equal(t, HostedFile{"url": "https://files.example/a.pdf", "expires_in": float64(172800)}, res.HostedFile())
		assert.Nil(t, res.Bytes())
	})

	t.Run("hosted file with undecodable body", func(t *testing.T) {
		client := newTestClient(t, respond(http.StatusOK, `not json`))

		_, err := client.NewRequest().SetFilename("a.pdf").Convert(context.Background(), "x")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrProtocol)
	})

	t.Run("second conversion overwrites the result", func(t *testing.T) {
		var mu sync.Mutex
		calls := 0
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			calls++
			n := calls
			mu.Unlock()
			if n == 1 {
				io.WriteString(w, "first")
				return
			}
			io.WriteString(w, "second")
		})

		req := client.NewRequest()
		_, err := req.Convert(context.Background(), "a")
		require.NoError(t, err)
		_, err = req.Convert(context.Background(), "b")
		require.NoError(t, err)

		assert.Equal(t, []byte("second"), req.Result().Bytes())
		assert.Equal(t, "b", req.Get(KeySource))
	})
}

func TestConvertFailureClearsResult(t *testing.T) {
	var fail atomic.Bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusForbidden)
			io.WriteString(w, `{}`)
			return
		}
		w.Write(samplePDF)
	})

	req := client.NewRequest()
	_, err := req.Convert(context.Background(), "a")
	require.NoError(t, err)

	fail.Store(true)
	_, err = req.Convert(context.Background(), "a")
	require.Error(t, err)
	assert.Nil(t, req.Result())
}

func TestConvertErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		kind     Kind
		code     int
		message  string
		sentinel error
		hasBody  bool
	}{
		{
			name:     "400 with message",
			status:   400,
			body:     `{"message":"bad field"}`,
			kind:     KindInvalidRequest,
			code:     400,
			message:  "bad field",
			sentinel: ErrInvalidRequest,
			hasBody:  true,
		},
		{
			name:     "400 with empty message falls back to error",
			status:   400,
			body:     `{"message":"","error":"source missing"}`,
			kind:     KindInvalidRequest,
			code:     400,
			message:  "source missing",
			sentinel: ErrInvalidRequest,
			hasBody:  true,
		},
		{
			name:     "400 with field errors",
			status:   400,
			body:     `{"errors":{"email":["is required","is invalid"]}}`,
			kind:     KindInvalidRequest,
			code:     400,
			message:  "email : is required",
			sentinel: ErrInvalidRequest,
			hasBody:  true,
		},
		{
			name:     "400 takes the first field in document order",
			status:   400,
			body:     `{"errors":{"zeta":["comes first"],"alpha":["comes second"]}}`,
			kind:     KindInvalidRequest,
			code:     400,
			message:  "zeta : comes first",
			sentinel: ErrInvalidRequest,
			hasBody:  true,
		},
		{
			name:     "400 with non-string error uses field errors",
			status:   400,
			body:     `{"error":{"nested":true},"errors":{"source":["must be a url"]}}`,
			kind:     KindInvalidRequest,
			code:     400,
			message:  "source : must be a url",
			sentinel: ErrInvalidRequest,
			hasBody:  true,
		},
		{
			name:     "400 with empty errors",
			status:   400,
			body:     `{"errors":{}}`,
			kind:     KindInvalidRequest,
			code:     400,
			message:  "invalid request",
			sentinel: ErrInvalidRequest,
			hasBody:  true,
		},
		{
			name:     "401",
			status:   401,
			body:     `{"message":"nope"}`,
			kind:     KindInvalidAPIKey,
			code:     401,
			message:  "please indicate a valid API key",
			sentinel: ErrInvalidAPIKey,
			hasBody:  true,
		},
		{
			name:     "403",
			status:   403,
			body:     `{}`,
			kind:     KindNoCredits,
			code:     403,
			message:  "no remaining credits left",
			sentinel: ErrNoCredits,
			hasBody:  true,
		},
		{
			name:     "429",
			status:   429,
			body:     `{"retry_after":30}`,
			kind:     KindRateLimit,
			code:     429,
			message:  "rate limit exceeded",
			sentinel: ErrRateLimit,
			hasBody:  true,
		},
		{
			name:     "500",
			status:   500,
			body:     `{"message":"boom"}`,
			kind:     KindServer,
			code:     500,
			message:  "a fatal error occurred",
			sentinel: ErrServer,
			hasBody:  true,
		},
		{
			name:     "unexpected status",
			status:   418,
			body:     `{}`,
			kind:     KindServer,
			code:     500,
			message:  "a fatal error occurred",
			sentinel: ErrServer,
			hasBody:  true,
		},
		{
			name:     "undecodable body",
			status:   502,
			body:     `<html>Bad Gateway</html>`,
			kind:     KindProtocol,
			code:     500,
			message:  "invalid response from server",
			sentinel: ErrProtocol,
			hasBody:  false,
		},
		{
			name:     "json null body",
			status:   400,
			body:     `null`,
			kind:     KindProtocol,
			code:     500,
			message:  "invalid response from server",
			sentinel: ErrProtocol,
			hasBody:  false,
		},
		{
			name:     "json string body",
			status:   503,
			body:     `"maintenance"`,
			kind:     KindProtocol,
			code:     500,
			message:  "invalid response from server",
			sentinel: ErrProtocol,
			hasBody:  false,
		},
		{
			name:     "json array body",
			status:   400,
			body:     `["source is required"]`,
			kind:     KindProtocol,
			code:     500,
			message:  "invalid response from server",
			sentinel: ErrProtocol,
			hasBody:  false,
		},
		{
			name:     "400 with numeric message falls back to error",
			status:   400,
			body:     `{"message":42,"error":"bad"}`,
			kind:     KindInvalidRequest,
			code:     400,
			message:  "bad",
			sentinel: ErrInvalidRequest,
			hasBody:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, respond(tt.status, tt.body))

			res, err := client.NewRequest().Convert(context.Background(), "x")
			require.Error(t, err)
			assert.Nil(t, res)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.ErrorIs(t, err, tt.sentinel)

			if tt.hasBody {
				assert.NotNil(t, apiErr.Body)
			} else {
				assert.Nil(t, apiErr.Body)
			}
		})
	}
}

func TestConvertTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := NewClient("test-key", zerolog.Nop(), WithBaseURL(url))
	require.NoError(t, err)

	_, err = client.NewRequest().Convert(context.Background(), "x")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsProtocolError())
	assert.Equal(t, 500, apiErr.Code)
	assert.Nil(t, apiErr.Body)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestConvertCanceledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(samplePDF)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.NewRequest().Convert(ctx, "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProtocol)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSave(t *testing.T) {
	dir := t.TempDir()

	t.Run("before any conversion", func(t *testing.T) {
		req := newRequest(t)
		_, err := req.Save(filepath.Join(dir, "none.pdf"))
		assert.ErrorIs(t, err, ErrNoResult)
	})

	t.Run("after byte conversion", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write(samplePDF)
		})
		req := client.NewRequest()
		_, err := req.Convert(context.Background(), "x")
		require.NoError(t, err)

		path := filepath.Join(dir, "out.pdf")
		n, err := req.Save(path)
		require.NoError(t, err)
		assert.Equal(t, len(samplePDF), n)

		written, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, samplePDF, written)
	})

	t.Run("hosted result", func(t *testing.T) {
		client := newTestClient(t, respond(http.StatusOK, `{"url":"u"}`))
		req := client.NewRequest().SetFilename("a.pdf")
		_, err := req.Convert(context.Background(), "x")
		require.NoError(t, err)

		_, err = req.Save(filepath.Join(dir, "hosted.pdf"))
		assert.ErrorIs(t, err, ErrHostedResult)
	})
}

func TestConvertTo(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["filename"]; ok {
			io.WriteString(w, `{"file":"kept"}`)
			return
		}
		w.Write(samplePDF)
	})

	t.Run("in memory", func(t *testing.T) {
		res, err := client.ConvertTo(context.Background(), "x", nil, "")
		require.NoError(t, err)
		assert.Equal(t, samplePDF, res.Bytes())
	})

	t.Run("hosted via options", func(t *testing.T) {
		res, err := client.ConvertTo(context.Background(), "x", map[string]any{"filename": "k.pdf"}, "")
		require.NoError(t, err)
		assert.Equal(t, HostedFile{"file": "kept"}, res.HostedFile())
	})

	t.Run("saved to output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.pdf")
		_, err := client.ConvertTo(context.Background(), "x", nil, path)
		require.NoError(t, err)

		written, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, samplePDF, written)
	})

	t.Run("hosted result cannot be saved", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.pdf")
		res, err := client.ConvertTo(context.Background(), "x", map[string]any{"filename": "k.pdf"}, path)
		assert.ErrorIs(t, err, ErrHostedResult)
		assert.NotNil(t, res)
	})
}

func TestClassify(t *testing.T) {
	t.Run("empty success body is kept", func(t *testing.T) {
		res, err := classify(http.StatusOK, []byte{}, false)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Len())
	})

	t.Run("field errors given as a string", func(t *testing.T) {
		_, err := classify(http.StatusBadRequest, []byte(`{"errors":{"source":"is required"}}`), false)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "source : is required", apiErr.Message)
	})

	t.Run("field with no messages", func(t *testing.T) {
		_, err := classify(http.StatusBadRequest, []byte(`{"errors":{"source":[]}}`), false)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "source", apiErr.Message)
	})

	t.Run("json array body is undecodable", func(t *testing.T) {
		_, err := classify(http.StatusInternalServerError, []byte(`["x"]`), false)
		assert.ErrorIs(t, err, ErrProtocol)
	})
}
