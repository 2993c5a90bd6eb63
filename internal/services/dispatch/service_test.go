package dispatch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/refero/internal/common"
	"github.com/ternarybob/refero/internal/models"
	"github.com/ternarybob/refero/internal/services/sources"
)

func newTestDispatcher(t *testing.T, registry *sources.Service, timeout string) *Service {
	t.Helper()
	config := common.NewDefaultConfig()
	if timeout != "" {
		config.Webhook.Timeout = timeout
	}
	return NewService(registry, config, arbor.NewLogger())
}

func TestService_Post(t *testing.T) {
	ctx := context.Background()
	registry := sources.NewService(arbor.NewLogger())

	t.Run("unwraps the output envelope", func(t *testing.T) {
		stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			w.Write([]byte(`[{"output":"Here is what i found from the knowledge base"}]`))
		}))
		defer stub.Close()

		svc := newTestDispatcher(t, registry, "")
		output, err := svc.Post(ctx, map[string]interface{}{"chatInput": "test"}, stub.URL)
		require.NoError(t, err)
		assert.Equal(t, "Here is what i found from the knowledge base", output)
	})

	t.Run("object instead of array is malformed", func(t *testing.T) {
		stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"output":"x"}`))
		}))
		defer stub.Close()

		svc := newTestDispatcher(t, registry, "")
		_, err := svc.Post(ctx, map[string]interface{}{"chatInput": "test"}, stub.URL)
		require.Error(t, err)

		var malformed *MalformedResponseError
		assert.True(t, errors.As(err, &malformed))
	})

	t.Run("empty array is malformed", func(t *testing.T) {
		stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		}))
		defer stub.Close()

		svc := newTestDispatcher(t, registry, "")
		_, err := svc.Post(ctx, map[string]interface{}{"chatInput": "test"}, stub.URL)

		var malformed *MalformedResponseError
		require.True(t, errors.As(err, &malformed))
	})

	t.Run("missing output key is malformed", func(t *testing.T) {
		stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"answer":"x"}]`))
		}))
		defer stub.Close()

		svc := newTestDispatcher(t, registry, "")
		_, err := svc.Post(ctx, map[string]interface{}{"chatInput": "test"}, stub.URL)

		var malformed *MalformedResponseError
		require.True(t, errors.As(err, &malformed))
		assert.Contains(t, malformed.Detail, "output")
	})

	t.Run("non-string output is malformed", func(t *testing.T) {
		stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"output":42}]`))
		}))
		defer stub.Close()

		svc := newTestDispatcher(t, registry, "")
		_, err := svc.Post(ctx, map[string]interface{}{"chatInput": "test"}, stub.URL)

		var malformed *MalformedResponseError
		require.True(t, errors.As(err, &malformed))
	})

	t.Run("non-JSON body is malformed", func(t *testing.T) {
		stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>oops</html>`))
		}))
		defer stub.Close()

		svc := newTestDispatcher(t, registry, "")
		_, err := svc.Post(ctx, map[string]interface{}{"chatInput": "test"}, stub.URL)

		var malformed *MalformedResponseError
		require.True(t, errors.As(err, &malformed))
	})

	t.Run("non-2xx status carries code and body snippet", func(t *testing.T) {
		stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("upstream exploded"))
		}))
		defer stub.Close()

		svc := newTestDispatcher(t, registry, "")
		_, err := svc.Post(ctx, map[string]interface{}{"chatInput": "test"}, stub.URL)
		require.Error(t, err)

		var statusErr *HTTPStatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
		assert.Contains(t, statusErr.Body, "upstream exploded")
	})

	t.Run("long error body is truncated", func(t *testing.T) {
		stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(strings.Repeat("x", 2048)))
		}))
		defer stub.Close()

		svc := newTestDispatcher(t, registry, "")
		_, err := svc.Post(ctx, map[string]interface{}{"chatInput": "test"}, stub.URL)

		var statusErr *HTTPStatusError
		require.True(t, errors.As(err, &statusErr))
		assert.LessOrEqual(t, len(statusErr.Body), bodySnippetLimit+3)
	})

	t.Run("timeout surfaces as TransportError within bound", func(t *testing.T) {
		stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(2 * time.Second)
		}))
		defer stub.Close()

		svc := newTestDispatcher(t, registry, "100ms")

		start := time.Now()
		_, err := svc.Post(ctx, map[string]interface{}{"chatInput": "test"}, stub.URL)
		elapsed := time.Since(start)

		require.Error(t, err)
		var transportErr *TransportError
		assert.True(t, errors.As(err, &transportErr))
		assert.Less(t, elapsed, time.Second)
	})

	t.Run("connection refused surfaces as TransportError", func(t *testing.T) {
		svc := newTestDispatcher(t, registry, "")
		// Port from a closed listener
		stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		endpoint := stub.URL
		stub.Close()

		_, err := svc.Post(ctx, map[string]interface{}{"chatInput": "test"}, endpoint)
		require.Error(t, err)

		var transportErr *TransportError
		assert.True(t, errors.As(err, &transportErr))
	})

	t.Run("invalid endpoint URL rejected locally", func(t *testing.T) {
		svc := newTestDispatcher(t, registry, "")
		_, err := svc.Post(ctx, map[string]interface{}{"chatInput": "test"}, "not a url")
		require.Error(t, err)

		var transportErr *TransportError
		assert.False(t, errors.As(err, &transportErr))
	})
}

func TestService_Query(t *testing.T) {
	ctx := context.Background()

	t.Run("empty registry returns no-sources sentinel", func(t *testing.T) {
		registry := sources.NewService(arbor.NewLogger())
		svc := newTestDispatcher(t, registry, "")

		answer, err := svc.Query(ctx, "anything", nil)
		require.NoError(t, err)
		assert.Equal(t, NoSourcesMessage, answer)
	})

	t.Run("non-matching filter returns no-sources sentinel", func(t *testing.T) {
		registry := sources.NewService(arbor.NewLogger())
		_, err := registry.Register(ctx, "https://example.com/a", "")
		require.NoError(t, err)

		svc := newTestDispatcher(t, registry, "")
		answer, err := svc.Query(ctx, "anything", []string{"99"})
		require.NoError(t, err)
		assert.Equal(t, NoSourcesMessage, answer)
	})

	t.Run("empty query rejected", func(t *testing.T) {
		registry := sources.NewService(arbor.NewLogger())
		svc := newTestDispatcher(t, registry, "")

		_, err := svc.Query(ctx, "  ", nil)
		require.Error(t, err)
	})

	t.Run("fans out to resolved sources and joins answers", func(t *testing.T) {
		stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"output":"answer from ` + r.URL.Path + `"}]`))
		}))
		defer stub.Close()

		registry := sources.NewService(arbor.NewLogger())
		_, err := registry.Register(ctx, stub.URL+"/a", "")
		require.NoError(t, err)
		_, err = registry.Register(ctx, stub.URL+"/b", "")
		require.NoError(t, err)

		svc := newTestDispatcher(t, registry, "")
		answer, err := svc.Query(ctx, "what is refero", nil)
		require.NoError(t, err)

		lines := strings.Split(answer, "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "Source 1: answer from /a", lines[0])
		assert.Equal(t, "Source 2: answer from /b", lines[1])
	})

	t.Run("filter restricts the fan-out", func(t *testing.T) {
		stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"output":"ok"}]`))
		}))
		defer stub.Close()

		registry := sources.NewService(arbor.NewLogger())
		_, err := registry.Register(ctx, stub.URL+"/a", "")
		require.NoError(t, err)
		_, err = registry.Register(ctx, stub.URL+"/b", "")
		require.NoError(t, err)

		svc := newTestDispatcher(t, registry, "")
		answer, err := svc.Query(ctx, "query", []string{"2"})
		require.NoError(t, err)
		assert.Equal(t, "Source 2: ok", answer)
	})

	t.Run("partial failure noted inline", func(t *testing.T) {
		stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/bad" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(`[{"output":"ok"}]`))
		}))
		defer stub.Close()

		registry := sources.NewService(arbor.NewLogger())
		_, err := registry.Register(ctx, stub.URL+"/good", "")
		require.NoError(t, err)
		_, err = registry.Register(ctx, stub.URL+"/bad", "")
		require.NoError(t, err)

		svc := newTestDispatcher(t, registry, "")
		answer, err := svc.Query(ctx, "query", nil)
		require.NoError(t, err)

		assert.Contains(t, answer, "Source 1: ok")
		assert.Contains(t, answer, "Source 2: error:")
	})

	t.Run("all sources failing returns an error", func(t *testing.T) {
		stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer stub.Close()

		registry := sources.NewService(arbor.NewLogger())
		_, err := registry.Register(ctx, stub.URL, "")
		require.NoError(t, err)

		svc := newTestDispatcher(t, registry, "")
		_, err = svc.Query(ctx, "query", nil)
		require.Error(t, err)

		var statusErr *HTTPStatusError
		assert.True(t, errors.As(err, &statusErr))
	})

	t.Run("uses configured payload field", func(t *testing.T) {
		var gotBody string
		stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			buf := make([]byte, r.ContentLength)
			r.Body.Read(buf)
			gotBody = string(buf)
			w.Write([]byte(`[{"output":"ok"}]`))
		}))
		defer stub.Close()

		registry := sources.NewService(arbor.NewLogger())
		_, err := registry.Register(ctx, stub.URL, "")
		require.NoError(t, err)

		config := common.NewDefaultConfig()
		config.Webhook.PayloadField = models.PayloadFieldQuery
		svc := NewService(registry, config, arbor.NewLogger())

		_, err = svc.Query(ctx, "hello", nil)
		require.NoError(t, err)
		assert.JSONEq(t, `{"query":"hello"}`, gotBody)
	})
}

type staticComposer struct {
	answer string
}

func (c *staticComposer) Compose(ctx context.Context, query string, resolved []*models.DocumentSource) (string, error) {
	return c.answer, nil
}

func TestService_SetComposer(t *testing.T) {
	ctx := context.Background()
	registry := sources.NewService(arbor.NewLogger())
	_, err := registry.Register(ctx, "https://example.com", "")
	require.NoError(t, err)

	svc := newTestDispatcher(t, registry, "")
	svc.SetComposer(&staticComposer{answer: "composed elsewhere"})

	answer, err := svc.Query(ctx, "query", nil)
	require.NoError(t, err)
	assert.Equal(t, "composed elsewhere", answer)
}
