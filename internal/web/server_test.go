package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/icebreaker/internal/icebreaker"
)

var (
	ginModeOnce sync.Once
)

func setupGinTestMode() {
	ginModeOnce.Do(func() {
		gin.SetMode(gin.TestMode)
	})
}

type fakeGenerator struct {
	mu       sync.Mutex
	calls    [][2]string
	result   *icebreaker.Result
	err      error
	ctxHasLg bool
}

func (f *fakeGenerator) GenerateDetailed(ctx context.Context, name, company string) (*icebreaker.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, [2]string{name, company})
	_, f.ctxHasLg = gmw.GetGinCtxFromStdCtx(ctx)

	if strings.TrimSpace(name) == "" {
		return nil, icebreaker.ErrEmptyName
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestEngine(t *testing.T, gen Generator, opts Options) *gin.Engine {
	t.Helper()
	setupGinTestMode()

	engine, err := NewEngine(gen, opts)
	require.NoError(t, err)
	return engine
}

func TestNewEngineRequiresGenerator(t *testing.T) {
	_, err := NewEngine(nil, Options{})
	require.Error(t, err)
}

func TestHealth(t *testing.T) {
	engine := newTestEngine(t, &fakeGenerator{}, Options{})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "hello, world", w.Body.String())
}

func TestIndexRendersForm(t *testing.T) {
	engine := newTestEngine(t, &fakeGenerator{}, Options{})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Contains(t, body, "Full Name")
	require.Contains(t, body, "Company (Optional)")
	require.Contains(t, body, "Extracted Role &amp; Message")
}

func postForm(engine http.Handler, name, company string) *httptest.ResponseRecorder {
	form := url.Values{}
	form.Set("name", name)
	form.Set("company", company)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestFormSubmit(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		gen := &fakeGenerator{result: &icebreaker.Result{
			Message: "Hi Jensen, loved the Blackwell keynote.",
			Summary: "Role_Context: CEO at NVIDIA",
		}}
		engine := newTestEngine(t, gen, Options{})

		w := postForm(engine, "Jensen Huang", "NVIDIA")
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "Hi Jensen, loved the Blackwell keynote.")
		require.Contains(t, w.Body.String(), "Role_Context: CEO at NVIDIA")
		require.Equal(t, [][2]string{{"Jensen Huang", "NVIDIA"}}, gen.calls)
		require.True(t, gen.ctxHasLg)
	})

	t.Run("empty name", func(t *testing.T) {
		engine := newTestEngine(t, &fakeGenerator{}, Options{})

		w := postForm(engine, "  ", "")
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), emptyNameMessage)
	})

	t.Run("generation error", func(t *testing.T) {
		engine := newTestEngine(t, &fakeGenerator{err: errors.New("model down")}, Options{})

		w := postForm(engine, "Ada Lovelace", "")
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "An error occurred: model down")
	})
}

func postJSON(engine http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/icebreaker", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestAPIIcebreaker(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		gen := &fakeGenerator{result: &icebreaker.Result{
			RunID:   "run-1",
			Query:   `"Jensen Huang" NVIDIA linkedin profile`,
			Summary: "Role_Context: CEO at NVIDIA",
			Message: "Hi Jensen!",
		}}
		engine := newTestEngine(t, gen, Options{})

		w := postJSON(engine, `{"name":"Jensen Huang","company":"NVIDIA"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp IcebreakerResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, "Hi Jensen!", resp.Message)
		require.Equal(t, "Role_Context: CEO at NVIDIA", resp.Summary)
		require.Equal(t, `"Jensen Huang" NVIDIA linkedin profile`, resp.Query)
		require.Equal(t, "run-1", resp.RunID)
		require.Empty(t, resp.Error)
	})

	t.Run("empty name", func(t *testing.T) {
		engine := newTestEngine(t, &fakeGenerator{}, Options{})

		w := postJSON(engine, `{"name":""}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp IcebreakerResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, "Error: Please enter a name.", resp.Error)
	})

	t.Run("malformed body", func(t *testing.T) {
		gen := &fakeGenerator{}
		engine := newTestEngine(t, gen, Options{})

		w := postJSON(engine, `{"name":`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Empty(t, gen.calls)
	})

	t.Run("generation error", func(t *testing.T) {
		engine := newTestEngine(t, &fakeGenerator{err: errors.New("draft: quota exceeded")}, Options{})

		w := postJSON(engine, `{"name":"Ada Lovelace"}`)
		require.Equal(t, http.StatusBadGateway, w.Code)

		var resp IcebreakerResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, "An error occurred: draft: quota exceeded", resp.Error)
	})
}

func TestMCPHandlerMounted(t *testing.T) {
	var hits int
	mcpHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusAccepted)
	})
	engine := newTestEngine(t, &fakeGenerator{}, Options{MCPHandler: mcpHandler})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader("{}")))
	require.Equal(t, http.StatusAccepted, w.Code)
	require.Equal(t, 1, hits)
}

func TestAllowCORS(t *testing.T) {
	setupGinTestMode()
	t.Parallel()

	allowed := []string{".example.com", "localhost"}
	tests := []struct {
		name           string
		method         string
		origin         string
		expectedStatus int
		expectedCORS   bool
	}{
		{name: "No origin header", method: http.MethodGet, origin: "", expectedStatus: http.StatusOK},
		{name: "Subdomain origin", method: http.MethodGet, origin: "https://app.example.com", expectedStatus: http.StatusOK, expectedCORS: true},
		{name: "Apex origin", method: http.MethodPost, origin: "https://example.com", expectedStatus: http.StatusOK, expectedCORS: true},
		{name: "Exact host", method: http.MethodGet, origin: "http://localhost:3000", expectedStatus: http.StatusOK, expectedCORS: true},
		{name: "Preflight allowed", method: http.MethodOptions, origin: "https://app.example.com", expectedStatus: http.StatusNoContent, expectedCORS: true},
		{name: "Preflight denied", method: http.MethodOptions, origin: "https://evil.com", expectedStatus: http.StatusForbidden},
		{name: "Suffix trick", method: http.MethodGet, origin: "https://example.com.evil.com", expectedStatus: http.StatusOK},
		{name: "Lookalike domain", method: http.MethodGet, origin: "https://notexample.com", expectedStatus: http.StatusOK},
		{name: "Case insensitive", method: http.MethodGet, origin: "https://App.EXAMPLE.com", expectedStatus: http.StatusOK, expectedCORS: true},
		{name: "Malformed origin", method: http.MethodGet, origin: "not-a-valid-url", expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := gin.New()
			router.Use(allowCORS(allowed))
			router.Any("/test", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"message": "success"})
			})

			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code, "Status code mismatch")
			if tt.expectedCORS {
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
				assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
				assert.Equal(t, "Origin", w.Header().Get("Vary"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Methods"))
			}
		})
	}
}

func TestRunServerStopsOnContextCancel(t *testing.T) {
	setupGinTestMode()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- RunServer(ctx, "127.0.0.1:0", http.NotFoundHandler())
	}()
	cancel()

	require.NoError(t, <-done)
}
