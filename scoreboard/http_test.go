package scoreboard

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHTTPHandler(t *testing.T) {
	h := NewHTTPHandler(NewMemoryStore(), slog.New(slog.DiscardHandler))

	t.Run("Empty list", func(t *testing.T) {
		rec := serve(h, http.MethodGet, "/scores", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("Submit", func(t *testing.T) {
		for _, tt := range []struct {
			body string
			rank int
		}{
			{`{"name": "ada", "score": 1200, "lines": 4, "level": 1}`, 1},
			{`{"name": "bob", "score": 3000, "lines": 12, "level": 2}`, 1},
			{`{"name": "cyd", "score": 0, "lines": 0, "level": 1}`, 3},
		} {
			rec := serve(h, http.MethodPost, "/scores", tt.body)
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
			var res struct {
				ID   string `json:"id"`
				Rank int    `json:"rank"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.NotEmpty(t, res.ID)
			assert.Equal(t, tt.rank, res.Rank)
		}
	})

	t.Run("List", func(t *testing.T) {
		rec := serve(h, http.MethodGet, "/scores?limit=2", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var entries []Entry
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
		assert.Equal(t, []string{"bob", "ada"}, names(entries))
	})

	t.Run("Bad requests", func(t *testing.T) {
		tests := []struct {
			method, target, body string
		}{
			{http.MethodGet, "/scores?limit=abc", ""},
			{http.MethodGet, "/scores?limit=0", ""},
			{http.MethodPost, "/scores", `{"name": "ada"`},
			{http.MethodPost, "/scores", `{"score": 10, "level": 1}`},
			{http.MethodPost, "/scores", `{"name": "ada", "score": -5, "level": 1}`},
			{http.MethodPost, "/scores", `{"name": "ada", "score": 5, "level": 0}`},
			{http.MethodPost, "/scores", `{"name": "   ", "score": 5, "level": 1}`},
		}
		for _, tt := range tests {
			rec := serve(h, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, tt.target+" "+tt.body)
		}
	})

	t.Run("Health", func(t *testing.T) {
		rec := serve(h, http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
