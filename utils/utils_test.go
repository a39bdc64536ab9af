package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "empty", incoming: ""},
		{name: "printable", incoming: "req-42", keep: true},
		{name: "too_long", incoming: strings.Repeat("a", maxRequestIDLength+1)},
		{name: "newline", incoming: "a\nb"},
		{name: "space", incoming: "a b"},
		{name: "non_ascii", incoming: "café"},
	}

	for _, tc := range tests {

		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := RequestID(tc.incoming)
			if tc.keep {
				require.Equal(t, tc.incoming, got)
				return
			}
			_, err := uuid.Parse(got)
			require.NoError(t, err)
		})
	}
}

func TestJSONError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		status    int
		wantError bool
	}{
		{name: "client_error_keeps_detail", status: http.StatusBadRequest, wantError: true},
		{name: "server_error_hides_detail", status: http.StatusInternalServerError},
	}

	for _, tc := range tests {

		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router := gin.New()
			router.GET("/", func(c *gin.Context) {
				c.Set(RequestIDKey, "req-1")
				JSONError(c, tc.status, errors.New("pq: connection reset"), "failed")
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			require.Equal(t, tc.status, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			require.Equal(t, "failed", body["message"])
			require.Equal(t, "req-1", body[RequestIDKey])

			_, hasError := body["error"]
			require.Equal(t, tc.wantError, hasError)
		})
	}
}
