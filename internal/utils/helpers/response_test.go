package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"tourbook/internal/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteError_Operational(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	WriteError(rec, req, fmt.Errorf("wrap: %w", apperrors.Forbidden("You do not have permission to perform this action")))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "fail", body["status"])
	assert.Equal(t, "You do not have permission to perform this action", body["message"])
}

func TestWriteError_UnexpectedIsGeneric(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	WriteError(rec, req, errors.New("pq: relation users does not exist"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Something went very wrong!", body["message"])
}

func TestList_IncludesResults(t *testing.T) {
	rec := httptest.NewRecorder()
	List(rec, 2, map[string]any{"tours": []int{1, 2}})

	body := decode(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.EqualValues(t, 2, body["results"])
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestEmailBuilders_EscapeInput(t *testing.T) {
	html := BuildWelcomeHTML("<b>Ann</b> Smith", "https://x.test/me")
	assert.Contains(t, html, "&lt;b&gt;Ann&lt;/b&gt;")
	assert.Contains(t, html, "https://x.test/me")

	reset := BuildPasswordResetHTML("Ann", "https://x.test/api/v1/users/resetPassword/abc", 10)
	assert.Contains(t, reset, "resetPassword/abc")
	assert.Contains(t, reset, "10 minutes")
}
