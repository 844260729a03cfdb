package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optiretina/portal/internal/api/response"
)

func TestNewMeta_GeneratesUUID(t *testing.T) {
	meta := response.NewMeta("")

	_, err := uuid.Parse(meta.RequestID)
	assert.NoError(t, err, "requestId should be a valid UUID")
}

func TestNewMeta_UsesProvidedRequestID(t *testing.T) {
	meta := response.NewMeta("my-custom-request-id")

	assert.Equal(t, "my-custom-request-id", meta.RequestID)
}

func TestNewMeta_TimestampIsRFC3339(t *testing.T) {
	meta := response.NewMeta("")

	_, err := time.Parse(time.RFC3339, meta.Timestamp)
	require.NoError(t, err, "timestamp should be valid RFC3339")
}

func TestSuccess_WritesCorrectEnvelope(t *testing.T) {
	w := httptest.NewRecorder()

	response.Success(w, http.StatusOK, map[string]string{"key": "value"}, "test-req-id")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var env map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &env)
	require.NoError(t, err)

	data := env["data"].(map[string]interface{})
	assert.Equal(t, "value", data["key"])
	assert.Nil(t, env["error"])

	meta := env["meta"].(map[string]interface{})
	assert.Equal(t, "test-req-id", meta["requestId"])
}

func TestErr_WritesErrorEnvelope(t *testing.T) {
	w := httptest.NewRecorder()

	response.Err(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials", "req-1")

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var env map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &env)
	require.NoError(t, err)

	assert.Nil(t, env["data"])
	apiErr := env["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_CREDENTIALS", apiErr["code"])
	assert.Equal(t, "Invalid credentials", apiErr["message"])
}

func TestErrWithDetails_IncludesDetails(t *testing.T) {
	w := httptest.NewRecorder()

	details := []map[string]string{{"field": "email", "message": "email is required"}}
	response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", details, "req-2")

	var env map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &env)
	require.NoError(t, err)

	apiErr := env["error"].(map[string]interface{})
	assert.NotNil(t, apiErr["details"])
}
