package httpclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/NSBM-SE-Projects/atelier/pkg/errors"
)

func responseWithBody(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseResponseError_Envelope(t *testing.T) {
	resp := responseWithBody(http.StatusNotFound, `{"error":"NOT_FOUND","message":"product with id 9 not found"}`)

	err := ParseResponseError(resp)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "product with id 9 not found", appErr.Message)
}

func TestParseResponseError_Unauthorized(t *testing.T) {
	resp := responseWithBody(http.StatusUnauthorized, `{"error":"UNAUTHORIZED","message":"authentication required"}`)

	err := ParseResponseError(resp)

	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestParseResponseError_UnstructuredBody(t *testing.T) {
	resp := responseWithBody(http.StatusBadGateway, "upstream timeout")

	err := ParseResponseError(resp)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestParseResponseError_EmptyBody(t *testing.T) {
	resp := responseWithBody(http.StatusInternalServerError, "")

	err := ParseResponseError(resp)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(http.StatusBadRequest))
	assert.True(t, IsClientError(http.StatusConflict))
	assert.False(t, IsClientError(http.StatusInternalServerError))
	assert.False(t, IsClientError(http.StatusOK))
}
