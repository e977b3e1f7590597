package httputil

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardClientPost(t *testing.T) {
	t.Parallel()

	var gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := NewStandardClient(nil)
	resp, err := client.Post(srv.URL, "application/json", strings.NewReader(`{"fps":10}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, `{"fps":10}`, gotBody)
}

func TestStandardClientDo(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "pong")
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := NewStandardClient(srv.Client()).Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))
}

func TestMockClientReplaysQueuedResponses(t *testing.T) {
	t.Parallel()

	mock := NewMockHTTPClient().
		AddResponse(http.StatusOK, `{"run_id":"run_1"}`).
		AddResponse(http.StatusBadRequest, `{"error":"too few samples"}`)

	resp, err := mock.Post("http://server/api/integrate", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"run_id":"run_1"}`, string(body))

	resp, err = mock.Post("http://server/api/integrate", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Equal(t, 2, mock.RequestCount())
}

func TestMockClientEmptyQueueDefaultsToOK(t *testing.T) {
	t.Parallel()

	mock := NewMockHTTPClient()
	resp, err := mock.Post("http://server/ping", "text/plain", nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body)
}

func TestMockClientErrorResponse(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	mock := NewMockHTTPClient().AddErrorResponse(boom)

	_, err := mock.Post("http://server/api/integrate", "application/json", nil)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, mock.RequestCount(), "failed requests are still recorded")
}

func TestMockClientRecordsReadableBodies(t *testing.T) {
	t.Parallel()

	mock := NewMockHTTPClient()
	_, err := mock.Post("http://server/api/integrate", "application/json", strings.NewReader(`{"name":"crash-a"}`))
	require.NoError(t, err)

	req := mock.GetRequest(0)
	require.NotNil(t, req)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	data, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"crash-a"}`, string(data))
}

func TestMockClientGetRequestOutOfRange(t *testing.T) {
	t.Parallel()

	mock := NewMockHTTPClient()
	assert.Nil(t, mock.GetRequest(0))
	assert.Nil(t, mock.GetRequest(-1))
}
