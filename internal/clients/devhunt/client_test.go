package devhunt

import (
	"bytes"
	"context"
	"errors"
	"github.com/devhunt/devhunt-agent/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"
)

const baseURL = "http://localhost:8000"

type mockHTTPClient struct {
	mock.Mock
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	resp, _ := args.Get(0).(*http.Response)
	return resp, args.Error(1)
}

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func fileResponse(t *testing.T, file string) *http.Response {
	content, err := os.ReadFile(file)
	require.NoError(t, err)
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewBuffer(content))}
}

func newTestClient(t *testing.T, credentials store.KeyValueStore) (*Client, *mockHTTPClient) {
	t.Helper()
	httpClient := &mockHTTPClient{}
	client := NewClient(baseURL+"/", credentials)
	client.SetHTTPClient(httpClient)
	return client, httpClient
}

func Test_DevhuntClient_List_WhenPaginated_ShouldReturnResults(t *testing.T) {

	credentials := store.NewMemory()
	require.NoError(t, credentials.Set(context.Background(), store.KeyAccessToken, "access"))
	client, httpClient := newTestClient(t, credentials)

	httpClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.Method == http.MethodGet &&
			req.URL.String() == baseURL+"/options/skills/" &&
			req.Header.Get("Authorization") == "Bearer access"
	})).Return(fileResponse(t, "testdata/skills_page.json"), nil)

	items, err := client.List(context.Background(), "/options/skills/")
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.JSONEq(t, `{"id": 1, "skill": "Go", "codename": "go"}`, string(items[0]))
	httpClient.AssertExpectations(t)
}

func Test_DevhuntClient_ListPage_ShouldExposeEnvelope(t *testing.T) {

	client, httpClient := newTestClient(t, store.NewMemory())
	httpClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.URL.String() == baseURL+"/jobs/?search=golang" && req.Header.Get("Authorization") == ""
	})).Return(fileResponse(t, "testdata/skills_page.json"), nil)

	page, err := client.ListPage(context.Background(), "/jobs/", url.Values{"search": {"golang"}})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Count)
	assert.True(t, page.HasNext())
	assert.Nil(t, page.Previous)
}

func Test_DevhuntClient_List_WhenBareArray_ShouldReturnItems(t *testing.T) {

	client, httpClient := newTestClient(t, nil)
	httpClient.On("Do", mock.Anything).Return(response(http.StatusOK, `[{"id": 3, "level": "Senior"}]`), nil)

	items, err := client.List(context.Background(), "/options/levels/")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func Test_DevhuntClient_Update_ShouldPatchFormEncodedItem(t *testing.T) {

	client, httpClient := newTestClient(t, store.NewMemory())
	httpClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		if req.Method != http.MethodPatch || req.URL.String() != baseURL+"/options/skills/7/" {
			return false
		}
		if req.Header.Get("Content-Type") != "application/x-www-form-urlencoded" {
			return false
		}
		body, _ := io.ReadAll(req.Body)
		return string(body) == "codename=go-lang&skill=Go+Lang"
	})).Return(response(http.StatusOK, `{"id": 7, "skill": "Go Lang", "codename": "go-lang"}`), nil)

	body, err := client.Update(context.Background(), "/options/skills/", 7,
		url.Values{"skill": {"Go Lang"}, "codename": {"go-lang"}})
	require.NoError(t, err)
	assert.Contains(t, string(body), `"id": 7`)
	httpClient.AssertExpectations(t)
}

func Test_DevhuntClient_Delete_WhenNoContent_ShouldSucceed(t *testing.T) {

	client, httpClient := newTestClient(t, store.NewMemory())
	httpClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.Method == http.MethodDelete && req.URL.String() == baseURL+"/options/job-types/4/"
	})).Return(response(http.StatusNoContent, ""), nil).Once()

	assert.NoError(t, client.Delete(context.Background(), "/options/job-types/", 4))
	httpClient.AssertExpectations(t)
}

func Test_DevhuntClient_WhenUnauthorized_ShouldReturnSentinel(t *testing.T) {

	client, httpClient := newTestClient(t, store.NewMemory())
	httpClient.On("Do", mock.Anything).Return(response(http.StatusUnauthorized, `{"detail": "token expired"}`), nil)

	_, err := client.List(context.Background(), "/options/skills/")
	assert.True(t, IsUnauthorized(err))
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func Test_DevhuntClient_WhenValidationError_ShouldKeepBody(t *testing.T) {

	client, httpClient := newTestClient(t, store.NewMemory())
	httpClient.On("Do", mock.Anything).Return(response(http.StatusBadRequest, `{"skill": ["already exists"]}`), nil)

	_, err := client.Create(context.Background(), "/options/skills/", url.Values{"skill": {"Go"}})
	statusErr, ok := IsClientError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, statusErr.Code)
	assert.Equal(t, `{"skill": ["already exists"]}`, statusErr.Body)
}

func Test_DevhuntClient_WhenServerError_ShouldNotBeClientError(t *testing.T) {

	client, httpClient := newTestClient(t, store.NewMemory())
	httpClient.On("Do", mock.Anything).Return(response(http.StatusInternalServerError, "boom"), nil)

	_, err := client.List(context.Background(), "/options/skills/")
	require.Error(t, err)
	_, ok := IsClientError(err)
	assert.False(t, ok)
}

func Test_DevhuntClient_WhenServerHangs_ShouldTimeOut(t *testing.T) {

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL, store.NewMemory())
	client.SetTimeout(50 * time.Millisecond)

	start := time.Now()
	_, err := client.List(context.Background(), "/options/skills/")
	assert.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func Test_DevhuntClient_ObtainToken_ShouldDecodeTokens(t *testing.T) {

	client, httpClient := newTestClient(t, store.NewMemory())
	httpClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		body, _ := io.ReadAll(req.Body)
		return req.Method == http.MethodPost && req.URL.Path == tokenPath &&
			string(body) == "password=secret&username=admin"
	})).Return(response(http.StatusOK, `{"access": "a", "refresh": "r"}`), nil)

	tokens, err := client.ObtainToken(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, Tokens{Access: "a", Refresh: "r"}, tokens)
}

func Test_DevhuntClient_ExchangeOAuthCode_WhenNoAccessToken_ShouldFail(t *testing.T) {

	client, httpClient := newTestClient(t, store.NewMemory())
	httpClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.URL.Path == "/auth/oauth/github/"
	})).Return(response(http.StatusOK, `{}`), nil)

	_, err := client.ExchangeOAuthCode(context.Background(), "github", "code")
	assert.Error(t, err)
}
