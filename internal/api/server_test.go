package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugorjiizu/globus-assessment/internal/chat"
	"github.com/ugorjiizu/globus-assessment/internal/directory"
	"github.com/ugorjiizu/globus-assessment/internal/intent"
	"github.com/ugorjiizu/globus-assessment/internal/knowledge"
	"github.com/ugorjiizu/globus-assessment/internal/llm"
	"github.com/ugorjiizu/globus-assessment/internal/log"
	"github.com/ugorjiizu/globus-assessment/internal/session"
	"github.com/ugorjiizu/globus-assessment/internal/testutil"
)

type staticClassifier struct{ intent intent.Intent }

func (s staticClassifier) Classify(context.Context, string, []llm.Message) intent.Intent {
	return s.intent
}

type emptyRetriever struct{}

func (emptyRetriever) Search(context.Context, string, int) ([]knowledge.Result, error) {
	return nil, nil
}

func newTestServer(t *testing.T, in intent.Intent, rateBurst int) *Server {
	t.Helper()

	dir := directory.New([]directory.Customer{
		{
			ID:   1,
			Name: "Adaeze Okafor",
			Accounts: []directory.Account{
				{Number: "100023489", AccountType: "Savings", Currency: "NGN", Balance: 250000},
			},
			Cards: []directory.Card{
				{AccountNumber: "100023489", Issuer: "Verve", Type: "Debit", Status: directory.CardStatusActive},
			},
		},
	}, log.NewNop())

	pipeline := chat.New(
		staticClassifier{intent: in},
		emptyRetriever{},
		testutil.NewMockGenerator("Happy to help with that."),
		dir,
		chat.NewComposer(12000, 2400),
		chat.Config{MaxTokens: 512, Temperature: 0.4, TopK: 3},
		log.NewNop(),
	)

	srv, err := NewServer(ServerConfig{
		Logger:       log.NewNop(),
		Pipeline:     pipeline,
		SessionStore: session.NewStore(8),
		IsDev:        true,
		RateBurst:    rateBurst,
	})
	require.NoError(t, err)
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestNewServerValidation(t *testing.T) {
	_, err := NewServer(ServerConfig{SessionStore: session.NewStore(8)})
	assert.Error(t, err)

	_, err = NewServer(ServerConfig{Pipeline: &chat.Pipeline{}})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, intent.Greeting, 0)
	rec := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuthenticateAndChat(t *testing.T) {
	srv := newTestServer(t, intent.Greeting, 0)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/authenticate", `{"account_number":"100023489"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var auth chat.AuthResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &auth))
	assert.True(t, auth.Success)
	assert.Equal(t, "Adaeze Okafor", auth.Name)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies, "authenticate must set a session cookie")

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/chat", `{"message":"hello"}`, cookies)
	require.Equal(t, http.StatusOK, rec.Code)

	var res chat.ChatResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Happy to help with that.", res.Reply)
	assert.Equal(t, intent.Greeting, res.Intent)
}

func TestAuthenticateUnknownAccount(t *testing.T) {
	srv := newTestServer(t, intent.Greeting, 0)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/authenticate", `{"account_number":"000000000"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var auth chat.AuthResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &auth))
	assert.False(t, auth.Success)
	assert.NotEmpty(t, auth.Message)
}

func TestAuthenticateBadRequest(t *testing.T) {
	srv := newTestServer(t, intent.Greeting, 0)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"account_number"`},
		{"missing field", `{}`},
		{"unknown field", `{"account":"100023489"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/api/v1/authenticate", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestChatWithoutSession(t *testing.T) {
	srv := newTestServer(t, intent.GeneralInquiry, 0)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/chat", `{"message":"what are your branch hours?"}`, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "no_session", body.Error)
}

func TestChatAnonymousSession(t *testing.T) {
	srv := newTestServer(t, intent.GeneralInquiry, 0)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/authenticate", `{"account_number":"000000000"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies, "authenticate must set a session cookie even on failure")

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/chat", `{"message":"what are your branch hours?"}`, cookies)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestResetWithoutSession(t *testing.T) {
	srv := newTestServer(t, intent.Greeting, 0)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/reset", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBlockCardFlow(t *testing.T) {
	srv := newTestServer(t, intent.CardBlockRequest, 0)

	t.Run("no session", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/v1/block-card", `{"issuer":"Verve","card_type":"Debit"}`, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("authenticated", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/v1/authenticate", `{"account_number":"100023489"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		cookies := rec.Result().Cookies()

		rec = doJSON(t, srv, http.MethodPost, "/api/v1/block-card", `{"issuer":"Verve","card_type":"Debit"}`, cookies)
		require.Equal(t, http.StatusOK, rec.Code)

		var res chat.BlockResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.True(t, res.Success)
		assert.Regexp(t, `^BLK-[0-9A-F]{8}$`, res.Reference)
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/v1/block-card", `{"issuer":"Verve"}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, intent.Greeting, 0)
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/chat", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRateLimiting(t *testing.T) {
	srv := newTestServer(t, intent.Greeting, 2)

	var limited bool
	for i := 0; i < 5; i++ {
		rec := doJSON(t, srv, http.MethodPost, "/api/v1/chat", `{"message":"hi"}`, nil)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			assert.Equal(t, "1", rec.Header().Get("Retry-After"))
			break
		}
	}
	assert.True(t, limited, "expected a 429 within 5 requests at burst 2")
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t, intent.Greeting, 0)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/chat", `{"message":"hi"}`, nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
