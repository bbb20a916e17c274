package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"farmai/internal/audit"
	"farmai/internal/auth"
	"farmai/internal/authz"
	"farmai/internal/ratelimiter"
)

const testSecret = "test-secret-do-not-use"

type memorySink struct {
	mu      sync.Mutex
	records []audit.Record
}

func (s *memorySink) Write(r audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	return nil
}

func (s *memorySink) all() []audit.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]audit.Record, len(s.records))
	copy(out, s.records)
	return out
}

func newTestApplication(t *testing.T) (*application, *memorySink) {
	t.Helper()

	policy, err := authz.NewPolicy(authz.DefaultConfig())
	require.NoError(t, err)

	logger := zap.NewNop().Sugar()
	sink := &memorySink{}

	app := &application{
		config: config{
			addr: ":0",
			env:  "test",
			auth: authConfig{
				token: tokenConfig{
					secret: testSecret,
					exp:    time.Hour,
					iss:    "farmai",
				},
			},
			rateLimiter: ratelimiter.Config{Enabled: false},
		},
		logger:        logger,
		authenticator: auth.NewJWTAuthenticator(testSecret, "farmai", "farmai", time.Hour, policy),
		engine:        authz.NewEngine(policy),
		audit:         audit.NewEmitter(sink, logger, 64),
	}
	return app, sink
}

func doJSON(t *testing.T, mux http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func loginToken(t *testing.T, mux http.Handler, identity string, roles ...string) string {
	t.Helper()

	rr := doJSON(t, mux, http.MethodPost, "/v1/auth/login", "", map[string]any{
		"identity": identity,
		"roles":    roles,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var envelope struct {
		Data TokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.AccessToken)
	return envelope.Data.AccessToken
}
