package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/reachflow/funnel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu      sync.Mutex
	results []domain.SubmissionResult
}

func (r *recordingObserver) ObserveGateway(result domain.SubmissionResult, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func backend(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

var lead = domain.LeadRecord{"students": "Plus de 150 étudiants", "name": "Amina"}

func TestGateway_Scenarios(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		outcome domain.Outcome
		weak    bool
		reason  string
	}{
		{"StructuredSuccess", 200, `{"status":"success"}`, domain.OutcomeSucceeded, false, domain.ReasonStatusSuccess},
		{"StructuredFailure", 200, `{"status":"error","message":"quota"}`, domain.OutcomeFailed, false, domain.ReasonStatusMismatch},
		{"UnstructuredOK", 200, `<html>Moved</html>`, domain.OutcomeSucceeded, true, domain.ReasonUnstructured2xx},
		{"UnstructuredError", 502, `Bad Gateway`, domain.OutcomeFailed, false, domain.ReasonUnstructuredNon2x},
		{"StructuredSuccessOnErrorStatus", 500, `{"status":"success"}`, domain.OutcomeSucceeded, false, domain.ReasonStatusSuccess},
		{"EmptyBody", 204, ``, domain.OutcomeSucceeded, true, domain.ReasonUnstructured2xx},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := backend(t, tc.status, tc.body)
			obs := &recordingObserver{}
			g := New(srv.URL, WithObserver(obs))

			result, err := g.Submit(context.Background(), lead)
			require.NoError(t, err)
			assert.Equal(t, tc.outcome, result.Outcome)
			assert.Equal(t, tc.weak, result.Weak)
			assert.Equal(t, tc.reason, result.Reason)
			assert.Equal(t, tc.status, result.StatusCode)
			assert.Len(t, obs.results, 1)
		})
	}
}

func TestGateway_RequestShape(t *testing.T) {
	var (
		method, contentType string
		got                 map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		contentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, `{"status":"success"}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Submit(context.Background(), lead)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "text/plain;charset=utf-8", contentType)
	assert.Equal(t, map[string]string(lead), got)
}

func TestGateway_FollowsRedirects(t *testing.T) {
	final := backend(t, 200, `{"status":"success"}`)
	redirect := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL, http.StatusFound)
	}))
	defer redirect.Close()

	result, err := New(redirect.URL).Submit(context.Background(), lead)
	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.False(t, result.Weak)
}

func TestGateway_MissingDestination(t *testing.T) {
	result, err := New("").Submit(context.Background(), lead)
	assert.ErrorIs(t, err, ErrMissingDestination)
	assert.ErrorIs(t, err, domain.ErrMisconfigured)
	assert.Equal(t, domain.OutcomeFailed, result.Outcome)
	assert.Equal(t, domain.ReasonMisconfigured, result.Reason)
}

func TestGateway_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	result, err := New(url).Submit(context.Background(), lead)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeFailed, result.Outcome)
	assert.Equal(t, domain.ReasonTransport, result.Reason)
}

func TestGateway_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	result, err := New(srv.URL, WithTimeout(50*time.Millisecond)).Submit(context.Background(), lead)
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonTransport, result.Reason)
}

func TestResolve(t *testing.T) {
	assert.Equal(t, domain.ReasonStatusMismatch, Resolve(200, []byte(`null`)).Reason)
	assert.Equal(t, domain.ReasonStatusMismatch, Resolve(200, []byte(`["success"]`)).Reason)
	assert.Equal(t, domain.ReasonStatusMismatch, Resolve(200, []byte(`{"status":"SUCCESS"}`)).Reason)
	assert.Equal(t, domain.ReasonUnstructured2xx, Resolve(299, []byte(`ok`)).Reason)
	assert.Equal(t, domain.ReasonUnstructuredNon2x, Resolve(302, []byte(`ok`)).Reason)
}
