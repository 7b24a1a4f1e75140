package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viperioribus/shorewatch/internal/domain"
	"github.com/viperioribus/shorewatch/internal/observability"
)

const (
	testToken         = "test-token"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second, observability.NewTestLogger())
}

func TestClient_Login_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, contentTypeJSON, r.Header.Get(headerContentType))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "lifeguard7", body["login"])
		assert.Equal(t, "hunter2", body["password"])

		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(tokenResponse{
			AccessToken: "issued-token",
			TokenType:   "bearer",
		}))
	}))
	defer srv.Close()

	token, err := testClient(srv.URL).Login(context.Background(), "lifeguard7", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "issued-token", token)
}

func TestClient_Login_BadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"invalid credentials"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Login(context.Background(), "lifeguard7", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestClient_Login_MissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"token_type":"bearer"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Login(context.Background(), "lifeguard7", "hunter2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_token")
}

func TestClient_Register_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/register", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := testClient(srv.URL).Register(context.Background(), "newguard", "hunter2")
	assert.NoError(t, err)
}

func TestClient_Register_Conflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"detail":"login already taken"}`))
	}))
	defer srv.Close()

	err := testClient(srv.URL).Register(context.Background(), "newguard", "hunter2")
	var rejection *domain.RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, http.StatusConflict, rejection.Status)
	assert.Equal(t, "login already taken", rejection.Message)
}

func TestClient_Beaches_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/beaches", r.URL.Path)
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`[{"id":"1","name":"Santa Monica"},{"id":"2","name":"Venice Beach"}]`))
	}))
	defer srv.Close()

	beaches, err := testClient(srv.URL).Beaches(context.Background(), testToken)
	require.NoError(t, err)
	require.Len(t, beaches, 2)
	assert.Equal(t, domain.Beach{ID: "1", Name: "Santa Monica"}, beaches[0])
}

func TestClient_BeachPosts_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/beach-posts/1", r.URL.Path)
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`[{"id":"a","beach_id":"1","name":"Post A"}]`))
	}))
	defer srv.Close()

	posts, err := testClient(srv.URL).BeachPosts(context.Background(), testToken, "1")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, domain.BeachPost{ID: "a", BeachID: "1", Name: "Post A"}, posts[0])
}

func TestClient_BeachPosts_ExpiredToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).BeachPosts(context.Background(), "stale", "1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestClient_SubmitIncident_PayloadShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/inform2", r.URL.Path)
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		assert.Equal(t, "req-42", r.Header.Get("X-Request-ID"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "2026-08-14", payload["date"])
		assert.Equal(t, "Santa Monica - Post A", payload["beach_name"])
		assert.Equal(t, float64(14), payload["hour"])
		assert.Equal(t, float64(30), payload["minute"])
		assert.Equal(t, "J. Alvarez", payload["person_name"])
		assert.Equal(t, float64(34), payload["age"])
		assert.Equal(t, "08001", payload["postal_code"])
		assert.Equal(t, []any{"rescue", "first_aid"}, payload["incidences"])

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := domain.IncidentReport{
		Date:       time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC),
		Hour:       14,
		Minute:     30,
		PersonName: "J. Alvarez",
		Age:        34,
		PostalCode: "08001",
		Incidences: []domain.Incidence{domain.IncidenceRescue, domain.IncidenceFirstAid},
		BeachName:  "Santa Monica - Post A",
	}
	err := testClient(srv.URL).SubmitIncident(context.Background(), testToken, r, "req-42")
	assert.NoError(t, err)
}

func TestClient_SubmitEnvironment_PayloadShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/inform4", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "2026-08-14", payload["date"])
		assert.Equal(t, 12.5, payload["wind_speed"])
		assert.Equal(t, 24.0, payload["temperature"])
		assert.Equal(t, 0.6, payload["wave_height"])

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := domain.EnvironmentReport{
		Date:        time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC),
		Hour:        9,
		WindSpeed:   12.5,
		Temperature: 24.0,
		WaveHeight:  0.6,
		BeachName:   "Santa Monica - Post A",
	}
	err := testClient(srv.URL).SubmitEnvironment(context.Background(), testToken, r, "req-43")
	assert.NoError(t, err)
}

func TestClient_SubmitIncident_ServerRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"incidence vocabulary mismatch"}`))
	}))
	defer srv.Close()

	err := testClient(srv.URL).SubmitIncident(context.Background(), testToken, domain.IncidentReport{}, "req-44")
	var rejection *domain.RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, http.StatusUnprocessableEntity, rejection.Status)
	assert.Equal(t, "incidence vocabulary mismatch", rejection.Message)
}

func TestClient_RejectionFallsBackToRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Beaches(context.Background(), testToken)
	var rejection *domain.RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, "upstream unavailable", rejection.Message)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 50*time.Millisecond, observability.NewTestLogger())
	_, err := c.Beaches(context.Background(), testToken)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUnauthorized)

	var rejection *domain.RejectionError
	assert.False(t, errors.As(err, &rejection))
}
