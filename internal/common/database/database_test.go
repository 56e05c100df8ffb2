package database

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"activity-signup/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Postgres
// ==========================

func TestPostgresClient_Migrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS roster_events").
		WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err := NewPostgresFromDB(db).Migrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"migrations/001_roster_events.sql"}, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClient_Migrate_Failure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS roster_events").
		WillReturnError(errors.New("permission denied"))

	applied, err := NewPostgresFromDB(db).Migrate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "001_roster_events.sql")
	assert.Empty(t, applied)
}

func TestPostgresClient_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	client := NewPostgresFromDB(db)

	mock.ExpectPing()
	assert.NoError(t, client.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	err = client.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres ping failed")

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Redis
// ==========================

func TestRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	client := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))

	mr.Close()
	err := client.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}

// ==========================
// Elasticsearch
// ==========================

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func esResponse(status int, body string) *http.Response {
	header := http.Header{}
	header.Set("X-Elastic-Product", "Elasticsearch")
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestElasticsearchClient_EnsureIndex(t *testing.T) {
	tests := []struct {
		name          string
		existsStatus  int
		createStatus  int
		expectCreated bool
		expectErr     bool
	}{
		{name: "index missing is created", existsStatus: 404, createStatus: 200, expectCreated: true},
		{name: "index present is left alone", existsStatus: 200, expectCreated: false},
		{name: "create rejected", existsStatus: 404, createStatus: 400, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var created bool
			transport := roundTripFunc(func(req *http.Request) (*http.Response, error) {
				switch req.Method {
				case http.MethodHead:
					return esResponse(tt.existsStatus, ""), nil
				case http.MethodPut:
					created = true
					body, _ := io.ReadAll(req.Body)
					assert.Contains(t, string(body), "mappings")
					return esResponse(tt.createStatus, `{"acknowledged":true}`), nil
				}
				return esResponse(http.StatusOK, `{}`), nil
			})

			client, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{"http://es:9200"}}, transport)
			require.NoError(t, err)

			ok, err := client.EnsureIndex(context.Background(), "roster-events", `{"mappings":{}}`)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectCreated, ok)
			assert.Equal(t, tt.expectCreated, created)
		})
	}
}

func TestElasticsearchClient_Ping(t *testing.T) {
	status := http.StatusOK
	transport := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return esResponse(status, ""), nil
	})
	client, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{"http://es:9200"}}, transport)
	require.NoError(t, err)

	assert.NoError(t, client.Ping(context.Background()))

	status = http.StatusServiceUnavailable
	assert.Error(t, client.Ping(context.Background()))
}
