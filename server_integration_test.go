package main

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"testing"

	"checkparser/models"
	"checkparser/pkg/config"

	"github.com/stretchr/testify/require"
)

// setupIntegrationServer swaps the memory store for Postgres. Integration tests
// are opt-in: set DB_DSN_TEST=1 and DB_DSN to run them.
func setupIntegrationServer(t *testing.T) (*server, http.Handler) {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	st, err := openStore(config.DB{DSN: os.Getenv("DB_DSN"), AutoMigrate: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	s, _, _ := newTestServer(t, nil)
	s.store = st
	return s, newHandler(s)
}

func TestFullFlow(t *testing.T) {
	_, h := setupIntegrationServer(t)

	// 1. Upload a check
	resp := upload(t, h, "check.png", checkPNG(t))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var created struct {
		Check models.Check `json:"check"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	require.NotZero(t, created.Check.ID)
	id := strconv.FormatUint(uint64(created.Check.ID), 10)

	// 2. Fetch it back
	resp = performRequest(h, http.MethodGet, "/api/v1/checks/"+id, nil, "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// 3. It is first in the listing
	resp = performRequest(h, http.MethodGet, "/api/v1/checks", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	var list []models.Check
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.NotEmpty(t, list)
	require.Equal(t, created.Check.ID, list[0].ID)

	// 4. Validation of the stored record
	resp = performRequest(h, http.MethodGet, "/api/v1/checks/"+id+"/validation", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)

	// 5. Health reports the database
	resp = performRequest(h, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"database":"ok"`)
}

func TestMigrateCommand(t *testing.T) {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	require.NoError(t, runMigrate(config.DB{DSN: os.Getenv("DB_DSN")}))
	require.ErrorIs(t, runMigrate(config.DB{}), errNoDSN)
}
