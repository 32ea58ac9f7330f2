package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"checkparser/models"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Requires a docker daemon; enable with CHECKPARSER_IT=1.
func TestGormPostgres(t *testing.T) {
	if os.Getenv("CHECKPARSER_IT") != "1" {
		t.Skip("set CHECKPARSER_IT=1 to run the postgres integration test")
	}
	ctx := context.Background()

	server, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		Started: true,

		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "checks",
				"POSTGRES_PASSWORD": "checks",
				"POSTGRES_DB":       "checks",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Terminate(context.Background()) })

	host, err := server.Host(ctx)
	require.NoError(t, err)
	port, err := server.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=checks password=checks dbname=checks sslmode=disable", host, port.Port())
	g, err := OpenPostgres(dsn, true)
	require.NoError(t, err)
	defer g.Close()
	require.NoError(t, g.Ping(ctx))

	c := &models.Check{AmountNumeric: 250, Date: "2025-02-01", FraudDetected: true}
	require.NoError(t, g.Create(ctx, c))
	require.NotZero(t, c.ID)
	require.Regexp(t, `^CHK-`, c.CheckNumber)

	got, err := g.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, 250.0, got.AmountNumeric)
	require.Equal(t, "2025-02-01", got.Date)

	_, err = g.Get(ctx, c.ID+1000)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, g.Create(ctx, &models.Check{AmountNumeric: 10}))
	all, err := g.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Greater(t, all[0].ID, all[1].ID)

	start := time.Now().UTC().Add(-time.Hour)
	s, err := g.Summary(ctx, start, start.Add(2*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(2), s.Count)
	require.Equal(t, 260.0, s.TotalAmount)
	require.Equal(t, int64(1), s.FraudFlagged)
	require.Equal(t, int64(2), s.UnverifiedSignature)

	rows, err := g.Between(ctx, start, start.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// a second store over the same connection sees the same rows
	shared := NewGorm(g.db)
	again, err := shared.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, c.CheckNumber, again.CheckNumber)
}
