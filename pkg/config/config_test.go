package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) lookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	require.Equal(t, int64(10<<20), c.HTTP.MaxUploadBytes)
	require.Equal(t, 180, c.Limits.MaxCheckAgeDays)
	require.Equal(t, 10_000_000.0, c.Limits.MaxAmount)
	require.Equal(t, "checks", c.AMQP.Exchange)
	require.Equal(t, "check.created", c.AMQP.RoutingKey)
}

func TestApplyEnv(t *testing.T) {
	c := Default()
	err := c.applyEnv(mapLookup(map[string]string{
		"DB_DSN":             "host=db",
		"DB_AUTO_MIGRATE":    "no",
		"HTTP_ADDR":          ":9000",
		"TESSERACT_LANG":     "eng+fra",
		"MAX_UPLOAD_BYTES":   "1024",
		"UPLOAD_RATE":        "0.5",
		"UPLOAD_BURST":       "2",
		"MAX_CHECK_AGE_DAYS": "30",
		"MAX_AMOUNT":         "500",
		"LOG_LEVEL":          "debug",
	}))
	require.NoError(t, err)
	require.Equal(t, "host=db", c.DB.DSN)
	require.False(t, c.DB.AutoMigrate)
	require.Equal(t, ":9000", c.HTTP.Addr)
	require.Equal(t, []string{"eng", "fra"}, c.Tesseract.Languages)
	require.Equal(t, int64(1024), c.HTTP.MaxUploadBytes)
	require.Equal(t, 0.5, c.HTTP.UploadRate)
	require.Equal(t, 2, c.HTTP.UploadBurst)
	require.Equal(t, 30, c.Limits.MaxCheckAgeDays)
	require.Equal(t, 500.0, c.Limits.MaxAmount)
	require.Equal(t, "debug", c.Log.Level)
}

func TestApplyEnvBadNumbers(t *testing.T) {
	c := Default()
	err := c.applyEnv(mapLookup(map[string]string{
		"MAX_UPLOAD_BYTES": "ten",
		"MAX_AMOUNT":       "lots",
	}))
	require.ErrorContains(t, err, "MAX_UPLOAD_BYTES")
	require.ErrorContains(t, err, "MAX_AMOUNT")
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checkparser.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":7000"
tesseract:
  languages: [deu]
  page_seg_mode: 7
limits:
  max_amount: 2500
`), 0o644))

	t.Setenv("HTTP_ADDR", ":7001")
	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":7001", c.HTTP.Addr)
	require.Equal(t, []string{"deu"}, c.Tesseract.Languages)
	require.Equal(t, 7, c.Tesseract.PageSegMode)
	require.Equal(t, 2500.0, c.Limits.MaxAmount)
	require.Equal(t, 180, c.Limits.MaxCheckAgeDays)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tesseract:\n  page_seg_mode: 42\n"), 0o644))
	_, err := Load(path)
	require.ErrorContains(t, err, "invalid config")

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.ErrorContains(t, err, "read config")
}

func TestValidateRejectsZeroBurstWithRate(t *testing.T) {
	c := Default()
	c.HTTP.UploadRate = 2
	c.HTTP.UploadBurst = 0
	require.ErrorContains(t, c.Validate(), "upload_burst must be at least 1")

	c.HTTP.UploadRate = 0
	require.NoError(t, c.Validate(), "a zero rate disables the limiter, burst is unused")
}
