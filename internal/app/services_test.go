package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peopledir/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.State.DatabasePath = filepath.Join(dir, "state.db")
	cfg.Export.FSRoot = filepath.Join(dir, "exports")
	return cfg
}

func TestOpenWiresServices(t *testing.T) {
	cfg := testConfig(t)
	cfg.Permissions.Role = "manager"

	s, err := Open(cfg, nil, prometheus.NewRegistry())
	require.NoError(t, err)
	defer s.Close()

	assert.NotNil(t, s.Client)
	assert.NotNil(t, s.State)
	assert.NotNil(t, s.Metrics)
	assert.True(t, s.Flags.CanExport)
	assert.False(t, s.Flags.CanEdit)
	assert.Equal(t, "manager", s.Role())

	sink, err := s.Sink(context.Background())
	require.NoError(t, err)
	again, err := s.Sink(context.Background())
	require.NoError(t, err)
	assert.Same(t, sink, again)
}

func TestOpenWithoutStateKeepsWorking(t *testing.T) {
	cfg := testConfig(t)
	cfg.State.DatabasePath = ""

	s, err := Open(cfg, nil, nil)
	require.NoError(t, err)
	defer s.Close()

	assert.Nil(t, s.State)
	assert.Nil(t, s.Metrics)

	d := s.NewDirectory()
	defer d.Close()
	assert.Equal(t, 20, d.Snapshot().Query.PageSize)

	h := s.NewHierarchy()
	defer h.Close()
}

func TestOpenRejectsBadBaseURL(t *testing.T) {
	cfg := testConfig(t)
	cfg.API.BaseURL = "ftp://people.example.com"
	_, err := Open(cfg, nil, nil)
	assert.Error(t, err)
}
