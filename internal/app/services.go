// Package app wires configuration into the adapters and engines shared by
// the peopledir binaries.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"peopledir/internal/adapters/exportsink"
	"peopledir/internal/adapters/httpapi"
	"peopledir/internal/adapters/sqlite"
	"peopledir/internal/config"
	"peopledir/internal/directory"
	"peopledir/internal/hierarchy"
	"peopledir/internal/metrics"
	"peopledir/internal/permissions"
	"peopledir/internal/ports"
)

// Services holds the long-lived dependencies of one process
type Services struct {
	Config  *config.Config
	Log     *zap.Logger
	Client  *httpapi.Client
	Checker *permissions.Checker
	Flags   permissions.Flags
	Metrics *metrics.Collectors

	// State is nil when the state database could not be opened; history,
	// saved filters and drafts then live only in memory
	State ports.ClientState

	sink ports.ExportSink
}

// Open builds the services described by cfg. reg may be nil to skip metrics.
func Open(cfg *config.Config, log *zap.Logger, reg prometheus.Registerer) (*Services, error) {
	if log == nil {
		log = zap.NewNop()
	}

	client, err := httpapi.New(cfg.API.BaseURL,
		httpapi.WithToken(cfg.API.Token),
		httpapi.WithTimeout(cfg.APITimeout()),
		httpapi.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	checker, err := permissions.New(cfg.Permissions.PolicyFile, log)
	if err != nil {
		return nil, err
	}

	s := &Services{
		Config:  cfg,
		Log:     log,
		Client:  client,
		Checker: checker,
		Flags:   checker.FlagsFor(cfg.Permissions.Role),
	}
	if reg != nil {
		s.Metrics = metrics.New(reg)
	}

	store, err := sqlite.Open(cfg.State.DatabasePath, log)
	if err != nil {
		log.Warn("client state unavailable", zap.String("path", cfg.State.DatabasePath), zap.Error(err))
	} else {
		s.State = store
	}
	return s, nil
}

// Role is the configured permission role
func (s *Services) Role() string {
	return s.Config.Permissions.Role
}

// Sink opens the configured export sink on first use
func (s *Services) Sink(ctx context.Context) (ports.ExportSink, error) {
	if s.sink != nil {
		return s.sink, nil
	}
	sink, err := exportsink.Open(ctx, s.Config.Export)
	if err != nil {
		return nil, fmt.Errorf("export sink: %w", err)
	}
	s.sink = sink
	return sink, nil
}

// DirectoryOptions are the directory engine settings from config
func (s *Services) DirectoryOptions() []directory.Option {
	cfg := s.Config
	opts := []directory.Option{
		directory.WithPageSize(cfg.Directory.PageSize),
		directory.WithSort(cfg.Directory.SortBy, cfg.Directory.SortOrder),
		directory.WithCacheTTL(cfg.CacheTTL()),
		directory.WithDebounce(cfg.DebounceWindow(), nil),
		directory.WithSuggestionLimit(cfg.Directory.SuggestionLimit),
		directory.WithLogger(s.Log),
		directory.WithMetrics(s.Metrics),
	}
	if s.State != nil {
		opts = append(opts, directory.WithState(s.State))
	}
	return opts
}

// NewDirectory creates a directory engine against the backend
func (s *Services) NewDirectory(extra ...directory.Option) *directory.Engine {
	return directory.New(s.Client, append(s.DirectoryOptions(), extra...)...)
}

// HierarchyOptions are the org chart engine settings from config
func (s *Services) HierarchyOptions() []hierarchy.Option {
	return []hierarchy.Option{
		hierarchy.WithDefaultDepth(s.Config.Hierarchy.DefaultDepth),
		hierarchy.WithLoadDepth(s.Config.Hierarchy.LoadDepth),
		hierarchy.WithCacheTTL(s.Config.CacheTTL()),
		hierarchy.WithLogger(s.Log),
		hierarchy.WithMetrics(s.Metrics),
	}
}

// NewHierarchy creates an org chart engine against the backend
func (s *Services) NewHierarchy() *hierarchy.Engine {
	return hierarchy.New(s.Client, s.HierarchyOptions()...)
}

// Close releases the state database
func (s *Services) Close() error {
	if s.State != nil {
		return s.State.Close()
	}
	return nil
}
