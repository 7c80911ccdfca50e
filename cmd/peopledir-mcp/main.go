package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	mcpadapter "peopledir/internal/adapters/mcp"
	"peopledir/internal/app"
	"peopledir/internal/config"
	"peopledir/internal/logging"
)

func main() {
	configFlag := flag.String("config", config.Path(), "path to the config file")
	apiFlag := flag.String("api-url", "", "backend base URL (overrides config)")
	roleFlag := flag.String("role", "", "permission role (overrides config)")
	metricsFlag := flag.String("metrics-addr", "", "serve prometheus metrics on this address (overrides config)")
	flag.Parse()

	if err := run(*configFlag, *apiFlag, *roleFlag, *metricsFlag); err != nil {
		fmt.Fprintf(os.Stderr, "peopledir-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, apiURL, role, metricsAddr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if role != "" {
		cfg.Permissions.Role = role
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}

	// stdout carries the MCP protocol, so logs go to stderr or a file
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	services, err := app.Open(cfg, log, reg)
	if err != nil {
		return err
	}
	defer services.Close()

	if cfg.Metrics.Addr != "" {
		stop := serveMetrics(cfg.Metrics.Addr, reg, log)
		defer stop()
	}

	sink, err := services.Sink(context.Background())
	if err != nil {
		log.Warn("exports disabled", zap.Error(err))
	}

	mcpServer := server.NewMCPServer(
		"peopledir-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	deps := mcpadapter.Deps{
		Directory:        services.Client,
		Hierarchy:        services.Client,
		Writer:           services.Client,
		Sink:             sink,
		Checker:          services.Checker,
		Role:             services.Role(),
		HierarchyOptions: services.HierarchyOptions(),
		Log:              log,
	}
	mcpadapter.RegisterReadTools(mcpServer, deps)
	mcpadapter.RegisterWriteTools(mcpServer, deps)

	log.Info("serving", zap.String("api", cfg.API.BaseURL), zap.String("role", services.Role()))
	return server.ServeStdio(mcpServer)
}

func serveMetrics(addr string, reg *prometheus.Registry, log *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics listener", zap.Error(err))
		}
	}()
	log.Info("metrics listening", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
