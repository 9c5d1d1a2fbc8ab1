package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"horse.fit/tscat/internal/cli"
	"horse.fit/tscat/internal/db"
	"horse.fit/tscat/internal/httpapi"
	"horse.fit/tscat/internal/lookup"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	file := fs.String("file", "", "Catalog to serve (default CATALOG_PATH)")
	host := fs.String("host", "", "Host interface to bind (default HTTP_HOST)")
	port := fs.Int("port", 0, "HTTP port (default HTTP_PORT)")
	watch := fs.Duration("watch", -1, "Catalog poll interval, 0 disables (default CATALOG_RELOAD_INTERVAL)")
	readTimeout := fs.Duration("read-timeout", 10*time.Second, "HTTP read timeout")
	writeTimeout := fs.Duration("write-timeout", 30*time.Second, "HTTP write timeout")
	shutdownTimeout := fs.Duration("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *port < 0 || *port > 65535 {
		fmt.Fprintln(os.Stderr, "--port must be between 1 and 65535")
		return 2
	}

	cfg, logger, err := loadEnvConfig(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	catalogPath := strings.TrimSpace(*file)
	if catalogPath == "" {
		catalogPath = strings.TrimSpace(cfg.CatalogPath)
	}
	if catalogPath == "" {
		fmt.Fprintln(os.Stderr, "--file or CATALOG_PATH is required")
		return 2
	}
	bindHost := strings.TrimSpace(*host)
	if bindHost == "" {
		bindHost = cfg.HTTPHost
	}
	bindPort := *port
	if bindPort == 0 {
		bindPort = cfg.HTTPPort
	}
	interval := *watch
	if interval < 0 {
		interval = cfg.CatalogReloadInterval
	}

	service := lookup.NewService(nil, logger)
	if _, err := service.Reload(catalogPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load catalog: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		cancel()
	}()

	var pinger httpapi.Pinger
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := db.NewPool(dbCtx, cfg)
		dbCancel()
		if err != nil {
			logger.Error().Err(err).Msg("serve failed to connect to database")
			fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
			return 1
		}
		defer pool.Close()
		pinger = pool
	}

	if interval > 0 {
		watcher := lookup.NewWatcher(service, catalogPath, interval, logger)
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("catalog watcher failed")
			}
		}()
	}

	srv := httpapi.NewServer(service, pinger, logger, httpapi.Options{
		Host:            bindHost,
		Port:            bindPort,
		ReadTimeout:     *readTimeout,
		WriteTimeout:    *writeTimeout,
		ShutdownTimeout: *shutdownTimeout,
		CatalogPath:     catalogPath,
		AllowedOrigins:  cfg.CORSAllowedOriginsList(),
	})

	if err := srv.Start(ctx); err != nil {
		logger.Error().Err(err).Str("host", bindHost).Int("port", bindPort).Msg("server failed")
		fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
		return 1
	}
	return 0
}
