package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	flag "github.com/spf13/pflag"

	"viwoodsync/internal/config"
	"viwoodsync/internal/database"
	"viwoodsync/internal/fs/local"
	"viwoodsync/internal/fs/viwoods"
	syncer "viwoodsync/internal/sync"
	"viwoodsync/pkg/logger"
)

func usage() {
	fmt.Fprintf(os.Stderr, `viwoodsync mirrors notes from a Viwoods AiPaper tablet to a local directory.

Usage:
  viwoodsync [flags] <tablet-ip>

Enable "File Transfer (PC)" on the tablet, then point viwoodsync at the
address it displays. Without --all or --folder the stock note folders
(%s) are mirrored. Only new and changed
notes are fetched; state lives in a small cache inside the mirror.

Flags:
`, strings.Join(config.DefaultFolders, ", "))
	flag.PrintDefaults()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		all        = flag.Bool("all", false, "mirror every folder on the tablet")
		folder     = flag.StringP("folder", "f", "", "mirror a single folder, e.g. Paper/Papers")
		force      = flag.Bool("force", false, "forget the cache and download everything again")
		output     = flag.StringP("output", "o", "", "mirror directory (default ./viwoods_sync)")
		port       = flag.Int("port", 0, "file service port (default 8090)")
		configPath = flag.String("config", "", "config file (default ~/.viwoodsync.yaml)")
		logLevel   = flag.String("loglevel", "", "log level: debug, info, warn or error")
	)
	flag.Usage = usage
	flag.Parse()

	// 1. Load the config file, then let flags override it.
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if flag.NArg() > 0 {
		cfg.Tablet.Host = flag.Arg(0)
	}
	if *port != 0 {
		cfg.Tablet.Port = *port
	}
	if *output != "" {
		cfg.Sync.Output = *output
	}
	if *logLevel != "" {
		cfg.System.LogLevel = *logLevel
	}

	if cfg.Tablet.Host == "" {
		flag.Usage()
		return fmt.Errorf("tablet address required")
	}
	if *all && *folder != "" {
		return fmt.Errorf("--all and --folder are mutually exclusive")
	}

	// 2. Logging before anything that can fail loudly.
	if err := logger.Setup(cfg.System.LogLevel, cfg.System.LogFile); err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	slog.Info("viwoodsync starting",
		"tablet", cfg.Tablet.Host,
		"port", cfg.Tablet.Port,
		"output", cfg.Sync.Output,
	)

	// 3. The mirror directory must exist before the cache opens inside it.
	if err := os.MkdirAll(cfg.Sync.Output, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	db, err := database.NewBoltDB(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("open sync cache: %w", err)
	}
	defer db.Close()

	if *force {
		if n, cerr := db.Count(); cerr == nil && n > 0 {
			slog.Info("forced sync, dropping cache", "records", n)
		}
		if err := db.Clear(); err != nil {
			return fmt.Errorf("clear sync cache: %w", err)
		}
	}

	// 4. Wire the tablet client and the local mirror into the engine.
	client := viwoods.NewClient(&viwoods.Options{
		Host:    cfg.Tablet.Host,
		Port:    cfg.Tablet.Port,
		Timeout: cfg.Tablet.TimeoutDuration,
	})
	engine := syncer.NewEngine(&syncer.EngineOptions{
		Remote:         viwoods.NewAdapter(client),
		Mirror:         local.NewAdapter(cfg.Sync.Output),
		StateDB:        db,
		Folder:         *folder,
		All:            *all,
		DefaultFolders: cfg.Sync.Folders,
	})

	// 5. Graceful shutdown: a signal cancels the run between files.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		slog.Warn("signal received, stopping", "signal", sig)
		cancel()
	}()

	stats, err := engine.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("sync interrupted")
		}
		return err
	}

	// Per-file failures are reported but do not fail the process; the
	// next run retries them.
	slog.Info("mirror up to date",
		"output", cfg.Sync.Output,
		"downloaded", stats.Downloaded,
		"transferred", humanize.Bytes(uint64(stats.Bytes)),
	)
	if stats.Failed > 0 || stats.WalkErrors > 0 {
		slog.Warn("some items could not be synced",
			"failed_files", stats.Failed,
			"failed_folders", stats.WalkErrors,
		)
	}
	return nil
}
