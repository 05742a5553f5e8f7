package main

import (
	"BikeSharing/src/config"
	"BikeSharing/src/datasource/file"
	"BikeSharing/src/metrics"
	"BikeSharing/src/render"
	"BikeSharing/src/report"
	"BikeSharing/src/storage"
	"BikeSharing/src/web"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron"
	"github.com/spf13/cobra"
)

const (
	jsonFile     = "config.json"
	dataJsonFile = "dataconfig.json"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configDir string

	rootCmd := &cobra.Command{
		Use:           "bikeshare",
		Short:         "Bike sharing order dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "./config", "directory holding config.json and dataconfig.json")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configDir)
		},
	}

	var start, end string
	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the dashboard figures as plain text",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, dcfg, err := loadConfig(configDir)
			if err != nil {
				return err
			}
			return runSummary(cmd, cfg, dcfg, start, end)
		},
	}
	summaryCmd.Flags().StringVar(&start, "start", "", "first day, YYYY-MM-DD (defaults to the first record)")
	summaryCmd.Flags().StringVar(&end, "end", "", "last day, YYYY-MM-DD (defaults to the last record)")

	rootCmd.AddCommand(serveCmd, summaryCmd)
	return rootCmd
}

// loadConfig 读取配置目录, 配置文件不存在时退回默认配置
func loadConfig(dir string) (*config.Config, *config.DataConfig, error) {
	// .env 可选
	_ = godotenv.Load()

	cfg, dcfg, err := config.LoadConfig(dir, jsonFile, dataJsonFile)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, dcfg = config.Default()
		return cfg, dcfg, nil
	}
	return cfg, dcfg, err
}

func datasetOptions(cfg *config.Config) file.Options {
	return file.Options{SheetName: cfg.Dataset.SheetName, Charset: cfg.Dataset.Charset}
}

func runSummary(cmd *cobra.Command, cfg *config.Config, dcfg *config.DataConfig, start, end string) error {
	ds, err := file.Load(cfg.Dataset.Path, datasetOptions(cfg))
	if err != nil {
		return err
	}
	s, err := report.NewSession(ds, start, end)
	if err != nil {
		return err
	}
	return render.Summary(cmd.OutOrStdout(), report.NewBuilder(dcfg).Build(s))
}

func runServe(ctx context.Context, configDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, dcfg, err := loadConfig(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 初始化日志系统
	logger, err := storage.NewLogger(cfg.LogName)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()
	logger.Tee(os.Stdout)
	level := storage.ParseLevel(cfg.LogLevel)
	logger.SetLevel(level)
	zl := logger.Zerolog()
	logger.Info(fmt.Sprintf("日志级别: %s, 数据文件: %s", level, cfg.Dataset.Path))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	src := file.NewSource(cfg.Dataset.Path, datasetOptions(cfg), logger)
	if err := src.Reload(); err != nil {
		// 数据不可用时照常启动, 页面返回 503
		logger.Warning("starting without dataset: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 定时检查日志大小
	c := cron.New()
	spec := fmt.Sprintf("@every %s", cfg.RotateInterval.Std())
	if err := c.AddFunc(spec, func() {
		if err := logger.CheckRotate(cfg); err != nil {
			logger.Error("log rotation failed: " + err.Error())
		}
	}); err != nil {
		return fmt.Errorf("schedule log rotation: %w", err)
	}
	c.Start()
	defer c.Stop()

	// SIGHUP: 重新打开日志文件并重新加载数据
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-hup:
				logger.Info("received SIGHUP, reopening " + cfg.LogName)
				if err := logger.Reopen(cfg.LogName); err != nil {
					zl.Error().Err(err).Msg("reopen log failed")
				}
				_ = src.Reload()
			case <-ctx.Done():
				return
			}
		}
	}()

	if cfg.Dataset.Watch {
		monitor, err := file.NewFileMonitor(cfg.Dataset.Path)
		if err != nil {
			zl.Error().Err(err).Str("path", cfg.Dataset.Path).Msg("file watch disabled")
		} else {
			go func() {
				if err := monitor.Watch(ctx, func(path string) {
					logger.Debug("dataset changed: " + path)
					_ = src.Reload()
				}); err != nil {
					zl.Error().Err(err).Msg("file watch stopped")
				}
			}()
		}
	}

	api := web.NewWebAPI(*zl, web.Config{
		Addr:            cfg.Server.Address,
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Std(),
		Dependencies: web.Dependencies{
			Source:   src,
			Builder:  report.NewBuilder(dcfg),
			Logs:     logger,
			LogoPath: cfg.LogoPath,
		},
	})
	if err := api.Start(ctx); err != nil {
		logger.Fatal("server stopped: " + err.Error())
		return err
	}
	logger.Info("server stopped")
	return nil
}
