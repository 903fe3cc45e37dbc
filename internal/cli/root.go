package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandialabs/wind-hids/internal/app"
	"github.com/sandialabs/wind-hids/internal/config"
	"github.com/sandialabs/wind-hids/internal/logging"
)

var (
	cfgFile    string
	logLevel   string
	hmiAddr    string
	hmiPort    int
	serverTime int64
	offline    bool
	offlineDir string
	debugLevel string
	appHandle  *app.App
)

var rootCmd = &cobra.Command{
	Use:   "wind-hids",
	Short: "Intrusion detection monitor for wind turbine HMI telemetry",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if appHandle != nil {
			return nil
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		applyFlagOverrides(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		} else {
			cfg.Logging.Level = logging.LevelForDebug(cfg.App.DebugLevel)
		}

		logger := logging.NewLogger(cfg.Logging)
		appHandle = app.NewApp(cfg, logger)
		return nil
	},
}

// applyFlagOverrides maps the original command line surface onto the loaded
// configuration; flags win only when explicitly set.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.HMI.Addr = hmiAddr
	}
	if flags.Changed("port") {
		cfg.HMI.Port = hmiPort
	}
	if flags.Changed("server-time") {
		cfg.HMI.ServerTime = serverTime
	}
	if flags.Changed("offline") {
		cfg.HMI.Offline = offline
	}
	if flags.Changed("offline-dir") {
		cfg.HMI.OfflineDir = offlineDir
	}
	if flags.Changed("debug-level") {
		cfg.App.DebugLevel = debugLevel
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level defined in config")
	rootCmd.PersistentFlags().StringVar(&hmiAddr, "addr", "", "HMI webserver address")
	rootCmd.PersistentFlags().IntVar(&hmiPort, "port", 80, "HMI webserver port")
	rootCmd.PersistentFlags().Int64Var(&serverTime, "server-time", 0, "Fixed HMI server timestamp for telemetry requests")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", true, "Read recorded XML instead of polling the HMI")
	rootCmd.PersistentFlags().StringVar(&offlineDir, "offline-dir", "", "Directory holding recorded XML documents")
	rootCmd.PersistentFlags().StringVar(&debugLevel, "debug-level", "", "Monitor verbosity: low or high")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)
}

func getApp() *app.App {
	if appHandle == nil {
		panic("application not initialized; PersistentPreRunE not executed")
	}
	return appHandle
}
