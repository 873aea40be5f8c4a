package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/chrissnell/pvforecast/internal/app"
	"github.com/chrissnell/pvforecast/internal/log"
	"github.com/chrissnell/pvforecast/pkg/config"
)

const version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	cfgFile := flag.String("config", "pvforecast.yaml", "Path to configuration source:\n\t\t\t  YAML: pvforecast.yaml\n\t\t\t  SQLite: pvforecast.db\n\t\t\t  Use 'pvforecast-config-convert' to convert YAML→SQLite")
	cfgBackend := flag.String("config-backend", "yaml", "Configuration backend type: 'yaml' for YAML files, 'sqlite' for SQLite databases")
	weatherFile := flag.String("weather", "", "Weather input (.csv or .msgpack), overrides run.weather")
	outputFile := flag.String("output", "", "Output CSV path, overrides run.output")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	logFile := flag.String("log-file", "", "Also write JSON logs to this file, rotated by size")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("pvforecast %s\n", version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.InitWithFile(*debug, *logFile); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Load configuration
	cfgData, err := loadConfig(*cfgFile, *cfgBackend)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	if *weatherFile != "" {
		cfgData.Run.Weather = *weatherFile
	}
	if *outputFile != "" {
		cfgData.Run.Output = *outputFile
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := app.New(cfgData).Run(ctx); err != nil {
		log.Errorf("Forecast failed: %v", err)
		log.Sync()
		os.Exit(1)
	}
}

func loadConfig(cfgFile, cfgBackend string) (*config.ConfigData, error) {
	filename, _ := filepath.Abs(cfgFile)

	var provider config.ConfigProvider
	var err error

	switch cfgBackend {
	case "yaml":
		provider = config.NewYAMLProvider(filename)
	case "sqlite":
		provider, err = config.NewSQLiteProvider(filename)
		if err != nil {
			return nil, fmt.Errorf("error creating SQLite provider: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported configuration backend: %s. Use 'yaml' or 'sqlite'", cfgBackend)
	}
	defer provider.Close()

	cfgData, err := provider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading config file. Did you pass the -config flag? Run with -h for help: %w", err)
	}

	return cfgData, nil
}
