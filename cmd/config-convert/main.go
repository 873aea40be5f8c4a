package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/chrissnell/pvforecast/pkg/config"
)

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file (required)")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite database file (required)")
		force      = flag.Bool("force", false, "Overwrite existing SQLite database")
		dryRun     = flag.Bool("dry-run", false, "Show what would be done without executing")
		verify     = flag.Bool("verify", true, "Read the database back and compare it with the YAML source")
	)
	flag.Parse()

	if *yamlFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <pvforecast.yaml> -sqlite <pvforecast.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Check if SQLite file already exists
	if _, err := os.Stat(*sqliteFile); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "Error: SQLite file already exists: %s\n", *sqliteFile)
		fmt.Fprintf(os.Stderr, "Use -force to overwrite or choose a different filename\n")
		os.Exit(1)
	}

	fmt.Printf("Converting YAML configuration to SQLite...\n")
	fmt.Printf("  Source: %s\n", *yamlFile)
	fmt.Printf("  Target: %s\n", *sqliteFile)

	configData, err := config.NewYAMLProvider(*yamlFile).LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML configuration: %v\n", err)
		os.Exit(1)
	}
	printConfigSummary(configData)

	if *dryRun {
		fmt.Println("DRY RUN complete - no database created")
		return
	}

	if *force {
		if err := os.Remove(*sqliteFile); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error removing existing SQLite file: %v\n", err)
			os.Exit(1)
		}
	}

	if err := convert(*sqliteFile, configData, *verify); err != nil {
		fmt.Fprintf(os.Stderr, "Error converting configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Conversion completed successfully!\n")
	fmt.Printf("You can now use the SQLite backend with: -config-backend sqlite -config %s\n", *sqliteFile)
}

func convert(dbPath string, configData *config.ConfigData, verify bool) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	provider, err := config.NewSQLiteProvider(dbPath)
	if err != nil {
		return fmt.Errorf("failed to create SQLite provider: %w", err)
	}
	defer provider.Close()

	if err := provider.Migrate(); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := provider.SaveConfig(configData); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	if !verify {
		return nil
	}

	stored, err := provider.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to read back configuration: %w", err)
	}
	if !reflect.DeepEqual(configData, stored) {
		return fmt.Errorf("stored configuration differs from the YAML source")
	}
	fmt.Printf("  Verified stored configuration\n")
	return nil
}

func printConfigSummary(configData *config.ConfigData) {
	fmt.Println("\nConfiguration Summary:")
	fmt.Printf("Site: %s (%.4f, %.4f, %.0fm, %s)\n", configData.Site.Name,
		configData.Site.Latitude, configData.Site.Longitude, configData.Site.Altitude, configData.Site.Timezone)
	fmt.Printf("System: inverter %s, module %s, albedo %.2f\n",
		configData.System.Inverter, configData.System.Module, configData.System.AlbedoValue())

	fmt.Printf("Arrays (%d):\n", len(configData.Arrays))
	for _, a := range configData.Arrays {
		fmt.Printf("  - %s: tilt %.1f°, azimuth %.1f°, %d modules x %d strings\n",
			a.ID, a.SurfaceTilt, a.SurfaceAzimuth, a.ModulesPerString, a.StringsPerInverter)
	}
	fmt.Println()
}
