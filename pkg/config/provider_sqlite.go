package config

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"

	"github.com/chrissnell/pvforecast/pkg/migrate"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Keys of the run_settings table.
const (
	settingWeather             = "weather"
	settingWeatherUnits        = "weather_units"
	settingOutput              = "output"
	settingClearSkyModel       = "clear_sky_model"
	settingLinkeTurbidity      = "linke_turbidity"
	settingDeltaT              = "delta_t"
	settingPerezEnhancement    = "perez_enhancement"
	settingDisableDeltaKtPrime = "disable_delta_kt_prime"
	settingWorkers             = "workers"
	settingPrecision           = "precision"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Migrate brings the schema up to date using the embedded migrations.
func (s *SQLiteProvider) Migrate() error {
	provider := migrate.NewFileProvider(migrationFS, "migrations", "schema_migrations")
	return migrate.NewMigrator(s.db, provider).MigrateUp()
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	if err := s.loadSite(config); err != nil {
		return nil, fmt.Errorf("failed to load site: %w", err)
	}

	arrays, err := s.loadArrays()
	if err != nil {
		return nil, fmt.Errorf("failed to load arrays: %w", err)
	}
	config.Arrays = arrays

	run, err := s.loadRunSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load run settings: %w", err)
	}
	config.Run = *run

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (s *SQLiteProvider) loadSite(config *ConfigData) error {
	query := `
		SELECT name, latitude, longitude, altitude, timezone,
		       inverter, module, albedo, temperature_model,
		       module_library, inverter_library, dirint_coefficients
		FROM site WHERE id = 1
	`

	var name, timezone, tempModel, moduleLib, inverterLib, coefficients sql.NullString
	var albedo sql.NullFloat64

	err := s.db.QueryRow(query).Scan(
		&name, &config.Site.Latitude, &config.Site.Longitude, &config.Site.Altitude, &timezone,
		&config.System.Inverter, &config.System.Module, &albedo, &tempModel,
		&moduleLib, &inverterLib, &coefficients,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("site table is empty")
	}
	if err != nil {
		return err
	}

	config.Site.Name = name.String
	config.Site.Timezone = timezone.String
	config.System.TemperatureModel = tempModel.String
	config.System.ModuleLibrary = moduleLib.String
	config.System.InverterLibrary = inverterLib.String
	config.System.DirintCoefficients = coefficients.String
	if albedo.Valid {
		v := albedo.Float64
		config.System.Albedo = &v
	}
	return nil
}

func (s *SQLiteProvider) loadArrays() ([]ArrayData, error) {
	rows, err := s.db.Query(`
		SELECT id, surface_tilt, surface_azimuth, modules_per_string, strings_per_inverter
		FROM arrays
		ORDER BY position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query arrays: %w", err)
	}
	defer rows.Close()

	var arrays []ArrayData
	for rows.Next() {
		var a ArrayData
		if err := rows.Scan(&a.ID, &a.SurfaceTilt, &a.SurfaceAzimuth, &a.ModulesPerString, &a.StringsPerInverter); err != nil {
			return nil, fmt.Errorf("failed to scan array row: %w", err)
		}
		arrays = append(arrays, a)
	}
	return arrays, rows.Err()
}

func (s *SQLiteProvider) loadRunSettings() (*RunData, error) {
	rows, err := s.db.Query(`SELECT key, value FROM run_settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query run settings: %w", err)
	}
	defer rows.Close()

	run := &RunData{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan run setting: %w", err)
		}
		if err := run.set(key, value); err != nil {
			return nil, err
		}
	}
	return run, rows.Err()
}

func (r *RunData) set(key, value string) error {
	var err error
	switch key {
	case settingWeather:
		r.Weather = value
	case settingWeatherUnits:
		r.WeatherUnits = value
	case settingOutput:
		r.Output = value
	case settingClearSkyModel:
		r.ClearSkyModel = value
	case settingLinkeTurbidity:
		r.LinkeTurbidity, err = strconv.ParseFloat(value, 64)
	case settingDeltaT:
		r.DeltaT, err = strconv.ParseFloat(value, 64)
	case settingPerezEnhancement:
		r.PerezEnhancement, err = strconv.ParseBool(value)
	case settingDisableDeltaKtPrime:
		r.DisableDeltaKtPrime, err = strconv.ParseBool(value)
	case settingWorkers:
		r.Workers, err = strconv.Atoi(value)
	case settingPrecision:
		r.Precision, err = strconv.Atoi(value)
	default:
		return fmt.Errorf("unknown run setting %q", key)
	}
	if err != nil {
		return fmt.Errorf("run setting %s: %w", key, err)
	}
	return nil
}

func (r *RunData) settings() map[string]string {
	out := map[string]string{
		settingPerezEnhancement:    strconv.FormatBool(r.PerezEnhancement),
		settingDisableDeltaKtPrime: strconv.FormatBool(r.DisableDeltaKtPrime),
	}
	put := func(k, v string) {
		if v != "" {
			out[k] = v
		}
	}
	put(settingWeather, r.Weather)
	put(settingWeatherUnits, r.WeatherUnits)
	put(settingOutput, r.Output)
	put(settingClearSkyModel, r.ClearSkyModel)
	if r.LinkeTurbidity != 0 {
		out[settingLinkeTurbidity] = strconv.FormatFloat(r.LinkeTurbidity, 'g', -1, 64)
	}
	if r.DeltaT != 0 {
		out[settingDeltaT] = strconv.FormatFloat(r.DeltaT, 'g', -1, 64)
	}
	if r.Workers != 0 {
		out[settingWorkers] = strconv.Itoa(r.Workers)
	}
	if r.Precision != 0 {
		out[settingPrecision] = strconv.Itoa(r.Precision)
	}
	return out
}

// IsReadOnly returns false since SQLite configuration can be modified
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveConfig replaces the stored configuration in a single transaction.
func (s *SQLiteProvider) SaveConfig(configData *ConfigData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{"DELETE FROM site", "DELETE FROM arrays", "DELETE FROM run_settings"} {
		if _, err := tx.Exec(q); err != nil {
			return fmt.Errorf("failed to clear existing config: %w", err)
		}
	}

	var albedo interface{}
	if configData.System.Albedo != nil {
		albedo = *configData.System.Albedo
	}
	_, err = tx.Exec(`
		INSERT INTO site (id, name, latitude, longitude, altitude, timezone,
		                  inverter, module, albedo, temperature_model,
		                  module_library, inverter_library, dirint_coefficients)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullString(configData.Site.Name), configData.Site.Latitude, configData.Site.Longitude,
		configData.Site.Altitude, nullString(configData.Site.Timezone),
		configData.System.Inverter, configData.System.Module, albedo,
		nullString(configData.System.TemperatureModel), nullString(configData.System.ModuleLibrary),
		nullString(configData.System.InverterLibrary), nullString(configData.System.DirintCoefficients),
	)
	if err != nil {
		return fmt.Errorf("failed to insert site: %w", err)
	}

	for i, a := range configData.Arrays {
		_, err := tx.Exec(`
			INSERT INTO arrays (id, position, surface_tilt, surface_azimuth, modules_per_string, strings_per_inverter)
			VALUES (?, ?, ?, ?, ?, ?)`,
			a.ID, i, a.SurfaceTilt, a.SurfaceAzimuth, a.ModulesPerString, a.StringsPerInverter,
		)
		if err != nil {
			return fmt.Errorf("failed to insert array %s: %w", a.ID, err)
		}
	}

	for k, v := range configData.Run.settings() {
		if _, err := tx.Exec(`INSERT INTO run_settings (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("failed to insert run setting %s: %w", k, err)
		}
	}

	return tx.Commit()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
