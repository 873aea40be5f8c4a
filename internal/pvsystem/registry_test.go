package pvsystem

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chrissnell/pvforecast/internal/devices"
	"github.com/chrissnell/pvforecast/internal/types"
)

const (
	testInverter = "Kostal_Plenticore__Plus_4_2"
	testModule   = "LG_Electronics_Inc__LG355N1C_V5"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	catalog, err := devices.NewCatalog()
	require.NoError(t, err)
	loc, err := types.NewLocation(51.2, 6.8, 90, "UTC")
	require.NoError(t, err)
	reg, err := NewRegistry(catalog, testInverter, testModule, 0.25, loc)
	require.NoError(t, err)
	return reg
}

func TestRegistryOrderAndDefaults(t *testing.T) {
	reg := newTestRegistry(t)

	require.NoError(t, reg.AddArray("West", 35, 270, 6, 0))
	require.NoError(t, reg.AddArray("Ost", 35, 90, 6, 2))

	arrays := reg.Arrays()
	require.Len(t, arrays, 2)
	require.Equal(t, "West", arrays[0].ID)
	require.Equal(t, "Ost", arrays[1].ID)
	require.Equal(t, 1, arrays[0].StringsPerInverter)
	require.Equal(t, 2, arrays[1].StringsPerInverter)

	p := reg.Params()
	require.Equal(t, 0.25, p.Albedo)
	require.Equal(t, DefaultRackingModel, p.RackingModel)
	require.Equal(t, -3.47, p.TempModel.A)
	require.Equal(t, 4200.0, p.Inverter.Paco)
}

func TestRegistryArraysIsACopy(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.AddArray("Ost", 35, 90, 6, 1))

	arrays := reg.Arrays()
	arrays[0].ID = "changed"
	require.Equal(t, "Ost", reg.Arrays()[0].ID)
}

func TestRegistryDuplicateLeavesStateUnchanged(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.AddArray("Ost", 35, 90, 6, 1))

	err := reg.AddArray("Ost", 10, 180, 12, 3)
	require.ErrorIs(t, err, types.ErrDuplicateID)
	require.Equal(t, []ArrayConfig{{ID: "Ost", SurfaceTilt: 35, SurfaceAzimuth: 90, ModulesPerString: 6, StringsPerInverter: 1}}, reg.Arrays())
}

func TestRegistryValidation(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		tilt    float64
		azimuth float64
		modules int
		strings int
	}{
		{name: "empty id", id: "", tilt: 30, azimuth: 180, modules: 6},
		{name: "negative tilt", id: "a", tilt: -1, azimuth: 180, modules: 6},
		{name: "tilt above vertical", id: "a", tilt: 91, azimuth: 180, modules: 6},
		{name: "azimuth out of range", id: "a", tilt: 30, azimuth: 360, modules: 6},
		{name: "zero modules", id: "a", tilt: 30, azimuth: 180, modules: 0},
		{name: "negative strings", id: "a", tilt: 30, azimuth: 180, modules: 6, strings: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newTestRegistry(t)
			err := reg.AddArray(tt.id, tt.tilt, tt.azimuth, tt.modules, tt.strings)
			require.ErrorIs(t, err, types.ErrInputValidation)
			require.Zero(t, reg.Len())
		})
	}
}

func TestNewRegistryErrors(t *testing.T) {
	catalog, err := devices.NewCatalog()
	require.NoError(t, err)
	loc, err := types.NewLocation(51.2, 6.8, 90, "UTC")
	require.NoError(t, err)

	_, err = NewRegistry(catalog, "Unknown_Inverter", testModule, 0.25, loc)
	require.ErrorIs(t, err, types.ErrProfileNotFound)

	_, err = NewRegistry(catalog, testInverter, "Unknown_Module", 0.25, loc)
	require.ErrorIs(t, err, types.ErrProfileNotFound)

	_, err = NewRegistry(catalog, testInverter, testModule, 1.5, loc)
	require.ErrorIs(t, err, types.ErrInputValidation)

	_, err = NewRegistry(catalog, testInverter, testModule, 0.25, types.Location{})
	require.ErrorIs(t, err, types.ErrInputValidation)
}

func TestSetTemperatureModel(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.SetTemperatureModel("close_mount_glass_glass"))
	require.Equal(t, -2.98, reg.Params().TempModel.A)
	require.ErrorIs(t, reg.SetTemperatureModel("pvsyst"), types.ErrInputValidation)
}
