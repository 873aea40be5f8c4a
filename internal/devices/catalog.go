// Package devices resolves PV module and inverter names to their electrical
// parameter profiles. Profiles come from SAM/CEC library CSV files plus a
// small set of built-in entries.
package devices

import (
	"embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"sync"

	"github.com/gocarina/gocsv"

	"github.com/chrissnell/pvforecast/internal/types"
)

//go:embed data/*.csv
var builtinData embed.FS

// Module holds the CEC single-diode parameters of a PV module.
type Module struct {
	Name       string  `csv:"Name"`
	Technology string  `csv:"Technology"`
	STC        float64 `csv:"STC"`
	NS         int     `csv:"N_s"`
	IscRef     float64 `csv:"I_sc_ref"`
	VocRef     float64 `csv:"V_oc_ref"`
	ImpRef     float64 `csv:"I_mp_ref"`
	VmpRef     float64 `csv:"V_mp_ref"`
	AlphaSc    float64 `csv:"alpha_sc"`
	BetaOc     float64 `csv:"beta_oc"`
	ARef       float64 `csv:"a_ref"`
	ILRef      float64 `csv:"I_L_ref"`
	IoRef      float64 `csv:"I_o_ref"`
	Rs         float64 `csv:"R_s"`
	RshRef     float64 `csv:"R_sh_ref"`
	Adjust     float64 `csv:"Adjust"`
	GammaR     float64 `csv:"gamma_r"`
}

// Inverter holds the Sandia inverter model parameters.
type Inverter struct {
	Name     string  `csv:"Name"`
	Vac      float64 `csv:"Vac"`
	Pso      float64 `csv:"Pso"`
	Paco     float64 `csv:"Paco"`
	Pdco     float64 `csv:"Pdco"`
	Vdco     float64 `csv:"Vdco"`
	C0       float64 `csv:"C0"`
	C1       float64 `csv:"C1"`
	C2       float64 `csv:"C2"`
	C3       float64 `csv:"C3"`
	Pnt      float64 `csv:"Pnt"`
	Vdcmax   float64 `csv:"Vdcmax"`
	Idcmax   float64 `csv:"Idcmax"`
	MpptLow  float64 `csv:"Mppt_low"`
	MpptHigh float64 `csv:"Mppt_high"`
}

// KostalPlenticorePlus42 is the Kostal Plenticore Plus 4.2, which the CEC
// inverter library does not list.
var KostalPlenticorePlus42 = Inverter{
	Name:     "Kostal_Plenticore__Plus_4_2",
	Vac:      400,
	Pso:      20,
	Paco:     4200,
	Pdco:     4325.437693099,
	Vdco:     570,
	C0:       0.000001335,
	C1:       0,
	C2:       0,
	C3:       -0.0004768538,
	Pnt:      7.9,
	Vdcmax:   900,
	Idcmax:   13,
	MpptLow:  120,
	MpptHigh: 720,
}

// Catalog is a name-indexed set of module and inverter profiles.
type Catalog struct {
	mu        sync.RWMutex
	modules   map[string]Module
	inverters map[string]Inverter
}

// NewCatalog returns a catalog holding the built-in profiles.
func NewCatalog() (*Catalog, error) {
	c := &Catalog{
		modules:   make(map[string]Module),
		inverters: make(map[string]Inverter),
	}
	c.AddInverter(KostalPlenticorePlus42)

	f, err := builtinData.Open("data/cec_modules.csv")
	if err != nil {
		return nil, fmt.Errorf("could not open built-in module library: %w", err)
	}
	defer f.Close()
	if _, err := c.LoadModules(f); err != nil {
		return nil, fmt.Errorf("could not load built-in module library: %w", err)
	}
	return c, nil
}

// AddModule registers m under its normalised name, replacing any previous entry.
func (c *Catalog) AddModule(m Module) {
	m.Name = NormalizeName(m.Name)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modules[m.Name] = m
}

// AddInverter registers inv under its normalised name, replacing any previous entry.
func (c *Catalog) AddInverter(inv Inverter) {
	inv.Name = NormalizeName(inv.Name)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inverters[inv.Name] = inv
}

// Module looks up a module profile by raw or normalised name.
func (c *Catalog) Module(name string) (Module, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.modules[NormalizeName(name)]
	if !ok {
		return Module{}, fmt.Errorf("%w: module %q", types.ErrProfileNotFound, name)
	}
	return m, nil
}

// Inverter looks up an inverter profile by raw or normalised name.
func (c *Catalog) Inverter(name string) (Inverter, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	inv, ok := c.inverters[NormalizeName(name)]
	if !ok {
		return Inverter{}, fmt.Errorf("%w: inverter %q", types.ErrProfileNotFound, name)
	}
	return inv, nil
}

// ModuleNames returns the known module names, sorted.
func (c *Catalog) ModuleNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.modules)
}

// InverterNames returns the known inverter names, sorted.
func (c *Catalog) InverterNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.inverters)
}

// LoadModules reads a SAM CEC module library and adds every row. It
// returns the number of profiles read.
func (c *Catalog) LoadModules(r io.Reader) (int, error) {
	var rows []*Module
	if err := gocsv.UnmarshalCSV(newSAMReader(r), &rows); err != nil {
		return 0, fmt.Errorf("could not parse module library: %w", err)
	}
	for _, m := range rows {
		if m.Name == "" {
			continue
		}
		c.AddModule(*m)
	}
	return len(rows), nil
}

// LoadInverters reads a SAM CEC inverter library and adds every row. It
// returns the number of profiles read.
func (c *Catalog) LoadInverters(r io.Reader) (int, error) {
	var rows []*Inverter
	if err := gocsv.UnmarshalCSV(newSAMReader(r), &rows); err != nil {
		return 0, fmt.Errorf("could not parse inverter library: %w", err)
	}
	for _, inv := range rows {
		if inv.Name == "" {
			continue
		}
		c.AddInverter(*inv)
	}
	return len(rows), nil
}

// LoadModulesFile is LoadModules for a file path.
func (c *Catalog) LoadModulesFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("could not open module library %s: %w", path, err)
	}
	defer f.Close()
	return c.LoadModules(f)
}

// LoadInvertersFile is LoadInverters for a file path.
func (c *Catalog) LoadInvertersFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("could not open inverter library %s: %w", path, err)
	}
	defer f.Close()
	return c.LoadInverters(f)
}

var nameReplacer = regexp.MustCompile(`[ \-.()\[\]:+/",]`)

// NormalizeName maps a library name onto its identifier form, e.g.
// "LG Electronics Inc. LG355N1C-V5" becomes "LG_Electronics_Inc__LG355N1C_V5".
func NormalizeName(name string) string {
	return nameReplacer.ReplaceAllString(name, "_")
}

// samReader drops the units and variable-name rows that SAM library files
// carry between the header and the data.
type samReader struct {
	r *csv.Reader
}

func newSAMReader(r io.Reader) *samReader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return &samReader{r: cr}
}

func (s *samReader) Read() ([]string, error) {
	return s.r.Read()
}

func (s *samReader) ReadAll() ([][]string, error) {
	records, err := s.r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return records, nil
	}
	out := records[:1]
	for _, rec := range records[1:] {
		if len(rec) > 0 && (rec[0] == "Units" || rec[0] == "[0]") {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
