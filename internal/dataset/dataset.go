// Package dataset provides typed accessors for the canonical TSV
// parameter files under data/: organisms, compute and storage
// requirements, imaging modalities, formulas, and shared parameters.
//
// The TSV files are the single source of truth shared with the figure
// pipeline and the calculator, so loaders parse strictly and fail on
// missing columns or malformed numbers rather than guessing.
package dataset

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/brainemulation/reftab/internal/tabular"
)

// Organism is one row of organisms/organisms.tsv, keyed by organism ID.
type Organism struct {
	Name      string  `json:"name"`
	Neurons   int64   `json:"neurons"`
	VolumeMM3 float64 `json:"volume_mm3"`
	Synapses  float64 `json:"synapses"`
	Source    string  `json:"source,omitempty"`
}

// Modality is one row of imaging/imaging-modalities.tsv.
type Modality struct {
	Name       string `json:"name"`
	Definition string `json:"definition,omitempty"`
	Unit       string `json:"unit,omitempty"`
	Value      string `json:"value,omitempty"`
}

// Formula is one row of a formulas/<kind>.tsv file.
type Formula struct {
	Name       string `json:"name,omitempty"`
	Definition string `json:"definition,omitempty"`
	Formula    string `json:"formula,omitempty"`
	Unit       string `json:"unit,omitempty"`
}

// Parameter is one row of parameters/shared.tsv.
type Parameter struct {
	Name       string `json:"name"`
	Definition string `json:"definition,omitempty"`
	Unit       string `json:"unit,omitempty"`
	Value      string `json:"value,omitempty"`
}

// speciesNames maps organism IDs to the display names used in figure
// annotations. Organisms without a mapping are omitted from
// SpeciesNeurons.
var speciesNames = map[string]string{
	"c_elegans":       "C. elegans",
	"drosophila":      "Drosophila",
	"zebrafish_larva": "Zebrafish (larva)",
	"mouse":           "Mouse",
	"macaque":         "Macaque",
	"human":           "Human",
}

// formulaKinds are the valid arguments to LoadFormulas.
var formulaKinds = map[string]bool{
	"connectomics": true,
	"costs":        true,
	"storage":      true,
}

// LoadOrganisms reads organisms/organisms.tsv and returns the organisms
// keyed by ID.
func LoadOrganisms(dataDir string) (map[string]Organism, error) {
	t, err := tabular.Read(filepath.Join(dataDir, "organisms", "organisms.tsv"))
	if err != nil {
		return nil, err
	}
	cols, err := requireColumns(t, "id", "name", "neurons", "volume_mm3", "synapses")
	if err != nil {
		return nil, err
	}
	sourceCol := t.ColumnIndex("source")

	organisms := make(map[string]Organism, len(t.Rows))
	for i := range t.Rows {
		neurons, err := parseCount(t, i, cols["neurons"])
		if err != nil {
			return nil, err
		}
		volume, err := parseNumber(t, i, cols["volume_mm3"])
		if err != nil {
			return nil, err
		}
		synapses, err := parseNumber(t, i, cols["synapses"])
		if err != nil {
			return nil, err
		}
		organisms[t.Cell(i, cols["id"])] = Organism{
			Name:      t.Cell(i, cols["name"]),
			Neurons:   neurons,
			VolumeMM3: volume,
			Synapses:  synapses,
			Source:    t.Cell(i, sourceCol),
		}
	}
	return organisms, nil
}

// SpeciesNeurons returns neuron counts keyed by the display names used
// in figures. Organisms without a display name are left out.
func SpeciesNeurons(organisms map[string]Organism) map[string]int64 {
	counts := make(map[string]int64)
	for id, org := range organisms {
		if name, ok := speciesNames[id]; ok {
			counts[name] = org.Neurons
		}
	}
	return counts
}

// LoadCompute reads compute/compute-requirements.tsv and returns
// petaFLOPS requirements keyed by display name.
func LoadCompute(dataDir string) (map[string]float64, error) {
	return loadNamedValues(filepath.Join(dataDir, "compute", "compute-requirements.tsv"), "compute_pflops")
}

// LoadStorage reads compute/storage-requirements.tsv and returns
// terabyte requirements keyed by display name.
func LoadStorage(dataDir string) (map[string]float64, error) {
	return loadNamedValues(filepath.Join(dataDir, "compute", "storage-requirements.tsv"), "storage_tb")
}

// LoadImaging reads imaging/imaging-modalities.tsv and returns the
// modalities keyed by ID.
func LoadImaging(dataDir string) (map[string]Modality, error) {
	t, err := tabular.Read(filepath.Join(dataDir, "imaging", "imaging-modalities.tsv"))
	if err != nil {
		return nil, err
	}
	cols, err := requireColumns(t, "id", "name")
	if err != nil {
		return nil, err
	}
	defCol := t.ColumnIndex("definition")
	unitCol := t.ColumnIndex("unit")
	valueCol := t.ColumnIndex("value")

	modalities := make(map[string]Modality, len(t.Rows))
	for i := range t.Rows {
		modalities[t.Cell(i, cols["id"])] = Modality{
			Name:       t.Cell(i, cols["name"]),
			Definition: t.Cell(i, defCol),
			Unit:       t.Cell(i, unitCol),
			Value:      t.Cell(i, valueCol),
		}
	}
	return modalities, nil
}

// LoadFormulas reads formulas/<kind>.tsv and returns the formulas keyed
// by ID. kind must be connectomics, costs, or storage.
func LoadFormulas(dataDir, kind string) (map[string]Formula, error) {
	if !formulaKinds[kind] {
		return nil, fmt.Errorf("unknown formula kind %q (want connectomics, costs, or storage)", kind)
	}
	t, err := tabular.Read(filepath.Join(dataDir, "formulas", kind+".tsv"))
	if err != nil {
		return nil, err
	}
	cols, err := requireColumns(t, "id")
	if err != nil {
		return nil, err
	}
	nameCol := t.ColumnIndex("name")
	defCol := t.ColumnIndex("definition")
	formulaCol := t.ColumnIndex("formula")
	unitCol := t.ColumnIndex("unit")

	formulas := make(map[string]Formula, len(t.Rows))
	for i := range t.Rows {
		formulas[t.Cell(i, cols["id"])] = Formula{
			Name:       t.Cell(i, nameCol),
			Definition: t.Cell(i, defCol),
			Formula:    t.Cell(i, formulaCol),
			Unit:       t.Cell(i, unitCol),
		}
	}
	return formulas, nil
}

// LoadSharedParams reads parameters/shared.tsv and returns the project
// parameters keyed by ID.
func LoadSharedParams(dataDir string) (map[string]Parameter, error) {
	t, err := tabular.Read(filepath.Join(dataDir, "parameters", "shared.tsv"))
	if err != nil {
		return nil, err
	}
	cols, err := requireColumns(t, "id", "name")
	if err != nil {
		return nil, err
	}
	defCol := t.ColumnIndex("definition")
	unitCol := t.ColumnIndex("unit")
	valueCol := t.ColumnIndex("value")

	params := make(map[string]Parameter, len(t.Rows))
	for i := range t.Rows {
		params[t.Cell(i, cols["id"])] = Parameter{
			Name:       t.Cell(i, cols["name"]),
			Definition: t.Cell(i, defCol),
			Unit:       t.Cell(i, unitCol),
			Value:      t.Cell(i, valueCol),
		}
	}
	return params, nil
}

// loadNamedValues reads a two-column numeric table into a map keyed by
// display name.
func loadNamedValues(path, valueColumn string) (map[string]float64, error) {
	t, err := tabular.Read(path)
	if err != nil {
		return nil, err
	}
	cols, err := requireColumns(t, "name", valueColumn)
	if err != nil {
		return nil, err
	}

	values := make(map[string]float64, len(t.Rows))
	for i := range t.Rows {
		v, err := parseNumber(t, i, cols[valueColumn])
		if err != nil {
			return nil, err
		}
		values[t.Cell(i, cols["name"])] = v
	}
	return values, nil
}

// requireColumns resolves header names to indexes, failing on the first
// missing column.
func requireColumns(t *tabular.Table, names ...string) (map[string]int, error) {
	cols := make(map[string]int, len(names))
	for _, name := range names {
		idx := t.ColumnIndex(name)
		if idx < 0 {
			return nil, fmt.Errorf("%s: missing column %q", t.Path, name)
		}
		cols[name] = idx
	}
	return cols, nil
}

// parseNumber parses a numeric cell, reporting the physical row number
// on failure.
func parseNumber(t *tabular.Table, row, col int) (float64, error) {
	cell := strings.TrimSpace(t.Cell(row, col))
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("%s row %d: invalid %s %q", t.Path, row+2, t.Header[col], cell)
	}
	return f, nil
}

// parseCount parses a count cell. Counts may be written in scientific
// notation ("1e9") or with a decimal point, so they parse as floats and
// truncate to integers.
func parseCount(t *tabular.Table, row, col int) (int64, error) {
	f, err := parseNumber(t, row, col)
	return int64(f), err
}
