package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTSV writes a TSV fixture, creating parent directories.
func writeTSV(t *testing.T, path string, lines ...string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func TestLoadOrganisms(t *testing.T) {
	dataDir := t.TempDir()
	writeTSV(t, filepath.Join(dataDir, "organisms", "organisms.tsv"),
		"id\tname\tneurons\tvolume_mm3\tsynapses\tsource",
		"c_elegans\tC. elegans (nematode)\t302\t0.00000049\t7500\twhite1986",
		"human\tHuman\t8.6e10\t1232000\t1.5e14\tazevedo2009",
	)

	organisms, err := LoadOrganisms(dataDir)
	if err != nil {
		t.Fatalf("LoadOrganisms: %v", err)
	}
	if len(organisms) != 2 {
		t.Fatalf("expected 2 organisms, got %d", len(organisms))
	}

	worm := organisms["c_elegans"]
	if worm.Name != "C. elegans (nematode)" {
		t.Errorf("name = %q", worm.Name)
	}
	if worm.Neurons != 302 {
		t.Errorf("neurons = %d", worm.Neurons)
	}
	if worm.Source != "white1986" {
		t.Errorf("source = %q", worm.Source)
	}

	// Scientific notation counts truncate to integers.
	human := organisms["human"]
	if human.Neurons != 86000000000 {
		t.Errorf("human neurons = %d", human.Neurons)
	}
	if human.Synapses != 1.5e14 {
		t.Errorf("human synapses = %g", human.Synapses)
	}
	if human.VolumeMM3 != 1232000 {
		t.Errorf("human volume = %g", human.VolumeMM3)
	}
}

func TestLoadOrganismsNoSourceColumn(t *testing.T) {
	dataDir := t.TempDir()
	writeTSV(t, filepath.Join(dataDir, "organisms", "organisms.tsv"),
		"id\tname\tneurons\tvolume_mm3\tsynapses",
		"mouse\tMouse\t7.1e7\t508\t1e11",
	)

	organisms, err := LoadOrganisms(dataDir)
	if err != nil {
		t.Fatalf("LoadOrganisms: %v", err)
	}
	if organisms["mouse"].Source != "" {
		t.Errorf("source = %q, want empty", organisms["mouse"].Source)
	}
}

func TestLoadOrganismsMissingColumn(t *testing.T) {
	dataDir := t.TempDir()
	writeTSV(t, filepath.Join(dataDir, "organisms", "organisms.tsv"),
		"id\tname\tneurons\tvolume_mm3",
		"mouse\tMouse\t7.1e7\t508",
	)

	_, err := LoadOrganisms(dataDir)
	if err == nil {
		t.Fatal("expected error for missing synapses column")
	}
	if !strings.Contains(err.Error(), `missing column "synapses"`) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadOrganismsBadNumber(t *testing.T) {
	dataDir := t.TempDir()
	writeTSV(t, filepath.Join(dataDir, "organisms", "organisms.tsv"),
		"id\tname\tneurons\tvolume_mm3\tsynapses",
		"mouse\tMouse\tlots\t508\t1e11",
	)

	_, err := LoadOrganisms(dataDir)
	if err == nil {
		t.Fatal("expected error for non-numeric neurons")
	}
	// Physical row numbering counts the header as row 1.
	if !strings.Contains(err.Error(), "row 2") {
		t.Errorf("error should name the row: %v", err)
	}
	if !strings.Contains(err.Error(), `"lots"`) {
		t.Errorf("error should quote the cell: %v", err)
	}
}

func TestSpeciesNeurons(t *testing.T) {
	organisms := map[string]Organism{
		"c_elegans": {Name: "C. elegans (nematode)", Neurons: 302},
		"human":     {Name: "Human", Neurons: 86000000000},
		"rat":       {Name: "Rat", Neurons: 200000000},
	}

	counts := SpeciesNeurons(organisms)
	if len(counts) != 2 {
		t.Fatalf("expected 2 mapped species, got %d: %v", len(counts), counts)
	}
	if counts["C. elegans"] != 302 {
		t.Errorf("C. elegans = %d", counts["C. elegans"])
	}
	if counts["Human"] != 86000000000 {
		t.Errorf("Human = %d", counts["Human"])
	}
	if _, ok := counts["Rat"]; ok {
		t.Error("unmapped organism should be omitted")
	}
}

func TestLoadCompute(t *testing.T) {
	dataDir := t.TempDir()
	writeTSV(t, filepath.Join(dataDir, "compute", "compute-requirements.tsv"),
		"name\tcompute_pflops",
		"C. elegans\t0.001",
		"Human\t1000000",
	)

	compute, err := LoadCompute(dataDir)
	if err != nil {
		t.Fatalf("LoadCompute: %v", err)
	}
	if compute["C. elegans"] != 0.001 {
		t.Errorf("C. elegans = %g", compute["C. elegans"])
	}
	if compute["Human"] != 1e6 {
		t.Errorf("Human = %g", compute["Human"])
	}
}

func TestLoadStorage(t *testing.T) {
	dataDir := t.TempDir()
	writeTSV(t, filepath.Join(dataDir, "compute", "storage-requirements.tsv"),
		"name\tstorage_tb",
		"Mouse\t500000",
	)

	storage, err := LoadStorage(dataDir)
	if err != nil {
		t.Fatalf("LoadStorage: %v", err)
	}
	if storage["Mouse"] != 500000 {
		t.Errorf("Mouse = %g", storage["Mouse"])
	}
}

func TestLoadImaging(t *testing.T) {
	dataDir := t.TempDir()
	writeTSV(t, filepath.Join(dataDir, "imaging", "imaging-modalities.tsv"),
		"id\tname\tdefinition\tunit\tvalue",
		"em\tElectron microscopy\tVolume EM for connectomics\tnm\t4",
		"xray\tX-ray holographic nanotomography\t\t\t",
	)

	modalities, err := LoadImaging(dataDir)
	if err != nil {
		t.Fatalf("LoadImaging: %v", err)
	}
	em := modalities["em"]
	if em.Name != "Electron microscopy" || em.Unit != "nm" || em.Value != "4" {
		t.Errorf("em = %+v", em)
	}
	xray := modalities["xray"]
	if xray.Definition != "" || xray.Unit != "" {
		t.Errorf("empty optional cells should stay empty: %+v", xray)
	}
}

func TestLoadFormulas(t *testing.T) {
	dataDir := t.TempDir()
	writeTSV(t, filepath.Join(dataDir, "formulas", "costs.tsv"),
		"id\tname\tdefinition\tformula\tunit",
		"em_cost\tEM imaging cost\tCost to image a volume\trate * volume_mm3\tUSD",
	)

	formulas, err := LoadFormulas(dataDir, "costs")
	if err != nil {
		t.Fatalf("LoadFormulas: %v", err)
	}
	f := formulas["em_cost"]
	if f.Formula != "rate * volume_mm3" {
		t.Errorf("formula = %q", f.Formula)
	}
	if f.Unit != "USD" {
		t.Errorf("unit = %q", f.Unit)
	}
}

func TestLoadFormulasUnknownKind(t *testing.T) {
	_, err := LoadFormulas(t.TempDir(), "../escape")
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if !strings.Contains(err.Error(), "unknown formula kind") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadSharedParams(t *testing.T) {
	dataDir := t.TempDir()
	writeTSV(t, filepath.Join(dataDir, "parameters", "shared.tsv"),
		"id\tname\tdefinition\tunit\tvalue",
		"synapse_bytes\tBytes per synapse\tStorage per reconstructed synapse\tbytes\t28",
	)

	params, err := LoadSharedParams(dataDir)
	if err != nil {
		t.Fatalf("LoadSharedParams: %v", err)
	}
	p := params["synapse_bytes"]
	if p.Name != "Bytes per synapse" || p.Value != "28" {
		t.Errorf("param = %+v", p)
	}
}
