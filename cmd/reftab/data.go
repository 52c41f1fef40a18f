package main

import (
	"fmt"
	"sort"

	"github.com/brainemulation/reftab/internal/dataset"
	"github.com/spf13/cobra"
)

func init() {
	dataCmd.AddCommand(dataOrganismsCmd)
	dataCmd.AddCommand(dataNeuronsCmd)
	dataCmd.AddCommand(dataComputeCmd)
	dataCmd.AddCommand(dataStorageCmd)
	dataCmd.AddCommand(dataImagingCmd)
	dataCmd.AddCommand(dataFormulasCmd)
	dataCmd.AddCommand(dataParamsCmd)
	rootCmd.AddCommand(dataCmd)
}

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Read the parameter tables as typed JSON",
	Long: `Load a parameter table with strict parsing (numbers must parse,
required columns must exist) and print it as JSON keyed by row ID.`,
}

// dataDir resolves the repository and returns its data directory.
func dataDir() string {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	return cfg.DataPath(repoRoot)
}

var dataOrganismsCmd = &cobra.Command{
	Use:   "organisms",
	Short: "Organism scale parameters",
	RunE: func(cmd *cobra.Command, args []string) error {
		organisms, err := dataset.LoadOrganisms(dataDir())
		if err != nil {
			exitWithError(ExitDataError, "loading organisms: %v", err)
		}
		if humanOutput {
			ids := make([]string, 0, len(organisms))
			for id := range organisms {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				org := organisms[id]
				fmt.Printf("%s: %s (%d neurons)\n", id, org.Name, org.Neurons)
			}
			return nil
		}
		return outputJSON(organisms)
	},
}

var dataNeuronsCmd = &cobra.Command{
	Use:   "neurons",
	Short: "Neuron counts by species display name",
	RunE: func(cmd *cobra.Command, args []string) error {
		organisms, err := dataset.LoadOrganisms(dataDir())
		if err != nil {
			exitWithError(ExitDataError, "loading organisms: %v", err)
		}
		counts := dataset.SpeciesNeurons(organisms)
		if humanOutput {
			names := make([]string, 0, len(counts))
			for name := range counts {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("%s: %d\n", name, counts[name])
			}
			return nil
		}
		return outputJSON(counts)
	},
}

var dataComputeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute requirements (PFLOPS) by organism",
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := dataset.LoadCompute(dataDir())
		if err != nil {
			exitWithError(ExitDataError, "loading compute requirements: %v", err)
		}
		return outputNamedValues(values)
	},
}

var dataStorageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Storage requirements (TB) by organism",
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := dataset.LoadStorage(dataDir())
		if err != nil {
			exitWithError(ExitDataError, "loading storage requirements: %v", err)
		}
		return outputNamedValues(values)
	},
}

var dataImagingCmd = &cobra.Command{
	Use:   "imaging",
	Short: "Imaging modality parameters",
	RunE: func(cmd *cobra.Command, args []string) error {
		modalities, err := dataset.LoadImaging(dataDir())
		if err != nil {
			exitWithError(ExitDataError, "loading imaging modalities: %v", err)
		}
		if humanOutput {
			names := make([]string, 0, len(modalities))
			for name := range modalities {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				m := modalities[name]
				fmt.Printf("%s: %s [%s]\n", name, m.Definition, m.Unit)
			}
			return nil
		}
		return outputJSON(modalities)
	},
}

var dataFormulasCmd = &cobra.Command{
	Use:   "formulas <connectomics|costs|storage>",
	Short: "Formula definitions for one model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formulas, err := dataset.LoadFormulas(dataDir(), args[0])
		if err != nil {
			exitWithError(ExitDataError, "loading formulas: %v", err)
		}
		if humanOutput {
			names := make([]string, 0, len(formulas))
			for name := range formulas {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("%s: %s\n", name, formulas[name].Formula)
			}
			return nil
		}
		return outputJSON(formulas)
	},
}

var dataParamsCmd = &cobra.Command{
	Use:   "params",
	Short: "Shared model parameters",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := dataset.LoadSharedParams(dataDir())
		if err != nil {
			exitWithError(ExitDataError, "loading shared parameters: %v", err)
		}
		if humanOutput {
			names := make([]string, 0, len(params))
			for name := range params {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				p := params[name]
				fmt.Printf("%s: %s %s\n", name, p.Value, p.Unit)
			}
			return nil
		}
		return outputJSON(params)
	},
}

func outputNamedValues(values map[string]float64) error {
	if humanOutput {
		names := make([]string, 0, len(values))
		for name := range values {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%s: %g\n", name, values[name])
		}
		return nil
	}
	return outputJSON(values)
}
