package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/llm-d/snc-bounds/pkg/bounds"
	"github.com/llm-d/snc-bounds/pkg/config"
	"github.com/llm-d/snc-bounds/pkg/core"
	"github.com/llm-d/snc-bounds/pkg/solver"
)

// CatalogReport lists what a scenario file may name.
type CatalogReport struct {
	Curves     []core.Descriptor `json:"curves"`
	Metrics    []bounds.Metric   `json:"metrics"`
	Topologies []string          `json:"topologies"`
	Heuristics []solver.Name     `json:"heuristics"`
}

func newCatalogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List curve kinds, metrics, topologies and heuristics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			topologies := []string{
				config.TopologySingleServer,
				config.TopologyFatCross,
				config.TopologyTandem,
				config.TopologyOverlappingTandem,
			}
			out, err := yaml.Marshal(CatalogReport{
				Curves:     core.Catalog(),
				Metrics:    bounds.Metrics(),
				Topologies: topologies,
				Heuristics: solver.Names(),
			})
			if err != nil {
				return fmt.Errorf("rendering catalog: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
