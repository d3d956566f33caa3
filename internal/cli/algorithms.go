package cli

import (
	"github.com/spf13/cobra"

	"github.com/cybergodev/jwtkit"
)

func newAlgorithmsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "algorithms",
		Aliases: []string{"algs"},
		Short:   "List the supported signing algorithms",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.printer().PrintAlgorithms(jwtkit.SupportedAlgorithms())
		},
	}
}
