package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mfield/numtower"
)

// towerRow is one capability in the tower listing.
type towerRow struct {
	Name     string   `json:"name"`
	Depth    int      `json:"depth"`
	Parents  []string `json:"parents"`
	Own      int      `json:"own"`
	Required int      `json:"required"`
}

func newTowerCommand() *cobra.Command {
	var specsDir string

	cmd := &cobra.Command{
		Use:   "tower",
		Short: "List the capability graph",
		Long: `List every capability in the tower with its depth, parents and
primitive counts. Capabilities appear in declaration order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(cmd)

			reg, _, err := resolveTower(specsDir)
			if err != nil {
				return err
			}

			rows, err := towerRows(reg)
			if err != nil {
				return WrapExitError(ExitCommandError, "reading tower", err)
			}

			if formatter.Format == "json" {
				return formatter.JSON(map[string]interface{}{"capabilities": rows})
			}

			formatter.Text("%-16s%-7s%-25s%s\n", "CAPABILITY", "DEPTH", "PARENTS", "PRIMITIVES")
			for _, row := range rows {
				parents := "-"
				if len(row.Parents) > 0 {
					parents = strings.Join(row.Parents, ", ")
				}
				formatter.Text("%-16s%-7d%-25s%d own, %d required\n",
					row.Name, row.Depth, parents, row.Own, row.Required)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&specsDir, "specs", "", "directory of CUE tower specs (default: builtin tower)")
	return cmd
}

func towerRows(reg *numtower.Registry) ([]towerRow, error) {
	names := reg.Capabilities()
	rows := make([]towerRow, 0, len(names))
	for _, name := range names {
		parents, err := reg.Parents(name)
		if err != nil {
			return nil, err
		}
		own, err := reg.OwnPrimitives(name)
		if err != nil {
			return nil, err
		}
		required, err := reg.RequiredPrimitives(name)
		if err != nil {
			return nil, err
		}
		rows = append(rows, towerRow{
			Name:     name,
			Depth:    reg.Depth(name),
			Parents:  parents,
			Own:      len(own),
			Required: len(required),
		})
	}
	return rows, nil
}
