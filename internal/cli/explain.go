package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mfield/numtower"
)

// explainRow describes one required primitive of a capability.
type explainRow struct {
	Op         string `json:"op"`
	Arity      string `json:"arity"`
	From       string `json:"from"`                 // capability that introduces the primitive
	Own        bool   `json:"own"`                  // introduced by the explained capability itself
	Derivation string `json:"derivation,omitempty"` // best derivation rule, if any
	Blocked    string `json:"blocked,omitempty"`    // non-derivable reason, if any
}

// explainData is the JSON payload of the explain command.
type explainData struct {
	Capability string       `json:"capability"`
	Depth      int          `json:"depth"`
	Parents    []string     `json:"parents"`
	Own        int          `json:"own"`
	Required   []explainRow `json:"required"`
}

func newExplainCommand() *cobra.Command {
	var specsDir string

	cmd := &cobra.Command{
		Use:   "explain <capability>",
		Short: "Explain what a capability requires",
		Long: `Explain one capability: its place in the graph, its full primitive
closure in catalog order, which level introduces each primitive, and which
primitives the mixin rules can derive when a type omits them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(cmd)

			reg, lib, err := resolveTower(specsDir)
			if err != nil {
				return err
			}

			data, err := explainCapability(reg, lib, args[0])
			if err != nil {
				if numtower.IsUnknownCapability(err) {
					return WrapExitError(ExitCommandError, "unknown capability", err)
				}
				return WrapExitError(ExitCommandError, "explaining capability", err)
			}

			if formatter.Format == "json" {
				return formatter.JSON(data)
			}

			renderExplain(formatter, data)
			return nil
		},
	}

	cmd.Flags().StringVar(&specsDir, "specs", "", "directory of CUE tower specs (default: builtin tower)")
	return cmd
}

// explainCapability assembles the report for one capability.
func explainCapability(reg *numtower.Registry, lib *numtower.Library, name string) (*explainData, error) {
	required, err := reg.RequiredPrimitives(name)
	if err != nil {
		return nil, err
	}
	parents, err := reg.Parents(name)
	if err != nil {
		return nil, err
	}
	own, err := reg.OwnPrimitives(name)
	if err != nil {
		return nil, err
	}

	owners, err := primitiveOwners(reg, name)
	if err != nil {
		return nil, err
	}

	ownSet := make(map[numtower.Op]bool, len(own))
	for _, op := range own {
		ownSet[op] = true
	}

	rows := make([]explainRow, 0, len(required))
	for _, op := range required {
		prim, _ := numtower.LookupPrimitive(op)
		row := explainRow{
			Op:    string(op),
			Arity: arityName(prim.Arity),
			From:  owners[op],
			Own:   ownSet[op],
		}
		if rules := lib.DerivationsFor(op); len(rules) > 0 {
			row.Derivation = rules[0].Desc
		} else if reason, blocked := lib.NonDerivable(op); blocked {
			row.Blocked = reason
		}
		rows = append(rows, row)
	}

	return &explainData{
		Capability: name,
		Depth:      reg.Depth(name),
		Parents:    parents,
		Own:        len(own),
		Required:   rows,
	}, nil
}

// primitiveOwners maps each primitive in a capability's closure to the
// capability that introduces it. Owners are found among the capability and
// its ancestors in declaration order.
func primitiveOwners(reg *numtower.Registry, name string) (map[numtower.Op]string, error) {
	owners := make(map[numtower.Op]string)
	for _, candidate := range reg.Capabilities() {
		if candidate != name {
			anc, err := reg.IsAncestor(candidate, name)
			if err != nil {
				return nil, err
			}
			if !anc {
				continue
			}
		}
		own, err := reg.OwnPrimitives(candidate)
		if err != nil {
			return nil, err
		}
		for _, op := range own {
			if _, taken := owners[op]; !taken {
				owners[op] = candidate
			}
		}
	}
	return owners, nil
}

func arityName(a numtower.Arity) string {
	if a == numtower.Unary {
		return "unary"
	}
	return "binary"
}

func renderExplain(formatter *OutputFormatter, data *explainData) {
	parents := "-"
	if len(data.Parents) > 0 {
		parents = strings.Join(data.Parents, ", ")
	}

	formatter.Text("capability: %s\n", data.Capability)
	formatter.Text("depth:      %d\n", data.Depth)
	formatter.Text("parents:    %s\n", parents)
	formatter.Text("primitives: %d required, %d own\n", len(data.Required), data.Own)
	formatter.Text("\n")
	formatter.Text("  %-11s%-8s%-16s%s\n", "OP", "ARITY", "FROM", "DERIVATION")
	for _, row := range data.Required {
		derivation := "-"
		switch {
		case row.Derivation != "":
			derivation = row.Derivation
		case row.Blocked != "":
			derivation = "non-derivable: " + row.Blocked
		}
		formatter.Text("  %-11s%-8s%-16s%s\n", row.Op, row.Arity, row.From, derivation)
	}
}
