package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mfield/numtower"
	"github.com/mfield/numtower/internal/store"
)

// Manifest is the YAML input of the check command: the primitives a type
// declares and the capabilities it claims.
type Manifest struct {
	Name       string   `yaml:"name"`
	Primitives []string `yaml:"primitives"`
	Claim      []string `yaml:"claim"`
}

// checkData is the JSON payload of the check command.
type checkData struct {
	Name         string       `json:"name,omitempty"`
	Satisfied    bool         `json:"satisfied"`
	Capabilities []string     `json:"capabilities"`
	Declared     []string     `json:"declared"`
	Resolved     []resolvedOp `json:"resolved,omitempty"`
	Missing      []missingOp  `json:"missing,omitempty"`
	Descriptor   string       `json:"descriptor,omitempty"`
}

type resolvedOp struct {
	Op      string `json:"op"`
	Derived bool   `json:"derived"`
	Rule    string `json:"rule,omitempty"`
	Origin  string `json:"origin,omitempty"`
}

type missingOp struct {
	Op     string `json:"op"`
	Reason string `json:"reason"`
}

func newCheckCommand() *cobra.Command {
	var specsDir string
	var ledgerPath string

	cmd := &cobra.Command{
		Use:   "check <manifest.yaml>",
		Short: "Check a declaration manifest against its claims",
		Long: `Check a manifest declaring primitives and claiming capabilities.

The manifest is structural: it names primitives without supplying runnable
implementations, so the check covers conformance only. A satisfied claim
reports every resolved operation and the descriptor hash; a failed claim
names exactly the primitives that are neither declared nor derivable.

With --ledger, the declaration and the claim outcome are recorded in a
SQLite ledger. Re-recording an identical claim is a no-op.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(cmd)

			manifest, err := loadManifest(args[0])
			if err != nil {
				return err
			}

			reg, lib, err := resolveTower(specsDir)
			if err != nil {
				return err
			}

			return runCheck(formatter, reg, lib, manifest, ledgerPath)
		},
	}

	cmd.Flags().StringVar(&specsDir, "specs", "", "directory of CUE tower specs (default: builtin tower)")
	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "SQLite ledger to record the declaration and claim outcome")
	return cmd
}

func loadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "reading manifest", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return nil, WrapExitError(ExitCommandError, "parsing manifest", err)
	}
	if len(manifest.Primitives) == 0 {
		return nil, NewExitError(ExitCommandError, "manifest declares no primitives")
	}
	if len(manifest.Claim) == 0 {
		return nil, NewExitError(ExitCommandError, "manifest claims no capabilities")
	}
	return &manifest, nil
}

func runCheck(formatter *OutputFormatter, reg *numtower.Registry, lib *numtower.Library, manifest *Manifest, ledgerPath string) error {
	impls := make(map[string]numtower.Implementation, len(manifest.Primitives))
	for _, name := range manifest.Primitives {
		impls[name] = structuralStub(name)
	}

	handle, err := numtower.Declare(impls)
	if err != nil {
		return WrapExitError(ExitCommandError, "declaring primitives", err)
	}
	formatter.VerboseLog("declared handle %s (fingerprint %s)", handle.ID(), handle.Fingerprint())

	data := &checkData{
		Name:     manifest.Name,
		Declared: opStrings(handle.Declared()),
	}

	desc, err := numtower.ClaimWith(reg, lib, handle, manifest.Claim...)
	switch {
	case err == nil:
		data.Satisfied = true
		data.Capabilities = desc.Capabilities()
		data.Descriptor = desc.Fingerprint()
		for _, op := range desc.Operations() {
			binding, _ := desc.Binding(string(op))
			data.Resolved = append(data.Resolved, resolvedOp{
				Op:      string(op),
				Derived: binding.Derived,
				Rule:    binding.Rule,
				Origin:  binding.Origin,
			})
		}

	case numtower.IsMissingCapability(err):
		var missingErr *numtower.MissingCapabilityError
		errors.As(err, &missingErr)
		data.Capabilities = missingErr.Capabilities
		for _, op := range missingErr.Missing {
			reason := "not declared, no derivation applies"
			if blocked, ok := lib.NonDerivable(op); ok {
				reason = "non-derivable: " + blocked
			}
			data.Missing = append(data.Missing, missingOp{Op: string(op), Reason: reason})
		}

	default:
		return WrapExitError(ExitCommandError, "claiming capabilities", err)
	}

	if ledgerPath != "" {
		if err := recordOutcome(formatter, ledgerPath, handle, data); err != nil {
			return err
		}
	}

	if formatter.Format == "json" {
		if err := formatter.JSON(data); err != nil {
			return err
		}
	} else {
		renderCheck(formatter, data)
	}

	if !data.Satisfied {
		return NewExitError(ExitFailure, "claim not satisfied")
	}
	return nil
}

// structuralStub is the placeholder implementation bound to manifest
// primitives. It satisfies Declare's non-nil requirement; invoking it is an
// error because manifests carry no runnable code.
func structuralStub(name string) numtower.Implementation {
	return func(operands ...any) (any, error) {
		return nil, fmt.Errorf("%s: manifest declarations are structural, not executable", name)
	}
}

// recordOutcome writes the declaration and claim outcome to the ledger.
func recordOutcome(formatter *OutputFormatter, path string, handle *numtower.TypeHandle, data *checkData) error {
	ctx := context.Background()

	db, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening ledger", err)
	}
	defer db.Close()

	err = db.WriteDeclaration(ctx, store.Declaration{
		HandleID:    handle.ID(),
		Fingerprint: handle.Fingerprint(),
		Primitives:  data.Declared,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "recording declaration", err)
	}

	claimID, err := store.ClaimID(handle.Fingerprint(), data.Capabilities)
	if err != nil {
		return WrapExitError(ExitCommandError, "computing claim id", err)
	}

	outcome := store.OutcomeSatisfied
	missing := []string{}
	for _, m := range data.Missing {
		missing = append(missing, m.Op)
	}
	if !data.Satisfied {
		outcome = store.OutcomeMissing
	}

	inserted, err := db.WriteClaim(ctx, store.Claim{
		ID:             claimID,
		HandleID:       handle.ID(),
		Capabilities:   data.Capabilities,
		Outcome:        outcome,
		Missing:        missing,
		DescriptorHash: data.Descriptor,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "recording claim", err)
	}

	if inserted {
		formatter.VerboseLog("ledger: recorded claim %s", claimID)
	} else {
		formatter.VerboseLog("ledger: claim %s already recorded", claimID)
	}
	return nil
}

func renderCheck(formatter *OutputFormatter, data *checkData) {
	if data.Satisfied {
		formatter.Text("ok: claim satisfied\n")
	} else {
		formatter.Text("claim failed: missing %d primitives\n", len(data.Missing))
	}
	if data.Name != "" {
		formatter.Text("  name:         %s\n", data.Name)
	}
	formatter.Text("  capabilities: %s\n", strings.Join(data.Capabilities, ", "))
	formatter.Text("  declared:     %d primitives\n", len(data.Declared))

	if data.Satisfied {
		derived := 0
		for _, op := range data.Resolved {
			if op.Derived {
				derived++
			}
		}
		formatter.Text("  resolved:     %d operations (%d derived)\n", len(data.Resolved), derived)
		formatter.Text("  descriptor:   %s\n", data.Descriptor)
		if derived > 0 {
			formatter.Text("  derived:\n")
			for _, op := range data.Resolved {
				if op.Derived {
					formatter.Text("    %-11s%s\n", op.Op, op.Rule)
				}
			}
		}
		return
	}

	formatter.Text("  missing:\n")
	for _, m := range data.Missing {
		formatter.Text("    %-11s%s\n", m.Op, m.Reason)
	}
}

func opStrings(ops []numtower.Op) []string {
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = string(op)
	}
	return out
}
