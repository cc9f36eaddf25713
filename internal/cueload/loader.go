package cueload

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/mfield/numtower"
)

// LoadMode controls how errors are handled during tower loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the results of loading a tower spec directory.
type LoadResult struct {
	Defs      []numtower.CapabilityDef
	CUEValue  cue.Value // the raw CUE value for additional processing
	FileCount int       // number of CUE files found
}

// LoadError represents an error that occurred during tower loading.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants, shared with the CLI.
const (
	ErrCodeGeneric     = "E001" // generic/unknown error
	ErrCodeScanError   = "E002" // directory scan error
	ErrCodeNoFiles     = "E003" // no CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeCompile     = "E101" // capability compilation failed
	ErrCodeRegistry    = "E102" // registry construction failed
)

// LoadTower loads capability definitions from a directory of CUE files.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadTower(dir string, mode LoadMode) (*LoadResult, []error) {
	var errs []error

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("tower spec directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing tower spec directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{
		CUEValue:  value,
		FileCount: len(cueFiles),
	}

	capsVal := value.LookupPath(cue.ParsePath("capability"))
	if !capsVal.Exists() {
		return result, []error{&LoadError{Code: ErrCodeGeneric, Message: "no capability declarations found in tower spec"}}
	}

	iter, iterErr := capsVal.Fields()
	if iterErr != nil {
		return result, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating capabilities: %v", iterErr)}}
	}
	for iter.Next() {
		def, compileErr := CompileCapability(iter.Value())
		if compileErr != nil {
			errs = append(errs, &LoadError{
				Code:    ErrCodeCompile,
				Message: fmt.Sprintf("capability.%s: %v", iter.Label(), compileErr),
			})
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		result.Defs = append(result.Defs, *def)
	}

	if len(result.Defs) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no capabilities found in tower spec"})
	}

	return result, errs
}

// BuildRegistry constructs a validated registry and derivation library from
// loaded definitions. Builtin derivation rules whose origin capability is
// absent from the custom tower are dropped: a tower without Orderable has
// no level to hang the comparison rules on.
func BuildRegistry(defs []numtower.CapabilityDef) (*numtower.Registry, *numtower.Library, error) {
	reg, err := numtower.NewRegistry(defs)
	if err != nil {
		return nil, nil, &LoadError{Code: ErrCodeRegistry, Message: err.Error()}
	}

	var rules []numtower.Rule
	for _, rule := range numtower.BuiltinRules() {
		if reg.Has(rule.Origin) {
			rules = append(rules, rule)
		}
	}

	lib, err := numtower.NewLibrary(reg, rules, numtower.BuiltinNonDerivable())
	if err != nil {
		return nil, nil, &LoadError{Code: ErrCodeRegistry, Message: err.Error()}
	}

	return reg, lib, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
