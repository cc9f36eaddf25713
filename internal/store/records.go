package store

import (
	"encoding/json"
	"fmt"

	"github.com/mfield/numtower/internal/canonical"
)

// Declaration records a registered type handle and its primitive set.
type Declaration struct {
	HandleID    string
	Fingerprint string
	Primitives  []string // catalog order
}

// Claim outcomes.
const (
	OutcomeSatisfied = "satisfied"
	OutcomeMissing   = "missing"
)

// Claim records the outcome of one capability claim.
type Claim struct {
	ID             string   // content-addressed, see ClaimID
	HandleID       string
	Capabilities   []string // sorted
	Outcome        string   // OutcomeSatisfied or OutcomeMissing
	Missing        []string // empty when satisfied
	DescriptorHash string   // empty when missing
}

// ClaimID computes the content-addressed identity of a claim from the
// declaration fingerprint and the sorted capability set. Identical inputs
// always produce the same ID, which is what makes ledger writes idempotent.
func ClaimID(declarationFingerprint string, capabilities []string) (string, error) {
	caps := make([]any, len(capabilities))
	for i, c := range capabilities {
		caps[i] = c
	}
	data, err := canonical.Marshal(map[string]any{
		"declaration":  declarationFingerprint,
		"capabilities": caps,
	})
	if err != nil {
		return "", fmt.Errorf("claim id: %w", err)
	}
	return canonical.HashWithDomain(canonical.DomainClaim, data), nil
}

// marshalStrings serializes a string slice to canonical JSON for storage.
func marshalStrings(values []string) (string, error) {
	list := make([]any, len(values))
	for i, v := range values {
		list[i] = v
	}
	data, err := canonical.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// unmarshalStrings reads a stored canonical JSON array back into a slice.
// Always returns a non-nil slice.
func unmarshalStrings(data string) ([]string, error) {
	var out []string
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}
