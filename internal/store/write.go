package store

import (
	"context"
	"fmt"
)

// WriteDeclaration inserts a declaration record into the ledger.
// Uses ON CONFLICT(handle_id) DO NOTHING for idempotency - re-recording the
// same handle is silently ignored.
func (s *Store) WriteDeclaration(ctx context.Context, decl Declaration) error {
	primsJSON, err := marshalStrings(decl.Primitives)
	if err != nil {
		return fmt.Errorf("write declaration: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO declarations
		(handle_id, fingerprint, primitives)
		VALUES (?, ?, ?)
		ON CONFLICT(handle_id) DO NOTHING
	`,
		decl.HandleID,
		decl.Fingerprint,
		primsJSON,
	)
	if err != nil {
		return fmt.Errorf("write declaration: %w", err)
	}

	return nil
}

// WriteClaim inserts a claim record into the ledger. Returns whether a new
// row was inserted.
//
// The claim ID is content-addressed over (declaration fingerprint,
// capability set), so claiming the same capabilities on the same declared
// set is a ledger no-op - exactly mirroring the idempotence of the claim
// operation itself.
//
// Note: The declaration referenced by HandleID must exist (foreign key
// constraint).
func (s *Store) WriteClaim(ctx context.Context, claim Claim) (inserted bool, err error) {
	capsJSON, err := marshalStrings(claim.Capabilities)
	if err != nil {
		return false, fmt.Errorf("write claim: %w", err)
	}

	missingJSON, err := marshalStrings(claim.Missing)
	if err != nil {
		return false, fmt.Errorf("write claim: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO claims
		(id, handle_id, capabilities, outcome, missing, descriptor_hash)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		claim.ID,
		claim.HandleID,
		capsJSON,
		claim.Outcome,
		missingJSON,
		claim.DescriptorHash,
	)
	if err != nil {
		return false, fmt.Errorf("write claim: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write claim: rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
