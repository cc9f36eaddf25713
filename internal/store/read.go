package store

import (
	"context"
	"fmt"
)

// ReadDeclaration retrieves a declaration by handle ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadDeclaration(ctx context.Context, handleID string) (Declaration, error) {
	var decl Declaration
	var primsJSON string

	err := s.db.QueryRowContext(ctx, `
		SELECT handle_id, fingerprint, primitives
		FROM declarations
		WHERE handle_id = ?
	`, handleID).Scan(&decl.HandleID, &decl.Fingerprint, &primsJSON)
	if err != nil {
		return Declaration{}, err
	}

	decl.Primitives, err = unmarshalStrings(primsJSON)
	if err != nil {
		return Declaration{}, fmt.Errorf("read declaration: %w", err)
	}

	return decl, nil
}

// ReadClaims returns all claims for a handle with deterministic ordering:
// ORDER BY id COLLATE BINARY ASC.
//
// Returns an empty slice (not nil) if no claims exist for the handle.
func (s *Store) ReadClaims(ctx context.Context, handleID string) ([]Claim, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, handle_id, capabilities, outcome, missing, descriptor_hash
		FROM claims
		WHERE handle_id = ?
		ORDER BY id COLLATE BINARY ASC
	`, handleID)
	if err != nil {
		return nil, fmt.Errorf("query claims: %w", err)
	}
	defer rows.Close()

	var claims []Claim
	for rows.Next() {
		var claim Claim
		var capsJSON, missingJSON string

		if err := rows.Scan(
			&claim.ID,
			&claim.HandleID,
			&capsJSON,
			&claim.Outcome,
			&missingJSON,
			&claim.DescriptorHash,
		); err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}

		claim.Capabilities, err = unmarshalStrings(capsJSON)
		if err != nil {
			return nil, fmt.Errorf("read claim %s: %w", claim.ID, err)
		}
		claim.Missing, err = unmarshalStrings(missingJSON)
		if err != nil {
			return nil, fmt.Errorf("read claim %s: %w", claim.ID, err)
		}

		claims = append(claims, claim)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claims: %w", err)
	}

	if claims == nil {
		claims = []Claim{}
	}

	return claims, nil
}

// HasClaim checks whether a claim with the given ID is already recorded.
func (s *Store) HasClaim(ctx context.Context, id string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM claims WHERE id = ?
	`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check claim: %w", err)
	}
	return count > 0, nil
}
