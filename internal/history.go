package internal

import (
	"context"
	"fmt"
)

// ResolveChain walks first parents from head down to target and returns the
// commits visited, oldest first, so the target comes first. A merge commit
// above the target cannot be replayed and fails the walk.
func ResolveChain(ctx context.Context, repo ObjectRepository, head, target Oid, maxDepth int) ([]Oid, error) {
	var chain []Oid

	oid := head
	for depth := 0; maxDepth <= 0 || depth < maxDepth; depth++ {
		chain = append(chain, oid)
		if oid == target {
			reverseOids(chain)
			return chain, nil
		}

		c, err := repo.FindCommit(ctx, oid)
		if err != nil {
			return nil, err
		}
		switch len(c.ParentOids) {
		case 0:
			return nil, fmt.Errorf("%s: %w", target, ErrNotAncestor)
		case 1:
			oid = c.ParentOids[0]
		default:
			return nil, fmt.Errorf("descendant %s: %w", oid, ErrMergeCommit)
		}
	}

	return nil, fmt.Errorf("%s not found within %d commits: %w", target, maxDepth, ErrNotAncestor)
}

func reverseOids(oids []Oid) {
	for i, j := 0, len(oids)-1; i < j; i, j = i+1, j-1 {
		oids[i], oids[j] = oids[j], oids[i]
	}
}
