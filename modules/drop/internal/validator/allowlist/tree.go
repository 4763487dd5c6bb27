package allowlist

import (
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/gaze-network/drop-offerer/pkg/merkle"
	"github.com/samber/lo"
)

// Entry is one allow-listed minter with the terms it may mint under.
type Entry struct {
	Minter     common.Address
	MintParams entity.MintParams
}

// Tree is an allow-list Merkle tree with per-entry proofs.
type Tree struct {
	entries []Entry
	tree    *merkle.Tree
}

func BuildTree(entries []Entry) (*Tree, error) {
	leaves := lo.Map(entries, func(e Entry, _ int) common.Hash {
		return Leaf(e.Minter, e.MintParams)
	})
	tree, err := merkle.NewTree(leaves)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build allow-list tree")
	}
	return &Tree{entries: entries, tree: tree}, nil
}

func (t *Tree) Root() common.Hash {
	return t.tree.Root()
}

// Proof returns the proof for the i-th entry.
func (t *Tree) Proof(i int) ([]common.Hash, error) {
	if i < 0 || i >= len(t.entries) {
		return nil, errors.Errorf("entry index %d out of range", i)
	}
	proof, err := t.tree.Proof(Leaf(t.entries[i].Minter, t.entries[i].MintParams))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return proof, nil
}
