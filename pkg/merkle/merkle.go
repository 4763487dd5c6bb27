// Package merkle implements keccak256 Merkle trees using the sorted-pair
// convention: a parent is the hash of its two children concatenated in
// ascending byte order, so proofs carry no left/right position bits.
package merkle

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gaze-network/drop-offerer/common/errs"
)

// HashPair returns keccak256(min(a, b) ‖ max(a, b)).
func HashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return crypto.Keccak256Hash(a[:], b[:])
}

// ProcessProof folds the proof siblings into leaf and returns the resulting root.
func ProcessProof(proof []common.Hash, leaf common.Hash) common.Hash {
	computed := leaf
	for _, sibling := range proof {
		computed = HashPair(computed, sibling)
	}
	return computed
}

// Verify reports whether leaf is included under root given the proof.
func Verify(proof []common.Hash, root, leaf common.Hash) bool {
	return ProcessProof(proof, leaf) == root
}

// Tree is a complete Merkle tree built bottom-up from its leaves. Layers
// with an odd number of nodes promote the last node unchanged.
type Tree struct {
	layers [][]common.Hash
	index  map[common.Hash]int
}

// NewTree builds a tree over leaves in the given order.
func NewTree(leaves []common.Hash) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, errors.Wrap(errs.InvalidArgument, "merkle tree requires at least one leaf")
	}

	index := make(map[common.Hash]int, len(leaves))
	for i, leaf := range leaves {
		if _, ok := index[leaf]; ok {
			return nil, errors.Wrapf(errs.InvalidArgument, "duplicate leaf %s", leaf.Hex())
		}
		index[leaf] = i
	}

	layer := make([]common.Hash, len(leaves))
	copy(layer, leaves)
	layers := [][]common.Hash{layer}
	for len(layer) > 1 {
		next := make([]common.Hash, 0, (len(layer)+1)/2)
		for i := 0; i < len(layer); i += 2 {
			if i+1 == len(layer) {
				next = append(next, layer[i])
				continue
			}
			next = append(next, HashPair(layer[i], layer[i+1]))
		}
		layers = append(layers, next)
		layer = next
	}

	return &Tree{layers: layers, index: index}, nil
}

// Root returns the tree root.
func (t *Tree) Root() common.Hash {
	top := t.layers[len(t.layers)-1]
	return top[0]
}

// Len returns the number of leaves.
func (t *Tree) Len() int {
	return len(t.layers[0])
}

// Proof returns the sibling path for leaf, bottom-up.
func (t *Tree) Proof(leaf common.Hash) ([]common.Hash, error) {
	i, ok := t.index[leaf]
	if !ok {
		return nil, errors.Wrapf(errs.NotFound, "leaf %s", leaf.Hex())
	}

	proof := make([]common.Hash, 0, len(t.layers)-1)
	for _, layer := range t.layers[:len(t.layers)-1] {
		sibling := i ^ 1
		if sibling < len(layer) {
			proof = append(proof, layer[sibling])
		}
		i /= 2
	}
	return proof, nil
}
