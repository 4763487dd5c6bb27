// Package eip712 hashes typed structured data as defined by EIP-712.
//
// Struct hashes are produced by callers from [Word] encodings of their
// fields; this package owns the domain separator and the final digest.
package eip712

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// DomainTypeHash is keccak256 of the EIP712Domain type string with name, version, chainId and verifyingContract.
var DomainTypeHash = TypeHash("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)")

// Domain is the signing domain.
type Domain struct {
	Name              string
	Version           string
	ChainID           uint64
	VerifyingContract common.Address
}

// Separator returns hashStruct(domain).
func (d Domain) Separator() common.Hash {
	return HashStruct(DomainTypeHash,
		String(d.Name),
		String(d.Version),
		Uint64(d.ChainID),
		Address(d.VerifyingContract),
	)
}

// TypeHash returns keccak256 of an encoded type string.
func TypeHash(encodedType string) common.Hash {
	return crypto.Keccak256Hash([]byte(encodedType))
}

// HashStruct returns keccak256(typeHash ‖ words...).
func HashStruct(typeHash common.Hash, words ...common.Hash) common.Hash {
	buf := make([]byte, 0, 32*(len(words)+1))
	buf = append(buf, typeHash[:]...)
	for _, w := range words {
		buf = append(buf, w[:]...)
	}
	return crypto.Keccak256Hash(buf)
}

// Digest returns keccak256("\x19\x01" ‖ domainSeparator ‖ structHash).
func Digest(domainSeparator, structHash common.Hash) common.Hash {
	return crypto.Keccak256Hash([]byte{0x19, 0x01}, domainSeparator[:], structHash[:])
}

// Address encodes an address as a left-padded 32-byte word.
func Address(a common.Address) common.Hash {
	return common.BytesToHash(a[:])
}

// Uint256 encodes v as a big-endian 32-byte word. A nil value encodes as zero.
func Uint256(v *uint256.Int) common.Hash {
	if v == nil {
		return common.Hash{}
	}
	return v.Bytes32()
}

func Uint64(v uint64) common.Hash {
	return uint256.NewInt(v).Bytes32()
}

func Bool(v bool) common.Hash {
	if v {
		return Uint64(1)
	}
	return common.Hash{}
}

// String encodes a dynamic string as keccak256 of its bytes.
func String(s string) common.Hash {
	return crypto.Keccak256Hash([]byte(s))
}

// SeparatorCache caches the domain separator for a fixed name, version and
// verifying contract, recomputing it whenever the chain id changes.
type SeparatorCache struct {
	mu        sync.Mutex
	domain    Domain
	separator common.Hash
}

func NewSeparatorCache(domain Domain) *SeparatorCache {
	return &SeparatorCache{
		domain:    domain,
		separator: domain.Separator(),
	}
}

// Separator returns the separator for chainID.
func (c *SeparatorCache) Separator(chainID uint64) common.Hash {
	c.mu.Lock()
	defer c.mu.Unlock()
	if chainID != c.domain.ChainID {
		c.domain.ChainID = chainID
		c.separator = c.domain.Separator()
	}
	return c.separator
}

// Domain returns the domain last used to compute the separator.
func (c *SeparatorCache) Domain() Domain {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.domain
}
