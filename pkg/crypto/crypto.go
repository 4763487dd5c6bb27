package crypto

import (
	"crypto/ecdsa"
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gaze-network/drop-offerer/common/errs"
)

// ErrInvalidSignature is returned when a signature is malformed or cannot be recovered.
var ErrInvalidSignature = errors.Wrap(errs.InvalidArgument, "invalid signature")

// Client signs with a secp256k1 key. A client created without a key can only verify.
type Client struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// New creates a client from a hex encoded private key (with or without 0x prefix).
func New(privateKeyStr string) (*Client, error) {
	if privateKeyStr == "" {
		return &Client{}, nil
	}
	privateKeyBytes, err := hex.DecodeString(strings.TrimPrefix(privateKeyStr, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "decode private key")
	}
	privateKey, err := crypto.ToECDSA(privateKeyBytes)
	if err != nil {
		return nil, errors.Wrap(err, "parse private key")
	}
	return &Client{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}, nil
}

// GenerateKey creates a client with a new random key.
func GenerateKey() (*Client, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, errors.Wrap(err, "generate key")
	}
	return &Client{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}, nil
}

// Address returns the address of the signing key, or the zero address for verify-only clients.
func (c *Client) Address() common.Address {
	return c.address
}

// PrivateKeyHex returns the private key hex without 0x prefix.
func (c *Client) PrivateKeyHex() string {
	if c.privateKey == nil {
		return ""
	}
	return hex.EncodeToString(crypto.FromECDSA(c.privateKey))
}

// PublicKeyHex returns the uncompressed public key hex.
func (c *Client) PublicKeyHex() string {
	if c.privateKey == nil {
		return ""
	}
	return hex.EncodeToString(crypto.FromECDSAPub(&c.privateKey.PublicKey))
}

// SignHash signs a 32-byte digest and returns r ‖ s ‖ v with v in {27, 28}.
func (c *Client) SignHash(hash common.Hash) ([]byte, error) {
	if c.privateKey == nil {
		return nil, errors.New("client has no private key")
	}
	sig, err := crypto.Sign(hash[:], c.privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "sign hash")
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

// SignPersonal signs message with the EIP-191 personal message prefix.
func (c *Client) SignPersonal(message []byte) ([]byte, error) {
	return c.SignHash(common.BytesToHash(accounts.TextHash(message)))
}

// Verify reports whether sig is a personal-message signature of message by expected.
func (c *Client) Verify(message, sig []byte, expected common.Address) (bool, error) {
	signer, err := RecoverPersonal(message, sig)
	if err != nil {
		return false, errors.WithStack(err)
	}
	return signer == expected, nil
}

// RecoverHash returns the address that signed hash. It accepts 65-byte
// r ‖ s ‖ v signatures with v in {0, 1, 27, 28} and 64-byte EIP-2098 compact
// signatures, and rejects signatures with s in the upper half of the curve order.
func RecoverHash(hash common.Hash, sig []byte) (common.Address, error) {
	normalized, err := normalizeSignature(sig)
	if err != nil {
		return common.Address{}, err
	}
	pub, err := crypto.SigToPub(hash[:], normalized)
	if err != nil {
		return common.Address{}, errors.Wrap(ErrInvalidSignature, err.Error())
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// RecoverPersonal returns the address that personal-signed message.
func RecoverPersonal(message, sig []byte) (common.Address, error) {
	return RecoverHash(common.BytesToHash(accounts.TextHash(message)), sig)
}

// normalizeSignature returns a 65-byte r ‖ s ‖ v signature with v in {0, 1}.
func normalizeSignature(sig []byte) ([]byte, error) {
	out := make([]byte, crypto.SignatureLength)
	switch len(sig) {
	case crypto.SignatureLength:
		copy(out, sig)
		v := out[crypto.RecoveryIDOffset]
		if v >= 27 {
			v -= 27
		}
		out[crypto.RecoveryIDOffset] = v
	case crypto.SignatureLength - 1:
		copy(out[:32], sig[:32])
		copy(out[32:64], sig[32:64])
		out[32] &= 0x7f
		out[crypto.RecoveryIDOffset] = sig[32] >> 7
	default:
		return nil, errors.Wrapf(ErrInvalidSignature, "length %d", len(sig))
	}

	r := new(big.Int).SetBytes(out[:32])
	s := new(big.Int).SetBytes(out[32:64])
	if !crypto.ValidateSignatureValues(out[crypto.RecoveryIDOffset], r, s, true) {
		return nil, errors.Wrap(ErrInvalidSignature, "signature values out of range")
	}
	return out, nil
}
