package drop

import (
	"crypto/rand"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gaze-network/drop-offerer/common/errs"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/extradata"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/validator/allowlist"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/validator/signed"
	"github.com/gaze-network/drop-offerer/pkg/crypto"
	"github.com/gaze-network/drop-offerer/pkg/eip712"
	"github.com/holiman/uint256"
	"github.com/samber/lo"
)

// MintParamsJSON is the JSON form of the mint params committed to by allow-lists and signers.
// Numbers are decimal strings.
type MintParamsJSON struct {
	MintPrice                string         `json:"mintPrice"`
	PaymentToken             common.Address `json:"paymentToken"`
	MaxTotalMintableByWallet string         `json:"maxTotalMintableByWallet"`
	StartTime                string         `json:"startTime"`
	EndTime                  string         `json:"endTime"`
	DropStageIndex           string         `json:"dropStageIndex"`
	MaxTokenSupplyForStage   string         `json:"maxTokenSupplyForStage"`
	FeeBps                   string         `json:"feeBps"`
	RestrictFeeRecipients    bool           `json:"restrictFeeRecipients"`
}

func (p MintParamsJSON) toMintParams() (entity.MintParams, error) {
	var err error
	parse := func(field, value string) *uint256.Int {
		if err != nil {
			return nil
		}
		v, parseErr := uint256.FromDecimal(lo.Ternary(value == "", "0", value))
		if parseErr != nil {
			err = errors.Wrapf(errs.InvalidArgument, "invalid %s %q: %v", field, value, parseErr)
		}
		return v
	}
	params := entity.MintParams{
		MintPrice:                parse("mintPrice", p.MintPrice),
		PaymentToken:             p.PaymentToken,
		MaxTotalMintableByWallet: parse("maxTotalMintableByWallet", p.MaxTotalMintableByWallet),
		StartTime:                parse("startTime", p.StartTime),
		EndTime:                  parse("endTime", p.EndTime),
		DropStageIndex:           parse("dropStageIndex", p.DropStageIndex),
		MaxTokenSupplyForStage:   parse("maxTokenSupplyForStage", p.MaxTokenSupplyForStage),
		FeeBps:                   parse("feeBps", p.FeeBps),
		RestrictFeeRecipients:    p.RestrictFeeRecipients,
	}
	if err != nil {
		return entity.MintParams{}, err
	}
	return params, nil
}

type AllowListEntry struct {
	Minter     common.Address `json:"minter"`
	MintParams MintParamsJSON `json:"mintParams"`
}

type AllowListProof struct {
	AllowListEntry
	Leaf  common.Hash   `json:"leaf"`
	Proof []common.Hash `json:"proof"`
}

type AllowList struct {
	MerkleRoot common.Hash      `json:"merkleRoot"`
	Entries    []AllowListProof `json:"entries"`
}

// BuildAllowList computes the allow-list merkle root and the proof of every entry.
func BuildAllowList(entries []AllowListEntry) (AllowList, error) {
	treeEntries := make([]allowlist.Entry, 0, len(entries))
	for i, entry := range entries {
		params, err := entry.MintParams.toMintParams()
		if err != nil {
			return AllowList{}, errors.Wrapf(err, "entry %d", i)
		}
		treeEntries = append(treeEntries, allowlist.Entry{Minter: entry.Minter, MintParams: params})
	}
	tree, err := allowlist.BuildTree(treeEntries)
	if err != nil {
		return AllowList{}, errors.Wrap(err, "failed to build allow-list tree")
	}

	result := AllowList{
		MerkleRoot: tree.Root(),
		Entries:    make([]AllowListProof, 0, len(entries)),
	}
	for i, entry := range treeEntries {
		proof, err := tree.Proof(i)
		if err != nil {
			return AllowList{}, errors.Wrapf(err, "failed to get proof of entry %d", i)
		}
		result.Entries = append(result.Entries, AllowListProof{
			AllowListEntry: entries[i],
			Leaf:           allowlist.Leaf(entry.Minter, entry.MintParams),
			Proof:          proof,
		})
	}
	return result, nil
}

type SignMintRequest struct {
	Minter       common.Address `json:"minter"`
	FeeRecipient common.Address `json:"feeRecipient"`
	MintParams   MintParamsJSON `json:"mintParams"`
	// Salt is random when zero.
	Salt common.Hash `json:"salt"`
}

type SignedMint struct {
	Signer    common.Address `json:"signer"`
	Salt      common.Hash    `json:"salt"`
	Digest    common.Hash    `json:"digest"`
	Signature hexutil.Bytes  `json:"signature"`
	// Context is the complete extra data of the signed mint request.
	Context hexutil.Bytes `json:"context"`
}

// SignMint signs a signed-mint authorization for domain with signer.
func SignMint(signer *crypto.Client, domain eip712.Domain, req SignMintRequest) (SignedMint, error) {
	params, err := req.MintParams.toMintParams()
	if err != nil {
		return SignedMint{}, errors.WithStack(err)
	}
	salt := req.Salt
	if salt == (common.Hash{}) {
		if _, err := rand.Read(salt[:]); err != nil {
			return SignedMint{}, errors.Wrap(err, "failed to generate salt")
		}
	}

	digest := signed.Digest(domain.Separator(), req.Minter, req.FeeRecipient, params, salt)
	signature, err := signer.SignHash(digest)
	if err != nil {
		return SignedMint{}, errors.Wrap(err, "failed to sign digest")
	}
	return SignedMint{
		Signer:    signer.Address(),
		Salt:      salt,
		Digest:    digest,
		Signature: signature,
		Context:   extradata.EncodeSigned(req.FeeRecipient, req.Minter, params, salt, signature),
	}, nil
}
