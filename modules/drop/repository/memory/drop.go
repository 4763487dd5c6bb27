package memory

import (
	"context"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/common/errs"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/gaze-network/drop-offerer/pkg/enumerable"
	"github.com/holiman/uint256"
)

func (r *Repository) GetOwner(ctx context.Context) (owner common.Address, err error) {
	err = r.view(func(s *state) error {
		owner = s.owner
		return nil
	})
	return owner, err
}

func (r *Repository) GetPublicDrop(ctx context.Context) (publicDrop entity.PublicDrop, err error) {
	err = r.view(func(s *state) error {
		publicDrop = s.publicDrop
		return nil
	})
	return publicDrop, err
}

func (r *Repository) GetAllowListMerkleRoot(ctx context.Context) (root common.Hash, err error) {
	err = r.view(func(s *state) error {
		root = s.allowListRoot
		return nil
	})
	return root, err
}

func (r *Repository) GetCreatorPayouts(ctx context.Context) (payouts []entity.CreatorPayout, err error) {
	err = r.view(func(s *state) error {
		payouts = slices.Clone(s.creatorPayouts)
		return nil
	})
	return payouts, err
}

func (r *Repository) GetAllowedFeeRecipients(ctx context.Context) (feeRecipients []common.Address, err error) {
	err = r.view(func(s *state) error {
		feeRecipients = s.feeRecipients.Values()
		return nil
	})
	return feeRecipients, err
}

func (r *Repository) IsAllowedFeeRecipient(ctx context.Context, feeRecipient common.Address) (allowed bool, err error) {
	err = r.view(func(s *state) error {
		allowed = s.feeRecipients.Contains(feeRecipient)
		return nil
	})
	return allowed, err
}

func (r *Repository) GetAllowedPayers(ctx context.Context) (payers []common.Address, err error) {
	err = r.view(func(s *state) error {
		payers = s.payers.Values()
		return nil
	})
	return payers, err
}

func (r *Repository) IsAllowedPayer(ctx context.Context, payer common.Address) (allowed bool, err error) {
	err = r.view(func(s *state) error {
		allowed = s.payers.Contains(payer)
		return nil
	})
	return allowed, err
}

func (r *Repository) GetSigners(ctx context.Context) (signers []common.Address, err error) {
	err = r.view(func(s *state) error {
		signers = s.signers.Values()
		return nil
	})
	return signers, err
}

func (r *Repository) GetSignedMintValidationParams(ctx context.Context, signer common.Address) (params entity.SignedMintValidationParams, err error) {
	err = r.view(func(s *state) error {
		p, ok := s.signerParams[signer]
		if !ok {
			return errors.Wrapf(errs.NotFound, "signer %s", signer.Hex())
		}
		params = p
		return nil
	})
	return params, err
}

func (r *Repository) GetTokenGatedAllowedTokens(ctx context.Context) (tokens []common.Address, err error) {
	err = r.view(func(s *state) error {
		tokens = s.gatedTokens.Values()
		return nil
	})
	return tokens, err
}

func (r *Repository) GetTokenGatedDropStage(ctx context.Context, allowedNftToken common.Address) (stage entity.TokenGatedDropStage, err error) {
	err = r.view(func(s *state) error {
		st, ok := s.gatedStages[allowedNftToken]
		if !ok {
			return errors.Wrapf(errs.NotFound, "token gated drop stage %s", allowedNftToken.Hex())
		}
		stage = st
		return nil
	})
	return stage, err
}

func (r *Repository) GetTokenGatedRedeemed(ctx context.Context, allowedNftToken common.Address, tokenID *uint256.Int) (redeemed uint64, err error) {
	err = r.view(func(s *state) error {
		redeemed = s.redeemed[redemptionKey{token: allowedNftToken, tokenID: tokenID.Bytes32()}]
		return nil
	})
	return redeemed, err
}

func (r *Repository) IsDigestUsed(ctx context.Context, digest common.Hash) (used bool, err error) {
	err = r.view(func(s *state) error {
		_, used = s.usedDigests[digest]
		return nil
	})
	return used, err
}

func (r *Repository) GetEvents(ctx context.Context, fromSeq uint64, limit int) (events []entity.Event, err error) {
	err = r.view(func(s *state) error {
		start, _ := slices.BinarySearchFunc(s.events, fromSeq, func(e entity.Event, seq uint64) int {
			switch {
			case e.Seq < seq:
				return -1
			case e.Seq > seq:
				return 1
			}
			return 0
		})
		end := len(s.events)
		if limit > 0 && start+limit < end {
			end = start + limit
		}
		events = slices.Clone(s.events[start:end])
		return nil
	})
	return events, err
}

func (r *Repository) SetOwner(ctx context.Context, owner common.Address) error {
	return r.update(func(s *state) error {
		s.owner = owner
		return nil
	})
}

func (r *Repository) SetPublicDrop(ctx context.Context, publicDrop entity.PublicDrop) error {
	return r.update(func(s *state) error {
		s.publicDrop = publicDrop
		return nil
	})
}

func (r *Repository) SetAllowListMerkleRoot(ctx context.Context, root common.Hash) error {
	return r.update(func(s *state) error {
		s.allowListRoot = root
		return nil
	})
}

func (r *Repository) SetCreatorPayouts(ctx context.Context, payouts []entity.CreatorPayout) error {
	return r.update(func(s *state) error {
		s.creatorPayouts = slices.Clone(payouts)
		return nil
	})
}

func (r *Repository) AddAllowedFeeRecipient(ctx context.Context, feeRecipient common.Address) error {
	return r.update(func(s *state) error {
		return addToSet(s.feeRecipients, feeRecipient)
	})
}

func (r *Repository) RemoveAllowedFeeRecipient(ctx context.Context, feeRecipient common.Address) error {
	return r.update(func(s *state) error {
		return removeFromSet(s.feeRecipients, feeRecipient)
	})
}

func (r *Repository) AddAllowedPayer(ctx context.Context, payer common.Address) error {
	return r.update(func(s *state) error {
		return addToSet(s.payers, payer)
	})
}

func (r *Repository) RemoveAllowedPayer(ctx context.Context, payer common.Address) error {
	return r.update(func(s *state) error {
		return removeFromSet(s.payers, payer)
	})
}

func (r *Repository) SetSignedMintValidationParams(ctx context.Context, signer common.Address, params entity.SignedMintValidationParams) error {
	return r.update(func(s *state) error {
		s.signers.Add(signer)
		params.MinMintPrices = slices.Clone(params.MinMintPrices)
		s.signerParams[signer] = params
		return nil
	})
}

func (r *Repository) RemoveSigner(ctx context.Context, signer common.Address) error {
	return r.update(func(s *state) error {
		if err := removeFromSet(s.signers, signer); err != nil {
			return err
		}
		delete(s.signerParams, signer)
		return nil
	})
}

func (r *Repository) SetTokenGatedDropStage(ctx context.Context, allowedNftToken common.Address, stage entity.TokenGatedDropStage) error {
	return r.update(func(s *state) error {
		s.gatedTokens.Add(allowedNftToken)
		s.gatedStages[allowedNftToken] = stage
		return nil
	})
}

func (r *Repository) RemoveTokenGatedDropStage(ctx context.Context, allowedNftToken common.Address) error {
	return r.update(func(s *state) error {
		if err := removeFromSet(s.gatedTokens, allowedNftToken); err != nil {
			return err
		}
		delete(s.gatedStages, allowedNftToken)
		return nil
	})
}

func (r *Repository) SetTokenGatedRedeemed(ctx context.Context, redemption entity.Redemption) error {
	return r.update(func(s *state) error {
		key := redemptionKey{token: redemption.Token, tokenID: redemption.TokenID.Bytes32()}
		if redemption.Redeemed < s.redeemed[key] {
			return errors.Wrapf(errs.InvalidArgument, "redeemed counter cannot decrease from %d to %d", s.redeemed[key], redemption.Redeemed)
		}
		s.redeemed[key] = redemption.Redeemed
		return nil
	})
}

func (r *Repository) AddUsedDigest(ctx context.Context, digest common.Hash) error {
	return r.update(func(s *state) error {
		if _, ok := s.usedDigests[digest]; ok {
			return errors.Wrapf(errs.Conflict, "digest %s already used", digest.Hex())
		}
		s.usedDigests[digest] = struct{}{}
		return nil
	})
}

func (r *Repository) CreateEvent(ctx context.Context, kind entity.EventKind, payload []byte) (event entity.Event, err error) {
	err = r.update(func(s *state) error {
		event = entity.Event{
			Seq:       uint64(len(s.events)) + 1,
			Kind:      kind,
			Payload:   slices.Clone(payload),
			CreatedAt: r.store.clock().UTC(),
		}
		s.events = append(s.events, event)
		return nil
	})
	return event, err
}

func addToSet(set *enumerable.Set[common.Address], addr common.Address) error {
	if !set.Add(addr) {
		return errors.Wrapf(errs.Conflict, "%s already exists", addr.Hex())
	}
	return nil
}

func removeFromSet(set *enumerable.Set[common.Address], addr common.Address) error {
	if !set.Remove(addr) {
		return errors.Wrapf(errs.NotFound, "%s", addr.Hex())
	}
	return nil
}
