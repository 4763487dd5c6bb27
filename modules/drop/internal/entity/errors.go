package entity

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cockroachdb/errors/withstack"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/common/errs"
	"github.com/holiman/uint256"
	"github.com/samber/lo"
)

// Error is a domain failure. Kind is matched with errors.Is, Details carries
// the offending value and the bound it violated.
type Error struct {
	Kind    errs.ErrorKind
	Details map[string]any
}

func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return string(e.Kind)
	}
	keys := lo.Keys(e.Details)
	slices.Sort(keys)
	parts := lo.Map(keys, func(k string, _ int) string {
		return fmt.Sprintf("%s=%v", k, e.Details[k])
	})
	return fmt.Sprintf("%s (%s)", e.Kind, strings.Join(parts, ", "))
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind errs.ErrorKind, kv ...any) error {
	details := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		details[kv[i].(string)] = detailValue(kv[i+1])
	}
	return withstack.WithStackDepth(&Error{Kind: kind, Details: details}, 2)
}

func detailValue(v any) any {
	switch v := v.(type) {
	case common.Address:
		return v.Hex()
	case common.Hash:
		return v.Hex()
	case *uint256.Int:
		if v == nil {
			return "0"
		}
		return v.Dec()
	}
	return v
}

// decoder
const (
	ErrMissingSelfItem         = errs.ErrorKind("MissingSelfItem")
	ErrUnsupportedVersion      = errs.ErrorKind("UnsupportedExtraDataVersion")
	ErrUnsupportedSubstandard  = errs.ErrorKind("InvalidSubstandard")
	ErrPayloadTooShort         = errs.ErrorKind("InvalidExtraDataEncoding")
	ErrMalformedPayload        = errs.ErrorKind("MalformedSubstandardPayload")
	ErrSubstandardNotSupported = errs.ErrorKind("NotImplemented")
)

// eligibility
const (
	ErrNotActive                                  = errs.ErrorKind("NotActive")
	ErrPayerNotAllowed                            = errs.ErrorKind("PayerNotAllowed")
	ErrFeeRecipientCannotBeZeroAddress            = errs.ErrorKind("FeeRecipientCannotBeZeroAddress")
	ErrFeeRecipientNotAllowed                     = errs.ErrorKind("FeeRecipientNotAllowed")
	ErrMintQuantityCannotBeZero                   = errs.ErrorKind("MintQuantityCannotBeZero")
	ErrMintQuantityExceedsMaxMintedPerWallet      = errs.ErrorKind("MintQuantityExceedsMaxMintedPerWallet")
	ErrMintQuantityExceedsMaxSupply               = errs.ErrorKind("MintQuantityExceedsMaxSupply")
	ErrMintQuantityExceedsMaxTokenSupplyForStage  = errs.ErrorKind("MintQuantityExceedsMaxTokenSupplyForStage")
	ErrInvalidProof                               = errs.ErrorKind("InvalidProof")
	ErrInvalidSignature                           = errs.ErrorKind("InvalidSignature")
	ErrPaymentTokenPriceNotSet                    = errs.ErrorKind("PaymentTokenPriceNotSet")
	ErrInvalidSignedMintPrice                     = errs.ErrorKind("InvalidSignedMintPrice")
	ErrInvalidSignedMaxTotalMintableByWallet      = errs.ErrorKind("InvalidSignedMaxTotalMintableByWallet")
	ErrInvalidSignedStartTime                     = errs.ErrorKind("InvalidSignedStartTime")
	ErrInvalidSignedEndTime                       = errs.ErrorKind("InvalidSignedEndTime")
	ErrInvalidSignedMaxTokenSupplyForStage        = errs.ErrorKind("InvalidSignedMaxTokenSupplyForStage")
	ErrInvalidSignedFeeBps                        = errs.ErrorKind("InvalidSignedFeeBps")
	ErrSignedMintsMustRestrictFeeRecipients       = errs.ErrorKind("SignedMintsMustRestrictFeeRecipients")
	ErrSignatureAlreadyUsed                       = errs.ErrorKind("SignatureAlreadyUsed")
	ErrTokenGatedDropStageNotActive               = errs.ErrorKind("TokenGatedDropStageNotActive")
	ErrTokenGatedMismatchedArrayLengths           = errs.ErrorKind("TokenGatedMismatchedArrayLengths")
	ErrTokenGatedNotTokenOwner                    = errs.ErrorKind("TokenGatedNotTokenOwner")
	ErrTokenGatedTokenIdMintExceedsQuantityRemain = errs.ErrorKind("TokenGatedTokenIdMintExceedsQuantityRemaining")
	ErrQuantityMismatch                           = errs.ErrorKind("QuantityMismatch")
)

// configuration and payouts
const (
	ErrInvalidFeeBps                                   = errs.ErrorKind("InvalidFeeBps")
	ErrCreatorPayoutAddressZero                        = errs.ErrorKind("CreatorPayoutAddressCannotBeZeroAddress")
	ErrCreatorPayoutsNotSet                            = errs.ErrorKind("CreatorPayoutsNotSet")
	ErrCreatorPayoutBasisPointsZero                    = errs.ErrorKind("CreatorPayoutBasisPointsCannotBeZero")
	ErrInvalidTotalBasisPoints                         = errs.ErrorKind("InvalidCreatorPayoutTotalBasisPoints")
	ErrDuplicateEntry                                  = errs.ErrorKind("DuplicateEntry")
	ErrNotPresent                                      = errs.ErrorKind("NotPresent")
	ErrPayerCannotBeZeroAddress                        = errs.ErrorKind("PayerCannotBeZeroAddress")
	ErrSignerCannotBeZeroAddress                       = errs.ErrorKind("SignerCannotBeZeroAddress")
	ErrSignerMaxTotalMintableByWalletZero              = errs.ErrorKind("SignerMaxTotalMintableByWalletCannotBeZero")
	ErrTokenGatedDropAllowedNftTokenCannotBeZero       = errs.ErrorKind("TokenGatedDropAllowedNftTokenCannotBeZeroAddress")
	ErrTokenGatedDropAllowedNftTokenCannotBeDropItself = errs.ErrorKind("TokenGatedDropAllowedNftTokenCannotBeDropToken")
	ErrTokenGatedDropStageMaxMintableZero              = errs.ErrorKind("TokenGatedDropStageMaxMintablePerRedeemedTokenCannotBeZero")
	ErrNewOwnerIsZeroAddress                           = errs.ErrorKind("NewOwnerIsZeroAddress")
	ErrOnlyOwner                                       = errs.ErrorKind("OnlyOwner")
)

// engine
const (
	ErrInvalidCaller = errs.ErrorKind("InvalidCaller")
	ErrReentrantCall = errs.ErrorKind("ReentrantCall")
)

func MissingSelfItem(items int) error {
	return newError(ErrMissingSelfItem, "minimumReceivedItems", items)
}

func UnsupportedVersion(version uint8) error {
	return newError(ErrUnsupportedVersion, "version", version)
}

func UnsupportedSubstandard(substandard uint8) error {
	return newError(ErrUnsupportedSubstandard, "substandard", substandard)
}

func PayloadTooShort(length, minimum int) error {
	return newError(ErrPayloadTooShort, "length", length, "minimum", minimum)
}

func MalformedPayload(substandard Substandard, reason string) error {
	return newError(ErrMalformedPayload, "substandard", substandard.String(), "reason", reason)
}

func SubstandardNotSupported(substandard Substandard) error {
	return newError(ErrSubstandardNotSupported, "substandard", substandard.String())
}

func NotActive(now, start, end uint64) error {
	return newError(ErrNotActive, "currentTimestamp", now, "startTimestamp", start, "endTimestamp", end)
}

func PayerNotAllowed(payer common.Address) error {
	return newError(ErrPayerNotAllowed, "payer", payer)
}

func FeeRecipientCannotBeZeroAddress() error {
	return newError(ErrFeeRecipientCannotBeZeroAddress)
}

func FeeRecipientNotAllowed(feeRecipient common.Address) error {
	return newError(ErrFeeRecipientNotAllowed, "feeRecipient", feeRecipient)
}

func MintQuantityCannotBeZero() error {
	return newError(ErrMintQuantityCannotBeZero)
}

func MintQuantityExceedsMaxMintedPerWallet(total, allowed *uint256.Int) error {
	return newError(ErrMintQuantityExceedsMaxMintedPerWallet, "total", total, "allowed", allowed)
}

func MintQuantityExceedsMaxSupply(total, maxSupply *uint256.Int) error {
	return newError(ErrMintQuantityExceedsMaxSupply, "total", total, "maxSupply", maxSupply)
}

func MintQuantityExceedsMaxTokenSupplyForStage(total, maxTokenSupplyForStage *uint256.Int) error {
	return newError(ErrMintQuantityExceedsMaxTokenSupplyForStage, "total", total, "maxTokenSupplyForStage", maxTokenSupplyForStage)
}

func InvalidProof(root, leaf common.Hash) error {
	return newError(ErrInvalidProof, "merkleRoot", root, "leaf", leaf)
}

func InvalidSignature(recovered common.Address) error {
	return newError(ErrInvalidSignature, "recoveredSigner", recovered)
}

func PaymentTokenPriceNotSet(paymentToken common.Address) error {
	return newError(ErrPaymentTokenPriceNotSet, "paymentToken", paymentToken)
}

func InvalidSignedMintPrice(paymentToken common.Address, got, minimum *uint256.Int) error {
	return newError(ErrInvalidSignedMintPrice, "paymentToken", paymentToken, "got", got, "minimum", minimum)
}

func InvalidSignedMaxTotalMintableByWallet(got *uint256.Int, maximum uint64) error {
	return newError(ErrInvalidSignedMaxTotalMintableByWallet, "got", got, "maximum", maximum)
}

func InvalidSignedStartTime(got *uint256.Int, minimum uint64) error {
	return newError(ErrInvalidSignedStartTime, "got", got, "minimum", minimum)
}

func InvalidSignedEndTime(got *uint256.Int, maximum uint64) error {
	return newError(ErrInvalidSignedEndTime, "got", got, "maximum", maximum)
}

func InvalidSignedMaxTokenSupplyForStage(got *uint256.Int, maximum uint64) error {
	return newError(ErrInvalidSignedMaxTokenSupplyForStage, "got", got, "maximum", maximum)
}

func InvalidSignedFeeBps(got *uint256.Int, bound uint16, isMinimum bool) error {
	if isMinimum {
		return newError(ErrInvalidSignedFeeBps, "got", got, "minimum", bound)
	}
	return newError(ErrInvalidSignedFeeBps, "got", got, "maximum", bound)
}

func SignedMintsMustRestrictFeeRecipients() error {
	return newError(ErrSignedMintsMustRestrictFeeRecipients)
}

func SignatureAlreadyUsed(digest common.Hash) error {
	return newError(ErrSignatureAlreadyUsed, "digest", digest)
}

func TokenGatedDropStageNotActive(allowedNftToken common.Address) error {
	return newError(ErrTokenGatedDropStageNotActive, "allowedNftToken", allowedNftToken)
}

func TokenGatedMismatchedArrayLengths(tokenIDs, amounts int) error {
	return newError(ErrTokenGatedMismatchedArrayLengths, "tokenIds", tokenIDs, "amounts", amounts)
}

func TokenGatedNotTokenOwner(allowedNftToken common.Address, tokenID *uint256.Int, owner common.Address) error {
	return newError(ErrTokenGatedNotTokenOwner, "allowedNftToken", allowedNftToken, "tokenId", tokenID, "owner", owner)
}

func TokenGatedTokenIdMintExceedsQuantityRemaining(allowedNftToken common.Address, tokenID *uint256.Int, maxMintable uint64, redeemed *uint256.Int) error {
	return newError(ErrTokenGatedTokenIdMintExceedsQuantityRemain,
		"allowedNftToken", allowedNftToken,
		"tokenId", tokenID,
		"maxMintablePerRedeemedToken", maxMintable,
		"newCumulative", redeemed,
	)
}

func QuantityMismatch(requested, redeemed *uint256.Int) error {
	return newError(ErrQuantityMismatch, "requested", requested, "redeemed", redeemed)
}

func InvalidFeeBps(feeBps uint64) error {
	return newError(ErrInvalidFeeBps, "feeBps", feeBps)
}

func InvalidFeeBpsRange(minFeeBps, maxFeeBps uint16) error {
	return newError(ErrInvalidFeeBps, "minFeeBps", minFeeBps, "maxFeeBps", maxFeeBps)
}

func CreatorPayoutAddressZero(index int) error {
	return newError(ErrCreatorPayoutAddressZero, "index", index)
}

func CreatorPayoutsNotSet() error {
	return newError(ErrCreatorPayoutsNotSet)
}

func CreatorPayoutBasisPointsZero(index int) error {
	return newError(ErrCreatorPayoutBasisPointsZero, "index", index)
}

func InvalidTotalBasisPoints(total uint64) error {
	return newError(ErrInvalidTotalBasisPoints, "totalReceivedBasisPoints", total, "expected", BasisPointsDenominator)
}

func DuplicateEntry(list string, entry common.Address) error {
	return newError(ErrDuplicateEntry, "list", list, "entry", entry)
}

func NotPresent(list string, entry common.Address) error {
	return newError(ErrNotPresent, "list", list, "entry", entry)
}

func PayerCannotBeZeroAddress() error {
	return newError(ErrPayerCannotBeZeroAddress)
}

func SignerCannotBeZeroAddress() error {
	return newError(ErrSignerCannotBeZeroAddress)
}

func SignerMaxTotalMintableByWalletZero(signer common.Address) error {
	return newError(ErrSignerMaxTotalMintableByWalletZero, "signer", signer)
}

func TokenGatedDropAllowedNftTokenCannotBeZero() error {
	return newError(ErrTokenGatedDropAllowedNftTokenCannotBeZero)
}

func TokenGatedDropAllowedNftTokenCannotBeDropItself(token common.Address) error {
	return newError(ErrTokenGatedDropAllowedNftTokenCannotBeDropItself, "allowedNftToken", token)
}

func TokenGatedDropStageMaxMintableZero(token common.Address) error {
	return newError(ErrTokenGatedDropStageMaxMintableZero, "allowedNftToken", token)
}

func NewOwnerIsZeroAddress() error {
	return newError(ErrNewOwnerIsZeroAddress)
}

func OnlyOwner(caller common.Address) error {
	return newError(ErrOnlyOwner, "caller", caller)
}

func InvalidCaller(caller common.Address) error {
	return newError(ErrInvalidCaller, "caller", caller)
}

func ReentrantCall() error {
	return newError(ErrReentrantCall)
}
