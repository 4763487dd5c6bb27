package httphandler

import (
	"fmt"

	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/gaze-network/drop-offerer/pkg/decimals"
	"github.com/samber/lo"
)

// Prices are decimal strings in the smallest unit of the payment token.

type publicDropDTO struct {
	MintPrice                string `json:"mintPrice"`
	MintPriceDecimal         string `json:"mintPriceDecimal,omitempty"`
	PaymentToken             string `json:"paymentToken"`
	StartTime                uint64 `json:"startTime"`
	EndTime                  uint64 `json:"endTime"`
	MaxTotalMintableByWallet uint64 `json:"maxTotalMintableByWallet"`
	FeeBps                   uint16 `json:"feeBps"`
	RestrictFeeRecipients    bool   `json:"restrictFeeRecipients"`
}

func toPublicDropDTO(p entity.PublicDrop) publicDropDTO {
	return publicDropDTO{
		MintPrice:                p.MintPrice.Dec(),
		MintPriceDecimal:         lo.Ternary(p.PaymentToken == nativeToken, decimals.FormatUnits(p.MintPrice, nativeDecimals), ""),
		PaymentToken:             p.PaymentToken.Hex(),
		StartTime:                p.StartTime,
		EndTime:                  p.EndTime,
		MaxTotalMintableByWallet: p.MaxTotalMintableByWallet,
		FeeBps:                   p.FeeBps,
		RestrictFeeRecipients:    p.RestrictFeeRecipients,
	}
}

func (d publicDropDTO) entity(errList *[]error) entity.PublicDrop {
	return entity.PublicDrop{
		MintPrice:                parseUint256("mintPrice", d.MintPrice, errList),
		PaymentToken:             parseAddress("paymentToken", d.PaymentToken, errList),
		StartTime:                d.StartTime,
		EndTime:                  d.EndTime,
		MaxTotalMintableByWallet: d.MaxTotalMintableByWallet,
		FeeBps:                   d.FeeBps,
		RestrictFeeRecipients:    d.RestrictFeeRecipients,
	}
}

type creatorPayoutDTO struct {
	PayoutAddress string `json:"payoutAddress"`
	BasisPoints   uint16 `json:"basisPoints"`
}

type paymentTokenPriceDTO struct {
	PaymentToken string `json:"paymentToken"`
	MinMintPrice string `json:"minMintPrice"`
}

type signedMintValidationParamsDTO struct {
	MinMintPrices               []paymentTokenPriceDTO `json:"minMintPrices"`
	MaxMaxTotalMintableByWallet uint64                 `json:"maxMaxTotalMintableByWallet"`
	MinStartTime                uint64                 `json:"minStartTime"`
	MaxEndTime                  uint64                 `json:"maxEndTime"`
	MaxMaxTokenSupplyForStage   uint64                 `json:"maxMaxTokenSupplyForStage"`
	MinFeeBps                   uint16                 `json:"minFeeBps"`
	MaxFeeBps                   uint16                 `json:"maxFeeBps"`
}

func toSignedMintValidationParamsDTO(p entity.SignedMintValidationParams) signedMintValidationParamsDTO {
	return signedMintValidationParamsDTO{
		MinMintPrices: lo.Map(p.MinMintPrices, func(price entity.PaymentTokenPrice, _ int) paymentTokenPriceDTO {
			return paymentTokenPriceDTO{PaymentToken: price.PaymentToken.Hex(), MinMintPrice: price.MinMintPrice.Dec()}
		}),
		MaxMaxTotalMintableByWallet: p.MaxMaxTotalMintableByWallet,
		MinStartTime:                p.MinStartTime,
		MaxEndTime:                  p.MaxEndTime,
		MaxMaxTokenSupplyForStage:   p.MaxMaxTokenSupplyForStage,
		MinFeeBps:                   p.MinFeeBps,
		MaxFeeBps:                   p.MaxFeeBps,
	}
}

func (d signedMintValidationParamsDTO) entity(errList *[]error) entity.SignedMintValidationParams {
	return entity.SignedMintValidationParams{
		MinMintPrices: lo.Map(d.MinMintPrices, func(price paymentTokenPriceDTO, i int) entity.PaymentTokenPrice {
			return entity.PaymentTokenPrice{
				PaymentToken: parseAddress(fmt.Sprintf("minMintPrices[%d].paymentToken", i), price.PaymentToken, errList),
				MinMintPrice: parseUint256(fmt.Sprintf("minMintPrices[%d].minMintPrice", i), price.MinMintPrice, errList),
			}
		}),
		MaxMaxTotalMintableByWallet: d.MaxMaxTotalMintableByWallet,
		MinStartTime:                d.MinStartTime,
		MaxEndTime:                  d.MaxEndTime,
		MaxMaxTokenSupplyForStage:   d.MaxMaxTokenSupplyForStage,
		MinFeeBps:                   d.MinFeeBps,
		MaxFeeBps:                   d.MaxFeeBps,
	}
}

type tokenGatedDropStageDTO struct {
	MintPrice                   string `json:"mintPrice"`
	PaymentToken                string `json:"paymentToken"`
	MaxMintablePerRedeemedToken uint64 `json:"maxMintablePerRedeemedToken"`
	MaxTotalMintableByWallet    uint64 `json:"maxTotalMintableByWallet"`
	StartTime                   uint64 `json:"startTime"`
	EndTime                     uint64 `json:"endTime"`
	DropStageIndex              uint64 `json:"dropStageIndex"`
	MaxTokenSupplyForStage      uint64 `json:"maxTokenSupplyForStage"`
	FeeBps                      uint16 `json:"feeBps"`
	RestrictFeeRecipients       bool   `json:"restrictFeeRecipients"`
}

func toTokenGatedDropStageDTO(s entity.TokenGatedDropStage) tokenGatedDropStageDTO {
	return tokenGatedDropStageDTO{
		MintPrice:                   s.MintPrice.Dec(),
		PaymentToken:                s.PaymentToken.Hex(),
		MaxMintablePerRedeemedToken: s.MaxMintablePerRedeemedToken,
		MaxTotalMintableByWallet:    s.MaxTotalMintableByWallet,
		StartTime:                   s.StartTime,
		EndTime:                     s.EndTime,
		DropStageIndex:              s.DropStageIndex,
		MaxTokenSupplyForStage:      s.MaxTokenSupplyForStage,
		FeeBps:                      s.FeeBps,
		RestrictFeeRecipients:       s.RestrictFeeRecipients,
	}
}

func (d tokenGatedDropStageDTO) entity(errList *[]error) entity.TokenGatedDropStage {
	return entity.TokenGatedDropStage{
		MintPrice:                   parseUint256("stage.mintPrice", d.MintPrice, errList),
		PaymentToken:                parseAddress("stage.paymentToken", d.PaymentToken, errList),
		MaxMintablePerRedeemedToken: d.MaxMintablePerRedeemedToken,
		MaxTotalMintableByWallet:    d.MaxTotalMintableByWallet,
		StartTime:                   d.StartTime,
		EndTime:                     d.EndTime,
		DropStageIndex:              d.DropStageIndex,
		MaxTokenSupplyForStage:      d.MaxTokenSupplyForStage,
		FeeBps:                      d.FeeBps,
		RestrictFeeRecipients:       d.RestrictFeeRecipients,
	}
}
