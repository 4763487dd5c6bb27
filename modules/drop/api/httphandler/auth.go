package httphandler

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gaze-network/drop-offerer/common/errs"
	"github.com/gaze-network/drop-offerer/pkg/crypto"
	"github.com/gaze-network/drop-offerer/pkg/logger"
	"github.com/gaze-network/drop-offerer/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
)

// SignatureHeader carries an EIP-191 personal signature over the raw request body.
const SignatureHeader = "X-Drop-Signature"

// MaxSignatureValidity bounds expiresAt of signed requests, in seconds.
const MaxSignatureValidity = 10 * 60

const signerKey = "drop.signer"

type signedEnvelope struct {
	ExpiresAt int64 `json:"expiresAt"`
}

// authenticate recovers the caller from SignatureHeader. Signed bodies must carry an
// expiresAt unix timestamp in (now, now+MaxSignatureValidity]. On routes requiring a
// signature each signed body is accepted once.
func (h *HttpHandler) authenticate(required bool) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		header := ctx.Get(SignatureHeader)
		if header == "" {
			if required {
				return errs.WithPublicMessage(errs.Unauthorized, "missing "+SignatureHeader+" header")
			}
			return ctx.Next()
		}

		sig, err := hexutil.Decode(header)
		if err != nil {
			return errs.WithPublicMessage(errors.Mark(err, errs.Unauthorized), "invalid "+SignatureHeader+" header")
		}
		body := ctx.Body()
		var envelope signedEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			return errs.WithPublicMessage(err, "invalid request body")
		}
		now := h.clock()
		if envelope.ExpiresAt <= now || envelope.ExpiresAt > now+MaxSignatureValidity {
			return errs.WithPublicMessage(errors.Wrapf(errs.Unauthorized, "expiresAt %d outside (%d, %d]", envelope.ExpiresAt, now, now+MaxSignatureValidity), "signature expired")
		}
		signer, err := crypto.RecoverPersonal(body, sig)
		if err != nil {
			return errs.WithPublicMessage(errors.Mark(err, errs.Unauthorized), "invalid signature")
		}
		if required {
			if err := h.engine.ConsumeRequestSignature(ctx.UserContext(), signer, body); err != nil {
				if errors.Is(err, errs.Conflict) {
					return errs.WithPublicMessage(err, "replayed request")
				}
				return errors.WithStack(err)
			}
		}

		ctx.Locals(signerKey, signer)
		ctx.SetUserContext(logger.WithContext(ctx.UserContext(), slogx.Address("signer", signer)))
		return ctx.Next()
	}
}

func signerOf(ctx *fiber.Ctx) (common.Address, bool) {
	signer, ok := ctx.Locals(signerKey).(common.Address)
	return signer, ok
}
