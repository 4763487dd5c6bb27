package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/drop/v1")

	r.Get("/metadata", h.GetMetadata)
	r.Get("/config", h.GetConfig)
	r.Get("/events", h.GetEvents)

	orders := r.Group("/orders")
	orders.Post("/preview", h.authenticate(false), h.PreviewOrder)
	orders.Post("/generate", h.authenticate(true), h.GenerateOrder)

	admin := r.Group("/admin", h.authenticate(true))
	admin.Post("/transfer-ownership", h.TransferOwnership)
	admin.Post("/public-drop", h.UpdatePublicDrop)
	admin.Post("/allow-list", h.UpdateAllowList)
	admin.Post("/creator-payouts", h.UpdateCreatorPayouts)
	admin.Post("/fee-recipient", h.UpdateAllowedFeeRecipient)
	admin.Post("/payer", h.UpdatePayer)
	admin.Post("/signer", h.UpdateSigner)
	admin.Post("/remove-signer", h.RemoveSigner)
	admin.Post("/token-gated-drop", h.UpdateTokenGatedDrop)
	admin.Post("/remove-token-gated-drop", h.RemoveTokenGatedDrop)

	return nil
}
