package rest

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"access-gateway-api/pipeline"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

func (h *Handlers) TelegramWebhookHandler(c *fiber.Ctx) error {
	if h.webhookSecret != "" {
		token := c.Get(secretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(token), []byte(h.webhookSecret)) != 1 {
			return ReturnUnauthorized(c, "Invalid or missing secret token")
		}
	}

	var update TelegramUpdate
	if err := c.BodyParser(&update); err != nil {
		return ReturnBadRequest(c, "Invalid message format")
	}
	if err := h.validate.Struct(update); err != nil {
		return ReturnBadRequest(c, "Invalid message format")
	}

	summary, err := h.processor.Process(c.UserContext(), pipeline.Message{
		ExternalID: string(update.Message.MessageID),
		Text:       update.Message.Text,
	})
	if err != nil {
		log.Errorw("failed to process telegram webhook", "message_id", update.Message.MessageID, "error", err)
		return ReturnInternalError(c, "Failed to process telegram webhook")
	}

	if summary.Duplicate() {
		return c.JSON(DuplicateResponse{Status: summary.Status})
	}

	response := WebhookResponse{
		Status:    summary.Status,
		Forwarded: summary.Forwarded,
		Processed: summary.Processed,
	}
	if summary.Keyword != "" {
		response.Keyword = &summary.Keyword
	}

	return c.JSON(response)
}
