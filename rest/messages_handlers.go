package rest

import (
	"github.com/gofiber/fiber/v2"

	"access-gateway-api/db"
)

func (h *Handlers) ListMessagesHandler(c *fiber.Ctx) error {
	processed, ok := optionalBool(c, "processed")
	if !ok {
		return ReturnBadRequest(c, "Invalid processed value. Must be one of: true, false")
	}

	page, limit, offset := pagination(c)

	filters := db.MessageFilters{
		Keyword:   c.Query("keyword"),
		Phone:     c.Query("phone"),
		Processed: processed,
		Limit:     limit,
		Offset:    offset,
	}

	ctx := c.UserContext()
	messages, err := h.store.ListMessages(ctx, filters)
	if err != nil {
		return ReturnInternalError(c, "Failed to retrieve messages")
	}

	total, err := h.store.CountMessages(ctx, filters)
	if err != nil {
		return ReturnInternalError(c, "Failed to count messages")
	}

	messageDetails := make([]MessageDetail, len(messages))
	for i, msg := range messages {
		messageDetails[i] = MessageDetail{
			ExternalID:     msg.ExternalID,
			Content:        msg.Content,
			ExtractedPhone: msg.ExtractedPhone,
			ExtractedName:  msg.ExtractedName,
			Processed:      msg.Processed,
			CreatedAt:      msg.CreatedAt,
		}
	}

	return c.JSON(MessagesListResponse{
		Data:       messageDetails,
		Pagination: paginationInfo(page, limit, total),
	})
}

func (h *Handlers) ListForwardLogsHandler(c *fiber.Ctx) error {
	forwarded, ok := optionalBool(c, "forwarded")
	if !ok {
		return ReturnBadRequest(c, "Invalid forwarded value. Must be one of: true, false")
	}

	page, limit, offset := pagination(c)

	filters := db.ForwardLogFilters{
		ExternalID: c.Query("external_id"),
		Forwarded:  forwarded,
		Limit:      limit,
		Offset:     offset,
	}

	ctx := c.UserContext()
	logs, err := h.store.ListForwardLogs(ctx, filters)
	if err != nil {
		return ReturnInternalError(c, "Failed to retrieve forward logs")
	}

	total, err := h.store.CountForwardLogs(ctx, filters)
	if err != nil {
		return ReturnInternalError(c, "Failed to count forward logs")
	}

	details := make([]ForwardLogDetail, len(logs))
	for i, entry := range logs {
		details[i] = ForwardLogDetail{
			ID:             entry.ID,
			ExternalID:     entry.ExternalID,
			Content:        entry.Content,
			Forwarded:      entry.Forwarded,
			MatchedKeyword: entry.MatchedKeyword,
			Error:          entry.Error,
			CreatedAt:      entry.CreatedAt,
		}
	}

	return c.JSON(ForwardLogsListResponse{
		Data:       details,
		Pagination: paginationInfo(page, limit, total),
	})
}
