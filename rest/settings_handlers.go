package rest

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"access-gateway-api/db"
	"access-gateway-api/pipeline"
)

func (h *Handlers) GetSettingsHandler(c *fiber.Ctx) error {
	values, err := h.store.GetSettings(c.UserContext())
	if err != nil {
		return ReturnInternalError(c, "Failed to retrieve settings")
	}
	return c.JSON(settingsResponse(values))
}

func (h *Handlers) UpdateSettingsHandler(c *fiber.Ctx) error {
	var req UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return ReturnBadRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return ReturnBadRequest(c, "Invalid settings: "+err.Error())
	}

	values := make(map[string]string, 4)
	if req.Keywords != nil {
		keywords := make([]string, 0, len(*req.Keywords))
		for _, kw := range *req.Keywords {
			if kw = strings.TrimSpace(kw); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		encoded, err := json.Marshal(keywords)
		if err != nil {
			return ReturnInternalError(c, "Failed to encode keywords")
		}
		values[db.SettingForwardKeywords] = string(encoded)
	}
	if req.ForwardingActive != nil {
		values[db.SettingForwardingActive] = strconv.FormatBool(*req.ForwardingActive)
	}
	if req.RelayBotToken != nil {
		values[db.SettingRelayBotToken] = strings.TrimSpace(*req.RelayBotToken)
	}
	if req.RelayChatID != nil {
		values[db.SettingRelayChatID] = strings.TrimSpace(*req.RelayChatID)
	}
	if len(values) == 0 {
		return ReturnBadRequest(c, "No settings provided")
	}

	ctx := c.UserContext()
	if err := h.store.UpsertSettings(ctx, values); err != nil {
		log.Errorw("failed to update settings", "error", err)
		return ReturnInternalError(c, "Failed to update settings")
	}
	if h.settings != nil {
		h.settings.Invalidate()
	}

	current, err := h.store.GetSettings(ctx)
	if err != nil {
		return ReturnInternalError(c, "Failed to retrieve settings")
	}
	return c.JSON(settingsResponse(current))
}

func settingsResponse(values map[string]string) SettingsResponse {
	snapshot := pipeline.ParseSnapshot(values)
	keywords := snapshot.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return SettingsResponse{
		Keywords:         keywords,
		KeywordsValid:    snapshot.KeywordsLoaded,
		ForwardingActive: snapshot.ForwardingActive,
		RelayBotToken:    maskToken(snapshot.Relay.BotToken),
		RelayChatID:      snapshot.Relay.ChatID,
	}
}

// maskToken keeps only the last four characters of a bot token.
func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}
