// Package relay forwards inbound message text to a downstream Telegram chat.
package relay

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout       = 5 * time.Second
	DefaultRatePerSecond = 25

	telegramMaxMessageLength = 4096
	genericFailure           = "failed to forward message"
)

var (
	ErrMissingToken  = errors.New("relay bot token is not configured")
	ErrMissingChatID = errors.New("relay chat id is not configured")
)

// Credentials identify the bot used for relaying and the destination chat.
type Credentials struct {
	BotToken string
	ChatID   string
}

// Result is the outcome of one relay attempt. It never carries a Go error so
// the caller can always record it.
type Result struct {
	Success bool
	Error   string
}

func failure(msg string) Result {
	if strings.TrimSpace(msg) == "" {
		msg = genericFailure
	}
	return Result{Error: msg}
}

type Config struct {
	// Endpoint is the Bot API URL format, see tgbotapi.APIEndpoint.
	Endpoint      string
	Timeout       time.Duration
	RatePerSecond float64
}

// Forwarder sends messages through the Bot API, caching one client per token.
type Forwarder struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
	limiter  *rate.Limiter

	mu   sync.Mutex
	bots map[string]*tgbotapi.BotAPI
}

func NewForwarder(cfg Config) *Forwarder {
	if cfg.Endpoint == "" {
		cfg.Endpoint = tgbotapi.APIEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = DefaultRatePerSecond
	}
	return &Forwarder{
		endpoint: cfg.Endpoint,
		timeout:  cfg.Timeout,
		client:   &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerSecond), int(cfg.RatePerSecond)+1),
		bots:     make(map[string]*tgbotapi.BotAPI),
	}
}

// Forward relays text as a single message. Configuration problems, API
// rejections, network failures and the timeout all come back as a failed
// Result.
func (f *Forwarder) Forward(ctx context.Context, text string, creds Credentials) Result {
	token := strings.TrimSpace(creds.BotToken)
	if token == "" {
		return failure(ErrMissingToken.Error())
	}
	target := strings.TrimSpace(creds.ChatID)
	if target == "" {
		return failure(ErrMissingChatID.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	if err := f.limiter.Wait(ctx); err != nil {
		return failure(fmt.Sprintf("relay rate limit: %v", err))
	}

	message, err := newMessage(target, text)
	if err != nil {
		return failure(err.Error())
	}

	// The client cannot take a context, so the calls run aside and the
	// deadline is enforced here. Bot creation and sending share one budget.
	done := make(chan Result, 1)
	go func() {
		done <- f.send(token, message)
	}()

	select {
	case result := <-done:
		if !result.Success {
			log.Warnw("relay send failed", "chat_id", target, "error", result.Error)
		}
		return result
	case <-ctx.Done():
		log.Warnw("relay send abandoned", "chat_id", target, "error", ctx.Err())
		return failure(fmt.Sprintf("relay aborted: %v", ctx.Err()))
	}
}

func (f *Forwarder) send(token string, message tgbotapi.MessageConfig) Result {
	bot, err := f.getOrCreateBot(token)
	if err != nil {
		return failure(describe(err))
	}
	if _, err := bot.Send(message); err != nil {
		return failure(describe(err))
	}
	return Result{Success: true}
}

func (f *Forwarder) getOrCreateBot(token string) (*tgbotapi.BotAPI, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if bot, ok := f.bots[token]; ok {
		return bot, nil
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, f.endpoint, f.client)
	if err != nil {
		return nil, err
	}
	f.bots[token] = bot
	return bot, nil
}

func newMessage(target, text string) (tgbotapi.MessageConfig, error) {
	text = html.EscapeString(truncate(text))

	var message tgbotapi.MessageConfig
	if strings.HasPrefix(target, "@") {
		message = tgbotapi.NewMessageToChannel(target, text)
	} else {
		chatID, err := strconv.ParseInt(target, 10, 64)
		if err != nil {
			return message, fmt.Errorf("relay chat id must be @channel or a numeric chat id")
		}
		message = tgbotapi.NewMessage(chatID, text)
	}
	message.ParseMode = tgbotapi.ModeHTML
	return message, nil
}

// describe prefers the description returned by the Bot API.
func describe(err error) string {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= telegramMaxMessageLength {
		return text
	}
	return string(runes[:telegramMaxMessageLength])
}
