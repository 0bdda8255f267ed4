// Package telegram implements transport.Sender on top of the Telegram Bot
// API via telebot.
package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"

	"tgblast/internal/transport"
	"tgblast/pkg/logx"
)

// Bot tokens look like "123456789:AAEhBOweik6ad9r_QXMENQjcrGbqCr4K-8I".
var tokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

// ValidTokenFormat reports whether the token matches the Bot API token shape.
// It says nothing about whether the token is actually accepted by Telegram.
func ValidTokenFormat(token string) bool {
	return tokenPattern.MatchString(strings.TrimSpace(token))
}

type Config struct {
	Token string
	// SendTimeout bounds each individual API call. A hung call must not pin
	// a broadcast concurrency slot; 0 means the 30s default.
	SendTimeout time.Duration
	// RatePerSec caps outbound calls across all workers. Telegram allows
	// roughly 30 messages per second bot-wide; 0 means the 25/s default.
	RatePerSec int
}

// Sender is a telebot-backed transport.Sender shared by all broadcast
// workers. It is safe for concurrent use.
type Sender struct {
	bot     *tele.Bot
	limiter *rate.Limiter
	log     logx.Logger
}

// New validates the token, verifies it against the API (getMe) and returns a
// ready sender. Any error here is a construction failure: the caller must
// abort the whole run before dispatching anything.
func New(cfg Config, log logx.Logger) (*Sender, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("telegram token is empty")
	}
	if !ValidTokenFormat(token) {
		return nil, errors.New("telegram token has invalid format")
	}

	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  token,
		Client: &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}

	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 25
	}
	return &Sender{
		bot:     b,
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		log:     log,
	}, nil
}

// Me returns the bot's username, for pre-flight display.
func (s *Sender) Me() string {
	if s.bot == nil || s.bot.Me == nil {
		return ""
	}
	return s.bot.Me.Username
}

func (s *Sender) SendText(ctx context.Context, chatID string, text string, opt *transport.SendOptions) error {
	to, err := parseChatID(chatID)
	if err != nil {
		return err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", transport.ErrNetwork, err)
	}
	_, err = s.bot.Send(to, text, sendOptions(opt))
	return classify(err)
}

func (s *Sender) SendPhoto(ctx context.Context, chatID string, photo []byte, caption string, opt *transport.SendOptions) error {
	to, err := parseChatID(chatID)
	if err != nil {
		return err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", transport.ErrNetwork, err)
	}
	p := &tele.Photo{File: tele.FromReader(bytes.NewReader(photo)), Caption: caption}
	_, err = s.bot.Send(to, p, sendOptions(opt))
	return classify(err)
}

func parseChatID(chatID string) (tele.ChatID, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(chatID), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: chat id %q is not numeric", transport.ErrBadRequest, chatID)
	}
	return tele.ChatID(id), nil
}

func sendOptions(opt *transport.SendOptions) *tele.SendOptions {
	if opt == nil {
		opt = &transport.SendOptions{}
	}
	return &tele.SendOptions{
		ParseMode:             opt.ParseMode,
		DisableWebPagePreview: opt.DisablePreview,
	}
}

// classify maps telebot errors onto the transport error classes.
//
// 403 means the user blocked the bot or the chat is gone; 400 means the
// request itself was rejected. Everything else with a Telegram error type
// is an API-side failure; the rest is assumed to be transport-level.
func classify(err error) error {
	if err == nil {
		return nil
	}

	// telebot returns FloodError by value.
	var fe tele.FloodError
	if errors.As(err, &fe) {
		return fmt.Errorf("%w: flood control, retry after %ds", transport.ErrAPI, fe.RetryAfter)
	}

	var te *tele.Error
	if errors.As(err, &te) {
		switch te.Code {
		case http.StatusForbidden:
			return fmt.Errorf("%w: %s", transport.ErrUnreachable, te.Description)
		case http.StatusBadRequest:
			return fmt.Errorf("%w: %s", transport.ErrBadRequest, te.Description)
		default:
			return fmt.Errorf("%w: %s (code %d)", transport.ErrAPI, te.Description, te.Code)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", transport.ErrNetwork, err)
	}
	// telebot wraps http.Client failures; treat anything non-API as network.
	return fmt.Errorf("%w: %v", transport.ErrNetwork, err)
}
