// Package transport defines the outbound delivery contract the broadcast
// core depends on, plus the error classes every implementation must map
// provider failures onto.
package transport

import (
	"context"
	"errors"
)

// SendOptions carries per-message delivery options.
type SendOptions struct {
	// ParseMode is the provider-side markup mode ("HTML", "MarkdownV2", ...).
	ParseMode string
	// DisablePreview suppresses link previews for text messages.
	DisablePreview bool
}

// Sender performs exactly one delivery attempt per call. Implementations do
// not retry; they classify failures by wrapping one of the sentinel errors
// below so callers can use errors.Is.
type Sender interface {
	// SendText delivers a text message to one chat.
	SendText(ctx context.Context, chatID string, text string, opt *SendOptions) error
	// SendPhoto delivers a photo with a caption to one chat.
	SendPhoto(ctx context.Context, chatID string, photo []byte, caption string, opt *SendOptions) error
}

// Error classes. A Sender wraps every failure in exactly one of these.
var (
	// ErrUnreachable: the recipient blocked the bot or the chat no longer
	// exists. Permanent; retrying is pointless.
	ErrUnreachable = errors.New("recipient unreachable")

	// ErrBadRequest: the API rejected the payload or chat ID as invalid.
	ErrBadRequest = errors.New("bad request")

	// ErrNetwork: connection or timeout failure before a definitive API answer.
	ErrNetwork = errors.New("network error")

	// ErrAPI: a typed provider error that is neither unreachable nor a bad
	// request (flood control, internal provider errors, ...).
	ErrAPI = errors.New("api error")
)
