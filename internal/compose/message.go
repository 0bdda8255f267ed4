// Package compose builds and validates broadcast payloads.
package compose

import (
	"errors"
	"fmt"
	"strings"

	"tgblast/internal/broadcast"
)

// Telegram API limits.
const (
	MaxMessageLength = 4096
	MaxCaptionLength = 1024
	MaxImageBytes    = 10 << 20
)

var ErrEmptyMessage = errors.New("message is empty")

// New validates text and optional image bytes and returns the immutable
// payload for one broadcast. The HTML is sanitized before length checks so
// stripped markup does not count against the limit.
func New(text string, image []byte) (broadcast.Payload, error) {
	text = SanitizeHTML(text)

	if strings.TrimSpace(text) == "" && len(image) == 0 {
		return broadcast.Payload{}, ErrEmptyMessage
	}
	if len(image) > MaxImageBytes {
		return broadcast.Payload{}, fmt.Errorf("image is %.2f MB, limit is %d MB",
			float64(len(image))/(1<<20), MaxImageBytes>>20)
	}

	limit := MaxMessageLength
	if len(image) > 0 {
		// With a photo the text rides along as the caption, which has a
		// much tighter limit.
		limit = MaxCaptionLength
	}
	if n := len([]rune(text)); n > limit {
		return broadcast.Payload{}, fmt.Errorf("message is %d characters, limit is %d", n, limit)
	}

	return broadcast.Payload{Text: text, Image: image}, nil
}
