package telegram

import (
	"context"
	"errors"
	"testing"

	tele "gopkg.in/telebot.v4"

	"tgblast/internal/transport"
	"tgblast/pkg/logx"
)

func TestValidTokenFormat(t *testing.T) {
	t.Parallel()

	cases := []struct {
		token string
		want  bool
	}{
		{"123456789:AAEhBOweik6ad9r_QXMENQjcrGbqCr4K-8I", true},
		{"  123456:abc_DEF-123  ", true},
		{"", false},
		{"no-colon", false},
		{"abc:def", false},
		{"123:", false},
		{"123:with space", false},
		{"123:tok:extra", false},
	}
	for _, tc := range cases {
		if got := ValidTokenFormat(tc.token); got != tc.want {
			t.Fatalf("ValidTokenFormat(%q) = %v, want %v", tc.token, got, tc.want)
		}
	}
}

func TestNewRejectsBadTokens(t *testing.T) {
	t.Parallel()

	for _, token := range []string{"", "   ", "not-a-token"} {
		if _, err := New(Config{Token: token}, logx.Nop()); err == nil {
			t.Fatalf("New(%q) succeeded, want error", token)
		}
	}
}

func TestParseChatID(t *testing.T) {
	t.Parallel()

	if id, err := parseChatID(" -1001234567890 "); err != nil || id != tele.ChatID(-1001234567890) {
		t.Fatalf("parseChatID = %v, %v", id, err)
	}
	_, err := parseChatID("@channel")
	if !errors.Is(err, transport.ErrBadRequest) {
		t.Fatalf("non-numeric chat id error = %v, want ErrBadRequest", err)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want error
	}{
		{"nil passes through", nil, nil},
		{"403 is unreachable", &tele.Error{Code: 403, Description: "Forbidden: bot was blocked by the user"}, transport.ErrUnreachable},
		{"400 is bad request", &tele.Error{Code: 400, Description: "Bad Request: chat not found"}, transport.ErrBadRequest},
		{"500 is api error", &tele.Error{Code: 500, Description: "Internal Server Error"}, transport.ErrAPI},
		{"flood is api error", tele.FloodError{RetryAfter: 17}, transport.ErrAPI},
		{"deadline is network", context.DeadlineExceeded, transport.ErrNetwork},
		{"anything else is network", errors.New("dial tcp: connection refused"), transport.ErrNetwork},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := classify(tc.err)
			if tc.want == nil {
				if got != nil {
					t.Fatalf("classify(nil) = %v", got)
				}
				return
			}
			if !errors.Is(got, tc.want) {
				t.Fatalf("classify(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestSendOptionsMapping(t *testing.T) {
	t.Parallel()

	opt := sendOptions(&transport.SendOptions{ParseMode: "HTML", DisablePreview: true})
	if opt.ParseMode != "HTML" || !opt.DisableWebPagePreview {
		t.Fatalf("sendOptions mapped to %+v", opt)
	}
	if got := sendOptions(nil); got == nil || got.ParseMode != "" {
		t.Fatalf("sendOptions(nil) = %+v, want zero options", got)
	}
}
