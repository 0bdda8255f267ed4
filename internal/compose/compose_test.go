package compose

import (
	"strings"
	"testing"
)

func TestSanitizeHTML(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "hello <b>world</b>", "hello <b>world</b>"},
		{"script stripped", "hi<script>alert(1)</script> there", "hi there"},
		{"script case insensitive", "a<SCRIPT src=x>b</SCRIPT>c", "ac"},
		{"style stripped", "x<style>body{}</style>y", "xy"},
		{"quoted handler stripped", `<a href="https://x" onclick="evil()">link</a>`, `<a href="https://x">link</a>`},
		{"unquoted handler stripped", "<img onerror=evil() src=x>", "<img src=x>"},
		{"javascript href stripped", `<a href="javascript:evil()">x</a>`, "<a >x</a>"},
		{"whitespace trimmed", "  hi  ", "hi"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeHTML(tc.in); got != tc.want {
				t.Fatalf("SanitizeHTML(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNewValidatesLimits(t *testing.T) {
	t.Parallel()

	if _, err := New("", nil); err != ErrEmptyMessage {
		t.Fatalf("empty message error = %v, want ErrEmptyMessage", err)
	}
	if _, err := New("   ", nil); err != ErrEmptyMessage {
		t.Fatalf("whitespace message error = %v, want ErrEmptyMessage", err)
	}
	if _, err := New("<script>x</script>", nil); err != ErrEmptyMessage {
		t.Fatal("message that sanitizes to nothing must be rejected as empty")
	}

	ok := strings.Repeat("a", MaxMessageLength)
	if _, err := New(ok, nil); err != nil {
		t.Fatalf("message at limit rejected: %v", err)
	}
	if _, err := New(ok+"a", nil); err == nil {
		t.Fatal("message over limit accepted")
	}

	img := []byte{0xFF, 0xD8, 0xFF}
	caption := strings.Repeat("b", MaxCaptionLength)
	if _, err := New(caption, img); err != nil {
		t.Fatalf("caption at limit rejected: %v", err)
	}
	if _, err := New(caption+"b", img); err == nil {
		t.Fatal("caption over limit accepted")
	}

	if _, err := New("x", make([]byte, MaxImageBytes+1)); err == nil {
		t.Fatal("oversized image accepted")
	}
	if p, err := New("", img); err != nil || len(p.Image) != len(img) {
		t.Fatalf("image-only payload = %+v, %v", p, err)
	}
}

func TestNewCountsRunesNotBytes(t *testing.T) {
	t.Parallel()

	// 4096 multibyte runes are within the limit even though the byte count
	// is far larger.
	msg := strings.Repeat("é", MaxMessageLength)
	if _, err := New(msg, nil); err != nil {
		t.Fatalf("multibyte message at rune limit rejected: %v", err)
	}
}

func TestTemplates(t *testing.T) {
	t.Parallel()

	names := TemplateNames()
	if len(names) != len(Templates) {
		t.Fatalf("TemplateNames lists %d templates, map has %d", len(names), len(Templates))
	}
	for _, name := range names {
		body, ok := Templates[name]
		if !ok {
			t.Fatalf("TemplateNames lists unknown template %q", name)
		}
		if strings.TrimSpace(body) == "" {
			t.Fatalf("template %q is empty", name)
		}
		if _, err := New(body, nil); err != nil {
			t.Fatalf("template %q does not compose: %v", name, err)
		}
	}
}
