package compose

import (
	"regexp"
	"strings"
)

// Telegram renders only a small HTML subset (b, i, u, s, a, code, pre,
// tg-spoiler, ...). Anything that smells like active content is stripped;
// unknown-but-harmless tags are left for the API to reject per message.
var (
	scriptRe  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe   = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	onAttrQRe = regexp.MustCompile(`(?i)\s*on\w+\s*=\s*["'][^"']*["']`)
	onAttrRe  = regexp.MustCompile(`(?i)\s*on\w+\s*=\s*[^\s>]+`)
	jsHrefRe  = regexp.MustCompile(`(?i)href\s*=\s*["']javascript:[^"']*["']`)
)

// SanitizeHTML strips script/style blocks, inline event handlers and
// javascript: links from message HTML.
func SanitizeHTML(html string) string {
	html = scriptRe.ReplaceAllString(html, "")
	html = styleRe.ReplaceAllString(html, "")
	html = onAttrQRe.ReplaceAllString(html, "")
	html = onAttrRe.ReplaceAllString(html, "")
	html = jsHrefRe.ReplaceAllString(html, "")
	return strings.TrimSpace(html)
}
