package compose

// Templates are starting points for common broadcast shapes; the caller
// fills in the bracketed placeholders.
var Templates = map[string]string{
	"announcement": "<b>\U0001F4E2 Announcement</b>\n\n[Your announcement here]\n\n<i>- Your Team</i>",
	"promotion":    "<b>\U0001F389 Special Offer!</b>\n\n✨ [Offer details]\n\n\U0001F4B0 <b>Price:</b> [Amount]\n\n\U0001F517 <a href='[link]'>Learn More</a>",
	"update":       "<b>\U0001F514 Update</b>\n\nWe're excited to share:\n\n• [Update 1]\n• [Update 2]\n• [Update 3]\n\nStay tuned for more!",
	"event":        "<b>\U0001F4C5 Event Invitation</b>\n\n\U0001F4CD <b>Location:</b> [Place]\n\U0001F550 <b>Time:</b> [Time]\n\U0001F4C6 <b>Date:</b> [Date]\n\n<a href='[link]'>Register Now</a>",
}

// TemplateNames lists available templates in a stable order.
func TemplateNames() []string {
	return []string{"announcement", "promotion", "update", "event"}
}
