package domain

// Platform is the coarse channel a tracked event originated from.
type Platform string

const (
	PlatformWhatsApp  Platform = "WhatsApp"
	PlatformLinkedIn  Platform = "LinkedIn"
	PlatformFacebook  Platform = "Facebook"
	PlatformTwitter   Platform = "Twitter"
	PlatformTelegram  Platform = "Telegram"
	PlatformInstagram Platform = "Instagram"
	PlatformEmail     Platform = "Email"
	PlatformMobile    Platform = "Mobile"
	PlatformWeb       Platform = "Web"
	PlatformUnknown   Platform = "Unknown"
)
