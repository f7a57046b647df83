package referral

import (
	"strings"

	"github.com/mssola/useragent"

	id "xainik/pkg/domain"
)

// uaMarker maps a user-agent substring to a platform label. Order matters:
// the first match wins, so more specific app tokens come before generic ones.
type uaMarker struct {
	token    string
	platform id.Platform
}

var uaMarkers = []uaMarker{
	{"whatsapp", id.PlatformWhatsApp},
	{"linkedin", id.PlatformLinkedIn},
	{"facebook", id.PlatformFacebook},
	{"twitter", id.PlatformTwitter},
	{"x.com", id.PlatformTwitter},
	{"telegram", id.PlatformTelegram},
	{"instagram", id.PlatformInstagram},
	{"email", id.PlatformEmail},
	{"mail", id.PlatformEmail},
	{"mobile", id.PlatformMobile},
	{"android", id.PlatformMobile},
	{"iphone", id.PlatformMobile},
}

// ClassifyPlatform maps a raw user-agent string to a coarse platform label.
// This is a heuristic, not authoritative: in-app browsers embed overlapping
// tokens and the marker order determines precedence. An absent user agent
// yields Unknown; a recognised browser with no marker yields Web.
func ClassifyPlatform(rawUA string) id.Platform {
	if rawUA == "" {
		return id.PlatformUnknown
	}

	lower := strings.ToLower(rawUA)
	for _, m := range uaMarkers {
		if strings.Contains(lower, m.token) {
			return m.platform
		}
	}

	// Marker list missed; let the UA parser catch mobile devices that don't
	// self-describe with the usual tokens.
	if useragent.New(rawUA).Mobile() {
		return id.PlatformMobile
	}
	return id.PlatformWeb
}
