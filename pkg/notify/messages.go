package notify

import "fmt"

// Render formats an Event into the HTML-parse-mode message text sent to
// the configured Telegram chat.
func Render(event Event) string {
	switch e := event.(type) {
	case ServerStarted:
		return fmt.Sprintf(
			"🚀 <b>Server Started</b>\nRate limit: %d req / %ds\nClient timeout: %d min\nTime: %s",
			e.RateLimitBurst, e.RateLimitWindowSecs, e.ClientTimeoutMinutes,
			e.Timestamp.UTC().Format("2006-01-02 15:04:05 MST"),
		)
	case ClientConnected:
		return fmt.Sprintf(
			"✅ <b>VPN Connected!</b>\nClient: <code>%s</code>\nIP: <code>%s</code>\nLocation: %s, %s (%s)\nProvider: %s\nDNS: %s/%s",
			e.ClientID, e.IP, e.City, e.Country, e.Region, e.Org, e.DNSLoc, e.DNSColo,
		)
	case IPChanged:
		return fmt.Sprintf(
			"🔄 <b>VPN IP Changed!</b>\nClient: <code>%s</code>\nOld IP: <code>%s</code>\nNew IP: <code>%s</code>\nLocation: %s, %s",
			e.ClientID, e.OldIP, e.NewIP, e.City, e.Country,
		)
	case NoClients:
		return "⚠️ <b>No VPN Clients Connected</b>"
	default:
		return ""
	}
}
