package notify

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agigante80/vpnsentinel/pkg/clientstate"
)

// CommandRouter matches the first word of an inbound chat message against
// a static dispatch table, the way the corpus's chat-bot handlers do,
// rather than a dynamically-populated registration map.
type CommandRouter struct {
	store                *clientstate.Store
	rateLimitBurst       int
	rateLimitWindowSecs  int
	clientTimeoutMinutes int
	startedAt            time.Time
}

// NewCommandRouter creates a CommandRouter bound to the server's state.
func NewCommandRouter(store *clientstate.Store, rateLimitBurst, rateLimitWindowSecs, clientTimeoutMinutes int, startedAt time.Time) *CommandRouter {
	return &CommandRouter{
		store:                store,
		rateLimitBurst:       rateLimitBurst,
		rateLimitWindowSecs:  rateLimitWindowSecs,
		clientTimeoutMinutes: clientTimeoutMinutes,
		startedAt:            startedAt,
	}
}

type commandEntry struct {
	name    string
	help    string
	handler func(r *CommandRouter, args string) string
}

var commandTable = []commandEntry{
	{"ping", "show active client count and thresholds", (*CommandRouter).handlePing},
	{"status", "show per-client summary", (*CommandRouter).handleStatus},
	{"help", "show this command list", (*CommandRouter).handleHelp},
}

// Dispatch implements Router: it strips a leading "/", matches the first
// word against the command table, and returns the reply text.
func (r *CommandRouter) Dispatch(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return r.handleGreeting()
	}

	if !strings.HasPrefix(text, "/") {
		return r.handleGreeting()
	}

	fields := strings.Fields(text)
	name := strings.ToLower(strings.TrimPrefix(fields[0], "/"))

	for _, cmd := range commandTable {
		if cmd.name == name {
			return cmd.handler(r, strings.TrimSpace(strings.TrimPrefix(text, fields[0])))
		}
	}

	return fmt.Sprintf("Unknown command: /%s\n\n%s", name, r.catalog())
}

func (r *CommandRouter) handlePing(_ string) string {
	count := r.store.Len()
	return fmt.Sprintf(
		"🏓 Pong!\nActive clients: %d\nRate limit: %d req / %ds\nClient timeout: %d min\nServer time: %s",
		count, r.rateLimitBurst, r.rateLimitWindowSecs, r.clientTimeoutMinutes,
		time.Now().UTC().Format("2006-01-02 15:04:05 MST"),
	)
}

func (r *CommandRouter) handleStatus(_ string) string {
	snapshot := r.store.Snapshot()
	if len(snapshot) == 0 {
		return "No VPN clients connected."
	}

	ids := make([]string, 0, len(snapshot))
	for id := range snapshot {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var sb strings.Builder
	sb.WriteString("📋 Client Status\n\n")
	for _, id := range ids {
		e := snapshot[id]
		sb.WriteString(fmt.Sprintf("• %s — %s (%s, %s) — %s\n", id, e.IP, e.City, e.Country, HumanizeLastSeen(e.LastSeen, time.Now().UTC())))
	}
	return sb.String()
}

func (r *CommandRouter) handleHelp(_ string) string {
	return r.catalog()
}

func (r *CommandRouter) handleGreeting() string {
	return "👋 Hi! I'm the VPN Sentinel bot.\n\n" + r.catalog()
}

func (r *CommandRouter) catalog() string {
	var sb strings.Builder
	sb.WriteString("Available commands:\n")
	for _, cmd := range commandTable {
		sb.WriteString(fmt.Sprintf("/%s — %s\n", cmd.name, cmd.help))
	}
	return sb.String()
}

// HumanizeLastSeen renders lastSeen (an ISO-8601 timestamp) relative to
// now as "just now" / "N minutes ago" / "N hours ago".
func HumanizeLastSeen(lastSeen string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, lastSeen)
	if err != nil {
		return "unknown"
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		return fmt.Sprintf("%d minute%s ago", mins, plural(mins))
	default:
		hours := int(d.Hours())
		return fmt.Sprintf("%d hour%s ago", hours, plural(hours))
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
