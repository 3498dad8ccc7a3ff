package refdata

import "strings"

// Disposition is the outcome of resolving a raw owner name. Unknown names are
// reported as unmapped, never silently matched to a canonical agent.
type Disposition int

const (
	Canonical Disposition = iota
	Excluded
	Unmapped
)

// IdentityMap maps raw owner-name variants to one of the canonical support
// agents, with an explicit exclusion list for managers.
type IdentityMap struct {
	Aliases  map[string]string
	Excluded map[string]bool
	// CanonicalOrder is the fixed reporting order for agent breakdowns.
	CanonicalOrder []string
}

// Resolve returns the canonical name for a raw variant. The empty string is
// treated as unmapped.
func (m IdentityMap) Resolve(raw string) (string, Disposition) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", Unmapped
	}
	if m.Excluded[name] {
		return "", Excluded
	}
	if canonical, ok := m.Aliases[name]; ok {
		return canonical, Canonical
	}
	return "", Unmapped
}

func (m IdentityMap) IsCanonical(name string) bool {
	for _, c := range m.CanonicalOrder {
		if c == name {
			return true
		}
	}
	return false
}

// PipelineMap maps numeric pipeline IDs to display labels. Records in an
// excluded pipeline are dropped at the normalization boundary.
type PipelineMap struct {
	Labels        map[string]string
	ExcludedLabel string
}

// Resolve maps an ID or an already-labelled value to its display label. Values
// with no mapping pass through unchanged so a re-normalization of processed
// data is a no-op.
func (p PipelineMap) Resolve(raw string) string {
	v := strings.TrimSpace(raw)
	if label, ok := p.Labels[v]; ok {
		return label
	}
	return v
}

func (p PipelineMap) IsExcluded(label string) bool {
	return label == p.ExcludedLabel
}

// ChatRoster classifies chat participants and maps pseudonyms and bot variants
// to display names.
type ChatRoster struct {
	Bots         map[string]bool
	BotDisplay   map[string]string
	HumanAliases map[string]string
	Humans       map[string]bool
}

func (r ChatRoster) IsBot(name string) bool { return r.Bots[strings.TrimSpace(name)] }

func (r ChatRoster) AgentType(name string) string {
	n := strings.TrimSpace(name)
	switch {
	case r.Bots[n]:
		return "bot"
	case r.Humans[n]:
		return "human"
	default:
		return "unknown"
	}
}

// DisplayName maps a participant to the name reports use. Bots collapse to
// their product names, human pseudonyms to real names; unmapped names pass
// through unchanged.
func (r ChatRoster) DisplayName(name string) string {
	n := strings.TrimSpace(name)
	if d, ok := r.BotDisplay[n]; ok {
		return d
	}
	if d, ok := r.HumanAliases[n]; ok {
		return d
	}
	return n
}

// Bundle is the full, immutable reference-data value object handed to the
// normalizer at call time. Tests substitute alternate bundles; nothing here is
// a package-level singleton.
type Bundle struct {
	Agents    IdentityMap
	Pipelines PipelineMap
	Roster    ChatRoster
	Schedule  Schedule
}

// DefaultBundle returns the production maps. Raw variants come from the
// upstream HubSpot and LiveChat accounts.
func DefaultBundle() Bundle {
	return Bundle{
		Agents: IdentityMap{
			Aliases: map[string]string{
				"Girly E":  "Girly",
				"Gillie E": "Girly",
				"Gillie":   "Girly",
				"Girly":    "Girly",
				"Nora N":   "Nova",
				"Nora":     "Nova",
				"Nova":     "Nova",
				"Chris S":  "Francis",
				"Chris":    "Francis",
				"Francis":  "Francis",
				"Shan D":   "Bhushan",
				"Shan":     "Bhushan",
				"Bhushan":  "Bhushan",
			},
			Excluded: map[string]bool{
				"Richie":        true,
				"Richie Waugh":  true,
				"Spencer Dupee": true,
				"Bill jones":    true,
			},
			CanonicalOrder: []string{"Bhushan", "Girly", "Nova", "Francis"},
		},
		Pipelines: PipelineMap{
			Labels: map[string]string{
				"0":         "Support Pipeline",
				"147307289": "Live Chat",
				"648529801": "Upgrades/Downgrades",
				"667370066": "Success",
				"724973238": "Customer Onboarding",
				"76337708":  "Dev Tickets",
				"77634704":  "Marketing, Finance",
				"803109779": "Product Testing Requests - Enterprise",
				"803165721": "Trial Account Requests - Enterprise",
				"95256452":  "Enterprise and VIP Tickets",
				"95947431":  "SPAM Tickets",
			},
			ExcludedLabel: "SPAM Tickets",
		},
		Roster: ChatRoster{
			Bots: map[string]bool{
				"Wynn AI":                       true,
				"Sales Agent":                   true,
				"Traject Data Live Chat":        true,
				"Traject Data Customer Support": true,
				"Agent Scrape":                  true,
				"ChatBot":                       true,
				"Customer Support TEST Bot":     true,
			},
			BotDisplay: map[string]string{
				"Wynn AI":                       "Wynn AI",
				"Sales Agent":                   "Wynn AI",
				"Traject Data Live Chat":        "Agent Scrape",
				"Traject Data Customer Support": "Agent Scrape",
				"Agent Scrape":                  "Agent Scrape",
				"ChatBot":                       "Agent Scrape",
				"Customer Support TEST Bot":     "Test Bot",
			},
			HumanAliases: map[string]string{
				"Shan":   "Bhushan",
				"Chris":  "Francis",
				"Nora":   "Nova",
				"Gillie": "Girly",
			},
			Humans: map[string]bool{
				"Shan": true, "Girly": true, "Chris": true, "Nora": true,
				"Gillie": true, "Bill jones": true, "Bhushan": true,
				"Francis": true, "Nova": true, "Richie Waugh": true,
				"Spencer Dupee": true,
			},
		},
		Schedule: Schedule{},
	}
}
