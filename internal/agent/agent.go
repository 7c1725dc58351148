// ABOUTME: Fixed registry of agent specializations selectable per submission.
// ABOUTME: "auto" is the default and means the remote service picks the agent.

package agent

// DefaultKey is the automatic-selection agent. Submissions under this key
// carry no override flag in the outbound payload.
const DefaultKey = "auto"

// Info describes one agent variant as shown in the selector.
type Info struct {
	Key     string
	Label   string
	Emoji   string
	Color   string
	Tooltip string
}

// order is the fixed cycling order used by the selector.
var order = []string{"auto", "reasoning", "creative", "research", "data"}

var registry = map[string]Info{
	"auto":      {Key: "auto", Label: "Auto", Emoji: "🤖", Color: "#2563eb", Tooltip: "Intelligent agent selection"},
	"reasoning": {Key: "reasoning", Label: "Reasoning", Emoji: "🧠", Color: "#0891b2", Tooltip: "Strategic analysis & logical reasoning"},
	"creative":  {Key: "creative", Label: "Creative", Emoji: "🎨", Color: "#ff6b35", Tooltip: "Creative brainstorming & copywriting"},
	"research":  {Key: "research", Label: "Research", Emoji: "🔬", Color: "#06b6d4", Tooltip: "Current events & market analysis"},
	"data":      {Key: "data", Label: "Data", Emoji: "📊", Color: "#a0a0a0", Tooltip: "Statistical analysis & visualization"},
}

// Lookup returns the Info for a key, falling back to the auto agent when the
// key is unknown.
func Lookup(key string) Info {
	if info, ok := registry[key]; ok {
		return info
	}
	return registry[DefaultKey]
}

// Known reports whether key names a registered agent.
func Known(key string) bool {
	_, ok := registry[key]
	return ok
}

// Keys returns all agent keys in selector order.
func Keys() []string {
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// Cycle returns the agent key after current in selector order, wrapping
// around at the end. Unknown keys cycle to the first entry.
func Cycle(current string) string {
	for i, k := range order {
		if k == current {
			return order[(i+1)%len(order)]
		}
	}
	return order[0]
}
