package discord

// CommandSummary describes a loaded instance for remote listings
type CommandSummary struct {
	Name        string   `json:"name"`
	Kind        string   `json:"kind"`
	Category    string   `json:"category,omitempty"`
	File        string   `json:"file,omitempty"`
	Dev         bool     `json:"dev,omitempty"`
	SubCommands []string `json:"subCommands,omitempty"`
}

// Summaries lists the loaded instances in load order
func (h *CommandHandler) Summaries() []CommandSummary {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]CommandSummary, 0, len(h.values))
	for _, inst := range h.values {
		s := CommandSummary{
			Name: inst.GetName(),
			Kind: inst.Kind().String(),
			File: inst.FilePath(),
		}
		if cmd, ok := inst.(*Command); ok {
			s.Category = cmd.Category
			s.Dev = cmd.IsDev
			for _, sub := range cmd.SubCommands() {
				name := sub.Name
				if sub.Group != "" {
					name = sub.Group + " " + sub.Name
				}
				s.SubCommands = append(s.SubCommands, name)
			}
		}
		out = append(out, s)
	}
	return out
}
