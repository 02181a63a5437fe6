package state

// Edge describes one transition of a built graph. Label is empty for the
// fixed edge of an action stage and names the route for decision stages.
type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
}

// StageInfo describes one stage of a built graph.
type StageInfo struct {
	Name     string `json:"name"`
	Kind     Kind   `json:"kind"`
	Fallback string `json:"fallback,omitempty"`
	Entry    bool   `json:"entry,omitempty"`
}
