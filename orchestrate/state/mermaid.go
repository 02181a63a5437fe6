package state

import (
	"fmt"
	"strings"
)

// Mermaid renders the topology as a Mermaid flowchart. Decision stages are
// drawn as rhombi with labelled edges, action stages as rectangles, and the
// entry stage is highlighted.
func (g *Graph) Mermaid() string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, stage := range g.Stages() {
		id := mermaidID(stage.Name)
		switch stage.Kind {
		case KindDecision:
			fmt.Fprintf(&sb, "    %s{\"%s\"}\n", id, stage.Name)
		default:
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", id, stage.Name)
		}
	}
	fmt.Fprintf(&sb, "    %s((\"end\"))\n", mermaidID(End))

	for _, edge := range g.Edges() {
		if edge.Label == "" {
			fmt.Fprintf(&sb, "    %s --> %s\n", mermaidID(edge.From), mermaidID(edge.To))
			continue
		}
		label := strings.ReplaceAll(edge.Label, "\"", "'")
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", mermaidID(edge.From), label, mermaidID(edge.To))
	}

	sb.WriteString("    classDef entry stroke-width:3px\n")
	fmt.Fprintf(&sb, "    class %s entry\n", mermaidID(g.entry))

	return sb.String()
}

func mermaidID(name string) string {
	if name == End {
		return "end_"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
