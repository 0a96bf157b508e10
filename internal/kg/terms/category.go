package terms

import (
	"fmt"
	"strings"
)

// Category is the closed set of term kinds. Unknown is the fallback.
type Category int

const (
	Unknown Category = iota
	Frameworks
	Concepts
	Languages
	Tools
	Patterns
)

// Categories lists the known categories in rule order.
var Categories = []Category{Frameworks, Concepts, Languages, Tools, Patterns}

func (c Category) String() string {
	switch c {
	case Frameworks:
		return "frameworks"
	case Concepts:
		return "concepts"
	case Languages:
		return "languages"
	case Tools:
		return "tools"
	case Patterns:
		return "patterns"
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Group is the numeric colour group used by the graph renderer.
func (c Category) Group() int {
	switch c {
	case Frameworks:
		return 1
	case Concepts:
		return 2
	case Languages:
		return 3
	case Tools:
		return 4
	case Patterns:
		return 5
	case Unknown:
		return 0
	default:
		return 0
	}
}

func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "frameworks", "framework":
		return Frameworks, nil
	case "concepts", "concept":
		return Concepts, nil
	case "languages", "language":
		return Languages, nil
	case "tools", "tool":
		return Tools, nil
	case "patterns", "pattern":
		return Patterns, nil
	default:
		return Unknown, fmt.Errorf("unknown term category %q", s)
	}
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
