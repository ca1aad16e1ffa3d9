package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/arbiter.txt
	arbiterRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Arbiter string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Arbiter: strings.TrimSpace(arbiterRaw),
	}
}
