package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
)

//go:embed template/purchasing.txt
var purchasingRaw string

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Purchasing string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Purchasing: strings.TrimSpace(purchasingRaw),
	}
}

func (p PromptSet) Validate() error {
	if p.Purchasing == "" {
		return fmt.Errorf("%w: purchasing system prompt", contractx.ErrPromptMissing)
	}
	if err := CheckFString(p.Purchasing); err != nil {
		return fmt.Errorf("purchasing system prompt: %w", err)
	}
	return nil
}

// CheckFString rejects single braces. System prompts are rendered as FString
// templates, where a lone { or } is a placeholder; literal braces are doubled.
func CheckFString(text string) error {
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '{' && c != '}' {
			continue
		}
		if i+1 < len(text) && text[i+1] == c {
			i++
			continue
		}
		return fmt.Errorf("%w: unescaped %q at offset %d", contractx.ErrValidation, c, i)
	}
	return nil
}
