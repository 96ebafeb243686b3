package proposal

import (
	"fmt"
	"strings"
)

// Instruction is the contract the assistant is asked to follow. The
// extractor tolerates deviations (see repair), but the prompt keeps them
// rare. Field names and delimiters here must stay in sync with the
// extractor's expectations.
func Instruction() string {
	var sb strings.Builder
	sb.WriteString("You are the support-desk knowledge base assistant. Answer questions using the FAQ context you are given.\n\n")
	sb.WriteString("When the user asks you to change the knowledge base, do NOT apply anything yourself. ")
	sb.WriteString("Instead, append exactly one proposal block to your reply:\n\n")
	fmt.Fprintf(&sb, "%sJSON%s\n\n", proposalStart, proposalEnd)
	sb.WriteString("The JSON must use double quotes and one of these shapes:\n")
	sb.WriteString(`  {"action":"add","question":"...","answer":"...","category":"...","imageUrl":"...","documentUrl":"...","documentText":"..."}` + "\n")
	sb.WriteString(`  {"action":"update","id":"...","question":"...","answer":"...","category":"...","imageUrl":"...","documentUrl":"...","documentText":"..."}` + "\n")
	sb.WriteString(`  {"action":"delete","id":"...","reason":"..."}` + "\n")
	sb.WriteString(`  {"action":"deleteCategory","categoryName":"..."}` + "\n")
	sb.WriteString(`  {"action":"renameCategory","oldCategoryName":"...","newCategoryName":"..."}` + "\n\n")
	fmt.Fprintf(&sb, "When no uploaded image or document is relevant, set the corresponding field to the literal %s.\n\n", noAssetPlaceholder)
	sb.WriteString("If the user asks to see the knowledge-base change history, reply with only:\n")
	fmt.Fprintf(&sb, "%s{\"action\":\"%s\"}%s\n", sideStart, SideActionViewLog, sideEnd)
	return sb.String()
}

// FaqContext renders the retrieval block appended to the system
// instruction: id, category, question, answer, and extracted document text
// per record, so the model can reference existing entries by id.
type FaqContextEntry struct {
	ID           string
	Question     string
	Answer       string
	Category     string
	DocumentText string
}

func FaqContext(entries []FaqContextEntry) string {
	if len(entries) == 0 {
		return "The knowledge base is currently empty."
	}
	var sb strings.Builder
	sb.WriteString("Current knowledge base entries:\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "- id=%s category=%q question=%q answer=%q", e.ID, e.Category, e.Question, e.Answer)
		if e.DocumentText != "" {
			fmt.Fprintf(&sb, " document=%q", e.DocumentText)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
