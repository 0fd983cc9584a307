package summarize

import (
	"strings"

	contractx "github.com/tanpawarit/omega-summarizer/agent/contract"
)

const quickTakeLimit = 200

type section struct {
	name  string
	emoji string
}

var sections = []section{
	{name: "Quick Take", emoji: "🎯"},
	{name: "Key Insights", emoji: "💡"},
	{name: "Action Steps", emoji: "🚀"},
}

// HasStructure reports whether text carries all three section markers.
func HasStructure(text string) bool {
	for _, s := range sections {
		if !strings.Contains(text, s.name) && !strings.Contains(text, s.emoji) {
			return false
		}
	}
	return true
}

// EnsureStructure returns text unchanged when all three sections are present and
// otherwise re-wraps it into the canonical template.
func EnsureStructure(text string) string {
	if HasStructure(text) {
		return text
	}

	var b strings.Builder
	b.WriteString("## 🎯 Quick Take\n")
	b.WriteString(strings.TrimSpace(contractx.FirstRunes(text, quickTakeLimit)))
	b.WriteString("\n\n## 💡 Key Insights\n")
	b.WriteString("- **Summary**: The content has been processed but could not be structured automatically.\n")
	b.WriteString("- **Note**: The raw summary is provided above.\n\n")
	b.WriteString("## 🚀 Action Steps\n")
	b.WriteString("- **Review**: Read the summary above for key takeaways.\n")
	b.WriteString("- **Deep Dive**: Visit the original source for full context.\n")
	b.WriteString("- **Apply**: Identify one actionable insight to implement today.\n")
	return b.String()
}
