package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/system.txt
	systemRaw string

	//go:embed template/summarize.txt
	summarizeRaw string

	//go:embed template/video_analysis.txt
	videoAnalysisRaw string
)

// PromptSet holds loaded prompt content.
// Summarize uses {source_type} and {content}; VideoAnalysis uses {url}.
type PromptSet struct {
	System        string
	Summarize     string
	VideoAnalysis string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		System:        strings.TrimSpace(systemRaw),
		Summarize:     strings.TrimSpace(summarizeRaw),
		VideoAnalysis: strings.TrimSpace(videoAnalysisRaw),
	}
}
