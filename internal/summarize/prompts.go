package summarize

import "fmt"

// PromptKind is one facet of a meeting summary.
type PromptKind struct {
	Name        string
	Instruction string
}

// Section names, also the keys of SummaryResult.Sections.
const (
	KindGeneralSummary = "general_summary"
	KindDateEvents     = "date_events"
	KindKeyTopics      = "key_topics"
	KindTasks          = "tasks"
)

// DefaultKinds is the ordered prompt list sent for every meeting.
var DefaultKinds = []PromptKind{
	{Name: KindGeneralSummary, Instruction: "Write a general summary of this meeting transcript"},
	{Name: KindDateEvents, Instruction: "List every date mentioned in this meeting transcript with its related event"},
	{Name: KindKeyTopics, Instruction: "List the important topics of this meeting transcript as bullet points"},
	{Name: KindTasks, Instruction: "List the tasks assigned in this meeting transcript and who owns each one"},
}

// BuildPrompt joins an instruction, an optional response language and the content.
func BuildPrompt(kind PromptKind, language, content string) string {
	instruction := kind.Instruction
	if language != "" {
		instruction = fmt.Sprintf("%s. Respond in the language with code %q", instruction, language)
	}
	return instruction + ":\n\n" + content
}
