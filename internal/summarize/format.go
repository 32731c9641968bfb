package summarize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/meetmind/meetmind/internal/db"
)

// FormatRecord renders a summary record as markdown, sections in stored order.
func FormatRecord(rec db.SummaryRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", rec.Title)
	if rec.Date != "" {
		fmt.Fprintf(&b, "%s\n", rec.Date)
	}

	kinds := rec.Kinds
	if len(kinds) == 0 {
		for k := range rec.Summary {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
	}
	for _, k := range kinds {
		text, ok := rec.Summary[k]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", SectionTitle(k), strings.TrimSpace(text))
	}
	return b.String()
}

// SectionTitle is the display heading for a section name.
func SectionTitle(kind string) string {
	switch kind {
	case KindGeneralSummary:
		return "General Summary"
	case KindDateEvents:
		return "Dates and Events"
	case KindKeyTopics:
		return "Key Topics"
	case KindTasks:
		return "Tasks"
	}
	return kind
}
