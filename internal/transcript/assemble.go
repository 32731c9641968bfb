package transcript

import "strings"

const (
	sectionRule   = "---------------"
	chatHeader    = "CHAT MESSAGES"
	attribution   = "Transcript saved using MeetMind"
	selfLabelTail = " ("
)

// Assemble renders a session as a plain-text document. It returns
// ErrEmptySession when there is nothing to save.
func Assemble(s Session) (string, error) {
	if s.Empty() {
		return "", ErrEmptySession
	}

	var lines []string
	if len(s.Transcript) > 0 {
		for _, u := range s.Transcript {
			lines = append(lines, u.Speaker+" ("+u.Timestamp+")", u.Text, "")
		}
		lines = append(lines, "", "")
	}

	if len(s.ChatLog) > 0 {
		lines = append(lines, sectionRule, chatHeader, sectionRule)
		for _, m := range s.ChatLog {
			lines = append(lines, m.Speaker+" ("+m.Timestamp+")", m.Text, "")
		}
		lines = append(lines, "", "")
	}

	lines = append(lines, sectionRule, attribution, sectionRule)

	doc := strings.Join(lines, "\n")
	name := s.UserName
	if name == "" || name == DefaultUserName {
		return doc, nil
	}
	return strings.ReplaceAll(doc, DefaultUserName+selfLabelTail, name+selfLabelTail), nil
}
