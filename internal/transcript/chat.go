package transcript

import (
	"strings"
	"time"
)

// ChatCollector appends chat messages observed in the chat panel, skipping
// repeated observations of the same message.
type ChatCollector struct {
	// Now stamps messages. Defaults to time.Now.
	Now func() time.Time

	log []ChatMessage
}

// Observe reads the most recent chat message. It returns the message and true
// when it was appended to the log.
func (c *ChatCollector) Observe(snap ChatSnapshot) (ChatMessage, bool, error) {
	if snap.Count == 0 {
		return ChatMessage{}, false, nil
	}
	if snap.Speaker == nil {
		return ChatMessage{}, false, &ObservationFault{Code: FaultChatBatch, Reason: "chat message has no sender"}
	}
	if snap.Text == nil {
		return ChatMessage{}, false, &ObservationFault{Code: FaultChatBatch, Reason: "chat message has no text"}
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	msg := ChatMessage{
		Speaker:   *snap.Speaker,
		Timestamp: FormatTimestamp(now()),
		Text:      *snap.Text,
	}
	if c.seen(msg) {
		return msg, false, nil
	}
	c.log = append(c.log, msg)
	return msg, true, nil
}

// Messages returns the chat log in arrival order.
func (c *ChatCollector) Messages() []ChatMessage {
	return append([]ChatMessage(nil), c.log...)
}

// seen reports whether msg is another rendering of a logged message. The panel
// appends button labels to a message after it first appears, so texts are
// compared by containment.
func (c *ChatCollector) seen(msg ChatMessage) bool {
	for _, m := range c.log {
		if m.Speaker != msg.Speaker || m.Timestamp != msg.Timestamp {
			continue
		}
		if strings.Contains(msg.Text, m.Text) || strings.Contains(m.Text, msg.Text) {
			return true
		}
	}
	return false
}
