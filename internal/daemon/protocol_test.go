package daemon

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/meetmind/meetmind/internal/transcript"
)

func TestCommandMarshalCaption(t *testing.T) {
	cmd := Command{
		Cmd: CmdCaption,
		Captions: []CaptionSnapshot{
			{Speaker: StrPtr("Ada"), Text: StrPtr("hello")},
			{Empty: true},
		},
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Command
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.Cmd != CmdCaption {
		t.Errorf("cmd = %q, want %q", got.Cmd, CmdCaption)
	}
	if len(got.Captions) != 2 {
		t.Fatalf("captions = %d, want 2", len(got.Captions))
	}
	if got.Captions[0].Speaker == nil || *got.Captions[0].Speaker != "Ada" {
		t.Errorf("speaker = %v", got.Captions[0].Speaker)
	}
	if !got.Captions[1].Empty {
		t.Error("second snapshot should be empty")
	}
}

func TestCommandOmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(Command{Cmd: CmdStop})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}

	for _, key := range []string{"title", "user", "meetingId", "captions", "chat", "preferences"} {
		if _, ok := raw[key]; ok {
			t.Errorf("stop command should omit %s", key)
		}
	}
}

func TestResponseUnmarshalStatus(t *testing.T) {
	line := `{"ok":true,"recording":true,"meetingId":"42","state":"buffering","utterances":3,"disabled":["chat"]}`

	var resp Response
	if err := json.Unmarshal([]byte(line), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Recording == nil || !*resp.Recording {
		t.Error("recording should be true")
	}
	if resp.Utterances == nil || *resp.Utterances != 3 {
		t.Errorf("utterances = %v", resp.Utterances)
	}
	if len(resp.Disabled) != 1 || resp.Disabled[0] != "chat" {
		t.Errorf("disabled = %v", resp.Disabled)
	}
}

func TestEventUnmarshalSummaryReady(t *testing.T) {
	line := `{"event":"summary_ready","meetingId":"42","summary":{"meetingId":"42","title":"t","date":"d","summary":{"tasks":"none"}}}`

	var ev Event
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Event != EventSummaryReady || ev.Summary == nil || ev.Summary.Summary["tasks"] != "none" {
		t.Errorf("event = %+v", ev)
	}
}

func TestToBatch(t *testing.T) {
	batch := ToBatch([]CaptionSnapshot{
		{Speaker: StrPtr("Ada"), Text: StrPtr("hi")},
		{Empty: true},
		{Speaker: StrPtr("Bo")},
	})

	if len(batch) != 3 {
		t.Fatalf("batch = %d, want 3", len(batch))
	}
	if batch[0].Slot == nil || batch[0].Slot.Speaker != "Ada" || batch[0].Fault != nil {
		t.Errorf("snapshot 0 = %+v", batch[0])
	}
	if batch[1].Slot != nil || batch[1].Fault != nil {
		t.Errorf("snapshot 1 should be the no-speaker snapshot, got %+v", batch[1])
	}
	var of *transcript.ObservationFault
	if !errors.As(batch[2].Fault, &of) || of.Code != transcript.FaultCaptionBatch {
		t.Errorf("snapshot 2 should be malformed, got %+v", batch[2])
	}
}

func TestToChat(t *testing.T) {
	got := ToChat([]ChatSnapshot{{Count: 2, Speaker: StrPtr("Ada"), Text: StrPtr("link")}})
	if len(got) != 1 || got[0].Count != 2 || *got[0].Text != "link" {
		t.Errorf("chat = %+v", got)
	}
}
