package execute

import (
	"testing"
)

func TestParseEvent_Init(t *testing.T) {
	line := []byte(`{"type":"system","subtype":"init","session_id":"sess-abc123","model":"claude-sonnet-4-5","tools":["Read","Bash"]}`)

	ev := ParseEvent(line)
	if ev.Kind != KindInit {
		t.Fatalf("Kind = %v, want KindInit", ev.Kind)
	}
	if ev.Init.SessionID != "sess-abc123" {
		t.Errorf("SessionID = %q, want %q", ev.Init.SessionID, "sess-abc123")
	}
	if len(ev.Init.Tools) != 2 {
		t.Errorf("Tools = %v, want 2 entries", ev.Init.Tools)
	}
	if string(ev.Raw) != string(line) {
		t.Error("Raw does not preserve the original line")
	}
}

func TestParseEvent_Assistant(t *testing.T) {
	ev := ParseEvent([]byte(`{"type":"assistant","message":{"content":[{"type":"text","text":"hi"}]}}`))
	if ev.Kind != KindAssistant {
		t.Errorf("Kind = %v, want KindAssistant", ev.Kind)
	}
}

func TestParseEvent_Result(t *testing.T) {
	line := []byte(`{"type":"result","result":"done","is_error":false,"cost_usd":0.042,"duration_ms":15000,"num_turns":3,"session_id":"sess-abc123"}`)

	ev := ParseEvent(line)
	if ev.Kind != KindResult {
		t.Fatalf("Kind = %v, want KindResult", ev.Kind)
	}
	if ev.Result.Result != "done" {
		t.Errorf("Result = %q, want %q", ev.Result.Result, "done")
	}
	if ev.Result.CostUSD != 0.042 {
		t.Errorf("CostUSD = %f, want 0.042", ev.Result.CostUSD)
	}
	if ev.Result.DurationMS != 15000 {
		t.Errorf("DurationMS = %d, want 15000", ev.Result.DurationMS)
	}
	if ev.Result.IsError {
		t.Error("IsError = true, want false")
	}
}

func TestParseEvent_ErrorResultIsStillResult(t *testing.T) {
	ev := ParseEvent([]byte(`{"type":"result","result":"failed","is_error":true}`))
	if ev.Kind != KindResult {
		t.Fatalf("Kind = %v, want KindResult", ev.Kind)
	}
	if !ev.Result.IsError {
		t.Error("IsError = false, want true")
	}
}

func TestParseEvent_UnknownType(t *testing.T) {
	ev := ParseEvent([]byte(`{"type":"user","message":"something new"}`))
	if ev.Kind != KindUnknown {
		t.Errorf("Kind = %v, want KindUnknown", ev.Kind)
	}
}

func TestParseEvent_NonJSON(t *testing.T) {
	line := []byte("not json at all")
	ev := ParseEvent(line)
	if ev.Kind != KindRaw {
		t.Errorf("Kind = %v, want KindRaw", ev.Kind)
	}
	if string(ev.Raw) != "not json at all" {
		t.Error("Raw does not preserve the original line")
	}
}

func TestParseEvent_SystemNonInit(t *testing.T) {
	ev := ParseEvent([]byte(`{"type":"system","subtype":"compact"}`))
	if ev.Kind != KindUnknown {
		t.Errorf("Kind = %v, want KindUnknown", ev.Kind)
	}
	if ev.Init != nil {
		t.Error("Init populated for non-init system event")
	}
}

func TestBuildArgs_NewSession(t *testing.T) {
	args := BuildArgs(Request{Prompt: "hello"})

	want := []string{"-p", "--verbose", "--output-format", "stream-json", "hello"}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestBuildArgs_ResumeWithFlags(t *testing.T) {
	args := BuildArgs(Request{
		Prompt:                     "continue",
		SessionID:                  "sess-1",
		DangerouslySkipPermissions: true,
		AllowedTools:               []string{"Read", "Bash"},
		DisallowedTools:            []string{"WebSearch"},
	})

	want := []string{
		"-p", "--verbose",
		"--resume", "sess-1",
		"--dangerously-skip-permissions",
		"--allowedTools", "Read,Bash",
		"--disallowedTools", "WebSearch",
		"--output-format", "stream-json",
		"continue",
	}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestBuildArgs_PromptIsFinal(t *testing.T) {
	args := BuildArgs(Request{Prompt: "--not-a-flag", SessionID: "s"})
	if args[len(args)-1] != "--not-a-flag" {
		t.Errorf("final arg = %q, want the prompt", args[len(args)-1])
	}
}
