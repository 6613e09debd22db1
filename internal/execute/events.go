// events.go models one line of claude stream-json output as a tagged union.
package execute

import (
	"encoding/json"
)

// EventKind discriminates parsed event lines. Forwarding is kind-agnostic;
// the orchestrator only ever inspects KindInit.
type EventKind int

const (
	// KindRaw marks a non-empty line that did not parse as JSON. It is
	// forwarded verbatim and excluded from session-key extraction.
	KindRaw EventKind = iota
	// KindUnknown marks valid JSON of a type the orchestrator does not
	// recognize.
	KindUnknown
	KindInit
	KindAssistant
	KindResult
)

// InitEvent carries the payload of a system/init event.
type InitEvent struct {
	SessionID string   `json:"session_id"`
	Model     string   `json:"model"`
	Tools     []string `json:"tools"`
}

// ResultEvent carries the payload of a terminal result event.
// IsError reports a tool-level logical failure, which is ordinary event
// content from this system's point of view.
type ResultEvent struct {
	Result     string  `json:"result"`
	IsError    bool    `json:"is_error"`
	CostUSD    float64 `json:"cost_usd"`
	DurationMS int64   `json:"duration_ms"`
	NumTurns   int     `json:"num_turns"`
	SessionID  string  `json:"session_id"`
}

// Event is one line of tool output. Raw always holds the exact bytes as
// emitted; the typed fields are populated only for the matching kind.
type Event struct {
	Kind   EventKind
	Raw    []byte
	Init   *InitEvent
	Result *ResultEvent
}

// envelope is the minimal JSON shape shared by all stream-json lines.
type envelope struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
}

// ParseEvent classifies a single complete output line.
func ParseEvent(line []byte) Event {
	ev := Event{Kind: KindRaw, Raw: line}

	var env envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return ev
	}

	switch {
	case env.Type == "system" && env.Subtype == "init":
		var init InitEvent
		if err := json.Unmarshal(line, &init); err != nil {
			ev.Kind = KindUnknown
			return ev
		}
		ev.Kind = KindInit
		ev.Init = &init
	case env.Type == "assistant":
		ev.Kind = KindAssistant
	case env.Type == "result":
		var res ResultEvent
		if err := json.Unmarshal(line, &res); err != nil {
			ev.Kind = KindUnknown
			return ev
		}
		ev.Kind = KindResult
		ev.Result = &res
	default:
		ev.Kind = KindUnknown
	}

	return ev
}
