// args.go constructs the CLI argument slice for a claude invocation.
package execute

import "strings"

// Request describes one execution of the wrapped tool.
type Request struct {
	Prompt                     string
	SessionID                  string // resume key; empty starts a new session
	DangerouslySkipPermissions bool
	AllowedTools               []string
	DisallowedTools            []string
}

// BuildArgs translates a request into the claude CLI invocation contract:
//
//	claude -p --verbose [--resume <key>] [--dangerously-skip-permissions]
//	       [--allowedTools <csv>] [--disallowedTools <csv>]
//	       --output-format stream-json <prompt>
//
// The prompt is always the final positional argument.
func BuildArgs(req Request) []string {
	args := []string{"-p", "--verbose"}

	if req.SessionID != "" {
		args = append(args, "--resume", req.SessionID)
	}
	if req.DangerouslySkipPermissions {
		args = append(args, "--dangerously-skip-permissions")
	}
	if len(req.AllowedTools) > 0 {
		args = append(args, "--allowedTools", strings.Join(req.AllowedTools, ","))
	}
	if len(req.DisallowedTools) > 0 {
		args = append(args, "--disallowedTools", strings.Join(req.DisallowedTools, ","))
	}

	args = append(args, "--output-format", "stream-json", req.Prompt)
	return args
}
