package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/expensecmd/internal/command"
)

var (
	errNoJSONObject = errors.New("no JSON object in reply")
	errNoAction     = errors.New("reply has no action or no data")
)

// ExtractJSONObject returns the first balanced top-level {...} in s, skipping
// braces inside JSON strings. Prose around the object is ignored.
func ExtractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	for start >= 0 {
		if end, ok := matchBrace(s, start); ok {
			return s[start : end+1], true
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchBrace returns the index of the brace closing the one at start.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

type actionReply struct {
	Action string         `json:"action"`
	Data   map[string]any `json:"data"`
}

// parseActionReply reads a {"action": ..., "data": {...}} object from model
// text.
func parseActionReply(text string) (command.Candidate, error) {
	raw, ok := ExtractJSONObject(text)
	if !ok {
		return command.Candidate{}, command.Unparseable(errNoJSONObject)
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var reply actionReply
	if err := dec.Decode(&reply); err != nil {
		return command.Candidate{}, command.Unparseable(fmt.Errorf("failed to decode reply: %w", err))
	}
	if strings.TrimSpace(reply.Action) == "" || reply.Data == nil {
		return command.Candidate{}, command.Unparseable(errNoAction)
	}
	return command.CandidateFromMap(reply.Action, reply.Data), nil
}
