package logs

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Record is the subset of a JSON log line the CLI displays.
type Record struct {
	Time      string `json:"ts"`
	Level     string `json:"level"`
	Message   string `json:"msg"`
	Component string `json:"component"`
	Episode   int    `json:"episode"`
	Stage     string `json:"stage"`
	RunID     string `json:"run_id"`
	EventType string `json:"event_type"`
	ErrorKind string `json:"error_kind"`
	Error     string `json:"error"`
}

// Parse decodes one JSON log line. Lines that are not JSON objects report
// false.
func Parse(line string) (Record, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return Record{}, false
	}
	var rec Record
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		return Record{}, false
	}
	return rec, true
}

var levelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// Filter selects records. Zero fields match everything.
type Filter struct {
	Episode  int
	RunID    string
	MinLevel string
}

// Match reports whether rec passes the filter.
func (f Filter) Match(rec Record) bool {
	if f.Episode > 0 && rec.Episode != f.Episode {
		return false
	}
	if f.RunID != "" && rec.RunID != f.RunID {
		return false
	}
	if floor, ok := levelRank[strings.ToLower(f.MinLevel)]; ok {
		if levelRank[strings.ToLower(rec.Level)] < floor {
			return false
		}
	}
	return true
}

// Format renders rec as a single line.
func (r Record) Format() string {
	var b strings.Builder
	b.WriteString(r.Time)
	fmt.Fprintf(&b, " %-5s", strings.ToUpper(r.Level))
	if r.Episode > 0 {
		fmt.Fprintf(&b, " [ep %d", r.Episode)
		if r.Stage != "" {
			b.WriteString("/" + r.Stage)
		}
		b.WriteString("]")
	} else if r.Component != "" {
		b.WriteString(" [" + r.Component + "]")
	}
	b.WriteString(" " + r.Message)
	if r.ErrorKind != "" {
		b.WriteString(" kind=" + r.ErrorKind)
	}
	if r.Error != "" {
		b.WriteString(" error=" + r.Error)
	}
	return b.String()
}
