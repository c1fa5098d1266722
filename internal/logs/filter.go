package logs

import (
	"encoding/json"
	"strings"
)

// Filter selects log lines. Empty fields match everything. Session matches
// on prefix because the console format prints only the first eight
// characters of a session id.
type Filter struct {
	MinLevel  string
	Component string
	Session   string
}

// Entry is the subset of a log line a Filter inspects.
type Entry struct {
	Level     string
	Component string
	Session   string
}

var levelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// Empty reports whether the filter accepts every line.
func (f Filter) Empty() bool {
	return strings.TrimSpace(f.MinLevel) == "" && strings.TrimSpace(f.Component) == "" && strings.TrimSpace(f.Session) == ""
}

// Match reports whether line passes the filter. Lines that cannot be parsed,
// such as continuation output, pass only an empty filter.
func (f Filter) Match(line string) bool {
	if f.Empty() {
		return true
	}
	entry, ok := ParseEntry(line)
	if !ok {
		return false
	}
	if min, known := levelRank[strings.ToLower(strings.TrimSpace(f.MinLevel))]; known {
		if rank, ok := levelRank[entry.Level]; !ok || rank < min {
			return false
		}
	}
	if c := strings.TrimSpace(f.Component); c != "" && !strings.EqualFold(entry.Component, c) {
		return false
	}
	if s := strings.ToLower(strings.TrimSpace(f.Session)); s != "" {
		got := strings.ToLower(entry.Session)
		if got == "" {
			return false
		}
		if !strings.HasPrefix(got, s) && !strings.HasPrefix(s, got) {
			return false
		}
	}
	return true
}

// Apply returns the lines that pass the filter.
func (f Filter) Apply(lines []string) []string {
	if f.Empty() {
		return lines
	}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if f.Match(line) {
			out = append(out, line)
		}
	}
	return out
}

// ParseEntry extracts level, component, and session from a console or JSON
// formatted line.
func ParseEntry(line string) (Entry, bool) {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "{") {
		return parseJSONEntry(line)
	}
	return parseConsoleEntry(line)
}

func parseJSONEntry(line string) (Entry, bool) {
	var record struct {
		Level     string `json:"level"`
		Component string `json:"component"`
		Session   string `json:"session_id"`
	}
	if err := json.Unmarshal([]byte(line), &record); err != nil || record.Level == "" {
		return Entry{}, false
	}
	return Entry{
		Level:     strings.ToLower(record.Level),
		Component: record.Component,
		Session:   record.Session,
	}, true
}

// parseConsoleEntry reads "<ts> <LEVEL> <component>[<session>]: <msg>".
func parseConsoleEntry(line string) (Entry, bool) {
	fields := strings.SplitN(line, " ", 3)
	if len(fields) < 3 {
		return Entry{}, false
	}
	level := strings.ToLower(stripANSI(fields[1]))
	if _, ok := levelRank[level]; !ok {
		return Entry{}, false
	}
	entry := Entry{Level: level}
	rest := fields[2]
	colon := strings.Index(rest, ": ")
	if colon <= 0 {
		return entry, true
	}
	prefix := rest[:colon]
	if strings.ContainsAny(prefix, " =") {
		return entry, true
	}
	if open := strings.IndexByte(prefix, '['); open >= 0 && strings.HasSuffix(prefix, "]") {
		entry.Session = prefix[open+1 : len(prefix)-1]
		prefix = prefix[:open]
	}
	entry.Component = prefix
	return entry, true
}

func stripANSI(s string) string {
	for {
		start := strings.Index(s, "\x1b[")
		if start < 0 {
			return s
		}
		end := strings.IndexByte(s[start:], 'm')
		if end < 0 {
			return s
		}
		s = s[:start] + s[start+end+1:]
	}
}
