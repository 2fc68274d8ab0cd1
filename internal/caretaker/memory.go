package caretaker

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const (
	maxRecords = 20
	failWindow = 3 // cycles a failed action sits out
)

// CycleRecord captures what happened in a single caretaker cycle.
type CycleRecord struct {
	Day         int    `json:"day"`
	Action      string `json:"action"`
	CrisisLevel string `json:"crisis_level"`
	TopPressure string `json:"top_pressure,omitempty"`
	Rationale   string `json:"rationale,omitempty"`
	Failed      bool   `json:"failed,omitempty"`
}

// Memory keeps a ring of recent cycles, optionally backed by a file.
type Memory struct {
	Records []CycleRecord `json:"records"`

	path string
}

// LoadMemory reads the memory file. A missing or corrupt file, or an empty
// path, yields an empty memory.
func LoadMemory(path string) *Memory {
	mem := &Memory{path: path}
	if path == "" {
		return mem
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return mem
	}
	if err := json.Unmarshal(data, mem); err != nil {
		slog.Warn("caretaker memory corrupted, starting fresh", "error", err)
		return &Memory{path: path}
	}
	return mem
}

// Save writes the memory to disk. A memory without a path is not saved.
func (m *Memory) Save() {
	if m.path == "" {
		return
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		slog.Error("failed to marshal caretaker memory", "error", err)
		return
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		slog.Error("failed to write caretaker memory", "error", err)
	}
}

// Record adds a cycle record, trimming to maxRecords.
func (m *Memory) Record(r CycleRecord) {
	m.Records = append(m.Records, r)
	if len(m.Records) > maxRecords {
		m.Records = m.Records[len(m.Records)-maxRecords:]
	}
}

// Failing reports whether action failed within the last failWindow cycles.
func (m *Memory) Failing(action string) bool {
	start := max(0, len(m.Records)-failWindow)
	for _, r := range m.Records[start:] {
		if r.Action == action && r.Failed {
			return true
		}
	}
	return false
}

// Summary describes the last few cycles in one line each.
func (m *Memory) Summary(n int) string {
	var b strings.Builder
	start := max(0, len(m.Records)-n)
	for _, r := range m.Records[start:] {
		fmt.Fprintf(&b, "day %d: %s (%s)", r.Day, r.Action, r.CrisisLevel)
		if r.Failed {
			b.WriteString(" failed")
		}
		b.WriteString("\n")
	}
	return b.String()
}
