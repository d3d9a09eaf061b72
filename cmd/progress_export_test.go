package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"pqms/internal/usecase/quality"
)

func sampleProgress() quality.ProcessSheetProgress {
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return quality.ProcessSheetProgress{
		ProcessSheetID:  7,
		TotalItems:      10,
		ProjectProgress: 80,
		Executions: []quality.ExecutionSummary{
			{ID: 1, Status: "completed", Result: "pass", CompletedItems: 2, TotalItems: 10, Progress: 20, StartedAt: &started},
			{ID: 2, Status: "running", CompletedItems: 8, TotalItems: 10, Progress: 80},
		},
	}
}

func TestMarshalProgressExportJSON(t *testing.T) {
	payload, err := marshalProgressExport(sampleProgress(), "json")
	if err != nil {
		t.Fatalf("marshalProgressExport(json) error = %v", err)
	}

	var decoded quality.ProcessSheetProgress
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if decoded.ProjectProgress != 80 || len(decoded.Executions) != 2 {
		t.Fatalf("decoded = %+v", decoded)
	}
	if decoded.Executions[1].StartedAt != nil {
		t.Fatalf("started_at = %v, want nil", decoded.Executions[1].StartedAt)
	}
}

func TestMarshalProgressExportJSONL(t *testing.T) {
	payload, err := marshalProgressExport(sampleProgress(), "jsonl")
	if err != nil {
		t.Fatalf("marshalProgressExport(jsonl) error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2; payload=%s", len(lines), payload)
	}
	var first quality.ExecutionSummary
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("json.Unmarshal(line 0) error = %v", err)
	}
	if first.ID != 1 || first.Progress != 20 {
		t.Fatalf("first = %+v", first)
	}
}

func TestMarshalProgressExportYAML(t *testing.T) {
	payload, err := marshalProgressExport(sampleProgress(), "yaml")
	if err != nil {
		t.Fatalf("marshalProgressExport(yaml) error = %v", err)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if decoded["project_progress"] != 80 {
		t.Fatalf("project_progress = %v, want 80", decoded["project_progress"])
	}
}

func TestMarshalProgressExportTOML(t *testing.T) {
	payload, err := marshalProgressExport(sampleProgress(), "toml")
	if err != nil {
		t.Fatalf("marshalProgressExport(toml) error = %v", err)
	}
	if !bytes.Contains(payload, []byte("[[executions]]")) {
		t.Fatalf("payload missing executions table: %s", payload)
	}

	var decoded struct {
		ProcessSheetID  uint64 `toml:"process_sheet_id"`
		ProjectProgress int    `toml:"project_progress"`
		Executions      []struct {
			ID       uint64 `toml:"id"`
			Progress int    `toml:"progress"`
		} `toml:"executions"`
	}
	if err := toml.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("toml.Unmarshal() error = %v", err)
	}
	if decoded.ProcessSheetID != 7 || decoded.ProjectProgress != 80 || len(decoded.Executions) != 2 {
		t.Fatalf("decoded = %+v", decoded)
	}
}

func TestProgressExportFormatValidation(t *testing.T) {
	for _, format := range []string{"json", "jsonl", "yaml", "toml"} {
		if !isProgressExportFormat(format) {
			t.Fatalf("isProgressExportFormat(%q) = false, want true", format)
		}
	}
	if isProgressExportFormat("csv") {
		t.Fatal("isProgressExportFormat(csv) = true, want false")
	}
	if _, err := marshalProgressExport(sampleProgress(), "csv"); err == nil {
		t.Fatal("marshalProgressExport(csv) error = nil, want error")
	}
}
