package json_test

import (
	stdjson "encoding/json"
	"strings"
	"testing"
	"time"

	fmtjson "github.com/vpbank/intellivue-gateway/format/json"
	"github.com/vpbank/intellivue-gateway/models"
)

// ─────────────────────────────────────────────────────────────────────────────
// Shared fixtures
// ─────────────────────────────────────────────────────────────────────────────

var testTimestamp = time.Date(2026, 2, 26, 10, 30, 0, 123_000_000, time.UTC)

var fullPayload = models.WebhookPayload{
	MonitorID: "00:11:22:33:44:55",
	Datetime:  testTimestamp,
	Observations: []models.Observation{
		{
			PhysioID: "HR",
			State:    []string{"VALIDATED"},
			UnitCode: "bpm",
			Value:    72,
		},
		{
			PhysioID: "SPO2",
			State:    nil,
			UnitCode: "percent",
			Value:    98.5,
		},
	},
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func mustFormat(t *testing.T, f *fmtjson.JSONFormatter, p *models.WebhookPayload) []byte {
	t.Helper()
	b, err := f.Format(p)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	return b
}

func unmarshal(t *testing.T, data []byte) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := stdjson.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v\nraw: %s", err, data)
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Construction
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_NilLoggerDoesNotPanic(t *testing.T) {
	f := fmtjson.New(fmtjson.Config{}, nil)
	if f == nil {
		t.Fatal("New returned nil")
	}
}

func TestNew_DefaultIndentForPrettyPrint(t *testing.T) {
	f := fmtjson.New(fmtjson.Config{PrettyPrint: true}, nil)
	data := mustFormat(t, f, &fullPayload)
	if !strings.Contains(string(data), "\n") {
		t.Error("pretty-print output should contain newlines")
	}
}

func TestNew_CustomIndent(t *testing.T) {
	f := fmtjson.New(fmtjson.Config{PrettyPrint: true, Indent: "\t"}, nil)
	data := mustFormat(t, f, &fullPayload)
	if !strings.Contains(string(data), "\t") {
		t.Error("custom-indent output should contain tab characters")
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Nil input
// ─────────────────────────────────────────────────────────────────────────────

func TestFormat_NilPayloadReturnsError(t *testing.T) {
	f := fmtjson.New(fmtjson.Config{}, nil)
	_, err := f.Format(nil)
	if err == nil {
		t.Error("expected non-nil error for nil payload")
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Schema compliance — top-level keys
// ─────────────────────────────────────────────────────────────────────────────

func TestFormat_TopLevelKeys(t *testing.T) {
	f := fmtjson.New(fmtjson.Config{}, nil)
	doc := unmarshal(t, mustFormat(t, f, &fullPayload))

	for _, key := range []string{"monitor_id", "datetime", "observations"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("top-level key %q missing", key)
		}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Datetime
// ─────────────────────────────────────────────────────────────────────────────

func TestFormat_DatetimeIsRFC3339(t *testing.T) {
	f := fmtjson.New(fmtjson.Config{}, nil)
	doc := unmarshal(t, mustFormat(t, f, &fullPayload))
	ts, ok := doc["datetime"].(string)
	if !ok {
		t.Fatal("datetime is not a string")
	}
	parsed, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		t.Fatalf("datetime %q is not RFC3339Nano: %v", ts, err)
	}
	if !parsed.Equal(testTimestamp) {
		t.Errorf("datetime round-trip: got %v, want %v", parsed, testTimestamp)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Observations array
// ─────────────────────────────────────────────────────────────────────────────

func TestFormat_ObservationCount(t *testing.T) {
	f := fmtjson.New(fmtjson.Config{}, nil)
	doc := unmarshal(t, mustFormat(t, f, &fullPayload))
	arr, ok := doc["observations"].([]interface{})
	if !ok {
		t.Fatal("observations is not an array")
	}
	if len(arr) != 2 {
		t.Errorf("observation count = %d, want 2", len(arr))
	}
}

func TestFormat_ObservationFields(t *testing.T) {
	f := fmtjson.New(fmtjson.Config{}, nil)
	doc := unmarshal(t, mustFormat(t, f, &fullPayload))
	arr := doc["observations"].([]interface{})
	o := arr[0].(map[string]interface{})

	if o["physio_id"] != "HR" {
		t.Errorf("physio_id = %v", o["physio_id"])
	}
	if o["unit_code"] != "bpm" {
		t.Errorf("unit_code = %v", o["unit_code"])
	}
	if o["value"].(float64) != 72 {
		t.Errorf("value = %v", o["value"])
	}
	state, ok := o["state"].([]interface{})
	if !ok || len(state) != 1 || state[0] != "VALIDATED" {
		t.Errorf("state = %v", o["state"])
	}
}

func TestFormat_ObservationNilStateEncodesAsNull(t *testing.T) {
	f := fmtjson.New(fmtjson.Config{}, nil)
	doc := unmarshal(t, mustFormat(t, f, &fullPayload))
	arr := doc["observations"].([]interface{})
	o := arr[1].(map[string]interface{})
	if o["state"] != nil {
		t.Errorf("expected null state, got %v", o["state"])
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Compact vs pretty-print
// ─────────────────────────────────────────────────────────────────────────────

func TestFormat_CompactHasNoNewlines(t *testing.T) {
	f := fmtjson.New(fmtjson.Config{PrettyPrint: false}, nil)
	data := mustFormat(t, f, &fullPayload)
	if strings.Contains(string(data), "\n") {
		t.Error("compact output must not contain newlines")
	}
}

func TestFormat_PrettyAndCompactEquivalent(t *testing.T) {
	fCompact := fmtjson.New(fmtjson.Config{}, nil)
	fPretty := fmtjson.New(fmtjson.Config{PrettyPrint: true}, nil)

	compact := mustFormat(t, fCompact, &fullPayload)
	pretty := mustFormat(t, fPretty, &fullPayload)

	var dc, dp interface{}
	if err := stdjson.Unmarshal(compact, &dc); err != nil {
		t.Fatalf("unmarshal compact: %v", err)
	}
	if err := stdjson.Unmarshal(pretty, &dp); err != nil {
		t.Fatalf("unmarshal pretty: %v", err)
	}

	rc, _ := stdjson.Marshal(dc)
	rp, _ := stdjson.Marshal(dp)
	if string(rc) != string(rp) {
		t.Errorf("compact and pretty-print produce different structures")
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Edge cases
// ─────────────────────────────────────────────────────────────────────────────

func TestFormat_EmptyObservations(t *testing.T) {
	p := models.WebhookPayload{
		MonitorID:    "00:11:22:33:44:55",
		Datetime:     testTimestamp,
		Observations: nil,
	}
	f := fmtjson.New(fmtjson.Config{}, nil)
	data := mustFormat(t, f, &p)
	doc := unmarshal(t, data)
	arr, ok := doc["observations"].([]interface{})
	if ok && len(arr) != 0 {
		t.Errorf("expected empty observations array, got %d items", len(arr))
	}
}

func TestFormat_ValidJSON(t *testing.T) {
	f := fmtjson.New(fmtjson.Config{}, nil)
	data := mustFormat(t, f, &fullPayload)
	if !stdjson.Valid(data) {
		t.Errorf("output is not valid JSON: %s", data)
	}
}
