package logger

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

// capture redirects log output into a buffer for the duration of a test.
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	SetOutput(buf)
	level := GetLevel()
	t.Cleanup(func() {
		SetOutput(bytes.NewBuffer(nil))
		SetLevel(level)
	})
	return buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"Warning", LevelWarning, false},
		{"warn", LevelWarning, false},
		{"error", LevelError, false},
		{"critical", LevelCritical, false},
		{" info ", LevelInfo, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseLevel(%q) expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLevel(%q) unexpected error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLevelGate(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelWarning)

	Debug("should be dropped")
	Info("should also be dropped")
	Warning("should be kept")
	Error("kept too", nil)

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("messages below level were written: %q", out)
	}
	if !strings.Contains(out, "should be kept") {
		t.Error("warning message missing")
	}
	if !strings.Contains(out, "kept too") {
		t.Error("error message missing")
	}
}

func TestSetLevelName(t *testing.T) {
	buf := capture(t)

	if err := SetLevelName("debug"); err != nil {
		t.Fatalf("SetLevelName failed: %v", err)
	}
	if GetLevel() != LevelDebug {
		t.Errorf("GetLevel() = %v, want debug", GetLevel())
	}

	Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Error("debug message missing after SetLevelName(debug)")
	}

	if err := SetLevelName("nonsense"); err == nil {
		t.Error("SetLevelName should reject unknown names")
	}
}

func TestDecoration(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelDebug)

	Error("something failed", nil)
	if !strings.Contains(buf.String(), "❌") {
		t.Error("error line missing level emoji")
	}

	buf.Reset()
	Info("mapping enabled")
	if !strings.Contains(buf.String(), "✅") {
		t.Error("success-flavored line missing QC tag")
	}
}

func TestErrorAppendsCause(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelDebug)

	Error("opening port", errTest("no such port"))
	if !strings.Contains(buf.String(), "opening port: no such port") {
		t.Errorf("error cause not appended: %q", buf.String())
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }

func TestJSON(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelDebug)

	JSON(map[string]any{"target": "camera_zoom", "value": 1.5})
	out := buf.String()
	if !strings.Contains(out, `"target":"camera_zoom"`) {
		t.Errorf("JSON output not compact: %q", out)
	}
}

func TestJSON_Unserializable(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelDebug)

	// math.Inf cannot be marshaled; the call must degrade to a logged error
	// rather than panic.
	JSON(map[string]any{"bad": math.Inf(1)})
	if !strings.Contains(buf.String(), "failed to serialize JSON payload") {
		t.Errorf("expected serialization warning, got %q", buf.String())
	}
}

func TestParameter_Float(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelDebug)

	Parameter("zoom value", 1.23456)
	if !strings.Contains(buf.String(), "1.23") {
		t.Errorf("float not formatted with fixed precision: %q", buf.String())
	}
}

func TestParameter_LongSlice(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelDebug)

	Parameter("raw values", []int{1, 2, 3, 4, 5, 6, 7, 8})
	out := buf.String()
	if !strings.Contains(out, "len=8") {
		t.Errorf("long slice summary missing length: %q", out)
	}
	if !strings.Contains(out, "preview=") {
		t.Errorf("long slice summary missing preview: %q", out)
	}
	if strings.Contains(out, "8]") && strings.Contains(out, "[1 2 3 4 5 6 7 8]") {
		t.Errorf("long slice dumped in full: %q", out)
	}
}

func TestParameter_Bytes(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelDebug)

	Parameter("sysex", []byte{0xF0, 0x00, 0x20, 0x29, 0x02, 0x0C, 0x0A, 0x01, 0x01, 0xF7})
	out := buf.String()
	if !strings.Contains(out, "0xF0") {
		t.Errorf("byte preview missing hex: %q", out)
	}
	if !strings.Contains(out, "len=10") {
		t.Errorf("byte summary missing length: %q", out)
	}
}

func TestParameter_Nil(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelDebug)

	Parameter("no value", nil)
	if !strings.Contains(buf.String(), "nil") {
		t.Errorf("nil parameter not reported: %q", buf.String())
	}
}
