package logger

import (
	"fmt"
	"reflect"
	"strings"
)

const (
	// messagePadding is the width of the message column in Parameter lines.
	messagePadding = 40
	// maxValueLength truncates oversized formatted values.
	maxValueLength = 300
)

var levelEmoji = map[Level]string{
	LevelDebug:    "🔍",
	LevelInfo:     "ℹ️",
	LevelWarning:  "⚠️",
	LevelError:    "❌",
	LevelCritical: "💥",
}

// qcTag returns a content-derived marker for quick scanning of the log.
func qcTag(msg string) string {
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "success rate") {
		return "📊"
	}
	for _, s := range []string{"updat", "success", "passed", "enabl", "setting up"} {
		if strings.Contains(lower, s) {
			return "✅"
		}
	}
	if strings.Contains(lower, "fail") || strings.Contains(lower, "error") {
		return "❌"
	}
	return " "
}

// decorate prefixes a message with its level emoji and QC tag.
func decorate(msg string, level Level) string {
	emoji, ok := levelEmoji[level]
	if !ok {
		emoji = "🔔"
	}
	return emoji + qcTag(msg) + msg
}

// formatParameter builds the padded "message  type  value" line logged by
// Parameter.
func formatParameter(msg string, v any) string {
	typeName := "nil"
	if v != nil {
		typeName = reflect.TypeOf(v).String()
	}

	value := formatValue(v)
	if len(value) > maxValueLength {
		value = value[:maxValueLength-3] + "..."
	}

	return strings.TrimRight(fmt.Sprintf("%-*s %-12s %s", messagePadding, msg, typeName, value), " ")
}

func formatValue(v any) string {
	if v == nil {
		return "nil"
	}

	switch p := v.(type) {
	case float32:
		return fmt.Sprintf("%.2f", p)
	case float64:
		return fmt.Sprintf("%.2f", p)
	case []byte:
		if len(p) > 8 {
			parts := make([]string, 8)
			for i, b := range p[:8] {
				parts[i] = fmt.Sprintf("0x%02X", b)
			}
			return fmt.Sprintf("[]byte[len=%d, preview=%s ...]", len(p), strings.Join(parts, " "))
		}
		parts := make([]string, len(p))
		for i, b := range p {
			parts[i] = fmt.Sprintf("0x%02X", b)
		}
		return strings.Join(parts, " ")
	case fmt.Stringer:
		return p.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		n := rv.Len()
		if n > 5 {
			parts := make([]string, 5)
			for i := 0; i < 5; i++ {
				parts[i] = fmt.Sprint(rv.Index(i).Interface())
			}
			return fmt.Sprintf("%s[len=%d, preview=[%s, ...]]", rv.Type().String(), n, strings.Join(parts, ", "))
		}
	case reflect.Map:
		n := rv.Len()
		if n > 3 {
			keys := rv.MapKeys()[:3]
			parts := make([]string, len(keys))
			for i, k := range keys {
				parts[i] = fmt.Sprintf("%v=%v", k.Interface(), rv.MapIndex(k).Interface())
			}
			return fmt.Sprintf("%s[len=%d, preview={ %s, ... }]", rv.Type().String(), n, strings.Join(parts, ", "))
		}
	}

	return fmt.Sprint(v)
}
