package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestWithLogger_FromContext(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithLogger(context.Background(), l)
	FromContext(ctx).Info("test message")

	if buf.Len() == 0 {
		t.Error("Logger from context should produce output")
	}
}

func TestFromContext_Default(t *testing.T) {
	if l := FromContext(context.Background()); l == nil {
		t.Error("FromContext should return default logger, got nil")
	}
}

func TestOperationID(t *testing.T) {
	ctx := context.Background()
	if got := OperationIDFromContext(ctx); got != "" {
		t.Errorf("OperationIDFromContext() = %q, want empty string", got)
	}

	ctx = WithOperationID(ctx, "01HZX3")
	if got := OperationIDFromContext(ctx); got != "01HZX3" {
		t.Errorf("OperationIDFromContext() = %q, want %q", got, "01HZX3")
	}
}

func TestL(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		wantID bool
	}{
		{name: "with operation id", id: "01HZX3", wantID: true},
		{name: "without operation id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := New(Config{Level: "info", Format: "json", Output: &buf})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			ctx := WithLogger(context.Background(), l)
			if tt.id != "" {
				ctx = WithOperationID(ctx, tt.id)
			}
			L(ctx).Info("saved")

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("Failed to parse JSON log: %v", err)
			}
			got, ok := entry["op_id"]
			if ok != tt.wantID {
				t.Fatalf("op_id present = %v, want %v", ok, tt.wantID)
			}
			if tt.wantID && got != tt.id {
				t.Errorf("op_id = %v, want %q", got, tt.id)
			}
		})
	}
}

func TestTag(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	Tag(context.Background(), base).Info("untagged")
	Tag(WithOperationID(context.Background(), "01ABC"), base).Info("tagged")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	for i, want := range []string{"", "01ABC"} {
		var entry map[string]any
		if err := json.Unmarshal(lines[i], &entry); err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		got, _ := entry["op_id"].(string)
		if got != want {
			t.Errorf("line %d op_id = %q, want %q", i, got, want)
		}
	}
}
