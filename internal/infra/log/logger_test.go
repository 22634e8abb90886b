package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	prodLogger := newLogger(&buf, "prod")
	prodLogger.Debug().Msg("скрыто")
	if buf.Len() != 0 {
		t.Fatalf("debug не должен писаться вне dev")
	}
	devLogger := newLogger(&buf, "dev")
	devLogger.Debug().Msg("видно")
	out := buf.String()
	if !strings.Contains(out, "видно") || !strings.Contains(out, `"service":"feedback-api"`) {
		t.Fatalf("неожиданный вывод: %s", out)
	}
}
