package assistant

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestUpdateLogRecordAndRecent(t *testing.T) {
	updateLog, err := OpenUpdateLog(filepath.Join(t.TempDir(), "updates.db"), nil)
	if err != nil {
		t.Fatalf("OpenUpdateLog() error = %v", err)
	}
	defer updateLog.Close()

	updateLog.Record("U1", "en", "first")
	updateLog.Record("U2", "zh-TW", "second")
	updateLog.Record("U3", "zh-CN", "third")

	entries, err := updateLog.Recent(2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Recent(2) returned %d entries, want 2", len(entries))
	}
	// Newest first.
	if entries[0].Message != "third" || entries[1].Message != "second" {
		t.Errorf("Recent(2) = [%q, %q], want newest first", entries[0].Message, entries[1].Message)
	}
	if entries[0].Source != "U3" {
		t.Errorf("Source = %q, want %q", entries[0].Source, "U3")
	}
	if entries[0].CreatedAt == "" {
		t.Error("CreatedAt is empty")
	}
}

func TestUpdateLogRecentEmpty(t *testing.T) {
	updateLog, err := OpenUpdateLog(filepath.Join(t.TempDir(), "updates.db"), nil)
	if err != nil {
		t.Fatalf("OpenUpdateLog() error = %v", err)
	}
	defer updateLog.Close()

	entries, err := updateLog.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Recent() on empty log returned %d entries", len(entries))
	}
}

func TestUpdateLogTruncatesLongMessages(t *testing.T) {
	updateLog, err := OpenUpdateLog(filepath.Join(t.TempDir(), "updates.db"), nil)
	if err != nil {
		t.Fatalf("OpenUpdateLog() error = %v", err)
	}
	defer updateLog.Close()

	updateLog.Record("U1", "en", strings.Repeat("x", 5000))

	entries, err := updateLog.Recent(1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Recent() returned %d entries, want 1", len(entries))
	}
	if !strings.HasSuffix(entries[0].Message, "...[truncated]") {
		t.Error("long message not truncated")
	}
	if len(entries[0].Message) > 2100 {
		t.Errorf("stored message length = %d, want <= 2100", len(entries[0].Message))
	}
}
