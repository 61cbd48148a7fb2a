package focus

import (
	"testing"

	"pcpaneld/internal/model"
)

func TestFocusObjectUpdateIsLatestWins(t *testing.T) {
	updates := make(chan model.FocusedWindow, 1)
	obj := &focusObject{updates: updates}

	obj.Update("a.desktop", "a", "A")
	obj.Update("b.desktop", "b", "B")

	got := <-updates
	if got.DesktopFile != "b.desktop" {
		t.Fatalf("got %+v, want the most recent update", got)
	}
	select {
	case extra := <-updates:
		t.Fatalf("expected channel drained, got extra %+v", extra)
	default:
	}
}
