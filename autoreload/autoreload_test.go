package autoreload

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestReplaced(t *testing.T) {
	for _, tc := range []struct {
		link string
		path string
		ok   bool
	}{
		{"/usr/local/bin/pasur", "/usr/local/bin/pasur", false},
		{"/usr/local/bin/pasur (deleted)", "/usr/local/bin/pasur", true},
		{"", "", false},
	} {
		if path, ok := replaced(tc.link); path != tc.path || ok != tc.ok {
			t.Errorf("replaced(%q) = %q, %v; want %q, %v", tc.link, path, ok, tc.path, tc.ok)
		}
	}
}

func TestWatchStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Watch(ctx, zap.NewNop(), time.Millisecond)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Errorf("Watch kept running after its context was cancelled")
	}
}
