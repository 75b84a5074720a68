package speech

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"
)

type fakeRunner struct {
	mu      sync.Mutex
	calls   [][]string
	release chan struct{}
	stopped int
}

func (f *fakeRunner) run(ctx context.Context, name string, args ...string) error {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()
	select {
	case <-ctx.Done():
		f.mu.Lock()
		f.stopped++
		f.mu.Unlock()
		return ctx.Err()
	case <-f.release:
		return nil
	}
}

func (f *fakeRunner) stoppedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}

func TestSpeak_TracksNewestOnly(t *testing.T) {
	runner := &fakeRunner{release: make(chan struct{})}
	s := newSpeaker("tr-TR", "espeak-ng", runner.run)

	if err := s.Speak("bir"); err != nil {
		t.Fatalf("Speak() error: %v", err)
	}
	if err := s.Speak("iki"); err != nil {
		t.Fatalf("Speak() error: %v", err)
	}
	if !s.IsSpeaking() {
		t.Fatal("Expected speaking")
	}
	if runner.stoppedCount() != 0 {
		t.Fatal("Expected the first utterance to keep running")
	}

	close(runner.release)
	waitFor(t, func() bool { return !s.IsSpeaking() })
}

// keyedRunner finishes an utterance when its text is released.
type keyedRunner struct {
	mu      sync.Mutex
	release map[string]chan struct{}
	running map[string]bool
}

func newKeyedRunner(texts ...string) *keyedRunner {
	k := &keyedRunner{release: make(map[string]chan struct{}), running: make(map[string]bool)}
	for _, text := range texts {
		k.release[text] = make(chan struct{})
	}
	return k
}

func (k *keyedRunner) run(ctx context.Context, name string, args ...string) error {
	text := args[len(args)-1]
	k.mu.Lock()
	k.running[text] = true
	ch := k.release[text]
	k.mu.Unlock()
	defer func() {
		k.mu.Lock()
		k.running[text] = false
		k.mu.Unlock()
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}

func (k *keyedRunner) isRunning(text string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.running[text]
}

func TestIsSpeaking_FollowsNewestUtterance(t *testing.T) {
	runner := newKeyedRunner("bir", "iki")
	s := newSpeaker("tr-TR", "say", runner.run)

	_ = s.Speak("bir")
	_ = s.Speak("iki")
	waitFor(t, func() bool { return runner.isRunning("bir") && runner.isRunning("iki") })

	close(runner.release["iki"])
	waitFor(t, func() bool { return !s.IsSpeaking() })
	if !runner.isRunning("bir") {
		t.Fatal("Expected the older utterance to still be running")
	}

	close(runner.release["bir"])
	waitFor(t, func() bool { return !runner.isRunning("bir") })
}

func TestStop_CancelsAll(t *testing.T) {
	runner := &fakeRunner{release: make(chan struct{})}
	s := newSpeaker("tr-TR", "espeak-ng", runner.run)

	_ = s.Speak("bir")
	_ = s.Speak("iki")
	s.Stop()

	if s.IsSpeaking() {
		t.Fatal("Expected not speaking after Stop")
	}
	waitFor(t, func() bool { return runner.stoppedCount() == 2 })
}

func TestSpeak_RejectsEmpty(t *testing.T) {
	s := newSpeaker("", "say", (&fakeRunner{}).run)
	if err := s.Speak("   "); err == nil {
		t.Fatal("Expected error for empty text")
	}
	if s.locale != "tr-TR" {
		t.Fatalf("Expected default locale, got %q", s.locale)
	}
}

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		command string
		locale  string
		want    []string
	}{
		{"espeak-ng", "tr-TR", []string{"-v", "tr", "merhaba"}},
		{"/usr/bin/espeak", "en_US", []string{"-v", "en", "merhaba"}},
		{"spd-say", "tr-TR", []string{"-w", "-l", "tr", "merhaba"}},
		{"say", "tr-TR", []string{"merhaba"}},
	}
	for _, tt := range tests {
		got := buildArgs(tt.command, tt.locale, "merhaba")
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("buildArgs(%q, %q) = %v, want %v", tt.command, tt.locale, got, tt.want)
		}
	}
}
