package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testDataDir = "../../data"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(context.Background(), append([]string{"foodchainctl"}, args...))
	return out.String(), err
}

func TestValidateData(t *testing.T) {
	out, err := run(t, "validate-data", "--data-dir", testDataDir)
	if err != nil {
		t.Fatalf("validate-data failed: %v\n%s", err, out)
	}
	for _, era := range []string{"PAST", "PRESENT", "FUTURE"} {
		if !strings.Contains(out, "✓ "+era) {
			t.Errorf("Expected %s to validate, got:\n%s", era, out)
		}
	}
}

func TestValidateData_Invalid(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"past.txt":    "Food Chain: Lion, Wolf, Rabbit, Carrot\n",
		"present.txt": "Food Chain: Lion, Wolf, Rabbit\n",
		// future.txt is missing
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	out, err := run(t, "validate-data", "--data-dir", dir)
	if !errors.Is(err, errInvalidData) {
		t.Fatalf("Expected errInvalidData, got %v", err)
	}
	if !strings.Contains(out, "✓ PAST") || !strings.Contains(out, "✗ PRESENT") || !strings.Contains(out, "✗ FUTURE") {
		t.Errorf("Unexpected report:\n%s", out)
	}
}

func TestNewSaveAndInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.sav")

	out, err := run(t, "new-save", "--data-dir", testDataDir, "--era", "present", "--size", "medium",
		"--rounds", "5", "--seed", "3", "--out", path)
	if err != nil {
		t.Fatalf("new-save failed: %v", err)
	}
	if !strings.Contains(out, "Wrote PRESENT game") {
		t.Errorf("Unexpected output: %s", out)
	}

	out, err = run(t, "inspect", path)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	for _, want := range []string{"Era: PRESENT", "Grid: MEDIUM (15x15)", "Round 1 of 5", "Turn: PREY", "Legal moves for PREY:", "SKIP"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in:\n%s", want, out)
		}
	}
}

func TestNewSave_Stdout(t *testing.T) {
	out, err := run(t, "new-save", "--data-dir", testDataDir, "--era", "FUTURE", "--seed", "9")
	if err != nil {
		t.Fatalf("new-save failed: %v", err)
	}
	if !strings.HasPrefix(out, "ERA=FUTURE\n") {
		t.Errorf("Expected a save file on stdout, got:\n%s", out)
	}
}

func TestNewSave_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown era", []string{"--era", "JURASSIC"}},
		{"unknown size", []string{"--size", "HUGE"}},
		{"zero rounds", []string{"--rounds", "0"}},
		{"missing data dir", []string{"--data-dir", "/non/existent/path"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			args := append([]string{"new-save", "--data-dir", testDataDir}, test.args...)
			if _, err := run(t, args...); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestAutoplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.sav")
	if _, err := run(t, "new-save", "--data-dir", testDataDir, "--rounds", "3", "--seed", "5", "--out", path); err != nil {
		t.Fatalf("new-save failed: %v", err)
	}

	out, err := run(t, "autoplay", "--verbose", path)
	if err != nil {
		t.Fatalf("autoplay failed: %v", err)
	}
	if !strings.Contains(out, "Played 9 turns") {
		t.Errorf("Expected a full 3-round game, got:\n%s", out)
	}
	if !strings.Contains(out, "Game over.") {
		t.Errorf("Expected the winner to be printed, got:\n%s", out)
	}
}

func TestMissingSaveArgument(t *testing.T) {
	for _, cmd := range []string{"inspect", "autoplay"} {
		if _, err := run(t, cmd); err == nil {
			t.Errorf("%s without a path should fail", cmd)
		}
	}
}

func TestInspect_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.sav")
	if err := os.WriteFile(path, []byte("ERA=PAST\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "inspect", path); err == nil {
		t.Error("Expected an error for an incomplete save")
	}
}
