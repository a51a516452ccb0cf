package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

func newTestCmd() *cobra.Command {
	c := &cobra.Command{Use: "test"}
	c.Flags().StringP("eval", "e", "", "")
	return c
}

func TestReadSourceFromEvalFlag(t *testing.T) {
	c := newTestCmd()
	c.Flags().Set("eval", "print 1")

	input, filename, err := readSource(c, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if input != "print 1" {
		t.Errorf("input = %q, want %q", input, "print 1")
	}
	if filename != "<eval>" {
		t.Errorf("filename = %q, want %q", filename, "<eval>")
	}
}

func TestReadSourceFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.jactl")
	if err := os.WriteFile(path, []byte("print 1"), 0o644); err != nil {
		t.Fatalf("failed to write fixture file: %v", err)
	}

	c := newTestCmd()
	input, filename, err := readSource(c, []string{path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if input != "print 1" {
		t.Errorf("input = %q, want %q", input, "print 1")
	}
	if filename != path {
		t.Errorf("filename = %q, want %q", filename, path)
	}
}

func TestReadSourceNoArgsNoEvalIsError(t *testing.T) {
	c := newTestCmd()
	_, _, err := readSource(c, nil)
	if err == nil {
		t.Fatal("expected an error when neither -e nor a file argument is given")
	}
}

func TestReadSourceMissingFileIsError(t *testing.T) {
	c := newTestCmd()
	_, _, err := readSource(c, []string{"/nonexistent/path/to/a/script.jactl"})
	if err == nil {
		t.Fatal("expected an error for a nonexistent file")
	}
}
