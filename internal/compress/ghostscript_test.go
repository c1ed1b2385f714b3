package compress

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"docarchive/internal/shared/procexec"
	"docarchive/internal/testutil"
)

// fakeGhostscript copies the input to the -sOutputFile target and records its
// arguments, so the flag set can be checked without Ghostscript installed.
const fakeGhostscript = `#!/bin/sh
out=""
last=""
for a in "$@"; do
  case "$a" in
    -sOutputFile=*) out="${a#-sOutputFile=}" ;;
  esac
  last="$a"
done
printf '%s\n' "$@" > "$ARGS_FILE"
echo "processing" >&2
cp "$last" "$out"
`

func writeInputPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.pdf")
	if err := os.WriteFile(path, testutil.MinimalPDF("Hello"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected temp dir to be empty, found %d entries", len(entries))
	}
}

func TestGhostscriptNonZeroExitIsToolError(t *testing.T) {
	falseBin, err := exec.LookPath("false")
	if err != nil {
		t.Skip("false not installed in PATH")
	}
	tempDir := t.TempDir()
	gs := NewGhostscript(falseBin, 120, tempDir, 5*time.Second)

	_, err = gs.CompressPDF(context.Background(), writeInputPDF(t))

	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected ToolError, got %v", err)
	}
	if toolErr.ExitCode != 1 {
		t.Fatalf("expected exit code 1, got %d", toolErr.ExitCode)
	}
	assertDirEmpty(t, tempDir)
}

func TestGhostscriptSuccessPassesScreenProfileFlags(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not installed in PATH")
	}
	scriptDir := t.TempDir()
	script := filepath.Join(scriptDir, "gs")
	if err := os.WriteFile(script, []byte(fakeGhostscript), 0o755); err != nil {
		t.Fatalf("write fake gs: %v", err)
	}
	argsFile := filepath.Join(scriptDir, "args.txt")
	t.Setenv("ARGS_FILE", argsFile)

	tempDir := t.TempDir()
	input := writeInputPDF(t)
	gs := NewGhostscript(script, 0, tempDir, 5*time.Second)

	out, err := gs.CompressPDF(context.Background(), input)
	if err != nil {
		t.Fatalf("CompressPDF: %v", err)
	}
	original, _ := os.ReadFile(input)
	if string(out) != string(original) {
		t.Fatalf("expected fake output to mirror input")
	}
	assertDirEmpty(t, tempDir)

	rawArgs, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	args := string(rawArgs)
	for _, flag := range []string{
		"-sDEVICE=pdfwrite",
		"-dPDFSETTINGS=/screen",
		"-dEmbedAllFonts=true",
		"-dSubsetFonts=true",
		"-dColorImageDownsampleType=/Bicubic",
		"-dGrayImageDownsampleType=/Bicubic",
		"-dMonoImageDownsampleType=/Bicubic",
		"-dColorImageResolution=120",
		"-dGrayImageResolution=120",
		"-dMonoImageResolution=120",
	} {
		if !strings.Contains(args, flag+"\n") {
			t.Fatalf("missing flag %s in %q", flag, args)
		}
	}
}

func TestGhostscriptTimeoutRemovesTempOutput(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not installed in PATH")
	}
	script := filepath.Join(t.TempDir(), "gs")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nexec sleep 5\n"), 0o755); err != nil {
		t.Fatalf("write fake gs: %v", err)
	}
	tempDir := t.TempDir()
	gs := NewGhostscript(script, 120, tempDir, 50*time.Millisecond)

	_, err := gs.CompressPDF(context.Background(), writeInputPDF(t))

	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected ToolError, got %v", err)
	}
	if !errors.Is(err, procexec.ErrTimeout) {
		t.Fatalf("expected wrapped ErrTimeout, got %v", err)
	}
	assertDirEmpty(t, tempDir)
}

func TestGhostscriptMissingInput(t *testing.T) {
	gs := NewGhostscript("gs", 120, t.TempDir(), time.Second)
	if _, err := gs.CompressPDF(context.Background(), filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Fatalf("expected error for missing input")
	}
}
