package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	rferrors "github.com/matzehuels/rasterfold/pkg/errors"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	c.Progress = io.Discard
	root := c.RootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootUsageErrors(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "missing.shp")
	model := filepath.Join(dir, "missing.tif")
	out := filepath.Join(dir, "out.tif")

	tests := []struct {
		name string
		args []string
		code rferrors.Code
	}{
		{"max without field", []string{src, model, out, "--method", "max"}, rferrors.ErrCodeMissingField},
		{"mean without field", []string{src, model, out, "--method", "mean"}, rferrors.ErrCodeMissingField},
		{"unknown method", []string{src, model, out, "--method", "sum"}, rferrors.ErrCodeInvalidMethod},
		{"unknown engine", []string{src, model, out, "--engine", "qgis"}, rferrors.ErrCodeInvalidInput},
		{"bad creation option", []string{src, model, out, "--co", "COMPRESS"}, rferrors.ErrCodeInvalidInput},
		{"too few arguments", []string{src, model}, rferrors.ErrCodeInvalidInput},
		{"unknown flag", []string{src, model, out, "--colour"}, rferrors.ErrCodeInvalidInput},
		{"missing config", []string{src, model, out, "--config", filepath.Join(dir, "none.toml")}, rferrors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if code := rferrors.GetCode(err); code != tt.code {
				t.Fatalf("code = %q, want %q (err: %v)", code, tt.code, err)
			}
			// Validation must fail before the missing inputs are opened.
			if !rferrors.IsUsage(err) {
				t.Errorf("IsUsage(%v) = false, want true", err)
			}
		})
	}
}

func TestRootMissingInputIsNotUsage(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t,
		filepath.Join(dir, "missing.geojson"),
		filepath.Join(dir, "missing.tif"),
		filepath.Join(dir, "out.tif"),
		"--engine", "native", "--quiet")
	if err == nil {
		t.Fatal("expected error")
	}
	if rferrors.IsUsage(err) {
		t.Errorf("IsUsage(%v) = true, want false", err)
	}
	if !rferrors.Is(err, rferrors.ErrCodeIO) {
		t.Errorf("error = %v, want IO_ERROR", err)
	}
}

func TestRootVersion(t *testing.T) {
	out, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("--version error = %v", err)
	}
	if !strings.HasPrefix(out, "rasterfold version ") {
		t.Errorf("output = %q, want rasterfold version prefix", out)
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, err := execute(t, "completion", shell)
			if err != nil {
				t.Fatalf("completion %s error = %v", shell, err)
			}
			if !strings.Contains(out, "rasterfold") {
				t.Errorf("completion script does not mention rasterfold")
			}
		})
	}

	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("completion tcsh should fail")
	}
}

func TestRootCompletions(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		want      []string
		directive string
	}{
		{"output", []string{"a.shp", "dem.tif", ""}, []string{"tif", "tiff"}, ":8"},
		{"method", []string{"a.shp", "dem.tif", "out.tif", "--method", ""}, []string{"count", "max", "mean"}, ":4"},
		{"engine", []string{"a.shp", "dem.tif", "out.tif", "--engine", ""}, []string{"gdal", "native"}, ":4"},
		{"type", []string{"a.shp", "dem.tif", "out.tif", "--type", ""}, []string{"Byte", "Float32"}, ":4"},
		{"config", []string{"a.shp", "dem.tif", "out.tif", "--config", ""}, []string{"toml"}, ":8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"__complete"}, tt.args...)...)
			if err != nil {
				t.Fatalf("__complete error = %v", err)
			}
			lines := strings.Split(out, "\n")
			for _, w := range tt.want {
				if !slices.Contains(lines, w) {
					t.Errorf("completions %q do not include %q", lines, w)
				}
			}
			if !slices.Contains(lines, tt.directive) {
				t.Errorf("completions %q lack directive %s", lines, tt.directive)
			}
		})
	}
}
