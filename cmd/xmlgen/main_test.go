package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-xmlgen/pkg/config"
	"github.com/goliatone/go-xmlgen/pkg/document"
	"github.com/goliatone/go-xmlgen/pkg/generator"
	"github.com/goliatone/go-xmlgen/pkg/payload"
)

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func newTestApp(selectType typeSelector) (*app, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &app{stdout: &stdout, stderr: &stderr, selectType: selectType}, &stdout, &stderr
}

func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	a, stdout, stderr := newTestApp(nil)
	code := execute(context.Background(), a, args)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: exitOK},
		{name: "other", err: errors.New("boom"), want: exitFailure},
		{name: "config", err: fmt.Errorf("load: %w", &config.Error{Field: "encoding"}), want: exitConfig},
		{name: "unknown type", err: &generator.UnknownTypeError{Name: "x"}, want: exitRegistry},
		{name: "duplicate type", err: &generator.DuplicateTypeError{Name: "x"}, want: exitRegistry},
		{name: "shape", err: fmt.Errorf("pipeline: generate: %w", &generator.ShapeError{Reason: "bad"}), want: exitShape},
		{name: "collision", err: &generator.KeyCollisionError{Tag: "a"}, want: exitShape},
		{name: "depth", err: &generator.DepthExceededError{Limit: 2}, want: exitShape},
		{name: "payload schema", err: &payload.SchemaError{Violations: []string{"x"}}, want: exitShape},
		{name: "serialization", err: &document.SerializationError{Reason: "bad"}, want: exitSerialization},
		{name: "strict", err: &invalidDocumentError{summary: "invalid"}, want: exitInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := exitCode(tc.err); got != tc.want {
				t.Fatalf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestTypesCommand(t *testing.T) {
	res := runCLI(t, "types")
	if res.code != exitOK {
		t.Fatalf("exit %d: %s", res.code, res.stderr)
	}
	want := "Available generator types:\n  - catalog\n  - data\n  - report\n  - table\n"
	if res.stdout != want {
		t.Fatalf("unexpected output:\n%s", res.stdout)
	}
}

func TestGenerateThenValidate(t *testing.T) {
	out := filepath.Join(t.TempDir(), "data.xml")

	res := runCLI(t, "generate", "data", "testdata/data.json", "-o", out)
	if res.code != exitOK {
		t.Fatalf("generate exit %d: %s", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, "XML generated: "+out) || !strings.Contains(res.stdout, "valid (0 errors") {
		t.Fatalf("unexpected generate output: %s", res.stdout)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	root, _, err := document.ParseBytes(data)
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if root.Tag != config.DefaultRootElement || root.Child("owner").Child("team").Text != "platform" {
		t.Fatalf("unexpected document %s", data)
	}

	res = runCLI(t, "validate", out)
	if res.code != exitOK {
		t.Fatalf("validate exit %d: %s", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, "Status: VALID") {
		t.Fatalf("expected valid text report, got %s", res.stdout)
	}
}

func TestGenerateWithConfigOverrides(t *testing.T) {
	out := filepath.Join(t.TempDir(), "rows.xml")
	res := runCLI(t, "generate", "table", "testdata/rows.yaml", "-c", "testdata/config.yaml",
		"--root-element", "stock", "--namespace", "urn:stock", "-o", out)
	if res.code != exitOK {
		t.Fatalf("exit %d: %s", res.code, res.stderr)
	}
	if !strings.Contains(res.stderr, "ignoring unknown config field") || !strings.Contains(res.stderr, "field=theme") {
		t.Fatalf("expected unknown field warning, got %s", res.stderr)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, `<stock xmlns="urn:stock">`) || !strings.Contains(text, "<source>tests</source>") {
		t.Fatalf("overrides not applied: %s", text)
	}
	if strings.Count(text, "\n") > 1 {
		t.Fatalf("expected compact output from the config file, got %s", text)
	}
}

func TestGenerateToStdoutWithJSONReport(t *testing.T) {
	report := filepath.Join(t.TempDir(), "report.json")
	res := runCLI(t, "generate", "data", "testdata/data.json", "-o", "-", "--report", report, "--report-format", "json")
	if res.code != exitOK {
		t.Fatalf("exit %d: %s", res.code, res.stderr)
	}
	if !strings.HasPrefix(res.stdout, "<?xml") {
		t.Fatalf("expected XML on stdout, got %s", res.stdout)
	}
	data, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(data), `"is_valid": true`) {
		t.Fatalf("unexpected report %s", data)
	}
}

func TestGenerateFailures(t *testing.T) {
	cases := []struct {
		name  string
		args  []string
		code  int
		label string
	}{
		{name: "unknown type", args: []string{"generate", "invoice", "testdata/data.json"}, code: exitRegistry, label: "UNKNOWN_TYPE"},
		{name: "unknown type without input", args: []string{"generate", "invoice"}, code: exitRegistry, label: "UNKNOWN_TYPE"},
		{name: "bad config", args: []string{"generate", "data", "testdata/data.json", "-c", "testdata/bad-config.json"}, code: exitConfig, label: "CONFIG_ERROR"},
		{name: "bad encoding", args: []string{"generate", "data", "testdata/data.json", "--encoding", "NOPE-1"}, code: exitConfig, label: "CONFIG_ERROR"},
		{name: "shape", args: []string{"generate", "table", "testdata/data.json"}, code: exitShape, label: "SHAPE_ERROR"},
		{name: "missing input", args: []string{"generate", "data"}, code: exitFailure, label: "ERROR"},
		{name: "missing file", args: []string{"generate", "data", "testdata/nope.json"}, code: exitFailure, label: "ERROR"},
		{name: "report format", args: []string{"generate", "data", "testdata/data.json", "--report-format", "xml"}, code: exitFailure, label: "ERROR"},
		{name: "strict", args: []string{"generate", "data", "testdata/data.json", "--schema", "testdata/strict.schema.yaml", "--strict"}, code: exitInvalid, label: "INVALID_DOCUMENT"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out.xml")
			res := runCLI(t, append(tc.args, "-o", out)...)
			if res.code != tc.code {
				t.Fatalf("exit %d, want %d: %s", res.code, tc.code, res.stderr)
			}
			if !strings.Contains(res.stderr, "["+tc.label+"]") {
				t.Fatalf("expected %s in stderr, got %s", tc.label, res.stderr)
			}
			_, statErr := os.Stat(out)
			if tc.code == exitInvalid {
				if statErr != nil {
					t.Fatalf("invalid documents are still written: %v", statErr)
				}
				if !strings.Contains(res.stderr, "[MISSING_CHILD]") {
					t.Fatalf("expected the report on stderr, got %s", res.stderr)
				}
				return
			}
			if !errors.Is(statErr, os.ErrNotExist) {
				t.Fatalf("expected no output, stat returned %v", statErr)
			}
		})
	}
}

func TestReportFileErrors(t *testing.T) {
	cases := []struct {
		name string
		path string
		want string
	}{
		{name: "missing directory", path: filepath.Join(t.TempDir(), "nope", "report.txt"), want: "create report"},
		{name: "full device", path: "/dev/full", want: "no space left"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.path == "/dev/full" {
				if _, err := os.Stat(tc.path); err != nil {
					t.Skip("no /dev/full on this platform")
				}
			}
			out := filepath.Join(t.TempDir(), "data.xml")
			res := runCLI(t, "generate", "data", "testdata/data.json", "-o", out, "--report", tc.path)
			if res.code != exitFailure || !strings.Contains(res.stderr, tc.want) {
				t.Fatalf("expected report failure containing %q, got exit %d: %s", tc.want, res.code, res.stderr)
			}
		})
	}
}

func TestInteractiveTypeSelection(t *testing.T) {
	var offered []string
	a, stdout, stderr := newTestApp(func(ctx context.Context, types []string) (string, error) {
		offered = types
		return generator.TypeTable, nil
	})
	out := filepath.Join(t.TempDir(), "rows.xml")

	if code := execute(context.Background(), a, []string{"generate", "--interactive", "testdata/rows.yaml", "-o", out}); code != exitOK {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if len(offered) != 4 {
		t.Fatalf("expected every registered type to be offered, got %v", offered)
	}
	if !strings.Contains(stdout.String(), out) {
		t.Fatalf("unexpected output %s", stdout)
	}

	a.selectType = func(context.Context, []string) (string, error) { return "", errAborted }
	if code := execute(context.Background(), a, []string{"generate", "--interactive", "testdata/rows.yaml"}); code != exitFailure {
		t.Fatalf("expected aborted prompt to fail, got %d", code)
	}
}

func TestCatalogCommands(t *testing.T) {
	a, stdout, stderr := newTestApp(nil)
	ctx := context.Background()

	if code := execute(ctx, a, []string{"catalog", "import", "testdata/features.json"}); code != exitOK {
		t.Fatalf("import exit %d: %s", code, stderr)
	}
	if !strings.Contains(stdout.String(), "Imported 3 features.") {
		t.Fatalf("unexpected import output %s", stdout)
	}

	stdout.Reset()
	if code := execute(ctx, a, []string{"catalog", "summary"}); code != exitOK {
		t.Fatalf("summary exit %d: %s", code, stderr)
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[1], "auth") || !strings.HasSuffix(lines[1], "2") {
		t.Fatalf("unexpected summary %q", lines)
	}

	out := filepath.Join(t.TempDir(), "features.xml")
	if code := execute(ctx, a, []string{"generate", "catalog", "-o", out}); code != exitOK {
		t.Fatalf("generate exit %d: %s", code, stderr)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if got := strings.Count(string(data), "<feature "); got != 3 {
		t.Fatalf("expected 3 features from the store, got %d", got)
	}

	stdout.Reset()
	if code := execute(ctx, a, []string{"history", "--limit", "1"}); code != exitOK {
		t.Fatalf("history exit %d: %s", code, stderr)
	}
	if !strings.Contains(stdout.String(), "catalog") || !strings.Contains(stdout.String(), out) {
		t.Fatalf("unexpected history %s", stdout)
	}
}
