package validation

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-xmlgen/pkg/config"
	"github.com/goliatone/go-xmlgen/pkg/document"
	"github.com/goliatone/go-xmlgen/pkg/testsupport"
)

func plainConfig(t *testing.T, root string, opts ...config.Option) config.Config {
	t.Helper()
	cfg, err := config.New(append([]config.Option{config.WithRootElement(root), config.WithMetadata(nil)}, opts...)...)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg
}

func codes(findings []Finding) []string {
	out := make([]string, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Code)
	}
	return out
}

func TestValidateNilRoot(t *testing.T) {
	if _, err := New().Validate(nil, config.Default()); !errors.Is(err, ErrNilRoot) {
		t.Fatalf("expected ErrNilRoot, got %v", err)
	}
}

func TestValidTreeHasNoFindings(t *testing.T) {
	root := document.NewRoot("doc", "")
	root.AddChild("a").SetText("1")
	report, err := New().Validate(root, plainConfig(t, "doc"))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !report.IsValid || len(report.Errors) != 0 || len(report.Warnings) != 0 {
		t.Fatalf("expected clean report, got %+v", report)
	}
}

func TestFindingsAccumulateAcrossChecks(t *testing.T) {
	root := document.NewRoot("wrong", "")
	root.AddChild("bad tag").SetText("x")
	root.AddChild("note").SetText("null\x00byte")
	mixed := root.AddChild("mixed")
	mixed.SetText("text")
	mixed.AddChild("child")

	report, err := New().Validate(root, plainConfig(t, "doc", config.WithNamespace("urn:x")))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if report.IsValid {
		t.Fatalf("expected invalid report")
	}
	wantErrors := []string{CodeInvalidTag, CodeInvalidText, CodeRootMismatch, CodeNamespaceMismatch}
	if diff := cmp.Diff(wantErrors, codes(report.Errors)); diff != "" {
		t.Fatalf("error codes mismatch (-want +got):\n%s", diff)
	}
	if !report.HasCode(CodeMixedContent) {
		t.Fatalf("expected mixed content warning, got %+v", report.Warnings)
	}
	if report.Errors[0].Path != "/wrong/bad tag" {
		t.Fatalf("unexpected path %q", report.Errors[0].Path)
	}
}

func TestMetadataBlockChecks(t *testing.T) {
	cfg, err := config.New(config.WithRootElement("doc"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	missing := document.NewRoot("doc", "")
	missing.AddChild("a")
	report, _ := New().Validate(missing, cfg)
	if !report.HasCode(CodeMissingMetadata) || report.IsValid {
		t.Fatalf("expected missing metadata error, got %+v", report)
	}

	late := document.NewRoot("doc", "")
	late.AddChild("a")
	late.AddChild("metadata")
	report, _ = New().Validate(late, cfg)
	if !report.HasCode(CodeMetadataPosition) || !report.IsValid {
		t.Fatalf("expected metadata position warning only, got %+v", report)
	}
}

func TestRaggedRowsWarn(t *testing.T) {
	root := document.NewRoot("table", "")
	for idx, cols := range [][]string{{"id", "name"}, {"id"}, {"id", "name", "extra"}} {
		row := root.AddChild("row")
		row.SetAttr("index", string(rune('0'+idx)))
		for _, col := range cols {
			row.AddChild(col).SetText("v")
		}
	}

	report, err := New().Validate(root, plainConfig(t, "table"))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !report.IsValid {
		t.Fatalf("ragged rows must not invalidate the document: %+v", report.Errors)
	}
	if diff := cmp.Diff([]string{CodeRaggedRow, CodeRaggedRow}, codes(report.Warnings)); diff != "" {
		t.Fatalf("warning codes mismatch (-want +got):\n%s", diff)
	}
	if report.Warnings[0].Path != "/table/row[2]" {
		t.Fatalf("unexpected path %q", report.Warnings[0].Path)
	}
}

func TestIndexIntegrity(t *testing.T) {
	root := document.NewRoot("doc", "")
	for _, index := range []string{"0", "2", "x"} {
		root.AddChild("item").SetAttr("index", index)
	}
	root.AddChild("other").SetAttr("index", "0")

	report, _ := New().Validate(root, plainConfig(t, "doc"))
	if diff := cmp.Diff([]string{CodeIndexSequence, CodeInvalidIndex}, codes(report.Errors)); diff != "" {
		t.Fatalf("error codes mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicateIDs(t *testing.T) {
	root := document.NewRoot("doc", "")
	root.AddChild("a").SetAttr("id", "x")
	root.AddChild("b").SetAttr("id", "x")

	report, _ := New().Validate(root, plainConfig(t, "doc"))
	if diff := cmp.Diff([]string{CodeDuplicateID}, codes(report.Errors)); diff != "" {
		t.Fatalf("error codes mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(report.Errors[0].Message, "/doc/a") {
		t.Fatalf("expected first use in message, got %q", report.Errors[0].Message)
	}
}

func TestSchemaRules(t *testing.T) {
	schema, err := LoadSchemaFile("testdata/catalog.schema.yaml")
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}

	root := document.NewRoot("catalog", "")
	f1 := root.AddChild("feature")
	f1.SetAttr("id", "f1")
	f1.SetAttr("name", "login")
	f2 := root.AddChild("feature")
	f2.SetAttr("id", "f2")
	root.AddChild("dependency").SetAttr("ref", "f9")
	root.AddChild("extra")

	report, err := New(WithSchema(schema)).Validate(root, plainConfig(t, "catalog"))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	wantErrors := []string{CodeMissingChild, CodeMissingAttribute, CodeDanglingReference}
	if diff := cmp.Diff(wantErrors, codes(report.Errors)); diff != "" {
		t.Fatalf("error codes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{CodeUnexpectedChild}, codes(report.Warnings)); diff != "" {
		t.Fatalf("warning codes mismatch (-want +got):\n%s", diff)
	}
}

func TestSchemaUniqueKeys(t *testing.T) {
	schema, err := LoadSchema([]byte(`{"unique": [{"name": "sku", "element": "product", "key": "code"}]}`), "inline")
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	root := document.NewRoot("doc", "")
	for i := 0; i < 2; i++ {
		root.AddChild("product").AddChild("code").SetText(" A-1 ")
	}

	report, _ := New(WithSchema(schema)).Validate(root, plainConfig(t, "doc"))
	if diff := cmp.Diff([]string{CodeDuplicateKey}, codes(report.Errors)); diff != "" {
		t.Fatalf("error codes mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSchemaRejectsInconsistentRules(t *testing.T) {
	if _, err := LoadSchemaFile("testdata/broken.schema.json"); err == nil {
		t.Fatalf("expected reference to unknown unique rule to fail")
	}
}

func TestSizeHeuristics(t *testing.T) {
	root := document.NewRoot("doc", "")
	node := root
	for i := 0; i < 4; i++ {
		node = node.AddChild("n")
	}
	node.SetText(strings.Repeat("x", 64))

	limits := Limits{MaxNodes: 3, MaxBytes: 32, MaxDepth: 2, MaxTextBytes: 16}
	report, _ := New(WithLimits(limits)).Validate(root, plainConfig(t, "doc"))
	if !report.IsValid {
		t.Fatalf("size findings must be warnings: %+v", report.Errors)
	}
	want := []string{CodeNodeCount, CodeSizeEstimate, CodeLargeText, CodeDepth}
	if diff := cmp.Diff(want, codes(report.Warnings)); diff != "" {
		t.Fatalf("warning codes mismatch (-want +got):\n%s", diff)
	}
}

func TestContentHeuristics(t *testing.T) {
	root := document.NewRoot("doc", "")
	root.AddChild("note").SetText("password: hunter2")
	root.AddChild("api_key").SetText("sk_live_0123456789abcdefghij")
	root.AddChild("body").SetText("<b>bold</b> move")
	root.AddChild("payload").SetText(`{"a": }`)
	root.AddChild("math").SetText("x < y & z")
	root.AddChild("json").SetText(`{"ok": true}`)

	report, _ := New().Validate(root, plainConfig(t, "doc"))
	if !report.IsValid {
		t.Fatalf("content findings must be warnings: %+v", report.Errors)
	}
	want := []string{CodePlaintextPassword, CodePossibleSecret, CodeEmbeddedMarkup, CodeInvalidJSON}
	if diff := cmp.Diff(want, codes(report.Warnings)); diff != "" {
		t.Fatalf("warning codes mismatch (-want +got):\n%s", diff)
	}

	report, _ = New(WithoutContentChecks()).Validate(root, plainConfig(t, "doc"))
	if len(report.Warnings) != 0 {
		t.Fatalf("expected content checks to be skipped, got %+v", report.Warnings)
	}
}

func TestValidateBytes(t *testing.T) {
	data, err := os.ReadFile("testdata/catalog.xml")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	schema, err := LoadSchemaFile("testdata/catalog.schema.yaml")
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	cfg, err := config.New(config.WithRootElement("catalog"), config.WithMetadata(map[string]any{"source": "db"}))
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	report := New(WithSchema(schema)).ValidateBytes(data, cfg)
	if !report.IsValid || len(report.Warnings) != 0 {
		t.Fatalf("expected clean report, got %+v", report)
	}
}

func TestValidateBytesParseError(t *testing.T) {
	report := New().ValidateBytes([]byte("<doc><a></doc>"), plainConfig(t, "doc"))
	if report.IsValid || !report.HasCode(CodeParseError) {
		t.Fatalf("expected parse error finding, got %+v", report)
	}
}

func TestValidateFileEncoding(t *testing.T) {
	latin, err := config.New(config.WithRootElement("doc"), config.WithMetadata(nil), config.WithEncoding("latin1"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	report, err := New().ValidateFile(context.Background(), "testdata/latin1.xml", latin)
	if err != nil {
		t.Fatalf("validate file: %v", err)
	}
	if !report.IsValid {
		t.Fatalf("aliases of the declared encoding should match: %+v", report.Errors)
	}

	report, err = New().ValidateFile(context.Background(), "testdata/latin1.xml", plainConfig(t, "doc"))
	if err != nil {
		t.Fatalf("validate file: %v", err)
	}
	if diff := cmp.Diff([]string{CodeEncodingMismatch}, codes(report.Errors)); diff != "" {
		t.Fatalf("error codes mismatch (-want +got):\n%s", diff)
	}
}

func TestReportOutputs(t *testing.T) {
	root := document.NewRoot("wrong", "")
	root.AddChild("a").SetText("<i>x</i>")
	report, _ := New().Validate(root, plainConfig(t, "doc"))

	var text bytes.Buffer
	if err := RenderText(&text, report, TextMeta{Document: "out.xml", TypeName: "data"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Status: INVALID", "Document: out.xml", "[ROOT_MISMATCH]", "[EMBEDDED_MARKUP]", `"wrong"`} {
		if !strings.Contains(text.String(), want) {
			t.Fatalf("text report missing %q:\n%s", want, text.String())
		}
	}

	var js bytes.Buffer
	if err := WriteJSON(&js, report); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(js.String(), `"is_valid": false`) || !strings.Contains(js.String(), `"code": "ROOT_MISMATCH"`) {
		t.Fatalf("unexpected json report:\n%s", js.String())
	}
	if report.Summary() != "invalid (1 errors, 1 warnings)" {
		t.Fatalf("unexpected summary %q", report.Summary())
	}
}

func TestRenderTextGolden(t *testing.T) {
	report := Report{
		IsValid: false,
		Errors: []Finding{{
			Code: CodeRootMismatch, Message: `root element "x" does not match "doc"`, Path: "/x", Severity: SeverityError,
		}},
		Warnings: []Finding{{
			Code: CodeMixedContent, Message: "element mixes text and child elements", Path: "/x/a", Severity: SeverityWarning,
		}},
	}

	var text bytes.Buffer
	if err := RenderText(&text, report, TextMeta{Document: "out.xml", TypeName: "data"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	testsupport.AssertGolden(t, "testdata/report.golden.txt", text.Bytes())
}
