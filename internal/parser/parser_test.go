package parser_test

import (
	"slices"
	"strings"
	"testing"

	"tome/internal/diag"
	"tome/internal/lexer"
	"tome/internal/parser"
	"tome/internal/source"
	"tome/internal/syntax"
)

type testReporter struct {
	diagnostics []diag.Diagnostic
}

func (r *testReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	r.diagnostics = append(r.diagnostics, diag.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Primary:  primary,
		Notes:    notes,
	})
}

func (r *testReporter) codes() []diag.Code {
	out := make([]diag.Code, 0, len(r.diagnostics))
	for _, d := range r.diagnostics {
		out = append(out, d.Code)
	}
	return out
}

func parseSource(t *testing.T, src string, opts parser.Options) (*syntax.Tree, parser.Result, *testReporter) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.rb", []byte(src))
	rep := &testReporter{}
	opts.Reporter = rep
	lx := lexer.New(fs.Get(id), lexer.Options{Reporter: rep})
	tree := syntax.NewTree(id, nil, 0)
	res := parser.ParseFile(fs, lx, tree, opts)
	return tree, res, rep
}

// statements returns the top-level statements of the file.
func statements(tree *syntax.Tree, res parser.Result) []syntax.NodeID {
	return tree.Children(tree.Child(res.Root, 0))
}

func findAll(tree *syntax.Tree, root syntax.NodeID, kind syntax.Kind) []syntax.NodeID {
	var out []syntax.NodeID
	tree.Walk(root, func(id syntax.NodeID, n *syntax.Node) bool {
		if n.Kind == kind {
			out = append(out, id)
		}
		return true
	})
	return out
}

func TestParseGrammar(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "class with method",
			src:  "class Foo\n  def bar\n  end\nend\n",
			want: "(class (const Foo) nil (body (def bar nil nil (body))))",
		},
		{
			name: "module with constant path and constant",
			src:  "module A::B\n  X = 1\nend\n",
			want: "(module (colon2 B (const A)) (body (assign (const X) (int 1))))",
		},
		{
			name: "singleton def with every parameter kind",
			src:  "def self.build(a, b = 2, *rest, key:, opt: 1, **kw, &blk)\nend\n",
			want: "(def build (self) (params (req a) (opt b (int 2)) (rest rest) (key key) (key opt (int 1)) (keyrest kw) (blockarg blk)) (body))",
		},
		{
			name: "singleton class",
			src:  "class << self\n  def helper; end\nend\n",
			want: "(sclass (self) (body (def helper nil nil (body))))",
		},
		{
			name: "endless def",
			src:  "def full_name = \"x\"\n",
			want: "(def full_name nil nil (body (str \"x\")))",
		},
		{
			name: "command call with symbols",
			src:  "attr_reader :name, :age\n",
			want: "(call attr_reader nil (args (sym :name) (sym :age)) nil)",
		},
		{
			name: "visibility modifier wrapping def",
			src:  "private def foo\nend\n",
			want: "(call private nil (args (def foo nil nil (body))) nil)",
		},
		{
			name: "do block with params",
			src:  "foo.each do |x|\n  x\nend\n",
			want: "(call each (ident foo) nil (block (params (req x)) (body (ident x))))",
		},
		{
			name: "paren call with brace block",
			src:  "foo(1, key: 2) { |a| a }\n",
			want: "(call foo nil (args (int 1) (pair (label key) (int 2))) (block (params (req a)) (body (ident a))))",
		},
		{
			name: "modifier if",
			src:  "return 1 if x\n",
			want: "(if (ident x) (body (return (int 1))) nil)",
		},
		{
			name: "modifier rescue",
			src:  "x = 1 rescue nil\n",
			want: "(begin (body (assign (ident x) (int 1))) (rescue nil nil (body (nil))))",
		},
		{
			name: "multiple assignment",
			src:  "a, b = 1, 2\n",
			want: "(masgn (mlhs (ident a) (ident b)) (array (int 1) (int 2)))",
		},
		{
			name: "ternary",
			src:  "x = y ? 1 : 2\n",
			want: "(assign (ident x) (ternary (ident y) (int 1) (int 2)))",
		},
		{
			name: "binary precedence",
			src:  "a = 1 + 2 * 3\n",
			want: "(assign (ident a) (binary + (int 1) (binary * (int 2) (int 3))))",
		},
		{
			name: "if elsif else",
			src:  "if a\n  1\nelsif b\n  2\nelse\n  3\nend\n",
			want: "(if (ident a) (body (int 1)) (if (ident b) (body (int 2)) (body (int 3))))",
		},
		{
			name: "begin rescue ensure",
			src:  "begin\n  x\nrescue Foo => e\n  y\nensure\n  z\nend\n",
			want: "(begin (body (ident x)) (rescue (args (const Foo)) (ident e) (body (ident y))) (ensure (body (ident z))))",
		},
		{
			name: "case when else",
			src:  "case x\nwhen 1, 2 then :a\nelse :b\nend\n",
			want: "(case (ident x) (when (args (int 1) (int 2)) (body (sym :a))) (else (body (sym :b))))",
		},
		{
			name: "method chain on constant path",
			src:  "A::B.new(1).call\n",
			want: "(call call (call new (colon2 B (const A)) (args (int 1)) nil) nil nil)",
		},
		{
			name: "hash literal",
			src:  "h = { a: 1, \"b\" => 2 }\n",
			want: "(assign (ident h) (hash (pair (label a) (int 1)) (pair (str \"b\") (int 2))))",
		},
		{
			name: "alias",
			src:  "alias new_name old_name\n",
			want: "(alias (ident new_name) (ident old_name))",
		},
		{
			name: "while with do",
			src:  "while x do\n  y\nend\n",
			want: "(while (ident x) (body (ident y)))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, res, rep := parseSource(t, tt.src, parser.Options{})
			if len(rep.diagnostics) != 0 {
				t.Fatalf("unexpected diagnostics: %+v", rep.diagnostics)
			}
			stmts := statements(tree, res)
			if len(stmts) != 1 {
				t.Fatalf("expected 1 statement, got %d: %s", len(stmts), tree.Dump(res.Root))
			}
			if got := tree.Dump(stmts[0]); got != tt.want {
				t.Errorf("dump mismatch\n got: %s\nwant: %s", got, tt.want)
			}
		})
	}
}

func TestDocCommentAttachment(t *testing.T) {
	src := "# Docs for Foo\n# more\nclass Foo\n  # floating\n\n  # bar docs\n  def bar; end\nend\n"
	tree, res, rep := parseSource(t, src, parser.Options{})
	if len(rep.diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", rep.diagnostics)
	}

	classes := findAll(tree, res.Root, syntax.KindClass)
	if len(classes) != 1 {
		t.Fatalf("expected 1 class, got %d", len(classes))
	}
	doc := tree.Node(classes[0]).Doc
	if doc == nil {
		t.Fatal("class has no doc comment")
	}
	if doc.Text != "Docs for Foo\nmore" {
		t.Errorf("class doc = %q", doc.Text)
	}
	if doc.StartLine != 1 || doc.EndLine != 2 {
		t.Errorf("class doc lines = %d-%d, want 1-2", doc.StartLine, doc.EndLine)
	}
	if !doc.Hash {
		t.Error("expected hash comment block")
	}

	defs := findAll(tree, res.Root, syntax.KindDef)
	if len(defs) != 1 {
		t.Fatalf("expected 1 def, got %d", len(defs))
	}
	if d := tree.Node(defs[0]).Doc; d == nil || d.Text != "bar docs" {
		t.Errorf("def doc = %+v, want \"bar docs\"", d)
	}

	comments := findAll(tree, res.Root, syntax.KindComment)
	if len(comments) != 1 {
		t.Fatalf("expected 1 floating comment, got %d", len(comments))
	}
	if d := tree.Node(comments[0]).Doc; d == nil || d.Text != "floating" {
		t.Errorf("floating comment = %+v", d)
	}
}

func TestBlankLineDetachesComment(t *testing.T) {
	tree, res, _ := parseSource(t, "# detached\n\nclass Foo; end\n", parser.Options{})
	stmts := statements(tree, res)
	if len(stmts) != 2 {
		t.Fatalf("expected comment + class, got %s", tree.Dump(res.Root))
	}
	if tree.Kind(stmts[0]) != syntax.KindComment {
		t.Errorf("first statement = %s, want comment", tree.Kind(stmts[0]))
	}
	if tree.Node(stmts[1]).Doc != nil {
		t.Errorf("class should be undocumented, got %q", tree.Node(stmts[1]).Doc.Text)
	}
}

func TestBeginEndBlockComment(t *testing.T) {
	src := "=begin\nBlock docs\n=end\ndef foo; end\n"
	tree, res, _ := parseSource(t, src, parser.Options{})
	defs := findAll(tree, res.Root, syntax.KindDef)
	if len(defs) != 1 {
		t.Fatalf("expected 1 def, got %d", len(defs))
	}
	doc := tree.Node(defs[0]).Doc
	if doc == nil || doc.Text != "Block docs" || doc.Hash {
		t.Errorf("def doc = %+v", doc)
	}
}

func TestModifierKeepsDocOnInnerStatement(t *testing.T) {
	tree, res, _ := parseSource(t, "# the reader\nattr_reader :x if true\n", parser.Options{})
	stmts := statements(tree, res)
	if len(stmts) != 1 || tree.Kind(stmts[0]) != syntax.KindIf {
		t.Fatalf("unexpected tree: %s", tree.Dump(res.Root))
	}
	calls := findAll(tree, stmts[0], syntax.KindCall)
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	for _, id := range []syntax.NodeID{stmts[0], calls[0]} {
		if d := tree.Node(id).Doc; d == nil || d.Text != "the reader" {
			t.Errorf("%s doc = %+v", tree.Kind(id), d)
		}
	}
}

func TestRecoveryKeepsSiblings(t *testing.T) {
	src := "class Foo\n  def a; end\n  x = = 1\n  def b; end\nend\n"
	tree, res, rep := parseSource(t, src, parser.Options{})
	if res.Errors != 1 {
		t.Errorf("Errors = %d, want 1", res.Errors)
	}
	if got := rep.codes(); len(got) != 1 || got[0] != diag.SynExpectExpression {
		t.Errorf("codes = %v, want [%v]", got, diag.SynExpectExpression)
	}
	defs := findAll(tree, res.Root, syntax.KindDef)
	var names []string
	for _, d := range defs {
		names = append(names, tree.Text(d))
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("defs = %v, want [a b]", names)
	}
	if n := len(findAll(tree, res.Root, syntax.KindClass)); n != 1 {
		t.Errorf("classes = %d, want 1", n)
	}
}

func TestMissingEndReportedPerConstruct(t *testing.T) {
	src := "class Foo\n  def bar\n"
	_, res, rep := parseSource(t, src, parser.Options{})
	if res.Errors != 2 {
		t.Errorf("Errors = %d, want 2", res.Errors)
	}
	got := rep.codes()
	if len(got) != 2 || got[0] != diag.SynMissingEnd || got[1] != diag.SynMissingEnd {
		t.Fatalf("codes = %v", got)
	}
	// def closes first, then class; each reported at its opener
	if rep.diagnostics[0].Primary.Start != 12 {
		t.Errorf("def error at %d, want 12", rep.diagnostics[0].Primary.Start)
	}
	if rep.diagnostics[1].Primary.Start != 0 {
		t.Errorf("class error at %d, want 0", rep.diagnostics[1].Primary.Start)
	}
}

func TestMaxErrors(t *testing.T) {
	src := "x = = 1\ny = = 2\nz = = 3\n"
	_, res, rep := parseSource(t, src, parser.Options{MaxErrors: 2})
	want := []diag.Code{diag.SynExpectExpression, diag.SynExpectExpression, diag.SynTooManyErrors}
	got := rep.codes()
	if len(got) != len(want) {
		t.Fatalf("codes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("codes[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if res.Errors != 3 {
		t.Errorf("Errors = %d, want 3", res.Errors)
	}
}

func TestLocalVariableVersusCommandCall(t *testing.T) {
	tree, res, _ := parseSource(t, "x = 1\nx -1\nputs -1\n", parser.Options{})
	stmts := statements(tree, res)
	if len(stmts) != 3 {
		t.Fatalf("unexpected tree: %s", tree.Dump(res.Root))
	}
	if got := tree.Dump(stmts[1]); got != "(binary - (ident x) (int 1))" {
		t.Errorf("local: %s", got)
	}
	if got := tree.Dump(stmts[2]); got != "(call puts nil (args (unary - (int 1))) nil)" {
		t.Errorf("command: %s", got)
	}
}

func TestParseIsIdempotent(t *testing.T) {
	src := "module M\n  # doc\n  class C < Base\n    attr_accessor :a\n    def m(x) = x * 2\n  end\nend\n"
	tree1, res1, _ := parseSource(t, src, parser.Options{})
	tree2, res2, _ := parseSource(t, src, parser.Options{})
	if a, b := tree1.Dump(res1.Root), tree2.Dump(res2.Root); a != b {
		t.Errorf("dumps differ:\n%s\n%s", a, b)
	}
}

func lineOf(src string, off uint32) int {
	return strings.Count(src[:off], "\n") + 1
}

func defNames(tree *syntax.Tree, root syntax.NodeID) []string {
	var names []string
	for _, d := range findAll(tree, root, syntax.KindDef) {
		names = append(names, tree.Text(d))
	}
	return names
}

func TestBrokenHeaderKeepsFollowingSiblings(t *testing.T) {
	tests := []struct {
		bad  string
		code diag.Code
	}{
		{"def", diag.SynExpectMethodName},
		{"private def", diag.SynExpectMethodName},
		{"module 3", diag.SynExpectConstant},
		{"class 3", diag.SynExpectConstant},
		{"module 3\nend", diag.SynExpectConstant},
		{"foo.bar(", diag.SynUnclosedParen},
		{"x = [1,", diag.SynUnclosedBracket},
		{"opts = {a: 1,", diag.SynUnclosedBrace},
	}
	for _, tt := range tests {
		t.Run(tt.bad, func(t *testing.T) {
			src := "class Good\n  def one; end\nend\n\n" + tt.bad + "\n\nclass AlsoGood\n  def two; end\nend\n"
			tree, res, rep := parseSource(t, src, parser.Options{})
			if res.Errors != 1 || len(rep.diagnostics) != 1 {
				t.Fatalf("Errors = %d, codes = %v, want one error", res.Errors, rep.codes())
			}
			d := rep.diagnostics[0]
			if d.Code != tt.code {
				t.Errorf("code = %v, want %v", d.Code, tt.code)
			}
			if line := lineOf(src, d.Primary.Start); line != 5 {
				t.Errorf("error on line %d, want 5", line)
			}
			if got := defNames(tree, res.Root); !slices.Equal(got, []string{"one", "two"}) {
				t.Errorf("defs = %v, want [one two]", got)
			}
			if n := len(findAll(tree, res.Root, syntax.KindClass)); n != 2 {
				t.Errorf("classes = %d, want 2", n)
			}
		})
	}
}

func TestBrokenHeaderWithIndentedBody(t *testing.T) {
	src := "class Foo Bar\n  def a; end\nend\n\ndef b; end\n"
	tree, res, rep := parseSource(t, src, parser.Options{})
	if res.Errors != 1 {
		t.Fatalf("Errors = %d, codes = %v, want 1", res.Errors, rep.codes())
	}
	if got := defNames(tree, res.Root); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("defs = %v, want [a b]", got)
	}
	if got := len(statements(tree, res)); got != 2 {
		t.Errorf("statements = %d, want 2", got)
	}
}

func TestUnclosedParenReportedAtOpener(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		defs []string
	}{
		{"eof", "x = 1\nfoo(1,\n", 2, nil},
		{"dedented end", "class A\n  def m\n    foo(\n  end\n\n  def n; end\nend\n", 3, []string{"m", "n"}},
		{"next def", "def m\n  call(a,\n\ndef n; end\n", 2, []string{"m", "n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, res, rep := parseSource(t, tt.src, parser.Options{})
			if len(rep.diagnostics) == 0 {
				t.Fatalf("no diagnostics")
			}
			d := rep.diagnostics[0]
			if d.Code != diag.SynUnclosedParen {
				t.Errorf("code = %v, want %v", d.Code, diag.SynUnclosedParen)
			}
			if line := lineOf(tt.src, d.Primary.Start); line != tt.line {
				t.Errorf("error on line %d, want %d", line, tt.line)
			}
			if got := defNames(tree, res.Root); !slices.Equal(got, tt.defs) {
				t.Errorf("defs = %v, want %v", got, tt.defs)
			}
		})
	}
}
