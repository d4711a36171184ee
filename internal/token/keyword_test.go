package token

import "testing"

func TestLookupKeyword(t *testing.T) {
	cases := map[string]Kind{
		"def":      KwDef,
		"class":    KwClass,
		"module":   KwModule,
		"end":      KwEnd,
		"defined?": KwDefined,
		"__FILE__": KwFile,
		"BEGIN":    KwBEGIN,
	}
	for lexeme, want := range cases {
		got, ok := LookupKeyword(lexeme)
		if !ok || got != want {
			t.Fatalf("LookupKeyword(%q) = %v,%v; want %v", lexeme, got, ok, want)
		}
		if KeywordText(got) != lexeme {
			t.Fatalf("KeywordText(%v) = %q", got, KeywordText(got))
		}
	}

	for _, s := range []string{"Def", "CLASS", "attr_reader", "private", "include", "puts"} {
		if _, ok := LookupKeyword(s); ok {
			t.Fatalf("LookupKeyword(%q) returned ok=true, want false", s)
		}
	}
}

func TestKindClasses(t *testing.T) {
	if !KwDef.IsKeyword() || Ident.IsKeyword() {
		t.Fatal("IsKeyword misclassifies")
	}
	if !StringLit.IsLiteral() || !SymbolLit.IsLiteral() || Const.IsLiteral() {
		t.Fatal("IsLiteral misclassifies")
	}
	if !ColonColon.IsOperator() || KwEnd.IsOperator() {
		t.Fatal("IsOperator misclassifies")
	}
	if KwDef.String() != "Kw(def)" || ColonColon.String() != "::" {
		t.Fatalf("String() = %q / %q", KwDef.String(), ColonColon.String())
	}
}

func TestIsValueEnd(t *testing.T) {
	for _, k := range []Kind{Ident, Const, RParen, IntLit, StringLit, KwEnd} {
		if !(Token{Kind: k}).IsValueEnd() {
			t.Errorf("%v should end a value", k)
		}
	}
	for _, k := range []Kind{Plus, LParen, Comma, KwIf, Newline} {
		if (Token{Kind: k}).IsValueEnd() {
			t.Errorf("%v must not end a value", k)
		}
	}
}
