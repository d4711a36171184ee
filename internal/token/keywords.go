package token

var keywords = map[string]Kind{
	"alias":        KwAlias,
	"and":          KwAnd,
	"begin":        KwBegin,
	"BEGIN":        KwBEGIN,
	"break":        KwBreak,
	"case":         KwCase,
	"class":        KwClass,
	"def":          KwDef,
	"defined?":     KwDefined,
	"do":           KwDo,
	"else":         KwElse,
	"elsif":        KwElsif,
	"end":          KwEnd,
	"END":          KwEND,
	"ensure":       KwEnsure,
	"false":        KwFalse,
	"for":          KwFor,
	"if":           KwIf,
	"in":           KwIn,
	"module":       KwModule,
	"next":         KwNext,
	"nil":          KwNil,
	"not":          KwNot,
	"or":           KwOr,
	"redo":         KwRedo,
	"rescue":       KwRescue,
	"retry":        KwRetry,
	"return":       KwReturn,
	"self":         KwSelf,
	"super":        KwSuper,
	"then":         KwThen,
	"true":         KwTrue,
	"undef":        KwUndef,
	"unless":       KwUnless,
	"until":        KwUntil,
	"when":         KwWhen,
	"while":        KwWhile,
	"yield":        KwYield,
	"__FILE__":     KwFile,
	"__LINE__":     KwLine,
	"__ENCODING__": KwEncoding,
}

var keywordText = func() map[Kind]string {
	m := make(map[Kind]string, len(keywords))
	for s, k := range keywords {
		m[k] = s
	}
	return m
}()

// LookupKeyword returns the keyword kind for ident. Keywords are case-sensitive.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}

// KeywordText returns the source spelling of keyword k.
func KeywordText(k Kind) string { return keywordText[k] }
