package syntax

// Kind is the syntactic category of a node. Child slot layout per kind is
// listed next to each constant; NoNodeID marks an absent optional slot.
type Kind uint8

const (
	KindError Kind = iota // skipped tokens after a syntax error

	KindFile // [0]=Body
	KindBody // statements

	KindModule // [0]=name, [1]=Body
	KindClass  // [0]=name, [1]=superclass?, [2]=Body
	KindSClass // `class << expr`: [0]=expr, [1]=Body
	KindDef    // Text=name; [0]=receiver?, [1]=Params?, [2]=Body
	KindAlias  // [0]=new name, [1]=old name
	KindUndef  // names

	KindParams       // Param*
	KindParamReq     // Text=name (or destructuring Params in [0])
	KindParamOpt     // Text=name; [0]=default
	KindParamRest    // Text=name (may be empty)
	KindParamKey     // Text=name; [0]=default?
	KindParamKeyRest // Text=name (may be empty); `**nil` has Text "nil"
	KindParamBlock   // Text=name (may be empty)
	KindParamFwd     // `...`

	KindBegin  // [0]=Body, then Rescue*, [n]=Else?, Ensure?
	KindRescue // [0]=exception list (Args)?, [1]=var?, [2]=Body
	KindEnsure // [0]=Body
	KindElse   // [0]=Body

	KindIf     // [0]=cond, [1]=then Body, [2]=else (Body or If)?
	KindUnless // [0]=cond, [1]=then Body, [2]=else Body?
	KindWhile  // [0]=cond, [1]=Body
	KindUntil  // [0]=cond, [1]=Body
	KindFor    // [0]=var, [1]=iter, [2]=Body
	KindCase   // [0]=subject?, When*/In*, Else?
	KindWhen   // [0]=Args, [1]=Body
	KindIn     // [0]=pattern, [1]=Body

	KindReturn // [0]=value?
	KindBreak  // [0]=value?
	KindNext   // [0]=value?
	KindRedo
	KindRetry
	KindYield // [0]=Args?
	KindSuper // [0]=Args? (nil slot = zsuper), [1]=Block?

	KindAssign      // [0]=target, [1]=value
	KindOpAssign    // Text=operator; [0]=target, [1]=value
	KindMultiAssign // [0]=targets (Mlhs), [1]=value
	KindMlhs        // targets

	KindCall      // Text=method; [0]=receiver?, [1]=Args?, [2]=Block?
	KindArgs      // arguments
	KindBlock     // [0]=Params?, [1]=Body
	KindSplat     // [0]=value
	KindDSplat    // [0]=value
	KindBlockPass // [0]=value?
	KindLambda    // [0]=Params?, [1]=Body

	KindIdent     // Text=name
	KindConst     // Text=name
	KindConstPath // Text=name; [0]=scope? (absent for ::Top)
	KindIVar      // Text=name
	KindCVar      // Text=name
	KindGVar      // Text=name

	KindInt     // Text=literal
	KindFloat   // Text=literal
	KindString  // Text=literal
	KindXString // Text=literal
	KindSymbol  // Text=literal
	KindRegexp  // Text=literal
	KindHeredoc // Text=opener
	KindWords   // Text=literal
	KindChar    // Text=literal

	KindArray   // elements
	KindHash    // Pair*
	KindPair    // [0]=key, [1]=value
	KindLabel   // Text=label without ':'
	KindRange   // Text=operator; [0]=lo?, [1]=hi?
	KindTernary // [0]=cond, [1]=then, [2]=else
	KindBinary  // Text=operator; [0]=lhs, [1]=rhs
	KindUnary   // Text=operator; [0]=operand
	KindNot     // [0]=operand
	KindAnd     // [0]=lhs, [1]=rhs
	KindOr      // [0]=lhs, [1]=rhs
	KindDefined // [0]=expr
	KindIndex   // [0]=receiver, [1]=Args
	KindParen   // [0]=Body

	KindSelf
	KindNil
	KindTrue
	KindFalse

	KindComment // floating comment block: Doc only
)

var kindNames = [...]string{
	KindError: "error", KindFile: "file", KindBody: "body",
	KindModule: "module", KindClass: "class", KindSClass: "sclass", KindDef: "def",
	KindAlias: "alias", KindUndef: "undef",
	KindParams: "params", KindParamReq: "req", KindParamOpt: "opt", KindParamRest: "rest",
	KindParamKey: "key", KindParamKeyRest: "keyrest", KindParamBlock: "blockarg", KindParamFwd: "fwd",
	KindBegin: "begin", KindRescue: "rescue", KindEnsure: "ensure", KindElse: "else",
	KindIf: "if", KindUnless: "unless", KindWhile: "while", KindUntil: "until", KindFor: "for",
	KindCase: "case", KindWhen: "when", KindIn: "in",
	KindReturn: "return", KindBreak: "break", KindNext: "next", KindRedo: "redo", KindRetry: "retry",
	KindYield: "yield", KindSuper: "super",
	KindAssign: "assign", KindOpAssign: "opassign", KindMultiAssign: "masgn", KindMlhs: "mlhs",
	KindCall: "call", KindArgs: "args", KindBlock: "block", KindSplat: "splat", KindDSplat: "dsplat",
	KindBlockPass: "blockpass", KindLambda: "lambda",
	KindIdent: "ident", KindConst: "const", KindConstPath: "colon2", KindIVar: "ivar",
	KindCVar: "cvar", KindGVar: "gvar",
	KindInt: "int", KindFloat: "float", KindString: "str", KindXString: "xstr", KindSymbol: "sym",
	KindRegexp: "regexp", KindHeredoc: "heredoc", KindWords: "words", KindChar: "char",
	KindArray: "array", KindHash: "hash", KindPair: "pair", KindLabel: "label", KindRange: "range",
	KindTernary: "ternary", KindBinary: "binary", KindUnary: "unary", KindNot: "not",
	KindAnd: "and", KindOr: "or", KindDefined: "defined", KindIndex: "index", KindParen: "paren",
	KindSelf: "self", KindNil: "nil", KindTrue: "true", KindFalse: "false",
	KindComment: "comment",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "kind?"
}

// IsLiteral reports whether k is a literal leaf.
func (k Kind) IsLiteral() bool {
	return k >= KindInt && k <= KindChar
}
