package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexUnterminatedHeredoc      Code = 1005
	LexUnterminatedPercent      Code = 1006
	LexUnterminatedRegexp       Code = 1007
	LexBadSymbol                Code = 1008

	// Синтаксические
	SynInfo               Code = 2000
	SynUnexpectedToken    Code = 2001
	SynUnclosedParen      Code = 2002
	SynUnclosedBracket    Code = 2003
	SynUnclosedBrace      Code = 2004
	SynMissingEnd         Code = 2005
	SynExpectIdentifier   Code = 2006
	SynExpectExpression   Code = 2007
	SynExpectConstant     Code = 2008
	SynExpectMethodName   Code = 2009
	SynBadParameter       Code = 2010
	SynUnexpectedEnd      Code = 2011
	SynUnexpectedTopLevel Code = 2012
	SynTooManyErrors      Code = 2013

	// Документация и декларации
	SemaInfo               Code = 3000
	SemaUnknownTag         Code = 3001
	SemaMalformedTag       Code = 3002
	SemaUnknownDirective   Code = 3003
	SemaDynamicNamespace   Code = 3004
	SemaUnresolvedMixin    Code = 3005
	SemaUnknownVisibility  Code = 3006
	SemaParamMismatch      Code = 3007
	SemaSuperclassMismatch Code = 3008

	// IO
	IOLoadFileError Code = 4001
	IOEncodingError Code = 4002
)

var codeDescription = map[Code]string{
	UnknownCode:                 "Unknown error",
	LexInfo:                     "Lexical information",
	LexUnknownChar:              "Unknown character",
	LexUnterminatedString:       "Unterminated string literal",
	LexUnterminatedBlockComment: "Unterminated =begin block comment",
	LexBadNumber:                "Malformed number literal",
	LexUnterminatedHeredoc:      "Unterminated heredoc",
	LexUnterminatedPercent:      "Unterminated percent literal",
	LexUnterminatedRegexp:       "Unterminated regexp literal",
	LexBadSymbol:                "Malformed symbol literal",
	SynInfo:                     "Syntax information",
	SynUnexpectedToken:          "Unexpected token",
	SynUnclosedParen:            "Unclosed parenthesis",
	SynUnclosedBracket:          "Unclosed bracket",
	SynUnclosedBrace:            "Unclosed brace",
	SynMissingEnd:               "Missing 'end'",
	SynExpectIdentifier:         "Expected identifier",
	SynExpectExpression:         "Expected expression",
	SynExpectConstant:           "Expected constant name",
	SynExpectMethodName:         "Expected method name",
	SynBadParameter:             "Malformed parameter",
	SynUnexpectedEnd:            "Unexpected 'end'",
	SynUnexpectedTopLevel:       "Unexpected top-level construct",
	SynTooManyErrors:            "Too many syntax errors",
	SemaInfo:                    "Documentation information",
	SemaUnknownTag:              "Unknown tag",
	SemaMalformedTag:            "Malformed tag",
	SemaUnknownDirective:        "Unknown directive",
	SemaDynamicNamespace:        "Namespace cannot be resolved statically",
	SemaUnresolvedMixin:         "Mixin cannot be resolved",
	SemaUnknownVisibility:       "Unknown visibility",
	SemaParamMismatch:           "@param names an unknown parameter",
	SemaSuperclassMismatch:      "Class reopened with a different superclass",
	IOLoadFileError:             "I/O load file error",
	IOEncodingError:             "Source encoding error",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
