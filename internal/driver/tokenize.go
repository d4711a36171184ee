package driver

import (
	"errors"
	"fmt"
	"io/fs"

	"tome/internal/diag"
	"tome/internal/lexer"
	"tome/internal/source"
	"tome/internal/token"
)

type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Bag     *diag.Bag
}

// Tokenize lexes one file to EOF.
func Tokenize(path string, maxDiagnostics int) (*TokenizeResult, error) {
	fileSet := source.NewFileSet()
	fileID, err := fileSet.Load(path)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, &FileNotFoundError{Path: path, Err: pathErr.Err}
		}
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return tokenizeFile(fileSet, fileSet.Get(fileID), maxDiagnostics), nil
}

// TokenizeSource lexes in-memory text.
func TokenizeSource(name string, text []byte, maxDiagnostics int) *TokenizeResult {
	fileSet := source.NewFileSet()
	fileID := fileSet.AddVirtual(name, text)
	return tokenizeFile(fileSet, fileSet.Get(fileID), maxDiagnostics)
}

func tokenizeFile(fileSet *source.FileSet, file *source.File, maxDiagnostics int) *TokenizeResult {
	bag := diag.NewBag(maxDiagnostics)
	lx := lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})

	// Токенизация: собираем все токены до EOF
	var tokens []token.Token
	for {
		tok := lx.Next()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return &TokenizeResult{
		FileSet: fileSet,
		File:    file,
		Tokens:  tokens,
		Bag:     bag,
	}
}
