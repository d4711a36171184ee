package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
	// FileTranscoded marks content converted to UTF-8 from a magic-comment encoding.
	FileTranscoded
)

// File captures metadata and content for a single source file.
type File struct {
	ID       FileID
	Path     string
	Content  []byte
	LineIdx  []uint32 // offsets of every '\n'
	Hash     [32]byte // sha256 of the raw bytes on disk
	Flags    FileFlags
	Encoding string // declared encoding, "" when UTF-8 or undeclared
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}
