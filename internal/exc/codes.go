package exc

import "strings"

const (
	CodeUnknownFatal                  = "W0000"
	CodeFileNotFound                  = "W0001"
	CodeUnsuportedFileSystemOperation = "W0002"
	CodePermissionDenied              = "W0003"
	CodeUnsupportedFileFormat         = "W0004"
	CodeInvalidGrammar                = "W0005"
	CodeInvalidConfig                 = "W0006"
)

// Syntax diagnostics, raised by the lexer, the layout preprocessor, and the
// grammar matcher.
const (
	CodeUnexpectedToken     = "W0100"
	CodeUnexpectedEOF       = "W0101"
	CodeInconsistentIndent  = "W0102"
	CodeUnterminatedText    = "W0103"
	CodeUnexpectedCharacter = "W0104"
	CodeInvalidNumber       = "W0105"
	CodeUnbalancedBracket   = "W0106"
)

// Semantic diagnostics, raised by the analyzer.
const (
	CodeUndeclaredIdentifier          = "W0200"
	CodeRedeclaration                 = "W0201"
	CodeBreakOutsideLoop              = "W0202"
	CodeReturnOutsideFunction         = "W0203"
	CodeTypeMismatch                  = "W0204"
	CodeArityMismatch                 = "W0205"
	CodeNotCallable                   = "W0206"
	CodeContinueOutsideLoop           = "W0207"
	CodeReturnTypeMismatch            = "W0208"
	CodeRequiredParameterAfterDefault = "W0209"
)

const (
	CodeEOF = "_EOF_"
)

var (
	defaultNonFatal = map[string]bool{}
)

type Kind uint8

const (
	KindNone Kind = iota
	KindInternal
	KindSyntax
	KindSemantic
)

func (k Kind) String() string {
	switch k {
	case KindInternal:
		return "Error"
	case KindSyntax:
		return "SyntaxError"
	case KindSemantic:
		return "SemanticError"
	default:
		return "None"
	}
}

// KindOf classifies a diagnostic code by its range.
func KindOf(code string) Kind {
	switch {
	case strings.HasPrefix(code, "W01"):
		return KindSyntax
	case strings.HasPrefix(code, "W02"):
		return KindSemantic
	case strings.HasPrefix(code, "W00"), code == CodeEOF:
		return KindInternal
	default:
		return KindNone
	}
}
