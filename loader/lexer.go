package loader

import (
	"regexp"
	"strings"
)

// envVarPattern matches a bare ${NAME} reference, spec §4.F rule 1.
var envVarPattern = regexp.MustCompile(`\$\{[ \t\f]*(\w+)[ \t\f]*\}`)

// strStartPattern matches an optional string-literal prefix immediately
// followed by a quote opener. Alternatives are tried in the order written,
// so a triple-quote is preferred over a single quote at the same position,
// and a two-letter prefix is preferred over treating its first letter as
// code — mirroring Python's re.search leftmost-first semantics, which
// Go's regexp package (in non-POSIX mode) also implements.
var strStartPattern = regexp.MustCompile(`(?i)(b|r|u|f|br|fr|rb|rf)?('''|"""|'|")`)

// fstrVarPattern matches an interpolation slot of the shape
// { $({+) NAME (}+) }, with optional surrounding whitespace inside the
// braces. Validity (equal, odd brace counts) is checked by the caller.
var fstrVarPattern = regexp.MustCompile(`\{[ \t\f]*\$(\{+)[ \t\f]*(\w+)[ \t\f]*(\}+)[ \t\f]*\}`)

// replaceEnvVar rewrites every bare ${NAME} in code to environ['NAME'].
func replaceEnvVar(code string) string {
	return envVarPattern.ReplaceAllStringFunc(code, func(m string) string {
		sub := envVarPattern.FindStringSubmatch(m)
		return "environ['" + sub[1] + "']"
	})
}

// Lexer is a line-oriented state machine that rewrites the ${NAME} /
// {${NAME}} sugar described in spec §4.F, maintaining state across lines
// for strings that span more than one line.
type Lexer struct {
	inConstString bool
	inFString     bool
	terminator    string
}

// NewLexer returns a Lexer starting in the Code state.
func NewLexer() *Lexer {
	return &Lexer{}
}

// ProcessLine rewrites one line (terminator included, if any) and updates
// the lexer's cross-line state.
func (l *Lexer) ProcessLine(line string) string {
	var out strings.Builder
	pos := 0
	max := len(line)

	for pos < max {
		rest := line[pos:]

		if l.inConstString || l.inFString {
			endIdx := -1
			if l.terminator != "" {
				if i := strings.Index(rest, l.terminator); i >= 0 {
					endIdx = i
				}
			}

			if l.inConstString {
				if endIdx >= 0 {
					end := endIdx + len(l.terminator)
					out.WriteString(rest[:end])
					pos += end
					l.inConstString = false
					continue
				}
				out.WriteString(rest)
				break
			}

			// in_fstring
			loc := fstrVarPattern.FindStringSubmatchIndex(rest)
			valid := false
			if loc != nil {
				openLen := loc[3] - loc[2]
				closeLen := loc[7] - loc[6]
				if openLen == closeLen && openLen%2 == 1 {
					if endIdx < 0 || loc[0] < endIdx {
						valid = true
					}
				}
			}

			switch {
			case !valid && endIdx < 0:
				out.WriteString(rest)
				return out.String()
			case !valid:
				end := endIdx + len(l.terminator)
				out.WriteString(rest[:end])
				pos += end
				l.inFString = false
				continue
			default:
				out.WriteString(rest[:loc[0]])
				out.WriteString(replaceEnvVar(rest[loc[0]:loc[1]]))
				pos += loc[1]
				continue
			}
		}

		loc := strStartPattern.FindStringSubmatchIndex(rest)
		if loc == nil {
			out.WriteString(replaceEnvVar(rest))
			break
		}

		before := rest[:loc[1]]
		out.WriteString(replaceEnvVar(before))
		pos += loc[1]

		prefix := ""
		if loc[2] >= 0 {
			prefix = rest[loc[2]:loc[3]]
		}
		quote := rest[loc[4]:loc[5]]

		if strings.ContainsAny(prefix, "fF") {
			l.inFString = true
			l.inConstString = false
		} else {
			l.inFString = false
			l.inConstString = true
		}
		l.terminator = quote
	}

	return out.String()
}

// Lex rewrites an entire source string in one pass. Lines are split
// keeping their terminators so cross-line strings reproduce byte-for-byte
// when no rewrite applies — testable property §8.6 (round-trip on source
// with no ${}/{$...} patterns).
func Lex(src string) string {
	l := NewLexer()
	lines := splitKeepEnds(src)
	var out strings.Builder
	for _, line := range lines {
		out.WriteString(l.ProcessLine(line))
	}
	return out.String()
}

func splitKeepEnds(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
