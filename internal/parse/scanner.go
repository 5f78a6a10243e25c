package parse

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dusk-indust/cppuml/internal/graph"
)

// classHeader matches `class|struct [EXPORT_MACRO] Name [final] [: bases] {`.
var classHeader = regexp.MustCompile(`\b(class|struct)\s+(?:[A-Z][A-Z0-9_]*\s+)?(\w+)\s*(?:final\s*)?(?::\s*([^{;]+))?\{`)

var (
	accessLabel  = regexp.MustCompile(`(?s)^(.*?)\b(public|protected|private)(?:\s+(?:slots|Q_SLOTS))?\s*$`)
	signalsLabel = regexp.MustCompile(`(?s)^(.*?)\b(?:signals|Q_SIGNALS)\s*$`)
)

// ScannerExtractor is a tolerant text scanner for C++ class declarations. It
// tracks brace depth instead of parsing the full grammar; every construct it
// cannot classify is skipped and reported as a diagnostic.
type ScannerExtractor struct{}

var _ Extractor = (*ScannerExtractor)(nil)

// NewScanner returns the text-scanning extractor.
func NewScanner() *ScannerExtractor { return &ScannerExtractor{} }

// Name returns BackendScanner.
func (*ScannerExtractor) Name() string { return BackendScanner }

// Extract scans u for class and struct definitions. Nested definitions are
// reported as separate entities under their own names.
func (*ScannerExtractor) Extract(ctx context.Context, u Unit) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := newScan(u)
	for _, loc := range classHeader.FindAllSubmatchIndex(s.code, -1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.class(loc)
	}
	return &Result{Entities: s.entities, Diagnostics: s.diags}, nil
}

type scan struct {
	path     string
	code     []byte
	newlines []int
	entities []graph.ClassEntity
	diags    []Diagnostic
}

func newScan(u Unit) *scan {
	s := &scan{path: u.Path, code: blankNonCode(u.Source)}
	for i, c := range s.code {
		if c == '\n' {
			s.newlines = append(s.newlines, i)
		}
	}
	return s
}

// line returns the 1-based line number of byte offset off.
func (s *scan) line(off int) int {
	return sort.SearchInts(s.newlines, off) + 1
}

func (s *scan) diag(line int, format string, args ...any) {
	s.diags = append(s.diags, Diagnostic{Path: s.path, Line: line, Message: fmt.Sprintf(format, args...)})
}

func (s *scan) class(loc []int) {
	start := loc[0]
	if precededByEnum(s.code[:start]) {
		return
	}
	name := string(s.code[loc[4]:loc[5]])
	open := loc[1] - 1
	end := matchBrace(s.code, open)
	if end < 0 {
		s.diag(s.line(start), "unterminated body of %s %s", s.code[loc[2]:loc[3]], name)
		return
	}

	e := graph.ClassEntity{
		Name: name,
		Kind: graph.EntityKindClass,
		File: s.path,
		Line: s.line(start),
	}
	if string(s.code[loc[2]:loc[3]]) == "struct" {
		e.Kind = graph.EntityKindStruct
	}
	if loc[6] >= 0 {
		e.Bases = parseBases(string(s.code[loc[6]:loc[7]]))
	}

	b := &body{scan: s, entity: &e, vis: e.Kind.DefaultVisibility()}
	b.parse(open+1, end)
	s.entities = append(s.entities, e)
}

func precededByEnum(before []byte) bool {
	t := strings.TrimRight(string(before), " \t\r\n")
	if !strings.HasSuffix(t, "enum") {
		return false
	}
	rest := t[:len(t)-len("enum")]
	return rest == "" || !isIdent(rest[len(rest)-1])
}

// matchBrace returns the offset of the '}' closing the '{' at open, or -1.
func matchBrace(code []byte, open int) int {
	depth := 0
	for i := open; i < len(code); i++ {
		switch code[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func parseBases(text string) []string {
	var out []string
	for _, part := range graph.SplitTopLevel(text, ',') {
		var kept []string
		for _, w := range strings.Fields(part) {
			switch w {
			case "public", "protected", "private", "virtual":
				continue
			}
			kept = append(kept, w)
		}
		if name := normalizeType(strings.Join(kept, " ")); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// body splits a class body into statements at depth zero. Statements end at
// ';', at an access label, or after an inline function body.
type body struct {
	scan   *scan
	entity *graph.ClassEntity
	vis    graph.Visibility
}

func (b *body) parse(start, end int) {
	code := b.scan.code
	var buf strings.Builder
	stmtStart := -1
	paren := 0

	flush := func() {
		if stmtStart >= 0 {
			b.statement(buf.String(), b.scan.line(stmtStart))
		}
		buf.Reset()
		stmtStart = -1
	}

	for i := start; i < end; i++ {
		c := code[i]
		if stmtStart < 0 && !isSpace(c) {
			stmtStart = i
		}
		switch {
		case c == '(':
			paren++
		case c == ')':
			if paren > 0 {
				paren--
			}
		case paren > 0:
		case c == ';':
			flush()
			continue
		case c == ':' && !isScopeColon(code, i):
			if b.label(buf.String(), b.scan.line(i)) {
				buf.Reset()
				stmtStart = -1
				continue
			}
		case c == '{':
			rbrace := matchBrace(code[:end], i)
			if rbrace < 0 {
				b.scan.diag(b.scan.line(i), "unbalanced braces in %s", b.entity.Name)
				return
			}
			text := buf.String()
			if opensFunctionBody(text) {
				flush()
			} else {
				buf.WriteString("{}")
			}
			i = rbrace
			continue
		}
		buf.WriteByte(c)
	}
	if strings.TrimSpace(buf.String()) != "" {
		flush()
	}
}

// label applies an access label ending text, reporting any tokens glued in
// front of it. It returns false when text does not end in a label.
func (b *body) label(text string, line int) bool {
	var residue string
	if m := accessLabel.FindStringSubmatch(text); m != nil {
		residue = m[1]
		b.vis = graph.Visibility(m[2])
	} else if m := signalsLabel.FindStringSubmatch(text); m != nil {
		residue = m[1]
		b.vis = graph.VisibilityPublic
	} else {
		return false
	}
	if r := strings.Join(strings.Fields(residue), " "); r != "" {
		b.scan.diag(line, "skipped %q before access label in %s", abbreviate(r), b.entity.Name)
	}
	return true
}

// opensFunctionBody reports whether a '{' following text starts a function
// body rather than a nested type or a brace initializer.
func opensFunctionBody(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" || startsWithTypeKey(t) {
		return false
	}
	open := strings.IndexByte(t, '(')
	if open < 0 {
		return false
	}
	if hasInitList(t, open) {
		// Inside a constructor initializer list `x{1}` initializes a member;
		// the body follows a ')' or '}'.
		last := t[len(t)-1]
		return !(isIdent(last) || last == '>')
	}
	return true
}

func hasInitList(t string, open int) bool {
	rparen := matchParen(t, open)
	if rparen < 0 {
		return false
	}
	rest := t[rparen+1:]
	for i := 0; i < len(rest); i++ {
		if rest[i] == ':' && !isScopeColon([]byte(rest), i) {
			return true
		}
	}
	return false
}

func startsWithTypeKey(t string) bool {
	switch firstWord(t) {
	case "class", "struct", "union", "enum":
		return true
	}
	return false
}

func isScopeColon(code []byte, i int) bool {
	return (i+1 < len(code) && code[i+1] == ':') || (i > 0 && code[i-1] == ':')
}

// matchParen returns the index of the ')' closing the '(' at open, or -1.
func matchParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdent(c byte) bool {
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func firstWord(s string) string {
	end := 0
	for end < len(s) && isIdent(s[end]) {
		end++
	}
	return s[:end]
}

func abbreviate(s string) string {
	const max = 60
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
