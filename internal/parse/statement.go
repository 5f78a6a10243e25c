package parse

import (
	"regexp"
	"strings"

	"github.com/dusk-indust/cppuml/internal/graph"
)

var (
	// macroLine is an unterminated macro invocation such as Q_OBJECT or
	// Q_DISABLE_COPY(Foo) standing on its own line.
	macroLine  = regexp.MustCompile(`^[A-Z][A-Z0-9]*_[A-Z0-9_]*\s*(\([^()]*\))?\s*$`)
	attribute  = regexp.MustCompile(`\[\[[^\]]*\]\]`)
	declarator = regexp.MustCompile(`^(.*[\s*&>])(\w+)$`)
	funcName   = regexp.MustCompile(`(~\s*\w+|\w+)$`)
	operatorKw = regexp.MustCompile(`\boperator\b`)
	constKw    = regexp.MustCompile(`\bconst\b`)
	pureSuffix = regexp.MustCompile(`=\s*0\s*$`)
)

// notNames are words that end a type spelling but never name a parameter.
var notNames = map[string]bool{
	"int": true, "char": true, "bool": true, "float": true, "double": true,
	"long": true, "short": true, "unsigned": true, "signed": true, "void": true,
	"auto": true, "wchar_t": true, "char8_t": true, "char16_t": true, "char32_t": true,
	"size_t": true, "const": true, "volatile": true,
}

var onlyQualifiers = map[string]bool{
	"const": true, "volatile": true, "struct": true, "class": true,
	"enum": true, "union": true, "typename": true,
}

var memberSpecifiers = map[string]bool{
	"static": true, "mutable": true, "inline": true, "constexpr": true,
	"constinit": true, "thread_local": true, "extern": true,
}

var qtMethodMacros = map[string]bool{
	"Q_INVOKABLE": true, "Q_SLOT": true, "Q_SIGNAL": true, "Q_SCRIPTABLE": true,
}

// statement classifies one body statement as a method, a member or
// something to skip.
func (b *body) statement(raw string, line int) {
	raw = strings.TrimSpace(raw)
	for raw != "" {
		first, rest, more := strings.Cut(raw, "\n")
		first = strings.TrimSpace(first)
		if !macroLine.MatchString(first) {
			break
		}
		b.scan.diag(line, "skipped macro %s in %s", first, b.entity.Name)
		if !more {
			return
		}
		trimmed := strings.TrimLeft(rest, " \t\r\n")
		line += 1 + strings.Count(rest[:len(rest)-len(trimmed)], "\n")
		raw = strings.TrimSpace(trimmed)
	}

	s := strings.Join(strings.Fields(attribute.ReplaceAllString(raw, " ")), " ")
	if s == "" {
		return
	}

	switch firstWord(s) {
	case "friend", "using", "typedef", "static_assert", "namespace":
		return
	case "template":
		b.scan.diag(line, "skipped member template in %s: %s", b.entity.Name, abbreviate(s))
		return
	case "class", "struct", "union", "enum":
		b.nested(s, line)
		return
	}

	if b.method(s, line) {
		return
	}
	b.member(s, line)
}

// nested handles a statement introduced by a type keyword: a nested type
// definition (whose declarators become members), an elaborated member type
// such as `struct Node* head`, or a forward declaration.
func (b *body) nested(s string, line int) {
	keyword := firstWord(s)
	header, decls, defined := strings.Cut(s, "{}")
	if !defined {
		if keyword == "enum" || len(strings.Fields(s)) <= 2 {
			return
		}
		b.member(strings.TrimSpace(s[len(keyword):]), line)
		return
	}

	fields := strings.Fields(header)[1:]
	if keyword == "enum" && len(fields) > 0 && (fields[0] == "class" || fields[0] == "struct") {
		fields = fields[1:]
	}
	decls = strings.TrimSpace(decls)
	var typeName string
	if len(fields) > 0 {
		typeName = strings.TrimSuffix(fields[0], ":")
	}
	if typeName == "" || !isIdent(typeName[0]) {
		if decls != "" {
			b.scan.diag(line, "skipped anonymous %s member %s in %s", keyword, abbreviate(decls), b.entity.Name)
		}
		return
	}
	if decls == "" {
		return
	}
	for _, part := range graph.SplitTopLevel(decls, ',') {
		b.addDeclarator(typeName, part, line)
	}
}

// method records s as a method when it has a parameter list. It returns
// false when s is not function-shaped.
func (b *body) method(s string, line int) bool {
	open, name, prefix := splitFunction(s)
	if open < 0 || hasTopLevelAssign(prefix) {
		return false
	}
	rparen := matchParen(s, open)
	if rparen < 0 {
		b.scan.diag(line, "unbalanced parentheses in %s: %s", b.entity.Name, abbreviate(s))
		return true
	}

	m := graph.Method{Name: name, Visibility: b.vis}
	var ret []string
	for _, w := range strings.Fields(prefix) {
		switch w {
		case "virtual":
			m.IsVirtual = true
		case "static":
			m.IsStatic = true
		case "inline", "explicit", "constexpr", "consteval":
		default:
			if !qtMethodMacros[w] {
				ret = append(ret, w)
			}
		}
	}
	m.ReturnType = normalizeType(strings.Join(ret, " "))

	suffix := s[rparen+1:]
	if i := strings.Index(suffix, "->"); i >= 0 {
		trailing := cutTrailingSpecifiers(suffix[i+2:])
		if m.ReturnType == "auto" && trailing != "" {
			m.ReturnType = normalizeType(trailing)
		}
		suffix = suffix[:i]
	}
	if i := topLevelColon(suffix); i >= 0 {
		suffix = suffix[:i]
	}
	m.IsConst = constKw.MatchString(strings.SplitN(suffix, "=", 2)[0])
	m.IsPureVirtual = pureSuffix.MatchString(suffix)

	switch {
	case m.ReturnType == "" && name == b.entity.Name:
		m.IsConstructor = true
	case name == "~"+b.entity.Name:
		m.IsDestructor = true
		m.ReturnType = ""
	case strings.HasPrefix(name, "operator"):
	case m.ReturnType == "":
		b.scan.diag(line, "skipped unrecognized declaration in %s: %s", b.entity.Name, abbreviate(s))
		return true
	}

	m.Params = parseParams(s[open+1 : rparen])
	b.entity.Methods = append(b.entity.Methods, m)
	return true
}

// splitFunction locates the parameter list of a function-shaped statement.
// It returns the offset of its '(', the function name and the text before
// the name, or -1 when s has no parameter list.
func splitFunction(s string) (open int, name, prefix string) {
	if loc := operatorKw.FindStringIndex(s); loc != nil {
		from := loc[1]
		rest := strings.TrimLeft(s[from:], " ")
		from += len(s[from:]) - len(rest)
		if strings.HasPrefix(rest, "()") {
			from += 2
		}
		i := strings.IndexByte(s[from:], '(')
		if i < 0 {
			return -1, "", ""
		}
		open = from + i
		sym := strings.TrimSpace(s[loc[1]:open])
		name = "operator" + sym
		if sym != "" && isIdent(sym[0]) {
			name = "operator " + sym
		}
		return open, name, strings.TrimSpace(s[:loc[0]])
	}

	depth := 0
	open = -1
	for i := 0; i < len(s) && open < 0; i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case '(':
			if depth == 0 {
				open = i
			}
		}
	}
	if open < 0 {
		return -1, "", ""
	}
	head := strings.TrimSpace(s[:open])
	loc := funcName.FindStringIndex(head)
	if loc == nil {
		return -1, "", ""
	}
	name = strings.ReplaceAll(head[loc[0]:], " ", "")
	return open, name, strings.TrimSpace(head[:loc[0]])
}

// member records the declarators of a data member statement.
func (b *body) member(s string, line int) {
	words := strings.Fields(s)
	for len(words) > 0 && memberSpecifiers[words[0]] {
		words = words[1:]
	}
	parts := graph.SplitTopLevel(strings.Join(words, " "), ',')
	if len(parts) == 0 {
		return
	}

	first := splitDeclarator(cutInitializer(parts[0]))
	if first.Name == "" {
		b.scan.diag(line, "skipped unrecognized statement in %s: %s", b.entity.Name, abbreviate(s))
		return
	}
	b.entity.Fields = append(b.entity.Fields, graph.Member{Name: first.Name, Type: first.Type, Visibility: b.vis})

	base := first.Type
	if i := strings.IndexByte(base, '['); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimRight(base, "*&")
	for _, part := range parts[1:] {
		b.addDeclarator(base, part, line)
	}
}

// addDeclarator records one declarator such as `*next` or `cells[4]` of a
// member whose base type is already known.
func (b *body) addDeclarator(base, decl string, line int) {
	d := strings.TrimSpace(cutInitializer(decl))
	marks := ""
	for d != "" && (d[0] == '*' || d[0] == '&') {
		marks += d[:1]
		d = strings.TrimSpace(d[1:])
	}
	arr := ""
	if i := strings.IndexByte(d, '['); i >= 0 {
		d, arr = strings.TrimSpace(d[:i]), d[i:]
	}
	if d == "" || firstWord(d) != d {
		b.scan.diag(line, "skipped unrecognized declarator in %s: %s", b.entity.Name, abbreviate(decl))
		return
	}
	b.entity.Fields = append(b.entity.Fields, graph.Member{
		Name:       d,
		Type:       normalizeType(base + marks + arr),
		Visibility: b.vis,
	})
}

func parseParams(text string) []graph.Param {
	t := strings.TrimSpace(text)
	if t == "" || t == "void" {
		return nil
	}
	var out []graph.Param
	for _, part := range graph.SplitTopLevel(t, ',') {
		out = append(out, splitDeclarator(cutInitializer(part)))
	}
	return out
}

// splitDeclarator separates `const Foo& name[2]` into its type and name.
// Declarations without a usable name come back with an empty Name and the
// whole text as Type.
func splitDeclarator(decl string) graph.Param {
	d := normalizeType(decl)
	arr := ""
	if i := strings.IndexByte(d, '['); i >= 0 && !strings.Contains(d[:i], "<") {
		d, arr = strings.TrimSpace(d[:i]), d[i:]
	}
	if m := declarator.FindStringSubmatch(d); m != nil {
		typ := strings.TrimSpace(m[1])
		if !notNames[m[2]] && !qualifiersOnly(typ) {
			return graph.Param{Type: normalizeType(typ + arr), Name: m[2]}
		}
	}
	return graph.Param{Type: normalizeType(d + arr)}
}

func qualifiersOnly(typ string) bool {
	for _, w := range strings.Fields(typ) {
		if !onlyQualifiers[w] {
			return false
		}
	}
	return true
}

// cutInitializer drops a default value, brace initializer or bit-field width.
func cutInitializer(decl string) string {
	depth := 0
	for i := 0; i < len(decl); i++ {
		switch c := decl[i]; c {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			if depth > 0 {
				depth--
			}
		case '=', '{':
			if depth == 0 {
				return strings.TrimSpace(decl[:i])
			}
		case ':':
			if depth == 0 && !isScopeColon([]byte(decl), i) {
				return strings.TrimSpace(decl[:i])
			}
		}
	}
	return strings.TrimSpace(decl)
}

func hasTopLevelAssign(prefix string) bool {
	depth := 0
	for i := 0; i < len(prefix); i++ {
		switch prefix[i] {
		case '<', '(':
			depth++
		case '>', ')':
			if depth > 0 {
				depth--
			}
		case '=':
			if depth == 0 {
				return true
			}
		}
	}
	return false
}

func topLevelColon(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ':':
			if depth == 0 && !isScopeColon([]byte(s), i) {
				return i
			}
		}
	}
	return -1
}

// cutTrailingSpecifiers trims `override`, `final`, `= 0` and the like from a
// trailing return type.
func cutTrailingSpecifiers(t string) string {
	t = strings.SplitN(t, "=", 2)[0]
	var kept []string
	for _, w := range strings.Fields(t) {
		switch w {
		case "override", "final", "noexcept":
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// normalizeType collapses whitespace and glues pointer, reference and
// template punctuation: "std::vector< Foo * > &" becomes "std::vector<Foo*>&".
func normalizeType(t string) string {
	t = strings.Join(strings.Fields(t), " ")
	for _, r := range []struct{ from, to string }{
		{" *", "*"}, {" &", "&"}, {"< ", "<"}, {" >", ">"}, {" ,", ","}, {" [", "["},
	} {
		for strings.Contains(t, r.from) {
			t = strings.ReplaceAll(t, r.from, r.to)
		}
	}
	return t
}
