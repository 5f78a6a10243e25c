package graph

import (
	"strings"
)

// typeQualifiers are dropped before a type is matched against entity names.
var typeQualifiers = map[string]bool{
	"const":    true,
	"volatile": true,
	"mutable":  true,
	"static":   true,
	"inline":   true,
	"typename": true,
	"struct":   true,
	"class":    true,
	"enum":     true,
	"union":    true,
}

// TypeRef is the result of reducing a type spelling to the entity it names.
type TypeRef struct {
	Name     string   // referenced type name, namespace and wrappers removed
	Handle   bool     // a pointer or reference marker appears anywhere
	Wrappers []string // template wrappers peeled off, outermost first
}

// ParseTypeRef reduces a C++ type spelling such as
// "const std::vector<Animal*>&" to {Name: "Animal", Handle: true,
// Wrappers: ["vector"]}. Multi-argument templates resolve to their last
// type argument (the mapped type of a map).
func ParseTypeRef(typeText string) TypeRef {
	var ref TypeRef
	t := strings.TrimSpace(typeText)
	if strings.ContainsAny(t, "*&") {
		ref.Handle = true
	}

	for depth := 0; depth < 16; depth++ {
		t = stripQualifiers(t)
		t = strings.TrimRight(t, "*& ")
		t = stripArray(t)

		open := strings.IndexByte(t, '<')
		if open < 0 {
			break
		}
		end := matchingAngle(t, open)
		if end < 0 {
			t = t[:open]
			break
		}
		ref.Wrappers = append(ref.Wrappers, unqualified(strings.TrimSpace(t[:open])))
		args := SplitTopLevel(t[open+1:end], ',')
		if len(args) == 0 {
			t = t[:open]
			break
		}
		t = typeArgument(args)
	}

	ref.Name = unqualified(strings.TrimSpace(t))
	return ref
}

// typeArgument picks the template argument naming the held type: the last
// one that is not a numeric constant, so std::array<Cell, 9> yields Cell.
func typeArgument(args []string) string {
	for i := len(args) - 1; i >= 0; i-- {
		if c := args[i][0]; c < '0' || c > '9' {
			return args[i]
		}
	}
	return args[len(args)-1]
}

// BaseTypeName returns only the referenced type name of typeText.
func BaseTypeName(typeText string) string {
	return ParseTypeRef(typeText).Name
}

// BaseClassName normalizes a base-specifier: namespace qualifiers and
// template arguments are dropped ("ns::Base<T>" becomes "Base").
func BaseClassName(base string) string {
	b := stripQualifiers(strings.TrimSpace(base))
	if i := strings.IndexByte(b, '<'); i >= 0 {
		b = b[:i]
	}
	return unqualified(strings.TrimSpace(b))
}

func stripQualifiers(t string) string {
	fields := strings.Fields(t)
	kept := fields[:0]
	for _, f := range fields {
		if typeQualifiers[f] {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

func stripArray(t string) string {
	if i := strings.IndexByte(t, '['); i >= 0 && !strings.Contains(t[:i], "<") {
		return strings.TrimSpace(t[:i])
	}
	return t
}

// unqualified drops a leading namespace path: "std::string" -> "string".
func unqualified(t string) string {
	if i := strings.LastIndex(t, "::"); i >= 0 {
		return t[i+2:]
	}
	return t
}

// matchingAngle returns the index of the '>' closing the '<' at open, or -1.
func matchingAngle(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// SplitTopLevel splits s on sep, ignoring separators nested inside <>, ()
// or {}.
func SplitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '{', '[':
			depth++
		case '>', ')', '}', ']':
			depth--
		case sep:
			if depth == 0 {
				if p := strings.TrimSpace(s[start:i]); p != "" {
					parts = append(parts, p)
				}
				start = i + 1
			}
		}
	}
	if p := strings.TrimSpace(s[start:]); p != "" {
		parts = append(parts, p)
	}
	return parts
}
