package parse

// blankNonCode returns a copy of src in which comments, preprocessor lines
// and the contents of string and character literals are replaced by spaces.
// Newlines are preserved, so byte offsets and line numbers stay valid.
func blankNonCode(src []byte) []byte {
	out := make([]byte, len(src))
	copy(out, src)

	lineStart := true
	for i := 0; i < len(out); {
		c := out[i]
		switch {
		case c == '\n':
			lineStart = true
			i++
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case lineStart && c == '#':
			i = blankDirective(out, i)
		case c == '/' && i+1 < len(out) && out[i+1] == '/':
			for i < len(out) && out[i] != '\n' {
				out[i] = ' '
				i++
			}
		case c == '/' && i+1 < len(out) && out[i+1] == '*':
			i = blankBlockComment(out, i)
			lineStart = false
		case c == '\'' && i > 0 && isDigit(out[i-1]):
			// digit separator, as in 1'000'000
			i++
		case c == '"' || c == '\'':
			i = blankLiteral(out, i)
			lineStart = false
		default:
			lineStart = false
			i++
		}
	}
	return out
}

// blankDirective blanks a preprocessor directive starting at i, following
// backslash continuations, and returns the offset of the terminating newline.
func blankDirective(b []byte, i int) int {
	for i < len(b) {
		end := i
		for end < len(b) && b[end] != '\n' {
			end++
		}
		cont := continued(b[i:end])
		for j := i; j < end; j++ {
			b[j] = ' '
		}
		if !cont || end == len(b) {
			return end
		}
		i = end + 1
	}
	return i
}

func continued(line []byte) bool {
	for j := len(line) - 1; j >= 0; j-- {
		switch line[j] {
		case ' ', '\t', '\r':
			continue
		case '\\':
			return true
		default:
			return false
		}
	}
	return false
}

func blankBlockComment(b []byte, i int) int {
	b[i], b[i+1] = ' ', ' '
	i += 2
	for i < len(b) {
		if b[i] == '*' && i+1 < len(b) && b[i+1] == '/' {
			b[i], b[i+1] = ' ', ' '
			return i + 2
		}
		if b[i] != '\n' {
			b[i] = ' '
		}
		i++
	}
	return i
}

// blankLiteral keeps the quotes of the literal opening at i and blanks its
// contents. An unterminated literal ends at the newline.
func blankLiteral(b []byte, i int) int {
	quote := b[i]
	i++
	for i < len(b) && b[i] != '\n' {
		switch b[i] {
		case '\\':
			b[i] = ' '
			if i+1 < len(b) && b[i+1] != '\n' {
				b[i+1] = ' '
				i++
			}
		case quote:
			return i + 1
		default:
			b[i] = ' '
		}
		i++
	}
	return i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
