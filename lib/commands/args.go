package commands

import "strings"

// Tokenize splits a raw argument string on whitespace.
func Tokenize(raw string) []string {
	return strings.Fields(raw)
}

// ParseArgs checks raw against the minimum arity. Extra arguments are kept
// and ignored by handlers; values are never trimmed or type checked.
func ParseArgs(raw []string, minArity int) ([]string, error) {
	if len(raw) < minArity {
		return nil, &ArityError{Want: minArity, Got: len(raw)}
	}
	return raw, nil
}

// SplitCommandText parses "/name@bot arg1 arg2" into name and arguments. ok
// is false when text is not a command.
func SplitCommandText(text string) (name string, args []string, ok bool) {
	fields := Tokenize(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil, false
	}
	name = strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	if name == "" {
		return "", nil, false
	}
	return name, fields[1:], true
}
