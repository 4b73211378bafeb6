package console

import (
	"fmt"
	"regexp"
	"strings"
)

// The alternate call syntax: Class.method(arguments)
//
//	line   = class "." method "(" args ")"
//	class  = uppercase letter, then anything
//	args   = anything, split lexically on ", " or ","
var (
	callSyntax  = regexp.MustCompile(`^[A-Z].*\..*\(.*\)$`)
	callSplit   = regexp.MustCompile(`[.()]`)
	argSplit    = regexp.MustCompile(`,\s?`)
	braceMarker = "{}"
)

// Rewrite translates "Class.method(args)" into the canonical "method Class args".
// Lines that do not match the call syntax are returned unchanged.
//
// The split is purely lexical: dots, commas or parentheses inside argument values
// are not protected and can produce a wrong canonical line.
func Rewrite(line string) string {
	if !callSyntax.MatchString(line) {
		return line
	}

	// The closing parenthesis always leaves an empty last piece.
	parts := callSplit.Split(line, -1)
	parts = parts[:len(parts)-1]
	class, method, params := parts[0], parts[1], parts[2]

	switch method {
	case cmdUpdate:
		var pieces []string
		if strings.ContainsAny(params, braceMarker) {
			// The dictionary literal stays intact, only the id is split off.
			method = cmdDictUpdate
			pieces = argSplit.Split(params, 2)
		} else {
			pieces = argSplit.Split(params, 3)
			for i := range pieces {
				pieces[i] = stripQuotes(pieces[i])
			}
		}
		pieces[0] = stripQuotes(pieces[0])
		params = strings.Join(pieces, " ")
	case cmdAll, cmdCount:
	default:
		params = stripQuotes(params)
	}

	return fmt.Sprintf("%s %s %s", method, class, params)
}

func stripQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, "")
}
