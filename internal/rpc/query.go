package rpc

import (
	"fmt"
	"strconv"
	"strings"
)

// Query is a datascript query template plus the values bound to its :in
// clause. The template never contains user text; inputs travel as separate
// arguments and are encoded as EDN literals.
type Query struct {
	Template string
	Inputs   []any
}

// Args returns the positional arguments for DB.datascriptQuery.
func (q Query) Args() []any {
	args := make([]any, 0, len(q.Inputs)+1)
	args = append(args, q.Template)
	for _, in := range q.Inputs {
		args = append(args, EDNLiteral(in))
	}
	return args
}

var ednEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// EDNString quotes s as an EDN string literal.
func EDNString(s string) string {
	return `"` + ednEscaper.Replace(s) + `"`
}

// EDNLiteral renders v as an EDN literal. Strings are always quoted.
func EDNLiteral(v any) string {
	switch x := v.(type) {
	case string:
		return EDNString(x)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return "nil"
	default:
		return EDNString(fmt.Sprint(x))
	}
}
