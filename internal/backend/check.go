package backend

import (
	"fmt"

	"github.com/roach88/svconform/internal/compiler"
)

// blockPairs maps each opening keyword to the keywords that may close it.
var blockPairs = map[string][]string{
	"module":      {"endmodule"},
	"macromodule": {"endmodule"},
	"interface":   {"endinterface"},
	"package":     {"endpackage"},
	"program":     {"endprogram"},
	"class":       {"endclass"},
	"function":    {"endfunction"},
	"task":        {"endtask"},
	"begin":       {"end"},
	"case":        {"endcase"},
	"casex":       {"endcase"},
	"casez":       {"endcase"},
	"fork":        {"join", "join_any", "join_none"},
	"generate":    {"endgenerate"},
	"covergroup":  {"endgroup"},
	"property":    {"endproperty"},
	"sequence":    {"endsequence"},
}

// closers is the reverse of blockPairs.
var closers = func() map[string]bool {
	m := make(map[string]bool)
	for _, cs := range blockPairs {
		for _, c := range cs {
			m[c] = true
		}
	}
	return m
}()

var bracketPairs = map[string]string{")": "(", "]": "[", "}": "{"}

// assertions introduce inline property and sequence expressions.
var assertions = map[string]bool{
	"assert": true, "assume": true, "cover": true, "restrict": true, "expect": true,
}

// designUnits are the keywords whose first identifier names a unit.
var designUnits = map[string]bool{
	"module": true, "macromodule": true, "interface": true, "package": true, "program": true,
}

// analysis is the outcome of the syntax and semantic stages.
type analysis struct {
	errs     []compiler.CompileError
	warnings []compiler.CompileWarning
	nodes    int
	units    []string
}

// check balances block keywords and brackets, requires design units to be
// named, and rejects duplicate design unit names.
func check(tokens []token) analysis {
	var a analysis
	var stack []token
	seen := make(map[string]token)

	// prototype is set by extern/pure/import/export declarations, whose
	// function or task keyword opens no body. It lasts until the next ';'.
	prototype := false

	for i, t := range tokens {
		switch t.kind {
		case tokPunct:
			switch t.text {
			case ";":
				prototype = false
			case "(", "[", "{":
				stack = append(stack, t)
			case ")", "]", "}":
				want := bracketPairs[t.text]
				if len(stack) == 0 || stack[len(stack)-1].text != want {
					a.syntaxErr(t, "unexpected '%s'", t.text)
					continue
				}
				stack = stack[:len(stack)-1]
				a.nodes++
			}
			continue
		case tokIdent:
		default:
			continue
		}

		prev := ""
		if i > 0 {
			prev = tokens[i-1].text
		}

		switch t.text {
		case "extern", "pure", "import", "export":
			prototype = true
			continue
		case "typedef":
			// typedef class Foo; is a forward declaration.
			prototype = true
			continue
		}

		if _, ok := blockPairs[t.text]; ok {
			if prototype && (t.text == "function" || t.text == "task" || t.text == "class") {
				continue
			}
			if t.text == "fork" && (prev == "wait" || prev == "disable") {
				continue
			}
			if t.text == "interface" && prev == "virtual" {
				continue
			}
			if (t.text == "property" || t.text == "sequence") && assertions[prev] {
				continue
			}
			if designUnits[t.text] {
				if i+1 >= len(tokens) || tokens[i+1].kind != tokIdent {
					a.syntaxErr(t, "expected %s name", t.text)
				} else {
					name := tokens[i+1]
					if first, dup := seen[name.text]; dup {
						a.errs = append(a.errs, compiler.CompileError{
							Message:  fmt.Sprintf("%s '%s' already declared at %d:%d", t.text, name.text, first.line, first.col),
							Line:     name.line,
							Column:   name.col,
							Category: compiler.CategorySemantic,
						})
					} else {
						seen[name.text] = name
						a.units = append(a.units, name.text)
					}
				}
			}
			stack = append(stack, t)
			continue
		}

		if closers[t.text] {
			top := len(stack) - 1
			if top < 0 || isBracket(stack[top].text) || !closes(stack[top].text, t.text) {
				a.syntaxErr(t, "unexpected '%s'", t.text)
				continue
			}
			stack = stack[:top]
			a.nodes++
		}
	}

	for i := len(stack) - 1; i >= 0; i-- {
		o := stack[i]
		if isBracket(o.text) {
			a.syntaxErr(o, "unclosed '%s'", o.text)
			continue
		}
		a.syntaxErr(o, "missing '%s' for '%s'", blockPairs[o.text][0], o.text)
	}

	if len(tokens) > 0 && len(a.units) == 0 {
		a.warnings = append(a.warnings, compiler.CompileWarning{
			Message:  "no design units found",
			Line:     tokens[0].line,
			Column:   tokens[0].col,
			Category: compiler.CategoryElaboration,
		})
	}
	return a
}

func (a *analysis) syntaxErr(t token, format string, args ...any) {
	a.errs = append(a.errs, compiler.CompileError{
		Message:  fmt.Sprintf(format, args...),
		Line:     t.line,
		Column:   t.col,
		Category: compiler.CategorySyntax,
	})
}

func isBracket(s string) bool {
	return s == "(" || s == "[" || s == "{"
}

func closes(opener, closer string) bool {
	for _, c := range blockPairs[opener] {
		if c == closer {
			return true
		}
	}
	return false
}
