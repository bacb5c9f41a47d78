package minimap

import (
	"go/ast"
	"go/parser"
	"go/token"
)

// goExtractor uses the native go/ast parser instead of a tree-sitter
// grammar; it produces richer method names (receiver-qualified) for free.
type goExtractor struct{}

func (g *goExtractor) Extract(content string) ([]Symbol, []CallEdge, bool, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", content, parser.SkipObjectResolution)
	if err != nil {
		return nil, nil, false, err
	}

	var (
		symbols   []Symbol
		calls     []CallEdge
		truncated bool
	)

	addSymbol := func(s Symbol) {
		if len(symbols) >= maxSymbols {
			truncated = true
			return
		}
		symbols = append(symbols, s)
	}
	addCall := func(c CallEdge) {
		if len(calls) >= maxCallEdges {
			truncated = true
			return
		}
		calls = append(calls, c)
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			name := d.Name.Name
			kind := "function"
			if d.Recv != nil && len(d.Recv.List) > 0 {
				kind = "method"
				if recv := receiverName(d.Recv.List[0].Type); recv != "" {
					name = recv + "." + name
				}
			}
			addSymbol(Symbol{
				Name:     name,
				Kind:     kind,
				Line:     fset.Position(d.Pos()).Line,
				Language: "go",
			})

			if d.Body == nil {
				continue
			}
			caller := name
			ast.Inspect(d.Body, func(n ast.Node) bool {
				call, ok := n.(*ast.CallExpr)
				if !ok {
					return true
				}
				if callee := callName(call.Fun); callee != "" {
					addCall(CallEdge{
						Caller: caller,
						Callee: callee,
						Line:   fset.Position(call.Pos()).Line,
					})
				}
				return true
			})

		case *ast.GenDecl:
			switch d.Tok {
			case token.TYPE:
				for _, spec := range d.Specs {
					ts, ok := spec.(*ast.TypeSpec)
					if !ok {
						continue
					}
					addSymbol(Symbol{
						Name:     ts.Name.Name,
						Kind:     "type",
						Line:     fset.Position(ts.Pos()).Line,
						Language: "go",
					})
				}
			case token.VAR, token.CONST:
				// Package-level initializer calls belong to the file itself.
				ast.Inspect(d, func(n ast.Node) bool {
					call, ok := n.(*ast.CallExpr)
					if !ok {
						return true
					}
					if callee := callName(call.Fun); callee != "" {
						addCall(CallEdge{
							Caller: topLevelCaller,
							Callee: callee,
							Line:   fset.Position(call.Pos()).Line,
						})
					}
					return true
				})
			}
		}
	}

	return symbols, calls, truncated, nil
}

// receiverName unwraps a method receiver type down to its identifier.
func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	}
	return ""
}

// callName extracts the called name from a call expression's function
// operand. Selector calls keep only the selected name, unresolved.
func callName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.IndexExpr:
		return callName(t.X)
	case *ast.IndexListExpr:
		return callName(t.X)
	case *ast.ParenExpr:
		return callName(t.X)
	}
	return ""
}
