package introspect

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"runtime"
	"sync"
)

var (
	// ErrNoSource is returned when a function's source cannot be located
	ErrNoSource = errors.New("function source not available")

	// ErrUnnamed is returned when the source declares unnamed parameters
	ErrUnnamed = errors.New("function parameters are unnamed")
)

// sourceCache maps entry PCs to parameter names (or errors)
var sourceCache sync.Map

type sourceResult struct {
	names []string
	err   error
}

// SourceNames reads the parameter names of fn from its Go source file.
// The file is located through the runtime's line table, so names are only
// available where the source is, typically during development and tests.
func SourceNames(fn any) ([]string, error) {
	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, fmt.Errorf("%w: %T", ErrNotFunc, fn)
	}

	pc := rv.Pointer()
	if cached, ok := sourceCache.Load(pc); ok {
		res := cached.(sourceResult)
		return append([]string(nil), res.names...), res.err
	}

	names, err := lookupSourceNames(pc, rv.Type().NumIn())
	sourceCache.Store(pc, sourceResult{names: names, err: err})
	return append([]string(nil), names...), err
}

func lookupSourceNames(pc uintptr, numIn int) ([]string, error) {
	f := runtime.FuncForPC(pc)
	if f == nil {
		return nil, ErrNoSource
	}
	file, line := f.FileLine(f.Entry())
	if file == "" || line == 0 {
		return nil, ErrNoSource
	}

	fset := token.NewFileSet()
	parsed, err := parser.ParseFile(fset, file, nil, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSource, err)
	}

	// The entry line is the line of the func keyword or, for signatures
	// spanning several lines, somewhere up to the opening brace. The last
	// match is the innermost function.
	var found *ast.FuncType
	ast.Inspect(parsed, func(n ast.Node) bool {
		var typ *ast.FuncType
		var body *ast.BlockStmt
		switch fn := n.(type) {
		case *ast.FuncDecl:
			typ, body = fn.Type, fn.Body
		case *ast.FuncLit:
			typ, body = fn.Type, fn.Body
		default:
			return true
		}
		if body == nil {
			return true
		}

		start := fset.Position(typ.Pos()).Line
		end := fset.Position(body.Lbrace).Line
		if line >= start && line <= end && countParams(typ) == numIn {
			found = typ
		}
		return true
	})

	if found == nil {
		return nil, fmt.Errorf("%w: no function at %s:%d", ErrNoSource, file, line)
	}

	names := make([]string, 0, numIn)
	for _, field := range found.Params.List {
		if len(field.Names) == 0 {
			return nil, ErrUnnamed
		}
		for _, ident := range field.Names {
			if ident.Name == "_" {
				return nil, ErrUnnamed
			}
			names = append(names, ident.Name)
		}
	}
	return names, nil
}

func countParams(typ *ast.FuncType) int {
	if typ.Params == nil {
		return 0
	}
	n := 0
	for _, field := range typ.Params.List {
		if len(field.Names) == 0 {
			n++
			continue
		}
		n += len(field.Names)
	}
	return n
}
