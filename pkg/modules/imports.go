package modules

import (
	"inlay/pkg/parser"
)

// Imports lists the module requests a program makes at its top level:
// import declarations and re-exporting export declarations, in source
// order with duplicates removed.
func Imports(program *parser.Program) []string {
	if program == nil {
		return nil
	}

	seen := make(map[string]bool)
	var requests []string
	add := func(request string) {
		if request == "" || seen[request] {
			return
		}
		seen[request] = true
		requests = append(requests, request)
	}

	for _, stmt := range program.Statements {
		switch s := stmt.(type) {
		case *parser.ImportDeclaration:
			if s.Source != nil {
				add(s.Source.Value)
			}
		case *parser.ExportNamedDeclaration:
			if s.Source != nil {
				add(s.Source.Value)
			}
		}
	}

	return requests
}
