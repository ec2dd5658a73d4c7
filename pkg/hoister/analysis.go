package hoister

import (
	"inlay/pkg/lexer"
	"inlay/pkg/parser"
)

func (p *pass) killAll(ln *lineage) {
	ln.dirty = true
	ln.fx.all = true
	for _, e := range ln.entries {
		e.dead = true
	}
}

func (p *pass) killName(ln *lineage, name string) {
	ln.dirty = true
	ln.fx.names[name] = true
	for _, e := range ln.entries {
		if e.reads[name] {
			e.dead = true
		}
	}
}

func (p *pass) killMembers(ln *lineage) {
	ln.dirty = true
	ln.fx.member = true
	for _, e := range ln.entries {
		if e.member {
			e.dead = true
		}
	}
}

func (p *pass) killTarget(ln *lineage, target parser.Expression) {
	switch t := target.(type) {
	case *parser.Identifier:
		p.killName(ln, t.Value)
	case *parser.MemberExpression, *parser.IndexExpression:
		p.killMembers(ln)
	default:
		p.killAll(ln)
	}
}

// apply folds a nested list's effect summary into the enclosing
// lineage.
func (p *pass) apply(ln *lineage, fx *effects) {
	if fx.all {
		p.killAll(ln)
		return
	}
	for name := range fx.names {
		p.killName(ln, name)
	}
	if fx.member {
		p.killMembers(ln)
	}
}

// readsOf collects the names an occurrence's result depends on: the
// callee plus every identifier its arguments read. member reports
// whether any argument reads through a member or index access, which
// mutation of object state may invalidate. Member property names and
// plain object keys are labels, not reads.
func readsOf(callee string, call *parser.CallExpression, args []parser.Expression) (map[string]bool, bool) {
	reads := map[string]bool{callee: true}
	member := false
	exprs := args
	if call != nil {
		exprs = append([]parser.Expression{call.Function}, args...)
	}
	skip := make(map[*parser.Identifier]bool)
	for _, e := range exprs {
		parser.Inspect(e, func(n parser.Node) bool {
			switch x := n.(type) {
			case *parser.MemberExpression:
				member = true
				if x.Property != nil {
					skip[x.Property] = true
				}
			case *parser.IndexExpression:
				member = true
			case *parser.ObjectLiteral:
				for _, prop := range x.Properties {
					if prop.Computed || prop.Shorthand {
						continue
					}
					if key, ok := prop.Key.(*parser.Identifier); ok {
						skip[key] = true
					}
				}
			case *parser.Identifier:
				if !skip[x] {
					reads[x.Value] = true
				}
			}
			return true
		})
	}
	return reads, member
}

func (p *pass) insert(ln *lineage, at int, stmt parser.Statement) {
	list := *ln.list
	out := make([]parser.Statement, 0, len(list)+1)
	out = append(out, list[:at]...)
	out = append(out, stmt)
	out = append(out, list[at:]...)
	*ln.list = out
	if at <= ln.i {
		ln.i++
	}
	for _, e := range ln.entries {
		if !e.dead && e.index >= at {
			e.index++
		}
	}
}

// removeStmt drops stmt from the lineage's list. Entries anchored in
// the removed statement die with it.
func (p *pass) removeStmt(ln *lineage, stmt parser.Statement) {
	list := *ln.list
	at := -1
	for i, s := range list {
		if s == stmt {
			at = i
			break
		}
	}
	if at < 0 {
		return
	}
	*ln.list = append(list[:at], list[at+1:]...)
	if at <= ln.i {
		ln.i--
	}
	for _, e := range ln.entries {
		if e.dead {
			continue
		}
		if e.use == stmt {
			e.dead = true
			continue
		}
		if e.index > at {
			e.index--
		}
	}
}

// canDrop reports whether removing stmt loses no observable work.
// Subtrees a pure expansion anchored are licensed by its hint, and
// function values only define.
func (p *pass) canDrop(stmt parser.Statement) bool {
	clean := true
	parser.Inspect(stmt, func(n parser.Node) bool {
		if !clean {
			return false
		}
		if e, ok := n.(parser.Expression); ok {
			if _, anchored := p.anchors[e]; anchored {
				return false
			}
		}
		switch x := n.(type) {
		case *parser.FunctionLiteral, *parser.ArrowFunctionLiteral:
			return false
		case *parser.CallExpression, *parser.NewExpression,
			*parser.AssignmentExpression, *parser.UpdateExpression,
			*parser.ThrowStatement:
			clean = false
			return false
		case *parser.PrefixExpression:
			if x.Operator == "delete" {
				clean = false
				return false
			}
		}
		return true
	})
	return clean
}

func ident(name string) *parser.Identifier {
	return &parser.Identifier{
		Token: lexer.Token{Type: lexer.IDENT, Literal: name},
		Value: name,
	}
}

func letStmt(name string, value parser.Expression) *parser.LetStatement {
	return &parser.LetStatement{
		Token: lexer.Token{Type: lexer.LET, Literal: "let"},
		Name:  ident(name),
		Value: value,
	}
}
