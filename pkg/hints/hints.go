// Package hints recognizes @inline and @pure markers in comments and
// attaches them to AST nodes. The attachments live in a side table keyed
// by node identity; the AST itself is never modified.
package hints

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/dlclark/regexp2"

	"inlay/pkg/lexer"
	"inlay/pkg/parser"
	"inlay/pkg/source"
)

// Hint is a bitset of the markers attached to a node.
type Hint uint8

const (
	Inline Hint = 1 << iota
	Pure
)

// Has reports whether every bit of flag is set.
func (h Hint) Has(flag Hint) bool { return h&flag == flag }

func (h Hint) String() string {
	switch {
	case h.Has(Inline | Pure):
		return "inline|pure"
	case h.Has(Inline):
		return "inline"
	case h.Has(Pure):
		return "pure"
	}
	return "none"
}

// Marker spellings recognized when Options leaves them blank.
const (
	DefaultInlineMarker = "@inline"
	DefaultPureMarker   = "@pure"
)

// Table records which nodes of one module carry hints. Declarations and
// call sites are kept apart: a marker on `function f` asks for f to be
// inlined everywhere, while a marker on `f(...)` covers that call only.
type Table struct {
	decls map[parser.Node]Hint
	calls map[parser.Node]Hint
}

// NewTable returns an empty hint table.
func NewTable() *Table {
	return &Table{
		decls: make(map[parser.Node]Hint),
		calls: make(map[parser.Node]Hint),
	}
}

// Declaration returns the hints attached to a function-defining node.
// Nodes without hints map to the zero Hint.
func (t *Table) Declaration(node parser.Node) Hint { return t.decls[node] }

// Call returns the hints attached to a call expression.
func (t *Table) Call(node parser.Node) Hint { return t.calls[node] }

// DeclCount returns the number of hinted declarations.
func (t *Table) DeclCount() int { return len(t.decls) }

// CallCount returns the number of hinted call sites.
func (t *Table) CallCount() int { return len(t.calls) }

func (t *Table) addDecl(node parser.Node, h Hint) { t.decls[node] |= h }
func (t *Table) addCall(node parser.Node, h Hint) { t.calls[node] |= h }

// Options selects the marker spellings a Scanner recognizes. Blank
// fields fall back to the defaults.
type Options struct {
	InlineMarker string
	PureMarker   string
}

// Scanner matches hint markers inside comment text. Markers must stand
// alone as words: "@inline" is found in "// @inline" and in
// "/* @inline @pure */", but not inside "me@inline.io" or "@inlined".
type Scanner struct {
	inlineRe *regexp2.Regexp
	pureRe   *regexp2.Regexp
}

// NewScanner compiles the marker patterns for the given options.
func NewScanner(opts Options) (*Scanner, error) {
	inline := opts.InlineMarker
	if inline == "" {
		inline = DefaultInlineMarker
	}
	pure := opts.PureMarker
	if pure == "" {
		pure = DefaultPureMarker
	}
	inlineRe, err := compileMarker(inline)
	if err != nil {
		return nil, fmt.Errorf("inline marker %q: %w", inline, err)
	}
	pureRe, err := compileMarker(pure)
	if err != nil {
		return nil, fmt.Errorf("pure marker %q: %w", pure, err)
	}
	return &Scanner{inlineRe: inlineRe, pureRe: pureRe}, nil
}

// compileMarker builds a whole-word pattern for the marker text. The
// lookbehind has to reject both word characters and a second '@', so \b
// alone is not enough for markers that start with '@'.
func compileMarker(marker string) (*regexp2.Regexp, error) {
	pattern := `(?<![\w@$])` + regexp.QuoteMeta(marker) + `(?![\w$])`
	return regexp2.Compile(pattern, regexp2.None)
}

var defaultScanner = mustScanner(Options{})

func mustScanner(opts Options) *Scanner {
	s, err := NewScanner(opts)
	if err != nil {
		panic(err)
	}
	return s
}

// Scan builds the hint table for one parsed module using the default
// marker spellings.
func Scan(program *parser.Program, comments []lexer.Comment, src *source.SourceFile) *Table {
	return defaultScanner.Scan(program, comments, src)
}

// Scan builds the hint table for one parsed module. Each comment that
// carries a marker attaches to the nearest candidate node starting at or
// after the comment's end, provided only whitespace and other comments
// sit between the two. Markers with no such node are dropped silently,
// as is any marker text the scanner does not recognize.
func (s *Scanner) Scan(program *parser.Program, comments []lexer.Comment, src *source.SourceFile) *Table {
	table := NewTable()
	if program == nil || len(comments) == 0 || src == nil {
		return table
	}

	cands := collectCandidates(program)
	for _, c := range comments {
		hint := s.markersIn(c.Text)
		if hint == 0 {
			continue
		}
		idx := sort.Search(len(cands), func(i int) bool {
			return cands[i].pos >= c.EndPos
		})
		if idx == len(cands) {
			continue
		}
		cand := cands[idx]
		if !onlyTrivia(src.Content, c.EndPos, cand.pos, comments) {
			continue
		}
		if cand.call {
			table.addCall(cand.node, hint)
		} else {
			table.addDecl(cand.node, hint)
		}
	}
	return table
}

// markersIn returns the union of the markers found in one comment.
func (s *Scanner) markersIn(text string) Hint {
	var h Hint
	if ok, _ := s.inlineRe.MatchString(text); ok {
		h |= Inline
	}
	if ok, _ := s.pureRe.MatchString(text); ok {
		h |= Pure
	}
	return h
}

// candidate is one node a hint can attach to, at the byte offset where
// its source text starts.
type candidate struct {
	node parser.Node
	pos  int
	call bool
}

// collectCandidates gathers every hintable node in the program, sorted
// by start offset. Declaration candidates are keyed by the
// function-defining node itself. Export wrappers contribute their inner
// function at the wrapper's position as well, so a marker written before
// `export` still reaches the function behind it.
func collectCandidates(program *parser.Program) []candidate {
	var cands []candidate
	parser.Inspect(program, func(n parser.Node) bool {
		switch node := n.(type) {
		case *parser.FunctionDeclaration:
			cands = append(cands, candidate{node: node, pos: node.Token.StartPos})
		case *parser.LetStatement:
			if fn := functionInitializer(node.Value); fn != nil {
				cands = append(cands, candidate{node: fn, pos: node.Token.StartPos})
			}
		case *parser.ConstStatement:
			if fn := functionInitializer(node.Value); fn != nil {
				cands = append(cands, candidate{node: fn, pos: node.Token.StartPos})
			}
		case *parser.ExportNamedDeclaration:
			if fn := exportedFunction(node.Declaration); fn != nil {
				cands = append(cands, candidate{node: fn, pos: node.Token.StartPos})
			}
		case *parser.ExportDefaultDeclaration:
			switch node.Declaration.(type) {
			case *parser.FunctionLiteral, *parser.ArrowFunctionLiteral:
				cands = append(cands, candidate{node: node.Declaration, pos: node.Token.StartPos})
			}
		case *parser.CallExpression:
			cands = append(cands, candidate{node: node, pos: parser.StartPos(node), call: true})
		}
		return true
	})
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].pos < cands[j].pos })
	return cands
}

// exportedFunction digs the function-defining node out of an exported
// declaration, when there is one.
func exportedFunction(decl parser.Statement) parser.Node {
	switch d := decl.(type) {
	case *parser.FunctionDeclaration:
		return d
	case *parser.LetStatement:
		return functionInitializer(d.Value)
	case *parser.ConstStatement:
		return functionInitializer(d.Value)
	}
	return nil
}

// functionInitializer returns the initializer when it defines a
// function, nil otherwise.
func functionInitializer(value parser.Expression) parser.Node {
	switch value.(type) {
	case *parser.FunctionLiteral, *parser.ArrowFunctionLiteral:
		return value
	}
	return nil
}

// onlyTrivia reports whether content[from:to] holds nothing but
// whitespace and comments. The comment list must be sorted by start
// offset, which is how the lexer produces it.
func onlyTrivia(content string, from, to int, comments []lexer.Comment) bool {
	if from > to || to > len(content) {
		return false
	}
	i := from
	for i < to {
		switch content[i] {
		case ' ', '\t', '\r', '\n':
			i++
			continue
		}
		j := sort.Search(len(comments), func(k int) bool {
			return comments[k].StartPos >= i
		})
		if j < len(comments) && comments[j].StartPos == i {
			i = comments[j].EndPos
			continue
		}
		return false
	}
	return true
}
