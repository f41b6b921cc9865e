package route

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultSegment is the expression used for placeholders without an override.
// A segment stops at the first slash, dot, comma, semicolon, question mark or newline.
const DefaultSegment = `[^/.,;?\n]+`

type nodeKind uint8

const (
	nodeLiteral nodeKind = iota
	nodeKey
	nodeGroup
)

// node is one element of a parsed template: literal text, a <key>, or an optional group.
type node struct {
	text     string
	children []node
	kind     nodeKind
}

// Pattern is a compiled URI template.
// It is immutable and safe for concurrent use.
type Pattern struct {
	expr  *regexp.Regexp
	uri   string
	nodes []node
	keys  []string
}

// Compile translates a URI template into a Pattern.
//
// Literal text is matched verbatim, "(...)" becomes an optional group and
// "<name>" becomes a named capture using DefaultSegment, or regex[name]
// when an override is given. Overrides for keys that do not appear in the
// template are ignored.
//
// Example:
//
//	p, err := route.Compile("blog(/<year>(/<slug>))", map[string]string{
//	    "year": `\d{4}`,
//	})
func Compile(uri string, regex map[string]string) (*Pattern, error) {
	nodes, err := parse(uri)
	if err != nil {
		return nil, err
	}

	keys, err := collectKeys(nodes, nil, make(map[string]struct{}))
	if err != nil {
		return nil, err
	}

	for _, k := range keys {
		override, ok := regex[k]
		if !ok {
			continue
		}
		if _, err := regexp.Compile(override); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRegex, k, err)
		}
	}

	var b strings.Builder
	b.WriteString("^")
	writeExpr(&b, nodes, regex)
	b.WriteString("$")

	expr, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("route: compile %q: %w", uri, err)
	}

	return &Pattern{
		expr:  expr,
		uri:   uri,
		nodes: nodes,
		keys:  keys,
	}, nil
}

// MustCompile is like Compile but panics if the template cannot be compiled.
func MustCompile(uri string, regex map[string]string) *Pattern {
	p, err := Compile(uri, regex)
	if err != nil {
		panic(err)
	}
	return p
}

// URI returns the source template.
func (p *Pattern) URI() string {
	return p.uri
}

// Keys returns placeholder names in template order.
func (p *Pattern) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Regexp returns the compiled, anchored expression.
func (p *Pattern) Regexp() *regexp.Regexp {
	return p.expr
}

// String returns the expression source.
func (p *Pattern) String() string {
	return p.expr.String()
}

// Match runs the pattern against path.
// Leading and trailing slashes are ignored and the path is normalised to NFC.
// Only placeholders that took part in the match appear in the result.
func (p *Pattern) Match(path string) (Params, bool) {
	path = normalizePath(path)

	loc := p.expr.FindStringSubmatchIndex(path)
	if loc == nil {
		return nil, false
	}

	params := make(Params, len(p.keys))
	for i, name := range p.expr.SubexpNames() {
		if name == "" || loc[2*i] < 0 {
			continue
		}
		params[name] = path[loc[2*i]:loc[2*i+1]]
	}
	return params, true
}

// Generate expands the template back into a URI.
//
// Each placeholder takes params[name], then defaults[name]. An optional
// group is emitted only when one of its placeholders has no default or
// resolves to a value different from its default, so groups holding only
// default values are elided. A placeholder left unresolved in an emitted
// part of the template yields a *MissingParamError.
//
// Values are inserted as given; callers that need percent-encoding do it
// before calling Generate (see Route.URI).
func (p *Pattern) Generate(defaults, params Params) (string, error) {
	uri, _, err := expand(p.nodes, true, defaults, params)
	if err != nil {
		return "", err
	}
	return tidy(uri), nil
}

// Generate compiles template through the default cache and expands it.
func Generate(template string, defaults, params Params) (string, error) {
	p, err := Compiled(template, nil)
	if err != nil {
		return "", err
	}
	return p.Generate(defaults, params)
}

func expand(nodes []node, required bool, defaults, params Params) (string, bool, error) {
	var (
		b       strings.Builder
		missing []string
	)

	for _, n := range nodes {
		switch n.kind {
		case nodeLiteral:
			b.WriteString(n.text)

		case nodeKey:
			def, hasDefault := defaults[n.text]
			if v, ok := params[n.text]; ok {
				if !hasDefault || v != def {
					required = true
				}
				b.WriteString(v)
				continue
			}
			if hasDefault {
				b.WriteString(def)
				continue
			}
			missing = append(missing, n.text)

		case nodeGroup:
			s, groupRequired, err := expand(n.children, false, defaults, params)
			if err != nil {
				return "", false, err
			}
			if groupRequired {
				required = true
				b.WriteString(s)
			}
		}
	}

	if required && len(missing) > 0 {
		return "", false, &MissingParamError{Name: missing[0]}
	}
	return b.String(), required, nil
}

// tidy collapses repeated slashes and drops trailing ones.
func tidy(uri string) string {
	uri = strings.TrimRight(uri, "/")
	for strings.Contains(uri, "//") {
		uri = strings.ReplaceAll(uri, "//", "/")
	}
	return uri
}

func normalizePath(path string) string {
	return norm.NFC.String(strings.Trim(path, "/"))
}

func writeExpr(b *strings.Builder, nodes []node, regex map[string]string) {
	for _, n := range nodes {
		switch n.kind {
		case nodeLiteral:
			b.WriteString(regexp.QuoteMeta(n.text))
		case nodeKey:
			segment := DefaultSegment
			if override, ok := regex[n.text]; ok {
				segment = override
			}
			b.WriteString("(?P<")
			b.WriteString(n.text)
			b.WriteString(">")
			b.WriteString(segment)
			b.WriteString(")")
		case nodeGroup:
			b.WriteString("(?:")
			writeExpr(b, n.children, regex)
			b.WriteString(")?")
		}
	}
}

// parse splits a template into literal, key and group nodes.
func parse(uri string) ([]node, error) {
	stack := [][]node{nil}
	var lit strings.Builder

	flush := func() {
		if lit.Len() == 0 {
			return
		}
		top := len(stack) - 1
		stack[top] = append(stack[top], node{kind: nodeLiteral, text: lit.String()})
		lit.Reset()
	}

	for i := 0; i < len(uri); i++ {
		switch c := uri[i]; c {
		case '(':
			flush()
			stack = append(stack, nil)

		case ')':
			if len(stack) == 1 {
				return nil, fmt.Errorf("%w: unexpected ')' at offset %d in %q", ErrUnbalancedGroup, i, uri)
			}
			flush()
			children := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			top := len(stack) - 1
			stack[top] = append(stack[top], node{kind: nodeGroup, children: children})

		case '<':
			end := strings.IndexByte(uri[i+1:], '>')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated '<' at offset %d in %q", ErrInvalidKey, i, uri)
			}
			name := uri[i+1 : i+1+end]
			if !validKey(name) {
				return nil, fmt.Errorf("%w: %q in %q", ErrInvalidKey, name, uri)
			}
			flush()
			top := len(stack) - 1
			stack[top] = append(stack[top], node{kind: nodeKey, text: name})
			i += end + 1

		case '>':
			return nil, fmt.Errorf("%w: unexpected '>' at offset %d in %q", ErrInvalidKey, i, uri)

		default:
			lit.WriteByte(c)
		}
	}

	if len(stack) != 1 {
		return nil, fmt.Errorf("%w: %d unclosed '(' in %q", ErrUnbalancedGroup, len(stack)-1, uri)
	}
	flush()
	return stack[0], nil
}

func collectKeys(nodes []node, keys []string, seen map[string]struct{}) ([]string, error) {
	for _, n := range nodes {
		switch n.kind {
		case nodeKey:
			if _, dup := seen[n.text]; dup {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, n.text)
			}
			seen[n.text] = struct{}{}
			keys = append(keys, n.text)
		case nodeGroup:
			var err error
			keys, err = collectKeys(n.children, keys, seen)
			if err != nil {
				return nil, err
			}
		}
	}
	return keys, nil
}

func validKey(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return false
		}
	}
	return true
}
