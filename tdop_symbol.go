package xpquery

import (
	"fmt"
	"regexp"
	"strings"
)

// Label classifies the syntactic role of a symbol kind. Some symbols play
// more than one role (a bare name can act as a function or an axis
// depending on what follows it) — LabelSet models that with a small
// membership set rather than an inheritance hierarchy.
type Label string

const (
	LabelSymbol          Label = "symbol"
	LabelLiteral         Label = "literal"
	LabelOperator        Label = "operator"
	LabelPrefixOperator  Label = "prefix operator"
	LabelPostfixOperator Label = "postfix operator"
	LabelFunction        Label = "function"
	LabelConstructor     Label = "constructor"
	LabelKindTest        Label = "kind test"
	LabelAxis            Label = "axis"
)

// LabelSet holds one or more Labels. Equality against a single Label string
// holds if any member matches — this is the "multi-label" mechanism spec'd
// for symbols that carry more than one role (e.g. a name used as a function
// or an axis).
type LabelSet []Label

// Is reports whether l is a member of the set.
func (s LabelSet) Is(l Label) bool {
	for _, v := range s {
		if v == l {
			return true
		}
	}
	return false
}

func (s LabelSet) String() string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = string(v)
	}
	return strings.Join(parts, "|")
}

// NewLabel builds a LabelSet from one or more Labels; a single label is the
// common case, multiple labels form a MultiLabel-equivalent set.
func NewLabel(labels ...Label) LabelSet { return LabelSet(labels) }

// Nud is a null denotation: how a token behaves when it begins an
// expression (prefix position). It receives the parser (to recurse into
// expression()) and the token itself, and returns the (possibly rewritten)
// token, typically itself with children attached.
type Nud func(p *Parser, t *Token) (*Token, error)

// Led is a left denotation: how a token behaves when it appears after an
// already-parsed left operand (infix/postfix position).
type Led func(p *Parser, t *Token, left *Token) (*Token, error)

// EvalFunc computes the scalar/list value of a token against a context.
type EvalFunc func(t *Token, ctx *Context) (Value, error)

// SelectFunc computes the lazy node sequence a token selects against a
// context. Returned as a push-iterator (range-over-func) per spec.md's
// pull-stream contract: the sequence is consumed one item at a time and a
// caller may stop early by returning false from the range body.
type SelectFunc func(t *Token, ctx *Context) func(yield func(Node) bool)

// SymbolKind is a declarative descriptor of one token kind, keyed by its
// Symbol. It is the record-in-a-registry replacement for the dynamic
// class-per-symbol construction a dynamic-language TDOP implementation
// would use.
type SymbolKind struct {
	Symbol  string
	LBP     int
	RBP     int
	Pattern string // custom regex fragment; derived from Symbol if empty
	Label   LabelSet
	Nud     Nud
	Led     Led
	Eval    EvalFunc
	Select  SelectFunc
}

func (k *SymbolKind) clone() *SymbolKind {
	cp := *k
	return &cp
}

// KindOption mutates a SymbolKind being registered or updated. Passing the
// same option symbol twice is idempotent for everything except LBP/RBP,
// which are only ever raised (see Registry.Register).
type KindOption func(*SymbolKind)

func WithLBP(bp int) KindOption { return func(k *SymbolKind) { k.LBP = bp } }
func WithRBP(bp int) KindOption { return func(k *SymbolKind) { k.RBP = bp } }
func WithPattern(pattern string) KindOption {
	return func(k *SymbolKind) { k.Pattern = pattern }
}
func WithLabel(labels ...Label) KindOption {
	return func(k *SymbolKind) { k.Label = NewLabel(labels...) }
}
func WithNud(nud Nud) KindOption     { return func(k *SymbolKind) { k.Nud = nud } }
func WithLed(led Led) KindOption     { return func(k *SymbolKind) { k.Led = led } }
func WithEval(fn EvalFunc) KindOption {
	return func(k *SymbolKind) { k.Eval = fn }
}
func WithSelect(fn SelectFunc) KindOption {
	return func(k *SymbolKind) { k.Select = fn }
}

var whitespaceRE = regexp.MustCompile(`\s`)

// Registry is the declarative symbol table a dialect is built from. It
// owns a fixed "alphabet" (the closed set of symbols a grammar may ever
// register) and the live map of registered kinds.
type Registry struct {
	alphabet map[string]bool
	kinds    map[string]*SymbolKind
	order    []string // registration order, for deterministic tokenizer output
	built    bool
	tokenize *tokenizer
}

// NewRegistry creates a registry whose alphabet is fixed to the given
// symbols plus the special reserved symbols in specialSymbols.
func NewRegistry(alphabet []string) *Registry {
	r := &Registry{
		alphabet: make(map[string]bool, len(alphabet)+len(specialSymbols)),
		kinds:    make(map[string]*SymbolKind),
	}
	for _, s := range alphabet {
		r.alphabet[s] = true
	}
	for _, s := range specialSymbols {
		r.alphabet[s] = true
	}
	r.registerSpecialSymbols()
	return r
}

// registerSpecialSymbols seeds the reserved literal/(end)/(invalid)/
// (unknown)/(name) kinds the driver materializes itself. A dialect
// typically overrides their Eval behavior via Register (update semantics
// only overwrite callables, never remove the default nud).
func (r *Registry) registerSpecialSymbols() {
	selfNud := func(p *Parser, t *Token) (*Token, error) { return t, nil }
	for _, s := range specialSymbols {
		label := NewLabel(LabelLiteral)
		if s == "(name)" {
			label = NewLabel(LabelSymbol)
		}
		kind := &SymbolKind{Symbol: s, Label: label, Nud: selfNud}
		r.kinds[s] = kind
		r.order = append(r.order, s)
	}
}

// specialSymbols are the reserved token kinds the driver materializes
// itself (literals, end-of-source, invalid/unknown catch-alls); a dialect
// never has to declare them in its alphabet.
var specialSymbols = []string{
	"(string)", "(float)", "(decimal)", "(integer)",
	"(name)", "(end)", "(invalid)", "(unknown)",
}

// Register creates or updates the kind for symbol. Creating a new kind
// requires symbol to already be part of the declared alphabet. On update,
// LBP/RBP are only ever raised, matching spec.md's "monotonically raised,
// never lowered" rule; every other attribute is overwritten by whichever
// option supplies it.
func (r *Registry) Register(symbol string, opts ...KindOption) (*SymbolKind, error) {
	if r.built {
		return nil, newParseError(CategoryUnregisteredSymbol, "registry is frozen after build()")
	}
	if whitespaceRE.MatchString(symbol) {
		return nil, newParseError(CategoryInvalidSymbol, fmt.Sprintf("symbol %q contains whitespace", symbol))
	}
	kind, exists := r.kinds[symbol]
	if !exists {
		if !r.alphabet[symbol] {
			return nil, newParseError(CategoryUnknownSymbol, fmt.Sprintf("symbol %q is not in the declared alphabet", symbol))
		}
		kind = &SymbolKind{Symbol: symbol}
		r.kinds[symbol] = kind
		r.order = append(r.order, symbol)
	}
	for _, opt := range opts {
		before := *kind
		opt(kind)
		// LBP/RBP may only increase; undo a lowering option.
		if kind.LBP < before.LBP {
			kind.LBP = before.LBP
		}
		if kind.RBP < before.RBP {
			kind.RBP = before.RBP
		}
	}
	return kind, nil
}

// Unregister removes symbol's kind entirely.
func (r *Registry) Unregister(symbol string) {
	delete(r.kinds, symbol)
	for i, s := range r.order {
		if s == symbol {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Duplicate copies every inheritable attribute of symbol (everything but
// Symbol and Pattern) onto newSymbol, with opts applied afterward as
// overrides.
func (r *Registry) Duplicate(symbol, newSymbol string, opts ...KindOption) (*SymbolKind, error) {
	src, ok := r.kinds[symbol]
	if !ok {
		return nil, newParseError(CategoryUnknownSymbol, fmt.Sprintf("cannot duplicate unregistered symbol %q", symbol))
	}
	if !r.alphabet[newSymbol] {
		return nil, newParseError(CategoryUnknownSymbol, fmt.Sprintf("symbol %q is not in the declared alphabet", newSymbol))
	}
	cp := src.clone()
	cp.Symbol = newSymbol
	cp.Pattern = ""
	r.kinds[newSymbol] = cp
	r.order = append(r.order, newSymbol)
	for _, opt := range opts {
		opt(cp)
	}
	return cp, nil
}

// Kind looks up a registered symbol kind.
func (r *Registry) Kind(symbol string) (*SymbolKind, bool) {
	k, ok := r.kinds[symbol]
	return k, ok
}

// Build validates that every declared alphabet symbol has been registered
// and lazily compiles the tokenizer. The registry (and the grammar it
// describes) is frozen after this call: no further Register/Unregister.
func (r *Registry) Build() (*tokenizer, error) {
	if r.built {
		return r.tokenize, nil
	}
	var missing []string
	for s := range r.alphabet {
		if isSpecialSymbol(s) {
			continue
		}
		if _, ok := r.kinds[s]; !ok {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		return nil, newParseError(CategoryUnregisteredSymbol, fmt.Sprintf("missing registrations: %s", strings.Join(missing, ", ")))
	}
	tok, err := buildTokenizer(r)
	if err != nil {
		return nil, err
	}
	r.tokenize = tok
	r.built = true
	return tok, nil
}

func isSpecialSymbol(s string) bool {
	for _, sp := range specialSymbols {
		if sp == s {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------
// Convenience constructors (spec.md §4.A)
// ---------------------------------------------------------------------

// Literal registers symbol as a zero-arity literal: its nud yields itself.
func (r *Registry) Literal(symbol string, opts ...KindOption) (*SymbolKind, error) {
	base := []KindOption{
		WithLabel(LabelLiteral),
		WithNud(func(p *Parser, t *Token) (*Token, error) { return t, nil }),
	}
	return r.Register(symbol, append(base, opts...)...)
}

// Nullary registers symbol as a zero-arity symbol whose nud yields itself
// (keywords like true()/false() use this indirectly via Function; Nullary
// covers bare zero-arity symbols such as axis abbreviations).
func (r *Registry) Nullary(symbol string, opts ...KindOption) (*SymbolKind, error) {
	base := []KindOption{
		WithLabel(LabelSymbol),
		WithNud(func(p *Parser, t *Token) (*Token, error) { return t, nil }),
	}
	return r.Register(symbol, append(base, opts...)...)
}

// Prefix registers symbol as a prefix operator of binding power bp: its
// nud consumes exactly one subexpression parsed at rbp=bp.
func (r *Registry) Prefix(symbol string, bp int, opts ...KindOption) (*SymbolKind, error) {
	base := []KindOption{
		WithLabel(LabelPrefixOperator),
		WithRBP(bp),
		WithNud(func(p *Parser, t *Token) (*Token, error) {
			operand, err := p.expression(bp)
			if err != nil {
				return nil, err
			}
			t.Children = []*Token{operand}
			return t, nil
		}),
	}
	return r.Register(symbol, append(base, opts...)...)
}

// Postfix registers symbol as a postfix operator: its led(left) adopts
// left as its sole child.
func (r *Registry) Postfix(symbol string, bp int, opts ...KindOption) (*SymbolKind, error) {
	base := []KindOption{
		WithLabel(LabelPostfixOperator),
		WithLBP(bp),
		WithLed(func(p *Parser, t *Token, left *Token) (*Token, error) {
			t.Children = []*Token{left}
			return t, nil
		}),
	}
	return r.Register(symbol, append(base, opts...)...)
}

// Infix registers symbol as a left-associative infix operator of binding
// power bp.
func (r *Registry) Infix(symbol string, bp int, opts ...KindOption) (*SymbolKind, error) {
	base := []KindOption{
		WithLabel(LabelOperator),
		WithLBP(bp),
		WithLed(func(p *Parser, t *Token, left *Token) (*Token, error) {
			right, err := p.expression(bp)
			if err != nil {
				return nil, err
			}
			t.Children = []*Token{left, right}
			return t, nil
		}),
	}
	return r.Register(symbol, append(base, opts...)...)
}

// Infixr registers symbol as a right-associative infix operator.
func (r *Registry) Infixr(symbol string, bp int, opts ...KindOption) (*SymbolKind, error) {
	base := []KindOption{
		WithLabel(LabelOperator),
		WithLBP(bp),
		WithLed(func(p *Parser, t *Token, left *Token) (*Token, error) {
			right, err := p.expression(bp - 1)
			if err != nil {
				return nil, err
			}
			t.Children = []*Token{left, right}
			return t, nil
		}),
	}
	return r.Register(symbol, append(base, opts...)...)
}

// Method registers symbol with no attached denotation, for dialects that
// supply their own nud/led directly via WithNud/WithLed — the equivalent
// of elementpath's bare @method decorator.
func (r *Registry) Method(symbol string, opts ...KindOption) (*SymbolKind, error) {
	return r.Register(symbol, opts...)
}

// Axis registers symbol as an axis specifier: its pattern only matches the
// axis name when followed (possibly through whitespace) by "::" — a
// zero-width lookahead, so the token text consumed is the bare axis name
// and "::" is tokenized (and consumed) separately by the nud below — and
// its nud consumes the "::" and a restricted-kind subexpression at rbp=bp.
func (r *Registry) Axis(symbol string, bp int, opts ...KindOption) (*SymbolKind, error) {
	base := []KindOption{
		WithLabel(LabelAxis),
		WithPattern(regexp.QuoteMeta(symbol) + `(?=\s*::)`),
		WithNud(func(p *Parser, t *Token) (*Token, error) {
			if err := p.advance("::"); err != nil {
				return nil, err
			}
			step, err := p.expression(bp)
			if err != nil {
				return nil, err
			}
			t.Children = []*Token{step}
			return t, nil
		}),
	}
	return r.Register(symbol, append(base, opts...)...)
}

// FunctionArity describes how many arguments a function symbol accepts.
// A nil *FunctionArity means variadic with >=1 args (Python's "nargs=None").
type FunctionArity struct {
	Min int
	Max int // Max < 0 means unbounded
}

// Exactly returns an arity requiring exactly n arguments.
func Exactly(n int) *FunctionArity { return &FunctionArity{Min: n, Max: n} }

// Range returns an arity requiring between min and max arguments inclusive.
func Range(min, max int) *FunctionArity { return &FunctionArity{Min: min, Max: max} }

// Variadic returns an arity requiring at least one argument, unbounded.
func Variadic() *FunctionArity { return &FunctionArity{Min: 1, Max: -1} }

// Function registers symbol as a function-call constructor: its pattern
// only matches the name when followed by "(", and its nud parses
// "(args)" respecting arity, with argument expressions parsed at rbp=5
// (below comma precedence).
func (r *Registry) Function(symbol string, arity *FunctionArity, opts ...KindOption) (*SymbolKind, error) {
	if arity == nil {
		arity = Variadic()
	}
	base := []KindOption{
		WithLabel(LabelFunction),
		WithPattern(regexp.QuoteMeta(symbol) + `(?=\s*\()`),
		WithNud(func(p *Parser, t *Token) (*Token, error) {
			if err := p.advance("("); err != nil {
				return nil, err
			}
			var args []*Token
			if p.lookahead.Symbol() != ")" {
				for {
					arg, err := p.expression(5)
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if p.lookahead.Symbol() != "," {
						break
					}
					if err := p.advance(","); err != nil {
						return nil, err
					}
				}
			}
			if err := p.advance(")"); err != nil {
				return nil, err
			}
			if arity != nil {
				n := len(args)
				max := arity.Max
				if max < 0 {
					max = n
				}
				if n < arity.Min || n > max {
					return nil, &Error{Code: XPST0017, Message: fmt.Sprintf("%s() expects %s arguments, got %d", symbol, arityString(arity), n)}
				}
			}
			t.Children = args
			return t, nil
		}),
	}
	return r.Register(symbol, append(base, opts...)...)
}

func arityString(a *FunctionArity) string {
	if a.Max < 0 {
		return fmt.Sprintf("at least %d", a.Min)
	}
	if a.Min == a.Max {
		return fmt.Sprintf("exactly %d", a.Min)
	}
	return fmt.Sprintf("between %d and %d", a.Min, a.Max)
}
