package xpquery

import (
	"regexp"
	"sort"
	"strings"
)

// defaultNamePattern approximates an XML NCName: a practical ASCII subset
// (letter/underscore start, then letters/digits/._-) rather than the full
// Unicode NameStartChar/NameChar production, which is out of scope per
// spec.md §1 (the Unicode regex helper is an external collaborator).
const defaultNamePattern = `[A-Za-z_][A-Za-z0-9_.\-]*`

var identifierShapeRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\-]*$`)

// tokenizer is the compiled, 5-alternative regex described in spec.md
// §4.B, plus enough bookkeeping to classify which alternative fired for a
// given match.
type tokenizer struct {
	re        *regexp.Regexp
	registry  *Registry
	nGroups   int // capture groups before the 5 top-level ones (always 0 here)
}

// buildTokenizer synthesizes one regular expression from r's registered
// kinds, in the fixed group order literal / symbols / name / unknown /
// whitespace.
func buildTokenizer(r *Registry) (*tokenizer, error) {
	literalAlt := literalAlternative()
	symbolAlt := symbolAlternative(r)
	namePattern := defaultNamePattern
	unknownAlt := `\S`
	wsAlt := `\s+`

	pattern := "(" + literalAlt + ")|(" + symbolAlt + ")|(" + namePattern + ")|(" + unknownAlt + ")|(" + wsAlt + ")"
	re, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return nil, newParseError(CategoryInvalidSymbol, "failed to synthesize tokenizer: "+err.Error())
	}
	return &tokenizer{re: re, registry: r}, nil
}

func literalAlternative() string {
	singleQuoted := `'(?:[^']|'')*'`
	doubleQuoted := `"(?:[^"]|"")*"`
	numeric := `(?:\d+|\.\d+)(?:\.\d*)?(?:[Ee][+-]?\d+)?`
	return strings.Join([]string{singleQuoted, doubleQuoted, numeric}, "|")
}

// symbolAlternative assembles group 2: custom patterns first (most
// specific — e.g. axis-followed-by-"::" and function-followed-by-"("
// lookaheads), then name-like symbols longest-first, then string-shaped
// (multi-character, non-identifier) symbols longest-first, then a single
// character class for the remaining one-character symbols.
func symbolAlternative(r *Registry) string {
	var custom []string
	var nameLike []string
	var stringShaped []string
	var singleChar []rune

	for _, sym := range r.order {
		if isSpecialSymbol(sym) {
			continue
		}
		kind := r.kinds[sym]
		if kind.Pattern != "" {
			custom = append(custom, kind.Pattern)
			continue
		}
		if sym == "" {
			continue
		}
		runes := []rune(sym)
		if identifierShapeRE.MatchString(sym) {
			nameLike = append(nameLike, sym)
		} else if len(runes) == 1 {
			singleChar = append(singleChar, runes[0])
		} else {
			stringShaped = append(stringShaped, sym)
		}
	}

	sort.Slice(nameLike, func(i, j int) bool { return len(nameLike[i]) > len(nameLike[j]) })
	sort.Slice(stringShaped, func(i, j int) bool { return len(stringShaped[i]) > len(stringShaped[j]) })

	var parts []string
	parts = append(parts, custom...)
	if len(nameLike) > 0 {
		parts = append(parts, `\b(?:`+strings.Join(escapeAll(nameLike), "|")+`)\b(?![-.])`)
	}
	if len(stringShaped) > 0 {
		parts = append(parts, strings.Join(escapeAll(stringShaped), "|"))
	}
	if len(singleChar) > 0 {
		// QuoteMeta leaves '-' bare, which inside a class would form a range.
		parts = append(parts, "["+strings.ReplaceAll(regexp.QuoteMeta(string(singleChar)), "-", `\-`)+"]")
	}
	if len(parts) == 0 {
		// A grammar with no custom symbols at all still needs a valid
		// (never-matching) alternative to keep the overall pattern well formed.
		return `(?!)`
	}
	return strings.Join(parts, "|")
}

func escapeAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = regexp.QuoteMeta(s)
	}
	return out
}

// matchGroup identifies which of the 5 top-level alternatives fired for a
// regexp match produced against a prefix of the tokenizer's source. idx is
// the raw []int from FindStringSubmatchIndex.
type matchGroup int

const (
	groupNone matchGroup = iota
	groupLiteral
	groupSymbol
	groupName
	groupUnknown
	groupWhitespace
)

func classifyMatch(idx []int) (matchGroup, int, int) {
	// idx layout: [0]=full start [1]=full end, then pairs for groups 1..5.
	for g := 1; g <= 5; g++ {
		s, e := idx[2*g], idx[2*g+1]
		if s != -1 {
			return matchGroup(g), s, e
		}
	}
	return groupNone, -1, -1
}
