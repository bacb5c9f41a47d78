package minimap

// Extractor derives symbols and call edges from already-decoded text.
// Implementations return an error only when the content cannot be parsed;
// the registry maps that to StatusParseError.
type Extractor interface {
	Extract(content string) ([]Symbol, []CallEdge, bool, error)
}

// DefaultSizeCeiling is the largest text handed to an extractor. Content
// above the ceiling is rejected before parsing, not partially parsed.
const DefaultSizeCeiling = 1 << 20

// Registry dispatches extraction by language tag. Adding a language is a
// pure registration; no engine logic changes.
type Registry struct {
	extractors  map[string]Extractor
	sizeCeiling int
}

// NewRegistry returns a registry with all built-in languages registered.
func NewRegistry() *Registry {
	r := &Registry{
		extractors:  make(map[string]Extractor),
		sizeCeiling: DefaultSizeCeiling,
	}

	r.Register("go", &goExtractor{})
	for lang, spec := range grammars() {
		r.Register(lang, newTreeSitterExtractor(spec))
	}
	return r
}

// NewEmptyRegistry returns a registry with no languages registered. Every
// extraction yields StatusUnsupported, which disables minimaps uniformly.
func NewEmptyRegistry() *Registry {
	return &Registry{
		extractors:  make(map[string]Extractor),
		sizeCeiling: DefaultSizeCeiling,
	}
}

// Register binds an extractor to a language tag, replacing any previous one.
func (r *Registry) Register(lang string, e Extractor) {
	r.extractors[lang] = e
}

// Supported reports whether a language has a registered extractor.
func (r *Registry) Supported(lang string) bool {
	_, ok := r.extractors[lang]
	return ok
}

// Extract produces the Minimap for one file. It never returns an error:
// unsupported languages and parse failures are statuses on the result.
// Identical (content, language) always yields an identical Minimap.
func (r *Registry) Extract(path, content, lang string) *Minimap {
	m := &Minimap{
		Path:     path,
		Language: lang,
		Symbols:  []Symbol{},
		Calls:    []CallEdge{},
	}

	extractor, ok := r.extractors[lang]
	if !ok {
		m.Status = StatusUnsupported
		return m
	}

	if len(content) > r.sizeCeiling {
		m.Status = StatusParseError
		return m
	}

	symbols, calls, truncated, err := extractor.Extract(content)
	if err != nil {
		m.Status = StatusParseError
		return m
	}

	m.Status = StatusOK
	if symbols != nil {
		m.Symbols = symbols
	}
	if calls != nil {
		m.Calls = calls
	}
	m.Truncated = truncated
	return m
}
