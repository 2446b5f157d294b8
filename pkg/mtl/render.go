package mtl

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/benjaminschreck/go-mtl/internal/lru"
)

// Renderer renders templates against an ordered list of resolvers.
// A Renderer is not modified by Render and may be shared between goroutines.
type Renderer struct {
	resolvers     []Resolver
	noneStr       string
	inplaceSep    string
	expandInplace bool
	sortInplace   bool
	strip         bool
	sanitize      func(string) string
	sanitizeValue func(string) string
	filterHandler FilterHandler
	maxDepth      int
	logger        *Logger
	cache         *lru.Cache[string, *Model]
	ownCache      bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithConfig applies the rendering settings of a configuration.
func WithConfig(config *Config) Option {
	return func(r *Renderer) {
		r.applyConfig(NewConfigWithDefaults(config))
	}
}

// WithNoneStr sets the text rendered for fields without a value.
func WithNoneStr(s string) Option {
	return func(r *Renderer) {
		r.noneStr = s
	}
}

// WithInplace joins multi-valued fields with sep instead of producing one result per value.
func WithInplace(sep string) Option {
	return func(r *Renderer) {
		r.expandInplace = true
		r.inplaceSep = sep
	}
}

// WithSortInplace sorts values before they are joined in place.
func WithSortInplace(sorted bool) Option {
	return func(r *Renderer) {
		r.sortInplace = sorted
	}
}

// WithStrip trims whitespace from each rendered result.
func WithStrip(strip bool) Option {
	return func(r *Renderer) {
		r.strip = strip
	}
}

// WithSanitize sets a function applied to each complete rendered result.
func WithSanitize(fn func(string) string) Option {
	return func(r *Renderer) {
		r.sanitize = fn
	}
}

// WithSanitizeValue sets a function applied to each resolved field value.
func WithSanitizeValue(fn func(string) string) Option {
	return func(r *Renderer) {
		r.sanitizeValue = fn
	}
}

// WithFilterHandler sets the handler consulted for non built-in filters.
func WithFilterHandler(h FilterHandler) Option {
	return func(r *Renderer) {
		r.filterHandler = h
	}
}

// WithMaxDepth bounds template nesting and variable expansion.
func WithMaxDepth(depth int) Option {
	return func(r *Renderer) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithModelCache gives the renderer its own parsed template cache (0 disables caching).
func WithModelCache(maxSize int, ttl time.Duration) Option {
	return func(r *Renderer) {
		r.cache = lru.New[string, *Model](lru.Config{MaxSize: maxSize, TTL: ttl})
		r.ownCache = true
	}
}

type modelCacheKey struct {
	maxSize int
	ttl     time.Duration
}

var (
	modelCaches   = make(map[modelCacheKey]*lru.Cache[string, *Model])
	modelCachesMu sync.Mutex
)

// sharedModelCache returns the process-wide model cache for a size and TTL.
// Renderers with the same cache settings share one cache.
func sharedModelCache(maxSize int, ttl time.Duration) *lru.Cache[string, *Model] {
	key := modelCacheKey{maxSize: maxSize, ttl: ttl}
	modelCachesMu.Lock()
	defer modelCachesMu.Unlock()
	cache, ok := modelCaches[key]
	if !ok {
		cache = lru.New[string, *Model](lru.Config{MaxSize: maxSize, TTL: ttl})
		modelCaches[key] = cache
	}
	return cache
}

// NewRenderer creates a renderer. Caller resolvers are consulted in order before
// the built-in punctuation, strip and format fields.
func NewRenderer(resolvers []Resolver, opts ...Option) *Renderer {
	r := &Renderer{
		resolvers: append([]Resolver(nil), resolvers...),
		logger:    GetLogger(),
	}
	r.applyConfig(GetGlobalConfig())
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) applyConfig(config *Config) {
	r.noneStr = config.NoneStr
	r.inplaceSep = config.InplaceSep
	r.expandInplace = config.ExpandInplace
	r.sortInplace = config.SortInplace
	r.strip = config.Strip
	r.maxDepth = config.MaxDepth
	if r.maxDepth <= 0 {
		r.maxDepth = DefaultConfig().MaxDepth
	}
	if !r.ownCache {
		r.cache = sharedModelCache(config.CacheMaxSize, config.CacheTTL)
	}
}

// Parse parses text with this renderer's nesting limit, using the model cache.
func (r *Renderer) Parse(text string) (*Model, error) {
	key := strconv.Itoa(r.maxDepth) + "\x00" + text
	return r.cache.GetOrLoad(key, func() (*Model, error) {
		return parse(text, r.maxDepth)
	})
}

// Render parses and renders a template string. An empty template renders to an
// empty list.
func (r *Renderer) Render(template string) ([]string, error) {
	model, err := r.Parse(template)
	if err != nil {
		return nil, err
	}
	results, err := r.RenderModel(model)
	if err != nil {
		return nil, err
	}
	r.logger.DebugTemplate(template, results)
	return results, nil
}

// RenderModel renders an already parsed model.
func (r *Renderer) RenderModel(model *Model) ([]string, error) {
	if model == nil || len(model.Pieces) == 0 {
		return []string{}, nil
	}

	st := newRenderState(r)
	results, err := st.renderStatement(model, 0)
	if err != nil {
		return nil, err
	}

	for i, s := range results {
		if r.strip {
			s = strings.TrimSpace(s)
		}
		if r.sanitize != nil {
			s = r.sanitize(s)
		}
		results[i] = s
	}
	return results, nil
}

// Render renders template with a renderer built from the global configuration.
func Render(template string, resolvers ...Resolver) ([]string, error) {
	return NewRenderer(resolvers).Render(template)
}

// renderState is created for each top-level render and holds the variables
// bound during it.
type renderState struct {
	r        *Renderer
	vars     *Variables
	resolver chain
}

func newRenderState(r *Renderer) *renderState {
	st := &renderState{r: r, vars: NewVariables(r.maxDepth)}
	st.resolver = append(chain(nil), r.resolvers...)
	st.resolver = append(st.resolver, punctuationResolver{}, formatResolver{vars: st.vars})
	return st
}

func (st *renderState) renderStatement(model *Model, depth int) ([]string, error) {
	if depth > st.r.maxDepth {
		return nil, NewSyntaxError("template nesting exceeds maximum depth of %d", st.r.maxDepth)
	}

	results := []string{""}
	for i := range model.Pieces {
		var err error
		results, err = st.renderPiece(&model.Pieces[i], results, depth)
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// nested renders a default, boolean or comparison value. A present but empty
// value renders to a single empty string.
func (st *renderState) nested(model *Model, depth int) ([]string, error) {
	if model == nil {
		return nil, nil
	}
	if len(model.Pieces) == 0 {
		return []string{""}, nil
	}
	return st.renderStatement(model, depth+1)
}

func (st *renderState) renderPiece(piece *Piece, results []string, depth int) ([]string, error) {
	t := piece.Template
	if t == nil {
		return appendToAll(results, piece.Pre+piece.Post), nil
	}

	var delim *string
	if t.Delim != nil {
		d, err := st.vars.ExpandSingle(*t.Delim, "delimiter")
		if err != nil {
			return nil, err
		}
		delim = &d
	}

	boolValues, err := st.nested(t.Bool, depth)
	if err != nil {
		return nil, err
	}
	defaults, err := st.nested(t.Default, depth)
	if err != nil {
		return nil, err
	}
	var comparison []string
	if t.Conditional != nil {
		if comparison, err = st.nested(t.Conditional.Value, depth); err != nil {
			return nil, err
		}
	}

	var resolved []Value
	switch {
	case t.IsVariableReference():
		name := t.Field[1:]
		values, ok := st.vars.Get(name)
		if !ok {
			return nil, NewSyntaxError("variable '%s' is not defined", name)
		}
		resolved = Strs(values...)

	case t.IsVariableAssignment():
		if t.Subfield == "" || t.Default == nil {
			return nil, NewSyntaxError("var must have a subfield and value in form {var:subfield,value}")
		}
		st.vars.Set(t.Subfield, defaults)
		return appendToAll(results, piece.Pre+piece.Post), nil

	default:
		values, ok, err := st.resolver.ResolveField(t.Field, t.Subfield, defaults)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &UnknownFieldError{Field: t.Field}
		}
		resolved = values
	}

	values := make([]string, 0, len(resolved))
	for _, v := range resolved {
		if !v.Valid {
			continue
		}
		s := v.String
		if st.r.sanitizeValue != nil {
			s = st.r.sanitizeValue(s)
		}
		values = append(values, s)
	}

	if delim != nil || st.r.expandInplace {
		sep := st.r.inplaceSep
		if delim != nil {
			sep = *delim
		}
		if len(values) > 0 {
			if st.r.sortInplace {
				sort.Strings(values)
			}
			values = []string{strings.Join(values, sep)}
		}
	}

	for _, f := range t.Filters {
		arg := f.Arg
		if f.HasArg {
			if arg, err = st.vars.ExpandSingle(f.Arg, "filter argument"); err != nil {
				return nil, err
			}
		}
		if values, err = applyFilter(f.Name, arg, f.HasArg, values, st.r.filterHandler); err != nil {
			return nil, err
		}
	}

	if len(t.FindReplace) > 0 && len(values) > 0 {
		if values, err = st.findReplace(t.FindReplace, values); err != nil {
			return nil, err
		}
	}

	if t.Conditional != nil {
		values, err = EvaluateCondition(t.Conditional.Operator, t.Conditional.Negate, values, comparison)
		if err != nil {
			return nil, err
		}
	}

	switch {
	case t.Bool != nil && len(values) > 0:
		values = boolValues
	case len(values) == 0 && t.Default != nil:
		values = defaults
	case len(values) == 0:
		values = []string{st.r.noneStr}
	}

	if st.r.logger.IsDebugMode() {
		st.r.logger.WithFields(Fields{
			"field":    t.Field,
			"subfield": t.Subfield,
			"depth":    depth,
		}).Debug("Rendered piece to %q", values)
	}

	return compose(results, piece.Pre, values, piece.Post), nil
}

func (st *renderState) findReplace(pairs []FindReplace, values []string) ([]string, error) {
	replacements := make([][2]string, len(pairs))
	for i, pair := range pairs {
		find, err := st.vars.ExpandSingle(pair.Find, "find/replace find value")
		if err != nil {
			return nil, err
		}
		repl, err := st.vars.ExpandSingle(pair.Replace, "find/replace replace value")
		if err != nil {
			return nil, err
		}
		replacements[i] = [2]string{find, repl}
	}

	out := make([]string, len(values))
	for i, v := range values {
		for _, r := range replacements {
			v = strings.ReplaceAll(v, r[0], r[1])
		}
		out[i] = v
	}
	return out, nil
}

// compose splices pre+value+post onto every accumulated result. Values vary
// slowest: results [r1 r2] with values [v1 v2] give [r1v1 r2v1 r1v2 r2v2].
func compose(results []string, pre string, values []string, post string) []string {
	out := make([]string, 0, len(results)*len(values))
	for _, v := range values {
		rendered := pre + v + post
		for _, r := range results {
			out = append(out, r+rendered)
		}
	}
	return out
}

func appendToAll(results []string, s string) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r + s
	}
	return out
}
