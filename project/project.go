package project

import (
	"context"

	"github.com/offscale/oasir"
	"github.com/offscale/oasir/resolver"
	"github.com/offscale/oasir/spec"
)

// Option configures a Projector.
type Option func(*Projector)

// WithLogger sets the logger used for projection warnings.
func WithLogger(logger oasir.Logger) Option {
	return func(p *Projector) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithKnownTypes registers the named-schema table: source schema names
// mapped to their sanitized identifiers. References to known names project
// to KindNamed instead of being inlined.
func WithKnownTypes(names map[string]string) Option {
	return func(p *Projector) { p.known = names }
}

// WithNamedEnums makes enum schemas carrying a title project as named
// enums instead of anonymous literal unions.
func WithNamedEnums() Option {
	return func(p *Projector) { p.namedEnums = true }
}

// Projector turns schemas into type descriptors, resolving references
// through a cache. A Projector is cheap; create one per document.
type Projector struct {
	doc        *spec.Document
	cache      *resolver.Cache
	known      map[string]string
	logger     oasir.Logger
	namedEnums bool
}

// New returns a projector for schemas belonging to doc.
func New(doc *spec.Document, cache *resolver.Cache, opts ...Option) *Projector {
	if cache == nil {
		cache = resolver.NewCache()
	}
	p := &Projector{
		doc:    doc,
		cache:  cache,
		logger: oasir.NopLogger{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// state tracks references in progress on one projection path, so recursive
// schemas terminate: revisiting an in-progress reference projects to Any.
type state struct {
	refs map[string]bool
}

// Project produces the canonical type descriptor for a schema. It never
// fails: malformed input degrades to Any for the affected slot.
func (p *Projector) Project(ctx context.Context, s *spec.Schema) *TypeDescriptor {
	return p.project(ctx, s, p.baseURI(), &state{refs: make(map[string]bool)})
}

func (p *Projector) baseURI() string {
	if p.doc != nil {
		return p.doc.URI
	}
	return ""
}

func (p *Projector) project(ctx context.Context, s *spec.Schema, baseURI string, st *state) *TypeDescriptor {
	// Boolean schemas and absent schemas first.
	if s == nil {
		return Any()
	}
	if s.IsAlways() {
		return Any()
	}
	if s.IsNever() {
		return Never()
	}

	base := p.projectCore(ctx, s, baseURI, st)

	// Conditionals conjoin the base with the disjunction of branches; a
	// missing branch leaves that side unconstrained.
	if s.If != nil && (s.Then != nil || s.Else != nil) {
		thenType, elseType := Any(), Any()
		if s.Then != nil {
			thenType = p.project(ctx, s.Then, baseURI, st)
		}
		if s.Else != nil {
			elseType = p.project(ctx, s.Else, baseURI, st)
		}
		base = Intersection(base, Union(thenType, elseType))
	}

	if len(s.DependentSchemas) > 0 || len(s.DependentRequired) > 0 {
		base = p.dependentBranches(ctx, s, base, baseURI, st)
	}

	if s.Nullable {
		base = withNull(base)
	}
	return base
}

// withNull unions a descriptor with null unless it already admits null.
func withNull(t *TypeDescriptor) *TypeDescriptor {
	switch t.Kind {
	case KindAny, KindNull:
		return t
	case KindUnion:
		for _, m := range t.Members {
			if m.Kind == KindNull {
				return t
			}
		}
	}
	return Union(t, Null())
}

// dependentBranches synthesizes "(trigger present AND dependent type) OR
// (trigger absent)" branches per trigger property, preserving the
// conditional semantics instead of collapsing to the base type.
func (p *Projector) dependentBranches(ctx context.Context, s *spec.Schema, base *TypeDescriptor, baseURI string, st *state) *TypeDescriptor {
	triggers := make(map[string]bool, len(s.DependentSchemas)+len(s.DependentRequired))
	for name := range s.DependentSchemas {
		triggers[name] = true
	}
	for name := range s.DependentRequired {
		triggers[name] = true
	}

	result := base
	for _, trigger := range sortedNames(triggers) {
		var dep *TypeDescriptor
		if ds := s.DependentSchemas[trigger]; ds != nil {
			dep = p.project(ctx, ds, baseURI, st)
		}
		if names := s.DependentRequired[trigger]; len(names) > 0 {
			shape := requiredShape(append([]string{trigger}, names...), base)
			if dep != nil {
				dep = Intersection(dep, shape)
			} else {
				dep = shape
			}
		}
		if dep == nil {
			continue
		}
		present := Intersection(result, dep)
		result = &TypeDescriptor{Kind: KindUnion, Members: []*TypeDescriptor{present, result}}
	}
	return result
}

// requiredShape builds an object descriptor requiring the named properties,
// reusing property types from base when it is an object.
func requiredShape(names []string, base *TypeDescriptor) *TypeDescriptor {
	byName := map[string]*TypeDescriptor{}
	if base != nil && base.Kind == KindObject {
		for _, prop := range base.Properties {
			byName[prop.Name] = prop.Type
		}
	}
	shape := &TypeDescriptor{Kind: KindObject}
	for _, name := range names {
		t := byName[name]
		if t == nil {
			t = Any()
		}
		shape.Properties = append(shape.Properties, Property{Name: name, Type: t, Required: true})
	}
	sortProperties(shape.Properties)
	return shape
}

// projectCore is the exhaustive dispatch over a schema's structural variant.
func (p *Projector) projectCore(ctx context.Context, s *spec.Schema, baseURI string, st *state) *TypeDescriptor {
	switch {
	case s.Ref != "":
		return p.projectRef(ctx, s.Ref, baseURI, st)

	case s.Const != nil:
		return &TypeDescriptor{Kind: KindLiteral, Literal: s.Const}

	case len(s.Enum) > 0:
		enum := &TypeDescriptor{Kind: KindEnum, Literals: s.Enum}
		if p.namedEnums && s.Title != "" {
			enum.Name = s.Title
		}
		return enum

	case isMultiType(s):
		return p.projectTypeList(s)

	case len(s.OneOf) > 0:
		return p.projectCombinator(ctx, KindUnion, s.OneOf, s.Discriminator, baseURI, st)
	case len(s.AnyOf) > 0:
		return p.projectCombinator(ctx, KindUnion, s.AnyOf, s.Discriminator, baseURI, st)
	case len(s.AllOf) > 0:
		return p.projectCombinator(ctx, KindIntersection, s.AllOf, s.Discriminator, baseURI, st)

	case s.ContentSchema != nil:
		// The inner schema's projection substitutes for the string framing.
		return p.project(ctx, s.ContentSchema, baseURI, st)

	case isStringy(s) && (s.ContentMediaType != "" || s.ContentEncoding != ""):
		if isTextualContent(s.ContentMediaType) && !isBinaryEncoding(s.ContentEncoding) {
			return Primitive("string", s.Format)
		}
		return &TypeDescriptor{Kind: KindBinary, Format: s.Format}

	case isStringy(s) && isBinaryFormat(s.Format):
		return &TypeDescriptor{Kind: KindBinary, Format: s.Format}

	case len(s.PrefixItems) > 0:
		return p.projectTuple(ctx, s, baseURI, st)

	case s.HasType("array") || s.Items != nil || s.UnevaluatedItems != nil:
		return p.projectArray(ctx, s, baseURI, st)

	case s.HasType("object") || len(s.Properties) > 0 || s.AdditionalProperties != nil ||
		len(s.PatternProperties) > 0 || s.UnevaluatedProperties != nil || len(s.Required) > 0:
		return p.projectObject(ctx, s, baseURI, st)

	default:
		if types := s.Types(); len(types) == 1 {
			return Primitive(types[0], s.Format)
		}
		// No structural hint at all.
		return Any()
	}
}

// projectRef resolves a reference to a descriptor: a named reference when
// the target name is known, otherwise the inlined projection of the target.
// Revisiting a reference already on this projection path yields Any, so
// recursive schemas terminate. An unknown external type is never an error.
func (p *Projector) projectRef(ctx context.Context, ref, baseURI string, st *state) *TypeDescriptor {
	if name := resolver.RefName(ref); name != "" {
		if id, ok := p.known[name]; ok {
			return Named(id)
		}
	}

	key := baseURI + "|" + ref
	if st.refs[key] {
		return Any()
	}
	st.refs[key] = true
	defer delete(st.refs, key)

	target, targetURI, err := p.cache.ResolveSchema(ctx, ref, baseURI, nil)
	if err != nil {
		p.logger.Warn("unresolvable schema reference", "ref", ref, "base", baseURI, "error", err)
		return Any()
	}
	return p.project(ctx, target, targetURI, st)
}

func (p *Projector) projectCombinator(ctx context.Context, kind Kind, members []*spec.Schema, disc *spec.Discriminator, baseURI string, st *state) *TypeDescriptor {
	projected := make([]*TypeDescriptor, 0, len(members))
	for _, member := range members {
		projected = append(projected, p.project(ctx, member, baseURI, st))
	}
	out := combine(kind, projected)
	if disc != nil && out.Kind == kind {
		out.Discriminator = &DiscriminatorHint{
			PropertyName: disc.PropertyName,
			Mapping:      disc.Mapping,
		}
	}
	return out
}

// isMultiType reports whether type is the 3.1+ array form with more than
// one entry.
func isMultiType(s *spec.Schema) bool {
	switch t := s.Type.(type) {
	case []any:
		return len(t) > 1
	case []string:
		return len(t) > 1
	default:
		return false
	}
}

// projectTypeList projects `type: [a, b, ...]` to a deduplicated union of
// primitives, with "null" as a member.
func (p *Projector) projectTypeList(s *spec.Schema) *TypeDescriptor {
	members := make([]*TypeDescriptor, 0, len(s.Types()))
	for _, name := range s.Types() {
		members = append(members, Primitive(name, s.Format))
	}
	return Union(members...)
}

func (p *Projector) projectTuple(ctx context.Context, s *spec.Schema, baseURI string, st *state) *TypeDescriptor {
	tuple := &TypeDescriptor{Kind: KindTuple}
	for _, item := range s.PrefixItems {
		tuple.Tuple = append(tuple.Tuple, p.project(ctx, item, baseURI, st))
	}

	tail := s.Items
	if tail == nil {
		tail = s.UnevaluatedItems
	}
	switch {
	case tail == nil:
		// Open tuple with an unconstrained tail.
	case tail.IsNever():
		tuple.Closed = true
	default:
		tuple.Elem = p.project(ctx, tail, baseURI, st)
	}
	return tuple
}

func (p *Projector) projectArray(ctx context.Context, s *spec.Schema, baseURI string, st *state) *TypeDescriptor {
	elem := s.Items
	if elem == nil {
		elem = s.UnevaluatedItems
	}
	arr := &TypeDescriptor{Kind: KindArray, Elem: Any()}
	if elem != nil {
		arr.Elem = p.project(ctx, elem, baseURI, st)
	}
	return arr
}

func (p *Projector) projectObject(ctx context.Context, s *spec.Schema, baseURI string, st *state) *TypeDescriptor {
	obj := &TypeDescriptor{Kind: KindObject}

	required := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		required[name] = true
	}
	for _, name := range sortedNames(keySet(s.Properties)) {
		obj.Properties = append(obj.Properties, Property{
			Name:     name,
			Type:     p.project(ctx, s.Properties[name], baseURI, st),
			Required: required[name],
		})
	}

	// Every keyword admitting extra keys contributes its value type to one
	// index signature. With additionalProperties: false and nothing else
	// admitting, the object is closed.
	var admitting []*TypeDescriptor
	if ap := s.AdditionalProperties; ap != nil && !ap.IsNever() {
		admitting = append(admitting, p.project(ctx, ap, baseURI, st))
	}
	for _, name := range sortedNames(keySet(s.PatternProperties)) {
		admitting = append(admitting, p.project(ctx, s.PatternProperties[name], baseURI, st))
	}
	if up := s.UnevaluatedProperties; up != nil && !up.IsNever() {
		admitting = append(admitting, p.project(ctx, up, baseURI, st))
	}

	switch {
	case len(admitting) > 0:
		obj.Additional = Union(admitting...)
	case s.AdditionalProperties.IsNever():
		obj.Closed = true
	}
	return obj
}

func isStringy(s *spec.Schema) bool {
	types := s.Types()
	return len(types) == 0 || s.HasType("string")
}

func isBinaryFormat(format string) bool {
	switch format {
	case "binary", "byte", "base64":
		return true
	default:
		return false
	}
}

func isBinaryEncoding(encoding string) bool {
	switch encoding {
	case "base64", "base64url", "binary", "base32", "base16":
		return true
	default:
		return false
	}
}

func keySet[V any](m map[string]V) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

func sortedNames(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sortStrings(names)
	return names
}
