package projection

// Entity is anything that can be projected.
type Entity interface {
	ProjectionSchema() *Schema
	ProjectionFields() []Field
}

// Field is one declared field of an entity, in declaration order.
type Field struct {
	name  string
	value any
	omit  bool
	rel   *link
}

type link struct {
	key    string
	one    Entity
	many   []Entity
	isMany bool
	loaded bool
}

// Name returns the output name of the field.
func (f Field) Name() string { return f.name }

// Value declares a plain attribute.
func Value(name string, v any) Field {
	return Field{name: name, value: v}
}

// Optional declares an attribute that is left out of the output entirely when v is nil.
func Optional[T any](name string, v *T) Field {
	if v == nil {
		return Field{name: name, omit: true}
	}
	return Field{name: name, value: *v}
}

// One declares a to-one relation. A nil pointer means the relation was not loaded.
func One[T any, P interface {
	*T
	Entity
}](name, key string, p P) Field {
	l := &link{key: key}
	if p != nil {
		l.one = p
		l.loaded = true
	}
	return Field{name: name, rel: l}
}

// Many declares a to-many relation. A nil slice means the relation was not loaded;
// an empty non-nil slice is a loaded, empty relation.
func Many[T any, P interface {
	*T
	Entity
}](name, key string, items []T) Field {
	l := &link{key: key, isMany: true}
	if items != nil {
		l.loaded = true
		l.many = make([]Entity, len(items))
		for i := range items {
			l.many[i] = P(&items[i])
		}
	}
	return Field{name: name, rel: l}
}

// Project renders a single entity. The context is validated against the
// entity's schema before anything is rendered.
func Project(e Entity, sel Selection, ctx Context) (*Record, error) {
	if err := e.ProjectionSchema().Validate(ctx); err != nil {
		return nil, err
	}
	return project(e, sel, ctx), nil
}

// ProjectAll renders a collection with the same selection and context. The
// context is validated even when the collection is empty.
func ProjectAll[T any, P interface {
	*T
	Entity
}](items []T, sel Selection, ctx Context) ([]*Record, error) {
	if err := P(new(T)).ProjectionSchema().Validate(ctx); err != nil {
		return nil, err
	}
	out := make([]*Record, len(items))
	for i := range items {
		out[i] = project(P(&items[i]), sel, ctx)
	}
	return out, nil
}

func project(e Entity, sel Selection, ctx Context) *Record {
	fields := e.ProjectionFields()
	rec := newRecord(len(fields))
	for _, f := range fields {
		if f.omit || !sel.Allows(f.name) {
			continue
		}
		if f.rel == nil {
			rec.set(f.name, f.value)
			continue
		}
		rec.set(f.name, projectRelation(f.rel, ctx))
	}
	return rec
}

func projectRelation(l *link, ctx Context) any {
	if !l.loaded {
		return nil
	}
	sel := ctx.For(l.key)
	if !l.isMany {
		return project(l.one, sel, ctx)
	}
	out := make([]*Record, len(l.many))
	for i, item := range l.many {
		out[i] = project(item, sel, ctx)
	}
	return out
}
