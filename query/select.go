package query

import (
	"context"
	"errors"

	"github.com/syssam/velq"
	"github.com/syssam/velq/expr"
	"github.com/syssam/velq/record"
	"github.com/syssam/velq/schema"
	"github.com/syssam/velq/schema/field"
)

// JoinType is the type of a join clause.
type JoinType string

// Join types.
const (
	InnerJoin JoinType = "JOIN"
	LeftJoin  JoinType = "LEFT JOIN"
)

// Join is a join clause of a built select statement.
type Join struct {
	Type     JoinType
	Source   *expr.Source
	On       expr.Expr
	Implicit bool // added by navigating a relationship.
}

// SelectBuilder builds a select statement. Its methods modify and return
// the builder; Build returns the immutable statement.
type SelectBuilder struct {
	runner   Runner
	items    []expr.Expr
	from     *expr.Source
	joins    []*joinClause
	where    []expr.Expr
	groupBy  []expr.Expr
	having   []expr.Expr
	orderBy  []expr.Ordering
	limit    *int
	offset   *int
	distinct bool
	errs     []error
}

type joinClause struct {
	typ JoinType
	src *expr.Source
	on  expr.Expr
}

// Select starts a select statement projecting the given items. Items are
// columns (possibly reached by navigation), aliases, aggregate functions
// or multisets. Without items, all columns of the FROM and explicitly
// joined sources are selected.
func Select(items ...expr.Expr) *SelectBuilder {
	b := &SelectBuilder{}
	for _, it := range items {
		if it == nil {
			b.errs = append(b.errs, velq.NewBuildError("select", "nil projection item"))
			continue
		}
		b.items = append(b.items, expr.Unwrap(it))
	}
	return b
}

// SelectFrom starts a select statement of all columns of src.
func SelectFrom(src *expr.Source) *SelectBuilder {
	return Select().From(src)
}

// Attach binds the builder to a runner used by its Fetch methods.
func (b *SelectBuilder) Attach(r Runner) *SelectBuilder {
	b.runner = r
	return b
}

// From sets the source of the statement.
func (b *SelectBuilder) From(src *expr.Source) *SelectBuilder {
	b.from = src
	return b
}

// JoinBuilder completes a join clause with its condition.
type JoinBuilder struct {
	b *SelectBuilder
	j *joinClause
}

// Join adds an inner join with src. The condition is set with On.
func (b *SelectBuilder) Join(src *expr.Source) *JoinBuilder {
	return b.join(InnerJoin, src)
}

// LeftJoin adds a left join with src. The condition is set with On.
func (b *SelectBuilder) LeftJoin(src *expr.Source) *JoinBuilder {
	return b.join(LeftJoin, src)
}

func (b *SelectBuilder) join(typ JoinType, src *expr.Source) *JoinBuilder {
	j := &joinClause{typ: typ, src: src}
	b.joins = append(b.joins, j)
	return &JoinBuilder{b: b, j: j}
}

// On sets the join condition. It may reference the sources declared up to
// and including the joined one.
func (j *JoinBuilder) On(pred expr.Expr) *SelectBuilder {
	j.j.on = expr.Unwrap(pred)
	return j.b
}

// Where adds predicates. All predicates, from all calls, are combined
// with AND.
func (b *SelectBuilder) Where(preds ...expr.Expr) *SelectBuilder {
	b.where = append(b.where, preds...)
	return b
}

// GroupBy appends grouping expressions, in order.
func (b *SelectBuilder) GroupBy(xs ...expr.Expr) *SelectBuilder {
	for _, x := range xs {
		b.groupBy = append(b.groupBy, expr.Unwrap(x))
	}
	return b
}

// Having adds predicates on groups, combined with AND.
func (b *SelectBuilder) Having(preds ...expr.Expr) *SelectBuilder {
	b.having = append(b.having, preds...)
	return b
}

// OrderBy appends ordering terms, in order. Columns order ascending;
// use Asc and Desc for an explicit direction.
func (b *SelectBuilder) OrderBy(terms ...expr.Orderer) *SelectBuilder {
	for _, t := range terms {
		b.orderBy = append(b.orderBy, t.Ordering())
	}
	return b
}

// Limit limits the number of returned rows.
func (b *SelectBuilder) Limit(n int) *SelectBuilder {
	if n < 0 {
		b.errs = append(b.errs, velq.NewBuildError("select", "negative limit %d", n))
	}
	b.limit = &n
	return b
}

// Offset skips the first n rows.
func (b *SelectBuilder) Offset(n int) *SelectBuilder {
	if n < 0 {
		b.errs = append(b.errs, velq.NewBuildError("select", "negative offset %d", n))
	}
	b.offset = &n
	return b
}

// Distinct removes duplicate rows. It cannot be combined with a multiset
// that references this statement, whose correlation columns would take part
// in the comparison.
func (b *SelectBuilder) Distinct() *SelectBuilder {
	b.distinct = true
	return b
}

// Err returns the errors recorded by the builder methods. Errors carried by
// expressions are reported by Build.
func (b *SelectBuilder) Err() error {
	return errors.Join(b.errs...)
}

// Multiset returns a nested projection of sub: for every row of the
// enclosing statement, the rows of sub are collected into a []record.Row.
// sub may reference the sources of the immediately enclosing statement.
func Multiset(sub *SelectBuilder) *expr.Nested {
	return expr.Nest(sub)
}

// Build validates the statement and returns its immutable form.
func (b *SelectBuilder) Build() (*SelectStatement, error) {
	return b.build(nil)
}

// Fetch builds and runs the statement and returns all rows.
func (b *SelectBuilder) Fetch(ctx context.Context) ([]record.Row, error) {
	stmt, err := b.Build()
	if err != nil {
		return nil, err
	}
	return Fetch(ctx, b.runner, stmt)
}

// FetchOne builds and runs the statement and returns its only row. It fails
// with a NoResultError for zero rows and a TooManyResultsError for more
// than one.
func (b *SelectBuilder) FetchOne(ctx context.Context) (record.Row, error) {
	stmt, err := b.Build()
	if err != nil {
		return record.Row{}, err
	}
	return FetchOne(ctx, b.runner, stmt)
}

// FetchOptional is like FetchOne, but zero rows is not an error.
func (b *SelectBuilder) FetchOptional(ctx context.Context) (record.Row, bool, error) {
	stmt, err := b.Build()
	if err != nil {
		return record.Row{}, false, err
	}
	return FetchOptional(ctx, b.runner, stmt)
}

// SelectStatement is a built select statement.
type SelectStatement struct {
	items    []projection
	hidden   []*expr.ColumnRef // columns of this statement bound into nested statements.
	outer    []*expr.ColumnRef // columns of the enclosing statement bound into this one.
	from     *expr.Source
	joins    []*Join
	where    expr.Expr
	groupBy  []expr.Expr
	having   expr.Expr
	orderBy  []expr.Ordering
	limit    *int
	offset   *int
	distinct bool
}

type projection struct {
	name   string
	x      expr.Expr // without the alias.
	alias  string    // explicit alias, rendered with AS.
	typ    field.Type
	nested *SelectStatement
}

func (*SelectStatement) statement() {}

// Label returns the name of the FROM table.
func (s *SelectStatement) Label() string { return s.from.Schema().Name }

// Fields returns the names of the projected fields, in order.
func (s *SelectStatement) Fields() []string {
	names := make([]string, len(s.items))
	for i, p := range s.items {
		names[i] = p.name
	}
	return names
}

// Joins returns the join clauses in rendering order, implicit joins
// included.
func (s *SelectStatement) Joins() []Join {
	joins := make([]Join, len(s.joins))
	for i, j := range s.joins {
		joins[i] = *j
	}
	return joins
}

// Correlated returns the columns of the enclosing statement that the
// statement references.
func (s *SelectStatement) Correlated() []*expr.ColumnRef {
	return append([]*expr.ColumnRef(nil), s.outer...)
}

// scope holds the sources of a statement being built, keyed by alias.
type scope struct {
	sources map[string]*schema.Table
	parent  *scope
}

func (sc *scope) lookup(key string) (*schema.Table, bool) {
	if sc == nil {
		return nil, false
	}
	t, ok := sc.sources[key]
	return t, ok
}

// selectState accumulates the implicit joins and correlated references of
// a statement during Build.
type selectState struct {
	stmt     *SelectStatement
	sc       *scope
	rootJoin map[string]JoinType // root alias -> join type; FROM is absent.
	paths    map[string]*Join    // path key -> implicit join.
	hang     map[string][]*Join  // root alias -> implicit joins hanging off it.
	outer    map[string]bool
}

func (b *SelectBuilder) build(parent *scope) (*SelectStatement, error) {
	if err := b.Err(); err != nil {
		return nil, err
	}
	if b.from == nil {
		return nil, velq.NewBuildError("select", "missing FROM source")
	}
	if err := checkRoot(b.from); err != nil {
		return nil, err
	}
	s := &selectState{
		stmt: &SelectStatement{
			from:     b.from,
			orderBy:  b.orderBy,
			limit:    b.limit,
			offset:   b.offset,
			distinct: b.distinct,
		},
		sc:       &scope{sources: map[string]*schema.Table{b.from.Key(): b.from.Schema()}, parent: parent},
		rootJoin: make(map[string]JoinType),
		paths:    make(map[string]*Join),
		hang:     make(map[string][]*Join),
		outer:    make(map[string]bool),
	}
	for _, j := range b.joins {
		if err := checkRoot(j.src); err != nil {
			return nil, err
		}
		if _, ok := s.sc.sources[j.src.Key()]; ok {
			return nil, velq.NewBuildError("select", "duplicate source alias %q", j.src.Key())
		}
		s.sc.sources[j.src.Key()] = j.src.Schema()
		s.rootJoin[j.src.Key()] = j.typ
	}
	// ON predicates see the sources declared up to their join.
	visible := map[string]*schema.Table{b.from.Key(): b.from.Schema()}
	for _, j := range b.joins {
		visible[j.src.Key()] = j.src.Schema()
		if j.on == nil {
			return nil, velq.NewBuildError("select", "join of %q has no ON condition", j.src.Key())
		}
		if err := s.use(j.on, visible, j.src.Key()); err != nil {
			return nil, err
		}
	}
	if err := s.projections(b); err != nil {
		return nil, err
	}
	var err error
	if s.stmt.where, err = s.predicate(b.where); err != nil {
		return nil, err
	}
	for _, g := range b.groupBy {
		if err := s.use(g, s.sc.sources, ""); err != nil {
			return nil, err
		}
	}
	s.stmt.groupBy = b.groupBy
	if s.stmt.having, err = s.predicate(b.having); err != nil {
		return nil, err
	}
	for _, o := range b.orderBy {
		if a, ok := o.X.(*expr.Alias); ok && s.projected(a.Name) {
			continue
		}
		if err := s.use(o.X, s.sc.sources, ""); err != nil {
			return nil, err
		}
	}
	s.stmt.joins = append(s.stmt.joins, s.hang[b.from.Key()]...)
	for _, j := range b.joins {
		s.stmt.joins = append(s.stmt.joins, &Join{Type: j.typ, Source: j.src, On: j.on})
		s.stmt.joins = append(s.stmt.joins, s.hang[j.src.Key()]...)
	}
	if err := s.checkAliases(); err != nil {
		return nil, err
	}
	if s.stmt.distinct && len(s.stmt.hidden) > 0 {
		return nil, velq.NewBuildError("select", "DISTINCT cannot be combined with a correlated multiset")
	}
	return s.stmt, nil
}

// checkAliases rejects statements where two sources, or a source and a
// correlated reference, are written with the same SQL alias. Path aliases
// join the key with underscores, so "film_actor.actor" is written as
// "film_actor_actor".
func (s *selectState) checkAliases() error {
	seen := make(map[string]string)
	add := func(src *expr.Source) error {
		alias := src.Alias()
		if key, ok := seen[alias]; ok && key != src.Key() {
			return velq.NewBuildError("select", "alias %q of %s collides with %s", alias, src.Key(), key)
		}
		seen[alias] = src.Key()
		return nil
	}
	if err := add(s.stmt.from); err != nil {
		return err
	}
	for _, j := range s.stmt.joins {
		if err := add(j.Source); err != nil {
			return err
		}
	}
	for _, ref := range s.stmt.outer {
		if err := add(ref.Source().Root()); err != nil {
			return err
		}
	}
	return nil
}

func checkRoot(src *expr.Source) error {
	if src == nil {
		return velq.NewBuildError("select", "nil source")
	}
	if err := src.Err(); err != nil {
		return err
	}
	if src.IsPath() {
		return velq.NewBuildError("select", "navigation path %s cannot be used as a source", src.Key())
	}
	return nil
}

func (s *selectState) projections(b *SelectBuilder) error {
	items := b.items
	if len(items) == 0 {
		for _, c := range b.from.Columns() {
			items = append(items, c)
		}
		for _, j := range b.joins {
			for _, c := range j.src.Columns() {
				items = append(items, c)
			}
		}
	}
	for _, it := range items {
		if err := it.Err(); err != nil {
			return err
		}
		p := projection{x: it}
		if a, ok := it.(*expr.Alias); ok {
			p.x, p.alias, p.name = a.X, a.Name, a.Name
		}
		switch x := p.x.(type) {
		case *expr.Nested:
			sub, ok := x.Query.(*SelectBuilder)
			if !ok {
				return velq.NewBuildError("select", "unsupported nested query %T", x.Query)
			}
			nested, err := sub.build(s.sc)
			if err != nil {
				return err
			}
			for _, ref := range nested.outer {
				if err := s.hide(ref); err != nil {
					return err
				}
			}
			p.nested = nested
			if p.name == "" {
				p.name = "multiset"
			}
		case *expr.ColumnRef:
			p.typ = x.Type()
			if p.name == "" {
				p.name = x.Name()
			}
		case *expr.Func:
			p.typ = x.Type()
			if p.name == "" {
				p.name = lowerName(x.Name)
			}
		default:
			if t, ok := x.(expr.Typed); ok {
				p.typ = t.Type()
			}
			if p.name == "" {
				p.name = x.Kind().String()
			}
		}
		if p.nested == nil {
			if err := s.use(p.x, s.sc.sources, ""); err != nil {
				return err
			}
		}
		s.stmt.items = append(s.stmt.items, p)
	}
	return nil
}

// hide adds a column of this statement that a nested statement binds.
func (s *selectState) hide(ref *expr.ColumnRef) error {
	for _, h := range s.stmt.hidden {
		if h.String() == ref.String() {
			return nil
		}
	}
	if err := s.use(ref, s.sc.sources, ""); err != nil {
		return err
	}
	s.stmt.hidden = append(s.stmt.hidden, ref)
	return nil
}

func (s *selectState) projected(name string) bool {
	for _, p := range s.stmt.items {
		if p.alias == name {
			return true
		}
	}
	return false
}

func (s *selectState) predicate(preds []expr.Expr) (expr.Expr, error) {
	switch len(preds) {
	case 0:
		return nil, nil
	case 1:
		p := expr.Unwrap(preds[0])
		if p == nil {
			return nil, velq.NewBuildError("select", "nil predicate")
		}
		if err := p.Err(); err != nil {
			return nil, err
		}
		return p, s.use(p, s.sc.sources, "")
	}
	p := expr.And(preds...)
	if err := p.Err(); err != nil {
		return nil, err
	}
	return p, s.use(p, s.sc.sources, "")
}

// use checks that every column of x is bound to a visible source, an
// enclosing statement source (a correlated reference), and registers the
// implicit joins of navigated columns. Paths rooted at self cannot be used.
func (s *selectState) use(x expr.Expr, visible map[string]*schema.Table, self string) error {
	if err := x.Err(); err != nil {
		return err
	}
	var errs []error
	err := expr.Walk(x, func(e expr.Expr) bool {
		switch e := e.(type) {
		case *expr.Nested:
			errs = append(errs, velq.NewBuildError("select", "multiset can only be used as a projection"))
		case *expr.ColumnRef:
			errs = append(errs, s.bind(e, visible, self))
		}
		return true
	})
	return errors.Join(append(errs, err)...)
}

func (s *selectState) bind(ref *expr.ColumnRef, visible map[string]*schema.Table, self string) error {
	src := ref.Source()
	root := src.Root()
	key := root.Key()
	if t, ok := visible[key]; ok && t == root.Schema() {
		if src.IsPath() {
			if key == self {
				return velq.NewBuildError("select", "ON condition of %q cannot navigate from it (%s)", self, ref)
			}
			s.register(src)
		}
		return nil
	}
	if _, ok := s.sc.sources[key]; !ok {
		if t, ok := s.sc.parent.lookup(key); ok && t == root.Schema() {
			if !s.outer[ref.String()] {
				s.outer[ref.String()] = true
				s.stmt.outer = append(s.stmt.outer, ref)
			}
			return nil
		}
		if s.sc.parent != nil {
			if t, ok := s.sc.parent.parent.lookup(key); ok && t == root.Schema() {
				return velq.NewBuildError("select", "%s is correlated to a statement more than one level up", ref)
			}
		}
	}
	return &velq.UnboundColumnError{Column: ref.String(), Source: key}
}

// register adds the implicit joins of a navigation path, once per path.
func (s *selectState) register(p *expr.Source) *Join {
	if j, ok := s.paths[p.Key()]; ok {
		return j
	}
	var left bool
	if parent := p.Parent(); parent.IsPath() {
		left = s.register(parent).Type == LeftJoin
	} else {
		left = s.rootJoin[parent.Key()] == LeftJoin
	}
	rel := p.Relationship()
	typ := InnerJoin
	if left || rel.Optional() {
		typ = LeftJoin
	}
	j := &Join{
		Type:     typ,
		Source:   p,
		On:       expr.Compare(expr.OpEQ, p.Parent().C(rel.SourceColumn.Name), p.C(rel.TargetColumn.Name)),
		Implicit: true,
	}
	s.paths[p.Key()] = j
	root := p.Root().Key()
	s.hang[root] = append(s.hang[root], j)
	return j
}

func lowerName(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
