package term

// OpType is one of the standard operator specifiers.
type OpType string

const (
	XFX OpType = "xfx"
	XFY OpType = "xfy"
	YFX OpType = "yfx"
	FY  OpType = "fy"
	FX  OpType = "fx"
	XF  OpType = "xf"
	YF  OpType = "yf"
)

// Op is a single operator definition.
type Op struct {
	Priority int
	Type     OpType
}

// ArgMax returns the highest priority allowed for the left and right
// operands. A prefix operator has no left operand.
func (o Op) ArgMax() (left, right int) {
	switch o.Type {
	case XFX:
		return o.Priority - 1, o.Priority - 1
	case XFY:
		return o.Priority - 1, o.Priority
	case YFX:
		return o.Priority, o.Priority - 1
	case FY:
		return 0, o.Priority
	case FX:
		return 0, o.Priority - 1
	case XF:
		return o.Priority - 1, 0
	case YF:
		return o.Priority, 0
	}
	return 0, 0
}

// Ops is an operator table split by position.
type Ops struct {
	prefix  map[string]Op
	infix   map[string]Op
	postfix map[string]Op
}

// NewOps returns an empty table.
func NewOps() *Ops {
	return &Ops{
		prefix:  map[string]Op{},
		infix:   map[string]Op{},
		postfix: map[string]Op{},
	}
}

// Add defines or redefines name. Priority 0 removes the definition.
func (o *Ops) Add(priority int, typ OpType, name string) {
	m := o.infix
	switch typ {
	case FY, FX:
		m = o.prefix
	case XF, YF:
		m = o.postfix
	}
	if priority == 0 {
		delete(m, name)
		return
	}
	m[name] = Op{Priority: priority, Type: typ}
}

// Prefix looks up a prefix definition.
func (o *Ops) Prefix(name string) (Op, bool) {
	op, ok := o.prefix[name]
	return op, ok
}

// Infix looks up an infix definition.
func (o *Ops) Infix(name string) (Op, bool) {
	op, ok := o.infix[name]
	return op, ok
}

// Postfix looks up a postfix definition.
func (o *Ops) Postfix(name string) (Op, bool) {
	op, ok := o.postfix[name]
	return op, ok
}

// IsOp reports whether name has any operator definition.
func (o *Ops) IsOp(name string) bool {
	_, p := o.prefix[name]
	_, i := o.infix[name]
	_, s := o.postfix[name]
	return p || i || s
}

var defaultOps = []struct {
	priority int
	typ      OpType
	names    []string
}{
	{1200, XFX, []string{":-", "-->"}},
	{1200, FX, []string{":-", "?-"}},
	{1150, FX, []string{"dynamic", "discontiguous", "initialization"}},
	{1100, XFY, []string{";", "|"}},
	{1050, XFY, []string{"->", "*->"}},
	{1000, XFY, []string{","}},
	{900, FY, []string{"\\+"}},
	{700, XFX, []string{
		"=", "\\=", "==", "\\==", "@<", "@>", "@=<", "@>=",
		"=..", "is", "=:=", "=\\=", "<", ">", "=<", ">=",
	}},
	{600, XFY, []string{":"}},
	{500, YFX, []string{"+", "-", "/\\", "\\/", "xor"}},
	{400, YFX, []string{"*", "/", "//", "rem", "mod", "div", "<<", ">>"}},
	{200, XFX, []string{"**"}},
	{200, XFY, []string{"^"}},
	{200, FY, []string{"-", "+", "\\"}},
}

// DefaultOps returns a fresh copy of the standard operator table.
func DefaultOps() *Ops {
	o := NewOps()
	for _, d := range defaultOps {
		for _, n := range d.names {
			o.Add(d.priority, d.typ, n)
		}
	}
	return o
}
