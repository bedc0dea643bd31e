package term

// GetValue returns t with every bound variable replaced by its value, all
// the way down. Unbound variables are kept as they are. Subterms that
// contain no bound variables are shared, not copied.
//
// The result no longer depends on the trail for the bindings it resolved,
// which makes it the way to snapshot a solution before backtracking.
func GetValue(t Term) Term {
	t = Deref(t)
	c, ok := t.(*Compound)
	if !ok {
		return t
	}
	var args []Term
	for i, a := range c.args {
		v := GetValue(a)
		if args == nil && v != a {
			args = make([]Term, len(c.args))
			copy(args, c.args[:i])
		}
		if args != nil {
			args[i] = v
		}
	}
	if args == nil {
		return c
	}
	return &Compound{functor: c.functor, args: args, hash: c.hash, slots: c.slots}
}

// Copy returns a renamed copy of t: every unbound variable is replaced by
// a fresh variable from h, consistently through varMap. Bound variables
// are resolved. Ground subterms are shared.
//
// Pass the same varMap to several calls to rename them as one term.
func Copy(t Term, h *Heap, varMap map[*Var]*Var) Term {
	switch x := Deref(t).(type) {
	case *Var:
		nv, ok := varMap[x]
		if !ok {
			nv = h.NewVar()
			varMap[x] = nv
		}
		return nv
	case *Compound:
		var args []Term
		for i, a := range x.args {
			v := Copy(a, h, varMap)
			if args == nil && v != a {
				args = make([]Term, len(x.args))
				copy(args, x.args[:i])
			}
			if args != nil {
				args[i] = v
			}
		}
		if args == nil {
			return x
		}
		return &Compound{functor: x.functor, args: args, hash: x.hash, slots: x.slots}
	default:
		return x
	}
}

// Enumerate turns t into a rule template: each distinct unbound variable
// is replaced by a Slot, numbered from 0 in order of first occurrence.
// slots carries the numbering across calls so that a head and a body can
// share it; its final length is the template's variable count.
func Enumerate(t Term, slots map[*Var]Slot) Term {
	switch x := Deref(t).(type) {
	case *Var:
		s, ok := slots[x]
		if !ok {
			s = Slot(len(slots))
			slots[x] = s
		}
		return s
	case *Compound:
		args := make([]Term, len(x.args))
		for i, a := range x.args {
			args[i] = Enumerate(a, slots)
		}
		return NewCompound(x.functor, args...)
	default:
		return x
	}
}

// Instantiate builds a live term from a template, creating a fresh variable
// for each slot the first time it is seen. env holds the slot values and
// must be at least as long as the template's variable count.
func Instantiate(t Term, env []Term, h *Heap) Term {
	switch x := t.(type) {
	case Slot:
		if env[x] == nil {
			env[x] = h.NewVar()
		}
		return env[x]
	case *Compound:
		if !x.slots {
			return x
		}
		args := make([]Term, len(x.args))
		for i, a := range x.args {
			args[i] = Instantiate(a, env, h)
		}
		return &Compound{functor: x.functor, args: args, hash: x.hash}
	default:
		return x
	}
}

// UnifyHead unifies a template with a live term without building the
// template first. A slot seen for the first time simply takes the live
// subterm as its value, so matching a fact allocates nothing.
//
// Like Unify it leaves partial bindings behind on failure.
func UnifyHead(tmpl, t Term, env []Term, h *Heap, occursCheck bool) bool {
	for {
		switch x := tmpl.(type) {
		case Slot:
			if env[x] == nil {
				env[x] = t
				return true
			}
			return unify(env[x], t, h, occursCheck)
		case *Compound:
			if !x.slots {
				return unify(x, t, h, occursCheck)
			}
			t = h.Deref(t)
			switch y := t.(type) {
			case *Var:
				return bindVar(y, Instantiate(x, env, h), h, occursCheck)
			case *Compound:
				if len(x.args) != len(y.args) || x.hash != y.hash {
					return false
				}
				if x.functor != y.functor && x.functor.name != y.functor.name {
					return false
				}
				last := len(x.args) - 1
				for i := 0; i < last; i++ {
					if !UnifyHead(x.args[i], y.args[i], env, h, occursCheck) {
						return false
					}
				}
				tmpl, t = x.args[last], y.args[last]
				continue
			default:
				return false
			}
		default:
			return unify(x, t, h, occursCheck)
		}
	}
}
