package term

// MakeList builds the list [elems...|tail]. A nil tail means [].
func MakeList(elems []Term, tail Term) Term {
	if tail == nil {
		tail = Nil
	}
	for i := len(elems) - 1; i >= 0; i-- {
		tail = NewCompound(Dot, elems[i], tail)
	}
	return tail
}

// ListSlice walks a list and returns its elements and the dereferenced
// tail. For a proper list the tail is Nil; for a partial list it is an
// unbound variable; anything else means t is not a list.
func ListSlice(t Term) ([]Term, Term) {
	var elems []Term
	for {
		t = Deref(t)
		c, ok := t.(*Compound)
		if !ok || len(c.args) != 2 || c.functor.name != "." {
			return elems, t
		}
		elems = append(elems, c.args[0])
		t = c.args[1]
	}
}

// IsList reports whether t is a proper list.
func IsList(t Term) bool {
	_, tail := ListSlice(t)
	a, ok := tail.(*Atom)
	return ok && a.name == "[]"
}

// CodeList builds a list of character codes for s.
func CodeList(s string) Term {
	runes := []rune(s)
	elems := make([]Term, len(runes))
	for i, r := range runes {
		elems[i] = Int(r)
	}
	return MakeList(elems, nil)
}
