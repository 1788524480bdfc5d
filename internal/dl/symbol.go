package dl

// Symbol is a typed function resolved from a Library.
// It borrows the library: Func is invalid once the library is closed.
type Symbol[F any] struct {
	Name string
	Addr uintptr
	Func F

	lib *Library
}

// Library returns the library the symbol was resolved from.
func (s *Symbol[F]) Library() *Library {
	return s.lib
}

// Resolve binds the export name to a Go function of type F.
//
// F declares the C signature; it is trusted, not checked.
func Resolve[F any](lib *Library, name string) (*Symbol[F], error) {
	addr, err := lib.Lookup(name)
	if err != nil {
		return nil, err
	}

	s := &Symbol[F]{Name: name, Addr: addr, lib: lib}
	if err := bindAddr(name, &s.Func, addr); err != nil {
		return nil, err
	}
	return s, nil
}
