//go:build !darwin && !freebsd && !linux

package dl

func dlopen(path string, o openOptions) (uintptr, error) {
	return 0, ErrUnsupported
}

func dlsym(handle uintptr, name string) (uintptr, error) {
	return 0, ErrUnsupported
}

func dlclose(handle uintptr) error {
	return ErrUnsupported
}

func registerFunc(fptr any, addr uintptr) {
	panic(ErrUnsupported)
}
