//go:build darwin || freebsd || linux

package dl

import "github.com/ebitengine/purego"

func dlopen(path string, o openOptions) (uintptr, error) {
	mode := purego.RTLD_NOW
	if o.lazy {
		mode = purego.RTLD_LAZY
	}
	if o.global {
		mode |= purego.RTLD_GLOBAL
	} else {
		mode |= purego.RTLD_LOCAL
	}

	h, err := purego.Dlopen(path, mode)
	if err != nil {
		return 0, &LoadError{Path: path, Reason: err.Error()}
	}
	return h, nil
}

func dlsym(handle uintptr, name string) (uintptr, error) {
	return purego.Dlsym(handle, name)
}

func dlclose(handle uintptr) error {
	return purego.Dlclose(handle)
}

func registerFunc(fptr any, addr uintptr) {
	purego.RegisterFunc(fptr, addr)
}
