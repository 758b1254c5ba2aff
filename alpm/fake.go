package alpm

import "fmt"

// FakeHandle is an in-memory Handle used by resolver/transaction
// package tests, the same role the teacher's packagemanager test
// fixtures play for its PackageManager interface.
type FakeHandle struct {
	Sync      map[string]Package
	Local     map[string]Package
	Ignored   map[string]bool
	staged    []string
	removed   []string
	PrepareErr error
	CommitErr  error
}

var _ Handle = (*FakeHandle)(nil)

func NewFakeHandle() *FakeHandle {
	return &FakeHandle{
		Sync:    make(map[string]Package),
		Local:   make(map[string]Package),
		Ignored: make(map[string]bool),
	}
}

func (f *FakeHandle) GetPackage(name string) (Package, bool) {
	if p, ok := f.Sync[name]; ok {
		return p, true
	}
	for _, p := range f.Sync {
		for _, provided := range p.Provides {
			if provided == name {
				return p, true
			}
		}
	}
	return Package{}, false
}

func (f *FakeHandle) GetLocalPackage(name string) (Package, bool) {
	if p, ok := f.Local[name]; ok {
		return p, true
	}
	for _, p := range f.Local {
		for _, provided := range p.Provides {
			if provided == name {
				return p, true
			}
		}
	}
	return Package{}, false
}

func (f *FakeHandle) LocalPackages() []Package {
	out := make([]Package, 0, len(f.Local))
	for _, p := range f.Local {
		out = append(out, p)
	}
	return out
}

func (f *FakeHandle) RequiredBy(name string) []string {
	var out []string
	for _, p := range f.Local {
		for _, dep := range p.Dependencies {
			if dep == name {
				out = append(out, p.Name)
			}
		}
	}
	return out
}

func (f *FakeHandle) SyncNewVersion(name string) (string, bool) {
	local, ok := f.Local[name]
	if !ok {
		return "", false
	}
	sync, ok := f.Sync[name]
	if !ok || sync.Version == local.Version {
		return "", false
	}
	return sync.Version, true
}

func (f *FakeHandle) AddIgnorePkg(name string) error {
	f.Ignored[name] = true
	return nil
}

func (f *FakeHandle) RemoveIgnorePkg(name string) error {
	delete(f.Ignored, name)
	return nil
}

func (f *FakeHandle) TransAddPkg(name string) error {
	f.staged = append(f.staged, name)
	return nil
}

func (f *FakeHandle) TransRemovePkg(name string) error {
	f.removed = append(f.removed, name)
	return nil
}

func (f *FakeHandle) TransAdd() []string    { return f.staged }
func (f *FakeHandle) TransRemove() []string { return f.removed }

func (f *FakeHandle) SetReason(name string, reason PackageReason) error {
	p, ok := f.Local[name]
	if !ok {
		return fmt.Errorf("package %q not installed", name)
	}
	p.Reason = reason
	f.Local[name] = p
	return nil
}

func (f *FakeHandle) Prepare() error { return f.PrepareErr }
func (f *FakeHandle) Commit() error  { return f.CommitErr }
func (f *FakeHandle) Release()       {}
