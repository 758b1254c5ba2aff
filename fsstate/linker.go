package fsstate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/safedep/dry/log"

	"github.com/pacwrap/pacwrap/container"
	"github.com/pacwrap/pacwrap/registry"
	"github.com/pacwrap/pacwrap/usefulerror"
)

// Linker walks and links every registered container's filesystem
// state, dependencies first, mirroring FileSystemStateSync's engage/
// link/wait pipeline. Where the original dispatches compose/delete/
// link work onto a raw thread pool and collects SaveState/LinkComplete
// messages over a channel, Linker uses golang.org/x/sync/errgroup —
// chosen over the teacher's guard.go WaitGroup+channel pattern since
// no bounded per-task timeout is required here (see DESIGN.md).
type Linker struct {
	reg       *registry.Registry
	statePath func(string) string

	mu        sync.Mutex
	published map[string]*Snapshot // this run's freshly obtained/linked state, by key
	linked    map[string]bool
}

// NewLinker returns a Linker over reg, persisting/loading snapshot
// files via statePath (normally container.Locations.StatePath).
func NewLinker(reg *registry.Registry, statePath func(string) string) *Linker {
	return &Linker{reg: reg, statePath: statePath, published: make(map[string]*Snapshot), linked: make(map[string]bool)}
}

// Engage links every handle in keys, recursing into dependencies
// first exactly as FileSystemStateSync.link does.
func (l *Linker) Engage(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if err := l.link(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (l *Linker) link(ctx context.Context, key string) error {
	l.mu.Lock()
	if l.linked[key] {
		l.mu.Unlock()
		return nil
	}
	l.mu.Unlock()

	handle := l.reg.GetOption(key)
	if handle == nil {
		return nil
	}

	for _, dep := range handle.Dependencies() {
		if err := l.link(ctx, dep); err != nil {
			return err
		}
	}

	var err error
	switch handle.Type() {
	case container.TypeAggregate:
		err = l.linkAggregate(ctx, handle)
	case container.TypeBase, container.TypeSlice:
		err = l.obtainSlice(ctx, handle)
	case container.TypeSymbolic:
		// excluded from filesystem-state entirely (spec.md §4.8).
	}
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.linked[key] = true
	l.mu.Unlock()
	return nil
}

// obtainSlice is the publish-only pass Base/Slice containers take:
// walk the container's own root and persist the result, making it
// available to any dependent Aggregate (filesystem.rs's obtain_slice).
func (l *Linker) obtainSlice(ctx context.Context, h *container.Handle) error {
	state := obtainState(h.Vars.Root)

	l.mu.Lock()
	l.published[h.Key] = state
	l.mu.Unlock()

	if state.Len() == 0 {
		log.Debugf("fsstate: %s produced an empty snapshot, skipping persist", h.Key)
		return nil
	}
	return Save(l.statePath(h.Key), state)
}

// linkAggregate is the full compose+delete+link "sink" pass only
// Aggregate containers undergo (spec.md §9 Open Question 3:
// Aggregate is a link target only, never a link source).
func (l *Linker) linkAggregate(ctx context.Context, h *container.Handle) error {
	composed := NewSnapshot()
	previous := NewSnapshot()

	for _, dep := range h.Dependencies() {
		depHandle := l.reg.GetOption(dep)
		if depHandle == nil {
			continue
		}

		l.mu.Lock()
		depState, ok := l.published[dep]
		l.mu.Unlock()
		if !ok || depState.Len() == 0 {
			depState = obtainState(depHandle.Vars.Root)
		}
		composed.Extend(depState)

		prevState, err := Load(l.statePath(dep), func(msg string) {
			log.Warnf("fsstate: %s previous state: %s", dep, msg)
		})
		if err != nil {
			return err
		}
		previous.Extend(prevState)
	}

	if err := deleteFiles(composed, previous, h.Vars.Root); err != nil {
		return err
	}
	if err := deleteDirectories(composed, previous, h.Vars.Root); err != nil {
		return err
	}
	if err := linkFilesystem(ctx, composed, h.Vars.Root); err != nil {
		return err
	}

	l.mu.Lock()
	l.published[h.Key] = composed
	l.mu.Unlock()
	return Save(l.statePath(h.Key), composed)
}

// obtainState walks root, classifying every entry and skipping
// package-manager state and ld.so.cache (spec.md §4.8), exactly as
// filesystem.rs's obtain_state does via WalkDir.
func obtainState(root string) *Snapshot {
	state := NewSnapshot()

	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || path == root {
			return nil
		}
		if excludedFromWalk(path) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if _, exists := state.Get(rel); exists {
			return nil
		}

		kind, ok := classify(info)
		if !ok {
			return nil
		}
		state.Insert(rel, Entry{Kind: kind, Source: path})
		return nil
	})

	return state
}

func classify(info os.FileInfo) (FileType, bool) {
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		return FileTypeSymLink, true
	case info.IsDir():
		return FileTypeDirectory, true
	case info.Mode().IsRegular():
		return FileTypeHardLink, true
	default:
		return 0, false
	}
}

// deleteFiles removes any HardLink/SymLink entry present in previous
// but absent from current, matching filesystem.rs's delete_files
// (files and symlinks are always removed when stale, unlike
// directories, which tolerate non-emptiness below).
func deleteFiles(current, previous *Snapshot, root string) error {
	var outerErr error
	previous.Range(func(rel string, e Entry) {
		if outerErr != nil || e.Kind == FileTypeDirectory {
			return
		}
		if _, stillPresent := current.Get(rel); stillPresent {
			return
		}

		target := filepath.Join(root, rel)
		if _, statErr := os.Lstat(target); statErr != nil {
			return
		}
		if err := os.Remove(target); err != nil {
			outerErr = usefulerror.Useful().Wrap(err).Msg("failed to remove stale file " + target)
		}
	})
	return outerErr
}

// deleteDirectories mirrors delete_files for Directory entries,
// tolerating ENOTEMPTY (a directory still holding files another
// container's link pass contributed stays in place).
func deleteDirectories(current, previous *Snapshot, root string) error {
	var outerErr error
	previous.Range(func(rel string, e Entry) {
		if outerErr != nil || e.Kind != FileTypeDirectory {
			return
		}
		if _, stillPresent := current.Get(rel); stillPresent {
			return
		}

		target := filepath.Join(root, rel)
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) && !isNotEmpty(err) {
			outerErr = usefulerror.Useful().Wrap(err).Msg("failed to remove stale directory " + target)
		}
	})
	return outerErr
}

func isNotEmpty(err error) bool {
	var errno syscall.Errno
	if pe, ok := err.(*os.PathError); ok {
		if e, ok := pe.Err.(syscall.Errno); ok {
			errno = e
		}
	}
	return errno == syscall.ENOTEMPTY
}

// linkFilesystem creates every entry in state under root concurrently,
// via errgroup, matching filesystem.rs's rayon par_iter link pass.
func linkFilesystem(ctx context.Context, state *Snapshot, root string) error {
	g, _ := errgroup.WithContext(ctx)

	state.Range(func(rel string, e Entry) {
		rel, e := rel, e
		g.Go(func() error {
			dest := filepath.Join(root, rel)
			switch e.Kind {
			case FileTypeDirectory:
				return os.MkdirAll(dest, 0755)
			case FileTypeSymLink:
				return createSoftLink(e.Source, dest)
			case FileTypeHardLink:
				return createHardLink(e.Source, dest)
			}
			return nil
		})
	})

	return g.Wait()
}

// createSoftLink mirrors filesystem.rs's create_soft_link: a no-op
// when dest already points at src, otherwise remove-and-relink.
func createSoftLink(src, dest string) error {
	if existing, err := os.Readlink(dest); err == nil && existing == src {
		return nil
	}
	_ = os.Remove(dest)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return usefulerror.Useful().Wrap(err).Msg("failed to create parent directory for " + dest)
	}
	if err := os.Symlink(src, dest); err != nil {
		return usefulerror.Useful().Wrap(err).Msg(fmt.Sprintf("failed to symlink %s -> %s", dest, src))
	}
	return nil
}

// createHardLink mirrors filesystem.rs's create_hard_link: a no-op
// when src and dest already share an inode, otherwise remove-and-link.
func createHardLink(src, dest string) error {
	if sameInode(src, dest) {
		return nil
	}
	if info, err := os.Lstat(dest); err == nil && info.IsDir() {
		_ = os.RemoveAll(dest)
	} else {
		_ = os.Remove(dest)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return usefulerror.Useful().Wrap(err).Msg("failed to create parent directory for " + dest)
	}
	if err := os.Link(src, dest); err != nil {
		return usefulerror.Useful().Wrap(err).Msg(fmt.Sprintf("failed to hard-link %s -> %s", dest, src))
	}
	return nil
}

func sameInode(a, b string) bool {
	infoA, err := os.Stat(a)
	if err != nil {
		return false
	}
	infoB, err := os.Stat(b)
	if err != nil {
		return false
	}
	sysA, ok := infoA.Sys().(*syscall.Stat_t)
	if !ok {
		return false
	}
	sysB, ok := infoB.Sys().(*syscall.Stat_t)
	if !ok {
		return false
	}
	return sysA.Ino == sysB.Ino && sysA.Dev == sysB.Dev
}
