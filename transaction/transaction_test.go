package transaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pacwrap/pacwrap/alpm"
	"github.com/pacwrap/pacwrap/container"
)

type fakeCommitter struct {
	ok  bool
	err error
}

func (f *fakeCommitter) Commit(h *Handle, inst *container.Handle, mode Mode) (bool, error) {
	return f.ok, f.err
}

func newTestHandle(queue []string) (*Handle, *alpm.FakeHandle) {
	fake := alpm.NewFakeHandle()
	meta := NewMetadata(queue)
	return NewHandle(fake, meta), fake
}

func TestIgnoreAndEnumerateForeign(t *testing.T) {
	h, fake := newTestHandle(nil)
	fake.Local["firefox"] = alpm.Package{Name: "firefox", Version: "1"}

	depFake := alpm.NewFakeHandle()
	depFake.Local["gtk3"] = alpm.Package{Name: "gtk3", Version: "1"}

	h.EnumerateForeign(depFake)
	assert.True(t, h.Meta.ForeignPkgs["gtk3"])
	assert.True(t, h.Meta.ResidentPkgs["firefox"])

	h.Meta.Mode = ModeLocal
	h.Ignore()
	assert.True(t, fake.Ignored["gtk3"])
}

func TestReadyFailsWhenEmpty(t *testing.T) {
	h, _ := newTestHandle(nil)
	err := h.Ready(NewUpgrade(false, false, false))
	require.Error(t, err)
}

func TestRunNothingToDoWhenQueueEmptyAndNoUpgrade(t *testing.T) {
	h, _ := newTestHandle(nil)
	inst := container.NewHandle("test", container.NewInstance(container.TypeBase, nil, nil), container.Variables{})

	_, err := Run(h, inst, NewUpgrade(false, false, false), FlagNone, Deps{
		DependencyAlpm:  func(string) (alpm.Handle, error) { return nil, nil },
		DepsUpdated:     func(*container.Handle) bool { return false },
		IsKeyringSynced: func() bool { return false },
		KeyringUpdate:   func(*container.Handle) error { return nil },
	}, nil, nil, &fakeCommitter{})
	require.Error(t, err)
}

func TestRunCommitsStagedInstall(t *testing.T) {
	h, fake := newTestHandle([]string{"firefox"})
	fake.Sync["firefox"] = alpm.Package{Name: "firefox", Version: "1"}

	inst := container.NewHandle("test", container.NewInstance(container.TypeBase, nil, nil), container.Variables{})

	updated, err := Run(h, inst, NewUpgrade(false, false, false), FlagNone, Deps{
		DependencyAlpm:  func(string) (alpm.Handle, error) { return nil, nil },
		DepsUpdated:     func(*container.Handle) bool { return false },
		IsKeyringSynced: func() bool { return false },
		KeyringUpdate:   func(*container.Handle) error { return nil },
	}, func(queue []string, ignored map[string]bool) ([]string, []alpm.Package, error) {
		return nil, []alpm.Package{{Name: "firefox"}}, nil
	}, nil, &fakeCommitter{ok: true})

	require.NoError(t, err)
	assert.True(t, updated)
	assert.Contains(t, fake.TransAdd(), "firefox")
}
