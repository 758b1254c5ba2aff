package aggregator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pacwrap/pacwrap/alpm"
	"github.com/pacwrap/pacwrap/container"
	"github.com/pacwrap/pacwrap/registry"
	"github.com/pacwrap/pacwrap/transaction"
)

type fakeCommitter struct{}

func (fakeCommitter) Commit(h *transaction.Handle, inst *container.Handle, mode transaction.Mode) (bool, error) {
	return true, nil
}

func TestAggregateUpgradesBaseBeforeAggregate(t *testing.T) {
	loc := container.Locations{DataDir: t.TempDir(), ConfigDir: t.TempDir(), CacheDir: t.TempDir()}
	reg := registry.New(loc)

	baseVars := container.NewVariables(loc, "base")
	baseInst := container.NewInstance(container.TypeBase, nil, nil)
	require.NoError(t, reg.Add("base", container.NewHandle("base", baseInst, baseVars)))

	aggVars := container.NewVariables(loc, "agg")
	aggInst := container.NewInstance(container.TypeAggregate, []string{"base"}, nil)
	require.NoError(t, reg.Add("agg", container.NewHandle("agg", aggInst, aggVars)))

	fakeAlpm := alpm.NewFakeHandle()
	fakeAlpm.Sync["firefox"] = alpm.Package{Name: "firefox", Version: "2"}
	fakeAlpm.Local["firefox"] = alpm.Package{Name: "firefox", Version: "1"}

	a := New(reg, map[string][]string{}, transaction.NewUpgrade(true, false, false), transaction.FlagNone, "",
		func(*container.Handle) (alpm.Handle, error) { return fakeAlpm, nil },
		func(transaction.Type) transaction.Committer { return fakeCommitter{} },
		nil,
		loc.StatePath,
	)

	err := a.Aggregate(context.Background())
	require.NoError(t, err)
	assert.Contains(t, a.updated, "base")
}

func TestTargetedTransactOnlyRunsTarget(t *testing.T) {
	loc := container.Locations{DataDir: t.TempDir(), ConfigDir: t.TempDir(), CacheDir: t.TempDir()}
	reg := registry.New(loc)

	baseVars := container.NewVariables(loc, "base")
	baseInst := container.NewInstance(container.TypeBase, nil, nil)
	require.NoError(t, reg.Add("base", container.NewHandle("base", baseInst, baseVars)))

	fakeAlpm := alpm.NewFakeHandle()
	fakeAlpm.Sync["firefox"] = alpm.Package{Name: "firefox", Version: "2"}
	fakeAlpm.Local["firefox"] = alpm.Package{Name: "firefox", Version: "1"}

	a := New(reg, map[string][]string{}, transaction.NewUpgrade(true, false, false), transaction.FlagNone, "base",
		func(*container.Handle) (alpm.Handle, error) { return fakeAlpm, nil },
		func(transaction.Type) transaction.Committer { return fakeCommitter{} },
		nil,
		loc.StatePath,
	)

	require.NoError(t, a.Aggregate(context.Background()))
	assert.Equal(t, []string{"base"}, a.updated)
}
