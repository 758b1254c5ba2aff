package transaction

import (
	"reflect"

	"github.com/pacwrap/pacwrap/config"
	"github.com/pacwrap/pacwrap/container"
)

// ApplyConfiguration persists the container's updated explicit-package
// list when it changed (or create is set), re-saving the existing
// dependency chain unchanged and bumping MetaVersion, grounded on
// TransactionHandle::apply_configuration.
func (h *Handle) ApplyConfiguration(handle *container.Handle, create bool) error {
	pkgs := h.explicitPackages()
	deps := handle.Instance.Dependencies

	if reflect.DeepEqual(pkgs, handle.Instance.ExplicitPackages) && !create {
		return nil
	}

	handle.Instance.Set(deps, pkgs)
	return config.SaveContainer(handle.Vars.ConfigPath, handle.Instance)
}
