package primitive

import (
	"github.com/dcorbin/qlogo/internal/host"
	"github.com/dcorbin/qlogo/internal/registry"
)

// Register installs every built-in command and operator this package
// implements into reg. h supplies the host-dependent primitives (WAIT)
// that need real wall-clock timing rather than pure data manipulation.
func Register(reg *registry.Registry, h host.Host) {
	registerArithmetic(reg)
	registerData(reg)
	registerIO(reg)
	registerControl(reg, h)
	registerVars(reg)
	registerWorkspace(reg)
}
