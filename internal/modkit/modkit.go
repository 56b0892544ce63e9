// Package modkit provides module wiring and core deps
package modkit

import (
	phttp "murmur/internal/platform/net/http"

	"murmur/internal/modkit/repokit"
	"murmur/internal/platform/config"
	"murmur/internal/platform/logger"
	"murmur/internal/platform/store/rds"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions; connection
// handles are constructed in main and injected, never looked up globally
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	RDS *rds.RDS
}

// Module is the common surface for modules that can mount routes and expose ports
// keep this tiny so modules stay decoupled
type Module interface {
	// MountRoutes mounts HTTP routes under the provided router seam
	MountRoutes(r phttp.Router)
	// Ports returns a module specific port set for cross wiring
	Ports() any
	// Name returns the module name
	Name() string
}
