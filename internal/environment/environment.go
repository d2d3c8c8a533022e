package environment

import (
	"it-solutions-hub/internal/database"
	"it-solutions-hub/internal/logging"
)

// Env gives controllers access to the content store and the logger.
// It is embedded in every controller, so handlers call env.FindServiceBySlug or env.LogErrorf directly.
type Env struct {
	database.Repository
	logging.Logger
}

// Environment constructs a new Env from a repository and a logger.
// A nil parameter is replaced by its no-op implementation.
func Environment(repository database.Repository, logger logging.Logger) *Env {
	if repository == nil {
		repository = &database.NullRepository{}
	}

	if logger == nil {
		logger = &logging.NullLogger{}
	}

	return &Env{repository, logger}
}

// Null returns an Env whose repository finds nothing and whose logger discards everything.
func Null() *Env {
	return Environment(nil, nil)
}
