package pipeline

import (
	"errors"

	"github.com/Kuber-code/Arrakis-Assessment/internal/migration"
	"github.com/Kuber-code/Arrakis-Assessment/internal/storage"
)

var (
	// ErrMissingConfig stops the pipeline before any stage runs.
	ErrMissingConfig = errors.New("missing configuration")
	// ErrMissingArtifact means a stage input has not been produced.
	ErrMissingArtifact = storage.ErrMissingArtifact
	// ErrNoMigration means the locator found no confirmed migration block.
	ErrNoMigration = migration.ErrNoMigration
)
