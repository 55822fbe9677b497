package database

import (
	"io"

	"github.com/openswoop/coursebuilder/pkg/catalog"
	"github.com/openswoop/coursebuilder/pkg/grades"
	"github.com/openswoop/coursebuilder/pkg/schedule"
)

// Database is the relational catalog and schedule store.
type Database interface {
	io.Closer
	schedule.Store
	ImportCatalog(r io.Reader) (catalog.ImportResult, error)
	AllSections() ([]catalog.Section, error)
	Offerings() ([]grades.Offering, error)
}

var _ Database = (*Store)(nil)
