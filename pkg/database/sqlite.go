package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-gorp/gorp/v3"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/openswoop/coursebuilder/pkg/catalog"
	"github.com/openswoop/coursebuilder/pkg/grades"
	"github.com/openswoop/coursebuilder/pkg/persist"
	"github.com/openswoop/coursebuilder/pkg/schedule"
)

const (
	Sqlite   = "sqlite3"
	Postgres = "postgres"
)

const sectionColumns = "id, course_code, course_name, instructor, time, days, type, parent_id"

// ScheduleEntry is a row of the schedule table.
type ScheduleEntry struct {
	ID        int64  `db:"id"`
	SectionID string `db:"section_id"`
}

type Store struct {
	db    *sql.DB
	dbmap *gorp.DbMap
}

// ErrMissingCatalog is returned by Exists when the sqlite file is absent.
var ErrMissingCatalog = errors.New("catalog database not found")

// Exists checks that the catalog store has been created. Only sqlite files
// can be checked before connecting.
func Exists(driver, dsn string) error {
	if driver != Sqlite {
		return nil
	}
	if _, err := os.Stat(dsn); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrMissingCatalog, dsn)
		}
		return err
	}
	return nil
}

// Open connects to the catalog database, creating the tables if it's our
// first run.
func Open(driver, dsn string) (*Store, error) {
	var dialect gorp.Dialect
	switch driver {
	case Sqlite:
		dialect = gorp.SqliteDialect{}
	case Postgres:
		dialect = gorp.PostgresDialect{}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if driver == Sqlite {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	}

	dbmap := &gorp.DbMap{Db: db, Dialect: dialect}
	dbmap.AddTableWithName(catalog.Section{}, "courses").SetKeys(false, "ID")
	entries := dbmap.AddTableWithName(ScheduleEntry{}, "schedule").SetKeys(true, "ID")
	entries.ColMap("SectionID").SetUnique(true).SetNotNull(true)
	if err := dbmap.CreateTablesIfNotExists(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Store{db: db, dbmap: dbmap}, nil
}

// placeholders returns n bind variables for the current dialect, starting
// at argument offset.
func (s *Store) placeholders(offset, n int) string {
	vars := make([]string, n)
	for i := range vars {
		vars[i] = s.dbmap.Dialect.BindVar(offset + i)
	}
	return strings.Join(vars, ", ")
}

// ImportCatalog replaces every section with the dataset read from r.
func (s *Store) ImportCatalog(r io.Reader) (catalog.ImportResult, error) {
	tx, err := s.dbmap.Begin()
	if err != nil {
		return catalog.ImportResult{}, err
	}
	if _, err := tx.Exec("DELETE FROM courses"); err != nil {
		_ = tx.Rollback()
		return catalog.ImportResult{}, fmt.Errorf("failed to clear courses: %w", err)
	}
	result, err := catalog.Import(r, tx)
	if err != nil {
		_ = tx.Rollback()
		return result, err
	}
	return result, tx.Commit()
}

func (s *Store) AllSections() ([]catalog.Section, error) {
	var sections []catalog.Section
	_, err := s.dbmap.Select(&sections, "SELECT "+sectionColumns+" FROM courses ORDER BY course_code, id")
	return sections, err
}

func (s *Store) Section(id string) (*catalog.Section, error) {
	obj, err := s.dbmap.Get(catalog.Section{}, id)
	if err != nil || obj == nil {
		return nil, err
	}
	return obj.(*catalog.Section), nil
}

func (s *Store) Sections(ids []string) ([]catalog.Section, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := fmt.Sprintf("SELECT %s FROM courses WHERE id IN (%s)", sectionColumns, s.placeholders(0, len(ids)))
	var sections []catalog.Section
	_, err := s.dbmap.Select(&sections, query, args...)
	return sections, err
}

// Children returns the sections listing lectureID among their parents. The
// LIKE only narrows the scan; membership is decided on the split list.
func (s *Store) Children(lectureID string) ([]catalog.Section, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE parent_id LIKE %s ORDER BY type, id",
		sectionColumns, s.placeholders(0, 1))
	var candidates []catalog.Section
	if _, err := s.dbmap.Select(&candidates, query, "%"+lectureID+"%"); err != nil {
		return nil, err
	}
	var children []catalog.Section
	for _, c := range candidates {
		if c.HasParent(lectureID) {
			children = append(children, c)
		}
	}
	return children, nil
}

func (s *Store) Entries() ([]schedule.Entry, error) {
	var entries []schedule.Entry
	_, err := s.dbmap.Select(&entries, `
		SELECT s.id AS schedule_id, c.id, c.course_code, c.course_name, c.instructor,
		       c.time, c.days, c.type, c.parent_id
		FROM schedule s
		JOIN courses c ON s.section_id = c.id
		ORDER BY s.id`)
	return entries, err
}

// Insert adds one schedule entry per section id in a single transaction.
func (s *Store) Insert(sectionIDs ...string) error {
	tx, err := s.dbmap.Begin()
	if err != nil {
		return err
	}
	insert := persist.FlagDupes(tx)
	for _, id := range sectionIDs {
		if err := insert.Insert(&ScheduleEntry{SectionID: id}); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to schedule section %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (s *Store) Remove(entryID int64) error {
	_, err := s.dbmap.Exec("DELETE FROM schedule WHERE id = "+s.placeholders(0, 1), entryID)
	return err
}

func (s *Store) Offerings() ([]grades.Offering, error) {
	var offerings []grades.Offering
	query := fmt.Sprintf("SELECT DISTINCT course_code, instructor FROM courses WHERE type = %s ORDER BY course_code, instructor",
		s.placeholders(0, 1))
	_, err := s.dbmap.Select(&offerings, query, catalog.Lecture)
	return offerings, err
}

func (s *Store) Close() error {
	return s.db.Close()
}
