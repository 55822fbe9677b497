package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/openswoop/coursebuilder/pkg/persist"
)

// FieldCount is the number of comma-separated fields in a dataset line.
const FieldCount = 8

type ImportResult struct {
	Imported   int
	Skipped    int
	Duplicates int
}

// ParseLine splits one dataset line into a Section. ok is false unless the
// line has exactly FieldCount fields.
func ParseLine(line string) (Section, bool) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != FieldCount {
		return Section{}, false
	}
	return Section{
		ID:         fields[0],
		CourseCode: fields[1],
		CourseName: fields[2],
		Instructor: fields[3],
		Time:       fields[4],
		Days:       fields[5],
		Type:       fields[6],
		ParentID:   fields[7],
	}, true
}

// Import reads dataset lines from r and inserts each section through tx.
// Malformed lines, blank ones included, and duplicate ids are logged and
// skipped.
func Import(r io.Reader, tx persist.Transaction) (ImportResult, error) {
	var result ImportResult
	tx = persist.FlagDupes(tx)
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()

		section, ok := ParseLine(line)
		if !ok {
			log.Printf("Skipping invalid row %d: %s", lineNumber, strings.TrimSpace(line))
			result.Skipped++
			continue
		}
		if seen[section.ID] {
			log.Printf("Skipping duplicate row %d: id %s already imported", lineNumber, section.ID)
			result.Duplicates++
			continue
		}

		err := tx.Insert(&section)
		if errors.Is(err, persist.ErrDuplicate) {
			log.Printf("Skipping duplicate row %d: id %s already exists", lineNumber, section.ID)
			result.Duplicates++
			continue
		}
		if err != nil {
			return result, fmt.Errorf("failed to insert row %d: %w", lineNumber, err)
		}
		seen[section.ID] = true
		result.Imported++
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("failed to read dataset: %w", err)
	}
	return result, nil
}
