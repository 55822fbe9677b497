package catalog

import (
	"strconv"
	"strings"
)

const (
	Lecture    = "Lecture"
	Lab        = "Lab"
	Discussion = "Discussion"
	Quiz       = "Quiz"
)

// TBA marks a section without a fixed meeting time.
const TBA = "TBA"

// Section is one offering of a course, as loaded from the catalog dataset.
type Section struct {
	ID         string `db:"id" csv:"id" json:"id"`
	CourseCode string `db:"course_code" csv:"course_code" json:"courseCode"`
	CourseName string `db:"course_name" csv:"course_name" json:"courseName"`
	Instructor string `db:"instructor" csv:"instructor" json:"instructor"`
	Time       string `db:"time" csv:"time" json:"time"`
	Days       string `db:"days" csv:"days" json:"days"`
	Type       string `db:"type" csv:"type" json:"type"`
	ParentID   string `db:"parent_id" csv:"parent_id" json:"parentId"`
}

func (s Section) IsLecture() bool {
	return s.Type == Lecture
}

// ParentIDs splits the slash-separated parent list, dropping empty entries.
func (s Section) ParentIDs() []string {
	var ids []string
	for _, id := range strings.Split(s.ParentID, "/") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// HasParent reports whether id is one of the section's parents.
func (s Section) HasParent(id string) bool {
	for _, p := range s.ParentIDs() {
		if p == id {
			return true
		}
	}
	return false
}

// Minutes parses a "HH:MM-HH:MM" time as clock integers with the colon
// stripped, so "09:30" becomes 930. ok is false for TBA or malformed times.
func Minutes(t string) (start, end int, ok bool) {
	if t == TBA {
		return 0, 0, false
	}
	parts := strings.Split(t, "-")
	if len(parts) != 2 {
		return 0, 0, false
	}
	start, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(parts[0]), ":", ""))
	if err != nil {
		return 0, 0, false
	}
	end, err = strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(parts[1]), ":", ""))
	if err != nil {
		return 0, 0, false
	}
	return start, end, true
}

// Hours returns the hour component of each end of a "HH:MM-HH:MM" time.
func Hours(t string) (start, end int, ok bool) {
	parts := strings.Split(t, "-")
	if len(parts) != 2 {
		return 0, 0, false
	}
	start, err := strconv.Atoi(strings.Split(strings.TrimSpace(parts[0]), ":")[0])
	if err != nil {
		return 0, 0, false
	}
	end, err = strconv.Atoi(strings.Split(strings.TrimSpace(parts[1]), ":")[0])
	if err != nil {
		return 0, 0, false
	}
	return start, end, true
}

// Overlaps reports whether two sections meet on a shared day at overlapping
// times. TBA and unparseable times never overlap.
func Overlaps(a, b Section) bool {
	start1, end1, ok := Minutes(a.Time)
	if !ok {
		return false
	}
	start2, end2, ok := Minutes(b.Time)
	if !ok {
		return false
	}
	if !strings.ContainsAny(a.Days, b.Days) {
		return false
	}
	return !(end1 <= start2 || end2 <= start1)
}

// Filter keeps sections whose code or name contains query. Matching is
// case-sensitive; an empty query keeps everything.
func Filter(sections []Section, query string) []Section {
	if query == "" {
		return sections
	}
	var matches []Section
	for _, s := range sections {
		if strings.Contains(s.CourseCode, query) || strings.Contains(s.CourseName, query) {
			matches = append(matches, s)
		}
	}
	return matches
}
