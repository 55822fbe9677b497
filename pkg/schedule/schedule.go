package schedule

import (
	"fmt"
	"sort"
	"strings"

	"github.com/openswoop/coursebuilder/pkg/catalog"
)

// Entry is a scheduled section joined with its catalog row.
type Entry struct {
	ScheduleID int64 `db:"schedule_id" csv:"schedule_id" json:"scheduleId"`
	catalog.Section
}

// Store is the catalog and schedule persistence the Service validates
// against. Section returns nil, nil for an unknown id.
type Store interface {
	Section(id string) (*catalog.Section, error)
	Sections(ids []string) ([]catalog.Section, error)
	Children(lectureID string) ([]catalog.Section, error)
	Entries() ([]Entry, error)
	Insert(sectionIDs ...string) error
	Remove(entryID int64) error
}

// Rule names reported on a ValidationError.
const (
	RuleNotFound      = "not_found"
	RuleDuplicate     = "duplicate_section"
	RuleParent        = "parent_required"
	RuleOneLecture    = "one_lecture"
	RuleTimeConflict  = "time_conflict"
	RuleEmpty         = "empty_selection"
	RuleNoLecture     = "no_parent_lecture"
	RuleForeignChild  = "foreign_child"
	RuleDuplicateType = "duplicate_type"
	RuleMissingType   = "missing_type"
)

// ValidationError is a recoverable rejection with a message meant for the
// user. Lecture and Children are set when the rejection should re-prompt
// for a child section selection.
type ValidationError struct {
	Rule     string
	Message  string
	Lecture  *catalog.Section
	Children []catalog.Section
}

func (e *ValidationError) Error() string {
	return e.Message
}

func reject(rule, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// AddResult is the outcome of a successful Add. A non-empty Children asks
// the caller to pick the lecture's child sections next.
type AddResult struct {
	Section  catalog.Section   `json:"section"`
	Children []catalog.Section `json:"children,omitempty"`
}

func (s *Service) Add(sectionID string) (AddResult, error) {
	section, err := s.store.Section(sectionID)
	if err != nil {
		return AddResult{}, err
	}
	if section == nil {
		return AddResult{}, reject(RuleNotFound, "Course not found.")
	}

	entries, err := s.store.Entries()
	if err != nil {
		return AddResult{}, err
	}
	scheduled := scheduledIDs(entries)

	if scheduled[section.ID] {
		return AddResult{}, reject(RuleDuplicate, "This class section is already in your schedule.")
	}

	if !section.IsLecture() {
		hasParent := false
		for _, id := range section.ParentIDs() {
			if scheduled[id] {
				hasParent = true
				break
			}
		}
		if !hasParent {
			return AddResult{}, reject(RuleParent, "You must add the parent lecture before adding this section.")
		}
	} else if lectureScheduled(entries, section.CourseCode) {
		return AddResult{}, reject(RuleOneLecture, "You already have a lecture for %s in your schedule.", section.CourseCode)
	}

	for _, e := range entries {
		if catalog.Overlaps(*section, e.Section) {
			return AddResult{}, reject(RuleTimeConflict, "Time conflict with course: %s - %s (%s %s)",
				e.CourseCode, e.CourseName, e.Time, e.Days)
		}
	}

	if err := s.store.Insert(section.ID); err != nil {
		return AddResult{}, err
	}

	result := AddResult{Section: *section}
	if section.IsLecture() {
		children, err := s.store.Children(section.ID)
		if err != nil {
			return result, err
		}
		result.Children = children
	}
	return result, nil
}

// BatchResult is the outcome of a successful AddChildren. Inserted lists
// every section id that was scheduled, the lecture included when it was
// added along with its children.
type BatchResult struct {
	Lecture  catalog.Section `json:"lecture"`
	Inserted []string        `json:"inserted"`
}

// AddChildren schedules a set of child sections together with their parent
// lecture, inserting the lecture first when it is not scheduled yet.
func (s *Service) AddChildren(sectionIDs []string) (BatchResult, error) {
	if len(sectionIDs) == 0 {
		return BatchResult{}, reject(RuleEmpty, "You must select at least one section to add.")
	}

	first, err := s.store.Section(sectionIDs[0])
	if err != nil {
		return BatchResult{}, err
	}
	if first == nil {
		return BatchResult{}, reject(RuleNotFound, "Invalid section selected.")
	}
	parentIDs := first.ParentIDs()
	if len(parentIDs) == 0 {
		return BatchResult{}, reject(RuleNoLecture, "This section does not have associated parent information.")
	}

	entries, err := s.store.Entries()
	if err != nil {
		return BatchResult{}, err
	}
	scheduled := scheduledIDs(entries)

	lecture, err := s.findLecture(parentIDs, scheduled)
	if err != nil {
		return BatchResult{}, err
	}
	if lecture == nil {
		return BatchResult{}, reject(RuleNoLecture, "The parent lecture for this section could not be found.")
	}
	result := BatchResult{Lecture: *lecture}

	children, err := s.store.Children(lecture.ID)
	if err != nil {
		return result, err
	}
	reprompt := func(rule, format string, args ...interface{}) *ValidationError {
		e := reject(rule, format, args...)
		e.Lecture = lecture
		e.Children = children
		return e
	}

	selected, err := s.store.Sections(sectionIDs)
	if err != nil {
		return result, err
	}
	byID := make(map[string]catalog.Section, len(selected))
	for _, sec := range selected {
		byID[sec.ID] = sec
	}

	selectedTypes := make(map[string]bool)
	for _, id := range sectionIDs {
		child, ok := byID[id]
		if !ok {
			return result, reject(RuleNotFound, "One of the selected sections could not be found.")
		}
		if !child.HasParent(lecture.ID) {
			return result, reprompt(RuleForeignChild, "Section %s does not belong to %s.", child.ID, lecture.CourseCode)
		}
		if selectedTypes[child.Type] {
			return result, reprompt(RuleDuplicateType, "You can only select one %s section. Please try again.", child.Type)
		}
		selectedTypes[child.Type] = true
	}

	var missing []string
	for t := range requiredTypes(children) {
		if !selectedTypes[t] {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return result, reprompt(RuleMissingType, "The following types of sections are required but not selected: %s.",
			strings.Join(missing, ", "))
	}

	var inserts []string
	if !scheduled[lecture.ID] {
		if lectureScheduled(entries, lecture.CourseCode) {
			return result, reject(RuleOneLecture, "You already have a lecture for %s in your schedule.", lecture.CourseCode)
		}
		inserts = append(inserts, lecture.ID)
	}
	for _, id := range sectionIDs {
		if scheduled[id] {
			return result, reject(RuleDuplicate, "This class section is already in your schedule.")
		}
		inserts = append(inserts, id)
	}

	if err := s.store.Insert(inserts...); err != nil {
		return result, err
	}
	result.Inserted = inserts
	return result, nil
}

// findLecture resolves the parent lecture of a child section. A parent that
// is already scheduled wins; otherwise the first Lecture in list order.
func (s *Service) findLecture(parentIDs []string, scheduled map[string]bool) (*catalog.Section, error) {
	parents, err := s.store.Sections(parentIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*catalog.Section, len(parents))
	for i := range parents {
		if parents[i].IsLecture() {
			byID[parents[i].ID] = &parents[i]
		}
	}
	for _, id := range parentIDs {
		if lecture, ok := byID[id]; ok && scheduled[id] {
			return lecture, nil
		}
	}
	for _, id := range parentIDs {
		if lecture, ok := byID[id]; ok {
			return lecture, nil
		}
	}
	return nil, nil
}

// Remove deletes a schedule entry. Unknown ids are ignored and dependent
// child sections stay scheduled.
func (s *Service) Remove(entryID int64) error {
	return s.store.Remove(entryID)
}

func (s *Service) Entries() ([]Entry, error) {
	return s.store.Entries()
}

func scheduledIDs(entries []Entry) map[string]bool {
	ids := make(map[string]bool, len(entries))
	for _, e := range entries {
		ids[e.ID] = true
	}
	return ids
}

func lectureScheduled(entries []Entry, courseCode string) bool {
	for _, e := range entries {
		if e.IsLecture() && e.CourseCode == courseCode {
			return true
		}
	}
	return false
}

func requiredTypes(children []catalog.Section) map[string]bool {
	types := make(map[string]bool)
	for _, c := range children {
		types[c.Type] = true
	}
	return types
}
