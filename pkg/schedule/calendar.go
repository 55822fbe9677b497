package schedule

import "github.com/openswoop/coursebuilder/pkg/catalog"

// Event is a scheduled section placed on the weekly calendar.
type Event struct {
	CourseCode string `json:"courseCode"`
	CourseName string `json:"courseName"`
	Time       string `json:"time"`
	Days       string `json:"days"`
	StartHour  int    `json:"startHour"`
	EndHour    int    `json:"endHour"`
}

// Calendar projects entries onto the week. Sections without a well-formed
// "HH:MM-HH:MM" time are left off.
func Calendar(entries []Entry) []Event {
	events := make([]Event, 0, len(entries))
	for _, e := range entries {
		start, end, ok := catalog.Hours(e.Time)
		if !ok {
			continue
		}
		events = append(events, Event{
			CourseCode: e.CourseCode,
			CourseName: e.CourseName,
			Time:       e.Time,
			Days:       e.Days,
			StartHour:  start,
			EndHour:    end,
		})
	}
	return events
}

func (s *Service) Calendar() ([]Event, error) {
	entries, err := s.store.Entries()
	if err != nil {
		return nil, err
	}
	return Calendar(entries), nil
}
