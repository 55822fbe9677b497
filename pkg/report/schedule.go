package report

import (
	"io"

	"github.com/openswoop/coursebuilder/pkg/schedule"
)

type scheduleRow struct {
	ScheduleID int64  `csv:"schedule_id"`
	SectionID  string `csv:"section_id"`
	CourseCode string `csv:"course_code"`
	CourseName string `csv:"course_name"`
	Instructor string `csv:"instructor"`
	Type       string `csv:"type"`
	Time       string `csv:"time"`
	Days       string `csv:"days"`
}

func scheduleRows(entries []schedule.Entry) []scheduleRow {
	rows := make([]scheduleRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, scheduleRow{
			ScheduleID: e.ScheduleID,
			SectionID:  e.ID,
			CourseCode: e.CourseCode,
			CourseName: e.CourseName,
			Instructor: e.Instructor,
			Type:       e.Type,
			Time:       e.Time,
			Days:       e.Days,
		})
	}
	return rows
}

func MarshalSchedule(entries []schedule.Entry, w io.Writer) error {
	return MarshalCsv(scheduleRows(entries), w)
}

func WriteSchedule(name string, entries []schedule.Entry) error {
	return WriteCsv(scheduleRows(entries), name+".csv")
}
