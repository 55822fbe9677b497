package report

import (
	"sort"

	"github.com/openswoop/coursebuilder/pkg/grades"
)

// GradeRow flattens one course's statistics for CSV and BigQuery.
type GradeRow struct {
	Course       string  `csv:"course" bigquery:"course"`
	Total        int     `csv:"total" bigquery:"total"`
	A            int     `csv:"A" bigquery:"a"`
	AMinus       int     `csv:"A-" bigquery:"a_minus"`
	BPlus        int     `csv:"B+" bigquery:"b_plus"`
	B            int     `csv:"B" bigquery:"b"`
	BMinus       int     `csv:"B-" bigquery:"b_minus"`
	CPlus        int     `csv:"C+" bigquery:"c_plus"`
	C            int     `csv:"C" bigquery:"c"`
	CMinus       int     `csv:"C-" bigquery:"c_minus"`
	DPlus        int     `csv:"D+" bigquery:"d_plus"`
	D            int     `csv:"D" bigquery:"d"`
	F            int     `csv:"F" bigquery:"f"`
	AverageGPA   float64 `csv:"average_gpa" bigquery:"average_gpa"`
	AverageGrade string  `csv:"average_grade" bigquery:"average_grade"`
}

func toGradeRow(s grades.Stats) GradeRow {
	return GradeRow{
		Course:       s.Course,
		Total:        s.Total,
		A:            s.Count("A"),
		AMinus:       s.Count("A-"),
		BPlus:        s.Count("B+"),
		B:            s.Count("B"),
		BMinus:       s.Count("B-"),
		CPlus:        s.Count("C+"),
		C:            s.Count("C"),
		CMinus:       s.Count("C-"),
		DPlus:        s.Count("D+"),
		D:            s.Count("D"),
		F:            s.Count("F"),
		AverageGPA:   s.AverageGPA,
		AverageGrade: s.AverageGrade,
	}
}

// GradeRows converts statistics into rows ordered by course.
func GradeRows(stats []grades.Stats) []GradeRow {
	rows := make(gradeReport, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, toGradeRow(s))
	}
	sort.Sort(rows)
	return rows
}

func WriteGrades(name string, stats []grades.Stats) error {
	return WriteCsv(GradeRows(stats), name+".csv")
}

type gradeReport []GradeRow

func (r gradeReport) Len() int {
	return len(r)
}

func (r gradeReport) Swap(i, j int) {
	r[i], r[j] = r[j], r[i]
}

func (r gradeReport) Less(i, j int) bool {
	return r[i].Course < r[j].Course
}
