package grades

import (
	"bufio"
	"io"
	"math"
	"strings"
)

// Letters is the grade alphabet, best first.
var Letters = []string{"A", "A-", "B+", "B", "B-", "C+", "C", "C-", "D+", "D", "F"}

var points = map[string]float64{
	"A": 4.0, "A-": 3.7, "B+": 3.3, "B": 3.0, "B-": 2.7,
	"C+": 2.3, "C": 2.0, "C-": 1.7, "D+": 1.3, "D": 1.0, "F": 0.0,
}

var cutoffs = []struct {
	min    float64
	letter string
}{
	{3.85, "A"},
	{3.50, "A-"},
	{3.15, "B+"},
	{2.85, "B"},
	{2.50, "B-"},
	{2.15, "C+"},
	{1.85, "C"},
	{1.50, "C-"},
	{1.15, "D+"},
	{0.85, "D"},
}

type GradeCount struct {
	Grade string `json:"grade" csv:"grade"`
	Count int    `json:"count" csv:"count"`
}

// Stats is the distribution of one grade file.
type Stats struct {
	Course       string       `json:"course"`
	Counts       []GradeCount `json:"counts"`
	Total        int          `json:"total"`
	AverageGPA   float64      `json:"averageGpa"`
	AverageGrade string       `json:"averageGrade"`
}

// Count returns how many times grade appeared.
func (s Stats) Count(grade string) int {
	for _, c := range s.Counts {
		if c.Grade == grade {
			return c.Count
		}
	}
	return 0
}

// LetterForGPA maps a grade-point average onto the letter scale.
func LetterForGPA(gpa float64) string {
	for _, c := range cutoffs {
		if gpa >= c.min {
			return c.letter
		}
	}
	return "F"
}

// Compute reads one grade per line from r. Tokens outside the alphabet
// are ignored; an empty file averages 0.0.
func Compute(course string, r io.Reader) (Stats, error) {
	counts := make(map[string]int, len(Letters))
	var sum float64
	var total int

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		grade := strings.TrimSpace(scanner.Text())
		p, ok := points[grade]
		if !ok {
			continue
		}
		counts[grade]++
		sum += p
		total++
	}
	if err := scanner.Err(); err != nil {
		return Stats{}, err
	}

	stats := Stats{Course: course, Total: total}
	for _, letter := range Letters {
		stats.Counts = append(stats.Counts, GradeCount{Grade: letter, Count: counts[letter]})
	}
	if total > 0 {
		stats.AverageGPA = math.Round(sum/float64(total)*100) / 100
	}
	stats.AverageGrade = LetterForGPA(stats.AverageGPA)
	return stats, nil
}
