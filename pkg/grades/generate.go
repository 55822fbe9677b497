package grades

import (
	"context"
	"log"
	"math/rand"
	"strings"
)

// Offering is a distinct course/instructor pair that gets a grade file.
type Offering struct {
	CourseCode string `db:"course_code"`
	Instructor string `db:"instructor"`
}

// Key names the grade file of an offering, e.g. "CS_101_Ada_Lovelace".
func (o Offering) Key() string {
	return strings.ReplaceAll(o.CourseCode, "-", "_") + "_" + strings.ReplaceAll(o.Instructor, " ", "_")
}

// Weights is the relative likelihood of each generated grade.
var Weights = map[string]int{
	"A": 15, "A-": 10, "B+": 15, "B": 20, "B-": 15,
	"C+": 10, "C": 8, "C-": 3, "D+": 2, "D": 1, "F": 1,
}

const (
	minStudents = 20
	maxStudents = 100
)

// RandomGrades draws n grades from Weights.
func RandomGrades(rng *rand.Rand, n int) []string {
	var pool []string
	for _, letter := range Letters {
		for i := 0; i < Weights[letter]; i++ {
			pool = append(pool, letter)
		}
	}
	out := make([]string, n)
	for i := range out {
		out[i] = pool[rng.Intn(len(pool))]
	}
	return out
}

// Generate writes a random grade file for every offering and returns the
// keys it wrote.
func Generate(ctx context.Context, s Store, rng *rand.Rand, offerings []Offering) ([]string, error) {
	var keys []string
	for _, o := range offerings {
		n := minStudents + rng.Intn(maxStudents-minStudents+1)
		data := strings.Join(RandomGrades(rng, n), "\n")
		key := o.Key()
		if err := s.Put(ctx, key, []byte(data)); err != nil {
			return keys, err
		}
		log.Printf("Grades for %s by %s written to %s", o.CourseCode, o.Instructor, key)
		keys = append(keys, key)
	}
	return keys, nil
}
