package grades

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCompute(t *testing.T) {
	stats, err := Compute("CS_101", strings.NewReader("A\nA\nB\nF\n"))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Count("A") != 2 || stats.Count("B") != 1 || stats.Count("F") != 1 || stats.Count("C") != 0 {
		t.Errorf("counts = %v", stats.Counts)
	}
	if len(stats.Counts) != len(Letters) {
		t.Errorf("expected every letter to be reported, got %d", len(stats.Counts))
	}
	if stats.AverageGPA != 2.75 || stats.AverageGrade != "B-" {
		t.Errorf("average = %v %s", stats.AverageGPA, stats.AverageGrade)
	}
}

func TestComputeIgnoresUnknownTokens(t *testing.T) {
	stats, err := Compute("x", strings.NewReader("A-\r\nW\nP\n\nB+\n"))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 2 {
		t.Errorf("total = %d", stats.Total)
	}
	if stats.AverageGPA != 3.5 || stats.AverageGrade != "A-" {
		t.Errorf("average = %v %s", stats.AverageGPA, stats.AverageGrade)
	}
}

func TestComputeEmpty(t *testing.T) {
	stats, err := Compute("x", strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if stats.AverageGPA != 0 || stats.AverageGrade != "F" {
		t.Errorf("average = %v %s", stats.AverageGPA, stats.AverageGrade)
	}
}

func TestLetterForGPA(t *testing.T) {
	tests := []struct {
		gpa  float64
		want string
	}{
		{4.0, "A"}, {3.85, "A"}, {3.84, "A-"}, {3.5, "A-"}, {3.15, "B+"},
		{2.85, "B"}, {2.75, "B-"}, {2.5, "B-"}, {2.15, "C+"}, {1.85, "C"},
		{1.5, "C-"}, {1.15, "D+"}, {0.85, "D"}, {0.84, "F"}, {0, "F"},
	}
	for _, tt := range tests {
		if got := LetterForGPA(tt.gpa); got != tt.want {
			t.Errorf("LetterForGPA(%v) = %s, want %s", tt.gpa, got, tt.want)
		}
	}
}

func TestDirStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewDirStore(dir)

	if err := store.Put(ctx, "CS_101_Ada", []byte("A\nB\n")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	keys, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 || keys[0] != "CS_101_Ada" {
		t.Errorf("keys = %v", keys)
	}

	stats, err := Load(ctx, store, "CS_101_Ada")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 2 || stats.AverageGPA != 3.5 {
		t.Errorf("stats = %+v", stats)
	}

	for _, key := range []string{"missing", "../etc/passwd", "a/b", ""} {
		if _, err := Load(ctx, store, key); !errors.Is(err, ErrNotFound) {
			t.Errorf("Load(%q) = %v, want ErrNotFound", key, err)
		}
	}
}

func TestDirStoreMissingDir(t *testing.T) {
	keys, err := NewDirStore(filepath.Join(t.TempDir(), "nope")).List(context.Background())
	if err != nil || len(keys) != 0 {
		t.Errorf("List = %v, %v", keys, err)
	}
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	store := NewDirStore(t.TempDir())
	offerings := []Offering{
		{CourseCode: "CS-101", Instructor: "Ada Lovelace"},
		{CourseCode: "MATH-220", Instructor: "Emmy Noether"},
	}

	keys, err := Generate(ctx, store, rand.New(rand.NewSource(1)), offerings)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0] != "CS_101_Ada_Lovelace" || keys[1] != "MATH_220_Emmy_Noether" {
		t.Fatalf("keys = %v", keys)
	}

	for _, key := range keys {
		stats, err := Load(ctx, store, key)
		if err != nil {
			t.Fatal(err)
		}
		if stats.Total < minStudents || stats.Total > maxStudents {
			t.Errorf("%s has %d grades", key, stats.Total)
		}
	}
}

func TestRandomGradesUsesAlphabet(t *testing.T) {
	for _, g := range RandomGrades(rand.New(rand.NewSource(7)), 500) {
		if _, ok := points[g]; !ok {
			t.Fatalf("generated unknown grade %q", g)
		}
	}
}
