package database

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"
)

// GradeSeed is one entry of the grade scale reference data.
type GradeSeed struct {
	Grade string `yaml:"grade"`
	Rank  int    `yaml:"rank"`
}

type gradeSeedFile struct {
	Grades []GradeSeed `yaml:"grades"`
}

// LoadGradeSeedFile reads the grade scale from a YAML file.
func LoadGradeSeedFile(path string) ([]GradeSeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grade seed file: %w", err)
	}
	defer f.Close()
	return ParseGradeSeeds(f)
}

// ParseGradeSeeds decodes and validates a grade scale document.
func ParseGradeSeeds(r io.Reader) ([]GradeSeed, error) {
	var doc gradeSeedFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode grade seeds: %w", err)
	}
	if len(doc.Grades) == 0 {
		return nil, fmt.Errorf("grade seed file has no grades")
	}

	grades := make(map[string]struct{}, len(doc.Grades))
	ranks := make(map[int]struct{}, len(doc.Grades))
	seeds := make([]GradeSeed, 0, len(doc.Grades))
	for _, g := range doc.Grades {
		grade := strings.TrimSpace(g.Grade)
		if grade == "" || len(grade) > 2 {
			return nil, fmt.Errorf("grade %q must be 1-2 characters", g.Grade)
		}
		if _, dup := grades[grade]; dup {
			return nil, fmt.Errorf("duplicate grade %q", grade)
		}
		if _, dup := ranks[g.Rank]; dup {
			return nil, fmt.Errorf("duplicate rank %d", g.Rank)
		}
		grades[grade] = struct{}{}
		ranks[g.Rank] = struct{}{}
		seeds = append(seeds, GradeSeed{Grade: grade, Rank: g.Rank})
	}
	return seeds, nil
}

// SeedGradeValues inserts missing grade values. Existing rows are left untouched.
func SeedGradeValues(ctx context.Context, db TxBeginner, seeds []GradeSeed) error {
	return WithTx(ctx, db, nil, func(tx *sqlx.Tx) error {
		const query = `INSERT INTO grade_values (grade, rank) VALUES ($1, $2) ON CONFLICT DO NOTHING`
		for _, seed := range seeds {
			if _, err := tx.ExecContext(ctx, query, seed.Grade, seed.Rank); err != nil {
				return fmt.Errorf("seed grade %s: %w", seed.Grade, err)
			}
		}
		return nil
	})
}
