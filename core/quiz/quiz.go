// Package quiz scores the learning style test.
package quiz

import (
	"io/fs"

	"github.com/pkg/errors"

	"github.com/jurnalspendapol-design/rubikon-mobile/core/content"
)

var (
	ErrAnswerCount = errors.New("jumlah jawaban tidak sesuai jumlah pertanyaan")
	ErrBadOption   = errors.New("pilihan jawaban tidak valid")
)

type (
	Option struct {
		Text string `yaml:"text" json:"text"`
		Type string `yaml:"type" json:"type"`
	}

	Question struct {
		Text    string   `yaml:"text" json:"text"`
		Options []Option `yaml:"options" json:"options"`
	}

	Result struct {
		Type        string   `yaml:"-" json:"type"`
		Title       string   `yaml:"title" json:"title"`
		Description string   `yaml:"description" json:"description"`
		Tips        []string `yaml:"tips" json:"tips"`
	}

	// Quiz is the test definition. Categories order breaks ties.
	Quiz struct {
		Categories []string          `yaml:"categories" json:"categories"`
		Questions  []Question        `yaml:"questions" json:"questions"`
		Results    map[string]Result `yaml:"results" json:"-"`
	}
)

// Load reads the quiz of dir.
func Load(fsys fs.FS, dir string) (*Quiz, error) {
	q := new(Quiz)
	if err := content.Decode(fsys, dir, content.QuizFile, q); err != nil {
		return nil, err
	}
	for typ, res := range q.Results {
		res.Type = typ
		q.Results[typ] = res
	}
	return q, nil
}

// Score counts the category of each chosen option (answers[i] is the option index of question i).
// The highest count wins, ties go to the first category.
func (q *Quiz) Score(answers []int) (Result, error) {
	if len(answers) != len(q.Questions) {
		return Result{}, ErrAnswerCount
	}
	counts := make(map[string]int, len(q.Categories))
	for i, a := range answers {
		opts := q.Questions[i].Options
		if a < 0 || a >= len(opts) {
			return Result{}, ErrBadOption
		}
		counts[opts[a].Type]++
	}

	best := ""
	for _, cat := range q.Categories {
		if best == "" || counts[cat] > counts[best] {
			best = cat
		}
	}
	return q.Results[best], nil
}
