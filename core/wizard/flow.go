// Package wizard drives multi-step forms declared as an ordered list of steps.
// Step visibility is derived from the current answers on every call, so moving
// forward and backward always agree on which steps exist.
package wizard

import (
	"github.com/pkg/errors"
)

var (
	ErrUnknownStep = errors.New("unknown step")
	ErrLastStep    = errors.New("already at the last step")
	ErrFirstStep   = errors.New("already at the first step")
	ErrHiddenStep  = errors.New("step is not part of this form")
)

// Step is one page of a wizard. Steps are numbered from 1 in declaration order.
type Step[T any] struct {
	Key   string
	Title string
	// Visible reports whether the step applies to the answers; nil means always.
	Visible func(form T) bool
	// Ready validates the answers of the step before moving past it; nil means always ready.
	Ready func(form T) error
}

func (s Step[T]) visible(form T) bool {
	return s.Visible == nil || s.Visible(form)
}

func (s Step[T]) ready(form T) error {
	if s.Ready == nil {
		return nil
	}
	return s.Ready(form)
}

type Flow[T any] struct {
	steps []Step[T]
}

func New[T any](steps ...Step[T]) *Flow[T] {
	return &Flow[T]{steps: steps}
}

// Position locates a step within the visible steps of a form.
type Position struct {
	Step    int    `json:"step"`
	Key     string `json:"key"`
	Title   string `json:"title"`
	Index   int    `json:"index"` // 1-based, among visible steps
	Total   int    `json:"total"` // number of visible steps
	First   bool   `json:"first"`
	Last    bool   `json:"last"`
	Percent int    `json:"percent"`
}

// Len is the number of declared steps, visible or not.
func (f *Flow[T]) Len() int { return len(f.steps) }

// Step returns the declared step number n.
func (f *Flow[T]) Step(n int) (Step[T], error) {
	if n < 1 || n > len(f.steps) {
		return Step[T]{}, ErrUnknownStep
	}
	return f.steps[n-1], nil
}

// Visible returns the numbers of the steps that apply to form, in order.
func (f *Flow[T]) Visible(form T) []int {
	nums := make([]int, 0, len(f.steps))
	for i, s := range f.steps {
		if s.visible(form) {
			nums = append(nums, i+1)
		}
	}
	return nums
}

// First returns the first visible step.
func (f *Flow[T]) First(form T) (Position, error) {
	vis := f.Visible(form)
	if len(vis) == 0 {
		return Position{}, ErrUnknownStep
	}
	return f.Position(form, vis[0])
}

// Position describes step n for form.
func (f *Flow[T]) Position(form T, n int) (Position, error) {
	s, err := f.Step(n)
	if err != nil {
		return Position{}, err
	}
	vis := f.Visible(form)
	idx := indexOf(vis, n)
	if idx < 0 {
		return Position{}, ErrHiddenStep
	}
	pos := Position{
		Step:  n,
		Key:   s.Key,
		Title: s.Title,
		Index: idx + 1,
		Total: len(vis),
		First: idx == 0,
		Last:  idx == len(vis)-1,
	}
	if len(vis) > 1 {
		pos.Percent = idx * 100 / (len(vis) - 1)
	} else {
		pos.Percent = 100
	}
	return pos, nil
}

// Next validates step `current` and moves to the following visible step.
// `current` may have been hidden by the latest answers; the flow resumes after it.
func (f *Flow[T]) Next(form T, current int) (Position, error) {
	s, err := f.Step(current)
	if err != nil {
		return Position{}, err
	}
	if s.visible(form) {
		if err = s.ready(form); err != nil {
			return Position{}, err
		}
	}
	for n := current + 1; n <= len(f.steps); n++ {
		if f.steps[n-1].visible(form) {
			return f.Position(form, n)
		}
	}
	return Position{}, ErrLastStep
}

// Prev moves to the preceding visible step. No validation happens going back.
func (f *Flow[T]) Prev(form T, current int) (Position, error) {
	if _, err := f.Step(current); err != nil {
		return Position{}, err
	}
	for n := current - 1; n >= 1; n-- {
		if f.steps[n-1].visible(form) {
			return f.Position(form, n)
		}
	}
	return Position{}, ErrFirstStep
}

// Validate checks every visible step, in order, and returns the first failure.
func (f *Flow[T]) Validate(form T) error {
	for _, s := range f.steps {
		if !s.visible(form) {
			continue
		}
		if err := s.ready(form); err != nil {
			return err
		}
	}
	return nil
}

// Ready validates step n alone.
func (f *Flow[T]) Ready(form T, n int) error {
	s, err := f.Step(n)
	if err != nil {
		return err
	}
	return s.ready(form)
}

func indexOf(nums []int, n int) int {
	for i, v := range nums {
		if v == n {
			return i
		}
	}
	return -1
}
