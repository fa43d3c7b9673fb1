// Package search resolves a location token into the cafes located there.
package search

import (
	"context"
	"fmt"
	"strings"

	"cafefinder/model"
)

// Finder is the part of the record store the engine reads from.
type Finder interface {
	FindByCity(ctx context.Context, pattern string) ([]model.CafeEntry, error)
	FindByZipcode(ctx context.Context, pattern string) ([]model.CafeEntry, error)
}

type Result struct {
	Location string
	Entries  []model.CafeEntry
	Found    bool
	Message  string
}

type Engine struct {
	finder Finder
}

func NewEngine(finder Finder) *Engine {
	return &Engine{finder: finder}
}

// Search returns the city matches followed by the zipcode matches, each in
// name order. An entry matching both fields is listed twice.
func (e *Engine) Search(ctx context.Context, location string) (Result, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return Result{}, fmt.Errorf("location: %w", model.ErrMissingField)
	}

	inCity, err := e.finder.FindByCity(ctx, location)
	if err != nil {
		return Result{}, err
	}
	inZip, err := e.finder.FindByZipcode(ctx, location)
	if err != nil {
		return Result{}, err
	}

	entries := make([]model.CafeEntry, 0, len(inCity)+len(inZip))
	entries = append(entries, inCity...)
	entries = append(entries, inZip...)

	res := Result{Location: location, Entries: entries}
	if len(entries) == 0 {
		res.Message = fmt.Sprintf("Sorry, nothing found near %s", location)
		return res, nil
	}
	res.Found = true
	res.Message = fmt.Sprintf("Cafes near %s", location)
	return res, nil
}
