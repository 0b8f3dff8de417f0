package model

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryWater    Category = "water"
	CategoryStudy    Category = "study"
	CategoryExercise Category = "exercise"
	CategoryWork     Category = "work"
	CategoryOther    Category = "other"
)

type CategoryInfo struct {
	Label  string
	Points int
}

var categoryInfo = map[Category]CategoryInfo{
	CategoryWater:    {Label: "Drink water", Points: 10},
	CategoryStudy:    {Label: "Study", Points: 30},
	CategoryExercise: {Label: "Exercise", Points: 25},
	CategoryWork:     {Label: "Work", Points: 20},
	CategoryOther:    {Label: "Other", Points: 10},
}

func Categories() []Category {
	return []Category{CategoryWater, CategoryStudy, CategoryExercise, CategoryWork, CategoryOther}
}

func (c Category) IsValid() bool {
	_, ok := categoryInfo[c]
	return ok
}

func (c Category) Label() string {
	if info, ok := categoryInfo[c]; ok {
		return info.Label
	}
	return string(c)
}

func (c Category) DefaultPoints() int {
	return categoryInfo[c].Points
}

// ParseCategory is case-insensitive and accepts "train" as the older name of
// exercise.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if c == "train" {
		c = CategoryExercise
	}
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, raw)
	}
	return c, nil
}
