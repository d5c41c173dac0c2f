package types

import "slices"

// CategoryGroup lets a single filter chip select several categories.
type CategoryGroup struct {
	Key     string     `json:"key"`
	Label   string     `json:"label"`
	Members []Category `json:"members"`
}

type CategoryConfig struct {
	Known  []Category          `json:"known"`
	Labels map[Category]string `json:"labels"`
	Order  []Category          `json:"order"`
	Groups []CategoryGroup     `json:"groups"`
}

func DefaultCategoryConfig() CategoryConfig {
	return CategoryConfig{
		Known: []Category{CategoryProfessional, CategoryStudent, CategoryApprentice},
		Labels: map[Category]string{
			CategoryProfessional: "Professional",
			CategoryStudent:      "Student",
			CategoryApprentice:   "Apprentice",
		},
		Order: []Category{CategoryProfessional, CategoryStudent, CategoryApprentice},
		Groups: []CategoryGroup{
			{Key: string(CategoryProfessional), Label: "Professional", Members: []Category{CategoryProfessional}},
			{Key: "SA", Label: "Student/Apprentice", Members: []Category{CategoryStudent, CategoryApprentice}},
		},
	}
}

func (c *CategoryConfig) IsKnown(cat Category) bool {
	return slices.Contains(c.Known, cat)
}

// Rank returns the sort position of a category, -1 when it has none.
func (c *CategoryConfig) Rank(cat Category) int {
	return slices.Index(c.Order, cat)
}

func (c *CategoryConfig) Group(key string) (*CategoryGroup, bool) {
	for i := range c.Groups {
		if c.Groups[i].Key == key {
			return &c.Groups[i], true
		}
	}
	return nil, false
}

func (c *CategoryConfig) Label(cat Category) string {
	if l, ok := c.Labels[cat]; ok {
		return l
	}
	return string(cat)
}
