// internal/workers/generation/generate-record/generator.go
package generaterecord

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"formqa/internal/common/validation"
	"formqa/internal/models"
)

// Generator produces synthetic records. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator returns a generator whose output is reproducible for a given seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: time.Now,
	}
}

// New returns a time-seeded generator.
func New() *Generator {
	return NewGenerator(uint64(time.Now().UnixNano()))
}

// persona holds the latent attributes shared by all fields of one record.
type persona struct {
	male  bool
	first string
	last  string
}

// Generate builds one record for fields. It never fails.
func (g *Generator) Generate(fields []models.FieldDescriptor) models.GeneratedRecord {
	g.mu.Lock()
	defer g.mu.Unlock()

	record := models.GeneratedRecord{
		ID:     fmt.Sprintf("RESP-%d-%d", g.now().UnixMilli(), g.between(suffixMin, suffixMax)),
		Values: make(map[string]any, len(fields)),
	}

	p := g.persona()
	for _, f := range fields {
		record.Values[f.ID] = g.value(f, p)
	}
	return record
}

func (g *Generator) persona() persona {
	p := persona{male: g.rng.IntN(2) == 0}
	if p.male {
		p.first = g.pick(maleNames)
	} else {
		p.first = g.pick(femaleNames)
	}
	p.last = g.pick(lastNames)
	return p
}

func (g *Generator) value(f models.FieldDescriptor, p persona) any {
	label := strings.ToLower(f.Label)

	if strings.Contains(label, "roll") {
		return g.between(validation.RollMin, validation.RollMax)
	}
	if strings.Contains(label, "hostel") {
		return g.hostel(f, p)
	}

	switch f.Type {
	case models.FieldLongText:
		n := g.between(minSentences, maxSentences)
		parts := make([]string, n)
		for i := range parts {
			parts[i] = g.pick(sentences)
		}
		return strings.Join(parts, " ")
	case models.FieldEmail:
		return g.email(p)
	case models.FieldInteger:
		switch {
		case strings.Contains(label, "age"):
			return g.between(ageMin, ageMax)
		case strings.Contains(label, "year"):
			return g.between(yearMin, yearMax)
		default:
			return g.between(intMin, intMax)
		}
	case models.FieldDate:
		if strings.Contains(label, "birth") || strings.Contains(label, "dob") {
			return g.date(birthYearMin, birthYearMax)
		}
		return g.date(recentYearMin, recentYearMax)
	case models.FieldTime:
		return fmt.Sprintf("%02d:%02d", g.between(0, 23), quarterHours[g.rng.IntN(len(quarterHours))])
	case models.FieldLinearScale:
		return g.between(validation.ScaleMin, validation.ScaleMax)
	case models.FieldSingleSelect:
		if len(f.Options) > 0 {
			return g.pick(f.Options)
		}
		return g.placeholderOption()
	case models.FieldMultiSelect:
		return g.multiSelect(f.Options)
	default:
		return g.shortText(label, p)
	}
}

func (g *Generator) shortText(label string, p persona) string {
	switch {
	case strings.Contains(label, "name"):
		return p.first + " " + p.last
	case containsAny(label, "city", "address", "location"):
		return g.pick(cities)
	case containsAny(label, "phone", "mobile", "contact"):
		return fmt.Sprintf("+91 %d %d", g.between(phoneHeadMin, phoneHeadMax), g.between(phoneTailMin, phoneTailMax))
	case strings.Contains(label, "email"):
		return g.email(p)
	case containsAny(label, "dept", "department", "branch"):
		return g.pick(departments)
	case containsAny(label, "college", "university", "institute"):
		return g.pick(colleges)
	case strings.Contains(label, "color"):
		return g.pick(colors)
	case containsAny(label, "food", "dish"):
		return g.pick(foods)
	case containsAny(label, "hobby", "interest"):
		return g.pick(hobbies)
	default:
		return fmt.Sprintf("Answer %d", g.between(answerMin, answerMax))
	}
}

// hostel prefers declared options and falls back to the pool matching the record's gender.
func (g *Generator) hostel(f models.FieldDescriptor, p persona) any {
	var choice string
	switch {
	case len(f.Options) > 0:
		choice = g.pick(f.Options)
	case p.male:
		choice = g.pick(boysHostels)
	default:
		choice = g.pick(girlsHostels)
	}
	if f.Type == models.FieldMultiSelect {
		return []string{choice}
	}
	return choice
}

// multiSelect returns 1..min(3, n) distinct options. Without options it returns
// a single placeholder so the value keeps its list shape.
func (g *Generator) multiSelect(options []string) []string {
	distinct := dedupe(options)
	if len(distinct) == 0 {
		return []string{g.placeholderOption()}
	}
	g.rng.Shuffle(len(distinct), func(i, j int) {
		distinct[i], distinct[j] = distinct[j], distinct[i]
	})
	n := g.between(1, min(validation.MaxMultiSelect, len(distinct)))
	return distinct[:n]
}

func (g *Generator) email(p persona) string {
	return fmt.Sprintf("%s.%s%d@%s",
		strings.ToLower(p.first), strings.ToLower(p.last), g.between(1, 99), g.pick(emailDomains))
}

// date formats YYYY-MM-DD with the day capped at 28.
func (g *Generator) date(fromYear, toYear int) string {
	return fmt.Sprintf("%04d-%02d-%02d", g.between(fromYear, toYear), g.between(1, 12), g.between(1, 28))
}

func (g *Generator) placeholderOption() string {
	return fmt.Sprintf("Option %d", g.between(1, placeholderOptions))
}

func (g *Generator) between(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}

func (g *Generator) pick(items []string) string {
	return items[g.rng.IntN(len(items))]
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
