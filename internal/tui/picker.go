package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/cutscenes/internal/token"
)

type pickerItem struct {
	Tag     string
	Label   string
	Section string
	Search  string
}

type pickerAction int

const (
	pickerNone pickerAction = iota
	pickerMoved
	pickerSelected
	pickerCancelled
)

// typePicker is the fuzzy-filtered list of token types shown by the add-token modal.
type typePicker struct {
	items    []pickerItem
	filtered []pickerItem
	query    string
	cursor   int
}

func newTypePicker(specs []token.TypeSpec) *typePicker {
	items := make([]pickerItem, 0, len(specs))
	for _, s := range specs {
		section := "Actions"
		if s.Produces {
			section = "Producers"
		}
		label := s.Label
		if label == "" {
			label = s.Tag
		}
		items = append(items, pickerItem{Tag: s.Tag, Label: label, Section: section, Search: label + " " + s.Tag})
	}
	p := &typePicker{items: items}
	p.rebuild()
	return p
}

func (p *typePicker) Current() (pickerItem, bool) {
	if len(p.filtered) == 0 {
		return pickerItem{}, false
	}
	return p.filtered[p.cursor], true
}

func (p *typePicker) SetQuery(q string) {
	p.query = q
	p.rebuild()
}

func (p *typePicker) HandleKey(keyName string) (pickerAction, pickerItem) {
	switch keyName {
	case "up", "ctrl+p":
		if p.cursor > 0 {
			p.cursor--
			return pickerMoved, pickerItem{}
		}
	case "down", "ctrl+n":
		if p.cursor < len(p.filtered)-1 {
			p.cursor++
			return pickerMoved, pickerItem{}
		}
	case "enter":
		if item, ok := p.Current(); ok {
			return pickerSelected, item
		}
	case "esc":
		return pickerCancelled, pickerItem{}
	case "backspace":
		if len(p.query) > 0 {
			p.SetQuery(p.query[:len(p.query)-1])
		}
	default:
		if len(keyName) == 1 && keyName[0] >= 32 && keyName[0] < 127 {
			p.SetQuery(p.query + keyName)
		}
	}
	return pickerNone, pickerItem{}
}

// sections keeps the first-seen order of item sections.
func (p *typePicker) sections() []string {
	seen := map[string]bool{}
	var out []string
	for _, it := range p.items {
		if !seen[it.Section] {
			seen[it.Section] = true
			out = append(out, it.Section)
		}
	}
	return out
}

type scoredItem struct {
	item  pickerItem
	score int
	index int
}

func (p *typePicker) rebuild() {
	q := strings.TrimSpace(p.query)
	bySection := map[string][]scoredItem{}
	for idx, it := range p.items {
		ok, score := fuzzyMatchScore(it.Search, q)
		if !ok {
			continue
		}
		bySection[it.Section] = append(bySection[it.Section], scoredItem{item: it, score: score, index: idx})
	}
	p.filtered = p.filtered[:0]
	for _, section := range p.sections() {
		scored := bySection[section]
		sort.Slice(scored, func(i, j int) bool {
			if scored[i].score != scored[j].score {
				return scored[i].score > scored[j].score
			}
			return scored[i].index < scored[j].index
		})
		for _, s := range scored {
			p.filtered = append(p.filtered, s.item)
		}
	}
	if p.cursor > len(p.filtered)-1 {
		p.cursor = len(p.filtered) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// fuzzyMatchScore matches query as an in-order subsequence of label. Prefix hits,
// adjacent runs and exact matches score higher.
func fuzzyMatchScore(label, query string) (bool, int) {
	if query == "" {
		return true, 0
	}
	l := strings.ToLower(label)
	q := strings.ToLower(query)
	var hits []int
	from := 0
	for i := 0; i < len(q); i++ {
		j := strings.IndexByte(l[from:], q[i])
		if j < 0 {
			return false, 0
		}
		hits = append(hits, from+j)
		from += j + 1
	}
	score := len(q)
	if hits[0] == 0 {
		score += 10
	}
	for i := 1; i < len(hits); i++ {
		if hits[i] == hits[i-1]+1 {
			score += 3
		}
	}
	if strings.EqualFold(strings.TrimSpace(label), strings.TrimSpace(query)) {
		score += 20
	}
	return true, score
}

func (p *typePicker) View(width int) string {
	var b strings.Builder
	b.WriteString(modalTitle.Render("Add token"))
	b.WriteString("\n")
	b.WriteString("> " + p.query + "█\n\n")
	if len(p.filtered) == 0 {
		b.WriteString(mutedStyle.Render("no matching token types"))
		return b.String()
	}
	section := ""
	for i, it := range p.filtered {
		if it.Section != section {
			if section != "" {
				b.WriteString("\n")
			}
			section = it.Section
			b.WriteString(mutedStyle.Render(section) + "\n")
		}
		line := fmt.Sprintf("  %-18s %s", it.Label, mutedStyle.Render(it.Tag))
		if i == p.cursor {
			line = pickerFocus.Render(fmt.Sprintf("> %-18s %s", it.Label, it.Tag))
		}
		b.WriteString(lipgloss.NewStyle().MaxWidth(width).Render(line) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
