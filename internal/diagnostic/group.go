package diagnostic

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"qualiobra/internal/model"
)

// DefaultTitle is used for groups whose code carries no title.
const DefaultTitle = "Requisito"

var (
	requirementKeyRe   = regexp.MustCompile(`^\d+\.\d+(\.\d+)?`)
	requirementTitleRe = regexp.MustCompile(`^[\d.]+ - (.+)$`)
	requirementLabelRe = regexp.MustCompile(`^([\d.]+) - (.+)$`)
)

// GroupOrder selects how requirement codes are compared.
type GroupOrder string

const (
	// OrderLexicographic compares codes as plain strings, so "4.10" sorts before "4.2".
	OrderLexicographic GroupOrder = "lexicographic"
	// OrderNumeric compares dotted numeric segments, so "4.2" sorts before "4.10".
	OrderNumeric GroupOrder = "numeric"
)

// ParseGroupOrder maps a config value to a GroupOrder. Empty means lexicographic.
func ParseGroupOrder(s string) (GroupOrder, error) {
	switch GroupOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", OrderLexicographic:
		return OrderLexicographic, nil
	case OrderNumeric:
		return OrderNumeric, nil
	}
	return "", fmt.Errorf("unknown group order %q", s)
}

func (o GroupOrder) less(a, b string) bool {
	if o == OrderNumeric {
		return compareNumeric(a, b) < 0
	}
	return a < b
}

// RequirementKey returns the grouping key of a requirement code: its leading
// major.minor[.patch] prefix, or the whole code when there is none.
func RequirementKey(code string) string {
	if m := requirementKeyRe.FindString(code); m != "" {
		return m
	}
	return code
}

// RequirementTitle extracts the title of a composite "<code> - <title>" label.
func RequirementTitle(code string) (string, bool) {
	m := requirementTitleRe.FindStringSubmatch(code)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseRequirement splits a composite label into code and title once, at
// ingestion. A label without a title yields the trimmed label and "".
func ParseRequirement(label string) (code, title string) {
	label = strings.TrimSpace(label)
	if m := requirementLabelRe.FindStringSubmatch(label); m != nil {
		return m[1], strings.TrimSpace(m[2])
	}
	return label, ""
}

func groupTitle(item model.QuestionnaireItem) string {
	if t, ok := RequirementTitle(item.RequirementCode); ok {
		return t
	}
	if item.RequirementTitle != "" {
		return item.RequirementTitle
	}
	return DefaultTitle
}

// GroupByRequirement buckets items by requirement key. Items are sorted by code
// before bucketing so each group keeps that relative order, and groups are
// returned sorted by key. Every item lands in exactly one group.
func GroupByRequirement(items []model.QuestionnaireItem, order GroupOrder) []model.RequirementGroup {
	sorted := make([]model.QuestionnaireItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return order.less(sorted[i].RequirementCode, sorted[j].RequirementCode)
	})

	buckets := make(map[string]*model.RequirementGroup)
	for _, item := range sorted {
		key := RequirementKey(item.RequirementCode)
		g, ok := buckets[key]
		if !ok {
			g = &model.RequirementGroup{RequirementCode: key, Title: groupTitle(item)}
			buckets[key] = g
		}
		g.Items = append(g.Items, item)
	}

	groups := make([]model.RequirementGroup, 0, len(buckets))
	for _, g := range buckets {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return order.less(groups[i].RequirementCode, groups[j].RequirementCode)
	})
	return groups
}

// compareNumeric orders codes by their dotted numeric prefix, falling back to
// string comparison for ties and non-numeric codes.
func compareNumeric(a, b string) int {
	pa, pb := numericSegments(a), numericSegments(b)
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if pa[i] != pb[i] {
			if pa[i] < pb[i] {
				return -1
			}
			return 1
		}
	}
	if len(pa) != len(pb) {
		if len(pa) < len(pb) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func numericSegments(code string) []int {
	prefix := requirementKeyRe.FindString(code)
	if prefix == "" {
		return nil
	}
	parts := strings.Split(prefix, ".")
	segs := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil
		}
		segs = append(segs, n)
	}
	return segs
}
