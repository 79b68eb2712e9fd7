// Package rules implements the deterministic pattern stage of the classifier.
//
// Rules are plain data records compiled once into a RuleSet. Matching is a
// pure function of the rule table and the input text, so the stage can be
// regression-tested against the fixed evaluation set.
package rules

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/fyrsmithlabs/intentd/internal/category"
)

// Sentinel errors for rule set construction.
var (
	// ErrBadPattern indicates a rule regex that failed to compile. A broken
	// rule is never silently skipped; construction fails instead.
	ErrBadPattern = errors.New("invalid rule pattern")

	// ErrDuplicateID indicates two rules sharing an ID.
	ErrDuplicateID = errors.New("duplicate rule id")

	// ErrBadCategory indicates a rule labeled outside the closed set.
	ErrBadCategory = errors.New("rule references unknown category")
)

// Spec declares one pattern rule as plain data.
type Spec struct {
	// ID identifies the rule in classification results and logs.
	ID string

	// Pattern is an RE2 expression matched against the normalized query.
	// Compiled case-insensitively.
	Pattern string

	// Category is the intent assigned when the pattern fires.
	Category category.Category

	// Priority is the tier: lower number means higher priority. Rules in the
	// same tier are evaluated in declaration order.
	Priority int

	// Description records which phrasing the rule covers.
	Description string
}

// AntiSpec declares an anti-pattern: a phrasing that vetoes a category
// rather than assigning one.
type AntiSpec struct {
	Category category.Category
	Pattern  string
}

// Match is the outcome of a successful pattern match.
type Match struct {
	RuleID      string
	Category    category.Category
	Priority    int
	Description string
}

// rule is a compiled Spec.
type rule struct {
	id          string
	re          *regexp.Regexp
	category    category.Category
	priority    int
	description string
	order       int // declaration order, for stable sort within a tier
}

// RuleSet is an ordered, immutable collection of compiled rules and
// anti-pattern exclusions. Safe for concurrent use.
type RuleSet struct {
	rules []rule // sorted by (priority, declaration order)
	anti  map[category.Category][]*regexp.Regexp
}

// NewRuleSet compiles specs and anti-patterns into a RuleSet. Any pattern
// that fails to compile, duplicate ID, or unknown category fails the whole
// construction.
func NewRuleSet(specs []Spec, antis []AntiSpec) (*RuleSet, error) {
	seen := make(map[string]struct{}, len(specs))
	compiled := make([]rule, 0, len(specs))

	for i, s := range specs {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: rule %d has empty id", ErrBadPattern, i)
		}
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, s.ID)
		}
		seen[s.ID] = struct{}{}

		if !category.Known(string(s.Category)) {
			return nil, fmt.Errorf("%w: rule %s -> %q", ErrBadCategory, s.ID, s.Category)
		}

		re, err := regexp.Compile("(?i)" + s.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %s: %v", ErrBadPattern, s.ID, err)
		}
		compiled = append(compiled, rule{
			id:          s.ID,
			re:          re,
			category:    s.Category,
			priority:    s.Priority,
			description: s.Description,
			order:       i,
		})
	}

	// Tiers are checked highest priority first (lowest number); declaration
	// order breaks ties within a tier.
	sort.SliceStable(compiled, func(i, j int) bool {
		if compiled[i].priority != compiled[j].priority {
			return compiled[i].priority < compiled[j].priority
		}
		return compiled[i].order < compiled[j].order
	})

	anti := make(map[category.Category][]*regexp.Regexp, len(antis))
	for _, a := range antis {
		if !category.Known(string(a.Category)) {
			return nil, fmt.Errorf("%w: anti-pattern -> %q", ErrBadCategory, a.Category)
		}
		re, err := regexp.Compile("(?i)" + a.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: anti-pattern for %s: %v", ErrBadPattern, a.Category, err)
		}
		anti[a.Category] = append(anti[a.Category], re)
	}

	return &RuleSet{rules: compiled, anti: anti}, nil
}

// Match evaluates the query against the rule table. The first rule whose
// pattern matches and whose category is not vetoed by an anti-pattern wins.
// A vetoed candidate does not stop evaluation; later rules and tiers are
// still considered.
func (rs *RuleSet) Match(query string) (Match, bool) {
	for _, r := range rs.rules {
		if !r.re.MatchString(query) {
			continue
		}
		if rs.Vetoed(query, r.category) {
			continue
		}
		return Match{
			RuleID:      r.id,
			Category:    r.category,
			Priority:    r.priority,
			Description: r.description,
		}, true
	}
	return Match{}, false
}

// Vetoed reports whether an anti-pattern suppresses the candidate category
// for this query.
func (rs *RuleSet) Vetoed(query string, candidate category.Category) bool {
	for _, re := range rs.anti[candidate] {
		if re.MatchString(query) {
			return true
		}
	}
	return false
}

// Len returns the number of compiled rules.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}
