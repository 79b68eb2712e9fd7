// Package category defines the closed intent category set for namjari queries.
//
// The set is fixed at build time. Every classification decision resolves to
// exactly one of these identifiers; dataset rows carrying any other label are
// rejected at load time.
package category

import (
	"errors"
	"fmt"
)

// ErrUnknownCategory is returned when a label outside the closed set is seen.
var ErrUnknownCategory = errors.New("unknown category")

// Category is one intent label from the closed classification target set.
type Category string

// The intent categories recognized by the classifier.
const (
	NamjariApplicationProcedure Category = "namjari_application_procedure"
	NamjariByRepresentative     Category = "namjari_by_representative"
	NamjariInheritanceDocuments Category = "namjari_inheritance_documents"
	NamjariRequiredDocuments    Category = "namjari_required_documents"
	NamjariFee                  Category = "namjari_fee"
	NamjariStatusCheck          Category = "namjari_status_check"
	NamjariHearingDocuments     Category = "namjari_hearing_documents"
	NamjariHearingNotification  Category = "namjari_hearing_notification"
	NamjariRejectedAppeal       Category = "namjari_rejected_appeal"
	NamjariKhatianCopy          Category = "namjari_khatian_copy"
	NamjariKhatianCorrection    Category = "namjari_khatian_correction"
	NamjariEligibility          Category = "namjari_eligibility"
	NamjariTimeline             Category = "namjari_timeline"
	Greetings                   Category = "greetings"
	Goodbye                     Category = "goodbye"
	RepeatAgain                 Category = "repeat_again"
	AgentCalling                Category = "agent_calling"
	Irrelevant                  Category = "irrelevant"
)

// Default is the category emitted when no signal produces a confident match.
const Default = Irrelevant

// all lists every category in declaration order.
var all = []Category{
	NamjariApplicationProcedure,
	NamjariByRepresentative,
	NamjariInheritanceDocuments,
	NamjariRequiredDocuments,
	NamjariFee,
	NamjariStatusCheck,
	NamjariHearingDocuments,
	NamjariHearingNotification,
	NamjariRejectedAppeal,
	NamjariKhatianCopy,
	NamjariKhatianCorrection,
	NamjariEligibility,
	NamjariTimeline,
	Greetings,
	Goodbye,
	RepeatAgain,
	AgentCalling,
	Irrelevant,
}

var known = func() map[Category]struct{} {
	m := make(map[Category]struct{}, len(all))
	for _, c := range all {
		m[c] = struct{}{}
	}
	return m
}()

// All returns every category in declaration order. The returned slice is a
// copy and safe to modify.
func All() []Category {
	out := make([]Category, len(all))
	copy(out, all)
	return out
}

// Known reports whether the label belongs to the closed category set.
func Known(label string) bool {
	_, ok := known[Category(label)]
	return ok
}

// Parse validates a raw label against the closed set.
func Parse(label string) (Category, error) {
	if !Known(label) {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, label)
	}
	return Category(label), nil
}

// String returns the category identifier.
func (c Category) String() string {
	return string(c)
}
