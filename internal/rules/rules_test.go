package rules

import (
	"errors"
	"testing"

	"github.com/fyrsmithlabs/intentd/internal/category"
)

func TestNewRuleSetRejectsBadPattern(t *testing.T) {
	_, err := NewRuleSet([]Spec{
		{ID: "bad", Pattern: `([unclosed`, Category: category.NamjariFee, Priority: 1},
	}, nil)
	if !errors.Is(err, ErrBadPattern) {
		t.Errorf("NewRuleSet() error = %v, want ErrBadPattern", err)
	}
}

func TestNewRuleSetRejectsDuplicateID(t *testing.T) {
	_, err := NewRuleSet([]Spec{
		{ID: "dup", Pattern: `a`, Category: category.NamjariFee, Priority: 1},
		{ID: "dup", Pattern: `b`, Category: category.NamjariFee, Priority: 2},
	}, nil)
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("NewRuleSet() error = %v, want ErrDuplicateID", err)
	}
}

func TestNewRuleSetRejectsUnknownCategory(t *testing.T) {
	_, err := NewRuleSet([]Spec{
		{ID: "r1", Pattern: `a`, Category: "no_such_category", Priority: 1},
	}, nil)
	if !errors.Is(err, ErrBadCategory) {
		t.Errorf("NewRuleSet() error = %v, want ErrBadCategory", err)
	}

	_, err = NewRuleSet(nil, []AntiSpec{{Category: "no_such_category", Pattern: `a`}})
	if !errors.Is(err, ErrBadCategory) {
		t.Errorf("NewRuleSet() anti error = %v, want ErrBadCategory", err)
	}
}

func TestNewRuleSetRejectsBadAntiPattern(t *testing.T) {
	_, err := NewRuleSet(nil, []AntiSpec{
		{Category: category.NamjariRejectedAppeal, Pattern: `([`},
	})
	if !errors.Is(err, ErrBadPattern) {
		t.Errorf("NewRuleSet() error = %v, want ErrBadPattern", err)
	}
}

func TestMatchPriorityOrder(t *testing.T) {
	// Declared low-priority first: tier ordering must still win.
	rs, err := NewRuleSet([]Spec{
		{ID: "broad", Pattern: `fee`, Category: category.Irrelevant, Priority: 3},
		{ID: "specific", Pattern: `fee`, Category: category.NamjariFee, Priority: 1},
	}, nil)
	if err != nil {
		t.Fatalf("NewRuleSet() error = %v", err)
	}

	m, ok := rs.Match("what is the fee")
	if !ok {
		t.Fatal("Match() = no match, want match")
	}
	if m.RuleID != "specific" || m.Category != category.NamjariFee {
		t.Errorf("Match() = %+v, want rule specific/namjari_fee", m)
	}
}

func TestMatchDeclarationOrderWithinTier(t *testing.T) {
	rs, err := NewRuleSet([]Spec{
		{ID: "first", Pattern: `status`, Category: category.NamjariStatusCheck, Priority: 2},
		{ID: "second", Pattern: `status`, Category: category.NamjariTimeline, Priority: 2},
	}, nil)
	if err != nil {
		t.Fatalf("NewRuleSet() error = %v", err)
	}

	m, ok := rs.Match("status please")
	if !ok || m.RuleID != "first" {
		t.Errorf("Match() = %+v ok=%v, want first rule in declaration order", m, ok)
	}
}

func TestMatchAntiPatternVeto(t *testing.T) {
	rs, err := NewRuleSet([]Spec{
		{ID: "reject", Pattern: `খারিজ`, Category: category.NamjariRejectedAppeal, Priority: 2},
		{ID: "bye", Pattern: `হাফেজ`, Category: category.Goodbye, Priority: 3},
	}, []AntiSpec{
		{Category: category.NamjariRejectedAppeal, Pattern: `আল্লাহ হাফেজ`},
	})
	if err != nil {
		t.Fatalf("NewRuleSet() error = %v", err)
	}

	// Without the anti-pattern phrase, the rejection rule fires.
	m, ok := rs.Match("আমার আবেদন খারিজ হয়েছে")
	if !ok || m.Category != category.NamjariRejectedAppeal {
		t.Fatalf("Match() = %+v ok=%v, want rejected_appeal", m, ok)
	}

	// With the goodbye phrase present, the rejection candidate is vetoed and
	// evaluation continues to the next tier.
	m, ok = rs.Match("খারিজ হয়েছে, আল্লাহ হাফেজ")
	if !ok {
		t.Fatal("Match() = no match, want goodbye fallthrough")
	}
	if m.Category != category.Goodbye {
		t.Errorf("Match() category = %v, want goodbye after veto", m.Category)
	}
}

func TestMatchVetoWithNoFallthroughReturnsNoMatch(t *testing.T) {
	rs, err := NewRuleSet([]Spec{
		{ID: "reject", Pattern: `খারিজ`, Category: category.NamjariRejectedAppeal, Priority: 2},
	}, []AntiSpec{
		{Category: category.NamjariRejectedAppeal, Pattern: `ধন্যবাদ`},
	})
	if err != nil {
		t.Fatalf("NewRuleSet() error = %v", err)
	}

	if _, ok := rs.Match("খারিজ, ধন্যবাদ"); ok {
		t.Error("Match() fired despite anti-pattern veto and no other rule")
	}
}

func TestMatchNoMatch(t *testing.T) {
	rs := DefaultRuleSet()
	if _, ok := rs.Match("completely unrelated english gibberish xyzzy"); ok {
		t.Error("Match() fired on gibberish")
	}
}

func TestMatchDeterministic(t *testing.T) {
	rs := DefaultRuleSet()
	query := "নামজারি করতে কত টাকা লাগে?"

	first, ok1 := rs.Match(query)
	second, ok2 := rs.Match(query)
	if ok1 != ok2 || first != second {
		t.Errorf("Match() not deterministic: %+v vs %+v", first, second)
	}
}

func TestDefaultRuleSet(t *testing.T) {
	rs := DefaultRuleSet()
	if rs.Len() == 0 {
		t.Fatal("DefaultRuleSet() is empty")
	}

	tests := []struct {
		name  string
		query string
		want  category.Category
	}{
		{name: "fee inquiry", query: "নামজারি করতে কত টাকা লাগে?", want: category.NamjariFee},
		{name: "critical what-is", query: "নামজারি জিনিসটা কী?", want: category.NamjariApplicationProcedure},
		{name: "representative", query: "আমার ভাই আমেরিকায় থাকেন, আমি কি তার হয়ে নামজারির কাজ করতে পারব?", want: category.NamjariByRepresentative},
		{name: "bare namjari", query: "নামজারি", want: category.NamjariEligibility},
		{name: "hearing postponed", query: "শুনানির তারিখ আবার পিছিয়ে দেওয়া হয়েছে", want: category.NamjariHearingNotification},
		{name: "irrelevant passport", query: "পাসপোর্ট বানাতে কি কি লাগে?", want: category.Irrelevant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := rs.Match(tt.query)
			if !ok {
				t.Fatalf("Match(%q) = no match", tt.query)
			}
			if m.Category != tt.want {
				t.Errorf("Match(%q) = %v (rule %s), want %v", tt.query, m.Category, m.RuleID, tt.want)
			}
		})
	}
}
