package intent

import (
	"testing"
)

func TestMatchPatterns_EmergencyTroubleshooting(t *testing.T) {
	m := DefaultMatcher()
	res := m.MatchPatterns("急性剧烈疼痛怎么办")

	if res[Emergency] <= 0 {
		t.Errorf("emergency = %f, want > 0", res[Emergency])
	}
	if res[Troubleshooting] <= 0 {
		t.Errorf("troubleshooting = %f, want > 0", res[Troubleshooting])
	}
	// 剧烈 and 急性 hit two of six emergency patterns.
	if got, want := res[Emergency], 2.0/6.0; got != want {
		t.Errorf("emergency = %f, want %f", got, want)
	}
	if res[General] <= 0 {
		t.Errorf("general = %f, want > 0 for 疼痛", res[General])
	}
}

func TestMatchPatterns_Bounds(t *testing.T) {
	m := DefaultMatcher()
	queries := []string{
		"",
		"what is period pain",
		"how to get relief now, urgent emergency! severe acute danger immediately",
		"PDF download checklist toolkit buy appointment register",
		"🙂🙂🙂",
		"compare ibuprofen vs heat which one is better",
	}
	for _, q := range queries {
		res := m.MatchPatterns(q)
		if len(res) != len(Categories) {
			t.Errorf("%q: got %d categories, want %d", q, len(res), len(Categories))
		}
		for c, v := range res {
			if v < 0 || v > 1 {
				t.Errorf("%q: %s = %f out of [0,1]", q, c, v)
			}
		}
	}
}

func TestMatchPatterns_EmptyIsZero(t *testing.T) {
	res := DefaultMatcher().MatchPatterns("")
	for _, c := range Categories {
		if res[c] != 0 {
			t.Errorf("%s = %f, want 0", c, res[c])
		}
	}
	if res.Dominant() != General {
		t.Errorf("Dominant() = %s, want general", res.Dominant())
	}
}

func TestMatchPatterns_CaseInsensitive(t *testing.T) {
	m := DefaultMatcher()
	if !m.CheckPattern("WHAT IS dysmenorrhea", Informational) {
		t.Error("informational should match regardless of case")
	}
	if !m.CheckPattern("download the pdf", Transactional) {
		t.Error("transactional should match lower-case pdf")
	}
	if m.CheckPattern("hello", Emergency) {
		t.Error("hello is not an emergency")
	}
	if m.CheckPattern("anything", Category("unknown")) {
		t.Error("unknown category never matches")
	}
}

func TestMatchedPatterns(t *testing.T) {
	got := DefaultMatcher().MatchedPatterns("急性剧烈疼痛怎么办")
	var emergency int
	for _, mp := range got {
		if mp.Confidence != matchedPatternConfidence {
			t.Errorf("confidence = %f", mp.Confidence)
		}
		if mp.Category == Emergency {
			emergency++
		}
	}
	if emergency != 2 {
		t.Errorf("emergency hits = %d, want 2", emergency)
	}
	if len(got) > 0 && got[0].Pattern == "" {
		t.Error("pattern source should be reported")
	}
}

func TestResult_Dominant(t *testing.T) {
	r := Result{Informational: 0.2, Emergency: 0.5, Troubleshooting: 0.5}
	if r.Dominant() != Emergency {
		t.Errorf("Dominant() = %s, want emergency (earlier on tie)", r.Dominant())
	}
}

func TestNewMatcher_InvalidPattern(t *testing.T) {
	if _, err := NewMatcher([]Rule{{Category: General, Patterns: []string{"("}}}); err == nil {
		t.Error("expected compile error")
	}
}
