package synonym

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictionary_Synonyms(t *testing.T) {
	d := DefaultDictionary()

	assert.Equal(t, []string{"经痛", "月经疼痛", "生理痛"}, d.Synonyms("痛经", 3))
	assert.Equal(t, []string{"月经疼痛", "生理痛", "dysmenorrhea", "menstrual pain", "period pain"}, d.Synonyms("经痛", 5),
		"a synonym lookup excludes the term itself")
	assert.Equal(t, []string{"痛", "疼"}, d.Synonyms("PAIN", 2), "lookups are case-insensitive")
	assert.Empty(t, d.Synonyms("unknown", 5))
	assert.Empty(t, d.Synonyms("痛经", 0))
}

func TestDictionary_Lookups(t *testing.T) {
	d := DefaultDictionary()

	assert.True(t, d.IsMedicalTerm("ibuprofen"))
	assert.True(t, d.IsMedicalTerm(" Period Pain "))
	assert.False(t, d.IsMedicalTerm("keyboard"))
	assert.Equal(t, "药物", d.Category("ibuprofen"))
	assert.Equal(t, "", d.Category("keyboard"))
	assert.Contains(t, d.Categories(), "症状")
	assert.Equal(t, "症状", d.Categories()[0])

	terms := d.TermsByCategory("程度")
	assert.Equal(t, "严重", terms[0])
	assert.Contains(t, terms, "mild")
}

func TestDictionary_RelatedTerms(t *testing.T) {
	d := DefaultDictionary()

	got := d.RelatedTerms("痛经", nil, 5)
	require.Len(t, got, 5)
	assert.Equal(t, "子宫收缩", got[0].Term)
	assert.Equal(t, RelationRelated, got[0].Relation)
	assert.Equal(t, 0.8, got[2].Confidence)
	assert.Equal(t, "疼痛", got[3].Term)
	assert.Equal(t, RelationCategory, got[3].Relation)
	for _, r := range got {
		assert.NotEqual(t, "经痛", r.Term, "own synonyms are not category relations")
	}

	withContext := d.RelatedTerms("痛经", []string{"pain"}, 5)
	require.Len(t, withContext, 5)
	assert.Equal(t, "痛", withContext[3].Term)
	assert.Equal(t, RelationContextual, withContext[3].Relation)
	assert.Equal(t, 0.6, withContext[3].Confidence)

	for i := 1; i < len(withContext); i++ {
		assert.GreaterOrEqual(t, withContext[i-1].Confidence, withContext[i].Confidence)
	}
	assert.Empty(t, d.RelatedTerms("keyboard", nil, 5))
}

func TestEngine_ExpandQuery(t *testing.T) {
	e := NewEngine(nil)

	res := e.ExpandQuery("痛经 缓解", DefaultOptions())
	require.Len(t, res.ExpandedTerms, 2)
	assert.Equal(t, "痛经", res.ExpandedTerms[0].Original)
	assert.Equal(t, []string{"经痛", "月经疼痛", "生理痛"}, res.ExpandedTerms[0].Synonyms)
	assert.Equal(t, "症状", res.ExpandedTerms[0].Category)
	assert.Equal(t, 1.0, res.ExpandedTerms[0].Confidence)
	assert.Equal(t, "痛经 缓解 经痛 减轻", res.ExpandedQuery)
	assert.InDelta(t, 1.0, res.ExpansionScore, 1e-9)
	assert.Contains(t, res.Synonyms, "舒缓")

	res = e.ExpandQuery("pain relief", DefaultOptions())
	assert.Equal(t, "pain relief 痛 减轻", res.ExpandedQuery)
}

func TestEngine_ExpandQuery_NoMatches(t *testing.T) {
	e := NewEngine(nil)

	res := e.ExpandQuery("hello world", DefaultOptions())
	assert.Equal(t, "hello world", res.ExpandedQuery)
	assert.Empty(t, res.ExpandedTerms)
	assert.Equal(t, 0.0, res.ExpansionScore)

	res = e.ExpandQuery("", DefaultOptions())
	assert.Equal(t, "", res.ExpandedQuery)
	assert.Equal(t, 0.0, res.ExpansionScore)
}

func TestEngine_ExpandQuery_ConfidenceBounds(t *testing.T) {
	e := NewEngine(nil)
	for _, q := range []string{"ibuprofen", "瑜伽 yoga", "pain pain pain", "severe stomach ache"} {
		res := e.ExpandQuery(q, DefaultOptions())
		for _, term := range res.ExpandedTerms {
			assert.GreaterOrEqual(t, term.Confidence, 0.0, q)
			assert.LessOrEqual(t, term.Confidence, 1.0, q)
			assert.LessOrEqual(t, len(term.Synonyms), 3, q)
		}
	}
}

func TestEngine_ExpandQuery_ThresholdSkipsAppend(t *testing.T) {
	e := NewEngine(nil)
	opts := DefaultOptions()
	opts.ConfidenceThreshold = 1.1
	res := e.ExpandQuery("pain", opts)
	assert.Equal(t, "pain", res.ExpandedQuery)
	assert.NotEmpty(t, res.ExpandedTerms)
}

func TestEngine_BuildQueryVariants(t *testing.T) {
	e := NewEngine(nil)

	got := e.BuildQueryVariants("pain relief", 5)
	require.Len(t, got, 5)
	assert.Equal(t, "痛 relief", got[0])
	assert.Equal(t, "pain 减轻", got[1])
	assert.Contains(t, got, "痛 减轻")

	assert.Len(t, e.BuildQueryVariants("pain relief", 2), 2)
	assert.Empty(t, e.BuildQueryVariants("hello", 5))
}

func TestReplaceTerm(t *testing.T) {
	tests := []struct {
		query, term, repl, want string
	}{
		{"painful pain", "pain", "ache", "painful ache"},
		{"Pain relief", "pain", "ache", "ache relief"},
		{"痛经怎么办", "痛经", "经痛", "经痛怎么办"},
		{"a+b", "a+b", "c", "c"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, replaceTerm(tt.query, tt.term, tt.repl), tt.query)
	}
}

func TestExpander_BooleanAndSimplify(t *testing.T) {
	e := NewEngine(nil)
	res := e.ExpandQuery("pain relief now", Options{MaxSynonymsPerTerm: 2})
	assert.Equal(t, `("pain" OR "痛" OR "疼") AND ("relief" OR "减轻" OR "舒缓") AND "now"`,
		e.Expander().BooleanQuery("pain relief now", res.ExpandedTerms))
	assert.Equal(t, "pain relief", e.Expander().Simplify("the pain and a relief"))

	ctx := e.Expander().Contextual("痛经", "治疗", 2)
	assert.Equal(t, []string{"痛经", "痛经 缓解", "痛经 减轻"}, ctx)
}
