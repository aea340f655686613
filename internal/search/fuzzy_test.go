package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFuzzyScoreSubstring(t *testing.T) {
	cases := []struct {
		pattern, text string
	}{
		{"invoice", "sales_invoice_total"},
		{"Invoice", "SALES INVOICE"},
		{"x", "x"},
	}
	for _, c := range cases {
		assert.Equal(t, 100.0, FuzzyScore(c.pattern, c.text), "FuzzyScore(%q, %q)", c.pattern, c.text)
	}
}

func TestFuzzyScoreSubsequence(t *testing.T) {
	// "abc" against "a_b_c": all 3 matched, fully consumed, best run is 1.
	assert.InDelta(t, 50.0+30.0+20.0/3.0, FuzzyScore("abc", "a_b_c"), 1e-9)

	// "abcd" against "abx": 2 of 4 matched with a run of 2.
	assert.InDelta(t, 25.0+15.0+10.0, FuzzyScore("abcd", "abx"), 1e-9)
}

func TestFuzzyScoreNoMatch(t *testing.T) {
	assert.Zero(t, FuzzyScore("xyz", "abc"))
	assert.Zero(t, FuzzyScore("", "abc"))
}

func TestFuzzyScoreLongerRunScoresHigher(t *testing.T) {
	scattered := FuzzyScore("total", "t_o_t_a_l")
	grouped := FuzzyScore("total", "tot_al_x")
	assert.Greater(t, grouped, scattered)
}
