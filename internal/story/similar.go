package story

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// termVector is a TF-IDF weighted bag of words.
type termVector struct {
	weights map[string]float64
	norm    float64
}

// terms lowercases text and splits it on anything that is not a letter or
// digit, dropping words shorter than three runes.
func terms(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 3 {
			out = append(out, f)
		}
	}
	return out
}

func termCounts(text string) map[string]float64 {
	counts := make(map[string]float64)
	for _, term := range terms(text) {
		counts[term]++
	}
	return counts
}

func weigh(counts map[string]float64, idf map[string]float64) termVector {
	v := termVector{weights: make(map[string]float64, len(counts))}
	var sum float64
	for term, count := range counts {
		w := count * idf[term]
		if w == 0 {
			continue
		}
		v.weights[term] = w
		sum += w * w
	}
	v.norm = math.Sqrt(sum)
	return v
}

func cosine(a, b termVector) float64 {
	if a.norm == 0 || b.norm == 0 {
		return 0
	}
	if len(b.weights) < len(a.weights) {
		a, b = b, a
	}
	var dot float64
	for term, w := range a.weights {
		dot += w * b.weights[term]
	}
	return dot / (a.norm * b.norm)
}

// Similar is a pair of stories whose wording overlaps.
type Similar struct {
	First  int
	Second int
	Score  float64
}

// Duplicates returns story pairs whose TF-IDF cosine similarity is at least
// threshold, highest first. Story numbers are 1-based. Words that appear in
// every story carry no weight.
func (c *Catalog) Duplicates(threshold float64) []Similar {
	n := c.Len()
	if n < 2 {
		return nil
	}

	counts := make([]map[string]float64, n)
	docFreq := make(map[string]int)
	for i, text := range c.stories {
		counts[i] = termCounts(text)
		for term := range counts[i] {
			docFreq[term]++
		}
	}
	idf := make(map[string]float64, len(docFreq))
	for term, df := range docFreq {
		idf[term] = math.Log((float64(n) + 1) / (1 + float64(df)))
	}
	vectors := make([]termVector, n)
	for i := range counts {
		vectors[i] = weigh(counts[i], idf)
	}

	var pairs []Similar
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if score := cosine(vectors[i], vectors[j]); score >= threshold {
				pairs = append(pairs, Similar{First: i + 1, Second: j + 1, Score: score})
			}
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool { return pairs[a].Score > pairs[b].Score })
	return pairs
}

// Words counts whitespace-separated words in story n, or 0 when out of range.
func (c *Catalog) Words(n int) int {
	text, err := c.Story(n)
	if err != nil {
		return 0
	}
	return len(strings.Fields(text))
}
