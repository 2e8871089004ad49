package search

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// vectorizer projects text into a fixed vector space built from a corpus.
// The vocabulary and per-term inverse document frequencies are frozen at
// fit time; terms unseen during fitting are ignored for any later text,
// queries included.
type vectorizer struct {
	vocab map[string]int
	idf   []float64
}

// fitVectorizer builds the vocabulary and idf table from the given
// documents. Returns nil for an empty corpus: there is nothing to project
// into.
func fitVectorizer(docs []string) *vectorizer {
	if len(docs) == 0 {
		return nil
	}

	// Document frequency per term.
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, term := range tokenize(doc) {
			if !seen[term] {
				seen[term] = true
				df[term]++
			}
		}
	}

	// Sorted vocabulary keeps vector layout deterministic across runs.
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	v := &vectorizer{
		vocab: make(map[string]int, len(terms)),
		idf:   make([]float64, len(terms)),
	}
	n := float64(len(docs))
	for i, term := range terms {
		v.vocab[term] = i
		// Smoothed idf stays strictly positive so that even terms
		// present in every document still contribute weight.
		v.idf[i] = math.Log((1+n)/float64(1+df[term])) + 1
	}
	return v
}

// vector returns the tf-idf weighted dense vector for the given text.
func (v *vectorizer) vector(text string) []float64 {
	vec := make([]float64, len(v.idf))
	for _, term := range tokenize(text) {
		if i, ok := v.vocab[term]; ok {
			vec[i] += v.idf[i]
		}
	}
	return vec
}

// cosineSimilarity computes the cosine of the angle between two vectors,
// or 0 when either has zero magnitude.
func cosineSimilarity(a, b []float64) float64 {
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

// isZeroVector reports whether every component is zero.
func isZeroVector(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
