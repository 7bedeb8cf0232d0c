// Package insightgen produces the persisted per-theme AI insights: it
// groups each theme's feedback into sub-topics by embedding similarity and
// asks the LLM for a summary and recommendations per polarity.
package insightgen

import (
	"math"
	"math/rand"
	"regexp"
	"sort"
	"strings"
)

const (
	minPointsPerCluster = 18
	kmeansIterations    = 50
	kmeansSeed          = 42
	topKeywords         = 8
	examplesPerCluster  = 5
)

var tokenPattern = regexp.MustCompile(`[a-zA-Z]{3,}`)

// stopWords drops filler and corpus-specific vocabulary from keyword
// extraction.
var stopWords = buildStopWords()

func buildStopWords() map[string]bool {
	words := []string{
		"the", "and", "for", "with", "that", "this", "from", "have", "has", "had", "was", "were",
		"are", "been", "but", "not", "you", "your", "they", "their", "them", "our", "out", "into",
		"about", "just", "very", "much", "more", "than", "also", "can", "will", "would", "could",
		"should", "one", "two", "three", "get", "got", "make", "made", "even", "still", "over",
		"well", "per", "each", "every", "across", "because", "while", "when", "where", "what",
		"who", "why", "how", "does", "did", "doing", "done", "other", "another", "such", "like",
		"some", "any", "all", "many", "most", "few", "new", "old",
		"company", "work", "working", "worked", "role", "job", "jobs", "people", "person",
		"team", "teams", "employee", "employees", "staff", "manager", "management", "business",
		"place", "industry", "site", "sites", "year", "years", "month", "months", "day", "days",
		"time", "times", "pros", "cons", "advice", "summary", "review", "reviews",
	}

	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}

	return set
}

// clusterGroup is one sub-topic: the indices of its members in the input
// slice, largest group first after clustering.
type clusterGroup struct {
	Indices []int
}

// clusterEmbeddings groups vectors into at most maxClusters sub-topics.
// Fewer than minPoints vectors yield a single group.
func clusterEmbeddings(vectors [][]float32, minPoints, maxClusters int) []clusterGroup {
	n := len(vectors)
	if n == 0 {
		return nil
	}

	if n < minPoints {
		return []clusterGroup{{Indices: sequence(n)}}
	}

	k := n / minPointsPerCluster
	if k > maxClusters {
		k = maxClusters
	}

	if k < 2 {
		k = 2
	}

	if k > n {
		k = n
	}

	labels := kmeans(vectors, k)

	groups := make(map[int][]int)
	for i, label := range labels {
		groups[label] = append(groups[label], i)
	}

	out := make([]clusterGroup, 0, len(groups))
	for _, indices := range groups {
		out = append(out, clusterGroup{Indices: indices})
	}

	sort.Slice(out, func(i, j int) bool {
		if len(out[i].Indices) != len(out[j].Indices) {
			return len(out[i].Indices) > len(out[j].Indices)
		}

		return out[i].Indices[0] < out[j].Indices[0]
	})

	return out
}

// kmeans assigns each vector to one of k clusters with a fixed-seed Lloyd
// iteration, so repeated runs over the same data produce the same grouping.
func kmeans(vectors [][]float32, k int) []int {
	n := len(vectors)
	dim := len(vectors[0])
	rng := rand.New(rand.NewSource(kmeansSeed))

	centroids := make([][]float64, k)
	for i, idx := range rng.Perm(n)[:k] {
		centroids[i] = toFloat64(vectors[idx])
	}

	labels := make([]int, n)

	for iter := 0; iter < kmeansIterations; iter++ {
		changed := false

		for i, v := range vectors {
			best := nearestCentroid(v, centroids)
			if best != labels[i] {
				labels[i] = best
				changed = true
			}
		}

		if !changed && iter > 0 {
			break
		}

		sums := make([][]float64, k)
		counts := make([]int, k)

		for i := range sums {
			sums[i] = make([]float64, dim)
		}

		for i, v := range vectors {
			counts[labels[i]]++

			for d := range v {
				sums[labels[i]][d] += float64(v[d])
			}
		}

		for i := range centroids {
			if counts[i] == 0 {
				// Re-seed empty clusters from a random point.
				centroids[i] = toFloat64(vectors[rng.Intn(n)])
				continue
			}

			for d := range centroids[i] {
				centroids[i][d] = sums[i][d] / float64(counts[i])
			}
		}
	}

	return labels
}

func nearestCentroid(v []float32, centroids [][]float64) int {
	best := 0
	bestDist := math.MaxFloat64

	for i, c := range centroids {
		var dist float64

		for d := range v {
			diff := float64(v[d]) - c[d]
			dist += diff * diff
		}

		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}

	return best
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = float64(v[i])
	}

	return out
}

func sequence(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}

	return out
}

// keywordsFromTexts returns the most frequent non-stopword tokens across the
// texts, ties broken alphabetically.
func keywordsFromTexts(texts []string, topK int) []string {
	counts := map[string]int{}

	for _, text := range texts {
		for _, token := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
			if !stopWords[token] {
				counts[token]++
			}
		}
	}

	keywords := make([]string, 0, len(counts))
	for token := range counts {
		keywords = append(keywords, token)
	}

	sort.Slice(keywords, func(i, j int) bool {
		if counts[keywords[i]] != counts[keywords[j]] {
			return counts[keywords[i]] > counts[keywords[j]]
		}

		return keywords[i] < keywords[j]
	})

	if len(keywords) > topK {
		keywords = keywords[:topK]
	}

	return keywords
}

// evenlySample picks up to maxSamples items spread across the whole slice,
// preserving order.
func evenlySample[T any](items []T, maxSamples int) []T {
	if len(items) <= maxSamples {
		return items
	}

	step := float64(len(items)) / float64(maxSamples)
	out := make([]T, 0, maxSamples)

	pos := 0.0
	for i := 0; i < maxSamples; i++ {
		idx := int(pos)
		if idx >= len(items) {
			idx = len(items) - 1
		}

		out = append(out, items[idx])
		pos += step
	}

	return out
}
