package insightgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClusterEmbeddings_FewPointsSingleGroup(t *testing.T) {
	vectors := [][]float32{{1, 0}, {0, 1}, {1, 1}}

	groups := clusterEmbeddings(vectors, 12, 5)

	assert.Len(t, groups, 1)
	assert.Equal(t, []int{0, 1, 2}, groups[0].Indices)
}

func TestClusterEmbeddings_SeparatesDistantGroups(t *testing.T) {
	var vectors [][]float32
	for i := 0; i < 20; i++ {
		vectors = append(vectors, []float32{0, float32(i) * 0.01})
	}

	for i := 0; i < 20; i++ {
		vectors = append(vectors, []float32{100, float32(i) * 0.01})
	}

	groups := clusterEmbeddings(vectors, 12, 5)

	assert.Len(t, groups, 2)

	for _, group := range groups {
		first := group.Indices[0] < 20
		for _, idx := range group.Indices {
			assert.Equal(t, first, idx < 20, "cluster mixes the two blobs")
		}
	}
}

func TestClusterEmbeddings_Deterministic(t *testing.T) {
	var vectors [][]float32
	for i := 0; i < 60; i++ {
		vectors = append(vectors, []float32{float32(i % 7), float32(i % 11)})
	}

	first := clusterEmbeddings(vectors, 12, 5)
	second := clusterEmbeddings(vectors, 12, 5)

	assert.Equal(t, first, second)
}

func TestClusterEmbeddings_EveryPointAssignedOnce(t *testing.T) {
	var vectors [][]float32
	for i := 0; i < 40; i++ {
		vectors = append(vectors, []float32{float32(i), float32(40 - i)})
	}

	groups := clusterEmbeddings(vectors, 12, 5)

	seen := map[int]bool{}
	for _, group := range groups {
		for _, idx := range group.Indices {
			assert.False(t, seen[idx], "index %d assigned twice", idx)
			seen[idx] = true
		}
	}

	assert.Len(t, seen, 40)
}

func TestKeywordsFromTexts(t *testing.T) {
	texts := []string{
		"Overtime overtime overtime without extra pay",
		"Unpaid overtime and weekend shifts",
		"The pay does not match the overtime hours",
	}

	keywords := keywordsFromTexts(texts, 3)

	assert.Equal(t, "overtime", keywords[0])
	assert.Contains(t, keywords, "pay")
	// stopwords and short tokens never surface
	assert.NotContains(t, keywords, "the")
	assert.NotContains(t, keywords, "and")
}

func TestEvenlySample(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	sampled := evenlySample(items, 4)

	assert.Len(t, sampled, 4)
	assert.Equal(t, 0, sampled[0])
	assert.True(t, sampled[len(sampled)-1] >= 6, "sampling should span the slice")

	// fewer items than the cap pass through untouched
	assert.Equal(t, items, evenlySample(items, 100))
}
