package recommend

import (
	"math"

	"github.com/google/uuid"
)

// Vector is a sparse weighted term vector.
type Vector map[string]float64

// VectorSpace carries the IDF statistics of one corpus. A space built from
// fewer than two documents is nil; callers treat a nil space as "no text
// signal".
type VectorSpace struct {
	idf  map[string]float64
	docs int
}

// NewVectorSpace computes document frequencies and IDF over the given
// documents. Returns nil when the corpus is too small to weight terms
// (fewer than 2 documents) or the vocabulary is empty.
func NewVectorSpace(docs [][]string) *VectorSpace {
	if len(docs) < 2 {
		return nil
	}

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, term := range doc {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}
	if len(df) == 0 {
		return nil
	}

	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for term, cnt := range df {
		idf[term] = math.Log(n/float64(cnt)) + 1.0
	}

	return &VectorSpace{idf: idf, docs: len(docs)}
}

// Vectorize maps a tokenized document into the space. Unknown terms are
// dropped; an empty document yields an empty vector.
func (s *VectorSpace) Vectorize(doc []string) Vector {
	if s == nil || len(doc) == 0 {
		return Vector{}
	}

	tf := make(map[string]int, len(doc))
	for _, term := range doc {
		tf[term]++
	}

	v := make(Vector, len(tf))
	total := float64(len(doc))
	for term, cnt := range tf {
		idf, ok := s.idf[term]
		if !ok {
			continue
		}
		v[term] = float64(cnt) / total * idf
	}
	return v
}

// MeanVector averages a set of vectors term-wise. Used to collapse a
// user's liked-text vectors into a single taste vector.
func MeanVector(vectors []Vector) Vector {
	if len(vectors) == 0 {
		return Vector{}
	}

	sum := make(Vector)
	for _, v := range vectors {
		for term, w := range v {
			sum[term] += w
		}
	}

	n := float64(len(vectors))
	for term := range sum {
		sum[term] /= n
	}
	return sum
}

// CosineSimilarity returns the cosine of two sparse vectors in [0,1].
// Defined as 0 when either vector is empty or all-zero, so callers never
// divide by zero.
func CosineSimilarity(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for term, wa := range a {
		if wb, ok := b[term]; ok {
			dot += wa * wb
		}
		normA += wa * wa
	}
	for _, wb := range b {
		normB += wb * wb
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

// TasteModel is the per-request text representation: one vector per post
// and the user's aggregated taste vector.
type TasteModel struct {
	PostVectors map[uuid.UUID]Vector
	Taste       Vector
}

// BuildTasteModel builds the vector space over the user-specific corpus
// and derives post vectors plus the taste vector. Degrades to empty
// vectors whenever the corpus cannot support term weighting.
func BuildTasteModel(user UserSnapshot, posts []PostSnapshot) TasteModel {
	corpus := BuildCorpus(user, posts)
	space := NewVectorSpace(corpus.Documents())

	m := TasteModel{PostVectors: make(map[uuid.UUID]Vector, len(corpus.PostDocs))}
	if space == nil {
		return m
	}

	for id, doc := range corpus.PostDocs {
		m.PostVectors[id] = space.Vectorize(doc)
	}

	liked := make([]Vector, 0, len(corpus.LikedDocs))
	for _, doc := range corpus.LikedDocs {
		liked = append(liked, space.Vectorize(doc))
	}
	m.Taste = MeanVector(liked)

	return m
}

// TextSimilarity scores one post against the taste vector.
func (m TasteModel) TextSimilarity(postID uuid.UUID) float64 {
	if len(m.Taste) == 0 {
		return 0
	}
	return CosineSimilarity(m.Taste, m.PostVectors[postID])
}
