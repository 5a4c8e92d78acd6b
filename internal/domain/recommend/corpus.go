package recommend

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// englishStopWords is the exclusion list applied before term weighting.
// Tokens in this set carry no topical signal for post descriptions.
var englishStopWords = map[string]struct{}{}

func init() {
	words := []string{
		"a", "about", "above", "after", "again", "against", "all", "am", "an",
		"and", "any", "are", "as", "at", "be", "because", "been", "before",
		"being", "below", "between", "both", "but", "by", "can", "could",
		"did", "do", "does", "doing", "down", "during", "each", "few", "for",
		"from", "further", "had", "has", "have", "having", "he", "her",
		"here", "hers", "herself", "him", "himself", "his", "how", "i", "if",
		"in", "into", "is", "it", "its", "itself", "just", "me", "more",
		"most", "my", "myself", "no", "nor", "not", "now", "of", "off", "on",
		"once", "only", "or", "other", "our", "ours", "ourselves", "out",
		"over", "own", "s", "same", "she", "should", "so", "some", "such",
		"t", "than", "that", "the", "their", "theirs", "them", "themselves",
		"then", "there", "these", "they", "this", "those", "through", "to",
		"too", "under", "until", "up", "very", "was", "we", "were", "what",
		"when", "where", "which", "while", "who", "whom", "why", "will",
		"with", "would", "you", "your", "yours", "yourself", "yourselves",
	}
	for _, w := range words {
		englishStopWords[w] = struct{}{}
	}
}

// Tokenize lowercases, splits on non-alphanumeric runes and drops English
// stop-words. An input of only stop-words yields an empty slice, not an
// error; downstream similarity degrades to zero.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, stop := englishStopWords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Corpus holds the tokenized document set for one ranking request: one
// document per post plus the target user's liked texts. The corpus is
// user-specific because the liked texts are part of the vocabulary;
// sharing it across users would skew the IDF statistics.
type Corpus struct {
	PostDocs  map[uuid.UUID][]string
	LikedDocs [][]string
}

// BuildCorpus assembles the document set. Liked texts are the
// description+idea of every post the user has applied to; the bio is the
// fallback when no applications exist. A user with neither has no liked
// documents and therefore no taste vector.
func BuildCorpus(user UserSnapshot, posts []PostSnapshot) Corpus {
	c := Corpus{PostDocs: make(map[uuid.UUID][]string, len(posts))}

	byID := make(map[uuid.UUID]PostSnapshot, len(posts))
	for _, p := range posts {
		c.PostDocs[p.ID] = Tokenize(p.Text())
		byID[p.ID] = p
	}

	for _, id := range user.AppliedPostIDs {
		p, ok := byID[id]
		if !ok {
			continue
		}
		doc := Tokenize(p.Text())
		if len(doc) == 0 {
			continue
		}
		c.LikedDocs = append(c.LikedDocs, doc)
	}

	if len(c.LikedDocs) == 0 {
		if doc := Tokenize(user.Bio); len(doc) > 0 {
			c.LikedDocs = append(c.LikedDocs, doc)
		}
	}

	return c
}

// Documents returns every document in the corpus, posts first.
func (c Corpus) Documents() [][]string {
	out := make([][]string, 0, len(c.PostDocs)+len(c.LikedDocs))
	for _, doc := range c.PostDocs {
		out = append(out, doc)
	}
	out = append(out, c.LikedDocs...)
	return out
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
