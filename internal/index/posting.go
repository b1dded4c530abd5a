// Package index builds and holds the inverted index. A Snapshot is an
// immutable value: once Build returns it, nothing mutates it, so readers
// may share it freely and rebuilds swap in a fresh one.
package index

// Posting records how many times a term occurs in one document.
type Posting struct {
	DocID     string `json:"doc_id"`
	Frequency int    `json:"frequency"`
}

// PostingList is a term's postings, sorted ascending by DocID with at most
// one entry per document.
type PostingList []Posting

// Snapshot is a completed inverted index together with its corpus
// statistics. Invariants: every DocID in any posting list has an entry in
// DocLengths; no posting list is empty; AvgDocLen is 0 iff DocCount is 0.
type Snapshot struct {
	Postings   map[string]PostingList
	DocLengths map[string]int
	DocCount   int
	AvgDocLen  float64
}

// TermCount returns the number of unique terms in the snapshot.
func (s *Snapshot) TermCount() int {
	return len(s.Postings)
}

// DocFrequency returns the number of documents the term occurs in.
func (s *Snapshot) DocFrequency(term string) int {
	return len(s.Postings[term])
}
