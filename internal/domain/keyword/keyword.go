// Package keyword holds the weighted phrase type shown in the word cloud.
package keyword

// Weight is a phrase and its relevance scaled to 0..100.
type Weight struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}
