// Package chunk derives word-bounded text chunks. Index building and
// query-time retrieval must split documents identically or chunk ordinals
// stored in the index resolve to the wrong text; both sides call Split and
// the size travels inside the index manifest.
package chunk

import "strings"

// DefaultSize is the chunk size in words used when none is configured.
const DefaultSize = 500

// Split divides text into chunks of at most size words, joined by single
// spaces. Splitting is deterministic for a given (text, size) pair.
func Split(text string, size int) []string {
	if size <= 0 {
		size = DefaultSize
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(words)+size-1)/size)
	for start := 0; start < len(words); start += size {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}
