// Package badwords screens guest supplied free text, such as names and
// cancellation reasons, against a configurable word list.
package badwords

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joy095/hotelbooking/logger"
)

// set of lowercase words
var (
	mu    sync.RWMutex
	words map[string]struct{}
)

// Load replaces the word list with the non-empty lines of filename.
func Load(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read bad words file: %w", err)
	}

	loaded := make(map[string]struct{})
	for _, line := range strings.Split(string(data), "\n") {
		if w := strings.ToLower(strings.TrimSpace(line)); w != "" && !strings.HasPrefix(w, "#") {
			loaded[w] = struct{}{}
		}
	}

	mu.Lock()
	words = loaded
	mu.Unlock()

	logger.InfoLogger.Infof("Loaded %d bad words from %s", len(loaded), filename)
	return nil
}

// Contains reports whether text has a listed word. Matching is whole word and
// case insensitive; anything that is not a letter or digit separates words.
func Contains(text string) bool {
	mu.RLock()
	defer mu.RUnlock()
	if len(words) == 0 {
		return false
	}

	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	for _, f := range fields {
		if _, found := words[f]; found {
			logger.WarnLogger.Warn("Bad word detected in guest text")
			return true
		}
	}
	return false
}

func Add(word string) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	if words == nil {
		words = make(map[string]struct{})
	}
	words[word] = struct{}{}
}

func Remove(word string) bool {
	mu.Lock()
	defer mu.Unlock()
	word = strings.ToLower(word)
	if _, found := words[word]; !found {
		return false
	}
	delete(words, word)
	return true
}

// Reset empties the list.
func Reset() {
	mu.Lock()
	words = nil
	mu.Unlock()
}
