package kbase

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ai-supportchat-be/internal/pkg/logger"
)

// Document is a single knowledge base file. Loaded once at startup,
// immutable afterwards.
type Document struct {
	File    string `json:"file"`
	Content string `json:"content"`
}

// SearchResult is a scored snippet produced for one query. Never persisted.
type SearchResult struct {
	File    string `json:"file"`
	Snippet string `json:"snippet"`
	Score   int    `json:"score"`
}

// KnowledgeBase owns the document corpus and serves lexical search over it.
type KnowledgeBase struct {
	documents []Document
	logger    logger.ILogger
}

func NewKnowledgeBase(log logger.ILogger) *KnowledgeBase {
	return &KnowledgeBase{logger: log}
}

// Load reads all *.md files from dir into memory. A missing directory is not
// fatal; the KB simply stays empty and every search returns no results.
func (kb *KnowledgeBase) Load(dir string) error {
	kb.documents = nil

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			kb.logger.Warn("KnowledgeBase", "KB directory not found", map[string]interface{}{"path": dir})
			return nil
		}
		return err
	}

	totalSize := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		kb.documents = append(kb.documents, Document{
			File:    "kb/" + entry.Name(),
			Content: string(content),
		})
		totalSize += len(content)
	}

	kb.logger.Info("KnowledgeBase", "Knowledge base loaded", map[string]interface{}{
		"document_count": len(kb.documents),
		"total_size":     totalSize,
	})
	return nil
}

// AddDocument registers an in-memory document. Used by tests and the
// simulation CLI to build a corpus without touching disk.
func (kb *KnowledgeBase) AddDocument(doc Document) {
	kb.documents = append(kb.documents, doc)
}

func (kb *KnowledgeBase) Documents() []Document {
	return kb.documents
}

// Search scores every line of every document against the rewritten query and
// returns the top maxResults snippets (matched line plus its neighbours).
// Terms of length <= 2 are ignored. Matching is case-insensitive substring
// containment, so a term may match inside a longer word.
func (kb *KnowledgeBase) Search(query string, maxResults int) []SearchResult {
	if len(kb.documents) == 0 {
		kb.logger.Warn("KnowledgeBase", "Search attempted on empty KB", nil)
		return []SearchResult{}
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	rewritten := RewriteQuery(query)
	var queryTerms []string
	for _, t := range strings.Fields(rewritten) {
		if len(t) > 2 {
			queryTerms = append(queryTerms, t)
		}
	}

	var results []SearchResult
	for _, doc := range kb.documents {
		lines := strings.Split(doc.Content, "\n")

		for i, raw := range lines {
			line := strings.ToLower(raw)
			score := 0
			for _, term := range queryTerms {
				if strings.Contains(line, term) {
					score++
				}
			}
			if score == 0 {
				continue
			}

			start := i - 1
			if start < 0 {
				start = 0
			}
			end := i + 1
			if end > len(lines)-1 {
				end = len(lines) - 1
			}

			results = append(results, SearchResult{
				File:    doc.File,
				Snippet: strings.Join(lines[start:end+1], "\n"),
				Score:   score,
			})
		}
	}

	// Stable keeps discovery order on equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > maxResults {
		results = results[:maxResults]
	}

	kb.logger.Debug("KnowledgeBase", "Search completed", map[string]interface{}{
		"query":     truncate(query, 50),
		"rewritten": truncate(rewritten, 80),
		"returned":  len(results),
	})
	return results
}

// DefaultMaxResults is the search result cap when the caller passes none.
const DefaultMaxResults = 3

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
