package commands

import (
	"context"
	"sort"
	"strings"

	"peopledir/internal/domain"
	"peopledir/internal/ports"
)

// MinSearchLength is the shortest term sent to the backend
const MinSearchLength = 2

// SearchResult is an employee with its relevance to the query
type SearchResult struct {
	domain.Employee
	Score int
}

// SearchCommand finds employees and ranks them locally with fuzzy matching
type SearchCommand struct {
	api   ports.HierarchyAPI
	Query string
	Limit int
}

// NewSearchCommand creates a new SearchCommand
func NewSearchCommand(api ports.HierarchyAPI, query string, limit int) *SearchCommand {
	return &SearchCommand{
		api:   api,
		Query: strings.TrimSpace(query),
		Limit: limit,
	}
}

// Execute runs the search and returns scored, sorted results
func (c *SearchCommand) Execute(ctx context.Context) ([]SearchResult, error) {
	if len(c.Query) < MinSearchLength {
		return nil, nil
	}

	employees, err := c.api.SearchEmployees(ctx, c.Query, c.Limit)
	if err != nil {
		return nil, err
	}

	return FuzzySort(employees, c.Query), nil
}

// FuzzyScore calculates a relevance score for how well target matches query
func FuzzyScore(target, query string) int {
	target = strings.ToLower(target)
	query = strings.ToLower(query)

	if len(query) == 0 {
		return 0
	}

	if strings.Contains(target, query) {
		score := 100
		if strings.HasPrefix(target, query) {
			score += 50
		}
		return score
	}

	// Every query byte must appear in order
	score := 0
	queryIdx := 0
	prevMatchIdx := -1

	for i := 0; i < len(target) && queryIdx < len(query); i++ {
		if target[i] != query[queryIdx] {
			continue
		}
		if prevMatchIdx == i-1 {
			score += 10
		}
		if i == 0 {
			score += 15
		}
		if i > 0 && isSeparator(target[i-1]) {
			score += 10
		}
		score++
		prevMatchIdx = i
		queryIdx++
	}

	if queryIdx == len(query) {
		return score
	}
	return 0
}

func isSeparator(b byte) bool {
	return b == ' ' || b == '.' || b == '-' || b == '@' || b == '_'
}

// FuzzySort drops employees that do not match query and orders the rest by
// score, then by name
func FuzzySort(employees []domain.Employee, query string) []SearchResult {
	scored := make([]SearchResult, 0, len(employees))

	for _, e := range employees {
		best := max(
			FuzzyScore(e.FullName(), query),
			FuzzyScore(e.LastName, query),
			FuzzyScore(e.Email, query),
			FuzzyScore(e.Position, query),
		)
		if best > 0 {
			scored = append(scored, SearchResult{Employee: e, Score: best})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].FullName() < scored[j].FullName()
	})

	return scored
}

// SuggestCommand fetches search-as-you-type completions
type SuggestCommand struct {
	api   ports.DirectoryAPI
	Term  string
	Limit int
}

// NewSuggestCommand creates a new SuggestCommand
func NewSuggestCommand(api ports.DirectoryAPI, term string, limit int) *SuggestCommand {
	return &SuggestCommand{
		api:   api,
		Term:  strings.TrimSpace(term),
		Limit: limit,
	}
}

// Execute returns nothing for terms shorter than MinSearchLength
func (c *SuggestCommand) Execute(ctx context.Context) ([]domain.Suggestion, error) {
	if len(c.Term) < MinSearchLength {
		return nil, nil
	}
	return c.api.Suggestions(ctx, c.Term, c.Limit)
}
