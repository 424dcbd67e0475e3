// Package chat implements the retrieval-augmented assistant behind the chat
// endpoint. Knowledge comes from two places: plain-text documents in a
// configurable directory, and summary documents derived from the employee
// roster. Retrieval is lexical keyword overlap; answers come from an
// OpenAI-compatible completion endpoint when a key is configured.
package chat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/insightportal/attrition/internal/store"
)

// minSectionLen filters out headings and stray lines when splitting documents
// into sections.
const minSectionLen = 50

// rosterPageLimit caps how much of the roster is pulled when building summary
// documents.
const rosterPageLimit = 500

// Document is a single retrievable unit of knowledge.
type Document struct {
	Content string
	Source  string
}

// LoadKB reads every .txt file under dir and splits each into blank-line
// separated sections. Short sections are skipped. A missing directory is not
// an error; the assistant just runs with roster-derived knowledge only.
func LoadKB(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading knowledge base dir: %w", err)
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		for _, section := range strings.Split(string(data), "\n\n") {
			section = strings.TrimSpace(section)
			if len(section) > minSectionLen {
				docs = append(docs, Document{Content: section, Source: entry.Name()})
			}
		}
	}
	return docs, nil
}

// RosterDocs builds summary documents from the employee roster: overall risk
// distribution, per-department averages, and a sample of high-risk employee
// IDs.
func RosterDocs(ctx context.Context, st store.Store) ([]Document, error) {
	page, err := st.ListEmployees(ctx, store.Filter{Limit: rosterPageLimit})
	if err != nil {
		return nil, fmt.Errorf("listing employees: %w", err)
	}
	if len(page.Employees) == 0 {
		return nil, nil
	}

	total := len(page.Employees)
	var high, medium, low int
	var churnSum float64
	type deptAgg struct {
		count    int
		churnSum float64
		satSum   float64
	}
	depts := make(map[string]*deptAgg)
	var highRiskIDs []string

	for _, e := range page.Employees {
		churnSum += e.ChurnProbability
		switch e.Status {
		case "High Risk":
			high++
			if len(highRiskIDs) < 10 {
				highRiskIDs = append(highRiskIDs, e.EmployeeID)
			}
		case "Medium Risk":
			medium++
		default:
			low++
		}
		agg := depts[e.Department]
		if agg == nil {
			agg = &deptAgg{}
			depts[e.Department] = agg
		}
		agg.count++
		agg.churnSum += e.ChurnProbability
		agg.satSum += e.SatisfactionLevel
	}

	docs := []Document{{
		Content: fmt.Sprintf(
			"Employee Statistics:\nTotal Employees: %d\nHigh Risk: %d (%.1f%%)\nMedium Risk: %d (%.1f%%)\nLow Risk: %d (%.1f%%)\nAverage Churn Probability: %.1f%%",
			total,
			high, pct(high, total),
			medium, pct(medium, total),
			low, pct(low, total),
			churnSum/float64(total)*100,
		),
		Source: "roster",
	}}

	names := make([]string, 0, len(depts))
	for name := range depts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		agg := depts[name]
		docs = append(docs, Document{
			Content: fmt.Sprintf(
				"Department: %s\nEmployees: %d\nAverage Churn Risk: %.1f%%\nAverage Satisfaction: %.1f%%",
				name, agg.count,
				agg.churnSum/float64(agg.count)*100,
				agg.satSum/float64(agg.count)*100,
			),
			Source: "roster",
		})
	}

	if len(highRiskIDs) > 0 {
		docs = append(docs, Document{
			Content: "High Risk Employees (sample): " + strings.Join(highRiskIDs, ", "),
			Source:  "roster",
		})
	}
	return docs, nil
}

func pct(n, total int) float64 {
	return float64(n) / float64(total) * 100
}
