package chat

import "testing"

func TestRetrieve_RanksByOverlap(t *testing.T) {
	docs := []Document{
		{Content: "Remote work policy allows two days per week from home", Source: "policies.txt"},
		{Content: "Churn risk rises sharply when satisfaction drops below fifty percent", Source: "insights.txt"},
		{Content: "Parking passes can be collected from the front desk", Source: "policies.txt"},
	}

	got := Retrieve("why does churn risk rise when satisfaction drops", docs)
	if len(got) == 0 {
		t.Fatal("expected at least one document")
	}
	if got[0].Source != "insights.txt" {
		t.Errorf("top document = %q, want insights.txt", got[0].Source)
	}
	for _, doc := range got {
		if doc.Content == docs[2].Content {
			t.Error("unrelated parking document should not be retrieved")
		}
	}
}

func TestRetrieve_CapsAtTopK(t *testing.T) {
	docs := []Document{
		{Content: "churn risk satisfaction department"},
		{Content: "churn risk satisfaction tenure"},
		{Content: "churn risk satisfaction salary"},
		{Content: "churn risk satisfaction workload"},
	}
	got := Retrieve("churn risk satisfaction", docs)
	if len(got) != topK {
		t.Errorf("len = %d, want %d", len(got), topK)
	}
}

func TestRetrieve_EmptyQuery(t *testing.T) {
	docs := []Document{{Content: "anything at all"}}
	if got := Retrieve("", docs); got != nil {
		t.Errorf("expected nil for empty query, got %v", got)
	}
	// Stopwords only.
	if got := Retrieve("what is the", docs); got != nil {
		t.Errorf("expected nil for stopword-only query, got %v", got)
	}
}
