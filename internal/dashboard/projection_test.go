package dashboard

import (
	"testing"

	"github.com/rishbCLN/civic-issue-reporting/internal/issue"
	"github.com/rishbCLN/civic-issue-reporting/internal/status"
)

func sampleIssues() []issue.Issue {
	return []issue.Issue{
		{ID: 1, Location: "Main Street", Description: "pothole near crossing", Status: status.StatusReported},
		{ID: 2, Location: "Park Ave", Description: "broken streetlight", Status: status.StatusUnderReview},
		{ID: 3, Location: "main street", Description: "overflowing trash bin", Status: status.StatusResolved},
		{ID: 4, Location: "Elm Road", Description: "graffiti on wall", Status: status.StatusResolved},
		{ID: 5, Location: "Oak Blvd", Description: "fallen tree", Status: status.StatusConfirmed},
	}
}

func TestApplySearch(t *testing.T) {
	// 搜索词忽略大小写，匹配地点或描述
	got := Apply(sampleIssues(), Filter{Query: "MAIN"})
	if len(got) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 3 {
		t.Errorf("unexpected ids: %d, %d", got[0].ID, got[1].ID)
	}

	got = Apply(sampleIssues(), Filter{Query: "streetlight"})
	if len(got) != 1 || got[0].ID != 2 {
		t.Errorf("expected issue 2, got %+v", got)
	}
}

func TestApplyStatusFilter(t *testing.T) {
	got := Apply(sampleIssues(), Filter{Status: "Resolved"})
	if len(got) != 2 {
		t.Fatalf("expected 2 resolved issues, got %d", len(got))
	}

	// All 和空串都不过滤
	if got := Apply(sampleIssues(), Filter{Status: FilterAll}); len(got) != 5 {
		t.Errorf("All filter returned %d issues, want 5", len(got))
	}
	if got := Apply(sampleIssues(), Filter{}); len(got) != 5 {
		t.Errorf("empty filter returned %d issues, want 5", len(got))
	}
}

func TestApplyCombined(t *testing.T) {
	got := Apply(sampleIssues(), Filter{Query: "main", Status: "Resolved"})
	if len(got) != 1 || got[0].ID != 3 {
		t.Errorf("expected issue 3, got %+v", got)
	}
}

func TestCount(t *testing.T) {
	stats := Count(sampleIssues())

	if stats.Total != 5 {
		t.Errorf("total = %d, want 5", stats.Total)
	}
	if stats.Reported != 1 || stats.UnderReview != 1 || stats.Resolved != 2 || stats.Confirmed != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.InProgress != 0 || stats.Rejected != 0 {
		t.Errorf("expected zero in_progress and rejected, got %+v", stats)
	}
}

func TestCountEmpty(t *testing.T) {
	stats := Count(nil)
	if stats.Total != 0 {
		t.Errorf("total = %d, want 0", stats.Total)
	}
}
