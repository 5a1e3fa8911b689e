package workflow

import (
	"testing"

	"github.com/atliq/coldreach/internal/extract"
)

func TestCoherenceGate(t *testing.T) {
	gate := CoherenceGate{Threshold: 0.8}

	tests := []struct {
		name       string
		jobs       []extract.JobPosting
		wantScore  float64
		wantPassed bool
		wantKept   int
	}{
		{
			name: "all coherent",
			jobs: []extract.JobPosting{
				{Role: "ML Engineer", Experience: "5y", Description: "pipelines"},
				{Role: "Frontend Dev", Experience: "2y", Description: "ui"},
			},
			wantScore:  1.0,
			wantPassed: true,
			wantKept:   2,
		},
		{
			name: "half coherent fails threshold",
			jobs: []extract.JobPosting{
				{Role: "ML Engineer", Experience: "5y", Description: "pipelines"},
				{Role: "Ghost Role", Experience: "1y", Description: ""},
			},
			wantScore:  0.5,
			wantPassed: false,
			wantKept:   1,
		},
		{
			name:       "empty input scores zero",
			jobs:       nil,
			wantScore:  0.0,
			wantPassed: false,
			wantKept:   0,
		},
		{
			name: "missing role dropped",
			jobs: []extract.JobPosting{
				{Role: "", Experience: "3y", Description: "something"},
			},
			wantScore:  0.0,
			wantPassed: false,
			wantKept:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := gate.Check(tt.jobs)
			if res.Score != tt.wantScore {
				t.Errorf("score = %v, want %v", res.Score, tt.wantScore)
			}
			if res.Passed != tt.wantPassed {
				t.Errorf("passed = %v, want %v", res.Passed, tt.wantPassed)
			}
			if len(res.Jobs) != tt.wantKept {
				t.Errorf("kept %d jobs, want %d", len(res.Jobs), tt.wantKept)
			}
			if res.Score < 0 || res.Score > 1 {
				t.Errorf("score %v outside [0,1]", res.Score)
			}
			for _, j := range res.Jobs {
				if j.Role == "" || j.Description == "" {
					t.Errorf("gate emitted incoherent job %+v", j)
				}
			}
		})
	}
}

func TestRelevanceGate(t *testing.T) {
	gate := RelevanceGate{Threshold: 0.8}

	tests := []struct {
		name       string
		jobs       []extract.JobPosting
		wantScore  float64
		wantPassed bool
		wantKept   int
	}{
		{
			name: "all linked",
			jobs: []extract.JobPosting{
				{Role: "a", Links: []string{"https://example.com/1"}},
				{Role: "b", Links: []string{"https://example.com/2"}},
			},
			wantScore:  1.0,
			wantPassed: true,
			wantKept:   2,
		},
		{
			name: "unlinked job fails threshold",
			jobs: []extract.JobPosting{
				{Role: "a", Links: []string{"https://example.com/1"}},
				{Role: "b"},
			},
			wantScore:  0.5,
			wantPassed: false,
			wantKept:   1,
		},
		{
			name:       "empty input scores zero",
			jobs:       nil,
			wantScore:  0.0,
			wantPassed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := gate.Check(tt.jobs)
			if res.Score != tt.wantScore {
				t.Errorf("score = %v, want %v", res.Score, tt.wantScore)
			}
			if res.Passed != tt.wantPassed {
				t.Errorf("passed = %v, want %v", res.Passed, tt.wantPassed)
			}
			if len(res.Jobs) != tt.wantKept {
				t.Errorf("kept %d jobs, want %d", len(res.Jobs), tt.wantKept)
			}
			for _, j := range res.Jobs {
				if len(j.Links) == 0 {
					t.Errorf("gate emitted unlinked job %+v", j)
				}
			}
		})
	}
}

func TestGateExactThresholdPasses(t *testing.T) {
	gate := CoherenceGate{Threshold: 0.5}
	res := gate.Check([]extract.JobPosting{
		{Role: "a", Description: "d"},
		{Role: "b"},
	})
	if !res.Passed {
		t.Errorf("score %v at threshold should pass", res.Score)
	}
}
