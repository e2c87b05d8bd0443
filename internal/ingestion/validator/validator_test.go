package validator

import (
	"strings"
	"testing"

	"github.com/rohith-raj-v/fuzzy-search-platform/internal/ingestion"
)

func TestValidateIngestRequest(t *testing.T) {
	cases := []struct {
		name    string
		req     ingestion.IngestRequest
		wantErr bool
	}{
		{
			name: "single term",
			req:  ingestion.IngestRequest{Term: &ingestion.TermEntry{Term: "school", ID: 4}},
		},
		{
			name: "batch",
			req: ingestion.IngestRequest{Terms: []ingestion.TermEntry{
				{Term: "music", ID: 0},
				{Term: "muskel", ID: 1},
			}},
		},
		{
			name:    "empty request",
			req:     ingestion.IngestRequest{},
			wantErr: true,
		},
		{
			name:    "blank term",
			req:     ingestion.IngestRequest{Term: &ingestion.TermEntry{Term: "   ", ID: 1}},
			wantErr: true,
		},
		{
			name:    "oversized term",
			req:     ingestion.IngestRequest{Term: &ingestion.TermEntry{Term: strings.Repeat("a", 2000), ID: 1}},
			wantErr: true,
		},
		{
			name:    "control characters",
			req:     ingestion.IngestRequest{Term: &ingestion.TermEntry{Term: "sch\x00ol", ID: 1}},
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateIngestRequest(&tc.req, 1024)
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}
