package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/dvloznov/finance-dashboard/internal/dataset"
	"github.com/dvloznov/finance-dashboard/internal/domain"
)

func TestReportWriter(t *testing.T) {
	tests := []struct {
		out  string
		want *os.File
	}{
		{"-", os.Stderr},
		{"", os.Stdout},
		{"records.csv", os.Stdout},
		{"gs://bucket/records.csv", os.Stdout},
	}

	for _, tt := range tests {
		t.Run(tt.out, func(t *testing.T) {
			if got := reportWriter(tt.out); got != tt.want {
				t.Errorf("reportWriter(%q) = %v, want %v", tt.out, got, tt.want)
			}
		})
	}
}

func TestPrintImportSummary(t *testing.T) {
	run := &dataset.ImportRun{
		RunID:            "run-1",
		Source:           "upload:bank.csv",
		SourceRowCount:   4,
		AcceptedRowCount: 3,
		DetectedColumns:  domain.NewColumnMap(),
	}

	var buf bytes.Buffer
	printImportSummary(&buf, run, 2)

	got := buf.String()
	for _, want := range []string{"=== Import ===", "run-1", "upload:bank.csv", "Rejected:   1", "Matching:   2"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected summary to contain %q, got:\n%s", want, got)
		}
	}
}
