package categorize

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

type mockSuggester struct {
	calls     int
	seen      []Candidate
	known     []string
	responses map[int]string
	err       error
}

func (m *mockSuggester) Suggest(ctx context.Context, candidates []Candidate, known []string) (map[int]string, error) {
	m.calls++
	m.seen = append(m.seen, candidates...)
	m.known = known
	if m.err != nil {
		return nil, m.err
	}
	return m.responses, nil
}

func record(id int, desc, category string) domain.Transaction {
	return domain.Transaction{
		ID:          id,
		Date:        civil.Date{Year: 2026, Month: time.March, Day: id},
		Description: desc,
		Category:    category,
		Amount:      decimal.NewFromInt(int64(10 * id)),
		Type:        domain.TypeExpense,
	}
}

func TestApply(t *testing.T) {
	records := []domain.Transaction{
		record(1, "Tesco", domain.DefaultCategory),
		record(2, "Rent", "Housing"),
		record(3, "Netflix", domain.DefaultCategory),
		record(4, "Unknown", domain.DefaultCategory),
	}
	s := &mockSuggester{responses: map[int]string{
		1: "Groceries",
		2: "Ignored",
		3: "Entertainment",
		4: domain.DefaultCategory,
	}}

	got, updated, err := Apply(context.Background(), s, records)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if updated != 2 {
		t.Errorf("updated = %d, want 2", updated)
	}

	var categories []string
	for _, tx := range got {
		categories = append(categories, tx.Category)
	}
	want := []string{"Groceries", "Housing", "Entertainment", domain.DefaultCategory}
	if diff := cmp.Diff(want, categories); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}

	if records[0].Category != domain.DefaultCategory {
		t.Error("Apply() modified its input")
	}
	if len(s.seen) != 3 {
		t.Errorf("sent %d candidates, want 3", len(s.seen))
	}
	if diff := cmp.Diff([]string{"Housing"}, s.known); diff != "" {
		t.Errorf("known categories mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_Batches(t *testing.T) {
	var records []domain.Transaction
	for i := 1; i <= BatchSize+1; i++ {
		records = append(records, record(i, "x", domain.DefaultCategory))
	}
	s := &mockSuggester{}

	if _, _, err := Apply(context.Background(), s, records); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if s.calls != 2 {
		t.Errorf("Suggest called %d times, want 2", s.calls)
	}
}

func TestApply_NothingToDo(t *testing.T) {
	s := &mockSuggester{}
	got, updated, err := Apply(context.Background(), s, []domain.Transaction{record(1, "Rent", "Housing")})
	if err != nil || updated != 0 || len(got) != 1 {
		t.Fatalf("Apply() = %v, %d, %v", got, updated, err)
	}
	if s.calls != 0 {
		t.Error("Suggest should not be called without candidates")
	}
}

func TestApply_Error(t *testing.T) {
	s := &mockSuggester{err: errors.New("quota exceeded")}
	_, _, err := Apply(context.Background(), s, []domain.Transaction{record(1, "x", domain.DefaultCategory)})
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("Apply() error = %v", err)
	}
}

func TestParseSuggestions(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    map[int]string
		wantErr bool
	}{
		{
			name: "plain",
			raw:  `[{"id": 1, "category": "Groceries"}]`,
			want: map[int]string{1: "Groceries"},
		},
		{
			name: "fenced",
			raw:  "```json\n[{\"id\": 3, \"category\": \" Travel \"}]\n```",
			want: map[int]string{3: "Travel"},
		},
		{
			name:    "not json",
			raw:     "Sure! Here are your categories.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSuggestions(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSuggestions() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); !tt.wantErr && diff != "" {
				t.Errorf("parseSuggestions() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := buildPrompt([]Candidate{{ID: 7, Description: "Uber", Amount: "12.00", Type: "Expense"}}, []string{"Transport"})
	if err != nil {
		t.Fatalf("buildPrompt() error = %v", err)
	}
	for _, want := range []string{"- Transport", `"id":7`, `"description":"Uber"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
