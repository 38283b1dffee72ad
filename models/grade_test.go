package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestQualityGradeIsAtLeast(t *testing.T) {
	tests := []struct {
		grade QualityGrade
		min   QualityGrade
		want  bool
	}{
		{GradeBest, GradeFair, true},
		{GradeFair, GradeBest, false},
		{GradeGood, GradeGood, true},
		{GradePoor, GradeFair, false},
		{GradeFair, 0, true},
	}

	for _, tt := range tests {
		if got := tt.grade.IsAtLeast(tt.min); got != tt.want {
			t.Errorf("%v.IsAtLeast(%v) = %v, want %v", tt.grade, tt.min, got, tt.want)
		}
	}
}

func TestParseQualityGrade(t *testing.T) {
	tests := []struct {
		input   string
		want    QualityGrade
		wantErr bool
	}{
		{input: "BEST", want: GradeBest},
		{input: "good", want: GradeGood},
		{input: " 중 ", want: GradeFair},
		{input: "최상", want: GradeBest},
		{input: "하", want: GradePoor},
		{input: "", want: GradeFair},
		{input: "mint", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseQualityGrade(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseQualityGrade(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Fatalf("ParseQualityGrade(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBookRequestJSONGrade(t *testing.T) {
	var req BookRequest
	if err := json.Unmarshal([]byte(`{"itemId":42,"title":"Go","minQuality":"상"}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.MinQuality != GradeGood {
		t.Fatalf("minQuality = %v, want GOOD", req.MinQuality)
	}

	out, err := json.Marshal(VerifiedListing{ItemID: 1, Quality: GradeBest})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if want := `"quality":"BEST"`; !strings.Contains(string(out), want) {
		t.Fatalf("json %s missing %s", out, want)
	}
}

func TestNewSellerBundleTotals(t *testing.T) {
	bundle := NewSellerBundle(SellerCandidate{SellerCode: "7"}, []VerifiedListing{
		{ItemID: 1, Price: 1000},
		{ItemID: 2, Price: 2500},
	})
	if bundle.TotalBookCount != len(bundle.Books) || bundle.TotalBookCount != 2 {
		t.Fatalf("count = %d, want 2", bundle.TotalBookCount)
	}
	if bundle.TotalPrice != 3500 {
		t.Fatalf("price = %d, want 3500", bundle.TotalPrice)
	}
}
