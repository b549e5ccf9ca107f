package normalize

import (
	"strings"
	"testing"

	"jobpulse-engine/pkg/models"
)

func TestParseSalary(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantMin float64
		wantMax float64
		wantNil bool
	}{
		{name: "range with commas", text: "$50,000 - $80,000 per year", wantMin: 50000, wantMax: 80000},
		{name: "k suffix", text: "50k-80k USD", wantMin: 50000, wantMax: 80000},
		{name: "single value", text: "up to $120,000", wantMin: 120000},
		{name: "no numbers", text: "competitive salary", wantNil: true},
		{name: "small numbers ignored", text: "3+ years experience, team of 12", wantNil: true},
		{name: "indian format", text: "₹6,00,000 - ₹15,00,000", wantMin: 600000, wantMax: 1500000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			min, max := ParseSalary(tt.text)
			if tt.wantNil {
				if min != nil || max != nil {
					t.Fatalf("expected no bounds, got min=%v max=%v", min, max)
				}
				return
			}
			if min == nil || *min != tt.wantMin {
				t.Errorf("min = %v, want %v", min, tt.wantMin)
			}
			if tt.wantMax != 0 && (max == nil || *max != tt.wantMax) {
				t.Errorf("max = %v, want %v", max, tt.wantMax)
			}
		})
	}
}

func TestCurrencyForCountry(t *testing.T) {
	if got := CurrencyForCountry("gb"); got != "GBP" {
		t.Errorf("GB currency = %s, want GBP", got)
	}
	if got := CurrencyForCountry("XX"); got != "USD" {
		t.Errorf("unknown country currency = %s, want USD", got)
	}
}

func TestExperience(t *testing.T) {
	tests := []struct {
		title string
		want  models.ExperienceLevel
	}{
		{"Senior Software Engineer", models.ExperienceSenior},
		{"Lead Developer", models.ExperienceSenior},
		{"Junior QA Analyst", models.ExperienceJunior},
		{"Software Engineering Internship", models.ExperienceIntern},
		{"Head of Engineering", models.ExperienceExecutive},
		{"Software Engineer", models.ExperienceMid},
	}
	for _, tt := range tests {
		if got := Experience(tt.title, ""); got != tt.want {
			t.Errorf("Experience(%q) = %s, want %s", tt.title, got, tt.want)
		}
	}
}

func TestFlags(t *testing.T) {
	remote, hybrid, urgent := Flags("Backend Engineer", "Fully remote role, start immediately", "Anywhere")
	if !remote {
		t.Error("expected remote flag")
	}
	if hybrid {
		t.Error("did not expect hybrid flag")
	}
	if !urgent {
		t.Error("expected urgent flag")
	}

	_, hybrid, _ = Flags("Engineer", "Hybrid working from our London office", "London")
	if !hybrid {
		t.Error("expected hybrid flag")
	}
}

func TestMapJobType(t *testing.T) {
	tests := []struct {
		raw  string
		want models.JobType
	}{
		{"FULLTIME", models.JobTypeFullTime},
		{"part_time", models.JobTypePartTime},
		{"Contract", models.JobTypeContract},
		{"intern", models.JobTypeInternship},
		{"", models.JobTypeFullTime},
	}
	for _, tt := range tests {
		if got := MapJobType(tt.raw); got != tt.want {
			t.Errorf("MapJobType(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestRequirementsExcerpt(t *testing.T) {
	desc := "Great team.\nRequirements: 5 years of Go.\nMust have Kubernetes experience.\nNice office."
	got := RequirementsExcerpt(desc)
	if !strings.Contains(got, "Requirements: 5 years of Go.") {
		t.Errorf("excerpt missing requirements line: %q", got)
	}
	if strings.Contains(got, "Nice office") {
		t.Errorf("excerpt should not include unrelated lines: %q", got)
	}

	short := "Just a short description"
	if got := RequirementsExcerpt(short); got != short {
		t.Errorf("fallback excerpt = %q, want full text", got)
	}
}

func TestExtractSkills(t *testing.T) {
	title := "Senior Golang Engineer"
	desc := "We use Go, PostgreSQL, Redis, Docker and Kubernetes on AWS. Agile team."

	skills := ExtractSkills(title, desc)
	if len(skills) == 0 {
		t.Fatal("expected skills to be extracted")
	}
	want := []string{"golang", "postgresql", "redis", "aws", "docker", "kubernetes", "agile"}
	got := strings.Join(skills, ",")
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("skills %v missing %q", skills, w)
		}
	}
	// golang matched, the bare "go" entry must not double-report
	for _, s := range skills {
		if s == "go" {
			t.Errorf("skills %v contains both golang and go", skills)
		}
	}

	// deterministic
	again := ExtractSkills(title, desc)
	if strings.Join(again, ",") != got {
		t.Errorf("extraction not deterministic: %v vs %v", skills, again)
	}
}

func TestSector(t *testing.T) {
	if got := Sector("DevOps Engineer", ""); got != "Technology" {
		t.Errorf("sector = %s, want Technology", got)
	}
	if got := Sector("Office Manager", "general admin duties"); got != "General" {
		t.Errorf("sector = %s, want General", got)
	}
}
