package scheduler

import (
	"reflect"
	"testing"
)

func TestQueriesForPlannedWins(t *testing.T) {
	planned := []string{"devops"}
	if got := queriesFor("IN", planned); !reflect.DeepEqual(got, planned) {
		t.Errorf("queriesFor = %v, want planned list untouched", got)
	}
}

func TestQueriesForExpandsDefaults(t *testing.T) {
	got := queriesFor("GB", nil)
	if len(got) == 0 {
		t.Fatal("expected default queries for GB")
	}

	want := map[string]bool{"software developer": true, "software developer jobs": true}
	found := 0
	seen := make(map[string]int)
	for _, q := range got {
		seen[q]++
		if want[q] {
			found++
		}
	}
	if found != 2 {
		t.Errorf("expected base query and its variant in %v", got)
	}
	for q, n := range seen {
		if n > 1 {
			t.Errorf("query %q appears %d times", q, n)
		}
	}
}

func TestQueriesForUnknownCountry(t *testing.T) {
	got := queriesFor("ZZ", nil)
	if len(got) == 0 {
		t.Fatal("expected generic fallback queries")
	}
	if got[0] != "software engineer" {
		t.Errorf("first fallback query = %q", got[0])
	}
}

func TestQueryVariants(t *testing.T) {
	got := queryVariants("data analyst")
	want := []string{"data analyst", "data analyst jobs"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("queryVariants = %v, want %v", got, want)
	}

	if got := queryVariants(""); !reflect.DeepEqual(got, genericQueries) {
		t.Errorf("empty base should fall back to generic queries, got %v", got)
	}
}
