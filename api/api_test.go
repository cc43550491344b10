package api

import "testing"

func TestApiName(t *testing.T) {
	var a Api
	if got := a.Name(); got != "veeox-api::Api" {
		t.Errorf("Expected veeox-api::Api, got %s", got)
	}

	// Repeated calls must be identical
	for i := 0; i < 3; i++ {
		if a.Name() != Name {
			t.Fatalf("Name changed on call %d", i)
		}
	}
}

func TestInfo(t *testing.T) {
	info := Info()
	if info.Name != Name {
		t.Errorf("Expected name %s, got %s", Name, info.Name)
	}
	if info.Version != Version || info.Commit != Commit {
		t.Errorf("Unexpected build info: %+v", info)
	}
	if info.String() != "veeox-api::Api dev (commit=none)" {
		t.Errorf("Unexpected string: %s", info.String())
	}
}

func BenchmarkApiName(b *testing.B) {
	var a Api
	for i := 0; i < b.N; i++ {
		_ = a.Name()
	}
}
