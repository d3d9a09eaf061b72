package quality

import "testing"

func TestUserNameFallsBackToUsername(t *testing.T) {
	if got := (User{Username: "inspector01"}).Name(); got != "inspector01" {
		t.Fatalf("Name() = %q, want username", got)
	}
	if got := (User{Username: "inspector01", DisplayName: "Sato"}).Name(); got != "Sato" {
		t.Fatalf("Name() = %q, want display name", got)
	}
}

func TestValidUsername(t *testing.T) {
	for _, ok := range []string{"inspector01", "sato.k", "qa+line_2", "佐藤"} {
		if !ValidUsername(ok) {
			t.Fatalf("ValidUsername(%q) = false, want true", ok)
		}
	}
	for _, bad := range []string{"", "two words", "a/b", "x#1"} {
		if ValidUsername(bad) {
			t.Fatalf("ValidUsername(%q) = true, want false", bad)
		}
	}
}
