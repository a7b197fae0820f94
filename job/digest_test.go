package job

import "testing"

func TestDigestAddress(t *testing.T) {
	digest := DigestAddress("12 Ermou St, Athens")
	if len(digest) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(digest))
	}
	if !Digested(digest) {
		t.Errorf("expected digest to be recognized as digested")
	}
	if digest != DigestAddress("12 Ermou St, Athens") {
		t.Errorf("expected digest to be deterministic")
	}
}

func TestDigested(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"12 Ermou St, Athens", false},
		{"", false},
		{DigestAddress("anything"), true},
		// Uppercase hex is not our digest form.
		{"ABCDEF0123456789ABCDEF0123456789ABCDEF0123456789ABCDEF0123456789", false},
		// 63 chars, one short.
		{DigestAddress("anything")[:63], false},
	}
	for _, tc := range cases {
		if got := Digested(tc.input); got != tc.want {
			t.Errorf("Digested(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}
