package job

import "testing"

func TestNewConfirmationCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := NewConfirmationCode()
		if err != nil {
			t.Fatalf("generate code: %v", err)
		}
		if len(code) != 4 {
			t.Fatalf("expected 4 digits, got %q", code)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("expected digits only, got %q", code)
			}
		}
	}
}

func TestCodeMatches(t *testing.T) {
	if !codeMatches("0042", "0042") {
		t.Errorf("expected equal codes to match")
	}
	if codeMatches("0042", "0043") {
		t.Errorf("expected different codes to mismatch")
	}
	if codeMatches("42", "0042") {
		t.Errorf("expected unpadded code to mismatch the stored form")
	}
}
