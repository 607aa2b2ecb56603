package errors

import (
	"testing"

	"github.com/google/uuid"
)

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "osc-1", false},
		{"numeric", "1", false},
		{"with spaces", "low pass", false},
		{"unicode", "échо", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"null byte", "a\x00b", true},
		{"newline", "a\nb", true},
		{"quote", `a"b`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateResourceID(t *testing.T) {
	if err := ValidateResourceID(uuid.NewString()); err != nil {
		t.Errorf("ValidateResourceID(uuid) = %v", err)
	}
	for _, bad := range []string{"", "abc", "../etc/passwd"} {
		if err := ValidateResourceID(bad); err == nil {
			t.Errorf("ValidateResourceID(%q) = nil, want error", bad)
		}
	}
}
