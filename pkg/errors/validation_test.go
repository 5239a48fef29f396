package errors

import (
	"strings"
	"testing"
)

func TestValidateStudentID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode Code
	}{
		{"valid digits", "410812345", ""},
		{"valid mixed", "s1234.chen_w-2", ""},

		{"empty", "", ErrCodeUnauthorized},
		{"too long", strings.Repeat("a", 65), ErrCodeInvalidStudent},
		{"path traversal", "a..b", ErrCodeInvalidStudent},
		{"slash", "a/b", ErrCodeInvalidStudent},
		{"leading dot", ".hidden", ErrCodeInvalidStudent},
		{"null byte", "foo\x00bar", ErrCodeInvalidStudent},
		{"newline", "foo\nbar", ErrCodeInvalidStudent},
		{"space", "foo bar", ErrCodeInvalidStudent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStudentID(tt.input)
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("ValidateStudentID(%q) error = %v", tt.input, err)
				}
				return
			}
			if !Is(err, tt.wantCode) {
				t.Errorf("ValidateStudentID(%q) error = %v, want code %s", tt.input, err, tt.wantCode)
			}
		})
	}
}

func TestParseDeptID(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"12", 12, false},
		{" 7 ", 7, false},
		{"-1", 0, true},
		{"cs", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDeptID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDeptID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidDepartment) {
				t.Errorf("ParseDeptID(%q) returned wrong error code: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDeptID(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseCourseID(t *testing.T) {
	if id, err := ParseCourseID("101"); err != nil || id != 101 {
		t.Errorf("ParseCourseID(101) = %d, %v", id, err)
	}
	for _, bad := range []string{"0", "-3", "x", ""} {
		if _, err := ParseCourseID(bad); !Is(err, ErrCodeInvalidInput) {
			t.Errorf("ParseCourseID(%q) error = %v, want INVALID_INPUT", bad, err)
		}
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "catalog.json", false},
		{"valid nested", "data/2024/catalog.json", false},
		{"valid absolute", "/srv/coursemap/catalog.json", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 600), true},
		{"path traversal", "../../../etc/passwd", true},
		{"path traversal middle", "foo/../bar", true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidStatus,
		ErrCodeInvalidDepartment,
		ErrCodeInvalidStudent,
		ErrCodeInvalidFormat,
		ErrCodeInvalidCatalog,
		ErrCodeCatalogCycle,
		ErrCodeNotFound,
		ErrCodeCourseNotFound,
		ErrCodePrerequisitesUnmet,
		ErrCodeStorage,
		ErrCodeTimeout,
		ErrCodeUnauthorized,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
