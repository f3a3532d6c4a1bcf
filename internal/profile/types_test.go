// SPDX-License-Identifier: MPL-2.0

package profile

import (
	"errors"
	"testing"
)

func TestName_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   Name
		wantErr bool
	}{
		{"simple", "prod", false},
		{"with dots", "lpar.dev", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"slash", "a/b", true},
		{"backslash", `a\b`, true},
		{"dot", ".", true},
		{"dotdot", "..", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.value.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidName) {
				t.Errorf("error %v should wrap ErrInvalidName", err)
			}
		})
	}
}

func TestType_Validate(t *testing.T) {
	t.Parallel()

	for _, typ := range []Type{TypeZOSMF, TypeSSH, TypeLocal, TypeS3} {
		if err := typ.Validate(); err != nil {
			t.Errorf("Type(%q).Validate() = %v", typ, err)
		}
	}

	err := Type("ftp").Validate()
	if !errors.Is(err, ErrInvalidType) {
		t.Errorf("Type(ftp).Validate() = %v, want ErrInvalidType", err)
	}
	var typeErr *InvalidTypeError
	if !errors.As(err, &typeErr) || typeErr.Value != "ftp" {
		t.Errorf("expected InvalidTypeError for ftp, got %v", err)
	}
}

func TestProfile_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		profile    Profile
		wantFields int
	}{
		{"zosmf", Profile{Name: "p", Type: TypeZOSMF, Host: "mvs", Port: 443}, 0},
		{"local", Profile{Name: "p", Type: TypeLocal, BasePath: "/mirror"}, 0},
		{"s3", Profile{Name: "p", Type: TypeS3, Host: "minio", Bucket: "cpy"}, 0},
		{"zosmf without host", Profile{Name: "p", Type: TypeZOSMF}, 1},
		{"local without base path", Profile{Name: "p", Type: TypeLocal}, 1},
		{"s3 without bucket", Profile{Name: "p", Type: TypeS3, Host: "minio"}, 1},
		{"port out of range", Profile{Name: "p", Type: TypeSSH, Host: "h", Port: 70000}, 1},
		{"everything wrong", Profile{Name: "", Type: "ftp", Port: -1}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.profile.Validate()
			if tt.wantFields == 0 {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var perr *InvalidProfileError
			if !errors.As(err, &perr) {
				t.Fatalf("Validate() = %v, want InvalidProfileError", err)
			}
			if len(perr.FieldErrors) != tt.wantFields {
				t.Errorf("field errors = %v, want %d", perr.FieldErrors, tt.wantFields)
			}
			if !errors.Is(err, ErrInvalidProfile) {
				t.Error("error should wrap ErrInvalidProfile")
			}
		})
	}
}

func TestProfile_Description(t *testing.T) {
	t.Parallel()

	p := Profile{Name: "prod", Host: "mvs1.example.com", Port: 443, User: "IBMUSER"}
	if got, want := p.Description(), "IBMUSER@mvs1.example.com:443"; got != want {
		t.Errorf("Description() = %q, want %q", got, want)
	}
	if got, want := p.Address(), "mvs1.example.com:443"; got != want {
		t.Errorf("Address() = %q, want %q", got, want)
	}
}
