package auth

import (
	"errors"
	"testing"

	"github.com/isdelr/inkwell-be/internal/apperr"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		owner     string
		wantErr   error
	}{
		{name: "owner may mutate", principal: "u1", owner: "u1", wantErr: nil},
		{name: "different user denied", principal: "u2", owner: "u1", wantErr: apperr.ErrForbidden},
		{name: "empty principal denied", principal: "", owner: "u1", wantErr: apperr.ErrForbidden},
		{name: "empty principal and owner denied", principal: "", owner: "", wantErr: apperr.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.principal, tt.owner)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authorize(%q, %q) = %v, want %v", tt.principal, tt.owner, err, tt.wantErr)
			}
		})
	}
}
