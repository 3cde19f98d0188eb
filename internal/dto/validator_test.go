package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		in      any
		wantErr bool
	}{
		{name: "add ok", in: &AddItemRequest{PackageID: 1, Username: "Notch"}},
		{name: "add without username", in: &AddItemRequest{PackageID: 1}},
		{name: "add missing package", in: &AddItemRequest{Username: "Notch"}, wantErr: true},
		{name: "bad username", in: &AddItemRequest{PackageID: 1, Username: "no spaces allowed"}, wantErr: true},
		{name: "short username", in: &CheckoutRequest{PackageID: 1, Username: "ab"}, wantErr: true},
		{name: "zero delta", in: &UpdateQuantityRequest{PackageID: 1, Delta: 0}, wantErr: true},
		{name: "negative delta", in: &UpdateQuantityRequest{PackageID: 1, Delta: -2}},
		{name: "update missing package", in: &UpdateQuantityRequest{Delta: 1}, wantErr: true},,
		{name: "quantity below one", in: &SetQuantityRequest{PackageID: 1, Quantity: 0}, wantErr: true},
		{name: "quantity ok", in: &SetQuantityRequest{PackageID: 1, Quantity: 3}},
		{name: "login ok", in: &LoginVerificationRequest{IGN: "Steve", IP: "1.1.1.1", Country: "DE"}},
		{name: "login missing ip", in: &LoginVerificationRequest{IGN: "Steve", Country: "DE"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
