package errors

import "testing"

func TestSentinelErrors(t *testing.T) {
	if ErrUserExists == nil {
		t.Error("ErrUserExists should not be nil")
	}
	if ErrInvalidCredentials == nil {
		t.Error("ErrInvalidCredentials should not be nil")
	}
	if ErrInvalidToken == nil {
		t.Error("ErrInvalidToken should not be nil")
	}
	if ErrLastAdmin == nil {
		t.Error("ErrLastAdmin should not be nil")
	}
}
