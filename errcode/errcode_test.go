package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]error{
		"ok":             OK,
		"transport":      Transport,
		"invalid_params": InvalidParams,
		"unsupported":    Unsupported,
		"closed":         Closed,
		"error":          Error,
	}
	for want, e := range cases {
		if e.Error() != want {
			t.Fatalf("code %q mismatch: got %q", want, e.Error())
		}
	}
}

func TestWrapKeepsCauseAndCode(t *testing.T) {
	cause := errors.New("nack")
	err := Wrap(Transport, "read 0x000d", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("cause lost: %v", err)
	}
	if !errors.Is(err, Transport) {
		t.Fatalf("errors.Is(err, Transport) = false for %v", err)
	}
	if errors.Is(err, InvalidParams) {
		t.Fatalf("transport error matched InvalidParams")
	}
	if got := Of(fmt.Errorf("check: %w", err)); got != Error {
		// Of does not unwrap; only direct coders are recognised.
		t.Fatalf("Of(wrapped) = %q, want %q", got, Error)
	}
	if got := Of(err); got != Transport {
		t.Fatalf("Of = %q, want %q", got, Transport)
	}
	if err.Error() != "transport read 0x000d: nack" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(Transport, "x", nil) != nil {
		t.Fatal("Wrap(nil) should be nil")
	}
	if Of(nil) != OK {
		t.Fatal("Of(nil) should be OK")
	}
}

func TestInvalid(t *testing.T) {
	err := Invalid("phy", "id 3 not in {1,2}")
	if !errors.Is(err, InvalidParams) {
		t.Fatalf("expected InvalidParams, got %v", err)
	}
	if Of(err) != InvalidParams {
		t.Fatalf("Of = %q", Of(err))
	}
	if err.Error() != "invalid_params phy: id 3 not in {1,2}" {
		t.Fatalf("message = %q", err.Error())
	}
}
