package perrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(BadParameter, "shamir.New")
	if err == nil {
		t.Fatal("New returned nil")
	}
	if err.Kind != BadParameter {
		t.Errorf("expected kind %s, got %s", BadParameter, err.Kind)
	}
	if err.Err != nil {
		t.Error("expected no wrapped cause")
	}
}

func TestWrap(t *testing.T) {
	underlying := fmt.Errorf("underlying error")
	err := Wrap(Internal, "privcount.finalize", underlying)

	if err.Err == nil {
		t.Error("expected underlying error to be set")
	}
	if !errors.Is(err, underlying) {
		t.Error("wrapped error should unwrap to underlying error")
	}
}

func TestWrapSegmentHidesSegmentFromMessage(t *testing.T) {
	underlying := errors.New("mac mismatch")
	seedErr := WrapSegment("server.DecodeFrom", "seed", underlying)
	ctrErr := WrapSegment("server.DecodeFrom", "counters", underlying)

	if seedErr.Error() != ctrErr.Error() {
		t.Errorf("decryption failures must render identically regardless of segment: %q != %q",
			seedErr.Error(), ctrErr.Error())
	}
	if seedErr.Segment != "seed" || ctrErr.Segment != "counters" {
		t.Error("Segment should still be available to the caller holding the *Error value")
	}
}

func TestIs(t *testing.T) {
	err := New(MaskExhaustion, "privcount.counterMasks")
	if !Is(err, MaskExhaustion) {
		t.Error("Is should report true for a matching kind")
	}
	if Is(err, Internal) {
		t.Error("Is should report false for a non-matching kind")
	}
	if Is(errors.New("plain error"), Internal) {
		t.Error("Is should report false for a non-*Error")
	}
}

func TestErrorUnwrapChain(t *testing.T) {
	root := errors.New("root cause")
	wrapped := Wrap(DecryptionFailure, "hybrid.Decrypt", root)
	if !errors.Is(wrapped, root) {
		t.Error("errors.Is should see through Unwrap to the root cause")
	}
}

func TestKindString(t *testing.T) {
	cases := []struct {
		k    Kind
		want string
	}{
		{BadParameter, "bad parameter"},
		{DecryptionFailure, "decryption failed"},
		{MaskExhaustion, "mask exhaustion"},
		{Internal, "internal error"},
	}
	for _, c := range cases {
		if got := c.k.String(); got != c.want {
			t.Errorf("Kind(%d).String() = %q, want %q", c.k, got, c.want)
		}
	}
}
