package protocol

import "testing"

func TestIsKnownCode(t *testing.T) {
	for _, code := range []string{
		"", ErrBadRequest, ErrInvalidTarget, ErrRange, ErrCooldown,
		ErrBusy, ErrStaggered, ErrRateLimit, ErrStale, ErrInternal,
	} {
		if !IsKnownCode(code) {
			t.Errorf("IsKnownCode(%q) = false, want true", code)
		}
	}
	if IsKnownCode("E_MADE_UP") {
		t.Errorf("IsKnownCode accepted unknown code")
	}
}
