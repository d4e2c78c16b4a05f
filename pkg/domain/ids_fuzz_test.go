package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseSessionID tests that parsing never panics on arbitrary input
// and always returns either a valid ID or an error.
func FuzzParseSessionID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseSessionID(input)
		if err == nil {
			roundTrip, err2 := ParseSessionID(id.String())
			if err2 != nil {
				t.Errorf("Valid ID failed round-trip: %v", err2)
			}
			if roundTrip != id {
				t.Error("Round-trip changed ID value")
			}
			if id.IsNil() {
				t.Error("Nil session ID was accepted")
			}
		}
		if !utf8.ValidString(input) && err == nil {
			t.Error("Non-UTF8 input was accepted")
		}
	})
}

// FuzzParseExternalIDs ensures requester and origin ids share one validation rule.
func FuzzParseExternalIDs(f *testing.F) {
	f.Add("123456789012345678")
	f.Add("")
	f.Add(" padded ")

	f.Fuzz(func(t *testing.T, input string) {
		_, errRequester := ParseRequesterID(input)
		_, errOrigin := ParseOriginID(input)
		if (errRequester == nil) != (errOrigin == nil) {
			t.Error("Inconsistent parsing across external ID types")
		}
		if !utf8.ValidString(input) && errRequester == nil {
			t.Error("Non-UTF8 input was accepted")
		}
	})
}
