package annotators

import "testing"

func TestRespellIPA(t *testing.T) {
	tests := []struct {
		ipa  string
		want string
	}{
		{"/həˈloʊ/", "huh-LOH"},
		{"həˈloʊ", "huh-LOH"},
		{"/wɜːld/", "wurld"},
		{"/ˈwɜːld/", "WURLD"},
		{"/ˌɪntəˈnæʃənəl/", "intuh-NASHUHNUHL"},
		{"/kæt/", "kat"},
		{"/tʃɜːtʃ/", "church"},
		{"/dʒʌdʒ/", "juhj"},
		{"/ˈiːvən.ɪŋ/", "EEVUHN-ing"},
		{"", ""},
		{"//", ""},
		{"/ˈ/", ""},
	}
	for _, tt := range tests {
		if got := RespellIPA(tt.ipa); got != tt.want {
			t.Errorf("RespellIPA(%q) = %q, want %q", tt.ipa, got, tt.want)
		}
	}
}

func TestRespellSegmentDigraphPrecedence(t *testing.T) {
	// "oʊ" must map as a digraph, not as "o" then "ʊ".
	if got := respellSegment("loʊ"); got != "loh" {
		t.Errorf("respellSegment(loʊ) = %q, want loh", got)
	}
	// Unmapped ASCII consonants pass through.
	if got := respellSegment("strɛŋθ"); got != "strehngth" {
		t.Errorf("respellSegment(strɛŋθ) = %q", got)
	}
}
