package annotators

import (
	"strings"
)

// ipaDigraphs maps two-rune IPA sequences to respelling segments.
// Checked before single runes so "oʊ" wins over "o" + "ʊ".
var ipaDigraphs = map[string]string{
	"tʃ": "ch",
	"dʒ": "j",
	"oʊ": "oh",
	"əʊ": "oh",
	"eɪ": "ay",
	"aɪ": "eye",
	"aʊ": "ow",
	"ɔɪ": "oy",
	"ɪə": "eer",
	"eə": "air",
	"ʊə": "oor",
	"ɜː": "ur",
	"ɑː": "ah",
	"ɔː": "aw",
	"iː": "ee",
	"uː": "oo",
}

// ipaSingles maps single IPA runes to respelling segments. Plain ASCII
// consonants pass through unmapped.
var ipaSingles = map[rune]string{
	'ə': "uh",
	'ʌ': "uh",
	'æ': "a",
	'ɑ': "ah",
	'ɒ': "o",
	'ɔ': "aw",
	'ɛ': "eh",
	'e': "eh",
	'ɪ': "i",
	'i': "ee",
	'ʊ': "uu",
	'u': "oo",
	'ɜ': "ur",
	'ŋ': "ng",
	'θ': "th",
	'ð': "th",
	'ʃ': "sh",
	'ʒ': "zh",
	'j': "y",
	'ɡ': "g",
	'ɹ': "r",
	'ɾ': "t",
	'ː': "", // length mark, already folded into digraphs
	'ʔ': "",
}

// RespellIPA converts an IPA transcription to an English pronunciation
// respelling: syllables joined with hyphens, the primary-stressed
// syllable uppercased. "/həˈloʊ/" becomes "huh-LOH".
//
// The mapping is heuristic and intentionally lossy - respellings are a
// reading aid, not a phonological record.
func RespellIPA(ipa string) string {
	s := strings.Trim(strings.TrimSpace(ipa), "/[]")
	if s == "" {
		return ""
	}

	type syllable struct {
		text     string
		stressed bool
	}

	// Stress marks and syllable dots open a new syllable.
	var syllables []syllable
	current := syllable{}
	flush := func() {
		if current.text != "" {
			syllables = append(syllables, current)
		}
	}
	for _, r := range s {
		switch r {
		case 'ˈ':
			flush()
			current = syllable{stressed: true}
		case 'ˌ', '.', ' ':
			flush()
			current = syllable{}
		default:
			current.text += string(r)
		}
	}
	flush()

	parts := make([]string, 0, len(syllables))
	for _, syl := range syllables {
		respelled := respellSegment(syl.text)
		if respelled == "" {
			continue
		}
		if syl.stressed {
			respelled = strings.ToUpper(respelled)
		}
		parts = append(parts, respelled)
	}
	return strings.Join(parts, "-")
}

// respellSegment maps one syllable's IPA runes, longest match first.
func respellSegment(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); {
		if i+1 < len(runes) {
			if seg, ok := ipaDigraphs[string(runes[i:i+2])]; ok {
				b.WriteString(seg)
				i += 2
				continue
			}
		}
		if seg, ok := ipaSingles[runes[i]]; ok {
			b.WriteString(seg)
		} else {
			b.WriteRune(runes[i])
		}
		i++
	}
	return b.String()
}
