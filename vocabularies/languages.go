package vocabularies

import (
	"strings"
)

// This type holds the set of recognized ISO 639-3 language codes. Read-only
// after construction.
type Languages struct {
	codes map[string]struct{}
}

// NewLanguages builds a language vocabulary from an explicit list of
// lower-case 3-letter codes.
func NewLanguages(codes []string) *Languages {
	v := &Languages{codes: make(map[string]struct{}, len(codes))}
	for _, code := range codes {
		v.codes[code] = struct{}{}
	}
	return v
}

// DefaultLanguages returns a vocabulary covering the ISO 639-3 codes for all
// languages with an ISO 639-1 two-letter equivalent, which is the set the
// deposit form offers.
func DefaultLanguages() *Languages {
	return NewLanguages(iso6393Codes)
}

// Contains reports whether a code is a recognized lower-case 3-letter
// ISO 639-3 code. Codes in the wrong case or of the wrong length are not
// recognized.
func (v *Languages) Contains(code string) bool {
	if len(code) != 3 || code != strings.ToLower(code) {
		return false
	}
	_, ok := v.codes[code]
	return ok
}

// ISO 639-3 codes for the ISO 639-1 macrolanguage set
var iso6393Codes = []string{
	"aar", "abk", "afr", "aka", "amh", "ara", "arg", "asm", "ava", "ave",
	"aym", "aze", "bak", "bam", "bel", "ben", "bis", "bod", "bos", "bre",
	"bul", "cat", "ces", "cha", "che", "chu", "chv", "cor", "cos", "cre",
	"cym", "dan", "deu", "div", "dzo", "ell", "eng", "epo", "est", "eus",
	"ewe", "fao", "fas", "fij", "fin", "fra", "fry", "ful", "gla", "gle",
	"glg", "glv", "grn", "guj", "hat", "hau", "hbs", "heb", "her", "hin",
	"hmo", "hrv", "hun", "hye", "ibo", "ido", "iii", "iku", "ile", "ina",
	"ind", "ipk", "isl", "ita", "jav", "jpn", "kal", "kan", "kas", "kat",
	"kau", "kaz", "khm", "kik", "kin", "kir", "kom", "kon", "kor", "kua",
	"kur", "lao", "lat", "lav", "lim", "lin", "lit", "ltz", "lub", "lug",
	"mah", "mal", "mar", "mkd", "mlg", "mlt", "mon", "mri", "msa", "mya",
	"nau", "nav", "nbl", "nde", "ndo", "nep", "nld", "nno", "nob", "nor",
	"nya", "oci", "oji", "ori", "orm", "oss", "pan", "pli", "pol", "por",
	"pus", "que", "roh", "ron", "run", "rus", "sag", "san", "sin", "slk",
	"slv", "sme", "smo", "sna", "snd", "som", "sot", "spa", "sqi", "srd",
	"srp", "ssw", "sun", "swa", "swe", "tah", "tam", "tat", "tel", "tgk",
	"tgl", "tha", "tir", "ton", "tsn", "tso", "tuk", "tur", "twi", "uig",
	"ukr", "urd", "uzb", "ven", "vie", "vol", "wln", "wol", "xho", "yid",
	"yor", "zha", "zho", "zul",
}
