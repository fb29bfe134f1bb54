package idiom

// Parse splits idiom into characters and attaches the pinyin parts reported
// by lk for each position. Positions the lookup does not cover get empty parts.
func Parse(idiom string, lk Lookup) []PhoneticChar {
	runes := []rune(idiom)
	initials, finals, tones := lk.Decompose(idiom)

	out := make([]PhoneticChar, len(runes))
	for i, r := range runes {
		out[i] = PhoneticChar{
			Char: string(r),
			Pinyin: Pinyin{
				Initial: at(initials, i),
				Final:   at(finals, i),
				Tone:    at(tones, i),
			},
		}
	}
	return out
}

func at(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}
