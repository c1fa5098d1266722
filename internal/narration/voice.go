package narration

import (
	"strings"

	"golang.org/x/text/language"
)

// SelectVoice picks the voice that best matches the preferred locales,
// favouring names that contain one of keywords among voices of the matched
// language. It reports false when nothing suits; callers then use the
// platform default.
func SelectVoice(voices []Voice, locales, keywords []string) (Voice, bool) {
	if len(voices) == 0 {
		return Voice{}, false
	}

	tags := make([]language.Tag, len(voices))
	for i, v := range voices {
		tag, err := language.Parse(strings.ReplaceAll(v.Locale, "_", "-"))
		if err != nil {
			tag = language.Und
		}
		tags[i] = tag
	}

	desired := make([]language.Tag, 0, len(locales))
	for _, locale := range locales {
		if tag, err := language.Parse(locale); err == nil {
			desired = append(desired, tag)
		}
	}
	if len(desired) == 0 {
		desired = append(desired, language.English)
	}

	_, idx, confidence := language.NewMatcher(tags).Match(desired...)
	if confidence == language.No {
		// No locale fits; fall back to names alone.
		if v, ok := byKeyword(voices, append([]string{"english"}, keywords...)); ok {
			return v, true
		}
		return Voice{}, false
	}

	base, _ := tags[idx].Base()
	candidates := []Voice{voices[idx]}
	for i, v := range voices {
		if i == idx {
			continue
		}
		if b, c := tags[i].Base(); c == language.Exact && b == base {
			candidates = append(candidates, v)
		}
	}
	if v, ok := byKeyword(candidates, keywords); ok {
		return v, true
	}
	return voices[idx], true
}

func byKeyword(voices []Voice, keywords []string) (Voice, bool) {
	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword == "" {
			continue
		}
		for _, v := range voices {
			if strings.Contains(strings.ToLower(v.Name), keyword) || strings.Contains(strings.ToLower(v.ID), keyword) {
				return v, true
			}
		}
	}
	return Voice{}, false
}
