package layout

import (
	"sort"

	"golang.org/x/text/unicode/bidi"
)

var textPresets = map[string]string{
	"pangram":     "The quick brown fox jumps over the lazy dog",
	"latin":       "ABCDEFGHIJKLMNOPQRSTUVWXYZ\nabcdefghijklmnopqrstuvwxyz\n0123456789",
	"digits":      "0123456789",
	"punctuation": "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~",
}

// LookupText 按名称返回预设样张文本。
func LookupText(name string) (string, bool) {
	s, ok := textPresets[name]
	return s, ok
}

// TextPresetNames 返回全部预设文本名称（已排序）。
func TextPresetNames() []string {
	names := make([]string, 0, len(textPresets))
	for name := range textPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DetectRTL 依据第一个强方向字符判断文本是否从右向左书写。
func DetectRTL(text string) bool {
	for _, r := range text {
		props, _ := bidi.LookupRune(r)
		switch props.Class() {
		case bidi.R, bidi.AL:
			return true
		case bidi.L:
			return false
		}
	}
	return false
}
