// Package extract pulls labeled values out of free-text payment messages.
//
// Every value follows a "Label:" that starts at a word boundary anywhere on a
// line and ends at the line break. Labels are matched case insensitively.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Upper bounds for extracted values. Longer digit runs are not phone numbers or
// access codes; longer names are cut.
const (
	MaxPhoneDigits      = 20
	MaxAccessCodeDigits = 32
	MaxNameLength       = 255
)

// Fields holds everything Extract found. Empty strings mean the field was absent.
type Fields struct {
	Phone      string
	Name       string
	AccessCode string
	Categories map[Axis][]string
}

// sep separates words inside a label; it never crosses a line break.
const sep = `[ \t]+`

// Scalar fields accept several label spellings; whichever appears first in the
// text wins.
var (
	phonePattern      = digitPattern(alternation(phoneLabels), MaxPhoneDigits)
	accessCodePattern = digitPattern(alternation(accessCodeLabels), MaxAccessCodeDigits)
	namePattern       = linePattern(alternation(nameLabels))

	phoneLabels      = []string{"Phone", "Telepon", "No HP", "WhatsApp"}
	accessCodeLabels = []string{"Access Code", "Kode Akses"}
	nameLabels       = []string{"Name", "Nama"}

	categoryPatterns      = make(map[ContentType][]*regexp.Regexp)
	cloudCategoryPatterns = make(map[ContentType][]*regexp.Regexp)
)

func init() {
	for contentType, names := range typeLabels {
		t := alternation(names)
		categoryPatterns[contentType] = []*regexp.Regexp{
			linePattern(`Category` + sep + t),
			linePattern(`Kategori` + sep + t),
			linePattern(t + sep + `Category`),
			linePattern(t),
		}
		cloudCategoryPatterns[contentType] = []*regexp.Regexp{
			linePattern(`Category` + sep + t + sep + `Cloud`),
			linePattern(`Kategori` + sep + t + sep + `Cloud`),
			linePattern(t + sep + `Cloud` + sep + `Category`),
			linePattern(t + sep + `Cloud`),
		}
	}
}

// PhoneNumber returns the digit run following a phone label. Runs longer than
// MaxPhoneDigits are skipped.
func PhoneNumber(text string) (string, bool) {
	return value(phonePattern, text)
}

// AccessCode returns the digit run following an access code label. Runs longer
// than MaxAccessCodeDigits are skipped.
func AccessCode(text string) (string, bool) {
	return value(accessCodePattern, text)
}

// CustomerName returns the rest of the name line, trimmed and cut to
// MaxNameLength characters.
func CustomerName(text string) (string, bool) {
	name, ok := value(namePattern, text)
	if !ok || utf8.RuneCountInString(name) <= MaxNameLength {
		return name, ok
	}
	return strings.TrimSpace(string([]rune(name)[:MaxNameLength])), true
}

// Category returns the raw, comma separated category names given for a
// content type. Label variants are tried in order; a variant that is present
// with a blank value means "no category" and stops the search.
func Category(text string, contentType ContentType) (string, bool) {
	return firstValue(categoryPatterns[contentType], text)
}

// CloudCategory is Category for the "Cloud" label variants.
func CloudCategory(text string, contentType ContentType) (string, bool) {
	return firstValue(cloudCategoryPatterns[contentType], text)
}

// ParseCategoryList splits a comma separated list, trimming entries and
// dropping empty ones.
func ParseCategoryList(categories string) []string {
	if strings.TrimSpace(categories) == "" {
		return []string{}
	}
	parts := strings.Split(categories, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Extract runs every extractor over text.
func Extract(text string) Fields {
	fields := Fields{Categories: make(map[Axis][]string, len(Axes))}
	fields.Phone, _ = PhoneNumber(text)
	fields.Name, _ = CustomerName(text)
	fields.AccessCode, _ = AccessCode(text)

	for _, axis := range Axes {
		var raw string
		if axis.Cloud() {
			raw, _ = CloudCategory(text, axis.ContentType())
		} else {
			raw, _ = Category(text, axis.ContentType())
		}
		if names := ParseCategoryList(raw); len(names) > 0 {
			fields.Categories[axis] = names
		}
	}
	return fields
}

func firstValue(patterns []*regexp.Regexp, text string) (string, bool) {
	for _, re := range patterns {
		if v, ok, found := match(re, text); found {
			return v, ok
		}
	}
	return "", false
}

func value(re *regexp.Regexp, text string) (string, bool) {
	v, ok, _ := match(re, text)
	return v, ok
}

// match reports the trimmed value of the leftmost match. found is false when
// the label does not occur at all; ok is false for a blank value.
func match(re *regexp.Regexp, text string) (v string, ok, found bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false, false
	}
	v = strings.TrimSpace(m[1])
	return v, v != "", true
}

// digitPattern matches "Label: 12345" with at most maxDigits digits, skipping
// an optional leading "+".
func digitPattern(label string, maxDigits int) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + label + `[ \t]*:[ \t]*\+?(\d{1,` + strconv.Itoa(maxDigits) + `})(?:\D|$)`)
}

// linePattern matches "Label: anything until end of line".
func linePattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + label + `[ \t]*:[ \t]*([^\r\n]*)`)
}

func labelExpr(label string) string {
	words := strings.Fields(label)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(words, sep)
}

func alternation(labels []string) string {
	exprs := make([]string, len(labels))
	for i, label := range labels {
		exprs[i] = labelExpr(label)
	}
	return "(?:" + strings.Join(exprs, "|") + ")"
}
