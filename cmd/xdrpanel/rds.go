package main

// PTYSet selects the program type naming table.
type PTYSet string

const (
	PTYSetRDS  PTYSet = "rds"  // Europe
	PTYSetRBDS PTYSet = "rbds" // North America
)

var ptyNamesRDS = [32]string{
	"None", "News", "Current Affairs", "Information",
	"Sport", "Education", "Drama", "Culture",
	"Science", "Varied", "Pop Music", "Rock Music",
	"Easy Listening", "Light Classical", "Serious Classical", "Other Music",
	"Weather", "Finance", "Children's Programmes", "Social Affairs",
	"Religion", "Phone In", "Travel", "Leisure",
	"Jazz Music", "Country Music", "National Music", "Oldies Music",
	"Folk Music", "Documentary", "Alarm Test", "Alarm",
}

var ptyNamesRBDS = [32]string{
	"None", "News", "Information", "Sports",
	"Talk", "Rock", "Classic Rock", "Adult Hits",
	"Soft Rock", "Top 40", "Country", "Oldies",
	"Soft", "Nostalgia", "Jazz", "Classical",
	"Rhythm and Blues", "Soft R&B", "Language", "Religious Music",
	"Religious Talk", "Personality", "Public", "College",
	"Spanish Talk", "Spanish Music", "Hip Hop", "Unassigned",
	"Unassigned", "Weather", "Emergency Test", "Emergency",
}

// ptyName returns the program type name, or "" for an out of range code.
func ptyName(set PTYSet, pty int) string {
	if pty < 0 || pty >= 32 {
		return ""
	}
	if set == PTYSetRBDS {
		return ptyNamesRBDS[pty]
	}
	return ptyNamesRDS[pty]
}

// eccCountries maps [ECC low bits][PI country nibble] to an ISO code for the
// European ECC range 0xE0..0xE4.
var eccCountries = [5][16]string{
	{"??", "DE", "DZ", "AD", "IL", "IT", "BE", "RU", "PS", "AL", "AT", "HU", "MT", "DE", "??", "EG"},
	{"??", "GR", "CY", "SM", "CH", "JO", "FI", "LU", "BG", "DK", "GI", "IQ", "GB", "LY", "RO", "FR"},
	{"??", "MA", "CZ", "PL", "VA", "SK", "SY", "TN", "??", "LI", "IS", "MC", "LT", "YU", "ES", "NO"},
	{"??", "??", "IE", "TR", "MK", "??", "??", "??", "NL", "LV", "LB", "??", "HR", "??", "SE", "BY"},
	{"??", "MD", "EE", "??", "??", "??", "UA", "??", "PT", "SI", "??", "??", "??", "??", "??", "BA"},
}

// eccCountry resolves ECC+PI to a country code. ok is false when either code
// is absent or the ECC is outside the table.
func eccCountry(ecc, pi int) (string, bool) {
	if ecc < 0xE0 || ecc > 0xE4 || pi < 0 {
		return "", false
	}
	return eccCountries[ecc&7][(pi>>12)&0xF], true
}

// afFrequency converts an RDS AF code (1..204) to kHz.
func afFrequency(code int) int {
	return 87500 + code*100
}
