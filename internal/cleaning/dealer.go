package cleaning

import "strings"

// dealerAliases maps lower-cased dealer spellings to one canonical name. The
// containment scan walks this slice in order, so earlier keys win ties.
// Some keys deliberately keep the odd spellings seen in the export: a trailing
// space, a Latin "с" mixed into Cyrillic.
var dealerAliases = []struct{ key, name string }{
	{"mercur auto", "Mercur Auto"},
	{"mercur autos", "Mercur Auto"},
	{"меркур авто", "Mercur Auto"},
	{"astana motors", "Astana Motors"},
	{"каспиан моторс", "Caspian Motors"},
	{"сaspian motors", "Caspian Motors"},
	{"caspian motors", "Caspian Motors"},
	{"ммс рус", "MMC Rus"},
	{"ммс rus", "MMC Rus"},
	{"мmc rus", "MMC Rus"},
	{"равон моторс казахстан", "Ravon Motors Kazakhstan"},
	{"ravon motors kazakhstan", "Ravon Motors Kazakhstan"},
	{"autokapital", "Autokapital"},
	{"автокплитал", "Autokapital"},
	{"хино моторс казахстан", "Hino Motors Kazakhstan"},
	{"hino motors", "Hino Motors Kazakhstan"},
	{"hino motors ", "Hino Motors Kazakhstan"},
	{"hyundai com trans kazakhstan", "Hyundai Com Trans Kazakhstan"},
	{"nissan manufacturing rus", "Nissan Manufacturing RUS"},
	{"toyota motor kazakhstan", "Toyota Motor Kazakhstan"},
	{"volkswagen group rus", "Volkswagen Group Rus"},
	{"subaru kazakhstan", "Subaru Kazakhstan"},
	{"scania central asia", "Scania Central Asia"},
	{"renault россия", "Renault Россия"},
	{"allur auto", "Allur Auto"},
	{"terra motors", "TERRA MOTORS"},
	{"tk kama3", "TK KAMA3"},
	{"man truck & bus kazakhstan", "MAN Truck & Bus Kazakhstan"},
}

var dealerExact = func() map[string]string {
	m := make(map[string]string, len(dealerAliases))
	for _, a := range dealerAliases {
		if _, dup := m[a.key]; !dup {
			m[a.key] = a.name
		}
	}
	return m
}()

// StandardizeDealer returns the canonical dealer name for s. It tries an exact
// match on the lower-cased, trimmed name, then the first alias contained in
// it, and otherwise returns the trimmed input. ok is false for a missing name.
func StandardizeDealer(s string) (name string, ok bool) {
	orig := strings.TrimSpace(s)
	if orig == "" {
		return "", false
	}
	lower := strings.ToLower(orig)
	if n, found := dealerExact[lower]; found {
		return n, true
	}
	for _, a := range dealerAliases {
		if strings.Contains(lower, a.key) {
			return a.name, true
		}
	}
	return orig, true
}
