package cleaning

import "testing"

func TestCountryCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"Германия", "DEU", true},
		{"Республика Казахстан", "KAZ", true},
		{"UK", "GBR", true},
		{"Бельгия", "BEL", true},
		{"", Unknown, true},
		{"KAZ", "KAZ", true},
		{Unknown, Unknown, true},
		{"Атлантида", "", false},
		{"германия", "", false},
	}
	for _, tc := range tests {
		got, ok := CountryCode(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("CountryCode(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
	if len(countryCodes) != 19 {
		t.Fatalf("country table has %d entries, want 19", len(countryCodes))
	}
}

func TestEncodeFuel(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{"Бензин", "F"},
		{" PETROL ", "F"},
		{"Дизель", "D"},
		{"diesel turbo", "D"},
		{"Электро", "E"},
		{"Электричество", "E"},
		{"Гибрид", "HYB"},
		{"бензин/гибрид", "F"},
		{"2", Unknown},
		{"1,6", Unknown},
		{"0", Unknown},
		{"газ", Unknown},
		{"", Unknown},
	}
	for _, tc := range tests {
		if got := EncodeFuel(tc.in); got != tc.want {
			t.Errorf("EncodeFuel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEncodeDrive(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{"Передний", "FWD"},
		{"передний (FF)", "FWD"},
		{"2WD", "FWD"},
		{"Задний", "RWD"},
		{"RWD", "RWD"},
		{"Полный", "AWD"},
		{"4X4", "AWD"},
		{"quattro", "AWD"},
		{"4Motion", "AWD"},
		{"4x2", Unknown},
		{"#Н/Д", Unknown},
		{"Астана", Unknown},
		{"", Unknown},
	}
	for _, tc := range tests {
		if got := EncodeDrive(tc.in); got != tc.want {
			t.Errorf("EncodeDrive(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

/*
TestClassifyTransmission covers both pattern lists and the priority of
automatic over manual patterns.
*/
func TestClassifyTransmission(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{"АКП", Automatic},
		{"акпп", Automatic},
		{"AT", Automatic},
		{"CVT", Automatic},
		{"7 DSG", Automatic},
		{"Tiptronic", Automatic},
		{"6A", Automatic},
		{"8АКПП", Automatic},
		{"Вариатор", Automatic},
		{"МКП", Manual},
		{"мех.", Manual},
		{"Manual", Manual},
		{"5M", Manual},
		{"M/T", Manual},
		{"MT/AT", Automatic},
		{"", TransmissionUnkn},
		{"робот", TransmissionUnkn},
	}
	for _, tc := range tests {
		if got := ClassifyTransmission(tc.in); got != tc.want {
			t.Errorf("ClassifyTransmission(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStandardizeDealer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"Mercur Auto", "Mercur Auto", true},
		{"  MERCUR AUTOS ", "Mercur Auto", true},
		{"Меркур Авто", "Mercur Auto", true},
		{"ТОО Каспиан Моторс", "Caspian Motors", true},
		{"Hino Motors", "Hino Motors Kazakhstan", true},
		{"TK Kama3", "TK KAMA3", true},
		{"  Бипэк Авто ", "Бипэк Авто", true},
		{"", "", false},
		{"   ", "", false},
	}
	for _, tc := range tests {
		got, ok := StandardizeDealer(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("StandardizeDealer(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestCorrectLocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Location
		want Location
	}{
		{"almaty_city", Location{Area: "г.Алматы", Region: "Алматы"}, Location{Area: "Алматинская Область", Region: "Алматы"}},
		{"nursultan_city", Location{Area: "г.Нур-Султан"}, Location{Area: "Акмолинская Область"}},
		{"export_area", Location{Area: "Экспорт область", Region: "Экспорт"}, Location{}},
		{"export_region_lower", Location{Area: "костанайская область", Region: "экспорт"}, Location{Area: "Костанайская Область"}},
		{"title_case", Location{Area: "ВОСТОЧНО-КАЗАХСТАНСКАЯ ОБЛАСТЬ", Region: "усть-каменогорск"},
			Location{Area: "Восточно-Казахстанская Область", Region: "Усть-Каменогорск"}},
		{"missing", Location{}, Location{}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := CorrectLocation(tc.in); got != tc.want {
				t.Fatalf("CorrectLocation(%+v) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}

/*
TestLexicalIdempotence applies every lexical normalizer to its own output and
checks that nothing changes on the second pass.
*/
func TestLexicalIdempotence(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"бензин", "дизель", "электро", "гибрид", "мусор", ""} {
		once := EncodeFuel(in)
		if twice := EncodeFuel(once); twice != once {
			t.Errorf("fuel %q: %q then %q", in, once, twice)
		}
	}
	for _, in := range []string{"передний", "задний", "полный", "4x2", ""} {
		once := EncodeDrive(in)
		if twice := EncodeDrive(once); twice != once {
			t.Errorf("drive %q: %q then %q", in, once, twice)
		}
	}
	for _, in := range []string{"АКП", "МКП", "робот", ""} {
		once := ClassifyTransmission(in)
		if twice := ClassifyTransmission(once); twice != once {
			t.Errorf("transmission %q: %q then %q", in, once, twice)
		}
	}
	for name := range countryCodes {
		once, _ := CountryCode(name)
		if twice, ok := CountryCode(once); !ok || twice != once {
			t.Errorf("country %q: %q then %q", name, once, twice)
		}
	}
	for _, a := range dealerAliases {
		once, _ := StandardizeDealer(a.key)
		if twice, _ := StandardizeDealer(once); twice != once {
			t.Errorf("dealer %q: %q then %q", a.key, once, twice)
		}
	}
	for _, l := range []Location{{Area: "г.Алматы", Region: "Экспорт"}, {Area: "жамбылская область", Region: "тараз"}} {
		once := CorrectLocation(l)
		if twice := CorrectLocation(once); twice != once {
			t.Errorf("location %+v: %+v then %+v", l, once, twice)
		}
	}
}
