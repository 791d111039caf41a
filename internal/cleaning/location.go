package cleaning

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Location is the row view used by the area/region corrector. An empty
// string means missing.
type Location struct {
	Area   string
	Region string
}

// cityAreas maps city-level "areas" to the province that contains them.
// An empty target drops the value.
var cityAreas = map[string]string{
	"г.Алматы":        "Алматинская область",
	"г.Нур-Султан":    "Акмолинская область",
	"Экспорт область": "",
}

const exportRegion = "Экспорт"

// CorrectLocation repairs area and region: city areas are replaced by their
// province, export pseudo-areas are dropped, both fields are title-cased with
// Russian casing rules, and the export pseudo-region is dropped last.
func CorrectLocation(l Location) Location {
	if to, ok := cityAreas[l.Area]; ok {
		l.Area = to
	}
	// cases.Caser keeps state; a fresh one per call is safe for concurrent use.
	title := cases.Title(language.Russian)
	if l.Area != "" {
		l.Area = title.String(l.Area)
	}
	if l.Region != "" {
		l.Region = title.String(l.Region)
	}
	if l.Region == exportRegion {
		l.Region = ""
	}
	return l
}
