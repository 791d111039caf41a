// Package schema fixes the source and canonical layout of the vehicle sales
// export. The source schema is known in advance; nothing here is inferred.
package schema

// Canonical column names.
const (
	Year            = "year"
	Month           = "month"
	DealerName      = "dealer_name"
	Brand           = "brand"
	Model           = "model"
	YearOfRelease   = "year_of_release"
	FuelType        = "fuel_type"
	EngineVolume    = "engine_volume"
	TransmissionBox = "transmission_box"
	DriveType       = "drive_type"
	Segment2013     = "segment_2013"
	Region          = "region"
	Area            = "area"
	Quantity        = "quantity"
	PriceUSD        = "price_USD"
	SaleUSD         = "sale_USD"
	Class2013       = "class_2013"
	CountryOfOrigin = "country_of_origin"
	SaleDate        = "sale_date"
)

// DateLayout is the textual layout of sale_date in every sink.
const DateLayout = "2006-01-02"

// Header pairs a source header with its canonical name.
type Header struct {
	Source    string
	Canonical string
}

// SourceHeaders lists the 18 expected source columns in file order.
var SourceHeaders = []Header{
	{"Год", Year},
	{"Месяц", Month},
	{"Компания", DealerName},
	{"Бренд", Brand},
	{"Модель", Model},
	{"Год выпуска", YearOfRelease},
	{"Вид топлива", FuelType},
	{"Объём двиг, л,", EngineVolume},
	{"Коробка передач", TransmissionBox},
	{"Тип привода", DriveType},
	{"Сегментация 2013", Segment2013},
	{"Регион", Region},
	{"Область", Area},
	{"Количество", Quantity},
	{"Цена, USD", PriceUSD},
	{"Продажа, USD", SaleUSD},
	{"Класс 2013", Class2013},
	{"Страна-производитель", CountryOfOrigin},
}

// HeaderMap returns SourceHeaders as a source -> canonical map.
func HeaderMap() map[string]string {
	m := make(map[string]string, len(SourceHeaders))
	for _, h := range SourceHeaders {
		m[h.Source] = h.Canonical
	}
	return m
}

// IrrelevantColumns are source columns dropped before renaming.
var IrrelevantColumns = []string{
	"Форма расчета",
	"Сегмент",
	"Наименование дилерского центра",
	"Тип клиента",
	"Модификация",
	"Локализация производства",
	"Сегментация Eng",
}

// CategoricalColumns are cast to closed label sets by the type finalizer.
var CategoricalColumns = []string{FuelType, TransmissionBox, DriveType, Segment2013, Class2013}

// RequiredColumns must be present in every retained row.
var RequiredColumns = []string{YearOfRelease, Area, EngineVolume}

// Type is the semantic type of a canonical column.
type Type string

const (
	Text        Type = "text"
	Integer     Type = "int"
	Real        Type = "real"
	Date        Type = "date"
	Categorical Type = "category"
)

// Field describes one canonical output column.
type Field struct {
	Name string
	Type Type
	// Precision is the number of decimals rendered for Real fields.
	Precision int
	Required  bool
}

// Output is the canonical column set, in file order.
var Output = []Field{
	{Name: DealerName, Type: Text},
	{Name: Brand, Type: Text},
	{Name: Model, Type: Text},
	{Name: YearOfRelease, Type: Integer, Required: true},
	{Name: FuelType, Type: Categorical},
	{Name: EngineVolume, Type: Real, Precision: 1, Required: true},
	{Name: TransmissionBox, Type: Categorical},
	{Name: DriveType, Type: Categorical},
	{Name: Segment2013, Type: Categorical},
	{Name: Region, Type: Text},
	{Name: Area, Type: Text, Required: true},
	{Name: Quantity, Type: Integer},
	{Name: PriceUSD, Type: Real, Precision: 2},
	{Name: SaleUSD, Type: Real, Precision: 2},
	{Name: Class2013, Type: Categorical},
	{Name: CountryOfOrigin, Type: Text},
	{Name: SaleDate, Type: Date},
}

// OutputColumns returns the names of Output in order.
func OutputColumns() []string {
	out := make([]string, len(Output))
	for i, f := range Output {
		out[i] = f.Name
	}
	return out
}

// Lookup returns the output field named name.
func Lookup(name string) (Field, bool) {
	for _, f := range Output {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
