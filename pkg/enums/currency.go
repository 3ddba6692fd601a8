package enums

// Currency is the billing currency of a corridor.
type Currency string

const (
	CurrencyJOD Currency = "JOD"
	CurrencyDZD Currency = "DZD"
)

var currencies = []Currency{CurrencyJOD, CurrencyDZD}

func (c Currency) String() string { return string(c) }

func (c Currency) IsValid() bool { return member(currencies, c) }

func ParseCurrency(value string) (Currency, error) { return parse(currencies, value, "currency") }
