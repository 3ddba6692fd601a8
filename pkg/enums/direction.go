package enums

// Direction identifies the shipping corridor of an order.
type Direction string

const (
	DirectionJOToDZ Direction = "JO_TO_DZ"
	DirectionDZToJO Direction = "DZ_TO_JO"
)

var directions = []Direction{DirectionJOToDZ, DirectionDZToJO}

func (d Direction) String() string { return string(d) }

func (d Direction) IsValid() bool { return member(directions, d) }

// Currency returns the currency the corridor is billed in: JOD when the
// parcel leaves Jordan, DZD when it leaves Algeria.
func (d Direction) Currency() Currency {
	if d == DirectionJOToDZ {
		return CurrencyJOD
	}
	return CurrencyDZD
}

// OriginCode is the origin country segment of an order number.
func (d Direction) OriginCode() string {
	switch d {
	case DirectionJOToDZ:
		return "JO"
	case DirectionDZToJO:
		return "DZ"
	}
	return "XX"
}

func ParseDirection(value string) (Direction, error) { return parse(directions, value, "direction") }
