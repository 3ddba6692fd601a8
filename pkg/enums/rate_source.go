package enums

// RateSource records where the per-kg rate of a quote came from.
type RateSource string

const (
	RateSourceBand RateSource = "band"
	RateSourceFlat RateSource = "flat"
)

// String implements fmt.Stringer.
func (r RateSource) String() string {
	return string(r)
}
