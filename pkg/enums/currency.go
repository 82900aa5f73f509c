package enums

// Currency is the ISO-4217 code quotes and orders are denominated in.
type Currency string

const (
	CurrencyBRL Currency = "BRL"
	CurrencyUSD Currency = "USD"
)

func (c Currency) String() string {
	return string(c)
}
