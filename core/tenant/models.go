package tenant

// Tenant is a School or Store: an isolated customer account scoping
// courses, products, media and users. Created and updated only by the
// upstream backend; the gateway reads and caches.
type Tenant struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Slug     string   `json:"slug"`
	Domain   Domain   `json:"domain"`
	Currency Currency `json:"currency"`
	IsActive bool     `json:"is_active"`
}

type Domain struct {
	PrivateAddress string `json:"private_address"`
	PublicAddress  string `json:"public_address"`
}

type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
}

var defaultCurrency = Currency{Code: "USD", Symbol: "$"}

// CurrencyOrDefault returns the tenant currency, falling back to USD when the
// tenant carries no currency configuration. Absence is a data-quality warning
// for the caller to log, not a hard failure.
func (t Tenant) CurrencyOrDefault() (Currency, bool) {
	if t.Currency.Code == "" {
		return defaultCurrency, false
	}
	return t.Currency, true
}

func findByID(tenants []Tenant, id string) *Tenant {
	if id == "" {
		return nil
	}
	for i := range tenants {
		if tenants[i].ID == id {
			return &tenants[i]
		}
	}
	return nil
}
