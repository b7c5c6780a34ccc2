package vulnerability

// Provider looks up advisories that name a product.
type Provider interface {
	GetByProduct(product string) ([]Vulnerability, error)
}
