package config

type TransportConfig interface {
	GetRateLimit() float64 // Requests per second; 0 disables limiting
	GetRateBurst() int
}

type Transport struct{}

var _ TransportConfig = Transport{}

func (Transport) GetRateLimit() float64 {
	return GetEnvFloat("HRDASH_RATE_LIMIT", 10)
}

func (Transport) GetRateBurst() int {
	return GetEnvInt("HRDASH_RATE_BURST", 20)
}
