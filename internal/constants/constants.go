package constants

// Redis keys
const (
	RedisKeyRecentOutcomes = "autosell:outcomes:recent"
	RedisKeyPricePrefix    = "autosell:price:"
	RedisKeyLedger         = "autosell:ledger"
)

// Redis Pub/Sub channels
const (
	PubSubChannelOutcomes = "autosell:outcomes"
	PubSubPatternOutcomes = PubSubChannelOutcomes + ":*"
)

// RabbitMQ
const (
	QueueOutcomes = "autosell.outcomes"
)

// Limits
const (
	MaxRecentOutcomes = 500
)

// Token mint addresses to symbols, used when the DAS response has no symbol.
var TokenSymbols = map[string]string{
	"So11111111111111111111111111111111111111112":  "SOL",
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": "USDC",
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB": "USDT",
	"mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So":  "mSOL",
	"7vfCXTUXx5WJV5JADk17DUJ4ksgau7utNKj4b963voxs": "ETH",
	"3NZ9JMVBmGAqocybic2c7LQCJScmgsAZ6vQqTDzcqmJh": "BTC",
	"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263": "BONK",
	"7GCihgDB8fe6KNjn2MYtkzZcRjQy3t9GHdC8uHYmW2hr": "POPCAT",
	"JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN":  "JUP",
	"4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R": "RAY",
}

// SymbolFor returns the known symbol for mint, or fallback.
func SymbolFor(mint, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if s, ok := TokenSymbols[mint]; ok {
		return s
	}
	return ""
}
