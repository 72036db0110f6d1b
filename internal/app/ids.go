package app

import (
	"math/big"
	"strings"

	"github.com/evanschultz/kanboard/internal/domain"
	"github.com/google/uuid"
)

// ID styles accepted by IDGeneratorForStyle.
const (
	IDStyleUUID  = "uuid"
	IDStyleShort = "short"
)

// shortIDLength matches the nine-character base36 tokens boards have always used for cards.
const shortIDLength = 9

// UUIDGenerator returns a random RFC 4122 identifier.
func UUIDGenerator() domain.ID {
	return domain.ID(uuid.NewString())
}

// ShortIDGenerator returns a short lowercase alphanumeric token taken from the random low bits of
// a v4 UUID.
func ShortIDGenerator() domain.ID {
	u := uuid.New()
	token := new(big.Int).SetBytes(u[:]).Text(36)
	if len(token) < shortIDLength {
		token = strings.Repeat("0", shortIDLength-len(token)) + token
	}
	return domain.ID(token[len(token)-shortIDLength:])
}

// IDGeneratorForStyle resolves one configured identifier style. Unknown styles fall back to UUIDs.
func IDGeneratorForStyle(style string) IDGenerator {
	switch strings.TrimSpace(strings.ToLower(style)) {
	case IDStyleShort:
		return ShortIDGenerator
	default:
		return UUIDGenerator
	}
}
