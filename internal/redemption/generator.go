package redemption

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/nightmarket/aestore/internal/config"
	"go.uber.org/fx"
)

// alphabet drops 0, O, 1, I and L so codes survive being read aloud or
// retyped from a screenshot.
const alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const (
	groupCount = 3
	groupLen   = 4
)

// Policy controls how codes are shaped. PrefixEncodesAmount keeps the
// AECOIN value visible in the prefix (AE1000-...); BonusCoins is added on
// top of the package amount on every issued code.
type Policy struct {
	BonusCoins          int64
	PrefixEncodesAmount bool
}

type Generator struct {
	policy Policy
}

func New(policy Policy) *Generator {
	return &Generator{policy: policy}
}

func NewFromConfig(cfg *config.Config) *Generator {
	return New(Policy{
		BonusCoins:          cfg.Redemption.BonusCoins,
		PrefixEncodesAmount: cfg.Redemption.AmountPrefix,
	})
}

// Value is the AECOIN amount a code for the given package amount grants.
func (g *Generator) Value(packageAmount int64) int64 {
	return packageAmount + g.policy.BonusCoins
}

// Generate mints one code. Uniqueness is not guaranteed here; the caller
// retries on a duplicate-key insert.
func (g *Generator) Generate(packageAmount int64) (string, error) {
	var sb strings.Builder
	if g.policy.PrefixEncodesAmount {
		fmt.Fprintf(&sb, "AE%d", g.Value(packageAmount))
	} else {
		sb.WriteString("AE")
	}

	random := make([]byte, groupCount*groupLen)
	if _, err := rand.Read(random); err != nil {
		return "", err
	}
	for i, b := range random {
		if i%groupLen == 0 {
			sb.WriteByte('-')
		}
		sb.WriteByte(alphabet[int(b)%len(alphabet)])
	}
	return sb.String(), nil
}

var Module = fx.Module("redemption",
	fx.Provide(NewFromConfig),
)
