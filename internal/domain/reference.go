package domain

import (
	"crypto/rand"
	"math/big"
	"time"
)

const (
	RefPrefixCommande = "CMD"
	RefPrefixAvoir    = "AV"
	RefPrefixVente    = "VT"
	RefPrefixTransfert = "TR"
)

const refAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewReference produces PREFIX + YYMMDD + "-" + 4 random base36 uppercase
// characters. Uniqueness rides on the random suffix; collisions are not
// checked.
func NewReference(prefix string, now time.Time) string {
	suffix := make([]byte, 4)
	max := big.NewInt(int64(len(refAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing is unrecoverable for the process.
			panic(err)
		}
		suffix[i] = refAlphabet[n.Int64()]
	}
	return prefix + now.Format("060102") + "-" + string(suffix)
}
