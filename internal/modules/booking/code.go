package booking

import (
	"crypto/rand"
	"fmt"
	"time"
)

const (
	codeAlphabet  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeSuffixLen = 6
)

// GenerateCode produces a human-facing tracking code: "BK" + two-digit year
// + two-digit month + 6 random base-36 characters, e.g. BK2608X1F40P.
// Random bytes are rejection-sampled so every character is equally likely.
func GenerateCode(now time.Time) (string, error) {
	// largest multiple of the alphabet size below 256
	const limit = 256 - 256%len(codeAlphabet)

	suffix := make([]byte, 0, codeSuffixLen)
	buf := make([]byte, codeSuffixLen)
	for len(suffix) < codeSuffixLen {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("booking code: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			suffix = append(suffix, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(suffix) == codeSuffixLen {
				break
			}
		}
	}
	return "BK" + now.Format("0601") + string(suffix), nil
}
