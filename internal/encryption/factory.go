package encryption

import (
	"fmt"

	"ct-go/internal/ct"
)

// Factory returns a ct.CipherFactory for a configured cipher type: "age"
// (also the default for an empty type) or "test".
func Factory(cipherType string) ct.CipherFactory {
	return func(options []string) (ct.Cipher, error) {
		switch cipherType {
		case "age", "":
			return NewAgeCipher(options)
		case "test":
			if len(options) > 0 {
				return nil, fmt.Errorf("cipher type %q takes no options", cipherType)
			}
			return NewTestCipher(), nil
		default:
			return nil, fmt.Errorf("unknown cipher type: %q", cipherType)
		}
	}
}
