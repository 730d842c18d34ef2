package idgen

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"strings"
)

const accountFieldLen = 14

// IBAN builds an ISO 13616 IBAN for an account number: country code, two
// mod-97 check digits, then a BBAN of the bank code followed by a 14
// character account field. Numbers whose digits fit are zero-padded digits,
// short alphanumeric numbers are used as-is, and anything longer is reduced
// to 14 digits of its SHA-256 so every account number yields an IBAN.
func IBAN(country, bankCode, accountNumber string) (string, error) {
	country = strings.ToUpper(country)
	bankCode = strings.ToUpper(bankCode)
	if len(country) != 2 || !isAlpha(country) {
		return "", fmt.Errorf("invalid iban country %q", country)
	}
	if len(bankCode) != 4 || !isAlnum(bankCode) {
		return "", fmt.Errorf("invalid bank code %q", bankCode)
	}

	bban := bankCode + accountField(accountNumber)
	check := 98 - mod97(bban+country+"00")
	return fmt.Sprintf("%s%02d%s", country, check, bban), nil
}

func accountField(accountNumber string) string {
	var digits, alnum strings.Builder
	for _, r := range strings.ToUpper(accountNumber) {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
			alnum.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			alnum.WriteRune(r)
		}
	}

	field := digits.String()
	switch {
	case field != "" && len(field) <= accountFieldLen:
	case alnum.Len() > 0 && alnum.Len() <= accountFieldLen:
		field = alnum.String()
	default:
		sum := sha256.Sum256([]byte(accountNumber))
		n := new(big.Int).SetBytes(sum[:])
		n.Mod(n, new(big.Int).Exp(big.NewInt(10), big.NewInt(accountFieldLen), nil))
		field = n.String()
	}
	return strings.Repeat("0", accountFieldLen-len(field)) + field
}

// ValidIBAN verifies length, alphabet and the mod-97 checksum.
func ValidIBAN(iban string) bool {
	iban = strings.ToUpper(strings.ReplaceAll(iban, " ", ""))
	if len(iban) < 15 || len(iban) > 34 || !isAlnum(iban) {
		return false
	}
	if !isAlpha(iban[:2]) {
		return false
	}
	return mod97(iban[4:]+iban[:4]) == 1
}

// mod97 reduces an alphanumeric string where letters count as 10..35.
func mod97(s string) int {
	rem := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			rem = (rem*10 + int(r-'0')) % 97
		case r >= 'A' && r <= 'Z':
			v := int(r-'A') + 10
			rem = (rem*100 + v) % 97
		}
	}
	return rem
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func isAlnum(s string) bool {
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
