package registry

import "strings"

// FormatCNPJ renders a 14-digit registrant tax id as dd.ddd.ddd/dddd-dd.
// Anything that is not exactly 14 digits is returned unchanged.
func FormatCNPJ(cnpj string) string {
	if len(cnpj) != 14 {
		return cnpj
	}
	return cnpj[0:2] + "." + cnpj[2:5] + "." + cnpj[5:8] + "/" + cnpj[8:12] + "-" + cnpj[12:14]
}

// normalizeCNPJ extracts the digits from a raw table cell. The regulator's
// table occasionally carries a dangling leading digit, producing 15; that
// first digit is dropped before formatting.
func normalizeCNPJ(raw string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)

	if len(digits) == 15 {
		digits = digits[1:]
	}
	return FormatCNPJ(digits)
}

// NormalizeName reduces an institution name to lowercase ASCII letters so
// that lookups tolerate punctuation, spacing and suffix noise
// ("NU INVEST CORRETORA DE VALORES S.A." and "Nu Invest Corretora de
// Valores SA" normalize identically).
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		return -1
	}, name)
}
