package matcher

import "strings"

// stopWords is the fixed banking-noise vocabulary stripped before textual
// comparison. This set is part of the contract: changing it changes
// similarity scores and therefore which candidates pass cascade thresholds.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "ltd": {}, "inc": {}, "corp": {}, "plc": {},
	"llc": {}, "gmbh": {}, "pvt": {}, "payment": {}, "transfer": {}, "tfr": {},
	"inv": {}, "ref": {}, "invoice": {}, "bill": {}, "reference": {}, "to": {},
	"from": {}, "of": {}, "for": {}, "by": {}, "deposit": {}, "withdrawal": {},
	"dr": {}, "cr": {}, "momo": {}, "mobile": {}, "money": {}, "bank": {},
	"charges": {}, "service": {}, "fee": {}, "comm": {}, "pos": {}, "purchase": {},
	"card": {}, "visa": {}, "mastercard": {}, "direct": {}, "debit": {},
	"standing": {}, "order": {}, "chq": {}, "cheque": {}, "cash": {}, "atm": {},
	"trf": {}, "rtgs": {}, "neft": {}, "imps": {}, "ach": {}, "wire": {},
	"txn": {}, "id": {}, "no": {}, "number": {}, "account": {}, "acct": {},
	"opening": {}, "balance": {}, "closing": {}, "brought": {}, "forward": {},
}

// normalizeText lowercases, strips anything outside [a-z0-9\s], splits on
// whitespace, and drops single-character and stop-word tokens, returning
// the surviving tokens space-joined.
func normalizeText(s string) string {
	lower := strings.ToLower(s)

	var sb strings.Builder
	sb.Grow(len(lower))
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' || r == '\t' || r == '\n' {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(' ')
		}
	}

	fields := strings.Fields(sb.String())
	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) <= 1 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		kept = append(kept, f)
	}

	return strings.Join(kept, " ")
}

// tokenSet splits an already-normalized string on whitespace into a set.
func tokenSet(normalized string) map[string]struct{} {
	fields := strings.Fields(normalized)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
