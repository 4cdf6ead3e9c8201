package nscache

import "time"

// Namespace partitions the key space. The set is closed: abbreviations are
// fixed and collision-free, and changing one orphans everything previously
// cached under the old name.
type Namespace string

const (
	Transactions Namespace = "transactions"
	Users        Namespace = "users"
	Invoices     Namespace = "invoices"
	Escrows      Namespace = "escrows"
	General      Namespace = "general"
)

var abbrevs = map[Namespace]string{
	Transactions: "txn",
	Users:        "usr",
	Invoices:     "inv",
	Escrows:      "esc",
	General:      "gen",
}

// Built-in per-namespace TTLs. Deployment-tunable via Options.TTLOverrides.
var defaultTTLs = map[Namespace]time.Duration{
	Transactions: 5 * time.Minute,
	Users:        15 * time.Minute,
	Invoices:     10 * time.Minute,
	Escrows:      10 * time.Minute,
	General:      5 * time.Minute,
}

// Valid reports whether ns is one of the known namespaces.
func (ns Namespace) Valid() bool {
	_, ok := abbrevs[ns]
	return ok
}

// Abbrev returns the fixed key-segment abbreviation for ns.
// Unknown namespaces map to the general abbreviation.
func (ns Namespace) Abbrev() string {
	if a, ok := abbrevs[ns]; ok {
		return a
	}
	return abbrevs[General]
}

func defaultTTL(ns Namespace) time.Duration {
	if ttl, ok := defaultTTLs[ns]; ok {
		return ttl
	}
	return defaultTTLs[General]
}
