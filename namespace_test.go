package nscache

import "testing"

func TestAbbreviationsAreCollisionFree(t *testing.T) {
	seen := make(map[string]Namespace, len(abbrevs))
	for ns, a := range abbrevs {
		if prev, dup := seen[a]; dup {
			t.Fatalf("abbreviation %q shared by %s and %s", a, prev, ns)
		}
		seen[a] = ns
	}
}

func TestEveryNamespaceHasDefaultTTL(t *testing.T) {
	for ns := range abbrevs {
		if defaultTTLs[ns] <= 0 {
			t.Fatalf("namespace %s has no positive default TTL", ns)
		}
	}
}

func TestNamespaceValidity(t *testing.T) {
	for _, ns := range []Namespace{Transactions, Users, Invoices, Escrows, General} {
		if !ns.Valid() {
			t.Fatalf("%s should be valid", ns)
		}
	}
	if Namespace("sessions").Valid() {
		t.Fatal("unknown namespace reported valid")
	}
}

func TestUnknownNamespaceAbbrevFallsBack(t *testing.T) {
	if got := Namespace("sessions").Abbrev(); got != "gen" {
		t.Fatalf("unknown abbrev = %q", got)
	}
}
