package broadcast

import "testing"

func TestKindStatusRoundTrip(t *testing.T) {
	t.Parallel()

	kinds := []Kind{KindSuccess, KindDryRun, KindUnreachable, KindBadRequest, KindNetwork, KindAPI, KindUnknown}
	seen := make(map[string]bool)
	for _, k := range kinds {
		s := k.Status()
		if s == "" {
			t.Fatalf("Kind %d has empty status", k)
		}
		if seen[s] {
			t.Fatalf("status %q not unique", s)
		}
		seen[s] = true
		if got := KindFromStatus(s); got != k {
			t.Fatalf("KindFromStatus(%q) = %v, want %v", s, got, k)
		}
	}
	if got := KindFromStatus("no_such_status"); got != KindUnknown {
		t.Fatalf("KindFromStatus(unknown) = %v, want KindUnknown", got)
	}
}

func TestKindFailed(t *testing.T) {
	t.Parallel()

	if KindSuccess.Failed() || KindDryRun.Failed() {
		t.Fatal("success/dry_run must not count as failures")
	}
	for _, k := range []Kind{KindUnreachable, KindBadRequest, KindNetwork, KindAPI, KindUnknown} {
		if !k.Failed() {
			t.Fatalf("Kind %v must count as a failure", k)
		}
	}
}

func TestTotalsOrderIndependent(t *testing.T) {
	t.Parallel()

	a := []Result{
		{ChatID: "1", Outcome: Outcome{Kind: KindSuccess}},
		{ChatID: "2", Outcome: Outcome{Kind: KindUnreachable}},
		{ChatID: "3", Outcome: Outcome{Kind: KindDryRun}},
		{ChatID: "4", Outcome: Outcome{Kind: KindSuccess}},
	}
	b := []Result{a[3], a[1], a[0], a[2]}

	as, af, ad := Totals(a)
	bs, bf, bd := Totals(b)
	if as != bs || af != bf || ad != bd {
		t.Fatalf("totals differ across orderings: %d/%d/%d vs %d/%d/%d", as, af, ad, bs, bf, bd)
	}
	if as != 2 || af != 1 || ad != 1 {
		t.Fatalf("totals = %d/%d/%d, want 2/1/1", as, af, ad)
	}
}
