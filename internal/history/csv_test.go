package history

import (
	"strings"
	"testing"

	"tgblast/internal/broadcast"
)

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	results := []broadcast.Result{
		{ChatID: "111", Outcome: broadcast.Outcome{Kind: broadcast.KindSuccess, Detail: "success"}},
		{ChatID: "222", Outcome: broadcast.Outcome{Kind: broadcast.KindUnreachable, Detail: "recipient unreachable: bot was blocked"}},
		{ChatID: "333", Outcome: broadcast.Outcome{Kind: broadcast.KindDryRun, Detail: "dry_run"}},
	}

	var sb strings.Builder
	if err := WriteCSV(&sb, results); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	want := "Chat ID,Status,Details\n" +
		"111,success,success\n" +
		"222,forbidden,recipient unreachable: bot was blocked\n" +
		"333,dry_run,dry_run\n"
	if got := sb.String(); got != want {
		t.Fatalf("WriteCSV output:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteCSVQuotesCommas(t *testing.T) {
	t.Parallel()

	results := []broadcast.Result{
		{ChatID: "1", Outcome: broadcast.Outcome{Kind: broadcast.KindBadRequest, Detail: `bad request: chat not found, try again`}},
	}
	var sb strings.Builder
	if err := WriteCSV(&sb, results); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if !strings.Contains(sb.String(), `"bad request: chat not found, try again"`) {
		t.Fatalf("detail with comma not quoted:\n%s", sb.String())
	}
}
