package infra

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"nexus/internal/sqlinline"
)

type fakeExecutor struct {
	delay time.Duration
	err   error
	got   string
}

func (f *fakeExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.got = query
	time.Sleep(f.delay)
	return pgconn.NewCommandTag("UPDATE 1"), f.err
}

func (f *fakeExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	f.got = query
	return errorRow{err: f.err}
}

func (f *fakeExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	f.got = query
	return nil, f.err
}

func TestExtractMarker(t *testing.T) {
	marker, body, err := extractMarker(sqlinline.QSelectDocument)
	if err != nil {
		t.Fatalf("extractMarker() unexpected error: %v", err)
	}
	if marker != "3f1c2a7e-5b8d-4e21-9c3a-7d6f0b1e4a92" {
		t.Fatalf("marker = %q", marker)
	}
	if strings.Contains(body, "--sql") {
		t.Fatalf("body still contains marker: %q", body)
	}
	if !strings.HasPrefix(strings.TrimSpace(body), "select id, data") {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestExtractMarkerRejectsUntaggedQuery(t *testing.T) {
	if _, _, err := extractMarker("select 1"); !errors.Is(err, ErrMissingMarker) {
		t.Fatalf("extractMarker() error = %v, want ErrMissingMarker", err)
	}
	if _, _, err := extractMarker("   "); err == nil {
		t.Fatalf("extractMarker() expected error for empty query")
	}
}

func TestAllInlineQueriesCarryMarkers(t *testing.T) {
	queries := map[string]string{
		"QSelectDocument": sqlinline.QSelectDocument,
		"QFindDocuments":  sqlinline.QFindDocuments,
		"QInsertDocument": sqlinline.QInsertDocument,
		"QUpdateDocument": sqlinline.QUpdateDocument,
	}
	seen := map[string]string{}
	for name, q := range queries {
		marker, _, err := extractMarker(q)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if other, dup := seen[marker]; dup {
			t.Fatalf("%s reuses marker of %s", name, other)
		}
		seen[marker] = name
	}
}

func TestRunnerStripsMarkerAndFlagsSlowStatements(t *testing.T) {
	var buf bytes.Buffer
	exec := &fakeExecutor{delay: 5 * time.Millisecond}
	r := &SQLRunner{Pool: exec, Logger: zerolog.New(&buf), SlowQuery: time.Millisecond}

	if _, err := r.Exec(context.Background(), sqlinline.QUpdateDocument, "users", "id", "{}"); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if strings.Contains(exec.got, "--sql") {
		t.Fatalf("marker forwarded to the pool: %q", exec.got)
	}
	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, `"slow":true`) || !strings.Contains(out, "5e0b9f3c-7a12-4d6e-b4c8-2f1e6a9d3b57") {
		t.Fatalf("expected slow statement warning, got %s", out)
	}
}

func TestRunnerKeepsCancellationOutOfErrorLog(t *testing.T) {
	var buf bytes.Buffer
	r := &SQLRunner{Pool: &fakeExecutor{err: context.Canceled}, Logger: zerolog.New(&buf)}
	if _, err := r.Exec(context.Background(), sqlinline.QUpdateDocument); !errors.Is(err, context.Canceled) {
		t.Fatalf("Exec error = %v", err)
	}
	if err := r.QueryRow(context.Background(), sqlinline.QSelectDocument).Scan(); !errors.Is(err, context.Canceled) {
		t.Fatalf("Scan error = %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("cancellation was logged: %s", buf.String())
	}

	r.Pool = &fakeExecutor{err: errors.New("connection reset")}
	_, _ = r.Query(context.Background(), sqlinline.QFindDocuments)
	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("expected error log, got %s", buf.String())
	}
}
