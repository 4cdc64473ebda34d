package store

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"testing"

	perr "newshound/internal/platform/errors"
)

type cmdTag string

func (c cmdTag) String() string { return string(c) }
func (c cmdTag) RowsAffected() int64 {
	s := string(c)
	i := strings.LastIndexByte(s, ' ')
	if i < 0 {
		return 0
	}
	n, err := strconv.ParseInt(s[i+1:], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

type fakeQuerier struct {
	lastExecSQL string
	lastExecArg []any
	execTag     CommandTag
	execErr     error

	queryRows Rows
	queryErr  error
}

func (f *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	f.lastExecSQL = sql
	f.lastExecArg = args
	return f.execTag, f.execErr
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return f.queryRows, f.queryErr
}

func (f *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) Row { return nil }

type memRows struct {
	data   [][]any
	idx    int
	err    error
	closed bool
}

func newMemRows(data [][]any) *memRows { return &memRows{data: data, idx: -1} }

func (r *memRows) Columns() []string { return nil }
func (r *memRows) Err() error        { return r.err }
func (r *memRows) Close()            { r.closed = true }

func (r *memRows) Next() bool {
	if r.err != nil {
		return false
	}
	r.idx++
	return r.idx < len(r.data)
}

func (r *memRows) Scan(dest ...any) error {
	if r.idx < 0 || r.idx >= len(r.data) {
		return errors.New("scan out of bounds")
	}
	row := r.data[r.idx]
	if len(dest) != len(row) {
		return errors.New("dest len mismatch")
	}
	for i := range dest {
		dv := reflect.ValueOf(dest[i]).Elem()
		dv.Set(reflect.ValueOf(row[i]))
	}
	return nil
}

func TestExecOne_ExactlyOne(t *testing.T) {
	t.Parallel()

	f1 := &fakeQuerier{execTag: cmdTag("INSERT 0 1")}
	if err := ExecOne(context.Background(), f1, "insert"); err != nil {
		t.Fatalf("ExecOne should succeed: %v", err)
	}

	f2 := &fakeQuerier{execTag: cmdTag("UPDATE 2")}
	if err := ExecOne(context.Background(), f2, "update"); err == nil {
		t.Fatalf("ExecOne expected error when affected != 1")
	}

	f3 := &fakeQuerier{execTag: cmdTag("INSERT 0 0")}
	if err := ExecOne(context.Background(), f3, "noop"); err == nil {
		t.Fatalf("ExecOne expected error when nothing affected")
	}
}

func TestExecOne_PropagatesExecError(t *testing.T) {
	t.Parallel()

	f := &fakeQuerier{execErr: errors.New("boom")}
	const q = "update enrichment_runs set attempts = attempts + 1"
	if err := ExecOne(context.Background(), f, q); err == nil || err.Error() != "boom" {
		t.Fatalf("expected exec error to bubble, got %v", err)
	}
	if f.lastExecSQL != q {
		t.Fatalf("exec call not recorded: %q", f.lastExecSQL)
	}
}

func TestOne_SingleRow(t *testing.T) {
	t.Parallel()

	rows := newMemRows([][]any{{"2016-00042", 3}})
	f := &fakeQuerier{queryRows: rows}

	type run struct {
		incident string
		attempts int
	}
	item, err := One(context.Background(), f, func(r Row) (run, error) {
		var p run
		return p, r.Scan(&p.incident, &p.attempts)
	}, "select incident_id, attempts from enrichment_runs where incident_id = $1")
	if err != nil {
		t.Fatalf("One err: %v", err)
	}
	if item.incident != "2016-00042" || item.attempts != 3 {
		t.Fatalf("One item %+v", item)
	}
	if !rows.closed {
		t.Fatalf("rows not closed")
	}
}

func TestOne_NotFoundAndTooMany(t *testing.T) {
	t.Parallel()

	f1 := &fakeQuerier{queryRows: newMemRows(nil)}
	_, err := One(context.Background(), f1, func(r Row) (int, error) {
		var x int
		return x, r.Scan(&x)
	}, "q")
	if !errors.Is(err, perr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	f2 := &fakeQuerier{queryRows: newMemRows([][]any{{1}, {2}})}
	_, err = One(context.Background(), f2, func(r Row) (int, error) {
		var x int
		return x, r.Scan(&x)
	}, "q")
	if err == nil {
		t.Fatalf("expected error for >1 row")
	}
}

func TestOne_QueryErrorAndRowsErr(t *testing.T) {
	t.Parallel()

	f1 := &fakeQuerier{queryErr: errors.New("query bad")}
	_, err := One(context.Background(), f1, func(Row) (int, error) { return 0, nil }, "q")
	if err == nil || err.Error() != "query bad" {
		t.Fatalf("expected query error, got %v", err)
	}

	r := newMemRows(nil)
	r.err = errors.New("rows-err")
	f2 := &fakeQuerier{queryRows: r}
	_, err = One(context.Background(), f2, func(Row) (int, error) { return 0, nil }, "q")
	if err == nil || err.Error() != "rows-err" {
		t.Fatalf("expected rows.Err, got %v", err)
	}
}

func TestMany_MultiRow(t *testing.T) {
	t.Parallel()

	f := &fakeQuerier{queryRows: newMemRows([][]any{{1}, {2}, {3}})}
	items, err := Many(context.Background(), f, func(r Row) (int, error) {
		var x int
		return x, r.Scan(&x)
	}, "q")
	if err != nil {
		t.Fatalf("Many err: %v", err)
	}
	want := []int{1, 2, 3}
	if !reflect.DeepEqual(items, want) {
		t.Fatalf("Many %v want %v", items, want)
	}
}

func TestMany_EmptyRows_IsHappyPath(t *testing.T) {
	t.Parallel()

	f := &fakeQuerier{queryRows: newMemRows(nil)}
	items, err := Many(context.Background(), f, func(r Row) (int, error) {
		var v int
		return v, r.Scan(&v)
	}, "q")
	if err != nil {
		t.Fatalf("expected nil error on empty result set, got %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty slice, got %v", items)
	}
}

func TestMany_QueryErrorAndScanError(t *testing.T) {
	t.Parallel()

	f1 := &fakeQuerier{queryErr: errors.New("boom")}
	_, err := Many(context.Background(), f1, func(Row) (int, error) { return 0, nil }, "q")
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected query error, got %v", err)
	}

	rows := newMemRows([][]any{{1}, {2}})
	f2 := &fakeQuerier{queryRows: rows}
	_, err = Many(context.Background(), f2, func(r Row) (int, error) {
		if rows.idx == 0 {
			var v int
			return v, r.Scan(&v)
		}
		return 0, errors.New("scan in mapper failed")
	}, "q")
	if err == nil || err.Error() != "scan in mapper failed" {
		t.Fatalf("expected mapper error, got %v", err)
	}
}

func TestMany_ReturnsRowsErr_WhenIteratorErrors(t *testing.T) {
	t.Parallel()

	r := newMemRows(nil)
	r.err = errors.New("iter blew up")
	f := &fakeQuerier{queryRows: r}

	items, err := Many(context.Background(), f, func(Row) (int, error) { return 0, nil }, "q")
	if err == nil || err.Error() != "iter blew up" {
		t.Fatalf("expected rows.Err to bubble, got %v", err)
	}
	if items != nil {
		t.Fatalf("expected nil slice on error, got %v", items)
	}
}

func TestRowFromRows_SingleScanFacade(t *testing.T) {
	t.Parallel()

	fr := newMemRows([][]any{{7}})
	r := &rowFromRows{rows: fr}

	if !fr.Next() {
		t.Fatalf("Next false")
	}
	var n int
	if err := r.Scan(&n); err != nil {
		t.Fatalf("rowFromRows.Scan err: %v", err)
	}
	if n != 7 {
		t.Fatalf("rowFromRows got %d want 7", n)
	}
}
