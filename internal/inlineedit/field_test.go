package inlineedit

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/muurk/powerpack/internal/logging"
)

// recordingUpdater records every call and returns err.
type recordingUpdater struct {
	calls []Request
	err   error
}

func (u *recordingUpdater) Update(ctx context.Context, op Operation, recordID string, payload Payload) error {
	u.calls = append(u.calls, Request{Op: op, RecordID: recordID, Payload: payload})
	return u.err
}

func TestNew(t *testing.T) {
	f := New(Record{ID: "7", Value: "a@b.com"}, nil)

	if f.RecordID() != "7" {
		t.Errorf("RecordID() = %q, want 7", f.RecordID())
	}
	if f.Committed() != "a@b.com" || f.Draft() != "a@b.com" {
		t.Errorf("Committed/Draft = %q/%q, want a@b.com", f.Committed(), f.Draft())
	}
	if f.Status() != StatusIdle {
		t.Errorf("Status() = %v, want Idle", f.Status())
	}
	if f.Focused() {
		t.Error("new field should not be focused")
	}
}

func TestChange(t *testing.T) {
	tests := []struct {
		name   string
		prior  Status
		text   string
		expect Status
	}{
		{"idle differing", StatusIdle, "new@x.com", StatusEditing},
		{"saved differing", StatusSaved, "new@x.com", StatusEditing},
		{"error differing", StatusError, "new@x.com", StatusEditing},
		{"idle equal", StatusIdle, "old@x.com", StatusIdle},
		{"saved equal", StatusSaved, "old@x.com", StatusSaved},
		{"editing back to original", StatusEditing, "old@x.com", StatusEditing},
		{"error equal", StatusError, "old@x.com", StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(Record{ID: "1", Value: "old@x.com"}, nil)
			f.status = tt.prior

			f.Change(tt.text)

			if f.Status() != tt.expect {
				t.Errorf("Status() = %v, want %v", f.Status(), tt.expect)
			}
			if f.Draft() != tt.text {
				t.Errorf("Draft() = %q, want %q", f.Draft(), tt.text)
			}
			if !f.Focused() {
				t.Error("Change should grant focus")
			}
		})
	}
}

func TestChange_KeepsRawText(t *testing.T) {
	f := New(Record{ID: "1"}, nil)
	f.Change("  a@b.com ")

	if f.Draft() != "  a@b.com " {
		t.Errorf("Draft() = %q, want raw text", f.Draft())
	}
}

func TestOperationSelection(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		want    Operation
	}{
		{"absent credential", "", OpCreateEmail},
		{"existing credential", "old@x.com", OpUpdateEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &recordingUpdater{}
			f := New(Record{ID: "1", Value: tt.initial}, u)
			f.Change("new@x.com")

			if err := f.Commit(context.Background()); err != nil {
				t.Fatalf("Commit() error = %v", err)
			}
			if len(u.calls) != 1 {
				t.Fatalf("calls = %d, want 1", len(u.calls))
			}
			if u.calls[0].Op != tt.want {
				t.Errorf("Op = %s, want %s", u.calls[0].Op, tt.want)
			}
		})
	}
}

func TestCommit_CreateThenUpdate(t *testing.T) {
	u := &recordingUpdater{}
	f := New(Record{ID: "1"}, u)

	f.Change("a@b.com")
	_ = f.Commit(context.Background())
	f.Change("c@d.com")
	_ = f.Commit(context.Background())

	if len(u.calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(u.calls))
	}
	if u.calls[0].Op != OpCreateEmail || u.calls[1].Op != OpUpdateEmail {
		t.Errorf("ops = %s, %s; want create then update", u.calls[0].Op, u.calls[1].Op)
	}
}

func TestCommit_SuccessFromEmpty(t *testing.T) {
	u := &recordingUpdater{}
	f := New(Record{ID: "9", Value: ""}, u)

	f.Change("a@b.com")
	if err := f.Commit(context.Background()); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	if f.Committed() != "a@b.com" || f.Draft() != "a@b.com" {
		t.Errorf("Committed/Draft = %q/%q, want a@b.com", f.Committed(), f.Draft())
	}
	if f.Status() != StatusSaved {
		t.Errorf("Status() = %v, want Saved", f.Status())
	}
	if f.Focused() {
		t.Error("successful commit should release focus")
	}
	if len(u.calls) != 1 || u.calls[0].Op != OpCreateEmail {
		t.Fatalf("calls = %+v, want one create", u.calls)
	}
	if u.calls[0].RecordID != "9" || u.calls[0].Payload.Email != "a@b.com" {
		t.Errorf("call = %+v", u.calls[0])
	}
}

func TestCommit_TrimsValue(t *testing.T) {
	u := &recordingUpdater{}
	f := New(Record{ID: "1", Value: "old@x.com"}, u)

	f.Change("  new@x.com  ")
	_ = f.Commit(context.Background())

	if u.calls[0].Payload.Email != "new@x.com" {
		t.Errorf("payload = %q, want trimmed", u.calls[0].Payload.Email)
	}
	if f.Committed() != "new@x.com" || f.Draft() != "new@x.com" {
		t.Errorf("Committed/Draft = %q/%q, want new@x.com", f.Committed(), f.Draft())
	}
}

func TestCommit_SameValueIsIdempotent(t *testing.T) {
	u := &recordingUpdater{}
	f := New(Record{ID: "1", Value: "a@b.com"}, u)

	for i := 0; i < 2; i++ {
		if err := f.Commit(context.Background()); err != nil {
			t.Fatalf("Commit() #%d error = %v", i, err)
		}
		if f.Status() != StatusSaved || f.Committed() != f.Draft() {
			t.Errorf("after commit #%d: status=%v committed=%q draft=%q", i, f.Status(), f.Committed(), f.Draft())
		}
	}
	if len(u.calls) != 2 {
		t.Errorf("calls = %d, want one per commit", len(u.calls))
	}
}

func TestCommit_FailureKeepsDraft(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	logging.SetLogger(zap.New(core))
	defer logging.SetLogger(nil)

	u := &recordingUpdater{err: errors.New("403 forbidden")}
	f := New(Record{ID: "1", Value: "old@x.com"}, u)

	f.Change("new@x.com")
	if err := f.Commit(context.Background()); err != nil {
		t.Fatalf("Commit() should not return remote failures, got %v", err)
	}

	if f.Committed() != "old@x.com" {
		t.Errorf("Committed() = %q, want old@x.com", f.Committed())
	}
	if f.Draft() != "new@x.com" {
		t.Errorf("Draft() = %q, want new@x.com", f.Draft())
	}
	if f.Status() != StatusError {
		t.Errorf("Status() = %v, want Error", f.Status())
	}
	if !errors.Is(f.Err(), ErrRemoteCommitFailed) {
		t.Errorf("Err() = %v, want ErrRemoteCommitFailed", f.Err())
	}
	if logs.FilterMessage("Commit failed").Len() != 1 {
		t.Errorf("expected one logged commit failure, got %d", logs.Len())
	}

	// Focus loss after a failure reverts
	f.Blur()
	if f.Draft() != "old@x.com" || f.Status() != StatusIdle {
		t.Errorf("after blur: draft=%q status=%v, want old@x.com/Idle", f.Draft(), f.Status())
	}

	// Failed update does not turn the next commit into a create
	if f.Operation() != OpUpdateEmail {
		t.Errorf("Operation() = %s, want update", f.Operation())
	}
}

func TestCommit_LocalRejections(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		u := &recordingUpdater{}
		f := New(Record{ID: "1", Value: "old@x.com"}, u)
		f.Change("   ")

		if err := f.Commit(context.Background()); !errors.Is(err, ErrEmptyValue) {
			t.Errorf("Commit() error = %v, want ErrEmptyValue", err)
		}
		if len(u.calls) != 0 {
			t.Errorf("calls = %d, want 0", len(u.calls))
		}
		if f.Status() != StatusEditing {
			t.Errorf("Status() = %v, want Editing", f.Status())
		}
	})

	t.Run("no updater", func(t *testing.T) {
		f := New(Record{ID: "1"}, nil)
		f.Change("a@b.com")
		if err := f.Commit(context.Background()); !errors.Is(err, ErrNoUpdater) {
			t.Errorf("Commit() error = %v, want ErrNoUpdater", err)
		}
	})

	t.Run("in flight", func(t *testing.T) {
		f := New(Record{ID: "1"}, nil)
		f.Change("a@b.com")

		if _, err := f.Begin(); err != nil {
			t.Fatalf("first Begin() error = %v", err)
		}
		if _, err := f.Begin(); !errors.Is(err, ErrCommitInFlight) {
			t.Errorf("second Begin() error = %v, want ErrCommitInFlight", err)
		}
	})
}

func TestCancel(t *testing.T) {
	priors := []Status{StatusIdle, StatusEditing, StatusSaving, StatusSaved, StatusError}

	for _, prior := range priors {
		t.Run(prior.String(), func(t *testing.T) {
			u := &recordingUpdater{}
			f := New(Record{ID: "1", Value: "old@x.com"}, u)
			f.Change("new@x.com")
			f.status = prior

			f.Cancel()

			if f.Draft() != f.Committed() || f.Draft() != "old@x.com" {
				t.Errorf("draft=%q committed=%q, want both old@x.com", f.Draft(), f.Committed())
			}
			if f.Status() != StatusIdle {
				t.Errorf("Status() = %v, want Idle", f.Status())
			}
			if f.Focused() {
				t.Error("Cancel should release focus")
			}
			if len(u.calls) != 0 {
				t.Errorf("calls = %d, want 0", len(u.calls))
			}
		})
	}
}

func TestBlur(t *testing.T) {
	t.Run("while editing is a no-op", func(t *testing.T) {
		f := New(Record{ID: "1", Value: "old@x.com"}, nil)
		f.Change("new@x.com")
		f.Blur()

		if f.Draft() != "new@x.com" || f.Status() != StatusEditing {
			t.Errorf("draft=%q status=%v, want new@x.com/Editing", f.Draft(), f.Status())
		}
		if f.Focused() {
			t.Error("Blur should clear focus")
		}
	})

	t.Run("while error equals cancel", func(t *testing.T) {
		blurred := New(Record{ID: "1", Value: "old@x.com"}, nil)
		cancelled := New(Record{ID: "1", Value: "old@x.com"}, nil)
		for _, f := range []*Field{blurred, cancelled} {
			f.Change("new@x.com")
			req, _ := f.Begin()
			f.Resolve(req, errors.New("boom"))
		}

		blurred.Blur()
		cancelled.Cancel()

		if blurred.Draft() != cancelled.Draft() || blurred.Status() != cancelled.Status() {
			t.Errorf("blur=%q/%v cancel=%q/%v", blurred.Draft(), blurred.Status(), cancelled.Draft(), cancelled.Status())
		}
	})

	t.Run("while saved", func(t *testing.T) {
		f := New(Record{ID: "1", Value: "old@x.com"}, nil)
		f.status = StatusSaved
		f.Blur()
		if f.Status() != StatusSaved {
			t.Errorf("Status() = %v, want Saved", f.Status())
		}
	})
}

func TestDisabledRecord(t *testing.T) {
	u := &recordingUpdater{}
	f := New(Record{ID: "1", Value: "old@x.com", Disabled: true}, u)

	f.Focus()
	f.Change("new@x.com")
	if err := f.Commit(context.Background()); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Commit() error = %v, want ErrReadOnly", err)
	}
	f.Cancel()
	f.Blur()

	if f.View() != "old@x.com" {
		t.Errorf("View() = %q, want old@x.com", f.View())
	}
	if f.Status() != StatusIdle || f.Focused() {
		t.Errorf("status=%v focused=%v, want Idle/unfocused", f.Status(), f.Focused())
	}
	if len(u.calls) != 0 {
		t.Errorf("calls = %d, want 0", len(u.calls))
	}
}

func TestBeginResolve(t *testing.T) {
	f := New(Record{ID: "1", Value: "old@x.com"}, nil)
	f.Change("new@x.com")

	req, err := f.Begin()
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if f.Status() != StatusSaving || !f.InFlight() {
		t.Fatalf("status=%v inFlight=%v, want Saving/true", f.Status(), f.InFlight())
	}

	// Typing is ignored while saving
	f.Change("other@x.com")
	if f.Draft() != "new@x.com" {
		t.Errorf("Draft() = %q, want new@x.com", f.Draft())
	}

	f.Resolve(req, nil)
	if f.Status() != StatusSaved || f.Committed() != "new@x.com" || f.InFlight() {
		t.Errorf("status=%v committed=%q inFlight=%v", f.Status(), f.Committed(), f.InFlight())
	}
}

func TestResolve_AfterCancel(t *testing.T) {
	t.Run("success moves the revert target", func(t *testing.T) {
		f := New(Record{ID: "1", Value: "old@x.com"}, nil)
		f.Change("new@x.com")
		req, _ := f.Begin()

		f.Cancel()
		if _, err := f.Begin(); !errors.Is(err, ErrCommitInFlight) {
			t.Errorf("Begin() while cancelled in-flight error = %v, want ErrCommitInFlight", err)
		}

		f.Resolve(req, nil)
		if f.Status() != StatusIdle {
			t.Errorf("Status() = %v, want Idle", f.Status())
		}
		if f.Committed() != "new@x.com" || f.Draft() != "new@x.com" {
			t.Errorf("committed=%q draft=%q, want new@x.com", f.Committed(), f.Draft())
		}
	})

	t.Run("retyped draft matching the remote value settles to Idle", func(t *testing.T) {
		f := New(Record{ID: "1", Value: "old@x.com"}, nil)
		f.Change("new@x.com")
		req, _ := f.Begin()

		f.Cancel()
		f.Change("new@x.com")
		if f.Status() != StatusEditing {
			t.Fatalf("Status() after retype = %v, want Editing", f.Status())
		}

		f.Resolve(req, nil)
		if f.Status() != StatusIdle {
			t.Errorf("Status() = %v, want Idle", f.Status())
		}
		if f.Committed() != "new@x.com" || f.Draft() != "new@x.com" {
			t.Errorf("committed=%q draft=%q, want new@x.com", f.Committed(), f.Draft())
		}
	})

	t.Run("retyped draft that differs stays Editing", func(t *testing.T) {
		f := New(Record{ID: "1", Value: "old@x.com"}, nil)
		f.Change("new@x.com")
		req, _ := f.Begin()

		f.Cancel()
		f.Change("third@x.com")
		f.Resolve(req, nil)

		if f.Status() != StatusEditing || f.Draft() != "third@x.com" {
			t.Errorf("status=%v draft=%q, want Editing/third@x.com", f.Status(), f.Draft())
		}
		if f.Committed() != "new@x.com" {
			t.Errorf("Committed() = %q, want new@x.com", f.Committed())
		}
	})

	t.Run("failure is ignored", func(t *testing.T) {
		f := New(Record{ID: "1", Value: "old@x.com"}, nil)
		f.Change("new@x.com")
		req, _ := f.Begin()
		f.Cancel()

		f.Resolve(req, errors.New("boom"))
		if f.Status() != StatusIdle || f.Err() != nil {
			t.Errorf("status=%v err=%v, want Idle/nil", f.Status(), f.Err())
		}
		if f.InFlight() {
			t.Error("InFlight() should be false after Resolve")
		}
	})
}

func TestUpdaterFunc(t *testing.T) {
	var got Operation
	var u Updater = UpdaterFunc(func(ctx context.Context, op Operation, id string, p Payload) error {
		got = op
		return nil
	})

	f := New(Record{ID: "1"}, u)
	f.Change("a@b.com")
	_ = f.Commit(context.Background())

	if got != OpCreateEmail {
		t.Errorf("op = %s, want create", got)
	}
}
