package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nao1215/samradar/internal/model"
)

type fakeConn struct {
	subject string
	data    []byte
	err     error
	drained bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subject = subject
	f.data = data
	return nil
}

func (f *fakeConn) Drain() error {
	f.drained = true
	return nil
}

func testReport() *model.ScanReport {
	r := model.NewScanReport("Lukoil")
	r.Results = []model.Result{
		model.NewResult(model.Hit{Title: "Lukoil sanctioned", Link: "https://a.test"}, model.RiskHigh),
		model.NewResult(model.Hit{Title: "Lukoil results", Link: "https://b.test"}, model.RiskLow),
	}
	r.Sanctions = []model.SanctionHit{{Name: "LUKOIL"}}
	r.AddOutcome(model.SourceOutcome{Connector: "Bing", Status: model.OutcomeFailed})
	return r
}

func TestNATSPublisherPublish(t *testing.T) {
	t.Parallel()

	t.Run("publishes the scan event as JSON", func(t *testing.T) {
		t.Parallel()

		nc := &fakeConn{}
		p := newPublisher(nc, WithSubject("screening.done"))
		report := testReport()

		if err := p.Publish(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if nc.subject != "screening.done" {
			t.Errorf("expected subject screening.done, got %q", nc.subject)
		}

		var evt ScanEvent
		if err := json.Unmarshal(nc.data, &evt); err != nil {
			t.Fatalf("failed to decode event: %v", err)
		}
		if evt.ScanID != report.ScanID || evt.Entity != "Lukoil" {
			t.Errorf("unexpected identity %+v", evt)
		}
		if evt.Summary.High != 1 || evt.Summary.Low != 1 || evt.Summary.Sanctions != 1 {
			t.Errorf("unexpected summary %+v", evt.Summary)
		}
		if evt.Failed != 1 {
			t.Errorf("expected 1 failed call, got %d", evt.Failed)
		}
	})

	t.Run("default subject", func(t *testing.T) {
		t.Parallel()

		if got := newPublisher(&fakeConn{}).Subject(); got != DefaultSubject {
			t.Errorf("got %q, expected %q", got, DefaultSubject)
		}
	})

	t.Run("report without entity is rejected", func(t *testing.T) {
		t.Parallel()

		err := newPublisher(&fakeConn{}).Publish(context.Background(), model.NewScanReport(""))
		if !errors.Is(err, ErrInvalidEvent) {
			t.Errorf("expected ErrInvalidEvent, got %v", err)
		}
	})

	t.Run("connection errors are wrapped", func(t *testing.T) {
		t.Parallel()

		sentinel := errors.New("connection closed")
		err := newPublisher(&fakeConn{err: sentinel}).Publish(context.Background(), testReport())
		if !errors.Is(err, sentinel) {
			t.Errorf("expected wrapped error, got %v", err)
		}
	})

	t.Run("cancelled context publishes nothing", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		nc := &fakeConn{}
		if err := newPublisher(nc).Publish(ctx, testReport()); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if nc.data != nil {
			t.Error("expected no message")
		}
	})
}

func TestNATSPublisherClose(t *testing.T) {
	t.Parallel()

	nc := &fakeConn{}
	if err := newPublisher(nc).Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !nc.drained {
		t.Error("expected connection to be drained")
	}
}

func TestNop(t *testing.T) {
	t.Parallel()

	var p Publisher = Nop{}
	if err := p.Publish(context.Background(), testReport()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
