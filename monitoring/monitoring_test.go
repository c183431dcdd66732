package monitoring_test

import (
	"bytes"
	"testing"

	"neuroplatform/bus"
	"neuroplatform/messaging"
	"neuroplatform/monitoring"
	"neuroplatform/uid"
)

func TestSpikeObserverCollectsSubscribedSenders(t *testing.T) {
	b := bus.NewMessageBus(nil)
	source := b.CreateEndpoint()
	watcher := b.CreateEndpoint()

	senderA := uid.NewRandom()
	senderB := uid.NewRandom()
	obs := monitoring.NewSpikeObserver(watcher, []uid.UID{senderA})

	source.Send(messaging.SpikeMessage{Header: messaging.Header{SenderUID: senderA, Step: 1}, Indices: messaging.SpikeData{1, 2}})
	source.Send(messaging.SpikeMessage{Header: messaging.Header{SenderUID: senderB, Step: 1}, Indices: messaging.SpikeData{9}})
	b.Route()

	got := obs.Update()
	if len(got) != 1 {
		t.Fatalf("expected exactly one message from the subscribed sender, got %d", len(got))
	}
	if got[0].Header.SenderUID != senderA {
		t.Errorf("expected message from senderA, got %v", got[0].Header.SenderUID)
	}
}

func TestOrderedWriterEmitsOneLinePerEntityInOrder(t *testing.T) {
	first := uid.NewRandom()
	second := uid.NewRandom()
	var buf bytes.Buffer
	w := monitoring.NewOrderedWriter(&buf, []uid.UID{first, second})

	err := w.Write([]messaging.SpikeMessage{
		{Header: messaging.Header{SenderUID: second}, Indices: messaging.SpikeData{5}},
		{Header: messaging.Header{SenderUID: first}, Indices: messaging.SpikeData{1, 2}},
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	want := "1 2\n5\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestOrderedWriterEmitsBlankLineForSilentEntity(t *testing.T) {
	only := uid.NewRandom()
	var buf bytes.Buffer
	w := monitoring.NewOrderedWriter(&buf, []uid.UID{only})

	if err := w.Write(nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.String() != "\n" {
		t.Errorf("expected a single blank line, got %q", buf.String())
	}
}

func TestFiringRateTrackerComputesMeanOverWindow(t *testing.T) {
	entity := uid.NewRandom()
	tracker := monitoring.NewFiringRateTracker(3)

	tracker.ObserveCount(entity, 2)
	tracker.ObserveCount(entity, 4)
	tracker.ObserveCount(entity, 6)
	if got := tracker.MeanRate(entity); got != 4 {
		t.Errorf("expected mean 4, got %f", got)
	}

	// A fourth observation should push the oldest sample out of the window.
	tracker.ObserveCount(entity, 12)
	if got := tracker.MeanRate(entity); got != (4+6+12)/3.0 {
		t.Errorf("expected windowed mean %f, got %f", (4+6+12)/3.0, got)
	}
}

func TestFiringRateTrackerReturnsZeroForUnseenEntity(t *testing.T) {
	tracker := monitoring.NewFiringRateTracker(5)
	if got := tracker.MeanRate(uid.NewRandom()); got != 0 {
		t.Errorf("expected 0 for unobserved entity, got %f", got)
	}
	if got := tracker.StdDevRate(uid.NewRandom()); got != 0 {
		t.Errorf("expected 0 stddev for unobserved entity, got %f", got)
	}
}
