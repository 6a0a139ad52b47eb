package sink

import "testing"

func TestEmitDeliversToSubscriber(t *testing.T) {
	s := New(4)
	defer s.Close()

	sub := s.Subscribe(Info)
	defer sub.Close()

	s.Emit(Warn, "FCC", "deadline miss")

	select {
	case evt := <-sub.Events():
		if evt.Level != Warn || evt.Component != "FCC" {
			t.Fatalf("unexpected event: %+v", evt)
		}
	default:
		t.Fatalf("expected an event to be delivered")
	}
}

func TestEmitFiltersBelowSubscriberLevel(t *testing.T) {
	s := New(4)
	defer s.Close()

	sub := s.Subscribe(Critical)
	defer sub.Close()

	s.Emit(Warn, "FCC", "ignored")

	select {
	case evt := <-sub.Events():
		t.Fatalf("expected no delivery below subscriber level, got %+v", evt)
	default:
	}
}

func TestEmitNeverBlocksOnFullBuffer(t *testing.T) {
	s := New(1)
	defer s.Close()

	sub := s.Subscribe(Info)
	defer sub.Close()

	s.Emit(Info, "A", "one")
	s.Emit(Info, "A", "two") // buffer full, must be dropped, not block

	if got := s.DroppedCount(); got != 1 {
		t.Fatalf("expected 1 dropped event, got %d", got)
	}
}

func TestComponentTagTruncated(t *testing.T) {
	s := New(4)
	defer s.Close()
	sub := s.Subscribe(Info)
	defer sub.Close()

	s.Emit(Info, "WayTooLongComponentTag", "x")

	evt := <-sub.Events()
	if len(evt.Component) != maxComponentLen {
		t.Fatalf("expected truncation to %d bytes, got %q", maxComponentLen, evt.Component)
	}
}

func TestRuntimeLevelFilter(t *testing.T) {
	s := New(4)
	defer s.Close()
	sub := s.Subscribe(Info)
	defer sub.Close()

	s.SetLevel(Error)
	s.Emit(Warn, "A", "dropped before fan-out")

	select {
	case evt := <-sub.Events():
		t.Fatalf("expected event below runtime filter to be discarded, got %+v", evt)
	default:
	}
}
