package broadcast

import (
	"sync"
	"testing"
	"time"
)

func TestHostFanOutSurvivesConcurrentSenders(t *testing.T) {
	host := NewHost()
	joined := make(chan struct{}, 1)
	host.OnPeerJoined = func(send func(data []byte)) {
		select {
		case joined <- struct{}{}:
		default:
		}
	}
	if err := host.Start("127.0.0.1:0"); err != nil {
		t.Fatalf("start host: %v", err)
	}
	defer host.Close()

	got := make(chan StatePayload, 256)
	v := NewViewer()
	v.OnState = func(p StatePayload) { got <- p }
	if err := v.Join(host.Addr()); err != nil {
		t.Fatalf("join: %v", err)
	}
	defer v.Disconnect()

	select {
	case <-joined:
	case <-time.After(2 * time.Second):
		t.Fatal("viewer hello never reached the host")
	}
	if n := host.PeerCount(); n != 1 {
		t.Fatalf("peer count = %d, want 1", n)
	}

	// Deck pushes and document pushes arrive from different goroutines;
	// the connection must serialize them without dropping the viewer.
	const perSender = 50
	var wg sync.WaitGroup
	for s := 0; s < 2; s++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perSender; i++ {
				host.SendState(StatePayload{CurrentSlide: i, Slide: i})
			}
		}()
	}
	wg.Wait()

	deadline := time.After(5 * time.Second)
	for received := 0; received < 2*perSender; {
		select {
		case <-got:
			received++
		case <-deadline:
			t.Fatalf("received only %d of %d fan-out messages", received, 2*perSender)
		}
	}
}
