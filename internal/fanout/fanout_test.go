package fanout

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New[int]()
	defer bus.Close()

	ch := make(chan int, 10)
	require.NoError(t, bus.Subscribe("test", ch))

	bus.Publish(7)

	select {
	case v := <-ch:
		assert.Equal(t, 7, v)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for value")
	}
}

func TestBus_NonBlockingPublish(t *testing.T) {
	bus := New[int]()
	defer bus.Close()

	ch := make(chan int, 1)
	require.NoError(t, bus.Subscribe("slow", ch))

	done := make(chan struct{})
	go func() {
		bus.Publish(1)
		bus.Publish(2) // buffer full, dropped
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Publish blocked")
	}

	assert.Equal(t, 1, <-ch)
	stats, err := bus.Stats("slow")
	require.NoError(t, err)
	assert.Equal(t, SubscriberStats{Sent: 1, Dropped: 1}, stats)
	assert.InDelta(t, 0.5, stats.DropRate(), 1e-9)
}

func TestBus_ConservationDropNew(t *testing.T) {
	bus := New[int]()
	defer bus.Close()

	ids := map[string]int{"worker-1": 10, "worker-2": 1, "worker-3": 3}
	for id, size := range ids {
		require.NoError(t, bus.Subscribe(id, make(chan int, size)))
	}
	for i := 0; i < 5; i++ {
		bus.Publish(i)
	}

	assert.Equal(t, uint64(5), bus.Published())
	for id, size := range ids {
		stats, err := bus.Stats(id)
		require.NoError(t, err)
		assert.Equal(t, uint64(5), stats.Sent+stats.Dropped, id)
		assert.Equal(t, uint64(min(size, 5)), stats.Sent, id)
	}
}

func TestBus_SubscribeErrors(t *testing.T) {
	bus := New[string]()

	require.NoError(t, bus.Subscribe("a", make(chan string, 1)))
	assert.ErrorIs(t, bus.Subscribe("a", make(chan string, 1)), ErrSubscriberExists)
	assert.ErrorIs(t, bus.Subscribe("b", nil), ErrNilChannel)

	_, err := bus.SubscribeLatest("a")
	assert.ErrorIs(t, err, ErrSubscriberExists)

	assert.ErrorIs(t, bus.Unsubscribe("missing"), ErrSubscriberNotFound)
	_, err = bus.Stats("missing")
	assert.ErrorIs(t, err, ErrSubscriberNotFound)

	bus.Close()
	bus.Close()
	assert.ErrorIs(t, bus.Subscribe("c", make(chan string, 1)), ErrBusClosed)
	bus.Publish("ignored")
	assert.Zero(t, bus.Published())
}

func TestLatest_KeepsNewest(t *testing.T) {
	bus := New[int]()
	defer bus.Close()

	latest, err := bus.SubscribeLatest("ui")
	require.NoError(t, err)

	_, ok := latest.TryReceive()
	assert.False(t, ok, "nothing published yet")

	bus.Publish(1)
	bus.Publish(2)
	bus.Publish(3)

	v, ok := latest.TryReceive()
	require.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = latest.TryReceive()
	assert.False(t, ok, "value already read")

	stats, err := bus.Stats("ui")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), stats.Sent)
	assert.Equal(t, uint64(2), stats.Dropped, "1 and 2 were overwritten unread")
}

func TestLatest_ReceiveBlocksUntilPublish(t *testing.T) {
	bus := New[int]()
	defer bus.Close()

	latest, err := bus.SubscribeLatest("worker")
	require.NoError(t, err)

	got := make(chan int, 1)
	go func() {
		v, ok := latest.Receive()
		if ok {
			got <- v
		}
	}()

	time.Sleep(10 * time.Millisecond)
	bus.Publish(42)

	select {
	case v := <-got:
		assert.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("Receive did not wake up")
	}
}

func TestLatest_CloseUnblocks(t *testing.T) {
	bus := New[int]()
	latest, err := bus.SubscribeLatest("worker")
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, ok := latest.Receive()
		assert.False(t, ok)
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, bus.Unsubscribe("worker"))
	wg.Wait()
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := New[int]()
	defer bus.Close()

	ch := make(chan int, 1000)
	require.NoError(t, bus.Subscribe("sink", ch))
	latest, err := bus.SubscribeLatest("latest")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				bus.Publish(i)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(400), bus.Published())
	stats, err := bus.Stats("sink")
	require.NoError(t, err)
	assert.Equal(t, uint64(400), stats.Sent)

	_, ok := latest.TryReceive()
	assert.True(t, ok)
}

func TestDropPolicy_String(t *testing.T) {
	assert.Equal(t, "drop_new", DropNew.String())
	assert.Equal(t, "drop_old", DropOld.String())
}
