package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu  sync.Mutex
	got []string
	at  []time.Time
}

func (r *recorder) emit(q string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, q)
	r.at = append(r.at, time.Now())
}

func (r *recorder) lastAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.at[len(r.at)-1]
}

func (r *recorder) values() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.got...)
}

const delay = 20 * time.Millisecond

func TestDebouncer_EmitsLatestAfterIdle(t *testing.T) {
	rec := &recorder{}
	d := New(delay, rec.emit)
	defer d.Stop()

	d.Push("j")
	d.Push("ja")
	d.Push("jaz")

	assert.Empty(t, rec.values())
	assert.Eventually(t, func() bool { return len(rec.values()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"jaz"}, rec.values())
}

func TestDebouncer_PushAsTimerFiresWaitsFullDelay(t *testing.T) {
	const wait = 50 * time.Millisecond
	for i := 0; i < 5; i++ {
		rec := &recorder{}
		d := New(wait, rec.emit)

		d.Push("first")
		time.Sleep(wait)
		pushed := time.Now()
		d.Push("second")

		assert.Eventually(t, func() bool {
			got := rec.values()
			return len(got) > 0 && got[len(got)-1] == "second"
		}, time.Second, time.Millisecond)
		assert.GreaterOrEqual(t, rec.lastAt().Sub(pushed), wait)
		d.Stop()
	}
}

func TestDebouncer_SkipsUnchangedQuery(t *testing.T) {
	rec := &recorder{}
	d := New(delay, rec.emit)
	defer d.Stop()

	d.Push("jazz")
	assert.Eventually(t, func() bool { return len(rec.values()) == 1 }, time.Second, 5*time.Millisecond)

	d.Push("jaz")
	d.Push("jazz")
	time.Sleep(4 * delay)

	assert.Equal(t, []string{"jazz"}, rec.values())
}

func TestDebouncer_Clear(t *testing.T) {
	rec := &recorder{}
	d := New(delay, rec.emit)
	defer d.Stop()

	d.Push("hike")
	d.Clear()
	time.Sleep(4 * delay)
	assert.Equal(t, []string{""}, rec.values())

	d.Push("hike")
	assert.Eventually(t, func() bool { return len(rec.values()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"", "hike"}, rec.values())
}

func TestDebouncer_Flush(t *testing.T) {
	rec := &recorder{}
	d := New(time.Hour, rec.emit)
	defer d.Stop()

	d.Push("board")
	d.Flush()
	assert.Equal(t, []string{"board"}, rec.values())

	d.Flush()
	assert.Equal(t, []string{"board"}, rec.values())
}

func TestDebouncer_Stop(t *testing.T) {
	rec := &recorder{}
	d := New(delay, rec.emit)

	d.Push("late")
	d.Stop()
	d.Push("later")
	time.Sleep(4 * delay)

	assert.Empty(t, rec.values())
}

func TestNew_DefaultDelay(t *testing.T) {
	d := New(0, func(string) {})
	assert.Equal(t, DefaultDelay, d.delay)
}
