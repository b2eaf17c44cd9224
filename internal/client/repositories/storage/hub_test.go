package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_SkipsOwnOrigin(t *testing.T) {
	h := NewHub()
	a := h.Subscribe("tab-a")
	b := h.Subscribe("tab-b")
	defer a.Cancel()
	defer b.Cancel()

	h.Publish(Change{Keys: []string{"authToken"}, Origin: "tab-a", Revision: 1})

	select {
	case <-a.C:
		t.Fatal("own change delivered")
	default:
	}
	select {
	case c := <-b.C:
		assert.Equal(t, int64(1), c.Revision)
	default:
		t.Fatal("foreign change not delivered")
	}
}

func TestHub_FiltersKeys(t *testing.T) {
	h := NewHub()
	s := h.Subscribe("tab-a", "authToken", "user")
	defer s.Cancel()

	h.Publish(Change{Keys: []string{"theme"}, Origin: "tab-b"})
	require.Len(t, s.C, 0)

	h.Publish(Change{Keys: []string{"user"}, Origin: "tab-b"})
	require.Len(t, s.C, 1)
}

func TestHub_CoalescesToLatest(t *testing.T) {
	h := NewHub()
	s := h.Subscribe("")
	defer s.Cancel()

	for i := int64(1); i <= 5; i++ {
		h.Publish(Change{Origin: "x", Revision: i})
	}

	c := <-s.C
	assert.Equal(t, int64(5), c.Revision)
	require.Len(t, s.C, 0)
}

func TestSubscription_CancelClosesAndIsIdempotent(t *testing.T) {
	h := NewHub()
	s := h.Subscribe("tab-a")
	s.Cancel()
	s.Cancel()

	_, ok := <-s.C
	require.False(t, ok)

	// публикация после отписки не паникует
	h.Publish(Change{Origin: "tab-b"})
}
