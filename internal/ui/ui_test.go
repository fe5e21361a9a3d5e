package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goatkit/kamdesk/internal/constants"
)

type mapPrefs map[string]string

func (m mapPrefs) Pref(key string) string { return m[key] }
func (m mapPrefs) SetPref(key, value string) error {
	m[key] = value
	return nil
}

func TestState(t *testing.T) {
	t.Run("starts collapsed without prefs", func(t *testing.T) {
		s := NewState(nil)
		assert.False(t, s.Expanded())
		require.NoError(t, s.SetPinned(true))
		assert.True(t, s.Expanded())
	})

	t.Run("restores and persists pin", func(t *testing.T) {
		prefs := mapPrefs{constants.PrefSidebarPinned: "true"}
		s := NewState(prefs)
		assert.True(t, s.Pinned())

		pinned, err := s.TogglePin()
		require.NoError(t, err)
		assert.False(t, pinned)
		assert.Equal(t, "false", prefs[constants.PrefSidebarPinned])
	})

	t.Run("hover expands", func(t *testing.T) {
		s := NewState(mapPrefs{})
		s.SetHovered(true)
		assert.True(t, s.Expanded())
		s.SetHovered(false)
		assert.False(t, s.Expanded())
	})

	t.Run("nav items mark active page", func(t *testing.T) {
		s := NewState(nil)
		s.SetActive("tickets list")
		items := s.NavItems()
		require.Len(t, items, 3)
		assert.False(t, items[0].Active)
		assert.True(t, items[1].Active)
		assert.Equal(t, "Tickets", items[1].Title)
	})
}

func TestInFlight(t *testing.T) {
	t.Run("scoped per entity", func(t *testing.T) {
		f := NewInFlight()
		end := f.Begin("status", "t1")

		assert.True(t, f.Active("status", "t1"))
		assert.False(t, f.Active("status", "t2"))
		assert.False(t, f.Active("comment", "t1"))
		assert.True(t, f.Busy("t1"))

		end()
		end()
		assert.False(t, f.Active("status", "t1"))
	})

	t.Run("repeated submissions are counted", func(t *testing.T) {
		f := NewInFlight()
		first := f.Begin("promote", "u1")
		second := f.Begin("promote", "u1")

		first()
		assert.True(t, f.Active("promote", "u1"))
		second()
		assert.False(t, f.Active("promote", "u1"))
	})

	t.Run("retain prunes vanished entities", func(t *testing.T) {
		f := NewInFlight()
		f.Begin("status", "keep")
		f.Begin("comment", "gone")

		f.Retain(map[string]bool{"keep": true})

		assert.Equal(t, []Op{{Action: "status", ID: "keep"}}, f.Pending())
	})
}
