package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/incognito/game/engine"
)

var sq = engine.MustParseSquare

func TestSelectorSelectAndCancel(t *testing.T) {
	eng := engine.NewGame()
	var s Selector

	// empty square and enemy piece are ignored
	assert.Equal(t, ClickResult{}, s.Click(eng, sq("a4")))
	assert.Equal(t, ClickResult{}, s.Click(eng, sq("e3")))
	assert.Equal(t, AwaitingSource, s.State())

	res := s.Click(eng, sq("a3"))
	assert.True(t, res.Selected)
	assert.Equal(t, AwaitingDestination, s.State())
	pending, ok := s.Pending()
	require.True(t, ok)
	assert.Equal(t, sq("a3"), pending)

	// same square cancels
	res = s.Click(eng, sq("a3"))
	assert.False(t, res.Selected)
	assert.Nil(t, res.Action)
	_, ok = s.Pending()
	assert.False(t, ok)
}

func TestSelectorReselect(t *testing.T) {
	eng := engine.NewGame()
	var s Selector

	s.Click(eng, sq("a3"))
	res := s.Click(eng, sq("a2"))
	assert.True(t, res.Selected)

	pending, ok := s.Pending()
	require.True(t, ok)
	assert.Equal(t, sq("a2"), pending)
}

func TestSelectorMove(t *testing.T) {
	eng := engine.NewGame()
	var s Selector

	s.Click(eng, sq("a3"))
	res := s.Click(eng, sq("b4"))

	require.NotNil(t, res.Action)
	assert.Equal(t, "D a3->b4", res.Action.String())
	assert.False(t, res.Found)
	assert.Equal(t, AwaitingSource, s.State())
	assert.Equal(t, engine.Black, eng.CurrentPlayer())
}

func TestSelectorIllegalDestinationClears(t *testing.T) {
	eng := engine.NewGame()
	var s Selector

	s.Click(eng, sq("a3"))
	res := s.Click(eng, sq("c4"))

	assert.Nil(t, res.Action)
	assert.Equal(t, AwaitingSource, s.State())
	assert.Equal(t, engine.White, eng.CurrentPlayer())
	assert.Empty(t, eng.GetMoveHistory())
}

func TestSelectorInterrogation(t *testing.T) {
	eng := engine.NewGame()
	require.True(t, eng.Move(sq("c1"), sq("d2")))
	require.True(t, eng.Move(sq("e3"), sq("e2")))

	var s Selector
	s.Click(eng, sq("d2"))
	res := s.Click(eng, sq("e2"))

	require.NotNil(t, res.Action)
	assert.Equal(t, engine.ActionInterrogate, res.Action.Kind)
	assert.True(t, res.Found)
	assert.True(t, eng.IsFinished())

	// finished games accept no input
	assert.Equal(t, ClickResult{}, s.Click(eng, sq("a3")))
	assert.Equal(t, AwaitingSource, s.State())
}

func TestSelectorStateString(t *testing.T) {
	assert.Equal(t, "awaiting_source", AwaitingSource.String())
	assert.Equal(t, "awaiting_destination", AwaitingDestination.String())
}
