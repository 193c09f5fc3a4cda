package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/internal/snapshot"
)

func TestRegistry_SetGet(t *testing.T) {
	var r Registry
	assert.Nil(t, Get[snapshot.PixelBuffer](&r, snapshot.ChannelDepth))
	assert.False(t, r.Registered(snapshot.ChannelDepth))

	var got []int
	Set(&r, snapshot.ChannelDepth, func(p snapshot.PixelBuffer) { got = append(got, 1) })
	Set(&r, snapshot.ChannelDepth, func(p snapshot.PixelBuffer) { got = append(got, 2) })

	fn := Get[snapshot.PixelBuffer](&r, snapshot.ChannelDepth)
	require.NotNil(t, fn)
	fn(snapshot.PixelBuffer{})
	assert.Equal(t, []int{2}, got, "Set replaces the previous callback")
	assert.Equal(t, []snapshot.Channel{snapshot.ChannelDepth}, r.Active())
}

func TestRegistry_NilClears(t *testing.T) {
	var r Registry
	Set(&r, snapshot.ChannelGesture, func(snapshot.GestureBatch) {})
	require.True(t, r.Registered(snapshot.ChannelGesture))

	var nilFn func(snapshot.GestureBatch)
	Set(&r, snapshot.ChannelGesture, nilFn)
	assert.False(t, r.Registered(snapshot.ChannelGesture))
}

func TestRegistry_TypeMismatchIsEmpty(t *testing.T) {
	var r Registry
	Set(&r, snapshot.ChannelHand, func(snapshot.HandSnapshot) {})
	assert.Nil(t, Get[snapshot.SkeletonSnapshot](&r, snapshot.ChannelHand))
}

func TestRegistry_Clear(t *testing.T) {
	var r Registry
	for _, ch := range snapshot.Channels() {
		Set(&r, ch, func(any) {})
	}
	assert.Len(t, r.Active(), snapshot.ChannelCount)

	r.Clear()
	assert.Empty(t, r.Active())
}
