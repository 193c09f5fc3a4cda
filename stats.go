package sensorbridge

import "sync/atomic"

// ChannelStats counts the work done for one channel.
type ChannelStats struct {
	// Built is the number of snapshots materialized.
	Built uint64
	// Dispatched is the number of callback invocations.
	Dispatched uint64
	// Skipped is the number of engine updates ignored because the channel
	// had no subscriber.
	Skipped uint64
	// BytesCopied is the pixel data copied out of engine memory.
	BytesCopied uint64
}

// BridgeStats contains bridge counters. Safe to read from any goroutine.
type BridgeStats struct {
	SessionID string
	State     string
	// Cycles is the number of successful Update calls.
	Cycles        uint64
	EngineErrors  uint64
	LicenseErrors uint64
	Channels      [ChannelCount]ChannelStats
}

// Channel returns the counters of ch.
func (s BridgeStats) Channel(ch Channel) ChannelStats {
	return s.Channels[ch]
}

type channelCounters struct {
	built       atomic.Uint64
	dispatched  atomic.Uint64
	skipped     atomic.Uint64
	bytesCopied atomic.Uint64
}

type counters struct {
	cycles        atomic.Uint64
	engineErrors  atomic.Uint64
	licenseErrors atomic.Uint64
	channels      [ChannelCount]channelCounters
}

func (c *counters) built(ch Channel, bytes int) {
	c.channels[ch].built.Add(1)
	if bytes > 0 {
		c.channels[ch].bytesCopied.Add(uint64(bytes))
	}
}

func (c *counters) dispatched(ch Channel) { c.channels[ch].dispatched.Add(1) }
func (c *counters) skipped(ch Channel)    { c.channels[ch].skipped.Add(1) }

func (c *counters) reset() {
	c.cycles.Store(0)
	c.engineErrors.Store(0)
	c.licenseErrors.Store(0)
	for i := range c.channels {
		c.channels[i].built.Store(0)
		c.channels[i].dispatched.Store(0)
		c.channels[i].skipped.Store(0)
		c.channels[i].bytesCopied.Store(0)
	}
}

func (c *counters) load() BridgeStats {
	s := BridgeStats{
		Cycles:        c.cycles.Load(),
		EngineErrors:  c.engineErrors.Load(),
		LicenseErrors: c.licenseErrors.Load(),
	}
	for i := range c.channels {
		s.Channels[i] = ChannelStats{
			Built:       c.channels[i].built.Load(),
			Dispatched:  c.channels[i].dispatched.Load(),
			Skipped:     c.channels[i].skipped.Load(),
			BytesCopied: c.channels[i].bytesCopied.Load(),
		}
	}
	return s
}
