package snapshot

// Channel identifies one independent data stream.
type Channel int

const (
	ChannelDepth Channel = iota
	ChannelColor
	ChannelSkeleton
	ChannelFace
	ChannelHand
	ChannelUserMask
	ChannelGesture
	ChannelIssue
)

// ChannelCount is the number of defined channels.
const ChannelCount = int(ChannelIssue) + 1

var channelNames = [ChannelCount]string{
	"depth",
	"color",
	"skeleton",
	"face",
	"hand",
	"user_mask",
	"gesture",
	"issue",
}

func (c Channel) String() string {
	if c < 0 || int(c) >= ChannelCount {
		return "unknown"
	}
	return channelNames[c]
}

// Channels lists every channel in declaration order.
func Channels() []Channel {
	out := make([]Channel, ChannelCount)
	for i := range out {
		out[i] = Channel(i)
	}
	return out
}
