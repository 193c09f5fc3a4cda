package sensorbridge

import (
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/internal/snapshot"
)

// Snapshot types are re-exported from internal/snapshot, where the builders
// live. See internal/snapshot for full documentation.
type (
	Channel = snapshot.Channel

	OutputMode  = snapshot.OutputMode
	OutputModes = snapshot.OutputModes

	PixelBuffer = snapshot.PixelBuffer

	Joint            = snapshot.Joint
	Skeleton         = snapshot.Skeleton
	SkeletonSnapshot = snapshot.SkeletonSnapshot

	Hand         = snapshot.Hand
	UserHands    = snapshot.UserHands
	HandSnapshot = snapshot.HandSnapshot

	GestureEvent = snapshot.GestureEvent
	GestureBatch = snapshot.GestureBatch

	Issue            = snapshot.Issue
	FrameBorderIssue = snapshot.FrameBorderIssue
	OcclusionIssue   = snapshot.OcclusionIssue
	IssueBatch       = snapshot.IssueBatch

	Face         = snapshot.Face
	FaceSnapshot = snapshot.FaceSnapshot
	Rect         = snapshot.Rect
	FaceAngles   = snapshot.FaceAngles
	Emotions     = snapshot.Emotions
	Age          = snapshot.Age

	JointType   = engine.JointType
	GestureType = engine.GestureType
)

// Channels, in registry slot order.
const (
	ChannelDepth    = snapshot.ChannelDepth
	ChannelColor    = snapshot.ChannelColor
	ChannelSkeleton = snapshot.ChannelSkeleton
	ChannelFace     = snapshot.ChannelFace
	ChannelHand     = snapshot.ChannelHand
	ChannelUserMask = snapshot.ChannelUserMask
	ChannelGesture  = snapshot.ChannelGesture
	ChannelIssue    = snapshot.ChannelIssue

	ChannelCount = snapshot.ChannelCount
)

// SkeletonJointCount is the number of joints in every Skeleton.
const SkeletonJointCount = snapshot.SkeletonJointCount

// MaxUsers is the number of user slots scanned for issues.
const MaxUsers = snapshot.MaxUsers

// CanonicalJoints returns the fixed joint order of Skeleton.Joints.
func CanonicalJoints() [SkeletonJointCount]JointType {
	return snapshot.CanonicalJoints
}

// IssueUserID returns the user an issue refers to.
func IssueUserID(i Issue) int { return snapshot.IssueUserID(i) }

// Channels lists every channel.
func Channels() []Channel { return snapshot.Channels() }
