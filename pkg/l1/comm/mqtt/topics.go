// Package mqtt registers devices and connects controllers through an
// MQTT broker.
//
// A device with ref TYPE/ID subscribes TYPE/ID/cmd for commands and
// publishes replies and events to TYPE/ID/msg. Its metadata is retained
// on TYPE/ID/meta while connected.
package mqtt

import (
	"strings"

	"github.com/robotalks/degu.go/pkg/l1"
	"github.com/robotalks/degu.go/pkg/transport/mqtt"
)

// Topic suffixes relative to the device name.
const (
	CmdTopic  = "cmd"
	MsgTopic  = "msg"
	MetaTopic = "meta"
)

// DiscoverTopic matches the meta topics of all devices.
const DiscoverTopic = "+/+/" + MetaTopic

// TopicOf returns the topic of ref with suffix.
func TopicOf(ref l1.ControllerRef, suffix string) string {
	return ref.Name() + "/" + suffix
}

// ForConnector creates a ReadWriter for the controller side:
// subscribes msg and publishes to cmd.
func ForConnector(q *mqtt.Queue, ref l1.ControllerRef) *mqtt.ReadWriter {
	return mqtt.NewPacketReadWriter(q).WithTopics(TopicOf(ref, MsgTopic), TopicOf(ref, CmdTopic))
}

// ForController creates a ReadWriter for the device side:
// subscribes cmd and publishes to msg.
func ForController(q *mqtt.Queue, ref l1.ControllerRef) *mqtt.ReadWriter {
	return mqtt.NewPacketReadWriter(q).WithTopics(TopicOf(ref, CmdTopic), TopicOf(ref, MsgTopic))
}

// RefFromMetaTopic extracts the device ref from TYPE/ID/meta.
func RefFromMetaTopic(topic string) (l1.ControllerRef, bool) {
	var ref l1.ControllerRef
	if !mqtt.MatchTopic(topic, DiscoverTopic) {
		return ref, false
	}
	parts := strings.Split(topic, "/")
	ref.Type, ref.ID = parts[0], parts[1]
	return ref, ref.IsValid()
}
