package sh

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/robotalks/degu.go/pkg/coap"
	fx "github.com/robotalks/degu.go/pkg/framework"
	"github.com/robotalks/degu.go/pkg/l1"
	"github.com/robotalks/degu.go/pkg/l1/msgs"
)

// FormatInfo prints ControllerInfo into friendly string for display.
func FormatInfo(info l1.ControllerInfo) string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "%s", info.Ref.Name())
	if info.Meta.Description != "" {
		fmt.Fprintf(&w, ": %s", info.Meta.Description)
	}
	return w.String()
}

// FormatInfoList prints discovered devices, one per line.
func FormatInfoList(infoList []l1.ControllerInfo, asJSON bool) (string, error) {
	if asJSON {
		if infoList == nil {
			infoList = []l1.ControllerInfo{}
		}
		out, err := json.Marshal(infoList)
		return string(out), err
	}
	if len(infoList) == 0 {
		return "No devices found", nil
	}
	lines := make([]string, len(infoList))
	for n, info := range infoList {
		lines[n] = FormatInfo(info)
	}
	return strings.Join(lines, "\n"), nil
}

// FilterInfo keeps the items accepted by filter, all if filter is nil.
func FilterInfo(infoList []l1.ControllerInfo, filter func(l1.ControllerInfo) bool) []l1.ControllerInfo {
	if filter == nil {
		return infoList
	}
	items := make([]l1.ControllerInfo, 0, len(infoList))
	for _, info := range infoList {
		if filter(info) {
			items = append(items, info)
		}
	}
	return items
}

// FormatName returns the display name of a message.
func FormatName(msg fx.Message) string {
	return msgs.Name(msg)
}

// FormatResult formats a reply or an event for display.
func FormatResult(msg fx.Message, asJSON bool) (string, error) {
	if msg == nil {
		return "OK", nil
	}
	s, ok := msg.(msgs.SerializableMessage)
	if !ok {
		return "", msgs.ErrNotSerializable
	}
	if asJSON {
		out, err := json.Marshal(s.Serializable())
		return string(out), err
	}
	if _, ok := msg.(*msgs.CommandOK); ok {
		return "OK", nil
	}
	if shadow, ok := msg.(*msgs.Shadow); ok {
		return fmt.Sprintf("%s %s\n%s", FormatName(msg), coap.Code(shadow.Code), shadow.Document), nil
	}
	if updated, ok := msg.(*msgs.ShadowUpdated); ok {
		return fmt.Sprintf("%s %s", FormatName(msg), coap.Code(updated.Code)), nil
	}
	return fmt.Sprintf("%s %s", FormatName(msg), s.Serializable().String()), nil
}
