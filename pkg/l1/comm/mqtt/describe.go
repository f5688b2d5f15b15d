package mqtt

import (
	"fmt"
	"strings"

	"github.com/robotalks/degu.go/pkg/l1/msgs"
)

// Describe formats a packet seen on the broker for monitoring.
func Describe(topic string, payload []byte) string {
	if strings.HasSuffix(topic, "/"+MetaTopic) {
		if len(payload) == 0 {
			return "(unregistered)"
		}
		return string(payload)
	}
	typed, err := msgs.DecodeTyped(payload)
	if err != nil {
		return fmt.Sprintf("bad message: %v", err)
	}
	msg, err := typed.Decode()
	if err != nil {
		return fmt.Sprintf("decode error: (type_id=%x) %v", typed.TypeId, err)
	}
	desc := fmt.Sprintf("[%s] %s", msgs.Name(msg), msg.(msgs.SerializableMessage).Serializable().String())
	if typed.Sequence != 0 {
		desc = fmt.Sprintf("#%d %s", typed.Sequence, desc)
	}
	return desc
}
