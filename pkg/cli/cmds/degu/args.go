package degu

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/robotalks/degu.go/pkg/l1/msgs"
	"github.com/robotalks/degu.go/pkg/power"
	pb "github.com/robotalks/degu.go/pkg/proto/degu/v1"
)

// ParseBool accepts the forms of strconv.ParseBool and on/off.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes", "y":
		return true, nil
	case "off", "no", "n":
		return false, nil
	}
	return strconv.ParseBool(s)
}

// ParseSuspend builds Suspend from SECONDS [EXT].
func ParseSuspend(args []string) (*msgs.Suspend, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("SECONDS required")
	}
	seconds, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil || seconds > power.MaxSleepSeconds {
		return nil, fmt.Errorf("invalid SECONDS %q: %w", args[0], power.ErrInvalidDuration)
	}
	msg := &msgs.Suspend{}
	msg.Seconds = uint32(seconds)
	if len(args) > 1 {
		if msg.ExternalAwake, err = ParseBool(args[1]); err != nil {
			return nil, fmt.Errorf("invalid EXT %q", args[1])
		}
	}
	return msg, nil
}

// ParsePowerDown builds PowerDown from [EXT] [WAKE_JSON], where WAKE_JSON
// is a pair like ["GPIO_0",13] or a list of pairs. The rest of the
// arguments are joined so the JSON may contain spaces.
func ParsePowerDown(args []string) (*msgs.PowerDown, error) {
	msg := &msgs.PowerDown{}
	if len(args) > 0 {
		ext, err := ParseBool(args[0])
		if err != nil {
			return nil, fmt.Errorf("invalid EXT %q", args[0])
		}
		msg.ExternalAwake = ext
	}
	if len(args) > 1 {
		if !msg.ExternalAwake {
			return nil, power.ErrExternalPowerRequired
		}
		sources, err := power.UnmarshalWakeSources([]byte(strings.Join(args[1:], " ")))
		if err != nil {
			return nil, err
		}
		for _, src := range sources {
			msg.WakeSources = append(msg.WakeSources, &pb.WakeSource{Controller: src.Controller, Pin: uint32(src.Pin)})
		}
	}
	return msg, nil
}

// ParseShadowUpdate builds ShadowUpdate from DOC.
func ParseShadowUpdate(args []string) (*msgs.ShadowUpdate, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("DOC required")
	}
	msg := &msgs.ShadowUpdate{}
	msg.Document = []byte(strings.Join(args, " "))
	return msg, nil
}
