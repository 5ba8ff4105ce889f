package render

import (
	"fmt"
	"time"
)

const (
	// NoDataText replies to a metric query that returned no samples.
	NoDataText = "No data available for the selected period."

	// NotReadyText replies to connect for an instance without a public DNS name.
	NotReadyText = "The instance is not in a state where it can be connected to."
)

// SSHHint is the connection instruction for an instance.
func SSHHint(user, dns string) string {
	return fmt.Sprintf("Connect to your instance via SSH:\nssh -i <your-key>.pem %s@%s", user, dns)
}

// WindowCaption describes a trailing window, e.g. "CPU Utilization for the
// last hour".
func WindowCaption(d time.Duration) string {
	return "CPU Utilization for the last " + humanDuration(d)
}

func humanDuration(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "hour"
	case d == time.Minute:
		return "minute"
	case d >= time.Hour && d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d > time.Minute && d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}
