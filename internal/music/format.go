package music

import "fmt"

// FormatDuration renders a track length in milliseconds as m:ss or h:mm:ss.
// Streams and unknown lengths come out as LIVE.
func FormatDuration(ms int64) string {
	if ms <= 0 {
		return "LIVE"
	}
	seconds := ms / 1000
	minutes, seconds := seconds/60, seconds%60
	hours, minutes := minutes/60, minutes%60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// FormatBytes renders a byte count with binary units.
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	value := float64(n)
	units := []string{"B", "KiB", "MiB", "GiB", "TiB"}
	for i, unit := range units {
		if value < 1024 || i == len(units)-1 {
			if unit == "B" {
				return fmt.Sprintf("%d %s", int64(value), unit)
			}
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024
	}
	return "0 B"
}

// FormatUptime renders a node uptime in milliseconds as 1d 2h 3m 4s,
// omitting leading zero units.
func FormatUptime(ms int64) string {
	total := ms / 1000
	if total < 0 {
		total = 0
	}
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	out := ""
	if days > 0 {
		out += fmt.Sprintf("%dd ", days)
	}
	if hours > 0 || days > 0 {
		out += fmt.Sprintf("%dh ", hours)
	}
	if minutes > 0 || hours > 0 || days > 0 {
		out += fmt.Sprintf("%dm ", minutes)
	}
	out += fmt.Sprintf("%ds", seconds)
	return out
}
