package stats

import (
	"fmt"
	"io"
	"time"
)

func clock(d time.Duration) string {
	s := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

// WriteSummary renders the report as plain text, one pilot per block.
func (r Report) WriteSummary(w io.Writer) error {
	for _, p := range r.Pilots {
		line := fmt.Sprintf("%s: %d shots, %d hits, %d kills", p.Pilot, p.Shots, p.Hits, p.Kills)
		if p.Misses > 0 || p.Intercepted > 0 {
			line += fmt.Sprintf(", %d misses, %d intercepted", p.Misses, p.Intercepted)
		}
		if p.Friendly > 0 {
			line += fmt.Sprintf(", %d friendly", p.Friendly)
		}
		if p.Flight != nil {
			line += fmt.Sprintf(" %s (%s)", clock(p.Flight.Duration()), p.Flight.Reason)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		for _, ws := range p.Weapons {
			if _, err := fmt.Fprintf(w, "  %s: %d shots\n", ws.Weapon, ws.Shots); err != nil {
				return err
			}
		}
	}

	if len(r.AAKills) == 0 {
		_, err := fmt.Fprintln(w, "No A-A kills found.")
		return err
	}
	total := 0
	for _, k := range r.AAKills {
		total += k.Kills
	}
	if _, err := fmt.Fprintf(w, "\nA-A Kills by Target:\nTotal A-A kills: %d\n\n", total); err != nil {
		return err
	}
	for _, k := range r.AAKills {
		plural := "kills"
		if k.Kills == 1 {
			plural = "kill"
		}
		if _, err := fmt.Fprintf(w, "%s, %d, %s\n", k.Target, k.Kills, plural); err != nil {
			return err
		}
	}
	return nil
}
