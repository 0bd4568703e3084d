package coordinator

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

const countdownWidth = 80

// Countdown rewrites one console line with the time left until total has
// elapsed, then clears it. It returns ctx.Err() if cancelled first.
func Countdown(ctx context.Context, w io.Writer, total, tick time.Duration) error {
	if tick <= 0 {
		tick = time.Second
	}
	deadline := time.Now().Add(total)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		left := time.Until(deadline)
		if left <= 0 {
			break
		}
		writeLine(w, countdownText(left))

		select {
		case <-ctx.Done():
			writeLine(w, "")
			return ctx.Err()
		case <-ticker.C:
		}
	}

	writeLine(w, "")
	fmt.Fprintln(w, "Start new loop...")
	return nil
}

func countdownText(left time.Duration) string {
	secs := int(left.Round(time.Second) / time.Second)
	return fmt.Sprintf("Wait %d minute %d seconds to continue", secs/60, secs%60)
}

func writeLine(w io.Writer, text string) {
	if len(text) < countdownWidth {
		text += strings.Repeat(" ", countdownWidth-len(text))
	}
	fmt.Fprintf(w, "\r%s", text)
	if strings.TrimSpace(text) == "" {
		fmt.Fprint(w, "\r")
	}
}
