// Package daytext parses the day arguments accepted by the command line.
package daytext

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	statisticsdomain "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/domain"
)

var parser = newParser()

func newParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// Parse accepts YYYY-MM-DD or a phrase such as "yesterday" or "last monday",
// resolved against now. The result is the start of the UTC day.
func Parse(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("empty day")
	}
	if day, err := statisticsdomain.ParseDay(input); err == nil {
		return day, nil
	}

	r, err := parser.Parse(strings.ToLower(input), now.UTC())
	if err != nil {
		return time.Time{}, fmt.Errorf("could not parse day %q: %w", input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("could not recognize day %q, expected YYYY-MM-DD or a phrase like \"yesterday\"", input)
	}
	return statisticsdomain.DayStart(r.Time), nil
}
